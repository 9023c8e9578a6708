package cmd

import (
	"fmt"
	"log/slog"

	hid "github.com/sstallion/go-hid"

	"github.com/steadyware/mousebridge/internal/link"
)

// List enumerates candidate pointing devices and serial ports, so the
// run command can be pointed at the right hardware.
type List struct {
	All bool `help:"List every HID interface, not just mouse-usage ones"`
}

func (l *List) Run(logger *slog.Logger) error {
	if err := hid.Init(); err != nil {
		return fmt.Errorf("init hidapi: %w", err)
	}
	defer hid.Exit()

	fmt.Println("HID pointing devices:")
	found := 0
	err := hid.Enumerate(hid.VendorIDAny, hid.ProductIDAny, func(info *hid.DeviceInfo) error {
		mouse := info.UsagePage == 0x01 && info.Usage == 0x02
		if !mouse && !l.All {
			return nil
		}
		marker := " "
		if mouse {
			marker = "*"
		}
		fmt.Printf("  %s VID:0x%04X PID:0x%04X  %s  (%s)\n",
			marker, info.VendorID, info.ProductID, info.Product, info.Path)
		found++
		return nil
	})
	if err != nil {
		return fmt.Errorf("enumerate hid devices: %w", err)
	}
	if found == 0 {
		fmt.Println("  (none found)")
	}

	ports, err := link.ListPorts()
	if err != nil {
		return err
	}
	fmt.Println("Serial ports:")
	if len(ports) == 0 {
		fmt.Println("  (none found)")
	}
	for _, p := range ports {
		fmt.Printf("  %s\n", p)
	}
	return nil
}
