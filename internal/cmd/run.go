package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/steadyware/mousebridge/bridge"
	"github.com/steadyware/mousebridge/internal/link"
	"github.com/steadyware/mousebridge/internal/log"
	"github.com/steadyware/mousebridge/internal/util"
	"github.com/steadyware/mousebridge/sink"
	"github.com/steadyware/mousebridge/source/usbhid"
)

// SinkConfig selects and configures the pass-through backend.
type SinkConfig struct {
	Backend    string `help:"Pass-through backend (uinput, viiper, discard)" default:"uinput" env:"MOUSEBRIDGE_SINK"`
	ViiperAddr string `help:"VIIPER server address for the viiper backend" default:"localhost:3242" env:"MOUSEBRIDGE_VIIPER_ADDR"`
	ViiperBus  uint32 `help:"VIIPER bus id holding the virtual mouse" default:"1" env:"MOUSEBRIDGE_VIIPER_BUS"`
	ViiperDev  string `help:"VIIPER device id of the virtual mouse" env:"MOUSEBRIDGE_VIIPER_DEV"`
}

// SourceConfig selects the USB pointing device to attach to.
type SourceConfig struct {
	VID      uint16 `help:"Vendor id of the mouse to attach to (0 = first mouse found)" env:"MOUSEBRIDGE_VID"`
	PID      uint16 `help:"Product id of the mouse to attach to" env:"MOUSEBRIDGE_PID"`
	ReportID uint8  `help:"Numbered-report prefix byte, for mice that use one" env:"MOUSEBRIDGE_REPORT_ID"`
}

// Run is the main command: attach to the mouse and bridge it until
// interrupted.
type Run struct {
	Link         link.Config   `embed:"" prefix:"link."`
	Sink         SinkConfig    `embed:"" prefix:"sink."`
	Source       SourceConfig  `embed:"" prefix:"source."`
	Identity     string        `help:"Device identity, announced at startup and returned by VERIFY" default:"MOUSEBRIDGE-1.0" env:"MOUSEBRIDGE_IDENTITY"`
	PollInterval time.Duration `help:"Cooperative polling loop interval" default:"1ms" env:"MOUSEBRIDGE_POLL_INTERVAL"`
}

// Run is called by Kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.StartBridge(ctx, logger, rawLogger)
}

// StartBridge wires the link, sink, source and bridge together and
// drives the polling loop until ctx is done.
func (r *Run) StartBridge(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	l, err := link.Open(r.Link, logger)
	if err != nil {
		// Without a link there is no channel to announce the failure on.
		holdConsoleOnFailure(err)
		return err
	}
	defer l.Close()
	l = link.WithRaw(l, rawLogger)

	ptr, err := sink.New(r.Sink.Backend, sink.Options{
		Addr:     r.Sink.ViiperAddr,
		Bus:      r.Sink.ViiperBus,
		DeviceID: r.Sink.ViiperDev,
	}, logger)
	if err != nil {
		err = fmt.Errorf("pass-through init: %w", err)
		announceFatal(l, "pass-through init failed", logger)
		holdConsoleOnFailure(err)
		return err
	}

	b := bridge.New(ptr, l, bridge.Options{
		Identity:     r.Identity,
		PollInterval: r.PollInterval,
	}, logger)

	src, err := usbhid.Open(usbhid.Config{
		VID:      r.Source.VID,
		PID:      r.Source.PID,
		ReportID: r.Source.ReportID,
	}, usbhid.Callbacks{
		Move:   b.Decoder().HandleMove,
		Button: b.Decoder().HandleButton,
	}, rawLogger, logger)
	if err != nil {
		err = fmt.Errorf("usb host init: %w", err)
		b.Fail("USB host init failed")
		_ = ptr.Close()
		holdConsoleOnFailure(err)
		return err
	}
	b.AttachSource(src)
	defer b.Close()

	if err := b.Announce(); err != nil {
		logger.Warn("startup announcement failed", "error", err)
	}
	logger.Info("bridge running",
		"identity", r.Identity,
		"sink", r.Sink.Backend,
		"serial", r.Link.SerialPort,
		"tcp", r.Link.TCPAddr)

	if err := b.Run(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("bridge stopped")
	return nil
}

// announceFatal emits the single E record for init failures that
// happen before the bridge object exists.
func announceFatal(l link.Link, text string, logger *slog.Logger) {
	if err := bridge.NewTelemetry(l).Fatal(text); err != nil {
		logger.Warn("fatal announcement failed", "error", err)
	}
}

// holdConsoleOnFailure keeps the window open when launched outside a
// terminal, so the error stays readable.
func holdConsoleOnFailure(err error) {
	if util.IsRunFromGUI() {
		fmt.Println("Error:", err)
		fmt.Println("Press any key to exit...")
		b := make([]byte, 1)
		_, _ = os.Stdin.Read(b)
	}
}
