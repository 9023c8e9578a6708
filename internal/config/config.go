// Package config defines the root kong command tree.
package config

import "github.com/steadyware/mousebridge/internal/cmd"

// LogConfig groups the logging flags shared by all commands.
type LogConfig struct {
	Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"MOUSEBRIDGE_LOG_LEVEL"`
	File    string `help:"Log file path (console output is kept)" env:"MOUSEBRIDGE_LOG_FILE"`
	RawFile string `help:"Raw traffic dump file (HID reports and link bytes)" env:"MOUSEBRIDGE_LOG_RAW_FILE"`
}

// CLI is the top-level command structure parsed by kong.
type CLI struct {
	Log        LogConfig `embed:"" prefix:"log."`
	ConfigFile string    `name:"config" help:"Path to a config file (json, yaml or toml)" env:"MOUSEBRIDGE_CONFIG"`

	Run    cmd.Run           `cmd:"" help:"Attach to a USB mouse and bridge it to the host and the telemetry link"`
	List   cmd.List          `cmd:"" help:"List candidate pointing devices and serial ports"`
	Config cmd.ConfigCommand `cmd:"" help:"Configuration helpers"`
}
