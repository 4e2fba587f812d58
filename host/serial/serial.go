// Package serial opens the controller's telemetry link. The firmware
// writes stop and warning lines on its console UART (USB CDC on RP2040
// boards) and accepts console commands on the same port.
package serial

import (
	"io"
)

// Port is an open telemetry link. Tests substitute an in-memory pipe.
type Port interface {
	io.ReadWriteCloser

	// Flush discards input received but not yet read
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate (USB CDC ignores this)
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the telemetry link defaults of the controller firmware
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 0,
	}
}
