//go:build !wasm

package serial

import (
	"fmt"
	"sort"
	"strings"

	bugst "go.bug.st/serial"
)

// ListPorts returns the serial devices present on this host, sorted.
// USB CDC devices (ttyACM*, ttyUSB*, cu.usbmodem*) come first since the
// controller enumerates as one of those.
func ListPorts() ([]string, error) {
	ports, err := bugst.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	sortPorts(ports)
	return ports, nil
}

func sortPorts(ports []string) {
	sort.SliceStable(ports, func(i, j int) bool {
		ui, uj := isUSBPort(ports[i]), isUSBPort(ports[j])
		if ui != uj {
			return ui
		}
		return ports[i] < ports[j]
	})
}

func isUSBPort(name string) bool {
	for _, marker := range []string{"ttyACM", "ttyUSB", "usbmodem", "usbserial"} {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// FindPort picks the first USB serial device, for when no -device is given
func FindPort() (string, error) {
	ports, err := ListPorts()
	if err != nil {
		return "", err
	}
	for _, p := range ports {
		if isUSBPort(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("no USB serial device found among %d ports", len(ports))
}
