//go:build linux

package device

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// Linux reader over raw HID. The 3Dconnexion Universal Receiver shows up
// as a hidraw node; reports are read non-blocking so the poll loop never
// stalls between samples.

// vendor3Dconnexion is the USB vendor ID as it appears in HID_ID lines.
const vendor3Dconnexion = "256F"

type hidrawReader struct {
	fd      int
	path    string
	buf     [64]byte
	current State
}

// Discover returns hidraw device paths belonging to 3Dconnexion
// hardware, in sysfs order.
func Discover() ([]string, error) {
	entries, err := os.ReadDir("/sys/class/hidraw")
	if err != nil {
		return nil, fmt.Errorf("failed to scan hidraw class: %w", err)
	}

	var paths []string
	for _, e := range entries {
		uevent := filepath.Join("/sys/class/hidraw", e.Name(), "device", "uevent")
		data, err := os.ReadFile(uevent)
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(data), "\n") {
			if strings.HasPrefix(line, "HID_ID=") && strings.Contains(line, ":0000"+vendor3Dconnexion+":") {
				paths = append(paths, filepath.Join("/dev", e.Name()))
				break
			}
		}
	}
	return paths, nil
}

// Open opens the hidraw device at path, or the first discovered
// 3Dconnexion device when path is empty.
func Open(path string) (Reader, error) {
	if path == "" {
		paths, err := Discover()
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("no 3Dconnexion device found")
		}
		path = paths[0]
	}

	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	return &hidrawReader{fd: fd, path: path}, nil
}

// Poll reads at most one report and returns the updated sample, or nil
// when no report is pending.
func (r *hidrawReader) Poll() (*State, error) {
	n, err := unix.Read(r.fd, r.buf[:])
	if err != nil {
		if err == unix.EAGAIN || err == unix.EINTR {
			return nil, nil
		}
		return nil, fmt.Errorf("read from %s failed: %w", r.path, err)
	}
	if n <= 0 {
		return nil, nil
	}

	if !ParseReport(&r.current, r.buf[:n]) {
		return nil, nil
	}

	snap := r.current
	snap.Buttons = append([]bool(nil), r.current.Buttons...)
	return &snap, nil
}

// Close closes the underlying device node.
func (r *hidrawReader) Close() error {
	return unix.Close(r.fd)
}
