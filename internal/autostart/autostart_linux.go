//go:build linux

// Package autostart provides auto-start-on-login functionality.
package autostart

import (
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

const desktopEntry = `[Desktop Entry]
Type=Application
Name=SMBridge
Comment=SpaceMouse to keyboard bridge
Exec={{.ExecutablePath}}
Hidden=false
X-GNOME-Autostart-enabled=true
`

func desktopPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "autostart", "smbridge.desktop"), nil
}

// Enable enables auto-start on login
func Enable() error {
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	path, err := desktopPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmpl, err := template.New("desktop").Parse(desktopEntry)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return tmpl.Execute(f, struct{ ExecutablePath string }{execPath})
}

// Disable disables auto-start on login
func Disable() error {
	path, err := desktopPath()
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// IsEnabled checks if auto-start is enabled
func IsEnabled() bool {
	path, err := desktopPath()
	if err != nil {
		return false
	}

	_, err = os.Stat(path)
	return err == nil
}
