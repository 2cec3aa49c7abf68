//go:build windows

// Package osutils provides small OS state queries for the bridge.
package osutils

import (
	"golang.org/x/sys/windows"
)

var (
	user32          = windows.NewLazySystemDLL("user32.dll")
	procGetKeyState = user32.NewProc("GetKeyState")
)

// VK_CAPITAL, the Caps Lock virtual key.
const vkCapital = 0x14

// CapsLockSupported reports whether the Caps Lock toggle state can be
// queried on this platform.
func CapsLockSupported() bool {
	return true
}

// CapsLockOn reports whether Caps Lock is toggled on. The low bit of
// GetKeyState carries the toggle state.
func CapsLockOn() bool {
	ret, _, _ := procGetKeyState.Call(vkCapital)
	return ret&1 != 0
}
