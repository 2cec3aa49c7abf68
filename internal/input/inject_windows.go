//go:build windows

package input

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Windows implementation of key injection using SendInput.

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

const (
	inputKeyboard  = 1
	keyeventfKeyup = 0x0002
)

// keybdInput mirrors KEYBDINPUT.
type keybdInput struct {
	Vk        uint16
	Scan      uint16
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

// keyInput mirrors INPUT for keyboard events. The trailing padding keeps
// the struct as large as the MOUSEINPUT arm of the union.
type keyInput struct {
	Type uint32
	_    [4]byte
	Ki   keybdInput
	_    [8]byte
}

// Injector injects keyboard events through the Win32 SendInput API.
type Injector struct{}

// NewInjector creates a new Windows key injector.
func NewInjector() *Injector {
	return &Injector{}
}

// Press injects a key-down event for k.
func (i *Injector) Press(k Key) error {
	return sendKey(uint16(k), false)
}

// Release injects a key-up event for k.
func (i *Injector) Release(k Key) error {
	return sendKey(uint16(k), true)
}

// Close releases injector resources. SendInput holds none.
func (i *Injector) Close() error {
	return nil
}

func sendKey(vk uint16, up bool) error {
	var flags uint32
	if up {
		flags = keyeventfKeyup
	}

	in := keyInput{
		Type: inputKeyboard,
		Ki: keybdInput{
			Vk:    vk,
			Flags: flags,
		},
	}

	ret, _, err := procSendInput.Call(
		1,
		uintptr(unsafe.Pointer(&in)),
		unsafe.Sizeof(in),
	)
	if ret == 0 {
		return fmt.Errorf("SendInput failed for vk 0x%X: %v", vk, err)
	}
	return nil
}
