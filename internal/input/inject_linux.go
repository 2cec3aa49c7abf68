//go:build linux

package input

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux implementation of key injection using a uinput virtual keyboard.

const (
	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565
	uiDevSetup   = 0x405c5503
	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502

	evSyn     = 0x00
	evKey     = 0x01
	synReport = 0
)

// inputID mirrors struct input_id.
type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

// uinputSetup mirrors struct uinput_setup.
type uinputSetup struct {
	ID           inputID
	Name         [80]byte
	FFEffectsMax uint32
}

// inputEvent mirrors struct input_event on 64-bit kernels.
type inputEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// vkToEvdev translates canonical (Windows virtual-key) codes to evdev
// KEY_* codes.
var vkToEvdev = map[uint16]uint16{
	0x08: 14,  // backspace
	0x09: 15,  // tab
	0x0D: 28,  // enter
	0x10: 42,  // shift -> left shift
	0x11: 29,  // ctrl -> left ctrl
	0x12: 56,  // alt -> left alt
	0x13: 119, // pause
	0x14: 58,  // caps lock
	0x1B: 1,   // esc
	0x20: 57,  // space
	0x21: 104, // page up
	0x22: 109, // page down
	0x23: 107, // end
	0x24: 102, // home
	0x25: 105, // left
	0x26: 103, // up
	0x27: 106, // right
	0x28: 108, // down
	0x2D: 110, // insert
	0x2E: 111, // delete
	0xA0: 42,  // left shift
	0xA1: 54,  // right shift
	0xA2: 29,  // left ctrl
	0xA3: 97,  // right ctrl
	0xA4: 56,  // left alt
	0xA5: 100, // right alt

	// Letters
	0x41: 30, 0x42: 48, 0x43: 46, 0x44: 32, 0x45: 18, 0x46: 33,
	0x47: 34, 0x48: 35, 0x49: 23, 0x4A: 36, 0x4B: 37, 0x4C: 38,
	0x4D: 50, 0x4E: 49, 0x4F: 24, 0x50: 25, 0x51: 16, 0x52: 19,
	0x53: 31, 0x54: 20, 0x55: 22, 0x56: 47, 0x57: 17, 0x58: 45,
	0x59: 21, 0x5A: 44,

	// Digit row
	0x30: 11, 0x31: 2, 0x32: 3, 0x33: 4, 0x34: 5,
	0x35: 6, 0x36: 7, 0x37: 8, 0x38: 9, 0x39: 10,

	// Function keys
	0x70: 59, 0x71: 60, 0x72: 61, 0x73: 62, 0x74: 63, 0x75: 64,
	0x76: 65, 0x77: 66, 0x78: 67, 0x79: 68, 0x7A: 87, 0x7B: 88,
}

// Injector injects keyboard events through a uinput virtual device.
type Injector struct {
	f *os.File
}

// NewInjector creates the uinput device and registers every key code the
// bridge can emit. Requires write access to /dev/uinput.
func NewInjector() *Injector {
	inj := &Injector{}
	f, err := os.OpenFile("/dev/uinput", os.O_WRONLY|unix.O_NONBLOCK, 0660)
	if err != nil {
		// Injection stays unavailable; Press/Release will report it.
		return inj
	}

	fd := int(f.Fd())
	if err := unix.IoctlSetInt(fd, uiSetEvBit, evKey); err != nil {
		f.Close()
		return inj
	}
	for _, code := range vkToEvdev {
		_ = unix.IoctlSetInt(fd, uiSetKeyBit, int(code))
	}

	setup := uinputSetup{
		ID: inputID{
			Bustype: unix.BUS_VIRTUAL,
			Vendor:  0x256f,
			Product: 0xc652,
		},
	}
	copy(setup.Name[:], "smbridge virtual keyboard")
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uiDevSetup, uintptr(unsafe.Pointer(&setup))); errno != 0 {
		f.Close()
		return inj
	}
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uiDevCreate, 0); errno != 0 {
		f.Close()
		return inj
	}

	inj.f = f
	return inj
}

// Close destroys the virtual device.
func (i *Injector) Close() error {
	if i.f == nil {
		return nil
	}
	fd := uintptr(i.f.Fd())
	unix.Syscall(unix.SYS_IOCTL, fd, uiDevDestroy, 0)
	return i.f.Close()
}

// Press injects a key-down event for k.
func (i *Injector) Press(k Key) error {
	return i.writeKey(uint16(k), 1)
}

// Release injects a key-up event for k.
func (i *Injector) Release(k Key) error {
	return i.writeKey(uint16(k), 0)
}

func (i *Injector) writeKey(vk uint16, value int32) error {
	if i.f == nil {
		return fmt.Errorf("uinput device not available")
	}
	code, ok := vkToEvdev[vk]
	if !ok {
		return fmt.Errorf("no evdev mapping for key 0x%X", vk)
	}
	if err := i.writeEvent(evKey, code, value); err != nil {
		return err
	}
	return i.writeEvent(evSyn, synReport, 0)
}

func (i *Injector) writeEvent(typ, code uint16, value int32) error {
	ev := inputEvent{Type: typ, Code: code, Value: value}
	buf := (*[unsafe.Sizeof(ev)]byte)(unsafe.Pointer(&ev))[:]
	if _, err := i.f.Write(buf); err != nil {
		return fmt.Errorf("uinput write failed: %w", err)
	}
	return nil
}
