//go:build darwin

package input

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation -framework ApplicationServices

#include <CoreGraphics/CoreGraphics.h>
#include <ApplicationServices/ApplicationServices.h>

bool hasAccessibilityPermissions() {
    return AXIsProcessTrusted();
}

void injectKey(CGKeyCode keyCode, bool pressed) {
    CGEventRef event = CGEventCreateKeyboardEvent(NULL, keyCode, pressed);
    CGEventPost(kCGSessionEventTap, event);
    CFRelease(event);
}
*/
import "C"
import (
	"fmt"
)

// macOS implementation of key injection using CoreGraphics.

// vkToMacKeyMap translates canonical (Windows virtual-key) codes to
// macOS CGKeyCodes.
// Reference: https://docs.microsoft.com/en-us/windows/win32/inputdev/virtual-key-codes
// Reference: https://developer.apple.com/documentation/coregraphics/cgkeycode
var vkToMacKeyMap = map[uint16]uint16{
	// Letters A-Z (Windows VK_A = 0x41, macOS kVK_ANSI_A = 0x00)
	0x41: 0x00, 0x42: 0x0B, 0x43: 0x08, 0x44: 0x02, 0x45: 0x0E,
	0x46: 0x03, 0x47: 0x05, 0x48: 0x04, 0x49: 0x22, 0x4A: 0x26,
	0x4B: 0x28, 0x4C: 0x25, 0x4D: 0x2E, 0x4E: 0x2D, 0x4F: 0x1F,
	0x50: 0x23, 0x51: 0x0C, 0x52: 0x0F, 0x53: 0x01, 0x54: 0x11,
	0x55: 0x20, 0x56: 0x09, 0x57: 0x0D, 0x58: 0x07, 0x59: 0x10,
	0x5A: 0x06,

	// Digit row
	0x30: 0x1D, 0x31: 0x12, 0x32: 0x13, 0x33: 0x14, 0x34: 0x15,
	0x35: 0x17, 0x36: 0x16, 0x37: 0x1A, 0x38: 0x1C, 0x39: 0x19,

	// Named keys
	0x08: 0x33, // backspace -> delete
	0x09: 0x30, // tab
	0x0D: 0x24, // enter -> return
	0x10: 0x38, // shift
	0x11: 0x3B, // ctrl -> control
	0x12: 0x3A, // alt -> option
	0x14: 0x39, // caps lock
	0x1B: 0x35, // esc
	0x20: 0x31, // space
	0x21: 0x74, // page up
	0x22: 0x79, // page down
	0x23: 0x77, // end
	0x24: 0x73, // home
	0x25: 0x7B, // left
	0x26: 0x7E, // up
	0x27: 0x7C, // right
	0x28: 0x7D, // down
	0x2E: 0x75, // delete -> forward delete
	0xA0: 0x38, // left shift
	0xA1: 0x3C, // right shift
	0xA2: 0x3B, // left ctrl
	0xA3: 0x3E, // right ctrl
	0xA4: 0x3A, // left alt
	0xA5: 0x3D, // right alt

	// Function keys
	0x70: 0x7A, 0x71: 0x78, 0x72: 0x63, 0x73: 0x76, 0x74: 0x60,
	0x75: 0x61, 0x76: 0x62, 0x77: 0x64, 0x78: 0x65, 0x79: 0x6D,
	0x7A: 0x67, 0x7B: 0x6F,
}

// Injector injects keyboard events via CGEventPost. Requires the
// accessibility permission.
type Injector struct{}

// NewInjector creates a new macOS key injector.
func NewInjector() *Injector {
	return &Injector{}
}

// HasPermissions reports whether the process is trusted for event
// injection.
func (i *Injector) HasPermissions() bool {
	return bool(C.hasAccessibilityPermissions())
}

// Press injects a key-down event for k.
func (i *Injector) Press(k Key) error {
	return injectKey(uint16(k), true)
}

// Release injects a key-up event for k.
func (i *Injector) Release(k Key) error {
	return injectKey(uint16(k), false)
}

// Close releases injector resources. CGEventPost holds none.
func (i *Injector) Close() error {
	return nil
}

func injectKey(vk uint16, pressed bool) error {
	macKey, ok := vkToMacKeyMap[vk]
	if !ok {
		return fmt.Errorf("no macOS mapping for key 0x%X", vk)
	}
	C.injectKey(C.CGKeyCode(macKey), C.bool(pressed))
	return nil
}
