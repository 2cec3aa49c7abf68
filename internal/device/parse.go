package device

import (
	"encoding/binary"
)

// Report IDs of the Universal Receiver protocol.
const (
	reportMotion  = 0x01
	reportButtons = 0x03
)

// axisRange is the raw deflection magnitude that maps to 1.0.
const axisRange = 350.0

// buttonBits lists the byte and bit position of each button index in a
// 0x03 report: menu, alt, ctrl, shift, esc, 1-4, roll clockwise, top,
// rotation, front, rear, fit.
var buttonBits = [NumButtons]struct{ byteIdx, bit int }{
	{1, 0}, {3, 7}, {4, 1}, {4, 0}, {3, 6},
	{2, 4}, {2, 5}, {2, 6}, {2, 7}, {2, 0},
	{1, 2}, {4, 2}, {1, 5}, {1, 4}, {1, 1},
}

// normalize maps a raw axis deflection to [-1, 1].
func normalize(raw int16) float64 {
	v := float64(raw) / axisRange
	if v > 1.0 {
		return 1.0
	}
	if v < -1.0 {
		return -1.0
	}
	return v
}

// ParseReport folds one HID report into st and reports whether the data
// was a recognized motion or button report. Unknown or truncated reports
// leave st untouched.
func ParseReport(st *State, data []byte) bool {
	if len(data) == 0 {
		return false
	}

	switch data[0] {
	case reportMotion:
		if len(data) < 13 {
			return false
		}
		st.X = normalize(int16(binary.LittleEndian.Uint16(data[1:3])))
		st.Y = normalize(int16(binary.LittleEndian.Uint16(data[3:5])))
		st.Z = normalize(int16(binary.LittleEndian.Uint16(data[5:7])))
		st.Pitch = normalize(int16(binary.LittleEndian.Uint16(data[7:9])))
		st.Roll = normalize(int16(binary.LittleEndian.Uint16(data[9:11])))
		// Puck twist. Sign conventions are handled by the invert flags
		// in config, not here.
		st.Yaw = normalize(int16(binary.LittleEndian.Uint16(data[11:13])))
		return true

	case reportButtons:
		if len(data) < 5 {
			return false
		}
		if st.Buttons == nil {
			st.Buttons = make([]bool, NumButtons)
		}
		for i, pos := range buttonBits {
			st.Buttons[i] = data[pos.byteIdx]&(1<<pos.bit) != 0
		}
		return true
	}

	return false
}
