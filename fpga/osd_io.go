// This file is part of OneFPGA.
//
// OneFPGA is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// OneFPGA is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with OneFPGA.  If not, see <https://www.gnu.org/licenses/>.

package fpga

// OsdLines is the number of lines in the on-screen display. Lines are
// addressed 0 to OsdLines-1.
const OsdLines = 9

// OsdWriteLine sends the bytes of one line of the on-screen display.
type OsdWriteLine struct {
	Line uint8
	Data []byte
}

// NewOsdWriteLine creates an OsdWriteLine command. A line outside the range
// of the display is a precondition violation.
func NewOsdWriteLine(line int, data []byte) OsdWriteLine {
	if line < 0 || line >= OsdLines {
		precondition("OSD line %d is outside the range 0..%d", line, OsdLines-1)
	}
	return OsdWriteLine{Line: uint8(line), Data: data}
}

// Name implements the Command interface.
func (OsdWriteLine) Name() string { return "OsdWriteLine" }

// Address implements the Command interface.
func (c OsdWriteLine) Address() Address {
	if c.Line >= OsdLines {
		precondition("OSD line %d is outside the range 0..%d", c.Line, OsdLines-1)
	}
	return Address{FeatureOSD, OpOsdWriteLine + Opcode(c.Line)}
}

// WritePayload implements the Writer interface.
func (c OsdWriteLine) WritePayload(s *Stream) {
	s.Bytes(c.Data)
}

// OsdEnable makes the on-screen display visible.
type OsdEnable struct{}

// Name implements the Command interface.
func (OsdEnable) Name() string { return "OsdEnable" }

// Address implements the Command interface.
func (OsdEnable) Address() Address { return Address{FeatureOSD, OpOsdEnable} }

// OsdDisable hides the on-screen display.
type OsdDisable struct{}

// Name implements the Command interface.
func (OsdDisable) Name() string { return "OsdDisable" }

// Address implements the Command interface.
func (OsdDisable) Address() Address { return Address{FeatureOSD, OpOsdDisable} }
