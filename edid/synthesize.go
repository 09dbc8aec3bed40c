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

package edid

import (
	"encoding/binary"

	"github.com/onefpga/onefpga/i2c"
)

// Encode the timing as an 18 byte detailed timing descriptor. The sync is
// digital separate with positive polarity.
func (t DetailedTiming) Encode() [18]byte {
	var x [18]byte

	binary.LittleEndian.PutUint16(x[0:2], uint16(t.PixelClock/10))

	hbl := t.HFrontPorch + t.HSync + t.HBackPorch
	vbl := t.VFrontPorch + t.VSync + t.VBackPorch

	x[2] = uint8(t.HActive)
	x[3] = uint8(hbl)
	x[4] = uint8(t.HActive>>8)<<4 | uint8(hbl>>8)&0x0f
	x[5] = uint8(t.VActive)
	x[6] = uint8(vbl)
	x[7] = uint8(t.VActive>>8)<<4 | uint8(vbl>>8)&0x0f
	x[8] = uint8(t.HFrontPorch)
	x[9] = uint8(t.HSync)
	x[10] = uint8(t.VFrontPorch&0x0f)<<4 | uint8(t.VSync&0x0f)
	x[11] = uint8(t.HFrontPorch>>8&0x03)<<6 | uint8(t.HSync>>8&0x03)<<4 |
		uint8(t.VFrontPorch>>4&0x03)<<2 | uint8(t.VSync>>4&0x03)

	x[17] = 0x1e
	if t.Interlaced {
		x[17] |= 0x80
	}

	return x
}

// Synthesize creates a valid EDID block with the timing as the preferred
// timing. The display declares itself as HDMI capable.
func Synthesize(t DetailedTiming) *Block {
	var b Block
	copy(b[:], header[:])

	// "OFP" manufacturer id
	binary.BigEndian.PutUint16(b[8:10], uint16('O'-'A'+1)<<10|uint16('F'-'A'+1)<<5|uint16('P'-'A'+1))
	b[18] = 1
	b[19] = 3

	// no standard timings
	for i := 0x26; i < 0x36; i++ {
		b[i] = 0x01
	}

	dtd := t.Encode()
	copy(b[preferredTiming:], dtd[:])

	b[0x7e] = 1
	var sum uint8
	for _, v := range b[:127] {
		sum += v
	}
	b[127] = -sum

	// CEA extension with the basic audio/HDMI flag
	b[0x80] = 0x02
	b[0x81] = 0x03
	b[0x83] = 0x40

	return &b
}

// Simulate returns two i2c devices behaving like the HDMI transmitter and
// its EDID memory with the block loaded. A nil block simulates a
// disconnected display.
func Simulate(b *Block) (transmitter *i2c.Memory, eeprom *i2c.Memory) {
	transmitter = &i2c.Memory{}
	eeprom = &i2c.Memory{}
	if b != nil {
		transmitter.Regs[regHotPlug] = hotPlugDetect
		copy(eeprom.Regs[:], b[:])
	}
	return transmitter, eeprom
}
