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
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/onefpga/onefpga/curated"
)

// DisplayDataInvalid is the error for any problem with the EDID.
const DisplayDataInvalid = "edid: %v"

// Size of a full EDID with one extension block.
const Size = 256

// the fixed header at the start of every valid EDID.
var header = [8]byte{0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x00}

// offset of the first detailed timing descriptor, which is the preferred
// timing of the display.
const preferredTiming = 0x36

// Block is the raw EDID data.
type Block [Size]byte

// Valid returns true if the block starts with the EDID header.
func (b *Block) Valid() bool {
	return [8]byte(b[:8]) == header
}

// Checksum returns true if the base block sums to zero.
func (b *Block) Checksum() bool {
	var sum uint8
	for _, v := range b[:128] {
		sum += v
	}
	return sum == 0
}

// Extensions returns the number of extension blocks that follow the base
// block.
func (b *Block) Extensions() int {
	return int(b[0x7e])
}

// IsDVI returns true if the display does not declare itself HDMI capable in
// a CEA extension block.
func (b *Block) IsDVI() bool {
	return !(b[0x80] == 0x02 && b[0x81] == 0x03 && b[0x83]&0x40 != 0)
}

// Manufacturer returns the three letter PNP id of the display manufacturer.
func (b *Block) Manufacturer() string {
	v := binary.BigEndian.Uint16(b[8:10])
	return string([]byte{
		byte('A' - 1 + (v>>10)&0x1f),
		byte('A' - 1 + (v>>5)&0x1f),
		byte('A' - 1 + v&0x1f),
	})
}

// ProductCode returns the manufacturer's product code.
func (b *Block) ProductCode() uint16 {
	return binary.LittleEndian.Uint16(b[10:12])
}

// Serial returns the serial number of the display.
func (b *Block) Serial() uint32 {
	return binary.LittleEndian.Uint32(b[12:16])
}

// Manufactured returns the week and year of manufacture. A week of zero
// means the week is not specified.
func (b *Block) Manufactured() (week int, year int) {
	return int(b[16]), int(b[17]) + 1990
}

// Version returns the EDID version and revision.
func (b *Block) Version() string {
	return fmt.Sprintf("%d.%d", b[18], b[19])
}

// Name returns the display product name from the descriptor blocks. An empty
// string is returned if there is no name descriptor.
func (b *Block) Name() string {
	for d := preferredTiming; d < 0x7e; d += 18 {
		// display descriptors have a zero pixel clock
		if b[d] != 0 || b[d+1] != 0 || b[d+3] != 0xfc {
			continue
		}
		name := string(b[d+5 : d+18])
		name, _, _ = strings.Cut(name, "\n")
		return strings.TrimSpace(name)
	}
	return ""
}

// StandardTiming is one of the standard timings listed by the display.
type StandardTiming struct {
	Width   int
	Height  int
	Refresh int
}

func (t StandardTiming) String() string {
	return fmt.Sprintf("%dx%d@%d", t.Width, t.Height, t.Refresh)
}

// StandardTimings returns the list of standard timings supported by the
// display.
func (b *Block) StandardTimings() []StandardTiming {
	var l []StandardTiming
	for i := 0x26; i < 0x36; i += 2 {
		if b[i] == 0x01 && b[i+1] == 0x01 || b[i] == 0x00 {
			continue
		}

		w := (int(b[i]) + 31) * 8

		var h int
		switch b[i+1] >> 6 {
		case 0:
			// 1:1 before EDID 1.3
			if b[18] == 1 && b[19] < 3 {
				h = w
			} else {
				h = w * 10 / 16
			}
		case 1:
			h = w * 3 / 4
		case 2:
			h = w * 4 / 5
		case 3:
			h = w * 9 / 16
		}

		l = append(l, StandardTiming{Width: w, Height: h, Refresh: int(b[i+1]&0x3f) + 60})
	}
	return l
}

// DetailedTiming is a timing decoded from a detailed timing descriptor.
type DetailedTiming struct {
	// pixel clock in kHz
	PixelClock int

	HActive     int
	HBlank      int
	HFrontPorch int
	HSync       int
	HBackPorch  int

	VActive     int
	VBlank      int
	VFrontPorch int
	VSync       int
	VBackPorch  int

	Interlaced bool
}

// FrameRate calculates the frame rate of the timing in Hz.
func (t DetailedTiming) FrameRate() float64 {
	return float64(t.PixelClock) * 1000 / float64((t.HActive+t.HBlank)*(t.VActive+t.VBlank))
}

func (t DetailedTiming) String() string {
	return fmt.Sprintf("%dx%d@%.1f (%.3fMHz)", t.HActive, t.VActive, t.FrameRate(), float64(t.PixelClock)/1000)
}

// minimum plausible pixel clock in kHz.
const minPixelClock = 10000

// PreferredTiming decodes the first detailed timing descriptor. The block
// must be valid, the pixel clock must be at least 10MHz and the mode must
// not be interlaced.
func (b *Block) PreferredTiming() (DetailedTiming, error) {
	if !b.Valid() {
		return DetailedTiming{}, curated.Errorf(DisplayDataInvalid, "header is not valid")
	}

	x := b[preferredTiming : preferredTiming+18]

	t := DetailedTiming{
		PixelClock: int(binary.LittleEndian.Uint16(x[0:2])) * 10,
	}

	if t.PixelClock < minPixelClock {
		return DetailedTiming{}, curated.Errorf(DisplayDataInvalid,
			fmt.Sprintf("pixel clock below 10MHz, assuming invalid data %#02x %#02x", x[0], x[1]))
	}

	t.Interlaced = x[17]&0x80 != 0
	if t.Interlaced {
		return DetailedTiming{}, curated.Errorf(DisplayDataInvalid, "preferred mode is interlaced")
	}

	t.HActive = int(x[2]) | int(x[4]&0xf0)<<4
	t.HBlank = int(x[3]) | int(x[4]&0x0f)<<8
	t.HFrontPorch = int(x[8]) | int(x[11]&0xc0)<<2
	t.HSync = int(x[9]) | int(x[11]&0x30)<<4
	t.HBackPorch = t.HBlank - t.HSync - t.HFrontPorch

	t.VActive = int(x[5]) | int(x[7]&0xf0)<<4
	t.VBlank = int(x[6]) | int(x[7]&0x0f)<<8
	t.VFrontPorch = int(x[10]>>4) | int(x[11]&0x0c)<<2
	t.VSync = int(x[10]&0x0f) | int(x[11]&0x03)<<4
	t.VBackPorch = t.VBlank - t.VSync - t.VFrontPorch

	if t.HActive == 0 || t.VActive == 0 || t.HBackPorch < 0 || t.VBackPorch < 0 {
		return DetailedTiming{}, curated.Errorf(DisplayDataInvalid,
			fmt.Sprintf("inconsistent blanking in preferred mode %dx%d", t.HActive, t.VActive))
	}

	return t, nil
}

// Hexdump returns the block in the canonical hex+ASCII format.
func (b *Block) Hexdump() string {
	return hex.Dump(b[:])
}
