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

package osd

import (
	"image"
	"image/color"

	"github.com/onefpga/onefpga/fpga"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Size of the display in pixels.
const (
	Width      = 256
	LineRows   = 8
	Height     = fpga.OsdLines * LineRows
	TextRows   = Height / textHeight
	textHeight = 13
)

// the face used by Print(). the height of a text row is the height of the
// face.
var face = basicfont.Face7x13

// Buffer is an image of the on-screen display. It implements the
// draw.Image interface.
type Buffer struct {
	lines [fpga.OsdLines][Width]byte
	dirty [fpga.OsdLines]bool
}

// NewBuffer returns a blank buffer. Every line is dirty so that the first
// Flush() clears the display.
func NewBuffer() *Buffer {
	b := &Buffer{}
	b.markAll()
	return b
}

func (b *Buffer) markAll() {
	for i := range b.dirty {
		b.dirty[i] = true
	}
}

// ColorModel implements the image.Image interface.
func (b *Buffer) ColorModel() color.Model {
	return color.GrayModel
}

// Bounds implements the image.Image interface.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, Width, Height)
}

// At implements the image.Image interface.
func (b *Buffer) At(x, y int) color.Color {
	if !image.Pt(x, y).In(b.Bounds()) {
		return color.Black
	}
	if b.lines[y/LineRows][x]&(1<<(y%LineRows)) != 0 {
		return color.White
	}
	return color.Black
}

// Set implements the draw.Image interface. A pixel is lit if its gray value
// is at least half intensity.
func (b *Buffer) Set(x, y int, c color.Color) {
	if !image.Pt(x, y).In(b.Bounds()) {
		return
	}

	l := y / LineRows
	v := b.lines[l][x]
	bit := byte(1 << (y % LineRows))

	if color.GrayModel.Convert(c).(color.Gray).Y >= 0x80 {
		v |= bit
	} else {
		v &^= bit
	}

	if v != b.lines[l][x] {
		b.lines[l][x] = v
		b.dirty[l] = true
	}
}

// Line returns a copy of the bytes of the line.
func (b *Buffer) Line(line int) []byte {
	c := make([]byte, Width)
	copy(c, b.lines[line][:])
	return c
}

// Dirty returns true if the line has changed since the last Flush().
func (b *Buffer) Dirty(line int) bool {
	return b.dirty[line]
}

// Clear the buffer.
func (b *Buffer) Clear() {
	b.lines = [fpga.OsdLines][Width]byte{}
	b.markAll()
}

// DrawText draws the string with the baseline of the text at y. Returns the
// x position after the last character.
func (b *Buffer) DrawText(x, y int, s string) int {
	d := font.Drawer{
		Dst:  b,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
	return d.Dot.X.Round()
}

// Print clears the text row and draws the string in it. Text rows are
// numbered from 0 to TextRows-1.
func (b *Buffer) Print(row int, s string) {
	top := row * textHeight
	for y := top; y < top+textHeight; y++ {
		for x := range Width {
			b.Set(x, y, color.Black)
		}
	}
	b.DrawText(0, top+face.Ascent, s)
}

// Flush sends the lines that have changed since the last call to Flush().
func (b *Buffer) Flush(t *Transport) error {
	for i := range b.lines {
		if !b.dirty[i] {
			continue
		}
		if err := t.WriteLine(i, b.lines[i][:]); err != nil {
			return err
		}
		b.dirty[i] = false
	}
	return nil
}
