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

package userinput

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/onefpga/onefpga/core"
)

// MenuKey toggles the on-screen display. ctrl-]
const MenuKey = 0x1d

// QuitKey ends the input. ctrl-c
const QuitKey = 0x03

// scancodes of the keys that are not letters or digits.
var scancodes = map[byte]uint16{
	'\r': 0x28,
	'\n': 0x28,
	0x1b: 0x29,
	0x7f: 0x2a,
	0x08: 0x2a,
	'\t': 0x2b,
	' ':  0x2c,
	'-':  0x2d,
	'=':  0x2e,
	'[':  0x2f,
	']':  0x30,
	'\\': 0x31,
	';':  0x33,
	'\'': 0x34,
	'`':  0x35,
	',':  0x36,
	'.':  0x37,
	'/':  0x38,
}

// Scancode returns the keyboard scancode for the character typed at the
// terminal. Upper and lower case letters have the same scancode.
func Scancode(b byte) (uint16, bool) {
	switch {
	case b >= 'a' && b <= 'z':
		return 0x04 + uint16(b-'a'), true
	case b >= 'A' && b <= 'Z':
		return 0x04 + uint16(b-'A'), true
	case b >= '1' && b <= '9':
		return 0x1e + uint16(b-'1'), true
	case b == '0':
		return 0x27, true
	}
	s, ok := scancodes[b]
	return s, ok
}

// Terminal reads from r and sends the input to the channel until QuitKey is
// read, the reader is exhausted or the context is done. The channel is
// closed when Terminal returns. Characters that have no scancode are
// ignored.
func Terminal(ctx context.Context, r io.Reader, input chan<- core.Input) error {
	defer close(input)

	br := bufio.NewReader(r)
	for {
		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		var in core.Input
		switch b {
		case QuitKey:
			return nil
		case MenuKey:
			in = core.MenuInput{}
		default:
			s, ok := Scancode(b)
			if !ok {
				continue
			}
			in = core.KeyInput(s)
		}

		select {
		case input <- in:
		case <-ctx.Done():
			return nil
		}
	}
}
