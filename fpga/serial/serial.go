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

// Package serial is the fpga.Transport for development boards where the
// FPGA bridge is reached over a UART. A small bridge design on the FPGA side
// turns each frame into the equivalent register access.
//
// Frames sent to the bridge:
//
//	'S' f0 f1 f2 f3 e    select (e=1) or deselect (e=0) feature f (little-endian)
//	'W' w0 w1            transfer word w (little-endian)
//
// Replies from the bridge:
//
//	'K'                  select acknowledged
//	'R' r0 r1            word read during the transfer
//	'E' c                error with code c
package serial

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/onefpga/onefpga/fpga"
	"github.com/pkg/term"
)

// DefaultBaud is the speed of the bridge UART.
const DefaultBaud = 921600

// DefaultTimeout is how long to wait for a reply from the bridge.
const DefaultTimeout = 500 * time.Millisecond

// frame markers.
const (
	frameSelect   = 'S'
	frameTransfer = 'W'
	replyOK       = 'K'
	replyWord     = 'R'
	replyError    = 'E'
)

// Error codes sent by the bridge in an error reply.
var (
	ErrNotReady = errors.New("serial: FPGA not ready")
	ErrTimeout  = errors.New("serial: acknowledge timeout")
)

// Link is an implementation of fpga.Transport.
type Link struct {
	rw     io.ReadWriter
	closer io.Closer
	buf    [6]byte
}

// Open the serial device and put it in raw mode at the requested speed.
func Open(device string, baud int) (*Link, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}

	t, err := term.Open(device, term.Speed(baud), term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("serial: %w", err)
	}

	if err := t.SetReadTimeout(DefaultTimeout); err != nil {
		t.Close()
		return nil, fmt.Errorf("serial: %w", err)
	}

	// discard anything left over from an earlier session
	_ = t.Flush()

	return &Link{rw: t, closer: t}, nil
}

// NewLink creates a Link over an existing connection.
func NewLink(rw io.ReadWriter) *Link {
	l := &Link{rw: rw}
	if c, ok := rw.(io.Closer); ok {
		l.closer = c
	}
	return l
}

// Close the connection to the bridge.
func (l *Link) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Select implements the fpga.Transport interface.
func (l *Link) Select(feature fpga.Feature, enable bool) error {
	l.buf[0] = frameSelect
	binary.LittleEndian.PutUint32(l.buf[1:5], uint32(feature))
	l.buf[5] = 0
	if enable {
		l.buf[5] = 1
	}

	if _, err := l.rw.Write(l.buf[:6]); err != nil {
		return fmt.Errorf("serial: %w", err)
	}

	_, err := l.reply(replyOK)
	return err
}

// Transfer implements the fpga.Transport interface.
func (l *Link) Transfer(word uint16) (uint16, error) {
	l.buf[0] = frameTransfer
	binary.LittleEndian.PutUint16(l.buf[1:3], word)

	if _, err := l.rw.Write(l.buf[:3]); err != nil {
		return 0, fmt.Errorf("serial: %w", err)
	}

	return l.reply(replyWord)
}

// reply reads the reply from the bridge and checks it is of the expected kind.
func (l *Link) reply(expect byte) (uint16, error) {
	if _, err := io.ReadFull(l.rw, l.buf[:1]); err != nil {
		return 0, l.readError(err)
	}

	switch l.buf[0] {
	case replyOK:
		if expect == replyOK {
			return 0, nil
		}
	case replyWord:
		if expect == replyWord {
			if _, err := io.ReadFull(l.rw, l.buf[1:3]); err != nil {
				return 0, l.readError(err)
			}
			return binary.LittleEndian.Uint16(l.buf[1:3]), nil
		}
	case replyError:
		if _, err := io.ReadFull(l.rw, l.buf[1:2]); err != nil {
			return 0, l.readError(err)
		}
		switch l.buf[1] {
		case 1:
			return 0, ErrNotReady
		case 2:
			return 0, ErrTimeout
		}
		return 0, fmt.Errorf("serial: bridge error %d", l.buf[1])
	}

	return 0, fmt.Errorf("serial: unexpected reply %q", l.buf[0])
}

// a read timeout on the terminal shows up as a short read.
func (l *Link) readError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTimeout
	}
	return fmt.Errorf("serial: %w", err)
}
