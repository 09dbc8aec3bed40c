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

import (
	"errors"

	"github.com/onefpga/onefpga/curated"
	"github.com/onefpga/onefpga/logger"
)

// TransportError is returned by Transmit() when the transport fails. The
// first value is the name of the command.
const TransportError = "fpga: %s: %v"

// Transport is the physical link to the FPGA.
type Transport interface {
	// Select enables or disables the chip-select for the feature domain
	Select(feature Feature, enable bool) error

	// Transfer writes a word to the selected feature and returns the word
	// read back during the same transfer
	Transfer(word uint16) (uint16, error)
}

// Bus sends commands over a Transport.
type Bus struct {
	t Transport

	// the feature currently selected. FeatureNone outside of a Transmit() call
	selected Feature

	// true between FileTxEnabled and FileTxDisabled
	fileTx bool

	// commands are logged with this permission
	trace logger.Permission
}

// NewBus is the preferred method of initialisation for the Bus type.
func NewBus(t Transport) *Bus {
	return &Bus{
		t:     t,
		trace: logger.Deny,
	}
}

// SetTrace turns logging of every command on or off.
func (b *Bus) SetTrace(trace bool) {
	if trace {
		b.trace = logger.Allow
	} else {
		b.trace = logger.Deny
	}
}

// Transport returns the underlying transport.
func (b *Bus) Transport() Transport {
	return b.t
}

// Selected returns the feature currently selected on the bus.
func (b *Bus) Selected() Feature {
	return b.selected
}

// FileTransferActive is true if a FileTxEnabled command has been sent without
// a following FileTxDisabled.
func (b *Bus) FileTransferActive() bool {
	return b.fileTx
}

// sequence checks the ordering contract of the file transfer commands.
func (b *Bus) sequence(cmd Command) {
	switch cmd.(type) {
	case FileTxData8, FileTxData16:
		if !b.fileTx {
			precondition("%s sent before FileTxEnabled", cmd.Name())
		}
	}
}

// update the file transfer state after the command has been sent.
func (b *Bus) sent(cmd Command) {
	switch cmd.(type) {
	case FileTxEnabled:
		b.fileTx = true
	case FileTxDisabled:
		b.fileTx = false
	}
}

// Transmit sends the command to the FPGA. Any payload is written and any
// response is read before the feature is deselected. Errors from the
// transport are always returned and never retried.
func (b *Bus) Transmit(cmd Command) error {
	b.sequence(cmd)

	addr := cmd.Address()
	logger.Logf(b.trace, "fpga", "%s [%s]", cmd.Name(), addr)

	if err := b.t.Select(addr.Feature, true); err != nil {
		return curated.Errorf(TransportError, cmd.Name(), err)
	}
	b.selected = addr.Feature

	err := b.stream(cmd, addr)

	b.selected = FeatureNone
	if derr := b.t.Select(addr.Feature, false); derr != nil {
		err = errors.Join(err, derr)
	}

	if err != nil {
		return curated.Errorf(TransportError, cmd.Name(), err)
	}

	b.sent(cmd)

	return nil
}

// WideTransport is implemented by transports that can tell the width of the
// file download bus of the running core.
type WideTransport interface {
	// WideFileIO is true if the core expects FileTxData16 instead of
	// FileTxData8
	WideFileIO() bool
}

// WideFileIO returns true if the running core has a 16-bit file download
// bus. Transports that do not implement WideTransport are always 8-bit.
func (b *Bus) WideFileIO() bool {
	if w, ok := b.t.(WideTransport); ok {
		return w.WideFileIO()
	}
	return false
}

func (b *Bus) stream(cmd Command, addr Address) error {
	if _, err := b.t.Transfer(uint16(addr.Opcode)); err != nil {
		return err
	}

	s := &Stream{t: b.t}

	if w, ok := cmd.(Writer); ok {
		w.WritePayload(s)
	}

	// a new stream for the response so that a word oriented command can
	// still read bytes back
	if r, ok := cmd.(Reader); ok && s.err == nil {
		rs := &Stream{t: b.t}
		r.ReadPayload(rs)
		return rs.err
	}

	return s.err
}
