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

// Package loopback is an implementation of the fpga.Transport interface that
// records every transaction and simulates the responses of a core. It is
// used by the tests of the packages that sit on top of the command bus and
// by the -bus loopback option of the program, which allows the firmware to
// be run without an FPGA.
//
// Transactions are kept in an arena and referred to by a Handle. A
// transaction is opened by selecting a feature and closed by deselecting it.
package loopback

import (
	"errors"
	"fmt"

	"github.com/onefpga/onefpga/fpga"
)

// Handle refers to a transaction in the arena.
type Handle int

// NoTransaction is the Handle value when no feature is selected.
const NoTransaction Handle = -1

// Transaction is one selected/deselected period on the bus.
type Transaction struct {
	Feature fpga.Feature
	Opcode  fpga.Opcode

	// words written after the opcode header
	Payload []uint16

	// words returned for each payload transfer
	Response []uint16

	header bool
}

// Loopback simulates the FPGA end of the bus.
type Loopback struct {
	arena   []Transaction
	current Handle

	configString string
	wide         bool

	status        [fpga.StatusWords]uint16
	statusChanged bool
	statusSeq     uint16

	transfers int
	failAfter int
	failErr   error
}

// NewLoopback is the preferred method of initialisation for the Loopback
// type.
func NewLoopback() *Loopback {
	return &Loopback{
		current:   NoTransaction,
		failAfter: -1,
	}
}

// SetConfigString sets the string returned by the GetConfigString command.
func (lb *Loopback) SetConfigString(s string) {
	lb.configString = s
}

// ConfigString returns the string that would be returned by the
// GetConfigString command.
func (lb *Loopback) ConfigString() string {
	return lb.configString
}

// SetWideFileIO sets the width of the file download bus of the simulated core.
func (lb *Loopback) SetWideFileIO(wide bool) {
	lb.wide = wide
}

// WideFileIO implements the fpga.WideTransport interface.
func (lb *Loopback) WideFileIO() bool {
	return lb.wide
}

// SetCoreStatus simulates the core changing its own status bits. The change
// is reported to the next GetStatusBits command.
func (lb *Loopback) SetCoreStatus(bits [fpga.StatusWords]uint16) {
	lb.status = bits
	lb.statusChanged = true
}

// FailAfter causes every transfer after the next n transfers to fail with
// err. A negative n removes the fault.
func (lb *Loopback) FailAfter(n int, err error) {
	lb.transfers = 0
	lb.failAfter = n
	lb.failErr = err
}

// Selected returns the currently selected feature.
func (lb *Loopback) Selected() fpga.Feature {
	if lb.current == NoTransaction {
		return fpga.FeatureNone
	}
	return lb.arena[lb.current].Feature
}

// Select implements the fpga.Transport interface.
func (lb *Loopback) Select(feature fpga.Feature, enable bool) error {
	if !enable {
		lb.current = NoTransaction
		return nil
	}
	if lb.current != NoTransaction {
		return fmt.Errorf("loopback: %s selected while %s is active", feature, lb.arena[lb.current].Feature)
	}
	lb.arena = append(lb.arena, Transaction{Feature: feature})
	lb.current = Handle(len(lb.arena) - 1)
	return nil
}

// Transfer implements the fpga.Transport interface.
func (lb *Loopback) Transfer(word uint16) (uint16, error) {
	if lb.failAfter >= 0 && lb.transfers >= lb.failAfter {
		return 0, lb.failErr
	}
	lb.transfers++

	if lb.current == NoTransaction {
		return 0, errors.New("loopback: transfer with no feature selected")
	}

	tx := &lb.arena[lb.current]
	if !tx.header {
		tx.Opcode = fpga.Opcode(word)
		tx.header = true
		return 0, nil
	}

	tx.Payload = append(tx.Payload, word)
	r := lb.respond(tx, len(tx.Payload)-1, word)
	tx.Response = append(tx.Response, r)

	return r, nil
}

// respond simulates the core. n is the index of the payload transfer.
func (lb *Loopback) respond(tx *Transaction, n int, word uint16) uint16 {
	if tx.Feature != fpga.FeatureIO {
		return 0
	}

	switch tx.Opcode {
	case fpga.OpGetString:
		if n < len(lb.configString) {
			return uint16(lb.configString[n])
		}
	case fpga.OpSetStatus:
		if n < len(lb.status) {
			lb.status[n] = word
			lb.statusChanged = true
		}
	case fpga.OpGetStatus:
		if n == 0 {
			if !lb.statusChanged {
				return 0
			}
			lb.statusSeq++
			return 0xa0 | lb.statusSeq&0x0f
		}
		if n <= len(lb.status) {
			if n == len(lb.status) {
				lb.statusChanged = false
			}
			return lb.status[n-1]
		}
	}

	return 0
}

// Len returns the number of transactions in the arena.
func (lb *Loopback) Len() int {
	return len(lb.arena)
}

// Transaction returns a copy of the transaction referred to by the handle.
func (lb *Loopback) Transaction(h Handle) (Transaction, bool) {
	if h < 0 || int(h) >= len(lb.arena) {
		return Transaction{}, false
	}
	return lb.arena[h], true
}

// Transactions returns a copy of all transactions in the arena.
func (lb *Loopback) Transactions() []Transaction {
	c := make([]Transaction, len(lb.arena))
	copy(c, lb.arena)
	return c
}

// Filter returns the handles of the transactions addressed to the feature
// and opcode.
func (lb *Loopback) Filter(addr fpga.Address) []Handle {
	var h []Handle
	for i := range lb.arena {
		if lb.arena[i].Feature == addr.Feature && lb.arena[i].Opcode == addr.Opcode {
			h = append(h, Handle(i))
		}
	}
	return h
}

// Clear the transaction arena. Simulated core state is not affected.
func (lb *Loopback) Clear() {
	lb.arena = lb.arena[:0]
	lb.current = NoTransaction
}
