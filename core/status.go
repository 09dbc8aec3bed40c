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

package core

import (
	"fmt"
	"strings"

	"github.com/onefpga/onefpga/fpga"
)

// StatusBits is the number of bits in the status register of a core.
const StatusBits = fpga.StatusWords * 16

// StatusBitMap is a copy of the status register of a core. It is a value
// type and a StatusBitMap returned by the Manager is never updated behind
// the caller's back.
type StatusBitMap [fpga.StatusWords]uint16

func checkRange(lo, hi int) {
	if lo < 0 || hi > StatusBits || lo >= hi || hi-lo > 32 {
		panic(fpga.Precondition(fmt.Sprintf("status bit range [%d, %d) is not valid", lo, hi)))
	}
}

// Get returns the value of a single bit.
func (m StatusBitMap) Get(bit int) bool {
	checkRange(bit, bit+1)
	return m[bit/16]&(1<<(bit%16)) != 0
}

// Set the value of a single bit.
func (m *StatusBitMap) Set(bit int, v bool) {
	checkRange(bit, bit+1)
	if v {
		m[bit/16] |= 1 << (bit % 16)
	} else {
		m[bit/16] &^= 1 << (bit % 16)
	}
}

// GetRange returns the bits from lo up to but not including hi. The range
// can be no wider than 32 bits.
func (m StatusBitMap) GetRange(lo, hi int) uint32 {
	checkRange(lo, hi)
	var v uint32
	for b := hi - 1; b >= lo; b-- {
		v <<= 1
		if m.Get(b) {
			v |= 1
		}
	}
	return v
}

// SetRange sets the bits from lo up to but not including hi. Bits of the
// value that do not fit in the range are ignored.
func (m *StatusBitMap) SetRange(lo, hi int, value uint32) {
	checkRange(lo, hi)
	for b := lo; b < hi; b++ {
		m.Set(b, value&1 != 0)
		value >>= 1
	}
}

func (m StatusBitMap) String() string {
	s := strings.Builder{}
	for i := len(m) - 1; i >= 0; i-- {
		fmt.Fprintf(&s, "%04x", m[i])
	}
	return s.String()
}
