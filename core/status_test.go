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

package core_test

import (
	"testing"

	"github.com/onefpga/onefpga/core"
	"github.com/onefpga/onefpga/test"
)

func TestStatusBit(t *testing.T) {
	var m core.StatusBitMap

	m.Set(0, true)
	m.Set(17, true)
	m.Set(127, true)
	test.ExpectSuccess(t, m.Get(0))
	test.ExpectSuccess(t, m.Get(17))
	test.ExpectSuccess(t, m.Get(127))
	test.ExpectFailure(t, m.Get(16))
	test.ExpectEquality(t, m[1], uint16(0x0002))
	test.ExpectEquality(t, m[7], uint16(0x8000))

	m.Set(17, false)
	test.ExpectFailure(t, m.Get(17))
}

func TestStatusRange(t *testing.T) {
	var m core.StatusBitMap

	// range crosses a word boundary
	m.SetRange(14, 18, 0xf)
	test.ExpectEquality(t, m[0], uint16(0xc000))
	test.ExpectEquality(t, m[1], uint16(0x0003))
	test.ExpectEquality(t, m.GetRange(14, 18), uint32(0xf))
	test.ExpectEquality(t, m.GetRange(15, 17), uint32(0x3))

	// value is masked to the width of the range
	for i := range m {
		m[i] = 0xffff
	}
	m.SetRange(5, 8, 0x160)
	test.ExpectEquality(t, m.GetRange(5, 8), uint32(0x160&0b111))
	test.ExpectEquality(t, m[0], uint16(0xff1f))

	// widest range
	m.SetRange(96, 128, 0x12345678)
	test.ExpectEquality(t, m.GetRange(96, 128), uint32(0x12345678))
	test.ExpectEquality(t, m[6], uint16(0x5678))
	test.ExpectEquality(t, m[7], uint16(0x1234))
}

func TestStatusRangePrecondition(t *testing.T) {
	var m core.StatusBitMap
	test.ExpectPanic(t, func() { m.SetRange(8, 5, 0) })
	test.ExpectPanic(t, func() { m.SetRange(5, 5, 0) })
	test.ExpectPanic(t, func() { m.SetRange(-1, 5, 0) })
	test.ExpectPanic(t, func() { m.SetRange(100, 129, 0) })
	test.ExpectPanic(t, func() { m.GetRange(0, 33) })
	test.ExpectPanic(t, func() { m.Get(128) })
}
