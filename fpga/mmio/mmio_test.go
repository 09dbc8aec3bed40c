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

package mmio

import (
	"testing"

	"github.com/onefpga/onefpga/fpga"
	"github.com/onefpga/onefpga/test"
)

// fabric simulates the FPGA side of the bridge. It acknowledges the strobe
// immediately and echoes the complement of the word written.
type fabric struct {
	gpo      uint32
	written  []uint16
	dead     bool
	notReady bool
	wide     bool
}

func (f *fabric) readGPO() uint32 {
	return f.gpo
}

func (f *fabric) writeGPO(v uint32) {
	if v&strobe != 0 && f.gpo&strobe == 0 {
		f.written = append(f.written, uint16(v))
	}
	f.gpo = v
}

func (f *fabric) readGPI() uint32 {
	if f.notReady {
		return gpiBusy
	}
	if f.dead {
		return 0
	}
	gpi := (f.gpo & strobe) | uint32(^uint16(f.gpo))
	if f.wide {
		gpi |= gpiWideIO
	}
	return gpi
}

func TestTransfer(t *testing.T) {
	f := &fabric{}
	b := &Bridge{regs: f, Timeout: DefaultTimeout}

	test.DemandSuccess(t, b.Select(fpga.FeatureIO, true))
	test.ExpectEquality(t, f.gpo&uint32(fpga.FeatureMask), uint32(fpga.FeatureIO))
	test.ExpectEquality(t, f.gpo&gpoReady, uint32(gpoReady))

	r, err := b.Transfer(0x1234)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, r, ^uint16(0x1234))
	test.ExpectEquality(t, f.gpo&strobe, 0)

	_, err = b.Transfer(0xabcd)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(f.written), 2)
	test.ExpectEquality(t, f.written[1], 0xabcd)

	test.DemandSuccess(t, b.Select(fpga.FeatureIO, false))
	test.ExpectEquality(t, f.gpo&uint32(fpga.FeatureMask), 0)
}

func TestTimeout(t *testing.T) {
	f := &fabric{dead: true}
	b := &Bridge{regs: f, Timeout: 0}

	_, err := b.Transfer(1)
	test.ExpectEquality(t, err, ErrTimeout)
}

func TestNotReady(t *testing.T) {
	f := &fabric{notReady: true}
	b := &Bridge{regs: f, Timeout: DefaultTimeout}

	_, err := b.Transfer(1)
	test.ExpectEquality(t, err, ErrNotReady)
}

func TestWideFileIO(t *testing.T) {
	f := &fabric{}
	b := &Bridge{regs: f, Timeout: DefaultTimeout}
	test.ExpectFailure(t, b.WideFileIO())

	f.wide = true
	test.ExpectSuccess(t, b.WideFileIO())

	// the bus has no width while the FPGA is not ready
	f.notReady = true
	test.ExpectFailure(t, b.WideFileIO())

	// the width of the bus does not change the data read back
	f.notReady = false
	r, err := b.Transfer(0x00ff)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, r, uint16(0xff00))
}
