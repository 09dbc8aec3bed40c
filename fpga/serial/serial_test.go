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

package serial_test

import (
	"bytes"
	"testing"

	"github.com/onefpga/onefpga/fpga"
	"github.com/onefpga/onefpga/fpga/serial"
	"github.com/onefpga/onefpga/test"
)

// bridge is a scripted serial connection. Writes are recorded and reads
// come from the prepared reply buffer.
type bridge struct {
	sent    bytes.Buffer
	replies bytes.Buffer
}

func (b *bridge) Write(p []byte) (int, error) {
	return b.sent.Write(p)
}

func (b *bridge) Read(p []byte) (int, error) {
	return b.replies.Read(p)
}

func TestSelectAndTransfer(t *testing.T) {
	b := &bridge{}
	b.replies.Write([]byte{'K', 'R', 0x34, 0x12, 'K'})

	l := serial.NewLink(b)
	test.DemandSuccess(t, l.Select(fpga.FeatureOSD, true))

	r, err := l.Transfer(0x0041)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, r, 0x1234)

	test.DemandSuccess(t, l.Select(fpga.FeatureOSD, false))

	test.ExpectEquality(t, b.sent.String(), string([]byte{
		'S', 0x00, 0x00, 0x08, 0x00, 1,
		'W', 0x41, 0x00,
		'S', 0x00, 0x00, 0x08, 0x00, 0,
	}))

	test.ExpectSuccess(t, l.Close())
}

func TestErrors(t *testing.T) {
	b := &bridge{}
	b.replies.Write([]byte{'E', 1, 'E', 2, 'X'})

	l := serial.NewLink(b)
	_, err := l.Transfer(0)
	test.ExpectEquality(t, err, serial.ErrNotReady)

	_, err = l.Transfer(0)
	test.ExpectEquality(t, err, serial.ErrTimeout)

	_, err = l.Transfer(0)
	test.ExpectFailure(t, err)

	// nothing left to read
	_, err = l.Transfer(0)
	test.ExpectEquality(t, err, serial.ErrTimeout)
}

func TestOverBus(t *testing.T) {
	b := &bridge{}
	b.replies.Write([]byte{'K', 'R', 0, 0, 'K'})

	bus := fpga.NewBus(serial.NewLink(b))
	test.DemandSuccess(t, bus.Transmit(fpga.OsdEnable{}))
}
