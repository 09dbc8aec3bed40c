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
	"github.com/onefpga/onefpga/fpga"
)

// Transport sends the on-screen display to the FPGA.
type Transport struct {
	bus *fpga.Bus
}

// NewTransport is the preferred method of initialisation for the Transport
// type.
func NewTransport(bus *fpga.Bus) *Transport {
	return &Transport{bus: bus}
}

// WriteLine sends one line of the display. Lines are numbered 0 to 8. Any
// other line number is a programming error and causes a panic.
func (t *Transport) WriteLine(line int, data []byte) error {
	return t.bus.Transmit(fpga.NewOsdWriteLine(line, data))
}

// Enable makes the display visible.
func (t *Transport) Enable() error {
	return t.bus.Transmit(fpga.OsdEnable{})
}

// Disable hides the display.
func (t *Transport) Disable() error {
	return t.bus.Transmit(fpga.OsdDisable{})
}
