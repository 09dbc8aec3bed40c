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

import "fmt"

// Command is implemented by every command that can be sent on the bus.
// Address() must be pure. The same command value always maps to the same
// address.
type Command interface {
	Name() string
	Address() Address
}

// Writer is implemented by commands that have a payload.
type Writer interface {
	Command
	WritePayload(s *Stream)
}

// Reader is implemented by commands that read a response from the FPGA. The
// response is read after any payload has been written.
type Reader interface {
	Command
	ReadPayload(s *Stream)
}

// Precondition is the panic value used when the caller of a bus operation
// breaks its contract. eg. transmitting file data without first enabling the
// file transfer, or writing an OSD line outside the range of the display.
type Precondition string

func (p Precondition) Error() string {
	return "precondition: " + string(p)
}

func precondition(format string, args ...any) {
	panic(Precondition(fmt.Sprintf(format, args...)))
}
