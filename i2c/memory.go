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

package i2c

import "fmt"

// Write is a record of a single register write to a Memory device.
type Write struct {
	Reg   uint8
	Value uint8
}

// Memory is an in-memory implementation of Device. Useful for testing and for
// running the firmware without hardware.
type Memory struct {
	Regs [256]uint8

	// every write in the order they happened
	Writes []Write

	// if not nil then every access fails with this error
	Fault error

	// called after every write. can be used to simulate a device reacting
	// to a command
	OnWrite func(m *Memory, reg uint8, value uint8)
}

// ReadByteData implements the Device interface.
func (m *Memory) ReadByteData(reg uint8) (uint8, error) {
	if m.Fault != nil {
		return 0, fmt.Errorf("i2c: register %#02x: %w", reg, m.Fault)
	}
	return m.Regs[reg], nil
}

// WriteByteData implements the Device interface.
func (m *Memory) WriteByteData(reg uint8, value uint8) error {
	if m.Fault != nil {
		return fmt.Errorf("i2c: register %#02x: %w", reg, m.Fault)
	}
	m.Regs[reg] = value
	m.Writes = append(m.Writes, Write{Reg: reg, Value: value})
	if m.OnWrite != nil {
		m.OnWrite(m, reg, value)
	}
	return nil
}
