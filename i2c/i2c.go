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

// Package i2c gives access to devices on an I2C bus through the SMBus
// interface of the Linux i2c-dev driver. Only single register byte reads and
// writes are supported, which is all the HDMI transmitter and the EDID
// EEPROM behind it need.
package i2c

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// DefaultDevice is the bus the HDMI transmitter is connected to.
const DefaultDevice = "/dev/i2c-1"

// Device is a register addressed device on the bus.
type Device interface {
	ReadByteData(reg uint8) (uint8, error)
	WriteByteData(reg uint8, value uint8) error
}

// ioctl requests of the i2c-dev driver.
const (
	ioctlSlave = 0x0703
	ioctlSMBus = 0x0720
)

// SMBus transaction parameters.
const (
	smbusWrite    = 0
	smbusRead     = 1
	smbusByteData = 2
)

// argument of the I2C_SMBUS ioctl. the data union is large enough for a
// block transfer even though only the first byte is used.
type smbusIoctlData struct {
	readWrite uint8
	command   uint8
	size      uint32
	data      *[34]byte
}

// SMBus is an implementation of Device.
type SMBus struct {
	file *os.File
	addr uint16
}

// Open the bus device and bind it to the device at addr.
func Open(device string, addr uint16) (*SMBus, error) {
	if device == "" {
		device = DefaultDevice
	}

	f, err := os.OpenFile(device, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("i2c: %w", err)
	}

	if err := unix.IoctlSetInt(int(f.Fd()), ioctlSlave, int(addr)); err != nil {
		f.Close()
		return nil, fmt.Errorf("i2c: address %#02x: %w", addr, err)
	}

	return &SMBus{file: f, addr: addr}, nil
}

func (b *SMBus) String() string {
	return fmt.Sprintf("%s@%#02x", b.file.Name(), b.addr)
}

// Close the bus device.
func (b *SMBus) Close() error {
	return b.file.Close()
}

func (b *SMBus) access(readWrite uint8, reg uint8, data *[34]byte) error {
	args := smbusIoctlData{
		readWrite: readWrite,
		command:   reg,
		size:      smbusByteData,
		data:      data,
	}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, b.file.Fd(), ioctlSMBus, uintptr(unsafe.Pointer(&args)))
	if errno != 0 {
		return fmt.Errorf("i2c: %s register %#02x: %w", b, reg, errno)
	}
	return nil
}

// ReadByteData implements the Device interface.
func (b *SMBus) ReadByteData(reg uint8) (uint8, error) {
	var data [34]byte
	if err := b.access(smbusRead, reg, &data); err != nil {
		return 0, err
	}
	return data[0], nil
}

// WriteByteData implements the Device interface.
func (b *SMBus) WriteByteData(reg uint8, value uint8) error {
	var data [34]byte
	data[0] = value
	return b.access(smbusWrite, reg, &data)
}
