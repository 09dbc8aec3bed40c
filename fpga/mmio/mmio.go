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

// Package mmio is the fpga.Transport for the memory mapped bridge between
// the ARM core and the FPGA fabric. The bridge is two 32-bit registers. The
// output register carries the word to send, a strobe bit and the feature
// chip-select bits. The input register carries the word read back and an
// acknowledge bit mirroring the strobe.
package mmio

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/onefpga/onefpga/fpga"
	"golang.org/x/sys/unix"
)

// DefaultDevice is the physical memory device.
const DefaultDevice = "/dev/mem"

// physical address and size of the bridge register page.
const (
	bridgeBase = 0xff706000
	bridgeSize = 0x1000
	gpoOffset  = 0x810
	gpiOffset  = 0x814
)

// bits of the bridge registers.
const (
	strobe   = 1 << 17
	ack      = strobe
	gpoReady = 0x80000000
	gpiBusy  = 0x80000000

	// the file download bus of the core is 16 bits wide
	gpiWideIO = 1 << 16
)

// DefaultTimeout is how long to wait for the FPGA to acknowledge a transfer.
const DefaultTimeout = 100 * time.Millisecond

// ErrNotReady is returned when the FPGA is not programmed or is being
// reprogrammed.
var ErrNotReady = errors.New("mmio: FPGA not ready")

// ErrTimeout is returned when the FPGA does not acknowledge a transfer.
var ErrTimeout = errors.New("mmio: acknowledge timeout")

// registers is the view of the bridge used by the Bridge type.
type registers interface {
	readGPO() uint32
	writeGPO(v uint32)
	readGPI() uint32
}

// mapped registers in a page of physical memory.
type mapped struct {
	mem []byte
}

func (m mapped) reg(offset int) *uint32 {
	return (*uint32)(unsafe.Pointer(&m.mem[offset]))
}

func (m mapped) readGPO() uint32 {
	return atomic.LoadUint32(m.reg(gpoOffset))
}

func (m mapped) writeGPO(v uint32) {
	atomic.StoreUint32(m.reg(gpoOffset), v)
}

func (m mapped) readGPI() uint32 {
	return atomic.LoadUint32(m.reg(gpiOffset))
}

// Bridge is an implementation of fpga.Transport.
type Bridge struct {
	regs    registers
	Timeout time.Duration

	// nil for bridges not backed by a real device
	file *os.File
	mem  []byte
}

// Open maps the bridge registers from the physical memory device.
func Open(device string) (*Bridge, error) {
	if device == "" {
		device = DefaultDevice
	}

	f, err := os.OpenFile(device, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("mmio: %w", err)
	}

	mem, err := unix.Mmap(int(f.Fd()), bridgeBase, bridgeSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmio: mmap: %w", err)
	}

	return &Bridge{
		regs:    mapped{mem: mem},
		Timeout: DefaultTimeout,
		file:    f,
		mem:     mem,
	}, nil
}

// Close unmaps the registers and closes the device.
func (b *Bridge) Close() error {
	var err error
	if b.mem != nil {
		err = unix.Munmap(b.mem)
		b.mem = nil
	}
	if b.file != nil {
		err = errors.Join(err, b.file.Close())
		b.file = nil
	}
	return err
}

// Select implements the fpga.Transport interface.
func (b *Bridge) Select(feature fpga.Feature, enable bool) error {
	gpo := b.regs.readGPO() | gpoReady
	if enable {
		gpo |= uint32(feature)
	} else {
		gpo &^= uint32(feature)
	}
	b.regs.writeGPO(gpo)
	return nil
}

// Transfer implements the fpga.Transport interface.
func (b *Bridge) Transfer(word uint16) (uint16, error) {
	gpo := (b.regs.readGPO() &^ (0xffff | strobe)) | uint32(word)
	b.regs.writeGPO(gpo)
	b.regs.writeGPO(gpo | strobe)

	gpi, err := b.wait(true)
	if err != nil {
		return 0, err
	}

	b.regs.writeGPO(gpo)

	if _, err := b.wait(false); err != nil {
		return 0, err
	}

	return uint16(gpi), nil
}

// WideFileIO implements the fpga.WideTransport interface.
func (b *Bridge) WideFileIO() bool {
	gpi := b.regs.readGPI()
	return gpi&gpiBusy == 0 && gpi&gpiWideIO != 0
}

// wait until the acknowledge bit is in the requested state.
func (b *Bridge) wait(set bool) (uint32, error) {
	deadline := time.Now().Add(b.Timeout)
	for i := 0; ; i++ {
		gpi := b.regs.readGPI()
		if gpi&gpiBusy != 0 {
			return 0, ErrNotReady
		}
		if (gpi&ack != 0) == set {
			return gpi, nil
		}

		// checking the clock is expensive compared to the register read
		if i&0xff == 0xff && time.Now().After(deadline) {
			return 0, ErrTimeout
		}
	}
}
