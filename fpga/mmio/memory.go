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
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// Memory is a region of physical memory shared with the FPGA. Cores use
// shared memory for data that is too large for the bridge, such as save
// states.
type Memory struct {
	mem []byte

	// nil for memory not backed by a real device
	file *os.File
}

// OpenMemory maps size bytes of physical memory starting at base. The base
// must be a multiple of the page size.
func OpenMemory(device string, base int64, size int) (*Memory, error) {
	if device == "" {
		device = DefaultDevice
	}
	if base%int64(os.Getpagesize()) != 0 {
		return nil, fmt.Errorf("mmio: %#x is not page aligned", base)
	}

	f, err := os.OpenFile(device, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("mmio: %w", err)
	}

	mem, err := unix.Mmap(int(f.Fd()), base, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmio: mmap: %w", err)
	}

	return &Memory{mem: mem, file: f}, nil
}

// ReadAt implements the io.ReaderAt interface. The offset is from the base
// of the region.
func (m *Memory) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("mmio: negative offset %d", off)
	}
	if off >= int64(len(m.mem)) {
		return 0, io.EOF
	}
	n := copy(p, m.mem[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Len returns the size of the region.
func (m *Memory) Len() int {
	return len(m.mem)
}

// Close unmaps the region and closes the device.
func (m *Memory) Close() error {
	var err error
	if m.file != nil {
		err = unix.Munmap(m.mem)
		err = errors.Join(err, m.file.Close())
		m.file = nil
	}
	m.mem = nil
	return err
}
