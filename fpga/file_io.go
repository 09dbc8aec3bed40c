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

import (
	"fmt"
	"strings"
)

// FileIndex selects the file slot of the core that the following transfer
// is for.
type FileIndex uint8

// Name implements the Command interface.
func (FileIndex) Name() string { return "FileIndex" }

// Address implements the Command interface.
func (FileIndex) Address() Address { return Address{FeatureFPGA, OpFileIndex} }

// WritePayload implements the Writer interface.
func (c FileIndex) WritePayload(s *Stream) {
	s.Byte(uint8(c))
}

// FileExtension tells the core the extension of the file about to be
// transferred. The extension is sent as four bytes: a dot followed by up to
// three characters, padded with zeroes.
type FileExtension [4]byte

// NewFileExtension creates a FileExtension from a string. A leading dot in
// the string is ignored and characters after the third are dropped.
func NewFileExtension(ext string) FileExtension {
	ext = strings.TrimPrefix(ext, ".")
	e := FileExtension{'.'}
	for i := 0; i < 3 && i < len(ext); i++ {
		e[i+1] = ext[i]
	}
	return e
}

func (c FileExtension) String() string {
	return strings.TrimRight(string(c[:]), "\x00")
}

// Name implements the Command interface.
func (FileExtension) Name() string { return "FileExtension" }

// Address implements the Command interface.
func (FileExtension) Address() Address { return Address{FeatureFPGA, OpFileInfo} }

// WritePayload implements the Writer interface.
func (c FileExtension) WritePayload(s *Stream) {
	s.Word(uint16(c[0])<<8 | uint16(c[1]))
	s.Word(uint16(c[2])<<8 | uint16(c[3]))
}

// FileTxEnabled starts a file transfer. Size is optional. A nil size tells
// the core that the size of the file is not known.
//
// The bus is 16 bits wide so the enable flag is sent as the word 0x00ff,
// which keeps the payload word oriented.
type FileTxEnabled struct {
	Size *uint32
}

// Name implements the Command interface.
func (FileTxEnabled) Name() string { return "FileTxEnabled" }

// Address implements the Command interface.
func (FileTxEnabled) Address() Address { return Address{FeatureFPGA, OpFileTx} }

// WritePayload implements the Writer interface.
func (c FileTxEnabled) WritePayload(s *Stream) {
	s.Word(0x00ff)
	if c.Size != nil {
		s.Word(uint16(*c.Size))
		s.Word(uint16(*c.Size >> 16))
	}
}

// FileTxDisabled ends a file transfer. It must follow the last FileTxData
// command.
type FileTxDisabled struct{}

// Name implements the Command interface.
func (FileTxDisabled) Name() string { return "FileTxDisabled" }

// Address implements the Command interface.
func (FileTxDisabled) Address() Address { return Address{FeatureFPGA, OpFileTx} }

// WritePayload implements the Writer interface.
func (FileTxDisabled) WritePayload(s *Stream) {
	s.Word(0x0000)
}

// FileTxData8 sends a chunk of file data to a core with an 8-bit download
// bus.
type FileTxData8 []byte

// Name implements the Command interface.
func (FileTxData8) Name() string { return "FileTxData8" }

// Address implements the Command interface.
func (FileTxData8) Address() Address { return Address{FeatureFPGA, OpFileTxDat} }

// WritePayload implements the Writer interface.
func (c FileTxData8) WritePayload(s *Stream) {
	s.Bytes(c)
}

func (c FileTxData8) String() string {
	return fmt.Sprintf("FileTxData8[..%d]", len(c))
}

// FileTxData16 sends a chunk of file data to a core with a 16-bit download
// bus.
type FileTxData16 []uint16

// Name implements the Command interface.
func (FileTxData16) Name() string { return "FileTxData16" }

// Address implements the Command interface.
func (FileTxData16) Address() Address { return Address{FeatureFPGA, OpFileTxDat} }

// WritePayload implements the Writer interface.
func (c FileTxData16) WritePayload(s *Stream) {
	s.Words(c)
}

func (c FileTxData16) String() string {
	return fmt.Sprintf("FileTxData16[..%d]", len(c))
}

// PackWords converts file data for a core with a 16-bit download bus. Bytes
// are packed little-endian and an odd final byte is padded with zero.
func PackWords(data []byte) []uint16 {
	w := make([]uint16, (len(data)+1)/2)
	for i := range w {
		lo := uint16(data[i*2])
		var hi uint16
		if i*2+1 < len(data) {
			hi = uint16(data[i*2+1])
		}
		w[i] = hi<<8 | lo
	}
	return w
}
