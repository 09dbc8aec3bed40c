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

// the granularity of the payload of a single command.
type granularity int

const (
	granularityNone granularity = iota
	granularityByte
	granularityWord
)

func (g granularity) String() string {
	switch g {
	case granularityByte:
		return "byte"
	case granularityWord:
		return "word"
	}
	return "none"
}

// Stream is the payload channel of a single command. Once an error has
// occurred on the stream all further operations are ignored and the error is
// returned by the Transmit() call that created the stream.
type Stream struct {
	t           Transport
	granularity granularity
	err         error
	count       int
}

func (s *Stream) use(g granularity) bool {
	if s.granularity == granularityNone {
		s.granularity = g
	} else if s.granularity != g {
		precondition("%s transfer in a %s oriented payload", g, s.granularity)
	}
	return s.err == nil
}

func (s *Stream) transfer(w uint16) uint16 {
	r, err := s.t.Transfer(w)
	if err != nil {
		s.err = err
		return 0
	}
	s.count++
	return r
}

// Byte writes a single byte.
func (s *Stream) Byte(b uint8) {
	if s.use(granularityByte) {
		s.transfer(uint16(b))
	}
}

// Bytes writes each byte of the slice.
func (s *Stream) Bytes(p []byte) {
	if !s.use(granularityByte) {
		return
	}
	for _, b := range p {
		s.transfer(uint16(b))
		if s.err != nil {
			return
		}
	}
}

// Word writes a 16-bit word.
func (s *Stream) Word(w uint16) {
	if s.use(granularityWord) {
		s.transfer(w)
	}
}

// Words writes each word of the slice.
func (s *Stream) Words(p []uint16) {
	if !s.use(granularityWord) {
		return
	}
	for _, w := range p {
		s.transfer(w)
		if s.err != nil {
			return
		}
	}
}

// ReadByte reads a byte. A zero is returned if the stream is in error.
func (s *Stream) ReadByte() uint8 {
	if !s.use(granularityByte) {
		return 0
	}
	return uint8(s.transfer(0))
}

// ReadWord reads a 16-bit word. A zero is returned if the stream is in error.
func (s *Stream) ReadWord() uint16 {
	if !s.use(granularityWord) {
		return 0
	}
	return s.transfer(0)
}

// Err returns the first error to occur on the stream.
func (s *Stream) Err() error {
	return s.err
}

// Count returns the number of successful payload transfers.
func (s *Stream) Count() int {
	return s.count
}
