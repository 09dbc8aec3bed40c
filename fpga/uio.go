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

// StatusWords is the number of 16-bit words in the status register of a
// core.
const StatusWords = 8

// marker in the first word of a GetStatusBits response when the core has
// new status bits to report.
const (
	statusChangedMask   = 0xf0
	statusChangedMarker = 0xa0
)

// maximum length of the configuration string read from a core.
const maxConfigString = 16 * 1024

// Keyboard forwards a key scancode to the core.
type Keyboard uint16

// Name implements the Command interface.
func (Keyboard) Name() string { return "Keyboard" }

// Address implements the Command interface.
func (Keyboard) Address() Address { return Address{FeatureIO, OpKeyboard} }

// WritePayload implements the Writer interface.
func (c Keyboard) WritePayload(s *Stream) {
	s.Word(uint16(c))
}

// MaxAttenuation is the largest attenuation of the audio output before it
// is muted.
const MaxAttenuation = 7

// AudioMute is the bit of the AudioVolume value that silences the core.
const AudioMute = 0x10

// AudioVolume sets the attenuation of the audio output of the core. The
// output is halved for every step of attenuation.
type AudioVolume uint8

// Name implements the Command interface.
func (AudioVolume) Name() string { return "AudioVolume" }

// Address implements the Command interface.
func (AudioVolume) Address() Address { return Address{FeatureIO, OpAudioVol} }

// WritePayload implements the Writer interface.
func (c AudioVolume) WritePayload(s *Stream) {
	s.Byte(uint8(c))
}

// MaxJoysticks is the number of joysticks a core can be sent.
const MaxJoysticks = 6

// Joystick sends the state of the buttons of a controller to the core.
type Joystick struct {
	Index   int
	Buttons uint32
}

// Name implements the Command interface.
func (Joystick) Name() string { return "Joystick" }

// Address implements the Command interface. The first two joysticks have
// their own opcodes. The remainder are numbered from OpJoystick2.
func (c Joystick) Address() Address {
	switch {
	case c.Index == 0:
		return Address{FeatureIO, OpJoystick0}
	case c.Index == 1:
		return Address{FeatureIO, OpJoystick1}
	case c.Index < MaxJoysticks:
		return Address{FeatureIO, OpJoystick2 + Opcode(c.Index-2)}
	}
	precondition("joystick %d is outside the range 0..%d", c.Index, MaxJoysticks-1)
	return Address{}
}

// WritePayload implements the Writer interface.
func (c Joystick) WritePayload(s *Stream) {
	s.Word(uint16(c.Buttons))
	s.Word(uint16(c.Buttons >> 16))
}

// GetConfigString reads the configuration string of the core. The string
// names the core and lists its menu options.
type GetConfigString struct {
	Value string
}

// Name implements the Command interface.
func (*GetConfigString) Name() string { return "GetConfigString" }

// Address implements the Command interface.
func (*GetConfigString) Address() Address { return Address{FeatureIO, OpGetString} }

// ReadPayload implements the Reader interface. The string is terminated by a
// zero byte.
func (c *GetConfigString) ReadPayload(s *Stream) {
	b := make([]byte, 0, 256)
	for len(b) < maxConfigString {
		v := s.ReadByte()
		if v == 0 || s.Err() != nil {
			break
		}
		b = append(b, v)
	}
	c.Value = string(b)
}

// SetStatusBits writes the status register of the core.
type SetStatusBits [StatusWords]uint16

// Name implements the Command interface.
func (SetStatusBits) Name() string { return "SetStatusBits" }

// Address implements the Command interface.
func (SetStatusBits) Address() Address { return Address{FeatureIO, OpSetStatus} }

// WritePayload implements the Writer interface.
func (c SetStatusBits) WritePayload(s *Stream) {
	s.Words(c[:])
}

// GetStatusBits reads the status register of the core. Changed is false if
// the core has nothing new to report, in which case Bits is not updated.
type GetStatusBits struct {
	Changed bool
	Bits    [StatusWords]uint16
}

// Name implements the Command interface.
func (*GetStatusBits) Name() string { return "GetStatusBits" }

// Address implements the Command interface.
func (*GetStatusBits) Address() Address { return Address{FeatureIO, OpGetStatus} }

// ReadPayload implements the Reader interface.
func (c *GetStatusBits) ReadPayload(s *Stream) {
	m := s.ReadWord()
	c.Changed = m&statusChangedMask == statusChangedMarker
	if !c.Changed {
		return
	}
	for i := range c.Bits {
		c.Bits[i] = s.ReadWord()
	}
}
