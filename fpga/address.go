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

// Feature is a feature domain on the FPGA. The values are the chip-select
// bits of the bridge output register.
type Feature uint32

// List of feature domains.
const (
	FeatureNone Feature = 0
	FeatureFPGA Feature = 1 << 18
	FeatureOSD  Feature = 1 << 19
	FeatureIO   Feature = 1 << 20
	FeatureDM   Feature = 1 << 21
)

// FeatureMask covers all feature bits.
const FeatureMask = FeatureFPGA | FeatureOSD | FeatureIO | FeatureDM

func (f Feature) String() string {
	switch f {
	case FeatureNone:
		return "none"
	case FeatureFPGA:
		return "FPGA"
	case FeatureOSD:
		return "OSD"
	case FeatureIO:
		return "IO"
	case FeatureDM:
		return "DM"
	}
	return fmt.Sprintf("feature(%#x)", uint32(f))
}

// Opcode selects the operation within a feature domain.
type Opcode uint16

// List of opcodes.
const (
	OpFileTx    Opcode = 0x53
	OpFileTxDat Opcode = 0x54
	OpFileIndex Opcode = 0x55
	OpFileInfo  Opcode = 0x56

	OpOsdWriteLine Opcode = 0x20
	OpOsdDisable   Opcode = 0x40
	OpOsdEnable    Opcode = 0x41

	OpJoystick0 Opcode = 0x02
	OpJoystick1 Opcode = 0x03
	OpKeyboard  Opcode = 0x05
	OpJoystick2 Opcode = 0x10
	OpGetString Opcode = 0x14
	OpSetStatus Opcode = 0x1e
	OpSetVideo  Opcode = 0x20
	OpAudioVol  Opcode = 0x26
	OpGetStatus Opcode = 0x29
)

// Address is the (feature, opcode) pair of a command.
type Address struct {
	Feature Feature
	Opcode  Opcode
}

func (a Address) String() string {
	return fmt.Sprintf("%s:%#02x", a.Feature, uint16(a.Opcode))
}
