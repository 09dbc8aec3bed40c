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

package video

import (
	"fmt"

	"github.com/onefpga/onefpga/config"
	"github.com/onefpga/onefpga/fpga"
)

// Timing is a complete description of a video mode as understood by the
// scaler.
type Timing struct {
	// the preset number or zero for a negotiated or custom mode
	Mode uint32

	HAct uint32
	HFP  uint32
	HS   uint32
	HBP  uint32

	VAct uint32
	VFP  uint32
	VS   uint32
	VBP  uint32

	// PLL configuration block as written to the reconfiguration interface
	PLL [12]uint32

	// sync polarities. one is negative
	HPol uint32
	VPol uint32

	// the CEA-861 video identification code. zero if there is none
	VIC uint32

	// reduced blanking
	RB uint32

	// pixel repetition
	PR uint32

	// pixel clock in MHz
	PixelClock float64
}

// HTotal returns the number of pixel clocks in a line.
func (t Timing) HTotal() uint32 {
	return t.HAct + t.HFP + t.HS + t.HBP
}

// VTotal returns the number of lines in a frame.
func (t Timing) VTotal() uint32 {
	return t.VAct + t.VFP + t.VS + t.VBP
}

// FrameRate returns the number of frames per second. The value is always
// derived from the pixel clock and the totals so it can never disagree with
// them.
func (t Timing) FrameRate() float64 {
	total := float64(t.HTotal()) * float64(t.VTotal())
	if total == 0 {
		return 0
	}
	return t.PixelClock * 1000000 / total
}

// Resolution returns the size and refresh rate of the mode in the form used
// by the resolution sections of the configuration.
func (t Timing) Resolution() config.Resolution {
	return config.Resolution{
		Width:   int(t.HAct),
		Height:  int(t.VAct),
		Refresh: t.FrameRate(),
	}
}

func (t Timing) String() string {
	return fmt.Sprintf("%dx%d@%.2f (%.3fMHz)", t.HAct, t.VAct, t.FrameRate(), t.PixelClock)
}

// number of words in the SetVideoMode payload.
const videoModeWords = 38

// Words returns the timing in the order expected by the scaler. The PLL
// entries are split into low and high words.
func (t Timing) Words() []uint16 {
	w := make([]uint16, 0, videoModeWords)

	for _, v := range []uint32{t.Mode, t.HAct, t.HFP, t.HS, t.HBP, t.VAct, t.VFP, t.VS, t.VBP} {
		w = append(w, uint16(v))
	}
	for _, v := range t.PLL {
		w = append(w, uint16(v), uint16(v>>16))
	}
	for _, v := range []uint32{t.HPol, t.VPol, t.VIC, t.RB, t.PR} {
		w = append(w, uint16(v))
	}

	return w
}

// SetVideoMode sends a Timing to the scaler.
type SetVideoMode struct {
	Timing Timing
}

// Name implements the fpga.Command interface.
func (SetVideoMode) Name() string { return "SetVideoMode" }

// Address implements the fpga.Command interface.
func (SetVideoMode) Address() fpga.Address { return fpga.Address{Feature: fpga.FeatureIO, Opcode: fpga.OpSetVideo} }

// WritePayload implements the fpga.Writer interface.
func (c SetVideoMode) WritePayload(s *fpga.Stream) {
	s.Words(c.Timing.Words())
}
