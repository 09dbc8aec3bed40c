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

	"github.com/onefpga/onefpga/curated"
	"github.com/onefpga/onefpga/edid"
	"github.com/onefpga/onefpga/logger"
)

// DisplayDataInvalid is returned when the EDID of the display is missing or
// can not be used.
const DisplayDataInvalid = edid.DisplayDataInvalid

// widest preferred mode that will be used.
const maxDisplayWidth = 2048

// a preferred mode with this resolution but with a pixel clock too high for
// the scaler is replaced by the preset.
const safePreset = Preset2048x1536r60

// FromEDID returns the timing of the preferred mode of the display. If the
// pixel clock of the preferred mode is too high then the mode is replaced by
// the equivalent preset if there is one, or the frame rate is reduced to
// 60Hz if the mode is faster than that. Otherwise the mode is out of range.
func FromEDID(b *edid.Block) (Timing, error) {
	dt, err := b.PreferredTiming()
	if err != nil {
		return Timing{}, err
	}

	t := Timing{
		HAct: uint32(dt.HActive),
		HFP:  uint32(dt.HFrontPorch),
		HS:   uint32(dt.HSync),
		HBP:  uint32(dt.HBackPorch),
		VAct: uint32(dt.VActive),
		VFP:  uint32(dt.VFrontPorch),
		VS:   uint32(dt.VSync),
		VBP:  uint32(dt.VBackPorch),
	}
	pixelClock := float64(dt.PixelClock) / 1000

	logger.Logf(logger.Allow, "video", "display preferred mode: %s", dt)

	if pixelClock > MaxPixelClock {
		logger.Logf(logger.Allow, "video", "preferred mode pixel clock too high (%.3fMHz)", pixelClock)

		v := safePreset.Timing()
		t.PixelClock = pixelClock
		switch {
		case t.HAct == v.HAct && t.VAct == v.VAct:
			logger.Logf(logger.Allow, "video", "using safe mode %s", safePreset)
			t = v
			pixelClock = safePreset.PixelClock()
		case t.FrameRate() > 60:
			pixelClock = 60 * float64(t.HTotal()) * float64(t.VTotal()) / 1000000
			if pixelClock > MaxPixelClock {
				return Timing{}, curated.Errorf(ModeOutOfRange,
					fmt.Sprintf("%dx%d needs %.3fMHz at 60Hz", t.HAct, t.VAct, pixelClock))
			}
			logger.Logf(logger.Allow, "video", "reducing frame rate to 60Hz with pixel clock %.3fMHz", pixelClock)
		default:
			return Timing{}, curated.Errorf(ModeOutOfRange,
				fmt.Sprintf("%dx%d at %.3fMHz", t.HAct, t.VAct, pixelClock))
		}
	}

	if t.HAct > maxDisplayWidth {
		return Timing{}, curated.Errorf(ModeOutOfRange,
			fmt.Sprintf("preferred resolution too high (%dx%d)", t.HAct, t.VAct))
	}

	t.RB = 2

	return finish(t, pixelClock)
}
