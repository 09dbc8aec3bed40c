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
	"math"
	"strconv"
	"strings"

	"github.com/onefpga/onefpga/config"
	"github.com/onefpga/onefpga/curated"
)

// ModeOutOfRange is returned when a video mode needs a pixel clock the
// scaler can not generate.
const ModeOutOfRange = "video: mode out of range: %v"

// ModeInvalid is returned when a video mode string can not be parsed.
const ModeInvalid = "video: invalid mode: %v"

// MaxPixelClock is the highest pixel clock in MHz the scaler can generate.
const MaxPixelClock = 210.0

// DefaultPreset is used when no other video mode is available.
const DefaultPreset = Preset640x480r60

// ParseMode returns the timing for a video mode string as found in the
// configuration file. The string can be:
//
//	an empty string or "auto" for the default mode
//	the number of a preset, eg. "8"
//	the name of a preset, eg. "V1920x1080r60" or "NTSC15K"
//	a resolution with an optional refresh rate, eg. "1920x1080@60"
//	a custom timing: "hact,hfp,hs,hbp,vact,vfp,vs,vbp,pclk_khz[,hpol,vpol]"
//
// A resolution that is not one of the presets is synthesised with reduced
// blanking.
func ParseMode(s string) (Timing, error) {
	s = strings.TrimSpace(s)

	if s == "" || strings.EqualFold(s, "auto") {
		return DefaultPreset.Timing(), nil
	}

	if strings.Contains(s, ",") {
		return parseCustom(s)
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n >= numHDMIPresets {
			return Timing{}, curated.Errorf(ModeInvalid, fmt.Sprintf("no preset numbered %d", n))
		}
		return Preset(n).Timing(), nil
	}

	if p, ok := LookupPreset(s); ok {
		return p.Timing(), nil
	}

	r, err := config.ParseResolution(s)
	if err != nil {
		return Timing{}, curated.Errorf(ModeInvalid, err)
	}
	if r.Refresh == 0 {
		r.Refresh = 60
	}

	if p, ok := FindPreset(uint32(r.Width), uint32(r.Height), int(math.Round(r.Refresh))); ok {
		return p.Timing(), nil
	}

	return ReducedBlanking(uint32(r.Width), uint32(r.Height), r.Refresh)
}

func parseCustom(s string) (Timing, error) {
	f := strings.Split(s, ",")
	if len(f) != 9 && len(f) != 11 {
		return Timing{}, curated.Errorf(ModeInvalid, fmt.Sprintf("custom mode has %d values", len(f)))
	}

	v := make([]uint32, len(f))
	for i := range f {
		n, err := strconv.ParseUint(strings.TrimSpace(f[i]), 0, 32)
		if err != nil {
			return Timing{}, curated.Errorf(ModeInvalid, fmt.Sprintf("custom mode value %q", f[i]))
		}
		v[i] = uint32(n)
	}

	t := Timing{
		HAct: v[0], HFP: v[1], HS: v[2], HBP: v[3],
		VAct: v[4], VFP: v[5], VS: v[6], VBP: v[7],
	}
	if len(v) == 11 {
		t.HPol = v[9] & 1
		t.VPol = v[10] & 1
	}

	if t.HAct == 0 || t.VAct == 0 {
		return Timing{}, curated.Errorf(ModeInvalid, "custom mode has no active area")
	}

	return finish(t, float64(v[8])/1000)
}

// finish synthesises the PLL for the timing and checks the result is in
// range.
func finish(t Timing, pixelClock float64) (Timing, error) {
	if pixelClock > MaxPixelClock {
		return Timing{}, curated.Errorf(ModeOutOfRange, fmt.Sprintf("%dx%d needs %.3fMHz", t.HAct, t.VAct, pixelClock))
	}
	t.SetPLL(pixelClock)
	if t.PixelClock > MaxPixelClock {
		return Timing{}, curated.Errorf(ModeOutOfRange, fmt.Sprintf("%dx%d PLL generates %.3fMHz", t.HAct, t.VAct, t.PixelClock))
	}
	return t, nil
}

// constants of the CVT reduced blanking timing formula.
const (
	cvtHBlank        = 160
	cvtHFrontPorch   = 48
	cvtHSync         = 32
	cvtVFrontPorch   = 3
	cvtMinVBlankUs   = 460.0
	cvtMinVBackPorch = 6
	cvtClockStep     = 0.25
)

// ReducedBlanking synthesises a timing with CVT reduced blanking for the
// resolution and refresh rate.
func ReducedBlanking(width, height uint32, refresh float64) (Timing, error) {
	if width == 0 || height == 0 || refresh <= 0 {
		return Timing{}, curated.Errorf(ModeInvalid, fmt.Sprintf("%dx%d@%g", width, height, refresh))
	}

	// the vsync width identifies the aspect ratio
	var vsync uint32
	switch {
	case width*3 == height*4:
		vsync = 4
	case width*9 == height*16:
		vsync = 5
	case width*10 == height*16:
		vsync = 6
	case width*4 == height*5:
		vsync = 7
	default:
		vsync = 10
	}

	// estimated line period in microseconds
	line := (1000000/refresh - cvtMinVBlankUs) / float64(height)
	vblank := uint32(cvtMinVBlankUs/line) + 1
	if vblank < cvtVFrontPorch+vsync+cvtMinVBackPorch {
		vblank = cvtVFrontPorch + vsync + cvtMinVBackPorch
	}

	t := Timing{
		HAct: width,
		HFP:  cvtHFrontPorch,
		HS:   cvtHSync,
		HBP:  cvtHBlank - cvtHFrontPorch - cvtHSync,
		VAct: height,
		VFP:  cvtVFrontPorch,
		VS:   vsync,
		VBP:  vblank - cvtVFrontPorch - vsync,
		VPol: 1,
		RB:   1,
	}

	pixelClock := refresh * float64(t.HTotal()) * float64(t.VTotal()) / 1000000
	pixelClock = math.Floor(pixelClock/cvtClockStep) * cvtClockStep

	return finish(t, pixelClock)
}
