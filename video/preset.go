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
	"strings"
)

// Preset is one of the built-in video modes.
type Preset int

// List of valid Preset values. The HDMI presets are numbered as they are in
// the video_mode key of the configuration file.
const (
	Preset1280x720r60 Preset = iota
	Preset1024x768r60
	Preset720x480r60
	Preset720x576r50
	Preset1280x1024r60
	Preset800x600r60
	Preset640x480r60
	Preset1280x720r50
	Preset1920x1080r60
	Preset1920x1080r50
	Preset1366x768r60
	Preset1024x600r60
	Preset1920x1440r60
	Preset2048x1536r60
	Preset2560x1440r60

	// TV modes used for direct video
	PresetNTSC15K
	PresetNTSC31K
	PresetPAL15K
	PresetPAL31K

	numPresets
)

// number of presets that can be selected by number in the configuration.
const numHDMIPresets = int(PresetNTSC15K)

type preset struct {
	name string

	// hact, hfp, hs, hbp, vact, vfp, vs, vbp
	params [8]uint32

	// pixel clock in MHz
	pixelClock float64

	vic uint32
}

var presets = [numPresets]preset{
	{"V1280x720r60", [8]uint32{1280, 110, 40, 220, 720, 5, 5, 20}, 74.25, 4},
	{"V1024x768r60", [8]uint32{1024, 24, 136, 160, 768, 3, 6, 29}, 65, 0},
	{"V720x480r60", [8]uint32{720, 16, 62, 60, 480, 9, 6, 30}, 27, 3},
	{"V720x576r50", [8]uint32{720, 12, 64, 68, 576, 5, 5, 39}, 27, 8},
	{"V1280x1024r60", [8]uint32{1280, 48, 112, 248, 1024, 1, 3, 38}, 108, 0},
	{"V800x600r60", [8]uint32{800, 40, 128, 88, 600, 1, 4, 23}, 40, 0},
	{"V640x480r60", [8]uint32{640, 16, 96, 48, 480, 10, 2, 33}, 25.175, 1},
	{"V1280x720r50", [8]uint32{1280, 440, 40, 220, 720, 5, 5, 20}, 74.25, 9},
	{"V1920x1080r60", [8]uint32{1920, 88, 44, 148, 1080, 4, 5, 36}, 148.5, 6},
	{"V1920x1080r50", [8]uint32{1920, 528, 44, 148, 1080, 4, 5, 36}, 148.5, 1},
	{"V1366x768r60", [8]uint32{1366, 70, 143, 213, 768, 3, 3, 24}, 85.5, 0},
	{"V1024x600r60", [8]uint32{1024, 40, 104, 144, 600, 1, 3, 18}, 48.96, 0},
	{"V1920x1440r60", [8]uint32{1920, 48, 32, 80, 1440, 2, 4, 38}, 185.203, 0},
	{"V2048x1536r60", [8]uint32{2048, 48, 32, 80, 1536, 2, 4, 38}, 209.318, 0},
	{"V2560x1440r60", [8]uint32{2560, 24, 16, 40, 1440, 3, 5, 33}, 120.75, 0},
	{"NTSC15K", [8]uint32{640, 30, 60, 70, 240, 4, 4, 14}, 12.587, 0},
	{"NTSC31K", [8]uint32{640, 16, 96, 48, 480, 8, 4, 33}, 25.175, 0},
	{"PAL15K", [8]uint32{640, 30, 60, 70, 288, 6, 4, 14}, 12.587, 0},
	{"PAL31K", [8]uint32{640, 16, 96, 48, 576, 2, 4, 42}, 25.175, 0},
}

func (p Preset) String() string {
	if p < 0 || p >= numPresets {
		return fmt.Sprintf("Preset(%d)", int(p))
	}
	return presets[p].name
}

// PixelClock returns the nominal pixel clock of the preset in MHz.
func (p Preset) PixelClock() float64 {
	return presets[p].pixelClock
}

// Timing returns the timing for the preset with the PLL parameters
// synthesised.
func (p Preset) Timing() Timing {
	v := presets[p]
	t := Timing{
		Mode: uint32(p),
		HAct: v.params[0],
		HFP:  v.params[1],
		HS:   v.params[2],
		HBP:  v.params[3],
		VAct: v.params[4],
		VFP:  v.params[5],
		VS:   v.params[6],
		VBP:  v.params[7],
		VIC:  v.vic,
	}
	t.SetPLL(v.pixelClock)
	return t
}

// DirectVideoPreset returns the TV preset used for direct video.
func DirectVideoPreset(pal bool, scandoubler bool) Preset {
	switch {
	case pal && scandoubler:
		return PresetPAL31K
	case pal:
		return PresetPAL15K
	case scandoubler:
		return PresetNTSC31K
	}
	return PresetNTSC15K
}

// LookupPreset finds a preset by name. The comparison is case insensitive
// and the leading V of the HDMI presets is optional.
func LookupPreset(name string) (Preset, bool) {
	for i := range presets {
		n := presets[i].name
		if strings.EqualFold(name, n) || strings.EqualFold(name, strings.TrimPrefix(n, "V")) {
			return Preset(i), true
		}
	}
	return 0, false
}

// FindPreset returns the HDMI preset with the resolution and refresh rate.
// The refresh rate is compared after rounding.
func FindPreset(width, height uint32, refresh int) (Preset, bool) {
	for i := range numHDMIPresets {
		v := presets[i].params
		if v[0] != width || v[4] != height {
			continue
		}
		total := float64((v[0] + v[1] + v[2] + v[3]) * (v[4] + v[5] + v[6] + v[7]))
		if int(presets[i].pixelClock*1000000/total+0.5) == refresh {
			return Preset(i), true
		}
	}
	return 0, false
}
