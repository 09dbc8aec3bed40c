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

package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Mister is a configuration record. Every field is a pointer so that a key
// that was not present in a section can be told apart from a key that was
// set to its zero value.
type Mister struct {
	DirectVideo       *bool
	MenuPal           *bool
	ForcedScandoubler *bool
	DVIMode           *bool
	HDMIAudio96k      *bool
	HDMILimited       *int
	VGAMode           *string
	VSyncAdjust       *int
	VScaleMode        *int

	// video_mode, video_mode_pal and video_mode_ntsc
	VideoConf     *string
	VideoConfPAL  *string
	VideoConfNTSC *string

	Bootscreen      *bool
	BootCore        *string
	FBSize          *int
	OSDTimeout      *int
	ResetCombo      *int
	RBFHideDatecode *bool
}

// set the field named by key. Unknown keys return false.
func (m *Mister) set(key string, value string) (bool, error) {
	var err error

	switch key {
	case "direct_video":
		m.DirectVideo, err = parseBool(value)
	case "menu_pal":
		m.MenuPal, err = parseBool(value)
	case "forced_scandoubler":
		m.ForcedScandoubler, err = parseBool(value)
	case "dvi_mode":
		m.DVIMode, err = parseBool(value)
	case "hdmi_audio_96k":
		m.HDMIAudio96k, err = parseBool(value)
	case "hdmi_limited":
		m.HDMILimited, err = parseInt(value)
	case "vga_mode":
		m.VGAMode = parseString(value)
	case "ypbpr":
		var b *bool
		b, err = parseBool(value)
		if err == nil {
			if *b {
				m.VGAMode = parseString("ypbpr")
			} else {
				m.VGAMode = parseString("rgb")
			}
		}
	case "vsync_adjust":
		m.VSyncAdjust, err = parseInt(value)
	case "vscale_mode":
		m.VScaleMode, err = parseInt(value)
	case "video_mode", "video_conf":
		m.VideoConf = parseString(value)
	case "video_mode_pal", "video_conf_pal":
		m.VideoConfPAL = parseString(value)
	case "video_mode_ntsc", "video_conf_ntsc":
		m.VideoConfNTSC = parseString(value)
	case "bootscreen":
		m.Bootscreen, err = parseBool(value)
	case "bootcore":
		m.BootCore = parseString(value)
	case "fb_size":
		m.FBSize, err = parseInt(value)
	case "osd_timeout":
		m.OSDTimeout, err = parseInt(value)
	case "reset_combo":
		m.ResetCombo, err = parseInt(value)
	case "rbf_hide_datecode":
		m.RBFHideDatecode, err = parseBool(value)
	default:
		return false, nil
	}

	return true, err
}

// merge copies every field that is present in o.
func (m *Mister) merge(o Mister) {
	mergeField(&m.DirectVideo, o.DirectVideo)
	mergeField(&m.MenuPal, o.MenuPal)
	mergeField(&m.ForcedScandoubler, o.ForcedScandoubler)
	mergeField(&m.DVIMode, o.DVIMode)
	mergeField(&m.HDMIAudio96k, o.HDMIAudio96k)
	mergeField(&m.HDMILimited, o.HDMILimited)
	mergeField(&m.VGAMode, o.VGAMode)
	mergeField(&m.VSyncAdjust, o.VSyncAdjust)
	mergeField(&m.VScaleMode, o.VScaleMode)
	mergeField(&m.VideoConf, o.VideoConf)
	mergeField(&m.VideoConfPAL, o.VideoConfPAL)
	mergeField(&m.VideoConfNTSC, o.VideoConfNTSC)
	mergeField(&m.Bootscreen, o.Bootscreen)
	mergeField(&m.BootCore, o.BootCore)
	mergeField(&m.FBSize, o.FBSize)
	mergeField(&m.OSDTimeout, o.OSDTimeout)
	mergeField(&m.ResetCombo, o.ResetCombo)
	mergeField(&m.RBFHideDatecode, o.RBFHideDatecode)
}

func mergeField[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func setDefault[T any](dst **T, v T) {
	if *dst == nil {
		*dst = &v
	}
}

// SetDefaults fills every absent field that has a firmware default. The
// video mode strings are left unset because an unset video mode is what
// allows the mode to be negotiated with the display.
func (m *Mister) SetDefaults() {
	setDefault(&m.DirectVideo, false)
	setDefault(&m.MenuPal, false)
	setDefault(&m.ForcedScandoubler, false)
	setDefault(&m.DVIMode, false)
	setDefault(&m.HDMIAudio96k, false)
	setDefault(&m.HDMILimited, 0)
	setDefault(&m.VGAMode, "rgb")
	setDefault(&m.VSyncAdjust, 0)
	setDefault(&m.VScaleMode, 0)
	setDefault(&m.Bootscreen, true)
	setDefault(&m.FBSize, 0)
	setDefault(&m.OSDTimeout, 30)
	setDefault(&m.ResetCombo, 0)
	setDefault(&m.RBFHideDatecode, false)
}

// DirectVideoEnabled returns the value of direct_video. False if absent.
func (m Mister) DirectVideoEnabled() bool {
	return m.DirectVideo != nil && *m.DirectVideo
}

// MenuIsPAL returns the value of menu_pal. False if absent.
func (m Mister) MenuIsPAL() bool {
	return m.MenuPal != nil && *m.MenuPal
}

// ScandoublerForced returns the value of forced_scandoubler. False if absent.
func (m Mister) ScandoublerForced() bool {
	return m.ForcedScandoubler != nil && *m.ForcedScandoubler
}

// DVI returns the value of dvi_mode. False if absent.
func (m Mister) DVI() bool {
	return m.DVIMode != nil && *m.DVIMode
}

// VideoModeConfigured is true if any of the video mode strings is present.
func (m Mister) VideoModeConfigured() bool {
	return m.VideoConf != nil || m.VideoConfPAL != nil || m.VideoConfNTSC != nil
}

func parseBool(s string) (*bool, error) {
	var b bool
	switch strings.ToLower(s) {
	case "1", "true", "enabled", "yes", "on":
		b = true
	case "0", "false", "disabled", "no", "off":
		b = false
	default:
		return nil, fmt.Errorf("not a boolean: %q", s)
	}
	return &b, nil
}

// numbers can be decimal or hexadecimal with a 0x prefix.
func parseInt(s string) (*int, error) {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", s)
	}
	i := int(v)
	return &i, nil
}

func parseString(s string) *string {
	return &s
}
