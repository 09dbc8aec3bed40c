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

package config_test

import (
	"testing"

	"github.com/onefpga/onefpga/config"
	"github.com/onefpga/onefpga/curated"
	"github.com/onefpga/onefpga/test"
	"github.com/spf13/afero"
)

const ini = `
; keys before the first section are part of the base configuration
fb_size=1

[MiSTer]
video_mode=8
vsync_adjust=1
direct_video=0
ypbpr=1
hdmi_limited=0x2
osd_timeout=bad

[SNES + Genesis]
vsync_adjust=2
menu_pal=enabled

[video=1920x1080@60]
vsync_adjust=3
vscale_mode=1

[video=640x480]
fb_size=2

[snes]
forced_scandoubler=true
`

func TestBase(t *testing.T) {
	cfg, err := config.Parse([]byte(ini))
	test.DemandSuccess(t, err)

	m := cfg.Merged("", nil)
	test.DemandSuccess(t, m.VideoConf != nil)
	test.ExpectEquality(t, *m.VideoConf, "8")
	test.ExpectEquality(t, *m.VSyncAdjust, 1)
	test.ExpectEquality(t, *m.FBSize, 1)
	test.ExpectEquality(t, *m.HDMILimited, 2)
	test.ExpectEquality(t, *m.VGAMode, "ypbpr")
	test.ExpectFailure(t, m.DirectVideoEnabled())
	test.ExpectSuccess(t, m.VideoModeConfigured())

	// a value that does not parse is ignored
	test.ExpectSuccess(t, m.OSDTimeout == nil)

	test.ExpectEquality(t, cfg.Cores(), 2)
}

func TestMergePrecedence(t *testing.T) {
	cfg, err := config.Parse([]byte(ini))
	test.DemandSuccess(t, err)

	res := &config.Resolution{Width: 1920, Height: 1080, Refresh: 59.94}

	// resolution override applies to any core
	m := cfg.Merged("NES", res)
	test.ExpectEquality(t, *m.VSyncAdjust, 3)
	test.ExpectEquality(t, *m.VScaleMode, 1)

	// the core override wins over the resolution override
	m = cfg.Merged("SNES", res)
	test.ExpectEquality(t, *m.VSyncAdjust, 2)
	test.ExpectEquality(t, *m.VScaleMode, 1)
	test.ExpectSuccess(t, m.MenuIsPAL())

	// both sections named snes apply
	test.ExpectSuccess(t, m.ScandoublerForced())

	// absent fields never erase the base value
	test.ExpectEquality(t, *m.VideoConf, "8")
	test.ExpectEquality(t, *m.FBSize, 1)

	// the second core of a combined section
	m = cfg.Merged("genesis", nil)
	test.ExpectEquality(t, *m.VSyncAdjust, 2)
	test.ExpectFailure(t, m.ScandoublerForced())
}

func TestResolutionWithoutRefresh(t *testing.T) {
	cfg, err := config.Parse([]byte(ini))
	test.DemandSuccess(t, err)

	m := cfg.Merged("", &config.Resolution{Width: 640, Height: 480, Refresh: 72})
	test.ExpectEquality(t, *m.FBSize, 2)

	m = cfg.Merged("", &config.Resolution{Width: 1920, Height: 1080, Refresh: 50})
	test.ExpectEquality(t, *m.VSyncAdjust, 1)
}

func TestMergeDoesNotAlias(t *testing.T) {
	cfg, err := config.Parse([]byte(ini))
	test.DemandSuccess(t, err)

	m := cfg.Merged("", nil)
	*m.VSyncAdjust = 99

	m = cfg.Merged("", nil)
	test.ExpectEquality(t, *m.VSyncAdjust, 1)
}

func TestDefaults(t *testing.T) {
	var m config.Mister
	v := 5
	m.OSDTimeout = &v
	m.SetDefaults()

	test.ExpectEquality(t, *m.OSDTimeout, 5)
	test.ExpectEquality(t, *m.VGAMode, "rgb")
	test.ExpectSuccess(t, *m.Bootscreen)
	test.ExpectFailure(t, m.VideoModeConfigured())
}

func TestDuplicateKeys(t *testing.T) {
	cfg, err := config.Parse([]byte("[MiSTer]\nvideo_mode=1\nvideo_mode=2\n"))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, *cfg.Base.VideoConf, "2")
}

func TestParseResolution(t *testing.T) {
	r, err := config.ParseResolution("1280x720@50")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, r, config.Resolution{Width: 1280, Height: 720, Refresh: 50})

	r, err = config.ParseResolution("800x600")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, r.Refresh, 0.0)

	_, err = config.ParseResolution("wide")
	test.ExpectFailure(t, err)
	_, err = config.ParseResolution("800x600@")
	test.ExpectFailure(t, err)
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()

	// missing file is an empty configuration
	cfg, err := config.Load(fs, "/media/fat/MiSTer.ini")
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, cfg.Base.VideoConf == nil)

	test.DemandSuccess(t, afero.WriteFile(fs, "/media/fat/MiSTer.ini", []byte(ini), 0o644))
	cfg, err = config.Load(fs, "/media/fat/MiSTer.ini")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, *cfg.Base.VideoConf, "8")

	_, err = config.Parse([]byte("[unterminated\n"))
	if err != nil {
		test.ExpectSuccess(t, curated.Is(err, config.ParseError))
	}
}
