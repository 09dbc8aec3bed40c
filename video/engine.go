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
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/onefpga/onefpga/config"
	"github.com/onefpga/onefpga/curated"
	"github.com/onefpga/onefpga/edid"
	"github.com/onefpga/onefpga/fpga"
	"github.com/onefpga/onefpga/logger"
)

// Display is the source of the EDID of the attached display.
type Display interface {
	Read(ctx context.Context) (*edid.Block, error)
}

// Standard is the TV standard of the running core.
type Standard int

// List of valid Standard values.
const (
	StandardAny Standard = iota
	StandardPAL
	StandardNTSC
)

// ModeSet is the result of a video mode selection. The PAL and NTSC modes are
// only present if they are configured.
type ModeSet struct {
	Default Timing
	PAL     *Timing
	NTSC    *Timing

	// the display was used to decide the default mode
	Negotiated bool
}

// Choose returns the mode for the TV standard.
func (s ModeSet) Choose(std Standard) Timing {
	switch std {
	case StandardPAL:
		if s.PAL != nil {
			return *s.PAL
		}
	case StandardNTSC:
		if s.NTSC != nil {
			return *s.NTSC
		}
	}
	return s.Default
}

// DefaultCacheSize is the number of parsed video mode strings remembered by
// the Engine.
const DefaultCacheSize = 16

// Engine selects video modes and sends them to the core. The Engine must
// be used from a single goroutine.
type Engine struct {
	bus     *fpga.Bus
	hdmi    *edid.Transmitter
	display Display

	// parsed video mode strings
	cache *lru.Cache[string, Timing]
}

// NewEngine is the preferred method of initialisation for the Engine type.
// The hdmi and display arguments can be nil if there is no HDMI transmitter
// or no way of reading the EDID.
func NewEngine(bus *fpga.Bus, hdmi *edid.Transmitter, display Display, cacheSize int) (*Engine, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}

	cache, err := lru.New[string, Timing](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("video: %w", err)
	}

	return &Engine{
		bus:     bus,
		hdmi:    hdmi,
		display: display,
		cache:   cache,
	}, nil
}

// Parse a video mode string. Results are cached.
func (e *Engine) Parse(s string) (Timing, error) {
	if t, ok := e.cache.Get(s); ok {
		return t, nil
	}
	t, err := ParseMode(s)
	if err != nil {
		return Timing{}, err
	}
	e.cache.Add(s, t)
	return t, nil
}

// SelectMode decides the video modes for the configuration. The display is
// only queried if direct video is off and no video mode is configured.
// Problems with the display or with the configured modes are logged and
// result in a fallback mode. SelectMode never fails.
func (e *Engine) SelectMode(ctx context.Context, cfg config.Mister) ModeSet {
	if cfg.DirectVideoEnabled() {
		p := DirectVideoPreset(cfg.MenuIsPAL(), cfg.ScandoublerForced())
		logger.Logf(logger.Allow, "video", "direct video using %s", p)
		return ModeSet{Default: p.Timing()}
	}

	if !cfg.VideoModeConfigured() && e.display != nil {
		t, err := e.negotiate(ctx, cfg.DVI())
		if err == nil {
			return ModeSet{Default: t, Negotiated: true}
		}
		logger.Logf(logger.Allow, "video", "%v", err)
	}

	var s ModeSet

	var conf string
	if cfg.VideoConf != nil {
		conf = *cfg.VideoConf
	}
	t, err := e.Parse(conf)
	if err != nil {
		logger.Logf(logger.Allow, "video", "%v: using %s", err, DefaultPreset)
		t = DefaultPreset.Timing()
	}
	s.Default = t

	s.PAL = e.optional(cfg.VideoConfPAL)
	s.NTSC = e.optional(cfg.VideoConfNTSC)

	return s
}

// Select merges the configuration for the named core and decides its video
// modes. When the mode is negotiated with the display the resolution
// sections of the configuration that match the negotiated mode are merged
// too. If that changes the video settings the modes are selected again.
//
// The merged configuration is returned with the modes.
func (e *Engine) Select(ctx context.Context, cfg *config.Config, core string) (ModeSet, config.Mister) {
	m := cfg.Merged(core, nil)
	s := e.SelectMode(ctx, m)
	if !s.Negotiated {
		return s, m
	}

	res := s.Default.Resolution()
	r := cfg.Merged(core, &res)
	if !videoChanged(m, r) {
		return s, r
	}

	logger.Logf(logger.Allow, "video", "configuration for %s changes the video mode", res)
	return e.SelectMode(ctx, r), r
}

// the settings that SelectMode() depends on differ.
func videoChanged(a, b config.Mister) bool {
	return a.VideoModeConfigured() != b.VideoModeConfigured() ||
		a.DirectVideoEnabled() != b.DirectVideoEnabled() ||
		a.MenuIsPAL() != b.MenuIsPAL() ||
		a.ScandoublerForced() != b.ScandoublerForced()
}

func (e *Engine) optional(conf *string) *Timing {
	if conf == nil {
		return nil
	}
	t, err := e.Parse(*conf)
	if err != nil {
		logger.Logf(logger.Allow, "video", "%v", err)
		return nil
	}
	return &t
}

func (e *Engine) negotiate(ctx context.Context, dvi bool) (Timing, error) {
	b, err := e.display.Read(ctx)
	if err != nil {
		return Timing{}, err
	}
	if dvi && b.IsDVI() {
		logger.Log(logger.Allow, "video", "display is DVI")
	}
	return FromEDID(b)
}

// fixed porches used by direct video.
const (
	directHFP = 6
	directHBP = 3
	directVFP = 2
	directVBP = 2
)

// DirectVideo returns the timing with the porches reduced to the minimum.
// The removed porch is added to the active area so that the line and frame
// totals, and therefore the frame rate, are unchanged.
func DirectVideo(t Timing) Timing {
	fold := func(act, fp, bp, minfp, minbp uint32) (uint32, uint32, uint32) {
		a := int(act) + int(fp) - int(minfp) + int(bp) - int(minbp)
		return uint32(a), minfp, minbp
	}
	t.HAct, t.HFP, t.HBP = fold(t.HAct, t.HFP, t.HBP, directHFP, directHBP)
	t.VAct, t.VFP, t.VBP = fold(t.VAct, t.VFP, t.VBP, directVFP, directVBP)
	return t
}

// SendToCore transmits the timing to the scaler. With direct video the
// porches are reduced first. Without direct video the SPD infoframe and the
// first spare packet of the HDMI transmitter are disabled.
func (e *Engine) SendToCore(t Timing, directVideo bool, isMenu bool) error {
	if directVideo {
		t = DirectVideo(t)
	} else if e.hdmi != nil {
		if err := e.hdmi.SetSPD(false); err != nil {
			return curated.Errorf(fpga.TransportError, "SetSPD", err)
		}
		if err := e.hdmi.SetSpare(false, false); err != nil {
			return curated.Errorf(fpga.TransportError, "SetSpare", err)
		}
	}

	if isMenu {
		logger.Logf(logger.Allow, "video", "menu mode %s", t)
	} else {
		logger.Logf(logger.Allow, "video", "core mode %s", t)
	}

	return e.bus.Transmit(SetVideoMode{Timing: t})
}
