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

package video_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/onefpga/onefpga/config"
	"github.com/onefpga/onefpga/curated"
	"github.com/onefpga/onefpga/edid"
	"github.com/onefpga/onefpga/fpga"
	"github.com/onefpga/onefpga/fpga/loopback"
	"github.com/onefpga/onefpga/i2c"
	"github.com/onefpga/onefpga/test"
	"github.com/onefpga/onefpga/video"
)

var timing1080p = edid.DetailedTiming{
	PixelClock:  148500,
	HActive:     1920,
	HFrontPorch: 88,
	HSync:       44,
	HBackPorch:  148,
	VActive:     1080,
	VFrontPorch: 4,
	VSync:       5,
	VBackPorch:  36,
}

// display returns a Display with the preferred timing. A nil timing is a
// display that is not connected.
func display(dt *edid.DetailedTiming) (*edid.Reader, *i2c.Memory) {
	var b *edid.Block
	if dt != nil {
		b = edid.Synthesize(*dt)
	}
	tx, eeprom := edid.Simulate(b)
	r := edid.NewReader(tx, eeprom)
	r.Interval = time.Millisecond
	r.Attempts = 2
	return r, tx
}

func engine(t *testing.T, d video.Display) (*video.Engine, *loopback.Loopback) {
	t.Helper()
	lb := loopback.NewLoopback()
	e, err := video.NewEngine(fpga.NewBus(lb), nil, d, 4)
	test.DemandSuccess(t, err)
	return e, lb
}

func TestPresets(t *testing.T) {
	for p := video.Preset1280x720r60; p <= video.PresetPAL31K; p++ {
		v := p.Timing()
		test.ExpectEquality(t, v.Mode, uint32(p), p)
		test.ExpectApproximate(t, v.PixelClock, p.PixelClock(), 0.001, p)
		test.ExpectSuccess(t, v.PixelClock <= video.MaxPixelClock, p)
	}

	v := video.Preset1920x1080r60.Timing()
	test.ExpectApproximate(t, v.FrameRate(), 60.0, 0.001)
	test.ExpectEquality(t, v.VIC, uint32(6))

	v = video.Preset720x576r50.Timing()
	test.ExpectApproximate(t, v.FrameRate(), 50.0, 0.001)

	test.ExpectEquality(t, video.DirectVideoPreset(false, false), video.PresetNTSC15K)
	test.ExpectEquality(t, video.DirectVideoPreset(false, true), video.PresetNTSC31K)
	test.ExpectEquality(t, video.DirectVideoPreset(true, false), video.PresetPAL15K)
	test.ExpectEquality(t, video.DirectVideoPreset(true, true), video.PresetPAL31K)
}

func TestFindPLL(t *testing.T) {
	for f := 25.0; f <= 200.0; f += 0.0625 {
		p, exact := video.FindPLL(f)

		// the fraction is never close to a whole number unless it has been
		// clamped to zero
		test.ExpectSuccess(t, p.K == 0 || (p.K > 0.05 && p.K < 0.95), f)
		test.ExpectSuccess(t, p.VCO() >= 400, f)

		if exact {
			test.ExpectSuccess(t, math.Abs(p.Frequency()-f)/f < 0.001, f)
		} else {
			test.ExpectEquality(t, p.K, 0.0, f)
			test.ExpectSuccess(t, math.Abs(p.Frequency()-f) <= 0.05*50/float64(p.C), f)
		}
	}
}

func TestSetPLL(t *testing.T) {
	var a video.Timing
	p := a.SetPLL(148.5)
	test.ExpectEquality(t, p.C, uint32(3))
	test.ExpectEquality(t, p.M, uint32(8))
	test.ExpectApproximate(t, p.K, 0.91, 0.0001)

	test.ExpectEquality(t, a.PLL[0], uint32(4))
	test.ExpectEquality(t, a.PLL[1], uint32(0x404))
	test.ExpectEquality(t, a.PLL[3], uint32(0x10000))
	test.ExpectEquality(t, a.PLL[5], uint32(0x20201))
	test.ExpectEquality(t, a.PLL[11], uint32(p.K*(1<<32)))

	// the same target always gives the same result
	b := a
	b.SetPLL(148.5)
	test.ExpectEquality(t, a, b)

	// a whole multiplier is encoded as one. there is no exact solution for
	// a multiple of the reference so the fraction is clamped
	var c video.Timing
	p = c.SetPLL(50)
	test.ExpectEquality(t, p.C, uint32(8))
	test.ExpectEquality(t, p.K, 0.0)
	test.ExpectEquality(t, c.PLL[11], uint32(1))
	test.ExpectApproximate(t, c.PixelClock, 50.0, 0.0001)
}

func TestWords(t *testing.T) {
	v := video.Preset1280x720r60.Timing()
	v.HPol = 1
	v.PR = 1

	w := v.Words()
	test.DemandEquality(t, len(w), 38)
	test.ExpectEquality(t, w[0], uint16(video.Preset1280x720r60))
	test.ExpectEquality(t, w[1], uint16(1280))
	test.ExpectEquality(t, w[5], uint16(720))
	test.ExpectEquality(t, w[8], uint16(20))

	// PLL entries are low word first
	test.ExpectEquality(t, w[9], uint16(4))
	test.ExpectEquality(t, w[10], uint16(0))
	test.ExpectEquality(t, w[15], uint16(0))
	test.ExpectEquality(t, w[16], uint16(1))
	test.ExpectEquality(t, w[31], uint16(v.PLL[11]))
	test.ExpectEquality(t, w[32], uint16(v.PLL[11]>>16))

	test.ExpectEquality(t, w[33], uint16(1))
	test.ExpectEquality(t, w[35], uint16(4))
	test.ExpectEquality(t, w[37], uint16(1))
}

func TestParseMode(t *testing.T) {
	def := video.Preset640x480r60.Timing()

	for _, s := range []string{"", "auto", " AUTO ", "6", "V640x480r60", "640x480", "640x480@60"} {
		v, err := video.ParseMode(s)
		test.DemandSuccess(t, err, s)
		test.ExpectEquality(t, v, def, s)
	}

	v, err := video.ParseMode("8")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, v.Mode, uint32(video.Preset1920x1080r60))

	v, err = video.ParseMode("1280x720@50")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, v.Mode, uint32(video.Preset1280x720r50))

	v, err = video.ParseMode("ntsc15k")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, v.Mode, uint32(video.PresetNTSC15K))

	v, err = video.ParseMode("1280,110,40,220,720,5,5,20,74250")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, v.Mode, uint32(0))
	test.ExpectEquality(t, v.HAct, uint32(1280))
	test.ExpectApproximate(t, v.FrameRate(), 60.0, 0.001)

	v, err = video.ParseMode("1280,110,40,220,720,5,5,20,74250,1,0")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, v.HPol, uint32(1))
	test.ExpectEquality(t, v.VPol, uint32(0))

	// not a preset so the mode is synthesised
	v, err = video.ParseMode("1600x900@60")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, v.HAct, uint32(1600))
	test.ExpectEquality(t, v.RB, uint32(1))
	test.ExpectApproximate(t, v.FrameRate(), 60.0, 0.005)

	_, err = video.ParseMode("2560x1440@60")
	test.ExpectSuccess(t, curated.Is(err, video.ModeOutOfRange))

	for _, s := range []string{"99", "-1", "1,2,3", "1280,110,40,220,720,5,5,20,x", "0,1,1,1,0,1,1,1,25000", "huge"} {
		_, err = video.ParseMode(s)
		test.ExpectSuccess(t, curated.Is(err, video.ModeInvalid), s)
	}
}

func TestFromEDID(t *testing.T) {
	v, err := video.FromEDID(edid.Synthesize(timing1080p))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, v.HAct, uint32(1920))
	test.ExpectEquality(t, v.VAct, uint32(1080))
	test.ExpectEquality(t, v.RB, uint32(2))
	test.ExpectApproximate(t, v.FrameRate(), 60.0, 0.001)

	// an invalid block is never used
	b := edid.Synthesize(timing1080p)
	b[0] = 0xff
	_, err = video.FromEDID(b)
	test.ExpectSuccess(t, curated.Is(err, video.DisplayDataInvalid))
}

func TestRemediation(t *testing.T) {
	// a 2048x1536 display too fast for the scaler uses the preset
	dt := edid.DetailedTiming{
		PixelClock: 267250, HActive: 2048, HFrontPorch: 152, HSync: 224, HBackPorch: 376,
		VActive: 1536, VFrontPorch: 3, VSync: 4, VBackPorch: 57,
	}
	v, err := video.FromEDID(edid.Synthesize(dt))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, v.HTotal(), uint32(2208))
	test.ExpectApproximate(t, v.PixelClock, 209.318, 0.001)
	test.ExpectApproximate(t, v.FrameRate(), 60.0, 0.001)

	// 1080p at 120Hz is reduced to 60Hz
	dt = timing1080p
	dt.PixelClock = 297000
	v, err = video.FromEDID(edid.Synthesize(dt))
	test.DemandSuccess(t, err)
	test.ExpectApproximate(t, v.PixelClock, 148.5, 0.001)
	test.ExpectApproximate(t, v.FrameRate(), 60.0, 0.001)

	// too fast at 60Hz
	dt = edid.DetailedTiming{
		PixelClock: 241500, HActive: 2560, HFrontPorch: 48, HSync: 32, HBackPorch: 80,
		VActive: 1440, VFrontPorch: 3, VSync: 5, VBackPorch: 33,
	}
	_, err = video.FromEDID(edid.Synthesize(dt))
	test.ExpectSuccess(t, curated.Is(err, video.ModeOutOfRange))

	// too fast even when reduced to 60Hz
	dt.PixelClock = 483000
	_, err = video.FromEDID(edid.Synthesize(dt))
	test.ExpectSuccess(t, curated.Is(err, video.ModeOutOfRange))

	// slow enough but too wide
	dt = edid.DetailedTiming{
		PixelClock: 185580, HActive: 2560, HFrontPorch: 48, HSync: 32, HBackPorch: 80,
		VActive: 1080, VFrontPorch: 3, VSync: 10, VBackPorch: 18,
	}
	_, err = video.FromEDID(edid.Synthesize(dt))
	test.ExpectSuccess(t, curated.Is(err, video.ModeOutOfRange))
}

func TestSelectModeDisplay(t *testing.T) {
	d, _ := display(&timing1080p)
	e, _ := engine(t, d)

	s := e.SelectMode(context.Background(), config.Mister{})
	test.ExpectSuccess(t, s.Negotiated)
	test.ExpectEquality(t, s.Default.HAct, uint32(1920))
	test.ExpectEquality(t, s.Default.VAct, uint32(1080))
	test.ExpectApproximate(t, s.Default.FrameRate(), 60.0, 0.5/60)
	test.ExpectSuccess(t, s.PAL == nil)
	test.ExpectSuccess(t, s.NTSC == nil)
}

func TestSelectModeNoDisplay(t *testing.T) {
	d, _ := display(nil)
	e, _ := engine(t, d)

	s := e.SelectMode(context.Background(), config.Mister{})
	test.ExpectFailure(t, s.Negotiated)
	test.ExpectEquality(t, s.Default, video.Preset640x480r60.Timing())

	// no display reader at all
	e, _ = engine(t, nil)
	s = e.SelectMode(context.Background(), config.Mister{})
	test.ExpectEquality(t, s.Default, video.Preset640x480r60.Timing())
}

func TestSelectModeConfigured(t *testing.T) {
	d, tx := display(&timing1080p)
	e, _ := engine(t, d)

	mode := "1"
	pal := "3"
	bad := "nonsense"
	s := e.SelectMode(context.Background(), config.Mister{VideoConf: &mode, VideoConfPAL: &pal, VideoConfNTSC: &bad})

	// the display is never asked
	test.ExpectEquality(t, len(tx.Writes), 0)

	test.ExpectEquality(t, s.Default.Mode, uint32(video.Preset1024x768r60))
	test.DemandSuccess(t, s.PAL != nil)
	test.ExpectEquality(t, s.PAL.Mode, uint32(video.Preset720x576r50))
	test.ExpectSuccess(t, s.NTSC == nil)

	test.ExpectEquality(t, s.Choose(video.StandardPAL).Mode, uint32(video.Preset720x576r50))
	test.ExpectEquality(t, s.Choose(video.StandardNTSC).Mode, uint32(video.Preset1024x768r60))
	test.ExpectEquality(t, s.Choose(video.StandardAny).Mode, uint32(video.Preset1024x768r60))

	// an unusable mode string falls back to the default preset
	s = e.SelectMode(context.Background(), config.Mister{VideoConf: &bad})
	test.ExpectEquality(t, s.Default, video.Preset640x480r60.Timing())
}

func TestSelectModeDirectVideo(t *testing.T) {
	d, tx := display(&timing1080p)
	e, _ := engine(t, d)

	on := true
	s := e.SelectMode(context.Background(), config.Mister{DirectVideo: &on, MenuPal: &on})
	test.ExpectEquality(t, len(tx.Writes), 0)
	test.ExpectEquality(t, s.Default.Mode, uint32(video.PresetPAL15K))

	s = e.SelectMode(context.Background(), config.Mister{DirectVideo: &on, ForcedScandoubler: &on})
	test.ExpectEquality(t, s.Default.Mode, uint32(video.PresetNTSC31K))
}

func TestSelectResolutionOverride(t *testing.T) {
	d, _ := display(&timing1080p)
	e, _ := engine(t, d)

	cfg, err := config.Parse([]byte("[video=1920x1080]\nvideo_mode=1\n\n[video=1280x720]\nvideo_mode=2\n\n[snes]\nvsync_adjust=2\n"))
	test.DemandSuccess(t, err)

	// the section for the negotiated resolution sets the video mode
	s, m := e.Select(context.Background(), cfg, "SNES")
	test.ExpectFailure(t, s.Negotiated)
	test.ExpectEquality(t, s.Default.Mode, uint32(video.Preset1024x768r60))
	test.DemandSuccess(t, m.VideoConf != nil)
	test.ExpectEquality(t, *m.VideoConf, "1")
	test.DemandSuccess(t, m.VSyncAdjust != nil)
	test.ExpectEquality(t, *m.VSyncAdjust, 2)

	// no matching section. the negotiated mode stands
	cfg, err = config.Parse([]byte("[video=1280x720]\nvideo_mode=2\n"))
	test.DemandSuccess(t, err)
	s, m = e.Select(context.Background(), cfg, "SNES")
	test.ExpectSuccess(t, s.Negotiated)
	test.ExpectEquality(t, s.Default.HAct, uint32(1920))
	test.ExpectFailure(t, m.VideoModeConfigured())

	// the resolution of a mode is what the sections are matched against
	res := s.Default.Resolution()
	test.ExpectEquality(t, res.Width, 1920)
	test.ExpectEquality(t, res.Height, 1080)
	test.ExpectApproximate(t, res.Refresh, 60.0, 0.5/60)
}

func TestDirectVideoFold(t *testing.T) {
	for p := video.Preset1280x720r60; p <= video.PresetPAL31K; p++ {
		v := p.Timing()
		d := video.DirectVideo(v)
		test.ExpectEquality(t, d.HFP, uint32(6), p)
		test.ExpectEquality(t, d.HBP, uint32(3), p)
		test.ExpectEquality(t, d.VFP, uint32(2), p)
		test.ExpectEquality(t, d.VBP, uint32(2), p)
		test.ExpectEquality(t, d.HTotal(), v.HTotal(), p)
		test.ExpectEquality(t, d.VTotal(), v.VTotal(), p)
		test.ExpectEquality(t, d.FrameRate(), v.FrameRate(), p)
	}

	v := video.PresetNTSC15K.Timing()
	d := video.DirectVideo(v)
	test.ExpectEquality(t, d.HAct, uint32(640+30-6+70-3))
	test.ExpectEquality(t, d.VAct, uint32(240+4-2+14-2))
}

func TestSendToCore(t *testing.T) {
	lb := loopback.NewLoopback()
	hdmi := &i2c.Memory{}
	hdmi.Regs[0x40] = 0xff

	e, err := video.NewEngine(fpga.NewBus(lb), edid.NewTransmitter(hdmi), nil, 0)
	test.DemandSuccess(t, err)

	v := video.Preset1920x1080r60.Timing()
	test.DemandSuccess(t, e.SendToCore(v, false, true))

	// SPD and the first spare packet are disabled
	test.ExpectEquality(t, hdmi.Regs[0x40], uint8(0xbe))

	h := lb.Filter(fpga.Address{Feature: fpga.FeatureIO, Opcode: fpga.OpSetVideo})
	test.DemandEquality(t, len(h), 1)
	tx, _ := lb.Transaction(h[0])
	test.DemandEquality(t, len(tx.Payload), 38)
	test.ExpectEquality(t, [38]uint16(tx.Payload), [38]uint16(v.Words()))

	// direct video does not touch the HDMI transmitter
	hdmi.Writes = nil
	lb.Clear()
	test.DemandSuccess(t, e.SendToCore(v, true, false))
	test.ExpectEquality(t, len(hdmi.Writes), 0)

	tx, _ = lb.Transaction(0)
	test.ExpectEquality(t, tx.Payload[2], uint16(6))
	test.ExpectEquality(t, tx.Payload[1], uint16(1920+88-6+148-3))
	test.ExpectEquality(t, tx.Payload[5], uint16(1080+4-2+36-2))
}

func TestSendToCoreErrors(t *testing.T) {
	lb := loopback.NewLoopback()
	hdmi := &i2c.Memory{Fault: errors.New("no ack")}
	e, err := video.NewEngine(fpga.NewBus(lb), edid.NewTransmitter(hdmi), nil, 0)
	test.DemandSuccess(t, err)

	err = e.SendToCore(video.DefaultPreset.Timing(), false, false)
	test.ExpectSuccess(t, curated.Is(err, fpga.TransportError))
	test.ExpectEquality(t, lb.Len(), 0)

	// failure of the bus
	hdmi.Fault = nil
	lb.FailAfter(3, errors.New("link down"))
	err = e.SendToCore(video.DefaultPreset.Timing(), false, false)
	test.ExpectSuccess(t, curated.Is(err, fpga.TransportError))
}
