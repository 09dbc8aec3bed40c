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

package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/onefpga/onefpga/core"
	"github.com/onefpga/onefpga/curated"
	"github.com/onefpga/onefpga/environment"
	"github.com/onefpga/onefpga/fpga"
	"github.com/onefpga/onefpga/fpga/loopback"
	"github.com/onefpga/onefpga/notifications"
	"github.com/onefpga/onefpga/paths"
	"github.com/onefpga/onefpga/preferences"
	"github.com/onefpga/onefpga/test"
	"github.com/onefpga/onefpga/video"
	"github.com/spf13/afero"
)

const (
	snesBitstream = "/media/fat/snes.rbf"
	rawBitstream  = "/media/fat/arcade.rbf"
	deadBitstream = "/media/fat/dead.rbf"
	gameBitstream = "/media/fat/game.rbf"
	romFile       = "/media/fat/games/SNES/game.sfc"
	nesFile       = "/media/fat/games/NES/game.nes"
)

// a core with small save state slots.
const gameConfig = "GAME;SS3E000000:100;F1,BIN,Load;S0,VHD,Mount;V,v1"

// notices records every notification.
type notices []notifications.Notice

func (n *notices) Notify(notice notifications.Notice) error {
	*n = append(*n, notice)
	return nil
}

func (n notices) count(notice notifications.Notice) int {
	var c int
	for _, v := range n {
		if v == notice {
			c++
		}
	}
	return c
}

type fixture struct {
	m      *core.Manager
	lb     *loopback.Loopback
	prog   *loopback.Programmer
	env    *environment.Environment
	notify *notices
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	fs := afero.NewMemMapFs()
	root := paths.NewRoot(paths.DefaultRoot)

	for _, fn := range []string{root.MenuCore(), snesBitstream, rawBitstream, deadBitstream, gameBitstream} {
		test.DemandSuccess(t, afero.WriteFile(fs, fn, []byte("bitstream"), 0o644))
	}

	rom := make([]byte, 10000)
	for i := range rom {
		rom[i] = byte(i>>12 + 1)
	}
	test.DemandSuccess(t, afero.WriteFile(fs, romFile, rom, 0o644))
	test.DemandSuccess(t, afero.WriteFile(fs, nesFile, rom[:100], 0o644))

	prefs, err := preferences.NewPreferences(fs, root)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, prefs.IdentifyAttempts.Set(3))
	test.DemandSuccess(t, prefs.IdentifyInterval.Set(1))

	f := fixture{notify: &notices{}}

	f.env, err = environment.NewEnvironment("test", fs, root, prefs, f.notify)
	test.DemandSuccess(t, err)

	f.lb = loopback.NewLoopback()
	bus := fpga.NewBus(f.lb)

	f.prog = loopback.NewProgrammer(f.lb)
	f.prog.Register(root.MenuCore(), "MENU;;")
	f.prog.Register(snesBitstream, snesConfig)
	f.prog.Register(gameBitstream, gameConfig)

	engine, err := video.NewEngine(bus, nil, nil, 4)
	test.DemandSuccess(t, err)

	f.m = core.NewManager(f.env, bus, f.prog, engine, nil)
	return f
}

func (f fixture) count(cmd fpga.Command) int {
	return len(f.lb.Filter(cmd.Address()))
}

func TestIdle(t *testing.T) {
	f := newFixture(t)

	test.ExpectEquality(t, f.m.State(), core.StateIdle)
	_, ok := f.m.CurrentCore()
	test.ExpectFailure(t, ok)

	_, err := f.m.ReadStatusBits()
	test.ExpectSuccess(t, curated.Is(err, core.NoCore))
	test.ExpectSuccess(t, curated.Is(f.m.Trigger(core.NewSettingID("Reset")), core.NoCore))
	test.ExpectSuccess(t, curated.Is(f.m.SendKey(0x1c), core.NoCore))
}

func TestLaunchMenu(t *testing.T) {
	f := newFixture(t)

	h, err := f.m.LaunchMenu(context.Background())
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, core.IsMenu(h))
	test.ExpectEquality(t, h.Name(), "MENU")
	test.ExpectEquality(t, f.m.State(), core.StateMenu)

	c, ok := f.m.CurrentCore()
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, c, h)

	// the default video mode is sent because there is no display
	test.ExpectEquality(t, f.count(video.SetVideoMode{}), 1)
	test.ExpectEquality(t, f.notify.count(notifications.NotifyVideoMode), 1)
	test.ExpectEquality(t, f.notify.count(notifications.NotifyMenuLoaded), 1)

	// the menu core has status bits but no settings
	_, err = f.m.ReadStatusBits()
	test.ExpectSuccess(t, err)
	err = f.m.Trigger(core.NewSettingID("Reset"))
	test.ExpectSuccess(t, curated.Is(err, core.NotSupported))
	err = f.m.Persist(0, []byte{1}, nil)
	test.ExpectSuccess(t, curated.Is(err, core.NotSupported))
}

func TestLaunchWithFiles(t *testing.T) {
	f := newFixture(t)
	test.DemandSuccess(t, f.env.Prefs.ChunkSize.Set(4096))

	_, err := f.m.LaunchMenu(context.Background())
	test.DemandSuccess(t, err)
	f.lb.Clear()

	h, err := f.m.Launch(context.Background(), core.Descriptor{
		Bitstream: snesBitstream,
		Files:     map[uint8]string{0: romFile},
	})
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, f.m.State(), core.StateRunning)
	test.ExpectEquality(t, h.Name(), "SNES")
	test.ExpectEquality(t, f.notify.count(notifications.NotifyCoreLaunched), 1)

	mc := test.DemandImplements[*core.MisterCore](t, h)
	test.ExpectEquality(t, mc.Files()[0], romFile)
	test.ExpectEquality(t, mc.Config().Version, "v230101")

	// file index and extension
	idx := f.lb.Filter(fpga.FileIndex(0).Address())
	test.DemandEquality(t, len(idx), 1)
	tx, _ := f.lb.Transaction(idx[0])
	test.ExpectEquality(t, tx.Payload[0], uint16(0))

	ext := f.lb.Filter(fpga.FileExtension{}.Address())
	test.DemandEquality(t, len(ext), 1)
	tx, _ = f.lb.Transaction(ext[0])
	test.ExpectEquality(t, tx.Payload[0], uint16('.')<<8|'s')
	test.ExpectEquality(t, tx.Payload[1], uint16('f')<<8|'c')

	// enable with size followed by disable
	ftx := f.lb.Filter(fpga.FileTxDisabled{}.Address())
	test.DemandEquality(t, len(ftx), 2)
	tx, _ = f.lb.Transaction(ftx[0])
	test.DemandEquality(t, len(tx.Payload), 3)
	test.ExpectEquality(t, tx.Payload[0], uint16(0x00ff))
	test.ExpectEquality(t, tx.Payload[1], uint16(10000))
	test.ExpectEquality(t, tx.Payload[2], uint16(0))
	tx, _ = f.lb.Transaction(ftx[1])
	test.ExpectEquality(t, tx.Payload[0], uint16(0x0000))

	// data in chunks, one byte per transfer
	data := f.lb.Filter(fpga.FileTxData8{}.Address())
	test.DemandEquality(t, len(data), 3)
	tx, _ = f.lb.Transaction(data[0])
	test.ExpectEquality(t, len(tx.Payload), 4096)
	tx, _ = f.lb.Transaction(data[2])
	test.ExpectEquality(t, len(tx.Payload), 10000-2*4096)
	test.ExpectEquality(t, tx.Payload[0], uint16(3))

	// the data comes after the enable and before the disable
	test.ExpectSuccess(t, ftx[0] < data[0])
	test.ExpectSuccess(t, data[2] < ftx[1])
}

func TestLaunchFailure(t *testing.T) {
	f := newFixture(t)

	menu, err := f.m.LaunchMenu(context.Background())
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, f.m.SetRange(4, 12, 0xa5))
	test.DemandSuccess(t, f.m.ShowMenu())
	before, err := f.m.ReadStatusBits()
	test.DemandSuccess(t, err)

	unchanged := func() {
		t.Helper()
		test.ExpectEquality(t, f.m.State(), core.StateMenu)
		c, ok := f.m.CurrentCore()
		test.ExpectSuccess(t, ok)
		test.ExpectEquality(t, c, menu)
		test.ExpectEquality(t, f.notify.count(notifications.NotifyCoreLaunched), 0)
	}

	// missing bitstream. the FPGA is not touched
	_, err = f.m.Launch(context.Background(), core.Descriptor{Bitstream: "/media/fat/missing.rbf"})
	test.ExpectSuccess(t, curated.Is(err, core.LaunchError))
	test.ExpectEquality(t, len(f.prog.History()), 1)
	test.ExpectSuccess(t, f.m.MenuVisible())
	unchanged()

	// missing file
	_, err = f.m.Launch(context.Background(), core.Descriptor{
		Bitstream: snesBitstream,
		Files:     map[uint8]string{1: "/media/fat/games/missing.sfc"},
	})
	test.ExpectSuccess(t, curated.Is(err, core.LaunchError))
	test.ExpectEquality(t, len(f.prog.History()), 1)
	test.ExpectSuccess(t, f.m.MenuVisible())
	unchanged()

	// core never identifies itself. the menu core is programmed again and
	// given back its status bits and its video mode
	_, err = f.m.Launch(context.Background(), core.Descriptor{Bitstream: deadBitstream})
	test.ExpectSuccess(t, curated.Is(err, core.LaunchError))
	test.DemandEquality(t, len(f.prog.History()), 3)
	test.ExpectEquality(t, f.prog.History()[1], deadBitstream)
	test.ExpectEquality(t, f.prog.History()[2], menu.Bitstream())
	test.ExpectEquality(t, f.count(video.SetVideoMode{}), 2)
	unchanged()

	after, err := f.m.ReadStatusBits()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, after, before)

	// the OSD did not survive the reprogramming and can be shown again
	test.ExpectFailure(t, f.m.MenuVisible())
	test.ExpectEquality(t, f.notify.count(notifications.NotifyOSDHidden), 1)
	test.DemandSuccess(t, f.m.ShowMenu())
	test.ExpectEquality(t, f.count(fpga.OsdEnable{}), 2)

	// programming fails
	f.prog.Fault(snesBitstream, errors.New("bad crc"))
	_, err = f.m.Launch(context.Background(), core.Descriptor{Bitstream: snesBitstream})
	test.ExpectSuccess(t, curated.Is(err, core.LaunchError))
	test.ExpectEquality(t, len(f.prog.History()), 4)
	test.ExpectEquality(t, f.count(video.SetVideoMode{}), 3)
	test.ExpectFailure(t, f.m.MenuVisible())
	unchanged()

	// cancelled launch is rolled back even though the context is done
	f.prog.Register(rawBitstream, "RAW;;")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.m.Launch(ctx, core.Descriptor{Bitstream: rawBitstream})
	test.ExpectSuccess(t, curated.Is(err, core.LaunchError))
	test.ExpectEquality(t, len(f.prog.History()), 5)
	test.ExpectEquality(t, f.count(video.SetVideoMode{}), 4)
	unchanged()
}

func TestRollbackRestoresFiles(t *testing.T) {
	f := newFixture(t)
	test.DemandSuccess(t, f.env.Prefs.ChunkSize.Set(4096))

	snes, err := f.m.Launch(context.Background(), core.Descriptor{
		Bitstream: snesBitstream,
		Files:     map[uint8]string{0: romFile},
	})
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, f.m.SetRange(1, 3, 2))
	before, err := f.m.ReadStatusBits()
	test.DemandSuccess(t, err)
	f.lb.Clear()

	_, err = f.m.Launch(context.Background(), core.Descriptor{Bitstream: deadBitstream})
	test.ExpectSuccess(t, curated.Is(err, core.LaunchError))

	h := f.prog.History()
	test.ExpectEquality(t, h[len(h)-1], snesBitstream)

	c, ok := f.m.CurrentCore()
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, c, snes)
	test.ExpectEquality(t, f.m.State(), core.StateRunning)

	// the restored core is sent its video mode and its ROM again
	test.ExpectEquality(t, f.count(video.SetVideoMode{}), 1)
	test.ExpectEquality(t, f.count(fpga.FileTxData8{}), 3)
	idx := f.lb.Filter(fpga.FileIndex(0).Address())
	test.DemandEquality(t, len(idx), 1)
	tx, _ := f.lb.Transaction(idx[0])
	test.ExpectEquality(t, tx.Payload[0], uint16(0))

	after, err := f.m.ReadStatusBits()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, after, before)
}

func TestLaunchSlots(t *testing.T) {
	f := newFixture(t)

	menu, err := f.m.LaunchMenu(context.Background())
	test.DemandSuccess(t, err)

	rejected := func(files map[uint8]string) {
		t.Helper()
		f.lb.Clear()
		_, err := f.m.Launch(context.Background(), core.Descriptor{Bitstream: snesBitstream, Files: files})
		test.ExpectSuccess(t, curated.Is(err, core.LaunchError))
		test.ExpectEquality(t, f.count(fpga.FileTxData8{}), 0)
		c, _ := f.m.CurrentCore()
		test.ExpectEquality(t, c, menu)
		h := f.prog.History()
		test.ExpectEquality(t, h[len(h)-1], menu.Bitstream())
	}

	// the core only has slot 0
	rejected(map[uint8]string{7: romFile})

	// slot 0 does not take NES files
	rejected(map[uint8]string{0: nesFile})

	// mounted images are not sent as files
	f.lb.Clear()
	_, err = f.m.Launch(context.Background(), core.Descriptor{
		Bitstream: gameBitstream,
		Files:     map[uint8]string{0: nesFile},
	})
	test.ExpectSuccess(t, curated.Is(err, core.LaunchError))
	test.ExpectEquality(t, f.count(fpga.FileTxData8{}), 0)

	// a slot that exists and takes the file
	_, err = f.m.Launch(context.Background(), core.Descriptor{
		Bitstream: snesBitstream,
		Files:     map[uint8]string{0: romFile},
	})
	test.DemandSuccess(t, err)
}

func TestWideTransfer(t *testing.T) {
	f := newFixture(t)
	test.DemandSuccess(t, f.env.Prefs.ChunkSize.Set(4095))
	f.prog.RegisterWide(snesBitstream, snesConfig)

	_, err := f.m.Launch(context.Background(), core.Descriptor{
		Bitstream: snesBitstream,
		Files:     map[uint8]string{0: romFile},
	})
	test.DemandSuccess(t, err)

	// chunks are rounded down to whole words
	data := f.lb.Filter(fpga.FileTxData16{}.Address())
	test.DemandEquality(t, len(data), 3)
	tx, _ := f.lb.Transaction(data[0])
	test.ExpectEquality(t, len(tx.Payload), 2047)
	test.ExpectEquality(t, tx.Payload[0], uint16(0x0101))
	tx, _ = f.lb.Transaction(data[2])
	test.ExpectEquality(t, len(tx.Payload), (10000-2*4094)/2)
	test.ExpectEquality(t, tx.Payload[0], uint16(0x0202))

	// the size is in bytes
	ftx := f.lb.Filter(fpga.FileTxDisabled{}.Address())
	test.DemandEquality(t, len(ftx), 2)
	tx, _ = f.lb.Transaction(ftx[0])
	test.ExpectEquality(t, tx.Payload[1], uint16(10000))
}

func TestFileSelect(t *testing.T) {
	f := newFixture(t)
	test.ExpectSuccess(t, curated.Is(f.m.FileSelect(0, romFile), core.NoCore))

	_, err := f.m.LaunchMenu(context.Background())
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, curated.Is(f.m.FileSelect(0, romFile), core.NotSupported))

	h, err := f.m.Launch(context.Background(), core.Descriptor{Bitstream: snesBitstream})
	test.DemandSuccess(t, err)
	f.lb.Clear()

	test.DemandSuccess(t, f.m.FileSelect(0, romFile))
	test.ExpectEquality(t, f.count(fpga.FileIndex(0)), 1)
	test.ExpectSuccess(t, f.count(fpga.FileTxData8{}) > 0)
	test.ExpectEquality(t, f.notify.count(notifications.NotifyFileLoaded), 1)

	mc := test.DemandImplements[*core.MisterCore](t, h)
	test.ExpectEquality(t, mc.Files()[0], romFile)

	// the slot must exist and accept the file
	f.lb.Clear()
	test.ExpectSuccess(t, curated.Is(f.m.FileSelect(3, romFile), core.FileError))
	test.ExpectSuccess(t, curated.Is(f.m.FileSelect(0, nesFile), core.FileError))
	test.ExpectSuccess(t, curated.Is(f.m.FileSelect(0, "/media/fat/missing.sfc"), core.FileError))
	test.ExpectEquality(t, f.lb.Len(), 0)
	test.ExpectEquality(t, f.notify.count(notifications.NotifyFileLoaded), 1)
}

func TestVolume(t *testing.T) {
	f := newFixture(t)
	test.ExpectEquality(t, f.m.Volume(), uint8(core.MaxVolume))
	test.ExpectSuccess(t, curated.Is(f.m.SetVolume(10), core.NoCore))

	volume := func() uint16 {
		t.Helper()
		h := f.lb.Filter(fpga.AudioVolume(0).Address())
		test.DemandSuccess(t, len(h) > 0)
		tx, _ := f.lb.Transaction(h[len(h)-1])
		test.DemandEquality(t, len(tx.Payload), 1)
		return tx.Payload[0]
	}

	// every launch sends the volume
	_, err := f.m.LaunchMenu(context.Background())
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, volume(), uint16(0))

	test.DemandSuccess(t, f.m.SetVolume(128))
	test.ExpectEquality(t, volume(), uint16(3))
	test.DemandSuccess(t, f.m.SetVolume(1))
	test.ExpectEquality(t, volume(), uint16(fpga.MaxAttenuation))

	test.DemandSuccess(t, f.m.SetVolume(0))
	test.ExpectEquality(t, volume(), uint16(fpga.AudioMute|fpga.MaxAttenuation))
	test.ExpectEquality(t, f.m.Volume(), uint8(0))

	// and it is kept for the next core
	f.lb.Clear()
	_, err = f.m.Launch(context.Background(), core.Descriptor{Bitstream: snesBitstream})
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, volume(), uint16(fpga.AudioMute|fpga.MaxAttenuation))
}

func TestRawLaunch(t *testing.T) {
	f := newFixture(t)

	h, err := f.m.Launch(context.Background(), core.Descriptor{Bitstream: rawBitstream, Raw: true})
	test.DemandSuccess(t, err)
	test.DemandImplements[*core.OtherCore](t, h)
	test.ExpectEquality(t, h.Name(), "arcade")

	test.ExpectSuccess(t, curated.Is(f.m.SendKey(0x1c), core.NotSupported))
	_, err = f.m.ReadStatusBits()
	test.ExpectSuccess(t, curated.Is(err, core.NotSupported))

	// files need a core that identifies itself
	_, err = f.m.Launch(context.Background(), core.Descriptor{
		Bitstream: rawBitstream,
		Raw:       true,
		Files:     map[uint8]string{1: romFile},
	})
	test.ExpectSuccess(t, curated.Is(err, core.LaunchError))
}

func launchSNES(t *testing.T) fixture {
	t.Helper()
	f := newFixture(t)
	_, err := f.m.Launch(context.Background(), core.Descriptor{Bitstream: snesBitstream})
	test.DemandSuccess(t, err)
	return f
}

func TestSetRangeReadBack(t *testing.T) {
	f := launchSNES(t)

	var ones core.StatusBitMap
	for i := range ones {
		ones[i] = 0xffff
	}
	test.DemandSuccess(t, f.m.SendStatusBits(ones))

	test.DemandSuccess(t, f.m.SetRange(5, 8, 0x160))
	reads := f.count(&fpga.GetStatusBits{})

	bits, err := f.m.ReadStatusBits()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, f.count(&fpga.GetStatusBits{}), reads+1)
	test.ExpectEquality(t, bits.GetRange(5, 8), uint32(0x160&0b111))
	test.ExpectSuccess(t, bits.Get(4))
	test.ExpectSuccess(t, bits.Get(8))
	test.ExpectEquality(t, bits[0], uint16(0xff1f))

	// the returned bits are a copy
	bits.Set(4, false)
	again, err := f.m.ReadStatusBits()
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, again.Get(4))

	test.ExpectPanic(t, func() { _ = f.m.SetRange(8, 5, 0) })
}

func TestCoreStatusChange(t *testing.T) {
	f := launchSNES(t)

	// the core changes its own bits
	f.lb.SetCoreStatus([fpga.StatusWords]uint16{0x1234, 0, 0, 0, 0, 0, 0, 0x8000})

	bits, err := f.m.ReadStatusBits()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, bits[0], uint16(0x1234))
	test.ExpectSuccess(t, bits.Get(127))

	// nothing new reported. the previous bits are returned
	bits, err = f.m.ReadStatusBits()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, bits[0], uint16(0x1234))
}

func TestSettings(t *testing.T) {
	f := launchSNES(t)

	// trigger pulses the bit
	writes := f.count(fpga.SetStatusBits{})
	test.DemandSuccess(t, f.m.Trigger(core.NewSettingID("Reset")))
	h := f.lb.Filter(fpga.SetStatusBits{}.Address())
	test.DemandEquality(t, len(h), writes+2)
	tx, _ := f.lb.Transaction(h[len(h)-2])
	test.ExpectEquality(t, tx.Payload[0]&1, uint16(1))
	tx, _ = f.lb.Transaction(h[len(h)-1])
	test.ExpectEquality(t, tx.Payload[0]&1, uint16(0))

	// option cycles through its choices
	aspect := core.NewSettingID("Aspect ratio")
	test.DemandSuccess(t, f.m.Trigger(aspect))
	bits, _ := f.m.ReadStatusBits()
	test.ExpectEquality(t, bits.GetRange(1, 3), uint32(1))
	test.DemandSuccess(t, f.m.Trigger(aspect))
	bits, _ = f.m.ReadStatusBits()
	test.ExpectEquality(t, bits.GetRange(1, 3), uint32(0))

	v, err := f.m.BoolOption(core.NewSettingID("Pause when OSD open"), true)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, v)
	bits, _ = f.m.ReadStatusBits()
	test.ExpectSuccess(t, bits.Get(6))

	n, err := f.m.IntOption(core.NewSettingID("Scandoubler Fx"), 4)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, n, uint32(4))
	n, err = f.m.IntOption(core.NewSettingID("Scandoubler Fx"), 9)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, n, uint32(1))
	bits, _ = f.m.ReadStatusBits()
	test.ExpectEquality(t, bits.GetRange(3, 6), uint32(1))

	// other settings are not disturbed
	test.ExpectSuccess(t, bits.Get(6))

	_, err = f.m.BoolOption(core.NewSettingID("Reset"), true)
	test.ExpectSuccess(t, curated.Is(err, core.NotSupported))

	err = f.m.Trigger(core.NewSettingID("No such thing"))
	test.ExpectSuccess(t, curated.Is(err, core.NoSuchSetting))
	_, err = f.m.IntOption(core.NewSettingID("No such thing"), 1)
	test.ExpectSuccess(t, curated.Is(err, core.NoSuchSetting))
}

func TestTriggerClosesMenu(t *testing.T) {
	f := launchSNES(t)

	test.DemandSuccess(t, f.m.ShowMenu())
	test.DemandSuccess(t, f.m.Trigger(core.NewSettingID("Reset")))
	test.ExpectSuccess(t, f.m.MenuVisible())

	test.DemandSuccess(t, f.m.Trigger(core.NewSettingID("Reset and close OSD")))
	test.ExpectFailure(t, f.m.MenuVisible())
}

func TestMenuIdempotent(t *testing.T) {
	f := launchSNES(t)

	test.DemandSuccess(t, f.m.ShowMenu())
	test.DemandSuccess(t, f.m.ShowMenu())
	test.ExpectEquality(t, f.count(fpga.OsdEnable{}), 1)
	test.ExpectEquality(t, f.notify.count(notifications.NotifyOSDShown), 1)
	test.ExpectSuccess(t, f.m.MenuVisible())

	test.DemandSuccess(t, f.m.HideMenu())
	test.DemandSuccess(t, f.m.HideMenu())
	test.ExpectEquality(t, f.count(fpga.OsdDisable{}), 1)
	test.ExpectEquality(t, f.notify.count(notifications.NotifyOSDHidden), 1)
	test.ExpectFailure(t, f.m.MenuVisible())
}

func TestInput(t *testing.T) {
	f := launchSNES(t)

	test.DemandSuccess(t, f.m.SendKey(0x1c))
	h := f.lb.Filter(fpga.Keyboard(0).Address())
	test.DemandEquality(t, len(h), 1)
	tx, _ := f.lb.Transaction(h[0])
	test.ExpectEquality(t, tx.Payload[0], uint16(0x1c))

	test.DemandSuccess(t, f.m.Joystick(1, 0x00010003))
	h = f.lb.Filter(fpga.Joystick{Index: 1}.Address())
	test.DemandEquality(t, len(h), 1)
	tx, _ = f.lb.Transaction(h[0])
	test.ExpectEquality(t, tx.Payload[0], uint16(0x0003))
	test.ExpectEquality(t, tx.Payload[1], uint16(0x0001))

	test.DemandSuccess(t, f.m.Reset())
	bits, _ := f.m.ReadStatusBits()
	test.ExpectFailure(t, bits.Get(0))
}

func TestSaveStates(t *testing.T) {
	f := launchSNES(t)

	// no hook. the save state is discarded
	test.ExpectSuccess(t, f.m.Persist(1, []byte{1, 2, 3}, nil))
	test.ExpectEquality(t, f.notify.count(notifications.NotifySaveState), 0)

	f.m.SetSaveStateHook(core.FileSaveStates(f.env))
	test.DemandSuccess(t, f.m.Persist(1, []byte{1, 2, 3}, []byte{0x89, 'P', 'N', 'G'}))
	test.ExpectEquality(t, f.notify.count(notifications.NotifySaveState), 1)

	d, err := afero.ReadFile(f.env.Fs, f.env.Root.Savestates("SNES")+"/snes_1.ss")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, string(d), "\x01\x02\x03")

	d, err = afero.ReadFile(f.env.Fs, f.env.Root.Screenshots("SNES")+"/snes_1.png")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(d), 4)

	// hook errors are returned
	f.m.SetSaveStateHook(func(_ core.Handle, _ []byte, _ int, _ []byte) error {
		return errors.New("disk full")
	})
	test.ExpectFailure(t, f.m.Persist(2, []byte{1}, nil))
}

func TestShutdown(t *testing.T) {
	f := launchSNES(t)
	test.DemandSuccess(t, f.m.ShowMenu())

	test.DemandSuccess(t, f.m.Shutdown())
	test.ExpectEquality(t, f.m.State(), core.StateShuttingDown)
	test.ExpectFailure(t, f.m.MenuVisible())
	_, ok := f.m.CurrentCore()
	test.ExpectFailure(t, ok)
	test.ExpectEquality(t, f.notify.count(notifications.NotifyShutdown), 1)

	test.DemandSuccess(t, f.m.Shutdown())
	test.ExpectEquality(t, f.notify.count(notifications.NotifyShutdown), 1)

	_, err := f.m.Launch(context.Background(), core.Descriptor{Bitstream: snesBitstream})
	test.ExpectSuccess(t, curated.Is(err, core.LaunchError))
	test.ExpectSuccess(t, curated.Has(err, core.Closed))
}
