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

package core

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/onefpga/onefpga/config"
	"github.com/onefpga/onefpga/curated"
	"github.com/onefpga/onefpga/environment"
	"github.com/onefpga/onefpga/fpga"
	"github.com/onefpga/onefpga/logger"
	"github.com/onefpga/onefpga/notifications"
	"github.com/onefpga/onefpga/osd"
	"github.com/onefpga/onefpga/romloader"
	"github.com/onefpga/onefpga/video"
)

// Error patterns returned by the Manager.
const (
	LaunchError    = "launch: %v"
	NoSuchSetting  = "core: no such setting: %v"
	NotSupported   = "core: %s not supported by %s"
	NoCore         = "core: no core running"
	FileError      = "core: file: %v"
	SaveStateError = "core: save state %d: %v"
	Closed         = "core: manager has shut down"
)

// State of the Manager.
type State int

// List of valid State values.
const (
	StateIdle State = iota
	StateMenu
	StateRunning
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateMenu:
		return "menu"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting down"
	}
	return "unknown"
}

// Descriptor describes the core to launch.
type Descriptor struct {
	// path of the bitstream
	Bitstream string

	// files to send to the core, keyed by file slot. paths can point into
	// a zip or 7z archive
	Files map[uint8]string

	// do not wait for the core to identify itself. the core will be an
	// OtherCore
	Raw bool
}

// SaveStateHook is called when the running core has a save state to
// persist. The screenshot can be nil.
type SaveStateHook func(h Handle, screenshot []byte, slot int, state []byte) error

// Manager owns the core running on the FPGA. The Manager must be used from a
// single goroutine.
type Manager struct {
	env        *environment.Environment
	bus        *fpga.Bus
	programmer fpga.Programmer
	video      *video.Engine
	cfg        *config.Config
	osd        *osd.Transport

	state   State
	current Handle

	osdVisible bool

	// volume of the audio output. sent to every core that is launched
	volume uint8

	saveHook SaveStateHook
}

// NewManager is the preferred method of initialisation for the Manager type.
// The video engine can be nil, in which case no video mode is sent to a newly
// launched core. A nil config is the same as an empty configuration.
func NewManager(env *environment.Environment, bus *fpga.Bus, programmer fpga.Programmer, engine *video.Engine, cfg *config.Config) *Manager {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Manager{
		env:        env,
		bus:        bus,
		programmer: programmer,
		video:      engine,
		cfg:        cfg,
		osd:        osd.NewTransport(bus),
		volume:     MaxVolume,
	}
}

// State returns the current state of the Manager.
func (m *Manager) State() State {
	return m.state
}

// CurrentCore returns the handle of the running core. The second return
// value is false if no core has been launched.
func (m *Manager) CurrentCore() (Handle, bool) {
	return m.current, m.current != nil
}

// OSD returns the transport for the on-screen display.
func (m *Manager) OSD() *osd.Transport {
	return m.osd
}

func (m *Manager) notify(n notifications.Notice) {
	if err := m.env.Notify.Notify(n); err != nil {
		logger.Logf(m.env, "core", "notification %s: %v", n, err)
	}
}

func shortName(bitstream string) string {
	n := path.Base(bitstream)
	return strings.TrimSuffix(n, path.Ext(n))
}

// Launch programs the FPGA with the core and waits for it to identify
// itself. The video mode for the core is then sent followed by any files.
//
// If the launch fails the previous core is restored and the state of the
// Manager is unchanged.
func (m *Manager) Launch(ctx context.Context, d Descriptor) (Handle, error) {
	h, err := m.launch(ctx, d, false)
	if err != nil {
		return nil, err
	}
	m.state = StateRunning
	m.notify(notifications.NotifyCoreLaunched)
	return h, nil
}

// LaunchMenu programs the FPGA with the menu core.
func (m *Manager) LaunchMenu(ctx context.Context) (Handle, error) {
	h, err := m.launch(ctx, Descriptor{Bitstream: m.env.Root.MenuCore()}, true)
	if err != nil {
		return nil, err
	}
	m.state = StateMenu
	m.notify(notifications.NotifyMenuLoaded)
	return h, nil
}

func (m *Manager) launch(ctx context.Context, d Descriptor, menu bool) (Handle, error) {
	if m.state == StateShuttingDown {
		return nil, curated.Errorf(LaunchError, curated.Errorf(Closed))
	}

	if d.Bitstream == "" {
		return nil, curated.Errorf(LaunchError, fmt.Errorf("no bitstream"))
	}
	if len(d.Files) > 0 && d.Raw {
		return nil, curated.Errorf(LaunchError, fmt.Errorf("files cannot be sent to a core that does not identify itself"))
	}

	fi, err := m.env.Fs.Stat(d.Bitstream)
	if err != nil {
		return nil, curated.Errorf(LaunchError, err)
	}
	if fi.IsDir() {
		return nil, curated.Errorf(LaunchError, fmt.Errorf("%s is a directory", d.Bitstream))
	}

	files, err := m.load(d.Files)
	if err != nil {
		return nil, curated.Errorf(LaunchError, err)
	}

	prev := m.current

	err = m.programmer.Program(ctx, d.Bitstream)
	if err != nil {
		m.rollback(ctx, prev)
		return nil, curated.Errorf(LaunchError, err)
	}

	h, err := m.identify(ctx, d, menu)
	if err == nil {
		err = checkSlots(h, files)
	}
	if err == nil {
		err = m.start(ctx, h, files)
	}
	if err != nil {
		m.rollback(ctx, prev)
		return nil, curated.Errorf(LaunchError, err)
	}

	if mc, ok := h.(*MisterCore); ok {
		mc.files = make(map[uint8]string, len(d.Files))
		for s, fn := range d.Files {
			mc.files[s] = fn
		}
	}

	// the OSD of the previous core is gone
	m.menuGone()

	m.current = h
	logger.Logf(m.env, "core", "launched %s from %s", h.Name(), h.Bitstream())

	return h, nil
}

type slotFile struct {
	slot   uint8
	loader romloader.Loader
}

// check that all files exist and load them, in slot order. nothing is sent
// to the FPGA.
func (m *Manager) load(files map[uint8]string) ([]slotFile, error) {
	slots := make([]uint8, 0, len(files))
	for s := range files {
		slots = append(slots, s)
	}
	slices.Sort(slots)

	loaded := make([]slotFile, 0, len(slots))
	for _, s := range slots {
		l := romloader.NewLoader(files[s])
		if _, err := romloader.Stat(m.env.Fs, l.Filename); err != nil {
			return nil, err
		}
		if err := l.Load(m.env.Fs); err != nil {
			return nil, err
		}
		loaded = append(loaded, slotFile{slot: s, loader: l})
	}

	return loaded, nil
}

// the core must declare a slot for every file and the slot must accept the
// type of file.
func checkSlots(h Handle, files []slotFile) error {
	if len(files) == 0 {
		return nil
	}

	mc, ok := h.(*MisterCore)
	if !ok {
		return fmt.Errorf("%s does not accept files", h.Name())
	}

	for _, f := range files {
		slot, ok := mc.config.Slot(f.slot)
		if !ok {
			return fmt.Errorf("%s has no file slot %d", h.Name(), f.slot)
		}
		if slot.Mount {
			return fmt.Errorf("file slot %d of %s is for mounted images", f.slot, h.Name())
		}
		if !slot.Accepts(f.loader.Extension()) {
			return fmt.Errorf("file slot %d of %s does not accept %s", f.slot, h.Name(), f.loader.ShortName())
		}
	}

	return nil
}

// wait for the newly programmed core to report its configuration string.
func (m *Manager) identify(ctx context.Context, d Descriptor, menu bool) (Handle, error) {
	if d.Raw {
		return &OtherCore{bitstream: d.Bitstream}, nil
	}

	attempts := m.env.Prefs.IdentifyAttempts.Get().(int)
	interval := time.Duration(m.env.Prefs.IdentifyInterval.Get().(int)) * time.Millisecond

	for i := 0; i < max(attempts, 1); i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(interval):
			}
		}

		cmd := &fpga.GetConfigString{}
		if err := m.bus.Transmit(cmd); err != nil {
			return nil, err
		}
		if cmd.Value == "" {
			continue
		}

		cs, err := ParseConfigString(cmd.Value)
		if err != nil {
			return nil, err
		}

		if menu {
			return &MenuCore{bitstream: d.Bitstream, name: cs.Name}, nil
		}
		return &MisterCore{bitstream: d.Bitstream, config: cs}, nil
	}

	return nil, fmt.Errorf("%s did not identify itself", d.Bitstream)
}

// bring a freshly programmed core up to date. the video mode and the
// volume are sent followed by the files.
func (m *Manager) start(ctx context.Context, h Handle, files []slotFile) error {
	if err := m.sendVideoMode(ctx, h); err != nil {
		return err
	}
	if err := m.bus.Transmit(attenuation(m.volume)); err != nil {
		return err
	}
	for _, f := range files {
		if err := m.transfer(f.slot, f.loader); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) sendVideoMode(ctx context.Context, h Handle) error {
	if m.video == nil {
		return nil
	}

	menu := IsMenu(h)
	modes, cfg := m.video.Select(ctx, m.cfg, h.Name())

	std := video.StandardAny
	if menu && cfg.MenuIsPAL() {
		std = video.StandardPAL
	}

	err := m.video.SendToCore(modes.Choose(std), cfg.DirectVideoEnabled(), menu)
	if err != nil {
		return err
	}
	m.notify(notifications.NotifyVideoMode)

	return nil
}

// send a file to the core. the width of the data commands follows the width
// of the download bus of the core.
func (m *Manager) transfer(slot uint8, l romloader.Loader) error {
	chunk := max(m.env.Prefs.ChunkSize.Get().(int), 2)
	size := uint32(len(l.Data))
	wide := m.bus.WideFileIO()

	for _, cmd := range []fpga.Command{
		fpga.FileIndex(slot),
		fpga.NewFileExtension(l.Extension()),
		fpga.FileTxEnabled{Size: &size},
	} {
		if err := m.bus.Transmit(cmd); err != nil {
			return err
		}
	}

	// chunks of a 16-bit transfer must not split a word
	if wide {
		chunk &^= 1
	}

	for d := range slices.Chunk(l.Data, chunk) {
		var cmd fpga.Command = fpga.FileTxData8(d)
		if wide {
			cmd = fpga.FileTxData16(fpga.PackWords(d))
		}
		if err := m.bus.Transmit(cmd); err != nil {
			// try to leave the core in a sane state. the original error is
			// the one that matters
			_ = m.bus.Transmit(fpga.FileTxDisabled{})
			return err
		}
	}

	logger.Logf(m.env, "core", "sent %s (%d bytes) to slot %d", l.ShortName(), size, slot)

	return m.bus.Transmit(fpga.FileTxDisabled{})
}

// reprogram the previous core after a failed launch and bring it back to
// the state it was in. cancellation of the launch does not prevent the
// rollback. problems are logged.
func (m *Manager) rollback(ctx context.Context, prev Handle) {
	// whatever was on the OSD went with the previous program
	m.menuGone()

	if prev == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)

	err := m.programmer.Program(ctx, prev.Bitstream())
	if err != nil {
		logger.Logf(m.env, "core", "rollback to %s: %v", prev.Name(), err)
		return
	}

	if st, ok := statusOf(prev); ok {
		err = m.bus.Transmit(fpga.SetStatusBits(*st))
		if err != nil {
			logger.Logf(m.env, "core", "rollback to %s: %v", prev.Name(), err)
		}
	}

	var files []slotFile
	if mc, ok := prev.(*MisterCore); ok {
		files, err = m.load(mc.files)
		if err != nil {
			logger.Logf(m.env, "core", "rollback to %s: %v", prev.Name(), err)
			files = nil
		}
	}

	err = m.start(ctx, prev, files)
	if err != nil {
		logger.Logf(m.env, "core", "rollback to %s: %v", prev.Name(), err)
	}

	logger.Logf(m.env, "core", "restored %s", prev.Name())
}

// the FPGA has been reprogrammed and the OSD is no longer visible.
func (m *Manager) menuGone() {
	if m.osdVisible {
		m.osdVisible = false
		m.notify(notifications.NotifyOSDHidden)
	}
}

// FileSelect loads a file into a slot of the running core. The slot must be
// one that the core declares and it must accept the type of file.
func (m *Manager) FileSelect(slot uint8, filename string) error {
	if m.current == nil {
		return curated.Errorf(NoCore)
	}
	mc, ok := m.current.(*MisterCore)
	if !ok {
		return curated.Errorf(NotSupported, "files", m.current.Name())
	}

	files, err := m.load(map[uint8]string{slot: filename})
	if err != nil {
		return curated.Errorf(FileError, err)
	}
	if err := checkSlots(mc, files); err != nil {
		return curated.Errorf(FileError, err)
	}
	if err := m.transfer(slot, files[0].loader); err != nil {
		return curated.Errorf(FileError, err)
	}

	if mc.files == nil {
		mc.files = make(map[uint8]string)
	}
	mc.files[slot] = filename
	m.notify(notifications.NotifyFileLoaded)

	return nil
}

// MaxVolume is the loudest volume.
const MaxVolume = 255

// the attenuation sent to the core for the volume. zero is silence.
func attenuation(volume uint8) fpga.AudioVolume {
	if volume == 0 {
		return fpga.AudioMute | fpga.MaxAttenuation
	}
	steps := fpga.MaxAttenuation + 1
	return fpga.AudioVolume(fpga.MaxAttenuation - int(volume)*steps/(MaxVolume+1))
}

// Volume returns the volume of the audio output. The volume is kept across
// launches.
func (m *Manager) Volume() uint8 {
	return m.volume
}

// SetVolume changes the volume of the audio output of the running core.
// Zero mutes the core.
func (m *Manager) SetVolume(volume uint8) error {
	if m.current == nil {
		return curated.Errorf(NoCore)
	}
	if err := m.bus.Transmit(attenuation(volume)); err != nil {
		return err
	}
	m.volume = volume
	return nil
}

// ShowMenu makes the on-screen display visible. Showing a visible display
// has no effect.
func (m *Manager) ShowMenu() error {
	if m.osdVisible {
		return nil
	}
	if err := m.osd.Enable(); err != nil {
		return err
	}
	m.osdVisible = true
	m.notify(notifications.NotifyOSDShown)
	return nil
}

// HideMenu hides the on-screen display. Hiding a hidden display has no
// effect.
func (m *Manager) HideMenu() error {
	if !m.osdVisible {
		return nil
	}
	if err := m.osd.Disable(); err != nil {
		return err
	}
	m.osdVisible = false
	m.notify(notifications.NotifyOSDHidden)
	return nil
}

// MenuVisible returns true if the on-screen display is visible.
func (m *Manager) MenuVisible() bool {
	return m.osdVisible
}

// Shutdown hides the on-screen display and releases the running core. The
// Manager cannot be used afterwards. Calling Shutdown more than once has no
// effect.
func (m *Manager) Shutdown() error {
	if m.state == StateShuttingDown {
		return nil
	}

	var err error
	if m.current != nil {
		err = m.HideMenu()
	}

	m.state = StateShuttingDown
	m.current = nil
	m.notify(notifications.NotifyShutdown)

	return err
}
