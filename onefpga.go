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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/bradleyjkemp/memviz"
	"github.com/onefpga/onefpga/config"
	"github.com/onefpga/onefpga/core"
	"github.com/onefpga/onefpga/edid"
	"github.com/onefpga/onefpga/environment"
	"github.com/onefpga/onefpga/fpga"
	"github.com/onefpga/onefpga/fpga/fpgamgr"
	"github.com/onefpga/onefpga/fpga/loopback"
	"github.com/onefpga/onefpga/fpga/mmio"
	"github.com/onefpga/onefpga/fpga/serial"
	"github.com/onefpga/onefpga/i2c"
	"github.com/onefpga/onefpga/logger"
	"github.com/onefpga/onefpga/modalflag"
	"github.com/onefpga/onefpga/osd"
	"github.com/onefpga/onefpga/paths"
	"github.com/onefpga/onefpga/prefs"
	"github.com/onefpga/onefpga/statsview"
	"github.com/onefpga/onefpga/userinput"
	"github.com/onefpga/onefpga/version"
	"github.com/onefpga/onefpga/video"
	"github.com/spf13/afero"
	"golang.org/x/term"
)

func main() {
	// ctrl-c ends the RUN mode and cancels any EDID read in progress
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	exitVal := launch(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(exitVal)
}

// launch parses the command line and runs the selected mode. returns the
// value for os.Exit().
func launch(ctx context.Context, args []string, output io.Writer) int {
	md := &modalflag.Modes{Output: output}
	md.NewArgs(args)
	md.NewMode()
	md.AddSubModes("RUN", "EDID", "VIDEO", "OSD", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return 0

	case modalflag.ParseError:
		fmt.Fprintf(output, "* error: %v\n", err)
		return 10
	}

	switch md.Mode() {
	case "RUN":
		err = run(ctx, md, output)

	case "EDID":
		err = readEDID(ctx, md, output)

	case "VIDEO":
		err = selectVideo(ctx, md, output)

	case "OSD":
		err = showOSD(ctx, md, output)

	case "VERSION":
		fmt.Fprintln(output, version.Version())
	}

	if err != nil {
		fmt.Fprintf(output, "* error in %s mode: %s\n", md.String(), err)
		return 20
	}

	return 0
}

// options common to all modes.
type options struct {
	root      *string
	bus       *string
	serial    *string
	baud      *int
	log       *bool
	statsview *bool
	prefs     *string
}

func addOptions(md *modalflag.Modes) *options {
	return &options{
		root:      md.AddString("root", paths.DefaultRoot, "resource directory"),
		bus:       md.AddString("bus", "", "FPGA bus: mmio, serial or loopback. defaults to the fpga.bus preference"),
		serial:    md.AddString("serial", "", "serial device for the serial bus"),
		baud:      md.AddInt("baud", 0, "baud rate for the serial bus"),
		log:       md.AddBool("log", false, "echo log to stdout"),
		statsview: md.AddBool("statsview", false, "run runtime statistics server"),
		prefs:     md.AddString("prefs", "", "preference values for this session. eg. \"fpga.bus::loopback; edid.attempts::5\""),
	}
}

// system is the firmware and the hardware it is attached to.
type system struct {
	env        *environment.Environment
	bus        *fpga.Bus
	programmer fpga.Programmer
	hdmi       *edid.Transmitter
	display    *edid.Reader
	cfg        *config.Config
	engine     *video.Engine

	// memory shared with the FPGA can be mapped
	shared bool

	closers []io.Closer
}

func setup(opts *options, output io.Writer) (*system, error) {
	if *opts.log {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			logger.SetEcho(logger.NewColorizer(os.Stdout))
		} else {
			logger.SetEcho(os.Stdout)
		}
	} else {
		logger.SetEcho(nil)
	}

	if *opts.prefs != "" {
		prefs.PushCommandLineStack(*opts.prefs)
	}

	if *opts.statsview {
		statsview.Launch("", output)
	}

	logger.Log(logger.Allow, "onefpga", version.Version())

	fs := afero.NewOsFs()
	root := paths.NewRoot(*opts.root)

	env, err := environment.NewEnvironment(environment.MainLabel, fs, root, nil, nil)
	if *opts.prefs != "" {
		if unused := prefs.PopCommandLineStack(); unused != "" {
			logger.Logf(logger.Allow, "onefpga", "unused preferences: %s", unused)
		}
	}
	if err != nil {
		return nil, err
	}

	sys := &system{env: env}

	bus := *opts.bus
	if bus == "" {
		bus = env.Prefs.Bus.String()
	}

	switch bus {
	case "mmio":
		b, err := mmio.Open(mmio.DefaultDevice)
		if err != nil {
			return nil, err
		}
		sys.closers = append(sys.closers, b)
		sys.bus = fpga.NewBus(b)
		sys.programmer = fpgamgr.NewManager(fs, env.Prefs.FPGAManager.String(), "")
		sys.shared = true

		// the HDMI transmitter is only reachable on the board
		sys.attachHDMI()

	case "serial":
		dev := *opts.serial
		if dev == "" {
			dev = env.Prefs.SerialDevice.String()
		}
		baud := *opts.baud
		if baud == 0 {
			baud = env.Prefs.SerialBaud.Get().(int)
		}
		l, err := serial.Open(dev, baud)
		if err != nil {
			return nil, err
		}
		sys.closers = append(sys.closers, l)
		sys.bus = fpga.NewBus(l)
		sys.programmer = fpgamgr.NewManager(fs, env.Prefs.FPGAManager.String(), "")

	case "loopback":
		lb := loopback.NewLoopback()
		sys.bus = fpga.NewBus(lb)
		sys.programmer = loopback.NewProgrammer(lb)

	default:
		return nil, fmt.Errorf("unknown bus %q", bus)
	}

	sys.bus.SetTrace(env.Prefs.BusTrace.Get().(bool))

	sys.cfg, err = config.Load(fs, root.MisterIni())
	if err != nil {
		sys.Close()
		return nil, err
	}

	// a nil *edid.Reader must not be used as a video.Display
	var display video.Display
	if sys.display != nil {
		display = sys.display
	}

	sys.engine, err = video.NewEngine(sys.bus, sys.hdmi, display, env.Prefs.ModeCache.Get().(int))
	if err != nil {
		sys.Close()
		return nil, err
	}

	return sys, nil
}

// open the HDMI transmitter and the EDID EEPROM. failure is not fatal
// because the firmware can run without a display being negotiated.
func (sys *system) attachHDMI() {
	dev := sys.env.Prefs.I2CDevice.String()

	tx, err := i2c.Open(dev, edid.TransmitterAddress)
	if err != nil {
		logger.Logf(logger.Allow, "onefpga", "HDMI transmitter: %v", err)
		return
	}
	eeprom, err := i2c.Open(dev, edid.EEPROMAddress)
	if err != nil {
		tx.Close()
		logger.Logf(logger.Allow, "onefpga", "EDID: %v", err)
		return
	}
	sys.closers = append(sys.closers, tx, eeprom)

	sys.hdmi = edid.NewTransmitter(tx)
	sys.display = edid.NewReader(tx, eeprom)
	sys.display.Attempts = sys.env.Prefs.EDIDAttempts.Get().(int)
	sys.display.Interval = time.Duration(sys.env.Prefs.EDIDInterval.Get().(int)) * time.Millisecond
}

func (sys *system) Close() {
	for i := len(sys.closers) - 1; i >= 0; i-- {
		if err := sys.closers[i].Close(); err != nil {
			logger.Logf(logger.Allow, "onefpga", "%v", err)
		}
	}
	sys.closers = nil
}

func run(ctx context.Context, md *modalflag.Modes, output io.Writer) error {
	md.NewMode()
	md.AdditionalHelp("RUN [core.rbf [file]]\n\nWithout a core the menu core is launched.")

	opts := addOptions(md)
	slot := md.AddInt("slot", 1, "file slot for the file argument")
	mv := md.AddString("memviz", "", "write graph of the core manager to file after launch")
	volume := md.AddInt("volume", -1, "audio volume from 0 to 255")
	keys := md.AddBool("keys", false, "forward key presses to the core. ctrl-] toggles the menu and ctrl-c ends")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) > 2 {
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	sys, err := setup(opts, output)
	if err != nil {
		return err
	}
	defer sys.Close()

	mgr := core.NewManager(sys.env, sys.bus, sys.programmer, sys.engine, sys.cfg)
	mgr.SetSaveStateHook(core.FileSaveStates(sys.env))

	var h core.Handle

	switch len(md.RemainingArgs()) {
	case 0:
		h, err = mgr.LaunchMenu(ctx)
	case 1:
		h, err = mgr.Launch(ctx, core.Descriptor{Bitstream: md.GetArg(0)})
	case 2:
		if *slot < 0 || *slot > 255 {
			return fmt.Errorf("file slot %d out of range", *slot)
		}
		h, err = mgr.Launch(ctx, core.Descriptor{
			Bitstream: md.GetArg(0),
			Files:     map[uint8]string{uint8(*slot): md.GetArg(1)},
		})
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "running %s\n", h.Name())

	if *mv != "" {
		f, err := os.Create(*mv)
		if err != nil {
			return err
		}
		memviz.Map(f, mgr)
		if err := f.Close(); err != nil {
			return err
		}
	}

	if *volume >= 0 {
		if err := mgr.SetVolume(uint8(min(*volume, core.MaxVolume))); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var loop core.LoopOptions

	if *keys {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return errors.New("key input needs a terminal")
		}
		state, err := term.MakeRaw(fd)
		if err != nil {
			return err
		}
		defer term.Restore(fd, state)

		input := make(chan core.Input)
		loop.Input = input
		go func() {
			if err := userinput.Terminal(ctx, os.Stdin, input); err != nil {
				logger.Logf(logger.Allow, "onefpga", "terminal: %v", err)
			}
			cancel()
		}()
	}

	if mc, ok := h.(*core.MisterCore); ok && sys.shared && mc.Config().SaveStateSize > 0 {
		cs := mc.Config()
		mem, err := mmio.OpenMemory(mmio.DefaultDevice, int64(cs.SaveStateBase), int(cs.SaveStateSize)*core.SaveStateSlots)
		if err != nil {
			logger.Logf(logger.Allow, "onefpga", "save states: %v", err)
		} else {
			defer mem.Close()
			loop.SaveStates = mem
		}
	}

	err = mgr.Run(ctx, loop)

	return errors.Join(err, mgr.Shutdown())
}

func readEDID(ctx context.Context, md *modalflag.Modes, output io.Writer) error {
	md.NewMode()

	opts := addOptions(md)
	hexdump := md.AddBool("hex", false, "print the raw EDID")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	sys, err := setup(opts, output)
	if err != nil {
		return err
	}
	defer sys.Close()

	if sys.display == nil {
		return errors.New("EDID is not available on this bus")
	}

	b, err := sys.display.Read(ctx)
	if err != nil {
		return err
	}

	if *hexdump {
		fmt.Fprintln(output, b.Hexdump())
	}

	week, year := b.Manufactured()
	fmt.Fprintf(output, "display:      %s %s (%04x)\n", b.Manufacturer(), b.Name(), b.ProductCode())
	fmt.Fprintf(output, "serial:       %d\n", b.Serial())
	fmt.Fprintf(output, "manufactured: week %d of %d\n", week, year)
	fmt.Fprintf(output, "version:      %s\n", b.Version())
	fmt.Fprintf(output, "dvi:          %v\n", b.IsDVI())

	for _, st := range b.StandardTimings() {
		fmt.Fprintf(output, "standard:     %s\n", st)
	}

	dt, err := b.PreferredTiming()
	if err != nil {
		return err
	}
	fmt.Fprintf(output, "preferred:    %s\n", dt)

	t, err := video.FromEDID(b)
	if err != nil {
		fmt.Fprintf(output, "video mode:   %v\n", err)
		return nil
	}
	fmt.Fprintf(output, "video mode:   %s\n", t)

	return nil
}

func selectVideo(ctx context.Context, md *modalflag.Modes, output io.Writer) error {
	md.NewMode()

	opts := addOptions(md)
	name := md.AddString("core", "", "name of core for per-core configuration. the menu if empty")
	send := md.AddBool("send", false, "send the selected mode to the core")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	sys, err := setup(opts, output)
	if err != nil {
		return err
	}
	defer sys.Close()

	modes, cfg := sys.engine.Select(ctx, sys.cfg, *name)

	fmt.Fprintf(output, "default: %s\n", modes.Default)
	if modes.PAL != nil {
		fmt.Fprintf(output, "pal:     %s\n", *modes.PAL)
	}
	if modes.NTSC != nil {
		fmt.Fprintf(output, "ntsc:    %s\n", *modes.NTSC)
	}
	if modes.Negotiated {
		fmt.Fprintln(output, "mode negotiated with display")
	}

	if *send {
		return sys.engine.SendToCore(modes.Default, cfg.DirectVideoEnabled(), *name == "")
	}

	return nil
}

func showOSD(_ context.Context, md *modalflag.Modes, output io.Writer) error {
	md.NewMode()
	md.AdditionalHelp("OSD <line> [line...]")

	opts := addOptions(md)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) > osd.TextRows {
		return fmt.Errorf("too many lines for %s mode. maximum is %d", md, osd.TextRows)
	}

	sys, err := setup(opts, output)
	if err != nil {
		return err
	}
	defer sys.Close()

	buf := osd.NewBuffer()
	for i, s := range md.RemainingArgs() {
		buf.Print(i, strings.TrimSpace(s))
	}

	t := osd.NewTransport(sys.bus)
	if err := buf.Flush(t); err != nil {
		return err
	}

	return t.Enable()
}
