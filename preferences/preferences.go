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

// Package preferences holds the persistent settings of the firmware itself,
// as opposed to the settings of cores which live in MiSTer.ini.
package preferences

import (
	"github.com/onefpga/onefpga/curated"
	"github.com/onefpga/onefpga/paths"
	"github.com/onefpga/onefpga/prefs"
	"github.com/spf13/afero"
)

// Preferences defines and collates all the preference values used by the
// firmware.
type Preferences struct {
	dsk *prefs.Disk

	// transport used to talk to the FPGA. one of "mmio", "serial" or "loopback"
	Bus prefs.String

	// serial device and baud rate when Bus is "serial"
	SerialDevice prefs.String
	SerialBaud   prefs.Int

	// log every command sent over the bus
	BusTrace prefs.Bool

	// i2c bus of the HDMI transmitter
	I2CDevice prefs.String

	// number of attempts and the interval between them (in milliseconds)
	// when reading the EDID of the attached display
	EDIDAttempts prefs.Int
	EDIDInterval prefs.Int

	// number of attempts and interval (in milliseconds) when waiting for a
	// newly programmed core to identify itself
	IdentifyAttempts prefs.Int
	IdentifyInterval prefs.Int

	// size of each data chunk in a file transfer
	ChunkSize prefs.Int

	// sysfs directory of the FPGA manager
	FPGAManager prefs.String

	// number of parsed video modes to keep
	ModeCache prefs.Int
}

func (p *Preferences) String() string {
	return p.dsk.String()
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type.
func NewPreferences(fs afero.Fs, root paths.Root) (*Preferences, error) {
	p := &Preferences{}
	p.SetDefaults()

	var err error

	p.dsk, err = prefs.NewDisk(fs, root.Prefs())
	if err != nil {
		return nil, err
	}

	for k, v := range map[string]prefsValue{
		"fpga.bus":           &p.Bus,
		"fpga.serial.device": &p.SerialDevice,
		"fpga.serial.baud":   &p.SerialBaud,
		"fpga.trace":         &p.BusTrace,
		"fpga.manager":       &p.FPGAManager,
		"fpga.chunksize":     &p.ChunkSize,
		"hdmi.i2c":           &p.I2CDevice,
		"edid.attempts":      &p.EDIDAttempts,
		"edid.interval":      &p.EDIDInterval,
		"core.identify":      &p.IdentifyAttempts,
		"core.interval":      &p.IdentifyInterval,
		"video.modecache":    &p.ModeCache,
	} {
		if err := p.dsk.Add(k, v); err != nil {
			return nil, err
		}
	}

	err = p.dsk.Load()
	if err != nil {
		// ignore missing prefs file errors
		if !curated.Is(err, prefs.NoPrefsFile) {
			return nil, err
		}
	}

	return p, nil
}

// prefsValue is the interface required by prefs.Disk.Add().
type prefsValue interface {
	String() string
	Set(prefs.Value) error
	Get() prefs.Value
	Reset() error
}

// SetDefaults reverts all settings to the default values.
func (p *Preferences) SetDefaults() {
	p.Bus.Set("mmio")
	p.SerialDevice.Set("/dev/ttyUSB0")
	p.SerialBaud.Set(921600)
	p.BusTrace.Set(false)
	p.I2CDevice.Set("/dev/i2c-1")
	p.EDIDAttempts.Set(20)
	p.EDIDInterval.Set(100)
	p.IdentifyAttempts.Set(50)
	p.IdentifyInterval.Set(20)
	p.ChunkSize.Set(4096)
	p.FPGAManager.Set("/sys/class/fpga_manager/fpga0")
	p.ModeCache.Set(16)
}

// Load preferences from disk.
func (p *Preferences) Load() error {
	return p.dsk.Load()
}

// Save current preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}
