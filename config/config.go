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
	"math"
	"os"
	"strings"

	"github.com/onefpga/onefpga/curated"
	"github.com/onefpga/onefpga/logger"
	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

// ParseError is returned when the configuration file can not be read or is
// not an INI file.
const ParseError = "config: %v"

// name of the base section. compared case insensitively.
const baseSection = "mister"

// prefix of the resolution override sections.
const videoSelector = "video="

// Resolution is the video output resolution of a running core.
type Resolution struct {
	Width  int
	Height int

	// refresh rate in Hz
	Refresh float64
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d@%.0f", r.Width, r.Height, r.Refresh)
}

// a resolution override section. a zero refresh matches any refresh rate.
type resolutionOverride struct {
	Resolution
	mister Mister
}

func (o resolutionOverride) matches(r Resolution) bool {
	if o.Width != r.Width || o.Height != r.Height {
		return false
	}
	return o.Refresh == 0 || math.Round(o.Refresh) == math.Round(r.Refresh)
}

// Config is the contents of a MiSTer.ini file.
type Config struct {
	// the base configuration
	Base Mister

	// overrides in the order they appear in the file
	resolutions []resolutionOverride

	// core overrides keyed by lowercase core name
	cores map[string]*Mister
}

// NewConfig returns an empty configuration.
func NewConfig() *Config {
	return &Config{
		cores: make(map[string]*Mister),
	}
}

// Load reads the configuration file from the filesystem. A missing file is
// not an error and results in an empty configuration.
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Logf(logger.Allow, "config", "%s not found, using defaults", path)
			return NewConfig(), nil
		}
		return nil, curated.Errorf(ParseError, err)
	}
	return Parse(data)
}

// Parse the contents of a configuration file. Values that can not be parsed
// are logged and ignored so that a single typo does not prevent the firmware
// from starting.
func Parse(data []byte) (*Config, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		Insensitive:              true,
		AllowNonUniqueSections:   true,
		AllowShadows:             true,
		SkipUnrecognizableLines:  true,
		SpaceBeforeInlineComment: true,
	}, data)
	if err != nil {
		return nil, curated.Errorf(ParseError, err)
	}

	cfg := NewConfig()

	for _, s := range f.Sections() {
		name := strings.TrimSpace(s.Name())

		if name == ini.DefaultSection || name == strings.ToLower(ini.DefaultSection) || name == baseSection {
			apply(&cfg.Base, s)
			continue
		}

		// a section can apply to more than one core or resolution
		for _, sel := range strings.Split(name, "+") {
			sel = strings.TrimSpace(sel)
			if sel == "" {
				continue
			}

			if strings.HasPrefix(sel, videoSelector) {
				r, err := ParseResolution(strings.TrimPrefix(sel, videoSelector))
				if err != nil {
					logger.Logf(logger.Allow, "config", "section [%s]: %v", sel, err)
					continue
				}
				o := resolutionOverride{Resolution: r}
				apply(&o.mister, s)
				cfg.resolutions = append(cfg.resolutions, o)
				continue
			}

			m, ok := cfg.cores[sel]
			if !ok {
				m = &Mister{}
				cfg.cores[sel] = m
			}
			apply(m, s)
		}
	}

	return cfg, nil
}

// apply every key in the section to the record. the last value of a
// repeated key is used.
func apply(m *Mister, s *ini.Section) {
	for _, k := range s.Keys() {
		values := k.ValueWithShadows()
		if len(values) == 0 {
			continue
		}
		value := strings.TrimSpace(values[len(values)-1])

		ok, err := m.set(k.Name(), value)
		if err != nil {
			logger.Logf(logger.Allow, "config", "[%s] %s: %v", s.Name(), k.Name(), err)
			continue
		}
		if !ok {
			logger.Logf(logger.Deny, "config", "[%s] %s: unsupported key", s.Name(), k.Name())
		}
	}
}

// ParseResolution parses a resolution of the form WxH or WxH@R.
func ParseResolution(s string) (Resolution, error) {
	var r Resolution

	res, refresh, hasRefresh := strings.Cut(s, "@")

	if _, err := fmt.Sscanf(res, "%dx%d", &r.Width, &r.Height); err != nil {
		return Resolution{}, fmt.Errorf("not a resolution: %q", s)
	}
	if r.Width <= 0 || r.Height <= 0 {
		return Resolution{}, fmt.Errorf("not a resolution: %q", s)
	}

	if hasRefresh {
		if _, err := fmt.Sscanf(refresh, "%g", &r.Refresh); err != nil || r.Refresh <= 0 {
			return Resolution{}, fmt.Errorf("not a refresh rate: %q", refresh)
		}
	}

	return r, nil
}

// Cores returns the number of core override sections.
func (cfg *Config) Cores() int {
	return len(cfg.cores)
}

// Merged returns the configuration for the named core running at the
// resolution. The resolution may be nil if it is not yet known. The base
// configuration is overridden by every matching resolution section and then
// by the core section.
func (cfg *Config) Merged(core string, res *Resolution) Mister {
	var m Mister
	m.merge(cfg.Base)

	if res != nil {
		for _, o := range cfg.resolutions {
			if o.matches(*res) {
				m.merge(o.mister)
			}
		}
	}

	if core != "" {
		if o, ok := cfg.cores[strings.ToLower(core)]; ok {
			m.merge(*o)
		}
	}

	return m
}
