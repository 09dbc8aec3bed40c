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
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// SettingID identifies a setting of a core. It is derived from the label of
// the setting so it does not change when the core moves the setting to
// different status bits.
type SettingID uint32

func (id SettingID) String() string {
	return fmt.Sprintf("%08x", uint32(id))
}

// NewSettingID returns the ID for a setting label.
func NewSettingID(label string) SettingID {
	h := fnv.New32a()
	h.Write([]byte(label))
	return SettingID(h.Sum32())
}

// SettingKind describes how a setting is used.
type SettingKind int

// List of valid SettingKind values.
const (
	// a value stored in status bits
	KindOption SettingKind = iota

	// a status bit that is pulsed
	KindTrigger
)

func (k SettingKind) String() string {
	switch k {
	case KindOption:
		return "option"
	case KindTrigger:
		return "trigger"
	}
	return "unknown"
}

// Setting is a single entry of a core's menu.
type Setting struct {
	ID    SettingID
	Kind  SettingKind
	Label string

	// the status bits used by the setting
	Bit   int
	Width int

	// the names of each value of an option
	Choices []string

	// the menu should be closed after a trigger
	Close bool
}

// IsBool returns true if the setting is an option that can only be on or
// off.
func (s Setting) IsBool() bool {
	return s.Kind == KindOption && s.Width == 1
}

// FileSlot is an entry of the core's menu that loads a file.
type FileSlot struct {
	Index uint8

	// lower case file extensions without the dot
	Extensions []string

	Label string

	// a mounted image rather than a file transferred to the core
	Mount bool
}

// Accepts returns true if the extension is one of the slot's extensions.
func (f FileSlot) Accepts(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, e := range f.Extensions {
		if e == ext || e == "*" {
			return true
		}
	}
	return false
}

// ConfigString is the parsed configuration string of a core.
type ConfigString struct {
	Name     string
	Version  string
	Settings []Setting
	Slots    []FileSlot

	// the core can produce save states. the states are written by the core
	// to memory, one region of SaveStateSize bytes per slot starting at
	// SaveStateBase
	SaveStates    bool
	SaveStateBase uint32
	SaveStateSize uint32
}

// Setting returns the setting with the ID.
func (c *ConfigString) Setting(id SettingID) (Setting, bool) {
	for _, s := range c.Settings {
		if s.ID == id {
			return s, true
		}
	}
	return Setting{}, false
}

// Slot returns the file slot with the index.
func (c *ConfigString) Slot(index uint8) (FileSlot, bool) {
	for _, f := range c.Slots {
		if f.Index == index {
			return f, true
		}
	}
	return FileSlot{}, false
}

// ParseConfigString parses the configuration string reported by a core.
// Fields are separated by semicolons and the first field is the name of the
// core. Fields that are not understood are ignored.
func ParseConfigString(s string) (*ConfigString, error) {
	fields := strings.Split(s, ";")

	c := &ConfigString{
		Name: strings.TrimSpace(fields[0]),
	}
	if c.Name == "" {
		return nil, fmt.Errorf("configuration string has no core name")
	}

	for _, f := range fields[1:] {
		f = stripPrefixes(strings.TrimSpace(f))
		if f == "" || f == "-" {
			continue
		}

		var err error

		switch f[0] {
		case 'V':
			_, c.Version, _ = strings.Cut(f, ",")
		case 'O', 'o':
			err = c.parseSetting(f, KindOption)
		case 'T', 't', 'R', 'r':
			err = c.parseSetting(f, KindTrigger)
		case 'F', 'S':
			if strings.HasPrefix(f, "SS") {
				err = c.parseSaveStates(f[2:])
				break
			}
			err = c.parseSlot(f)
		}

		if err != nil {
			return nil, fmt.Errorf("configuration string field %q: %w", f, err)
		}
	}

	return c, nil
}

// remove the page, hide and disable prefixes from a field.
func stripPrefixes(f string) string {
	for len(f) > 2 && f != "DIP" {
		switch {
		case f[0] == 'P' && isDigit(f[1]) && f[2] != ',':
			f = f[2:]
		case strings.IndexByte("HDhd", f[0]) >= 0 && isIndex(f[1]):
			f = f[2:]
		default:
			return f
		}
	}
	return f
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// a bit or slot index is a single base 32 digit.
func isIndex(c byte) bool {
	return isDigit(c) || c >= 'A' && c <= 'V'
}

func index(c byte) int {
	if isDigit(c) {
		return int(c - '0')
	}
	return int(c-'A') + 10
}

// parse the bit specification that follows the letter of an option or
// trigger. returns the lowest bit, the width and the remainder of the field.
func parseBits(f string) (int, int, string, error) {
	offset := 0
	if f[0] >= 'a' && f[0] <= 'z' {
		offset = 32
	}
	f = f[1:]

	spec, rest, _ := strings.Cut(f, ",")

	if strings.HasPrefix(spec, "[") && strings.HasSuffix(spec, "]") {
		spec = spec[1 : len(spec)-1]
		hi, lo, isRange := strings.Cut(spec, ":")
		if !isRange {
			lo = hi
		}
		h, err := strconv.Atoi(hi)
		if err != nil {
			return 0, 0, "", err
		}
		l, err := strconv.Atoi(lo)
		if err != nil {
			return 0, 0, "", err
		}
		if l > h || h >= StatusBits || h-l >= 32 {
			return 0, 0, "", fmt.Errorf("bits [%d:%d] out of range", h, l)
		}
		return l, h - l + 1, rest, nil
	}

	if len(spec) < 1 || len(spec) > 2 || !isIndex(spec[0]) || !isIndex(spec[len(spec)-1]) {
		return 0, 0, "", fmt.Errorf("bad bit specification %q", spec)
	}

	l := index(spec[0]) + offset
	h := index(spec[len(spec)-1]) + offset
	if l > h {
		return 0, 0, "", fmt.Errorf("bad bit specification %q", spec)
	}

	return l, h - l + 1, rest, nil
}

func (c *ConfigString) parseSetting(f string, kind SettingKind) error {
	closeMenu := f[0] == 'R' || f[0] == 'r'

	bit, width, rest, err := parseBits(f)
	if err != nil {
		return err
	}

	parts := strings.Split(rest, ",")
	label := strings.TrimSpace(parts[0])
	if label == "" {
		return fmt.Errorf("no label")
	}

	s := Setting{
		ID:    NewSettingID(label),
		Kind:  kind,
		Label: label,
		Bit:   bit,
		Width: width,
		Close: closeMenu,
	}

	if kind == KindOption {
		for _, ch := range parts[1:] {
			ch = strings.TrimSpace(ch)
			// aspect ratio placeholders and the like are not choices
			if strings.HasPrefix(ch, "[") {
				continue
			}
			s.Choices = append(s.Choices, ch)
		}
	}

	c.Settings = append(c.Settings, s)
	return nil
}

// the memory used for save states, given as base:size in hex.
func (c *ConfigString) parseSaveStates(f string) error {
	c.SaveStates = true

	base, size, ok := strings.Cut(f, ":")
	if !ok {
		return nil
	}

	b, err := strconv.ParseUint(base, 16, 32)
	if err != nil {
		return fmt.Errorf("bad save state base %q", base)
	}
	n, err := strconv.ParseUint(size, 16, 32)
	if err != nil {
		return fmt.Errorf("bad save state size %q", size)
	}

	c.SaveStateBase = uint32(b)
	c.SaveStateSize = uint32(n)

	return nil
}

func (c *ConfigString) parseSlot(f string) error {
	slot := FileSlot{Mount: f[0] == 'S'}
	f = f[1:]

	spec, rest, _ := strings.Cut(f, ",")

	// the S and C flags of file loaders
	spec = strings.TrimLeft(spec, "SC")

	switch {
	case spec == "":
		slot.Index = uint8(len(c.Slots) + 1)
		if slot.Mount {
			slot.Index = 0
		}
	case isIndex(spec[0]):
		slot.Index = uint8(index(spec[0]))
	default:
		return fmt.Errorf("bad slot index %q", spec)
	}

	exts, label, _ := strings.Cut(rest, ",")
	label, _, _ = strings.Cut(label, ",")
	slot.Label = strings.TrimSpace(label)

	// extensions are packed as three characters each
	for len(exts) > 0 {
		n := min(3, len(exts))
		e := strings.ToLower(strings.TrimSpace(exts[:n]))
		if e != "" {
			slot.Extensions = append(slot.Extensions, e)
		}
		exts = exts[n:]
	}

	c.Slots = append(c.Slots, slot)
	return nil
}
