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

// Handle refers to the core running on the FPGA. A new Handle is created
// for every launch and a Handle is never reused for another core.
//
// The set of Handle implementations is closed: MisterCore, MenuCore and
// OtherCore. What a core can do is decided by its type.
type Handle interface {
	// name reported by the core
	Name() string

	// path of the bitstream the core was programmed from
	Bitstream() string

	handle()
}

// MisterCore is a core that identifies itself with a configuration string.
// It has status bits and settings.
type MisterCore struct {
	bitstream string
	config    *ConfigString
	status    StatusBitMap
	files     map[uint8]string
}

// Name implements the Handle interface.
func (h *MisterCore) Name() string { return h.config.Name }

// Bitstream implements the Handle interface.
func (h *MisterCore) Bitstream() string { return h.bitstream }

func (*MisterCore) handle() {}

// Config returns the parsed configuration string of the core.
func (h *MisterCore) Config() *ConfigString { return h.config }

// Files returns the file loaded into each slot when the core was launched.
func (h *MisterCore) Files() map[uint8]string {
	f := make(map[uint8]string, len(h.files))
	for k, v := range h.files {
		f[k] = v
	}
	return f
}

// MenuCore is the core that shows the firmware menu. It has status bits but
// no settings.
type MenuCore struct {
	bitstream string
	name      string
	status    StatusBitMap
}

// Name implements the Handle interface.
func (h *MenuCore) Name() string { return h.name }

// Bitstream implements the Handle interface.
func (h *MenuCore) Bitstream() string { return h.bitstream }

func (*MenuCore) handle() {}

// OtherCore is a core that was launched without waiting for it to identify
// itself. Nothing is known about it beyond the bitstream.
type OtherCore struct {
	bitstream string
}

// Name implements the Handle interface. The name is the name of the
// bitstream.
func (h *OtherCore) Name() string { return shortName(h.bitstream) }

// Bitstream implements the Handle interface.
func (h *OtherCore) Bitstream() string { return h.bitstream }

func (*OtherCore) handle() {}

// IsMenu returns true if the handle refers to the menu core.
func IsMenu(h Handle) bool {
	_, ok := h.(*MenuCore)
	return ok
}

// the status register of the core, if it has one.
func statusOf(h Handle) (*StatusBitMap, bool) {
	switch h := h.(type) {
	case *MisterCore:
		return &h.status, true
	case *MenuCore:
		return &h.status, true
	}
	return nil, false
}

// the settings of the core, if it has any.
func settingsOf(h Handle) (*ConfigString, *StatusBitMap, bool) {
	if h, ok := h.(*MisterCore); ok {
		return h.config, &h.status, true
	}
	return nil, nil, false
}

// cores that accept keyboard and joystick input.
func acceptsInput(h Handle) bool {
	switch h.(type) {
	case *MisterCore, *MenuCore:
		return true
	}
	return false
}

// cores that produce save states.
func savesState(h Handle) bool {
	if h, ok := h.(*MisterCore); ok {
		return h.config.SaveStates
	}
	return false
}
