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
	"github.com/onefpga/onefpga/curated"
	"github.com/onefpga/onefpga/fpga"
	"github.com/onefpga/onefpga/notifications"
)

// ReadStatusBits returns a copy of the status bits of the running core. The
// core is asked for any changes it has made to the bits.
func (m *Manager) ReadStatusBits() (StatusBitMap, error) {
	if m.current == nil {
		return StatusBitMap{}, curated.Errorf(NoCore)
	}
	st, ok := statusOf(m.current)
	if !ok {
		return StatusBitMap{}, curated.Errorf(NotSupported, "status bits", m.current.Name())
	}

	cmd := &fpga.GetStatusBits{}
	if err := m.bus.Transmit(cmd); err != nil {
		return StatusBitMap{}, err
	}
	if cmd.Changed {
		*st = StatusBitMap(cmd.Bits)
	}

	return *st, nil
}

// SendStatusBits replaces the status bits of the running core.
func (m *Manager) SendStatusBits(bits StatusBitMap) error {
	if m.current == nil {
		return curated.Errorf(NoCore)
	}
	st, ok := statusOf(m.current)
	if !ok {
		return curated.Errorf(NotSupported, "status bits", m.current.Name())
	}

	if err := m.bus.Transmit(fpga.SetStatusBits(bits)); err != nil {
		return err
	}
	*st = bits

	return nil
}

// SetRange sets the status bits from lo up to but not including hi. The
// value is masked to the width of the range. An invalid range causes a panic.
func (m *Manager) SetRange(lo, hi int, value uint32) error {
	checkRange(lo, hi)
	if m.current == nil {
		return curated.Errorf(NoCore)
	}
	st, ok := statusOf(m.current)
	if !ok {
		return curated.Errorf(NotSupported, "status bits", m.current.Name())
	}

	bits := *st
	bits.SetRange(lo, hi, value)
	return m.SendStatusBits(bits)
}

// the setting with the ID along with the status bits it lives in.
func (m *Manager) setting(id SettingID) (Setting, *StatusBitMap, error) {
	if m.current == nil {
		return Setting{}, nil, curated.Errorf(NoCore)
	}
	cs, st, ok := settingsOf(m.current)
	if !ok {
		return Setting{}, nil, curated.Errorf(NotSupported, "settings", m.current.Name())
	}
	s, ok := cs.Setting(id)
	if !ok {
		return Setting{}, nil, curated.Errorf(NoSuchSetting, id)
	}
	return s, st, nil
}

// Trigger activates a setting. A trigger setting pulses its bit. An option
// moves on to its next value, wrapping around after the last one.
func (m *Manager) Trigger(id SettingID) error {
	s, st, err := m.setting(id)
	if err != nil {
		return err
	}

	bits := *st

	switch s.Kind {
	case KindTrigger:
		bits.SetRange(s.Bit, s.Bit+s.Width, 0xffffffff)
		if err := m.SendStatusBits(bits); err != nil {
			return err
		}
		bits.SetRange(s.Bit, s.Bit+s.Width, 0)
		if err := m.SendStatusBits(bits); err != nil {
			return err
		}
		if s.Close {
			return m.HideMenu()
		}
		return nil

	case KindOption:
		n := uint64(1) << s.Width
		if len(s.Choices) > 0 {
			n = uint64(len(s.Choices))
		}
		v := (uint64(bits.GetRange(s.Bit, s.Bit+s.Width)) + 1) % n
		bits.SetRange(s.Bit, s.Bit+s.Width, uint32(v))
		return m.SendStatusBits(bits)
	}

	return curated.Errorf(NotSupported, s.Kind, m.current.Name())
}

// BoolOption sets an option that is either on or off. Returns the new value
// of the option.
func (m *Manager) BoolOption(id SettingID, value bool) (bool, error) {
	s, st, err := m.setting(id)
	if err != nil {
		return false, err
	}
	if s.Kind != KindOption {
		return false, curated.Errorf(NotSupported, "bool option", s.Label)
	}

	var v uint32
	if value {
		v = 1
	}

	bits := *st
	bits.SetRange(s.Bit, s.Bit+s.Width, v)
	if err := m.SendStatusBits(bits); err != nil {
		return false, err
	}

	return st.GetRange(s.Bit, s.Bit+s.Width) != 0, nil
}

// IntOption sets the value of an option. The value is masked to the number
// of bits used by the option. Returns the new value of the option.
func (m *Manager) IntOption(id SettingID, value uint32) (uint32, error) {
	s, st, err := m.setting(id)
	if err != nil {
		return 0, err
	}
	if s.Kind != KindOption {
		return 0, curated.Errorf(NotSupported, "int option", s.Label)
	}

	bits := *st
	bits.SetRange(s.Bit, s.Bit+s.Width, value)
	if err := m.SendStatusBits(bits); err != nil {
		return 0, err
	}

	return st.GetRange(s.Bit, s.Bit+s.Width), nil
}

// Reset the running core by pulsing the first status bit.
func (m *Manager) Reset() error {
	if m.current == nil {
		return curated.Errorf(NoCore)
	}
	st, ok := statusOf(m.current)
	if !ok {
		return curated.Errorf(NotSupported, "reset", m.current.Name())
	}

	bits := *st
	bits.Set(0, true)
	if err := m.SendStatusBits(bits); err != nil {
		return err
	}
	bits.Set(0, false)
	return m.SendStatusBits(bits)
}

// SendKey forwards a keyboard scancode to the running core.
func (m *Manager) SendKey(scancode uint16) error {
	if m.current == nil {
		return curated.Errorf(NoCore)
	}
	if !acceptsInput(m.current) {
		return curated.Errorf(NotSupported, "keyboard", m.current.Name())
	}
	return m.bus.Transmit(fpga.Keyboard(scancode))
}

// Joystick forwards the state of a controller to the running core. The
// index must be less than fpga.MaxJoysticks.
func (m *Manager) Joystick(index int, buttons uint32) error {
	if m.current == nil {
		return curated.Errorf(NoCore)
	}
	if !acceptsInput(m.current) {
		return curated.Errorf(NotSupported, "joystick", m.current.Name())
	}
	return m.bus.Transmit(fpga.Joystick{Index: index, Buttons: buttons})
}

// SetSaveStateHook sets the function that persists save states. A nil hook
// discards save states.
func (m *Manager) SetSaveStateHook(hook SaveStateHook) {
	m.saveHook = hook
}

// Persist relays a save state produced by the running core to the save
// state hook. The data is not interpreted.
func (m *Manager) Persist(slot int, state []byte, screenshot []byte) error {
	if m.current == nil {
		return curated.Errorf(NoCore)
	}
	if !savesState(m.current) {
		return curated.Errorf(NotSupported, "save states", m.current.Name())
	}
	if m.saveHook == nil {
		return nil
	}

	if err := m.saveHook(m.current, screenshot, slot, state); err != nil {
		return err
	}
	m.notify(notifications.NotifySaveState)

	return nil
}
