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
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/onefpga/onefpga/curated"
	"github.com/onefpga/onefpga/fpga"
	"github.com/onefpga/onefpga/logger"
	"github.com/onefpga/onefpga/notifications"
)

// Input is an event forwarded to the running core by Run().
type Input interface {
	forward(m *Manager) error
}

// KeyInput is a keyboard scancode.
type KeyInput uint16

func (k KeyInput) forward(m *Manager) error {
	return m.SendKey(uint16(k))
}

// JoystickInput is the state of the buttons of a controller.
type JoystickInput struct {
	Index   int
	Buttons uint32
}

func (j JoystickInput) forward(m *Manager) error {
	return m.Joystick(j.Index, j.Buttons)
}

// MenuInput shows the on-screen display if it is hidden and hides it if it
// is visible.
type MenuInput struct{}

func (MenuInput) forward(m *Manager) error {
	if m.MenuVisible() {
		return m.HideMenu()
	}
	return m.ShowMenu()
}

// DefaultLoopInterval is how often Run() checks the core when no interval is
// given.
const DefaultLoopInterval = 100 * time.Millisecond

// LoopOptions configure Run().
type LoopOptions struct {
	// how often the core is checked for new status bits and save states
	Interval time.Duration

	// input for the core. can be nil
	Input <-chan Input

	// the memory the core writes its save states to, addressed from the
	// save state base of the core. can be nil
	SaveStates io.ReaderAt
}

// Run forwards input to the running core and checks the core for changes
// until the context is done. A change of the status bits is notified and a
// new save state is passed to Persist().
//
// Errors from the bus end the loop. Other errors are logged.
func (m *Manager) Run(ctx context.Context, opts LoopOptions) error {
	if m.current == nil {
		return curated.Errorf(NoCore)
	}

	var w *saveStateWatcher
	if mc, ok := m.current.(*MisterCore); ok && opts.SaveStates != nil && mc.config.SaveStateSize > 0 {
		w = &saveStateWatcher{mem: opts.SaveStates, size: mc.config.SaveStateSize}
		if err := w.prime(); err != nil {
			return err
		}
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultLoopInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	input := opts.Input

	for {
		select {
		case <-ctx.Done():
			return nil

		case in, ok := <-input:
			if !ok {
				input = nil
				continue
			}
			if err := m.expected(in.forward(m)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := m.expected(m.poll(w)); err != nil {
				return err
			}
		}
	}
}

// log errors that the loop can continue after. the remaining errors are
// returned.
func (m *Manager) expected(err error) error {
	if err == nil {
		return nil
	}
	if curated.Has(err, fpga.TransportError) || !curated.IsAny(err) {
		return err
	}
	logger.Logf(m.env, "core", "%v", err)
	return nil
}

// check the running core for new status bits and save states.
func (m *Manager) poll(w *saveStateWatcher) error {
	if st, ok := statusOf(m.current); ok {
		before := *st
		bits, err := m.ReadStatusBits()
		if err != nil {
			return err
		}
		if bits != before {
			m.notify(notifications.NotifyCoreStatus)
		}
	}

	if w == nil {
		return nil
	}

	return w.poll(func(slot int, state []byte) error {
		if err := m.Persist(slot, state, nil); err != nil {
			return curated.Errorf(SaveStateError, slot, err)
		}
		return nil
	})
}

// SaveStateSlots is the number of save state slots of a core.
const SaveStateSlots = 4

// the core marks a slot it has never written to with this count.
const saveStateUnused = 0xffffffff

// save state header: a 32-bit count of the times the slot has been written
// followed by the 32-bit length of the data in words. both little-endian.
const saveStateHeader = 8

// saveStateWatcher finds new save states in the memory of the core. A save
// state is new when the count in the header of its slot changes.
type saveStateWatcher struct {
	mem   io.ReaderAt
	size  uint32
	count [SaveStateSlots]uint32
}

func (w *saveStateWatcher) header(slot int) (uint32, uint32, error) {
	var h [saveStateHeader]byte
	if _, err := w.mem.ReadAt(h[:], int64(slot)*int64(w.size)); err != nil {
		return 0, 0, fmt.Errorf("save state %d: %w", slot, err)
	}
	return binary.LittleEndian.Uint32(h[:4]), binary.LittleEndian.Uint32(h[4:]), nil
}

// remember the current counts so that save states made before the loop
// started are not persisted again.
func (w *saveStateWatcher) prime() error {
	for slot := range w.count {
		c, _, err := w.header(slot)
		if err != nil {
			return err
		}
		w.count[slot] = c
	}
	return nil
}

// call persist for every slot that has changed. the state includes the
// header.
func (w *saveStateWatcher) poll(persist func(slot int, state []byte) error) error {
	for slot := range w.count {
		c, words, err := w.header(slot)
		if err != nil {
			return err
		}
		if c == w.count[slot] || c == saveStateUnused {
			continue
		}
		w.count[slot] = c

		n := (uint64(words) + 2) * 4
		if n > uint64(w.size) {
			return curated.Errorf(SaveStateError, slot, fmt.Errorf("%d bytes is larger than the slot", n))
		}

		state := make([]byte, n)
		if _, err := w.mem.ReadAt(state, int64(slot)*int64(w.size)); err != nil {
			return fmt.Errorf("save state %d: %w", slot, err)
		}

		if err := persist(slot, state); err != nil {
			return err
		}
	}
	return nil
}
