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

// Package fpgamgr programs the FPGA through the Linux FPGA manager class
// driver. The bitstream is copied into the firmware search directory and its
// name is written to the firmware attribute of the manager.
package fpgamgr

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/onefpga/onefpga/logger"
	"github.com/spf13/afero"
)

// Default locations.
const (
	DefaultManager  = "/sys/class/fpga_manager/fpga0"
	DefaultFirmware = "/lib/firmware"
)

// name of the copy of the bitstream in the firmware directory.
const firmwareName = "onefpga.rbf"

// state reported by the manager once programming is complete.
const stateOperating = "operating"

// Manager is an implementation of the fpga.Programmer interface.
type Manager struct {
	fs       afero.Fs
	manager  string
	firmware string

	// how often and for how long to poll the state of the manager
	Poll    time.Duration
	Timeout time.Duration
}

// NewManager is the preferred method of initialisation for the Manager type.
// Empty strings select the default locations.
func NewManager(fs afero.Fs, manager string, firmware string) *Manager {
	if manager == "" {
		manager = DefaultManager
	}
	if firmware == "" {
		firmware = DefaultFirmware
	}
	return &Manager{
		fs:       fs,
		manager:  manager,
		firmware: firmware,
		Poll:     10 * time.Millisecond,
		Timeout:  5 * time.Second,
	}
}

// Program implements the fpga.Programmer interface.
func (m *Manager) Program(ctx context.Context, bitstream string) error {
	if err := m.copy(bitstream); err != nil {
		return fmt.Errorf("fpgamgr: %w", err)
	}

	err := afero.WriteFile(m.fs, filepath.Join(m.manager, "firmware"), []byte(firmwareName), 0o644)
	if err != nil {
		return fmt.Errorf("fpgamgr: %w", err)
	}

	logger.Logf(logger.Allow, "fpgamgr", "programming %s", bitstream)

	return m.waitOperating(ctx)
}

func (m *Manager) copy(bitstream string) error {
	src, err := m.fs.Open(bitstream)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := m.fs.MkdirAll(m.firmware, 0o755); err != nil {
		return err
	}

	dst, err := m.fs.Create(filepath.Join(m.firmware, firmwareName))
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}

	return dst.Close()
}

// State returns the state of the FPGA manager.
func (m *Manager) State() (string, error) {
	b, err := afero.ReadFile(m.fs, filepath.Join(m.manager, "state"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func (m *Manager) waitOperating(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()

	tick := time.NewTicker(m.Poll)
	defer tick.Stop()

	for {
		state, err := m.State()
		if err != nil {
			return fmt.Errorf("fpgamgr: %w", err)
		}
		if state == stateOperating {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("fpgamgr: state is %q: %w", state, ctx.Err())
		case <-tick.C:
		}
	}
}
