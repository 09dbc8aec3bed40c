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
	"path/filepath"

	"github.com/onefpga/onefpga/environment"
	"github.com/spf13/afero"
)

// FileSaveStates returns a SaveStateHook that writes save states and
// screenshots to the resource directories of the environment. Each slot
// has its own file which is overwritten by the next save to that slot.
func FileSaveStates(env *environment.Environment) SaveStateHook {
	return func(h Handle, screenshot []byte, slot int, state []byte) error {
		name := h.Name()

		dir := env.Root.Savestates(name)
		if err := env.Fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
		fn := filepath.Join(dir, fmt.Sprintf("%s_%d.ss", shortName(h.Bitstream()), slot))
		if err := afero.WriteFile(env.Fs, fn, state, 0o644); err != nil {
			return fmt.Errorf("save state: %w", err)
		}

		if screenshot == nil {
			return nil
		}

		dir = env.Root.Screenshots(name)
		if err := env.Fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("screenshot: %w", err)
		}
		fn = filepath.Join(dir, fmt.Sprintf("%s_%d.png", shortName(h.Bitstream()), slot))
		if err := afero.WriteFile(env.Fs, fn, screenshot, 0o644); err != nil {
			return fmt.Errorf("screenshot: %w", err)
		}

		return nil
	}
}
