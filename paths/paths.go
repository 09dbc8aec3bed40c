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

package paths

import (
	"path/filepath"
	"strings"
)

// DefaultRoot is the mount point of the SD card on the target platform.
const DefaultRoot = "/media/fat"

// Root is the base directory for all firmware resources.
type Root struct {
	Dir string
}

// NewRoot is the preferred method of initialisation for the Root type. An
// empty string results in DefaultRoot.
func NewRoot(dir string) Root {
	if dir == "" {
		dir = DefaultRoot
	}
	return Root{Dir: filepath.Clean(dir)}
}

func (r Root) String() string {
	return r.Dir
}

// ResourcePath joins the resource to the root directory.
func (r Root) ResourcePath(resource ...string) string {
	p := make([]string, 0, len(resource)+1)
	p = append(p, r.Dir)
	p = append(p, resource...)
	return filepath.Join(p...)
}

// Resolve returns an absolute path for p. Relative paths are taken to be
// relative to the root.
func (r Root) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return r.ResourcePath(p)
}

// MisterIni is the path of the main configuration file.
func (r Root) MisterIni() string {
	return r.ResourcePath("MiSTer.ini")
}

// ConfigDir is where per-core configuration and the firmware preferences are
// kept.
func (r Root) ConfigDir() string {
	return r.ResourcePath("config")
}

// Prefs is the path of the firmware preferences file.
func (r Root) Prefs() string {
	return r.ResourcePath("config", "onefpga.prefs")
}

// MenuCore is the path of the menu core bitstream.
func (r Root) MenuCore() string {
	return r.ResourcePath("menu.rbf")
}

// Savestates is the directory for the save states of the named core.
func (r Root) Savestates(core string) string {
	return r.ResourcePath("savestates", sanitise(core))
}

// Screenshots is the directory for the screenshots of the named core.
func (r Root) Screenshots(core string) string {
	return r.ResourcePath("screenshots", sanitise(core))
}

// core names come from the FPGA and could contain anything.
func sanitise(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "_"
	}
	return name
}
