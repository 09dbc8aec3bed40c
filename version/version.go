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

// Package version reports the version of the firmware. The release number is
// set at link time with -ldflags "-X github.com/onefpga/onefpga/version.number=X".
// Builds without a release number are described by the VCS information
// recorded by the Go toolchain.
package version

import (
	"fmt"
	"runtime/debug"
)

// ApplicationName is used when referring to the firmware.
const ApplicationName = "OneFPGA"

// set by the linker for release builds.
var number string

// Info describes the build.
type Info struct {
	// release number, "unreleased" for a build from a VCS checkout or
	// "local" when there is no VCS information
	Version string

	// VCS revision. suffixed with "+dirty" if the checkout had uncommitted
	// changes
	Revision string

	Release bool
}

func (i Info) String() string {
	if i.Release {
		return fmt.Sprintf("%s %s", ApplicationName, i.Version)
	}
	return fmt.Sprintf("%s %s (%s)", ApplicationName, i.Version, i.Revision)
}

// Version returns information about the running firmware.
func Version() Info {
	info, _ := debug.ReadBuildInfo()
	return describe(number, info)
}

func describe(number string, info *debug.BuildInfo) Info {
	var vcs, modified bool
	var revision string

	if info != nil {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs":
				vcs = true
			case "vcs.revision":
				revision = s.Value
			case "vcs.modified":
				modified = s.Value == "true"
			}
		}
	}

	i := Info{Revision: "no revision information"}
	if revision != "" {
		i.Revision = revision
		if modified {
			i.Revision += "+dirty"
		}
	}

	switch {
	case number != "":
		i.Version = number
		i.Release = true
	case vcs:
		i.Version = "unreleased"
	default:
		i.Version = "local"
	}

	return i
}
