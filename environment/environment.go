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

// Package environment is the context passed to every firmware component
// that needs access to the filesystem, the resource root, preferences or the
// notification channel. A component never keeps a reference to the
// application itself, only to the Environment it was given.
package environment

import (
	"github.com/onefpga/onefpga/notifications"
	"github.com/onefpga/onefpga/paths"
	"github.com/onefpga/onefpga/preferences"
	"github.com/spf13/afero"
)

// Label is used to name the environment.
type Label string

// MainLabel is the label of the environment driving real hardware.
const MainLabel Label = ""

// Environment provides context to the firmware components.
type Environment struct {
	Label Label

	// all file access goes through this filesystem
	Fs afero.Fs

	// root of the resource directory tree
	Root paths.Root

	// firmware preferences
	Prefs *preferences.Preferences

	// events of interest to the application
	Notify notifications.Notify
}

// NewEnvironment is the preferred method of initialisation for the
// Environment type.
//
// The prefs argument can be nil, in which case preferences are loaded from
// the resource root. Notify can also be nil.
func NewEnvironment(label Label, fs afero.Fs, root paths.Root, prefs *preferences.Preferences, notify notifications.Notify) (*Environment, error) {
	env := &Environment{
		Label:  label,
		Fs:     fs,
		Root:   root,
		Notify: notify,
	}

	if env.Fs == nil {
		env.Fs = afero.NewOsFs()
	}

	if env.Notify == nil {
		env.Notify = notifications.Discard{}
	}

	if prefs == nil {
		var err error
		prefs, err = preferences.NewPreferences(env.Fs, root)
		if err != nil {
			return nil, err
		}
	}
	env.Prefs = prefs

	return env, nil
}

// IsMain returns true if the environment is driving real hardware.
func (env *Environment) IsMain() bool {
	return env.Label == MainLabel
}

// AllowLogging implements the logger.Permission interface. Only the main
// environment writes to the log.
func (env *Environment) AllowLogging() bool {
	return env.IsMain()
}
