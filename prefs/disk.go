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

package prefs

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/onefpga/onefpga/curated"
	"github.com/spf13/afero"
)

// Sentinal errors.
const (
	NoPrefsFile    = "prefs: no prefs file (%s)"
	PrefsFileError = "prefs: %v"
)

// WarningBoilerPlate is written to the head of every prefs file.
const WarningBoilerPlate = "*** do not edit this file by hand while the firmware is running ***"

// separates key and value on each line of the prefs file.
const keySep = " :: "

// Disk represents preference values as stored on disk.
type Disk struct {
	fs      afero.Fs
	path    string
	entries map[string]pref

	// keys set from the command line stack are not overwritten by Load()
	pinned map[string]bool
}

// NewDisk is the preferred method of initialisation for the Disk type.
func NewDisk(fs afero.Fs, path string) (*Disk, error) {
	if fs == nil {
		return nil, curated.Errorf(PrefsFileError, "no filesystem")
	}
	return &Disk{
		fs:      fs,
		path:    path,
		entries: make(map[string]pref),
		pinned:  make(map[string]bool),
	}, nil
}

func (dsk *Disk) String() string {
	s := strings.Builder{}
	for _, k := range dsk.keys() {
		s.WriteString(fmt.Sprintf("%s%s%s\n", k, keySep, dsk.entries[k]))
	}
	return s.String()
}

func (dsk *Disk) keys() []string {
	keys := make([]string, 0, len(dsk.entries))
	for k := range dsk.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Add preference value to list of values to store/load from disk. If the
// command line stack holds a value for the key then that value is set
// immediately and takes precedence over the value in the file.
func (dsk *Disk) Add(key string, p pref) error {
	if strings.Contains(key, keySep) {
		return curated.Errorf(PrefsFileError, fmt.Sprintf("illegal key %q", key))
	}
	dsk.entries[key] = p

	if ok, v := GetCommandLinePref(key); ok {
		if err := p.Set(v); err != nil {
			return curated.Errorf(PrefsFileError, err)
		}
		dsk.pinned[key] = true
	}

	return nil
}

// Reset all preference values to their default.
func (dsk *Disk) Reset() error {
	for _, p := range dsk.entries {
		if err := p.Reset(); err != nil {
			return curated.Errorf(PrefsFileError, err)
		}
	}
	return nil
}

// read the prefs file into a map of raw strings.
func (dsk *Disk) read() (map[string]string, error) {
	f, err := dsk.fs.Open(dsk.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, curated.Errorf(NoPrefsFile, dsk.path)
		}
		return nil, curated.Errorf(PrefsFileError, err)
	}
	defer f.Close()

	raw := make(map[string]string)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == WarningBoilerPlate {
			continue
		}
		k, v, ok := strings.Cut(line, keySep)
		if !ok {
			continue
		}
		raw[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	if err := scanner.Err(); err != nil {
		return nil, curated.Errorf(PrefsFileError, err)
	}

	return raw, nil
}

// Load preference values from disk. Keys in the file that have no
// corresponding value in the Disk instance are ignored. Returns the NoPrefsFile
// error if the file does not exist; callers will usually treat that as a
// benign condition.
func (dsk *Disk) Load() error {
	raw, err := dsk.read()
	if err != nil {
		return err
	}

	for k, v := range raw {
		if dsk.pinned[k] {
			continue
		}
		if p, ok := dsk.entries[k]; ok {
			if err := p.Set(v); err != nil {
				return curated.Errorf(PrefsFileError, err)
			}
		}
	}

	return nil
}

// Save current preference values to disk. Values in the existing file for
// keys not handled by this Disk instance are preserved.
func (dsk *Disk) Save() error {
	raw, err := dsk.read()
	if err != nil {
		if !curated.Is(err, NoPrefsFile) {
			return err
		}
		raw = make(map[string]string)
	}

	for k, p := range dsk.entries {
		raw[k] = p.String()
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if err := dsk.fs.MkdirAll(filepath.Dir(dsk.path), 0o755); err != nil {
		return curated.Errorf(PrefsFileError, err)
	}

	f, err := dsk.fs.OpenFile(dsk.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return curated.Errorf(PrefsFileError, err)
	}

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, WarningBoilerPlate)
	for _, k := range keys {
		fmt.Fprintf(w, "%s%s%s\n", k, keySep, raw[k])
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return curated.Errorf(PrefsFileError, err)
	}

	if err := f.Close(); err != nil {
		return curated.Errorf(PrefsFileError, err)
	}

	return nil
}
