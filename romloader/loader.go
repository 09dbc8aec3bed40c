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

package romloader

import (
	"crypto/sha1"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/onefpga/onefpga/curated"
	"github.com/spf13/afero"
)

// LoadError is returned by Load() and Stat().
const LoadError = "romloader: %v"

// Loader specifies a file to be sent to a core.
type Loader struct {
	// filename of the file. it may point into an archive
	Filename string

	// expected SHA-1 of the data. empty string indicates that the hash is
	// unknown and need not be validated. after a load operation the value
	// will be the hash of the loaded data
	Hash string

	// copy of the loaded data
	Data []byte
}

// NewLoader is the preferred method of initialisation for the Loader type.
func NewLoader(filename string) Loader {
	return Loader{
		Filename: filename,
	}
}

// ShortName returns the name of the file without the path or extension.
func (l Loader) ShortName() string {
	n := path.Base(l.Filename)
	return strings.TrimSuffix(n, path.Ext(n))
}

// Extension returns the file extension in lower case and without the
// leading dot. The extension is of the file inside any archive.
func (l Loader) Extension() string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(l.Filename), "."))
}

// HasLoaded returns true if Load() has been successfully called.
func (l Loader) HasLoaded() bool {
	return len(l.Data) > 0
}

// Load the data. Calling Load() on a Loader that has already loaded does
// nothing.
func (l *Loader) Load(fs afero.Fs) error {
	if l.HasLoaded() {
		return nil
	}

	archive, inner := split(fs, l.Filename)

	var err error
	if inner == "" {
		l.Data, err = afero.ReadFile(fs, archive)
		if err != nil {
			return curated.Errorf(LoadError, err)
		}
	} else {
		l.Data, err = loadFromArchive(fs, archive, inner)
		if err != nil {
			return curated.Errorf(LoadError, err)
		}
	}

	hash := fmt.Sprintf("%x", sha1.Sum(l.Data))
	if l.Hash != "" && l.Hash != hash {
		l.Data = nil
		return curated.Errorf(LoadError, "unexpected hash value")
	}
	l.Hash = hash

	return nil
}

func loadFromArchive(fs afero.Fs, archive string, inner string) ([]byte, error) {
	ents, done, err := list(fs, archive)
	if err != nil {
		return nil, err
	}
	defer done()

	e, ok := find(ents, inner)
	if !ok {
		return nil, fmt.Errorf("%s: %s not found", archive, inner)
	}

	r, err := e.open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

// Stat returns the size of the file without loading it.
func Stat(fs afero.Fs, filename string) (int64, error) {
	archive, inner := split(fs, filename)

	if inner == "" {
		fi, err := fs.Stat(archive)
		if err != nil {
			return 0, curated.Errorf(LoadError, err)
		}
		if fi.IsDir() {
			return 0, curated.Errorf(LoadError, fmt.Sprintf("%s is a directory", filename))
		}
		return fi.Size(), nil
	}

	ents, done, err := list(fs, archive)
	if err != nil {
		return 0, curated.Errorf(LoadError, err)
	}
	defer done()

	e, ok := find(ents, inner)
	if !ok {
		return 0, curated.Errorf(LoadError, fmt.Sprintf("%s: %s not found", archive, inner))
	}
	return e.size, nil
}
