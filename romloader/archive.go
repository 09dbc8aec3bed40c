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
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/spf13/afero"
)

// Archives is the list of file extensions that are treated as archives.
var Archives = [...]string{".zip", ".7z"}

func isArchive(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, a := range Archives {
		if ext == a {
			return true
		}
	}
	return false
}

// split the filename into the path of an archive and the path of a file
// inside the archive. the inner path is empty if the filename does not point
// into an archive.
func split(fs afero.Fs, filename string) (string, string) {
	filename = path.Clean(filename)
	parts := strings.Split(filename, "/")

	p := ""
	for i, l := range parts {
		if i == 0 && l == "" {
			p = "/"
			continue
		}
		p = path.Join(p, l)

		if i == len(parts)-1 || !isArchive(l) {
			continue
		}

		fi, err := fs.Stat(p)
		if err == nil && !fi.IsDir() {
			return p, strings.Join(parts[i+1:], "/")
		}
	}

	return filename, ""
}

// an entry in an archive.
type entry struct {
	name string
	size int64
	open func() (io.ReadCloser, error)
}

// list the entries of the archive. the returned function must be called when
// the entries are no longer needed.
func list(fs afero.Fs, archive string) ([]entry, func(), error) {
	f, err := fs.Open(archive)
	if err != nil {
		return nil, nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	var ents []entry

	switch strings.ToLower(path.Ext(archive)) {
	case ".zip":
		zr, err := zip.NewReader(f, fi.Size())
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		for _, z := range zr.File {
			if z.FileInfo().IsDir() {
				continue
			}
			ents = append(ents, entry{
				name: path.Clean(z.Name),
				size: int64(z.UncompressedSize64),
				open: z.Open,
			})
		}

	case ".7z":
		sr, err := sevenzip.NewReader(f, fi.Size())
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		for _, z := range sr.File {
			if z.FileInfo().IsDir() {
				continue
			}
			ents = append(ents, entry{
				name: path.Clean(z.Name),
				size: z.FileInfo().Size(),
				open: z.Open,
			})
		}

	default:
		f.Close()
		return nil, nil, fmt.Errorf("%s: not an archive", archive)
	}

	return ents, func() { f.Close() }, nil
}

// find the entry in the archive. names are compared case insensitively.
func find(ents []entry, inner string) (entry, bool) {
	inner = path.Clean(inner)
	for _, e := range ents {
		if strings.EqualFold(e.name, inner) {
			return e, true
		}
	}
	return entry{}, false
}

// List returns the names of the files in an archive.
func List(fs afero.Fs, archive string) ([]string, error) {
	ents, done, err := list(fs, archive)
	if err != nil {
		return nil, fmt.Errorf("romloader: %w", err)
	}
	defer done()

	names := make([]string, 0, len(ents))
	for _, e := range ents {
		names = append(names, e.name)
	}
	return names, nil
}
