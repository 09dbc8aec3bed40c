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

// Package romloader loads the files that are sent to a core. ROMs, disk
// images and the like.
//
// A filename can point into a zip or 7z archive by treating the archive as
// if it was a directory:
//
//	l := romloader.NewLoader("/media/fat/games/NES/collection.zip/Excitebike.nes")
//	err := l.Load(fs)
//
// After loading, the Hash field is the SHA-1 of the data. If the Hash field
// was set before loading then the loaded data must match it.
package romloader
