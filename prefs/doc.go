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

// Package prefs supports persistent preference values. Values are typed
// (Bool, String, Int, Float) and safe to read from any goroutine.
//
// A Disk instance associates preference values with keys and reads/writes
// them to a file. The file format is one "key :: value" entry per line:
//
//	fpga.bus :: mmio
//	edid.attempts :: 20
//
// Entries in the file that are not associated with a value by the program
// are preserved when the file is saved.
//
// Values can be overridden for the lifetime of the program from the command
// line with PushCommandLineStack(). A command line value is used in place of
// the value from the file the next time the key is added to a Disk.
package prefs
