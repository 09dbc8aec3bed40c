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

// Package paths prepares paths to firmware resources. Every path is derived
// from a Root value that is passed explicitly to the components that need
// it. There is no process wide root. A test creates its own Root, usually
// pointing into an in-memory filesystem.
//
// The layout below the root follows the MiSTer SD card convention:
//
//	/media/fat/MiSTer.ini
//	/media/fat/menu.rbf
//	/media/fat/config/
//	/media/fat/savestates/<core>/
//	/media/fat/screenshots/<core>/
package paths
