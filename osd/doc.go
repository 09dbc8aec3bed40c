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

// Package osd drives the on-screen display of the scaler.
//
// The on-screen display is a monochrome bitmap of 256 by 72 pixels. It is
// sent to the FPGA one line at a time, a line being a strip of 8 pixel rows.
// Each byte of a line is one pixel column of the strip with the least
// significant bit at the top.
//
// The Transport type sends lines and toggles visibility. The Buffer type is
// a draw.Image that keeps track of which lines have changed so that Flush()
// only sends what is needed.
package osd
