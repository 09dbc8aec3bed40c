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

// Package edid reads and parses the Extended Display Identification Data of
// the display attached to the HDMI port.
//
// The EDID is read over I2C. The HDMI transmitter (an ADV7513) is asked to
// fetch the EDID from the display and then the block is read from the
// transmitter's EDID memory one byte at a time. The display can take some
// time to answer so the read is retried a number of times.
//
// A Block is only ever used if the first eight bytes match the fixed EDID
// header. Any failure to read or parse the block is reported with the
// DisplayDataInvalid error, which callers treat as a reason to use a
// fallback video mode and never as a fatal error.
package edid
