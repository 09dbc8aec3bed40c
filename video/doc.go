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

// Package video decides the video mode of the FPGA scaler and sends it to
// the core.
//
// A video mode is described by a Timing. A Timing comes from one of three
// places: the table of presets, a video mode string in the configuration
// file, or the preferred timing of the attached display as read from its
// EDID.
//
// The Engine type chooses between these sources. When direct video is
// enabled one of the four TV presets is used and the display is never
// queried. Otherwise, if no video mode is configured, the EDID is read and
// the preferred timing is used if the scaler can generate it. Failing that
// the configured video mode is used, or 640x480@60 if there is none. A
// display that can not be negotiated with is never fatal.
//
// Every Timing that leaves the package has had its PLL parameters
// synthesised. The PLL of the scaler generates the pixel clock from a 50MHz
// reference, and SetPLL() finds divider values that produce a pixel clock as
// close as possible to the one requested. The pixel clock of the Timing is
// updated to the clock the PLL will actually generate.
package video
