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

// Package userinput translates input from the user of the firmware into
// input for the running core.
//
// Terminal() reads the bytes typed at a terminal in raw mode. Printable
// characters and the common control keys are sent to the core as keyboard
// scancodes, numbered as USB HID usage codes. MenuKey toggles the on-screen
// display and QuitKey ends the input.
package userinput
