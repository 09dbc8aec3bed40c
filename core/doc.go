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

// Package core manages the lifecycle of the cores loaded onto the FPGA.
//
// The Manager type is a state machine. It starts in StateIdle, moves to
// StateMenu when the menu core is loaded and to StateRunning when any other
// core is launched. StateShuttingDown is terminal.
//
// A launch either succeeds completely or leaves the Manager exactly as it
// was. If anything fails after the FPGA has been reprogrammed then the
// previous core is programmed again.
//
// The running core is represented by a Handle. A Handle is one of
// MisterCore, MenuCore or OtherCore and what can be done with the core
// depends on which one it is. Only a MisterCore has settings. The menu core
// also has status bits. Settings are described by the configuration string the core reports
// after it has been programmed, see ParseConfigString().
//
// The Manager is not safe for concurrent use. It is expected that a single
// goroutine drives the firmware.
package core
