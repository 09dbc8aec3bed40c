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

// Package fpga implements the command bus used to talk to the FPGA.
//
// Every command is addressed by a feature domain and an opcode. The feature
// domain selects which part of the FPGA is listening (the core's file
// transfer engine, the on-screen display or the user IO block) and the opcode
// selects the operation. The mapping from command to address is fixed:
//
//	FileTx          FPGA  0x53
//	FileTxDat       FPGA  0x54
//	FileIndex       FPGA  0x55
//	FileInfo        FPGA  0x56
//	OsdWriteLine(n) OSD   0x20+n (n = 0..8)
//	OsdDisable      OSD   0x40
//	OsdEnable       OSD   0x41
//
// A transmission selects the feature, sends the opcode as a single 16-bit
// header transfer, streams the payload and then deselects the feature.
// Payloads are either byte oriented or word oriented. Mixing the two in a
// single command is a programming error and causes a panic.
//
// The bus is exclusively owned by the calling goroutine for the duration of
// a command. There is no internal locking.
//
// Transport implementations live in sub-packages: mmio for the memory mapped
// bridge on the target board, serial for a UART bridge on development
// hardware and loopback for tests.
package fpga
