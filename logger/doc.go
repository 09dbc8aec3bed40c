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

// Package logger is the central log for the firmware. Entries are made up of
// a tag naming the component and a detail. Consecutive identical entries are
// collapsed into a single entry with a repeat count, which keeps polling
// loops such as the EDID reader from swamping the log.
//
// The log is bounded. The oldest entries are discarded once the limit is
// reached.
package logger
