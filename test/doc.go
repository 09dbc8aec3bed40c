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

// Package test contains helper functions shared by the test files of the
// other packages.
//
// The Expect*() functions record a failure and allow the test to continue.
// The Demand*() functions stop the test immediately. Demand*() should be used
// when later parts of a test depend on the value being correct, eg. the
// length of a slice before it is indexed.
//
// CompareWriter captures output written to an io.Writer for comparison with
// an expected string.
package test
