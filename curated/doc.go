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

// Package curated is a helper package for the plain Go language error type.
//
// Curated errors are created with Errorf(). The pattern argument doubles as
// the identity of the error, so packages export their error patterns as
// constants and callers test for them with Is() or Has():
//
//	const TransportError = "transport: %v"
//
//	err := curated.Errorf(fpga.TransportError, io.ErrUnexpectedEOF)
//	if curated.Is(err, fpga.TransportError) {
//		...
//	}
//
// Has() looks for the pattern anywhere in a chain of wrapped curated errors.
// Is() only looks at the outermost error.
//
// The Error() implementation removes duplicate adjacent parts of the message
// so that wrapping an error with the same prefix twice does not produce a
// stuttering message. eg. "launch: launch: no such file" becomes "launch: no
// such file".
//
// IsAny() tells whether an error is curated at all. A curated error is an
// expected error, one that the program knows how to describe. Anything else
// is unexpected.
package curated
