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

package video

import (
	"github.com/onefpga/onefpga/logger"
)

// frequencies of the PLL in MHz.
const (
	pllReference = 50.0
	pllMinVCO    = 400.0
	pllMaxVCO    = 1500.0
)

// the fractional part of the multiplier must not be within this distance of
// a whole number. the fractional PLL is unstable in that region.
const pllFractionalMargin = 0.05

// PLL is a set of parameters for the fractional PLL. The output frequency
// is (M+K) * 50 / C.
type PLL struct {
	// post divider
	C uint32

	// multiplier
	M uint32

	// fractional part of the multiplier. either zero or within the range
	// (0.05, 0.95)
	K float64
}

// VCO returns the VCO frequency of the PLL in MHz.
func (p PLL) VCO() float64 {
	return (p.K + float64(p.M)) * pllReference
}

// Frequency returns the output frequency of the PLL in MHz.
func (p PLL) Frequency() float64 {
	if p.C == 0 {
		return 0
	}
	return p.VCO() / float64(p.C)
}

// usable returns true if K is not too close to a whole number.
func (p PLL) usable() bool {
	return p.K > pllFractionalMargin && p.K < 1-pllFractionalMargin
}

// solve the PLL for the output frequency using a post divider of at least c.
// the divider is raised until the VCO reaches its minimum frequency.
func solve(f float64, c uint32) PLL {
	if c == 0 {
		c = 1
	}
	for f*float64(c) < pllMinVCO {
		c++
	}

	m := f * float64(c) / pllReference
	p := PLL{C: c, M: uint32(m)}
	p.K = m - float64(p.M)

	return p
}

// FindPLL searches for PLL parameters for the output frequency in MHz. The
// post divider is increased until the fractional multiplier is usable. If
// the VCO exceeds its maximum before that happens then the second return
// value is false and the smallest divider is used with the fraction clamped
// to a whole number.
//
// When the search succeeds the output frequency is exact to within floating
// point error. When the fraction is clamped the output frequency is within
// 0.05 * 50 / C MHz of the request.
func FindPLL(f float64) (PLL, bool) {
	if f <= 0 {
		return PLL{C: 1}, false
	}

	c := uint32(1)
	for {
		p := solve(f, c)
		if p.usable() {
			return p, true
		}

		if p.VCO() > pllMaxVCO {
			logger.Logf(logger.Allow, "video", "no exact PLL parameters for %.4fMHz", f)
			break
		}

		c = p.C + 1
	}

	p := solve(f, 1)
	if p.K >= 1-pllFractionalMargin {
		p.M++
	}
	p.K = 0

	return p, false
}

// pllDivider encodes a divider value for the PLL reconfiguration interface.
// the high and low counts are half the divider each. an odd divider has the
// extra count in the high half and the odd bit set.
func pllDivider(d uint32) uint32 {
	if d&1 != 0 {
		return 0x20000 | (d/2+1)<<8 | d/2
	}
	return (d/2)<<8 | d/2
}

// pllFraction encodes K as a 32 bit fraction. zero is encoded as one.
func pllFraction(k float64) uint32 {
	if k < pllFractionalMargin {
		return 1
	}
	return uint32(k * (1 << 32))
}

// SetPLL synthesises the PLL block for the pixel clock in MHz. The pixel
// clock of the timing is replaced by the frequency the PLL will generate.
// Calling SetPLL more than once with the same frequency gives the same
// result.
func (t *Timing) SetPLL(f float64) PLL {
	p, exact := FindPLL(f)

	t.PLL = [12]uint32{
		4, pllDivider(p.M),
		3, 0x10000,
		5, pllDivider(p.C),
		9, 2,
		8, 7,
		7, pllFraction(p.K),
	}
	t.PixelClock = p.Frequency()

	logger.Logf(logger.Deny, "video", "PLL for %.4fMHz: C=%d M=%d K=%.6f exact=%v -> %.4fMHz",
		f, p.C, p.M, p.K, exact, t.PixelClock)

	return p
}
