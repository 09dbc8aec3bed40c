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

package preferences_test

import (
	"testing"

	"github.com/onefpga/onefpga/paths"
	"github.com/onefpga/onefpga/preferences"
	"github.com/onefpga/onefpga/test"
	"github.com/spf13/afero"
)

func TestSaveAndReload(t *testing.T) {
	fs := afero.NewMemMapFs()
	root := paths.NewRoot("/media/fat")

	p, err := preferences.NewPreferences(fs, root)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p.Bus.String(), "mmio")

	test.DemandSuccess(t, p.Bus.Set("serial"))
	test.DemandSuccess(t, p.SerialBaud.Set("115200"))
	test.DemandSuccess(t, p.Save())

	q, err := preferences.NewPreferences(fs, root)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, q.Bus.String(), "serial")
	test.ExpectEquality(t, q.SerialBaud.Get().(int), 115200)
}

func TestDefaults(t *testing.T) {
	p, err := preferences.NewPreferences(afero.NewMemMapFs(), paths.NewRoot("/media/fat"))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p.BusTrace.Get().(bool), false)
	test.ExpectEquality(t, p.EDIDAttempts.Get().(int), 20)

	test.DemandSuccess(t, p.BusTrace.Set("true"))
	test.ExpectEquality(t, p.BusTrace.Get().(bool), true)

	p.SetDefaults()
	test.ExpectEquality(t, p.BusTrace.Get().(bool), false)
}
