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

package fpgamgr_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/onefpga/onefpga/fpga/fpgamgr"
	"github.com/onefpga/onefpga/test"
	"github.com/spf13/afero"
)

func TestProgram(t *testing.T) {
	fs := afero.NewMemMapFs()
	test.DemandSuccess(t, afero.WriteFile(fs, "/media/fat/_Console/NES.rbf", []byte("bitstream"), 0o644))
	test.DemandSuccess(t, afero.WriteFile(fs, filepath.Join(fpgamgr.DefaultManager, "state"), []byte("operating\n"), 0o644))

	m := fpgamgr.NewManager(fs, "", "")
	test.DemandSuccess(t, m.Program(context.Background(), "/media/fat/_Console/NES.rbf"))

	b, err := afero.ReadFile(fs, filepath.Join(fpgamgr.DefaultFirmware, "onefpga.rbf"))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, string(b), "bitstream")

	b, err = afero.ReadFile(fs, filepath.Join(fpgamgr.DefaultManager, "firmware"))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, string(b), "onefpga.rbf")
}

func TestMissingBitstream(t *testing.T) {
	m := fpgamgr.NewManager(afero.NewMemMapFs(), "", "")
	test.ExpectFailure(t, m.Program(context.Background(), "/media/fat/missing.rbf"))
}

func TestNeverOperating(t *testing.T) {
	fs := afero.NewMemMapFs()
	test.DemandSuccess(t, afero.WriteFile(fs, "/core.rbf", []byte("bitstream"), 0o644))
	test.DemandSuccess(t, afero.WriteFile(fs, filepath.Join(fpgamgr.DefaultManager, "state"), []byte("write error\n"), 0o644))

	m := fpgamgr.NewManager(fs, "", "")
	m.Poll = time.Millisecond
	m.Timeout = 20 * time.Millisecond
	test.ExpectFailure(t, m.Program(context.Background(), "/core.rbf"))
}
