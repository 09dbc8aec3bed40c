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

package loopback

import (
	"context"
	"fmt"
	"sync"

	"github.com/onefpga/onefpga/fpga"
)

// Programmer is an implementation of fpga.Programmer that changes the
// configuration string of the Loopback to simulate a new core being loaded.
type Programmer struct {
	lb *Loopback

	crit    sync.Mutex
	cores   map[string]string
	wide    map[string]bool
	faults  map[string]error
	history []string
}

// NewProgrammer is the preferred method of initialisation for the Programmer
// type.
func NewProgrammer(lb *Loopback) *Programmer {
	return &Programmer{
		lb:     lb,
		cores:  make(map[string]string),
		wide:   make(map[string]bool),
		faults: make(map[string]error),
	}
}

// Register the configuration string of the core in the bitstream file.
func (p *Programmer) Register(bitstream string, configString string) {
	p.crit.Lock()
	defer p.crit.Unlock()
	p.cores[bitstream] = configString
	delete(p.wide, bitstream)
}

// RegisterWide is like Register but the core has a 16-bit file download bus.
func (p *Programmer) RegisterWide(bitstream string, configString string) {
	p.crit.Lock()
	defer p.crit.Unlock()
	p.cores[bitstream] = configString
	p.wide[bitstream] = true
}

// Fault causes the programming of the bitstream to fail.
func (p *Programmer) Fault(bitstream string, err error) {
	p.crit.Lock()
	defer p.crit.Unlock()
	p.faults[bitstream] = err
}

// History returns the list of bitstreams programmed so far.
func (p *Programmer) History() []string {
	p.crit.Lock()
	defer p.crit.Unlock()
	return append([]string(nil), p.history...)
}

// Program implements the fpga.Programmer interface. An unregistered
// bitstream results in a core with an empty configuration string, which
// never identifies itself.
func (p *Programmer) Program(ctx context.Context, bitstream string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.crit.Lock()
	defer p.crit.Unlock()

	if err, ok := p.faults[bitstream]; ok {
		return fmt.Errorf("loopback: %s: %w", bitstream, err)
	}

	p.history = append(p.history, bitstream)
	p.lb.SetConfigString(p.cores[bitstream])
	p.lb.SetWideFileIO(p.wide[bitstream])

	// a freshly programmed core starts with a clear status register
	p.lb.status = [fpga.StatusWords]uint16{}
	p.lb.statusChanged = false

	return nil
}
