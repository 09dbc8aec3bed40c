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

package edid

import (
	"context"
	"fmt"
	"time"

	"github.com/onefpga/onefpga/curated"
	"github.com/onefpga/onefpga/i2c"
	"github.com/onefpga/onefpga/logger"
)

// Default retry policy when reading the EDID.
const (
	DefaultAttempts = 20
	DefaultInterval = 100 * time.Millisecond
)

// Reader reads the EDID of the attached display.
type Reader struct {
	tx     *Transmitter
	eeprom i2c.Device

	// clamped to the range 1 to DefaultAttempts
	Attempts int
	Interval time.Duration
}

// NewReader is the preferred method of initialisation for the Reader type.
func NewReader(transmitter i2c.Device, eeprom i2c.Device) *Reader {
	return &Reader{
		tx:       NewTransmitter(transmitter),
		eeprom:   eeprom,
		Attempts: DefaultAttempts,
		Interval: DefaultInterval,
	}
}

// Read the EDID from the display. The returned error is always a
// DisplayDataInvalid error, including when the context is cancelled.
func (r *Reader) Read(ctx context.Context) (*Block, error) {
	connected, err := r.tx.Connected()
	if err != nil {
		return nil, curated.Errorf(DisplayDataInvalid, err)
	}
	if !connected {
		return nil, curated.Errorf(DisplayDataInvalid, "HDMI not connected")
	}

	if err := r.tx.RequestEDID(); err != nil {
		return nil, curated.Errorf(DisplayDataInvalid, err)
	}

	var b Block

	attempts := min(max(r.Attempts, 1), DefaultAttempts)

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := r.readBlock(&b); err != nil {
			return nil, curated.Errorf(DisplayDataInvalid, err)
		}

		if b.Valid() {
			logger.Logf(logger.Allow, "edid", "read after %d attempt(s)", attempt)
			if !b.Checksum() {
				logger.Log(logger.Allow, "edid", "base block checksum is incorrect")
			}
			return &b, nil
		}

		select {
		case <-ctx.Done():
			return nil, curated.Errorf(DisplayDataInvalid, ctx.Err())
		case <-time.After(r.Interval):
		}
	}

	return nil, curated.Errorf(DisplayDataInvalid, fmt.Sprintf("could not read EDID after %d attempts", attempts))
}

func (r *Reader) readBlock(b *Block) error {
	for i := range b {
		v, err := r.eeprom.ReadByteData(uint8(i))
		if err != nil {
			return err
		}
		b[i] = v
	}
	return nil
}
