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
	"fmt"

	"github.com/onefpga/onefpga/i2c"
	"github.com/onefpga/onefpga/logger"
)

// I2C addresses of the HDMI transmitter and of its EDID memory.
const (
	TransmitterAddress = 0x39
	EEPROMAddress      = 0x3f
)

// registers of the HDMI transmitter.
const (
	regPacketEnable = 0x40
	regHotPlug      = 0x42
	regEDIDControl  = 0xc9
)

// bits of the packet enable register.
const (
	packetSPD    = 0x40
	packetSpare1 = 0x02
	packetSpare0 = 0x01
)

// the hot plug detect bit of the hot plug register.
const hotPlugDetect = 0x20

// values written to the EDID control register to force a new read of the
// display EDID.
const (
	edidReread = 0x03
	edidFetch  = 0x13
)

// Transmitter controls the HDMI transmitter.
type Transmitter struct {
	dev i2c.Device
}

// NewTransmitter is the preferred method of initialisation for the
// Transmitter type.
func NewTransmitter(dev i2c.Device) *Transmitter {
	return &Transmitter{dev: dev}
}

// Connected returns true if the transmitter senses a display on the HDMI port.
func (tx *Transmitter) Connected() (bool, error) {
	v, err := tx.dev.ReadByteData(regHotPlug)
	if err != nil {
		return false, err
	}
	return v&hotPlugDetect != 0, nil
}

// RequestEDID asks the transmitter to fetch the EDID from the display.
func (tx *Transmitter) RequestEDID() error {
	for range 10 {
		if err := tx.dev.WriteByteData(regEDIDControl, edidReread); err != nil {
			return err
		}
		if err := tx.dev.WriteByteData(regEDIDControl, edidFetch); err != nil {
			return err
		}
	}
	return nil
}

// update a bit of the packet enable register.
func (tx *Transmitter) packet(mask uint8, enable bool) error {
	v, err := tx.dev.ReadByteData(regPacketEnable)
	if err != nil {
		return err
	}

	if enable {
		v |= mask
	} else {
		v &^= mask
	}

	if err := tx.dev.WriteByteData(regPacketEnable, v); err != nil {
		logger.Logf(logger.Allow, "hdmi", "packet write error (%02x %02x): %v", regPacketEnable, v, err)
		return fmt.Errorf("hdmi: %w", err)
	}

	return nil
}

// SetSPD enables or disables the source product description infoframe.
func (tx *Transmitter) SetSPD(enable bool) error {
	return tx.packet(packetSPD, enable)
}

// SetSpare enables or disables one of the two spare packets.
func (tx *Transmitter) SetSpare(packet bool, enable bool) error {
	if packet {
		return tx.packet(packetSpare1, enable)
	}
	return tx.packet(packetSpare0, enable)
}
