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

package notifications

// Notice describes events that somehow change the presentation of the
// running core. The application can use these to update the menu or show a
// message to the user.
type Notice string

// List of defined notifications.
const (
	// a new core has been programmed and identified
	NotifyCoreLaunched Notice = "NotifyCoreLaunched"

	// the menu core is running
	NotifyMenuLoaded Notice = "NotifyMenuLoaded"

	// the on-screen display has been made visible or hidden
	NotifyOSDShown  Notice = "NotifyOSDShown"
	NotifyOSDHidden Notice = "NotifyOSDHidden"

	// the running core has produced save state data
	NotifySaveState Notice = "NotifySaveState"

	// a file has been loaded into a slot of the running core
	NotifyFileLoaded Notice = "NotifyFileLoaded"

	// the running core has changed its own status bits
	NotifyCoreStatus Notice = "NotifyCoreStatus"

	// a new video mode has been sent to the core
	NotifyVideoMode Notice = "NotifyVideoMode"

	// the manager is shutting down
	NotifyShutdown Notice = "NotifyShutdown"
)

// Notify is used for direct communication between the firmware and the
// embedding application.
type Notify interface {
	Notify(notice Notice) error
}

// Discard is an implementation of Notify that ignores all notices.
type Discard struct{}

// Notify implements the Notify interface.
func (Discard) Notify(_ Notice) error {
	return nil
}
