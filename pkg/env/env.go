// Package env provides facts about the host machine.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID salts the machine ID so it doesn't leak the raw one.
const AppID = "telecortex"

// IDLength is the length of the generated controller ID.
const IDLength = 12

// MachineID retrieves a stable ID identifying the machine. It falls
// back to the hostname when the machine ID is unavailable.
func MachineID() string {
	id, err := machineid.ProtectedID(AppID)
	if err != nil {
		glog.Warningf("machine ID unavailable: %v", err)
		return Hostname()
	}
	if len(id) > IDLength {
		id = id[:IDLength]
	}
	return id
}

// Hostname returns the hostname or "cortex".
func Hostname() string {
	if name, err := os.Hostname(); err == nil && name != "" {
		return name
	}
	return "cortex"
}
