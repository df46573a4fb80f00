package utils

import (
	"github.com/denisbrodbeck/machineid"
)

// HWID is a stable, app-scoped machine identifier. It survives restarts but
// cannot be correlated with identifiers other applications derive.
var HWID = func() string {
	id, err := machineid.ProtectedID("prefsync")
	if err != nil {
		return "unknown"
	}
	return id
}()
