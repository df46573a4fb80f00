package enginesdk

import (
	"fmt"
	"runtime"

	"github.com/prefsync/prefsync/internal/version"
)

const (
	HeaderUserAgent        = "User-Agent"
	HeaderPrefsyncVersion  = "X-Prefsync-Version"
	HeaderPrefsyncDeviceId = "X-Prefsync-Device-Id"
)

var PrefSyncUserAgent = fmt.Sprintf("PrefSync/%s (%s; %s; %s)", version.Version, version.Revision, runtime.GOOS, runtime.GOARCH)
