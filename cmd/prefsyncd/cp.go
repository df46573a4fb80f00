package main

import (
	"github.com/spf13/viper"

	"github.com/prefsync/prefsync/internal/client/config"
	"github.com/prefsync/prefsync/internal/client/cpclient"
)

// newCPClient builds a control plane client from the loaded config, the
// PREFSYNC_DAEMON_URL / PREFSYNC_DAEMON_TOKEN env vars or flags.
func newCPClient() (*cpclient.Client, error) {
	daemonURL := viper.GetString("daemon_url")
	if daemonURL == "" {
		if addr := viper.GetString("daemon_addr"); addr != "" {
			daemonURL = "http://" + addr
		} else {
			daemonURL = config.DefaultDaemonURL
		}
	}

	return cpclient.New(daemonURL, viper.GetString("daemon_token"))
}
