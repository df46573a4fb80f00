package handlers

import "github.com/prefsync/prefsync/internal/client/commands"

type CommandListResponse struct {
	Commands []*commands.Info `json:"commands"`
}
