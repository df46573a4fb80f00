package handlers

import "github.com/prefsync/prefsync/internal/client/sync"

type ActivityListResponse struct {
	Activity []*sync.Activity `json:"activity"`
}
