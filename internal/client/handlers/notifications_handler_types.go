package handlers

import "github.com/prefsync/prefsync/internal/client/ui"

type NotificationListResponse struct {
	Notifications []*ui.Notification `json:"notifications"`
}
