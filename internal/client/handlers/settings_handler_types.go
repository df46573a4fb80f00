package handlers

// SettingsUpdateRequest patches individual settings. Nil fields are left
// untouched.
type SettingsUpdateRequest struct {
	AutoSync *bool `json:"auto_sync,omitempty"`
}
