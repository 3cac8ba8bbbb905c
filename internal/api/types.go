package api

// LoginRequest carries the admin password for session issuance
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse returns the issued bearer token
type LoginResponse struct {
	Token string `json:"token"`
}

// SettingsResponse is the persisted device configuration
type SettingsResponse struct {
	DeviceName   string `json:"deviceName"`
	UniqueURL    string `json:"uniqueURL"`
	RingDuration int    `json:"ringDuration"`
}

// SettingsRequest updates any subset of the device configuration; absent
// fields are left unchanged
type SettingsRequest struct {
	DeviceName   *string `json:"deviceName,omitempty"`
	UniqueURL    *string `json:"uniqueURL,omitempty"`
	RingDuration *int    `json:"ringDuration,omitempty"`
}

// ChangePasswordRequest rotates the admin secret
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}
