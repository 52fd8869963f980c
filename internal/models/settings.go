package models

// Setting keys persisted in the settings table.
const (
	SettingRadiusSecret   = "radius_secret"
	SettingRadiusNASIP    = "radius_nas_ip"
	SettingSessionTimeout = "session_timeout"
)

// Settings is the editable application configuration. RadiusSecret is
// stored encrypted at rest and only decrypted for display to an
// authenticated admin.
type Settings struct {
	RadiusSecret   string `json:"radius_secret"`
	RadiusNASIP    string `json:"radius_nas_ip"`
	SessionTimeout int    `json:"session_timeout"`
}
