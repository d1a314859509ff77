package models

// Profile is the get_profile payload. Hospital personnel also carry the
// registered hospital name.
type Profile struct {
	ID           string  `json:"id"`
	IDHash       string  `json:"idHash,omitempty"`
	IotaAddress  string  `json:"iotaAddress"`
	PrePublicKey string  `json:"prePublicKey"`
	Name         *string `json:"name"`
	HospitalName *string `json:"hospitalName,omitempty"`
}

// Complete reports whether the profile has a display name.
func (p *Profile) Complete() bool {
	return p != nil && p.Name != nil && *p.Name != ""
}

// QRPayload is the string patients scan to grant this account access.
func (p *Profile) QRPayload() string {
	if p == nil {
		return "@"
	}

	return p.IotaAddress + "@" + p.PrePublicKey
}

// Personnel is one entry of the hospital roster.
type Personnel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// ActivationKey is returned when an admin registers new personnel.
type ActivationKey struct {
	ActivationKey string `json:"activationKey"`
	ID            string `json:"id"`
}
