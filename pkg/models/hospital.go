package models

// Hospital is a registry entry managed by the ministry client.
type Hospital struct {
	ActivationKey    string `json:"activationKey"`
	HospitalAdminCID string `json:"hospitalAdminCid"`
	HospitalName     string `json:"hospitalName"`
}

// HospitalPage requests one page of the hospital registry. Nil fields let the
// backend pick its defaults.
type HospitalPage struct {
	Cursor *uint64 `json:"cursor"`
	Size   *uint64 `json:"size"`
}
