package models

// AccessType distinguishes read grants from update grants.
type AccessType string

const (
	AccessRead   AccessType = "Read"
	AccessUpdate AccessType = "Update"
)

// AccessDataType is the part of the patient data a grant covers.
type AccessDataType string

const (
	AccessDataAdministrative AccessDataType = "Administrative"
	AccessDataMedical        AccessDataType = "Medical"
)

// AccessGrant is an access token held by hospital personnel for one patient.
type AccessGrant struct {
	AccessToken          string  `json:"accessToken"`
	Exp                  string  `json:"exp"`
	PatientIotaAddress   string  `json:"patientIotaAddress"`
	PatientName          *string `json:"patientName"`
	PatientPrePublicKey  *string `json:"patientPrePublicKey"`
	MedicalMetadataIndex *uint64 `json:"medicalMetadataIndex,omitempty"`
}

// AccessLogEntry is one grant in the patient's access history.
type AccessLogEntry struct {
	Index                    uint64           `json:"index"`
	AccessDataTypes          []AccessDataType `json:"accessDataTypes"`
	AccessType               AccessType       `json:"accessType"`
	Date                     string           `json:"date"`
	ExpDur                   uint64           `json:"expDur"`
	HospitalName             string           `json:"hospitalName"`
	HospitalPersonnelName    string           `json:"hospitalPersonnelName"`
	HospitalPersonnelAddress string           `json:"hospitalPersonnelAddress"`
	IsRevoked                bool             `json:"isRevoked"`
}

// QRScanResult identifies the hospital personnel behind a scanned QR code.
type QRScanResult struct {
	HospitalPersonnelHospitalName string `json:"hospitalPersonnelHospitalName"`
	HospitalPersonnelName         string `json:"hospitalPersonnelName"`
}
