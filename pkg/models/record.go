package models

// MedicalData is the clinical content of one medical record entry.
type MedicalData struct {
	Anamnesis          string `json:"anamnesis"`
	PhysicalCheck      string `json:"physicalCheck"`
	PsychologicalCheck string `json:"psychologicalCheck"`
	Diagnose           string `json:"diagnose"`
	Therapy            string `json:"therapy"`
}

// MedicalRecordMetadata lists one record of the signed-in patient.
type MedicalRecordMetadata struct {
	Index     uint64 `json:"index"`
	CID       string `json:"cid,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// MedicalRecord is a decrypted record as returned by get_medical_record.
type MedicalRecord struct {
	Index       uint64      `json:"index"`
	CreatedAt   string      `json:"createdAt"`
	MedicalData MedicalData `json:"medicalData"`
}

// AdministrativeData is the patient identity visible to administrative personnel.
type AdministrativeData struct {
	ID     string  `json:"id"`
	IDHash string  `json:"idHash"`
	Name   *string `json:"name"`
}

// RecordTarget scopes a record command to one patient through an access token.
type RecordTarget struct {
	AccessToken         string `json:"accessToken"`
	PatientIotaAddress  string `json:"patientIotaAddress"`
	PatientPrePublicKey string `json:"patientPrePublicKey,omitempty"`
	Index               *int   `json:"index,omitempty"`
}
