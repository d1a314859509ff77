// Package testutil provides test data builders and a fake backend for tests.
package testutil

import (
	"github.com/google/uuid"

	"github.com/dukex/decmed/pkg/models"
)

// Mnemonic is a valid 12 word seed phrase.
const Mnemonic = "abandon ability able about above absent absorb abstract absurd abuse access accident"

// CreateTestProfile creates a complete Profile that can be overridden.
func CreateTestProfile(overrides ...func(*models.Profile)) models.Profile {
	name := "Test Personnel"
	profile := models.Profile{
		ID:           "PER-000001",
		IDHash:       "9f86d081884c7d65",
		IotaAddress:  "0x" + uuid.NewString(),
		PrePublicKey: "pre-" + uuid.NewString(),
		Name:         &name,
	}

	for _, override := range overrides {
		override(&profile)
	}

	return profile
}

// WithoutName leaves the profile incomplete.
func WithoutName() func(*models.Profile) {
	return func(p *models.Profile) {
		p.Name = nil
	}
}

// CreateTestGrant creates an access grant for a fresh patient.
func CreateTestGrant(overrides ...func(*models.AccessGrant)) models.AccessGrant {
	patient := "Test Patient"
	key := "pre-" + uuid.NewString()
	grant := models.AccessGrant{
		AccessToken:         uuid.NewString(),
		Exp:                 "2030-01-01T00:00:00Z",
		PatientIotaAddress:  "0x" + uuid.NewString(),
		PatientName:         &patient,
		PatientPrePublicKey: &key,
	}

	for _, override := range overrides {
		override(&grant)
	}

	return grant
}

// CreateTestLogEntry creates an unrevoked read grant in the access log.
func CreateTestLogEntry(index uint64, overrides ...func(*models.AccessLogEntry)) models.AccessLogEntry {
	entry := models.AccessLogEntry{
		Index:                    index,
		AccessDataTypes:          []models.AccessDataType{models.AccessDataMedical},
		AccessType:               models.AccessRead,
		Date:                     "2025-01-01T00:00:00Z",
		ExpDur:                   900_000,
		HospitalName:             "General Hospital",
		HospitalPersonnelName:    "Dr. Test",
		HospitalPersonnelAddress: "0x" + uuid.NewString(),
	}

	for _, override := range overrides {
		override(&entry)
	}

	return entry
}

// CreateTestHospital creates a registry entry with a random admin CID.
func CreateTestHospital(name string) models.Hospital {
	return models.Hospital{
		ActivationKey:    uuid.NewString(),
		HospitalAdminCID: "bafy" + uuid.NewString(),
		HospitalName:     name,
	}
}
