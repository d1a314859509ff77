package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/decmed/pkg/models"
)

func TestParseRole(t *testing.T) {
	for _, role := range []models.Role{models.RoleAdmin, models.RoleMedicalPersonnel, models.RoleAdministrativePersonnel} {
		parsed, err := models.ParseRole(string(role))
		require.NoError(t, err)
		assert.Equal(t, role, parsed)
	}

	_, err := models.ParseRole("Nurse")
	assert.Error(t, err)
}

func TestParseClientKind(t *testing.T) {
	kind, err := models.ParseClientKind("ministry")
	require.NoError(t, err)
	assert.Equal(t, models.ClientMinistry, kind)

	_, err = models.ParseClientKind("clinic")
	assert.Error(t, err)
}

func TestProfile(t *testing.T) {
	var missing *models.Profile
	assert.False(t, missing.Complete())
	assert.Equal(t, "@", missing.QRPayload())

	empty := ""
	profile := &models.Profile{IotaAddress: "0xabc", PrePublicKey: "pre", Name: &empty}
	assert.False(t, profile.Complete())
	assert.Equal(t, "0xabc@pre", profile.QRPayload())

	name := "Jane"
	profile.Name = &name
	assert.True(t, profile.Complete())
}

func TestProfile_NullName(t *testing.T) {
	var profile models.Profile
	require.NoError(t, json.Unmarshal([]byte(`{"id":"PER-1","iotaAddress":"0x1","prePublicKey":"k","name":null}`), &profile))

	assert.Nil(t, profile.Name)
	assert.False(t, profile.Complete())
}
