// Package web serves the client core to the rendering layer: page loads,
// form flows, the session and toasts.
package web

import (
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/session"
)

// SessionResponse describes the signed-in session and its navigation.
type SessionResponse struct {
	Client   models.ClientKind `json:"client"`
	SignedIn bool              `json:"signedIn"`
	Role     *models.Role      `json:"role"`
	Nav      []session.NavLink `json:"nav"`
}

// RevokeRequest withdraws one entry of the patient's access log.
type RevokeRequest struct {
	Index                    uint64 `json:"index"`
	HospitalPersonnelAddress string `json:"hospitalPersonnelAddress" validate:"required"`
}
