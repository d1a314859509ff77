// Package persistence stores the session snapshot so a restarted client can
// restore the signed-in role without asking the backend first.
package persistence

import (
	"context"
	"time"

	"github.com/dukex/decmed/pkg/models"
)

// Snapshot is what survives a restart. Role is nil for patients and ministry
// operators, and for a hospital session that has not resolved a role yet.
type Snapshot struct {
	Client     models.ClientKind `json:"client"`
	Role       *models.Role      `json:"role"`
	SignedInAt time.Time         `json:"signedInAt"`
}

type SessionStore interface {
	Load(ctx context.Context, client models.ClientKind) (*Snapshot, error)
	Save(ctx context.Context, snapshot *Snapshot) error
	Clear(ctx context.Context, client models.ClientKind) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
