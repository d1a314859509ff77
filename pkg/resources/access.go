package resources

import (
	"context"

	"github.com/dukex/decmed/pkg/bridge"
	"github.com/dukex/decmed/pkg/models"
	"github.com/dukex/decmed/pkg/notify"
)

// Tab names of the personnel dashboard.
const (
	TabRead   = "read"
	TabUpdate = "update"
)

// AccessList lists the patients that granted the signed-in personnel access.
type AccessList struct {
	base
}

func NewAccessList(inv bridge.Invoker, n notify.Notifier) *AccessList {
	return &AccessList{base: newBase(inv, n)}
}

// Tabs lists the grant kinds role can hold. Admins hold none.
func Tabs(role models.Role) []string {
	switch role {
	case models.RoleMedicalPersonnel:
		return []string{TabRead, TabUpdate}
	case models.RoleAdministrativePersonnel:
		return []string{TabRead}
	default:
		return nil
	}
}

// Read lists read grants for role. Failures leave the list empty.
func (a *AccessList) Read(ctx context.Context, role models.Role) []models.AccessGrant {
	switch role {
	case models.RoleMedicalPersonnel:
		return fetchList[models.AccessGrant](ctx, a.base, bridge.CmdGetReadAccessMedicalPersonnel, nil)
	case models.RoleAdministrativePersonnel:
		return fetchList[models.AccessGrant](ctx, a.base, bridge.CmdGetReadAccessAdministrativePersonnel, nil)
	default:
		return []models.AccessGrant{}
	}
}

// Update lists update grants. Only medical personnel hold them.
func (a *AccessList) Update(ctx context.Context, role models.Role) []models.AccessGrant {
	if role != models.RoleMedicalPersonnel {
		return []models.AccessGrant{}
	}

	return fetchList[models.AccessGrant](ctx, a.base, bridge.CmdGetUpdateAccessMedicalPersonnel, nil)
}

// AccessLog is the patient's history of granted access.
type AccessLog struct {
	base
}

func NewAccessLog(inv bridge.Invoker, n notify.Notifier) *AccessLog {
	return &AccessLog{base: newBase(inv, n)}
}

func (l *AccessLog) List(ctx context.Context) ([]models.AccessLogEntry, error) {
	return fetch[[]models.AccessLogEntry](ctx, l.base, bridge.CmdGetAccessLog, nil)
}

// Revoke withdraws the grant recorded by entry.
func (l *AccessLog) Revoke(ctx context.Context, entry models.AccessLogEntry) error {
	return exec(ctx, l.base, bridge.CmdRevokeAccess, bridge.Args{
		"hospitalPersonnelAddress": entry.HospitalPersonnelAddress,
		"index":                    entry.Index,
	}, "Access revoked")
}
