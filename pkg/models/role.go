// Package models defines the payloads exchanged with the native backend and the
// identities shared by every client.
package models

import "fmt"

// Role is the hospital personnel role reported by auth_status. A nil role means
// the signed-in account has no personnel role (patients, ministry operators).
type Role string

const (
	RoleAdmin                   Role = "Admin"
	RoleMedicalPersonnel        Role = "MedicalPersonnel"
	RoleAdministrativePersonnel Role = "AdministrativePersonnel"
)

// PersonnelRoles lists the roles a hospital admin can issue activation keys for.
var PersonnelRoles = []Role{RoleAdministrativePersonnel, RoleMedicalPersonnel}

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleMedicalPersonnel, RoleAdministrativePersonnel:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	return string(r)
}

// RoleRef returns a pointer to r, handy for optional role fields.
func RoleRef(r Role) *Role {
	return &r
}

// ClientKind identifies which desktop front-end the core is serving.
type ClientKind string

const (
	ClientHospital ClientKind = "hospital"
	ClientPatient  ClientKind = "patient"
	ClientMinistry ClientKind = "ministry"
)

func ParseClientKind(s string) (ClientKind, error) {
	switch ClientKind(s) {
	case ClientHospital, ClientPatient, ClientMinistry:
		return ClientKind(s), nil
	default:
		return "", fmt.Errorf("unknown client kind %q", s)
	}
}
