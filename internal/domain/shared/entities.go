package shared

import (
	"time"

	"github.com/google/uuid"
)

// ParticipantKind distinguishes carriers from staff members
type ParticipantKind string

const (
	KindCarrier ParticipantKind = "carrier"
	KindStaff   ParticipantKind = "staff"
)

// Role is the reviewer permission level of a staff member
type Role string

const (
	RoleStandard Role = "standard"
	RoleMaster   Role = "master"
)

// Participant is a carrier or staff identity resolved by the identity provider
type Participant struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Kind        ParticipantKind `json:"kind"`
	Role        Role            `json:"role"`
	NotifyToken string          `json:"notify_token,omitempty"`
	Email       string          `json:"email,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// IsMaster returns true if the participant holds the elevated reviewer role
func (p *Participant) IsMaster() bool {
	return p.Kind == KindStaff && p.Role == RoleMaster
}

func (p *Participant) IsCarrier() bool {
	return p.Kind == KindCarrier
}

func (p *Participant) IsStaff() bool {
	return p.Kind == KindStaff
}

// SystemActor acts for automated transitions such as deadline expiry
var SystemActor = Participant{
	ID:   uuid.Nil,
	Name: "System",
	Kind: KindStaff,
	Role: RoleStandard,
}
