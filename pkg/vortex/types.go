package vortex

import "time"

// Identifier is a verified handle for a user, such as an email address
type Identifier struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Group is a group membership carried in a JWT or attached to an invitation
type Group struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Target identifies who an invitation is addressed to
type Target struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// InvitationStatus is the upstream lifecycle state of an invitation
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusRevoked  InvitationStatus = "revoked"
)

// Invitation is an upstream invitation record
type Invitation struct {
	ID          string           `json:"id"`
	TargetType  string           `json:"targetType"`
	TargetValue string           `json:"targetValue"`
	Status      InvitationStatus `json:"status"`
	Groups      []Group          `json:"groups,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   *time.Time       `json:"updatedAt,omitempty"`
	AcceptedAt  *time.Time       `json:"acceptedAt,omitempty"`
	RevokedAt   *time.Time       `json:"revokedAt,omitempty"`
}

// JWTParams describes the subject of a signed JWT
type JWTParams struct {
	UserID      string
	Identifiers []Identifier
	Groups      []Group
	Role        string
	ExpiresAt   time.Time
}

type invitationsResponse struct {
	Invitations []Invitation `json:"invitations"`
}

type acceptRequest struct {
	InvitationIDs []string `json:"invitationIds"`
	Target        Target   `json:"target"`
}
