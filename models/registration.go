// models/registration.go
package models

import "time"

const (
	ApprovalApproved = "approved"
	ApprovalPending  = "pending"
	ApprovalRejected = "rejected"
)

const (
	PaymentPending = "pending"
	PaymentDone    = "done"
)

const (
	AffiliationHome     = "home"
	AffiliationExternal = "external"
)

// Registration is one participant-or-team's enrollment in one event.
// RegistrationID is the human-readable identifier printed on the ticket;
// ID is the internal row key.
type Registration struct {
	ID             string `json:"id" gorm:"primaryKey"`
	RegistrationID string `json:"registration_id" gorm:"uniqueIndex;not null"`
	EventID        string `json:"event_id" gorm:"not null;index"`
	Event          Event  `json:"event,omitempty" gorm:"foreignKey:EventID"`

	IsHomeInstitution bool `json:"is_home_institution"`

	LeaderName       string `json:"leader_name" gorm:"not null"`
	LeaderEmail      string `json:"leader_email" gorm:"not null"`
	LeaderPhone      string `json:"leader_phone" gorm:"not null"`
	LeaderRegisterNo string `json:"leader_register_no"`
	LeaderCollege    string `json:"leader_college"`

	TeamMembers []TeamMember `json:"team_members,omitempty" gorm:"foreignKey:RegistrationID;references:ID"`

	// Copied from the event at creation time; later event edits must not
	// change what an issued ticket says.
	ResolvedEventDate string `json:"resolved_event_date"`

	// Serialized QR payload, kept for audit/replay.
	VerificationPayload string `json:"verification_payload" gorm:"type:text"`

	ApprovalState string  `json:"approval_state" gorm:"default:'approved'"`
	PaymentState  string  `json:"payment_state" gorm:"default:'pending'"`
	TicketURL     *string `json:"ticket_url,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Affiliation returns the two-valued affiliation tag used in the QR payload.
func (r *Registration) Affiliation() string {
	if r.IsHomeInstitution {
		return AffiliationHome
	}
	return AffiliationExternal
}

// TeamSize counts the leader plus team members.
func (r *Registration) TeamSize() int {
	return 1 + len(r.TeamMembers)
}

// TeamMember is a non-leader participant on a group registration.
type TeamMember struct {
	ID             string `json:"id" gorm:"primaryKey"`
	RegistrationID string `json:"registration_id" gorm:"not null;index"`
	Name           string `json:"name" gorm:"not null"`
	RegisterNo     string `json:"register_no"`
	College        string `json:"college"`
	SortOrder      int    `json:"sort_order" gorm:"column:sort_order;default:0"`
}

// DownloadEvent records a ticket download. Fire-and-forget side channel;
// never read by the core workflow.
type DownloadEvent struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	RegistrationID string    `json:"registration_id" gorm:"not null;index"`
	ClientInfo     string    `json:"client_info"`
	DownloadedAt   time.Time `json:"downloaded_at" gorm:"autoCreateTime"`
}
