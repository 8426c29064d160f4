// models/event.go
package models

import (
	"strings"
	"time"
)

const (
	ModeIndividual = "individual"
	ModeGroup      = "group"
)

const (
	CategoryTechnical = "technical"
	CategoryCultural  = "cultural"
	CategoryWorkshop  = "workshop"
	CategoryGaming    = "gaming"
)

// Event is festival reference data. The registration workflow only ever
// reads it; mutation happens through the admin surface.
type Event struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Slug     string `json:"slug" gorm:"uniqueIndex;not null"`
	Title    string `json:"title" gorm:"not null"`
	Category string `json:"category" gorm:"not null"`
	Mode     string `json:"mode" gorm:"default:'individual'"`

	TeamSizeMin int `json:"team_size_min" gorm:"default:1"`
	TeamSizeMax int `json:"team_size_max" gorm:"default:1"`

	// Two candidate dates; which one applies to a registration is decided
	// by the registrant's affiliation and copied onto the record.
	OnCampusDate  string `json:"on_campus_date"`
	OffCampusDate string `json:"off_campus_date"`

	// Newline-separated free text, one rule per line.
	Rules       string `json:"rules" gorm:"type:text"`
	Eligibility string `json:"eligibility" gorm:"type:text"`

	Contacts []EventContact `json:"contacts,omitempty" gorm:"foreignKey:EventID"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// RuleList splits the stored rules text into individual lines, dropping
// blanks.
func (e *Event) RuleList() []string {
	var rules []string
	for _, line := range strings.Split(e.Rules, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			rules = append(rules, line)
		}
	}
	return rules
}

// EventDateFor returns the date that applies to a registrant of the given
// affiliation.
func (e *Event) EventDateFor(isHomeInstitution bool) string {
	if isHomeInstitution {
		return e.OnCampusDate
	}
	return e.OffCampusDate
}

// EventContact is an organizer listed on an event page.
type EventContact struct {
	ID      string `json:"id" gorm:"primaryKey"`
	EventID string `json:"event_id" gorm:"not null;index"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
}
