package models

import (
	"fmt"
	"time"
)

// ContactStatus tracks a lead through the sales pipeline.
type ContactStatus string

const (
	ContactNew          ContactStatus = "new"
	ContactContacted    ContactStatus = "contacted"
	ContactQualified    ContactStatus = "qualified"
	ContactProposalSent ContactStatus = "proposal-sent"
	ContactClosedWon    ContactStatus = "closed-won"
	ContactClosedLost   ContactStatus = "closed-lost"
)

func ParseContactStatus(s string) (ContactStatus, error) {
	switch st := ContactStatus(s); st {
	case ContactNew, ContactContacted, ContactQualified, ContactProposalSent, ContactClosedWon, ContactClosedLost:
		return st, nil
	default:
		return "", fmt.Errorf("unknown contact status %q", s)
	}
}

// Contact is a message left through the public contact form.
type Contact struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	Company   string        `json:"company"`
	Subject   string        `json:"subject"`
	Message   string        `json:"message"`
	Status    ContactStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
