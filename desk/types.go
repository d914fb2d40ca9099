package desk

import (
	"strings"
	"time"
)

// DefaultCasePriority is the priority desk assigns when none is given
const DefaultCasePriority = 4

// Case represents a desk case (ticket)
type Case struct {
	ID           int               `json:"id,omitempty"`
	Subject      string            `json:"subject,omitempty"`
	CreatedAt    *time.Time        `json:"created_at,omitempty"`
	UpdatedAt    *time.Time        `json:"updated_at,omitempty"`
	ChangedAt    *time.Time        `json:"changed_at,omitempty"`
	Priority     int               `json:"priority"`
	Type         string            `json:"type,omitempty"`
	Status       string            `json:"status,omitempty"`
	Description  string            `json:"description,omitempty"`
	Labels       []string          `json:"labels,omitempty"`
	Customer     *Customer         `json:"customer,omitempty"`
	Message      *Message          `json:"message,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

// NewCase returns a case carrying desk's default priority
func NewCase(subject string) *Case {
	return &Case{
		Subject:  subject,
		Priority: DefaultCasePriority,
	}
}

// HasLabel reports whether the case carries the label, ignoring case
func (c *Case) HasLabel(label string) bool {
	for _, l := range c.Labels {
		if strings.EqualFold(l, label) {
			return true
		}
	}
	return false
}

// Customer represents a desk customer
type Customer struct {
	ID           int               `json:"id,omitempty"`
	FirstName    string            `json:"first_name,omitempty"`
	LastName     string            `json:"last_name,omitempty"`
	UID          string            `json:"uid,omitempty"`
	ExternalID   int               `json:"external_id,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

// DisplayName returns the best available name for the customer
func (c *Customer) DisplayName() string {
	switch {
	case c.FirstName != "" && c.LastName != "":
		return c.FirstName + " " + c.LastName
	case c.FirstName != "":
		return c.FirstName
	case c.LastName != "":
		return c.LastName
	default:
		return c.UID
	}
}

// Message represents the original message of a case
type Message struct {
	Direction string `json:"direction"`
	Status    string `json:"status"`
	Body      string `json:"body,omitempty"`
	Subject   string `json:"subject,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	// SuppressRules disables desk rule processing, which imported cases want
	SuppressRules bool       `json:"suppress_rules"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
}

// NewMessage returns an inbound, sent message with rule processing suppressed
func NewMessage(from, to, subject, body string) *Message {
	return &Message{
		Direction:     "in",
		Status:        "sent",
		From:          from,
		To:            to,
		Subject:       subject,
		Body:          body,
		SuppressRules: true,
	}
}

// Note represents an internal note on a case
type Note struct {
	ID            int        `json:"id,omitempty"`
	Body          string     `json:"body"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	SuppressRules bool       `json:"suppress_rules"`
}

// NewNote returns a note with rule processing suppressed
func NewNote(body string) *Note {
	return &Note{Body: body, SuppressRules: true}
}

// Group represents an agent group. The groups endpoint is the cheapest call
// desk offers, which makes it the default rate-limit probe.
type Group struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Page is a single page of a desk collection response.
// Only the first page is ever requested.
type Page[T any] struct {
	TotalEntries int `json:"total_entries"`
	Embedded     struct {
		Entries []T `json:"entries"`
	} `json:"_embedded"`
}

// Entries returns the entries of the page
func (p *Page[T]) Entries() []T {
	return p.Embedded.Entries
}
