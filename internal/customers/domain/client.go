package domain

import (
	"errors"
	"strings"
	"time"
)

// Status is the lifecycle state of a client record.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusBlocked  Status = "BLOCKED"
)

var ErrUnknownStatus = errors.New("unknown client status")

// Statuses lists every valid status in declaration order.
func Statuses() []Status {
	return []Status{StatusActive, StatusInactive, StatusBlocked}
}

// ParseStatus converts s into a Status. Matching is case-sensitive.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.TrimSpace(s)); st {
	case StatusActive, StatusInactive, StatusBlocked:
		return st, nil
	}
	return "", ErrUnknownStatus
}

func (s Status) String() string { return string(s) }

// Client is a customer record. Records are never hard-deleted; removal moves
// them to StatusInactive.
type Client struct {
	ID         string
	Name       string
	DocumentID string
	Email      string
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (c *Client) IsActive() bool { return c.Status == StatusActive }

func (c *Client) Activate()   { c.Status = StatusActive }
func (c *Client) Deactivate() { c.Status = StatusInactive }
func (c *Client) Block()      { c.Status = StatusBlocked }

// ClientParams carries caller-supplied fields for create and update. An empty
// Status means "not supplied".
type ClientParams struct {
	Name       string
	DocumentID string
	Email      string
	Status     string
}

// HasStatus reports whether the caller supplied a status.
func (p ClientParams) HasStatus() bool { return strings.TrimSpace(p.Status) != "" }
