package client

import (
	"time"

	"github.com/google/uuid"
)

// Client is a registered customer. Profiles are owned by the accounts
// service; rentals only read them.
type Client struct {
	id        uuid.UUID
	email     string
	fullName  string
	banned    bool
	deletedAt *time.Time
}

// ReconstructClient rebuilds a Client from persistence data.
func ReconstructClient(id uuid.UUID, email, fullName string, banned bool, deletedAt *time.Time) *Client {
	return &Client{
		id:        id,
		email:     email,
		fullName:  fullName,
		banned:    banned,
		deletedAt: deletedAt,
	}
}

func (c *Client) ID() uuid.UUID         { return c.id }
func (c *Client) Email() string         { return c.email }
func (c *Client) FullName() string      { return c.fullName }
func (c *Client) IsBanned() bool        { return c.banned }
func (c *Client) DeletedAt() *time.Time { return c.deletedAt }

// CanRent reports whether the account is in good standing.
func (c *Client) CanRent() bool {
	return !c.banned && c.deletedAt == nil
}
