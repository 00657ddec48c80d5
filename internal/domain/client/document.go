package client

import (
	"time"

	"github.com/google/uuid"
)

// DocumentKind is the type of an uploaded identity document.
type DocumentKind string

const (
	DocumentKindIdentity DocumentKind = "IDENTITY"
)

// Document is an identity document attached to a client.
type Document struct {
	id        uuid.UUID
	clientID  uuid.UUID
	kind      DocumentKind
	number    string
	verified  bool
	deletedAt *time.Time
	createdAt time.Time
}

// ReconstructDocument rebuilds a Document from persistence data.
func ReconstructDocument(
	id, clientID uuid.UUID,
	kind DocumentKind,
	number string,
	verified bool,
	deletedAt *time.Time,
	createdAt time.Time,
) *Document {
	return &Document{
		id:        id,
		clientID:  clientID,
		kind:      kind,
		number:    number,
		verified:  verified,
		deletedAt: deletedAt,
		createdAt: createdAt,
	}
}

func (d *Document) ID() uuid.UUID         { return d.id }
func (d *Document) ClientID() uuid.UUID   { return d.clientID }
func (d *Document) Kind() DocumentKind    { return d.kind }
func (d *Document) Number() string        { return d.number }
func (d *Document) IsVerified() bool      { return d.verified }
func (d *Document) DeletedAt() *time.Time { return d.deletedAt }
func (d *Document) CreatedAt() time.Time  { return d.createdAt }
