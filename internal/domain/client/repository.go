package client

import (
	"context"

	"github.com/google/uuid"
)

// ClientRepository reads client profiles, including deleted ones.
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
}

// DocumentRepository reads identity documents.
type DocumentRepository interface {
	// FindCurrentIdentity returns the client's newest non-deleted identity
	// document, or nil when there is none.
	FindCurrentIdentity(ctx context.Context, clientID uuid.UUID) (*Document, error)
}
