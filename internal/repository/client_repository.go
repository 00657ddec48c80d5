package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/drivehub/service-rental/internal/common/domain"
	clientDomain "github.com/drivehub/service-rental/internal/domain/client"
)

// ClientModel is the GORM model for the clients table.
type ClientModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Email     string     `gorm:"uniqueIndex;not null;size:255"`
	FullName  string     `gorm:"not null;size:200"`
	Banned    bool       `gorm:"not null;default:false"`
	DeletedAt *time.Time `gorm:""`
}

func (ClientModel) TableName() string { return "clients" }

// DocumentModel is the GORM model for the documents table.
type DocumentModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ClientID  uuid.UUID  `gorm:"type:uuid;index;not null"`
	Kind      string     `gorm:"not null;size:20"`
	Number    string     `gorm:"not null;size:50"`
	Verified  bool       `gorm:"not null;default:false"`
	DeletedAt *time.Time `gorm:""`
	CreatedAt time.Time  `gorm:"not null"`
}

func (DocumentModel) TableName() string { return "documents" }

// GormClientRepository reads client profiles and their documents.
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository.
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

var (
	_ clientDomain.ClientRepository   = (*GormClientRepository)(nil)
	_ clientDomain.DocumentRepository = (*GormClientRepository)(nil)
)

// FindByID retrieves a client, including deleted ones.
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*clientDomain.Client, error) {
	var m ClientModel
	if err := conn(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("client", id.String())
		}
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return clientDomain.ReconstructClient(m.ID, m.Email, m.FullName, m.Banned, m.DeletedAt), nil
}

// FindCurrentIdentity returns the newest non-deleted identity document of a
// client, or nil when there is none.
func (r *GormClientRepository) FindCurrentIdentity(ctx context.Context, clientID uuid.UUID) (*clientDomain.Document, error) {
	var m DocumentModel
	err := conn(ctx, r.db).
		Where("client_id = ? AND kind = ? AND deleted_at IS NULL", clientID, string(clientDomain.DocumentKindIdentity)).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find identity document: %w", err)
	}
	return clientDomain.ReconstructDocument(
		m.ID, m.ClientID, clientDomain.DocumentKind(m.Kind), m.Number,
		m.Verified, m.DeletedAt, m.CreatedAt,
	), nil
}
