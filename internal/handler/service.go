package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/drivehub/service-rental/internal/application"
	"github.com/drivehub/service-rental/internal/common/auth"
	"github.com/drivehub/service-rental/internal/common/domain"
	"github.com/drivehub/service-rental/internal/common/middleware"
)

// ContractService is the part of application.ContractService the HTTP layer uses.
type ContractService interface {
	CreateContract(ctx context.Context, clientID uuid.UUID, req application.CreateContractRequest) (*application.ContractDTO, error)
	AmendContract(ctx context.Context, contractID uuid.UUID, actor application.Actor, req application.AmendContractRequest) (*application.ContractDTO, error)
	ConfirmContract(ctx context.Context, contractID uuid.UUID) (*application.ContractDTO, error)
	RequestCancellation(ctx context.Context, contractID uuid.UUID, actor application.Actor) (*application.ContractDTO, error)
	ConfirmCancellation(ctx context.Context, contractID uuid.UUID) (*application.ContractDTO, error)
	RejectCancellation(ctx context.Context, contractID uuid.UUID) (*application.ContractDTO, error)
	CancelByAdmin(ctx context.Context, contractID uuid.UUID) (*application.ContractDTO, error)
	StartRental(ctx context.Context, contractID uuid.UUID) (*application.ContractDTO, error)
	CompleteRental(ctx context.Context, contractID uuid.UUID) (*application.ContractDTO, error)
	GetContract(ctx context.Context, contractID uuid.UUID, actor application.Actor) (*application.ContractDTO, error)
	ListClientContracts(ctx context.Context, clientID uuid.UUID, page, limit int) (*domain.PaginatedResult[application.ContractDTO], error)
	ListContracts(ctx context.Context, filter application.ContractFilter, page, limit int) ([]application.ContractDTO, int64, error)
	ContractStats(ctx context.Context) (*application.ContractStatsDTO, error)
	CheckAvailability(ctx context.Context, carID uuid.UUID, start, end string) (*application.AvailabilityDTO, error)
}

var _ ContractService = (*application.ContractService)(nil)

// actorFrom builds the caller identity set by the auth middleware.
func actorFrom(c *gin.Context) (application.Actor, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return application.Actor{}, false
	}
	role, _ := middleware.GetUserRole(c)
	return application.Actor{ID: userID, Admin: role == auth.RoleAdmin}, true
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
