package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/drivehub/service-rental/internal/application"
	"github.com/drivehub/service-rental/internal/common/auth"
	"github.com/drivehub/service-rental/internal/common/middleware"
	"github.com/drivehub/service-rental/internal/common/response"
)

// AdminContractHandler handles staff HTTP requests for contract management.
type AdminContractHandler struct {
	service ContractService
}

// NewAdminContractHandler creates a new AdminContractHandler.
func NewAdminContractHandler(service ContractService) *AdminContractHandler {
	return &AdminContractHandler{service: service}
}

// RegisterRoutes registers admin contract routes.
func (h *AdminContractHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/contracts", h.ListContracts)
		admin.GET("/stats/contracts", h.ContractStats)
		admin.POST("/contracts/:id/confirm", h.byID(h.service.ConfirmContract))
		admin.POST("/contracts/:id/cancellation/confirm", h.byID(h.service.ConfirmCancellation))
		admin.POST("/contracts/:id/cancellation/reject", h.byID(h.service.RejectCancellation))
		admin.POST("/contracts/:id/cancel", h.byID(h.service.CancelByAdmin))
		admin.POST("/contracts/:id/start", h.byID(h.service.StartRental))
		admin.POST("/contracts/:id/complete", h.byID(h.service.CompleteRental))
	}
}

// byID adapts a single-contract admin operation to a gin handler.
func (h *AdminContractHandler) byID(op func(ctx context.Context, id uuid.UUID) (*application.ContractDTO, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		contractID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.BadRequest(c, "invalid contract ID")
			return
		}

		result, err := op(c.Request.Context(), contractID)
		if err != nil {
			response.Error(c, err)
			return
		}

		response.Success(c, result)
	}
}

// ListContracts handles GET /api/v1/admin/contracts.
func (h *AdminContractHandler) ListContracts(c *gin.Context) {
	page, limit := parsePagination(c)

	filter := application.ContractFilter{State: c.Query("state")}
	if raw := c.Query("car_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid car_id")
			return
		}
		filter.CarID = &id
	}
	if raw := c.Query("client_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid client_id")
			return
		}
		filter.ClientID = &id
	}

	contracts, total, err := h.service.ListContracts(c.Request.Context(), filter, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, contracts, total, page, limit)
}

// ContractStats handles GET /api/v1/admin/stats/contracts.
func (h *AdminContractHandler) ContractStats(c *gin.Context) {
	stats, err := h.service.ContractStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
