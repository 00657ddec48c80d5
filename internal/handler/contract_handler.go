package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/drivehub/service-rental/internal/application"
	"github.com/drivehub/service-rental/internal/common/auth"
	"github.com/drivehub/service-rental/internal/common/middleware"
	"github.com/drivehub/service-rental/internal/common/response"
)

// ContractHandler handles HTTP requests for client contract operations.
type ContractHandler struct {
	service ContractService
}

// NewContractHandler creates a new ContractHandler.
func NewContractHandler(service ContractService) *ContractHandler {
	return &ContractHandler{service: service}
}

// RegisterRoutes registers all contract routes on the given router group.
func (h *ContractHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	contracts := r.Group("/api/v1/contracts")
	contracts.Use(authMW)
	{
		contracts.POST("", middleware.RequireRole(auth.RoleClient), h.CreateContract)
		contracts.GET("", h.ListContracts)
		contracts.GET("/:id", h.GetContract)
		contracts.PUT("/:id/period", h.AmendContract)
		contracts.POST("/:id/cancel", h.RequestCancellation)
	}

	r.GET("/api/v1/cars/:id/availability", h.CheckAvailability)
}

// CreateContract handles POST /api/v1/contracts.
func (h *ContractHandler) CreateContract(c *gin.Context) {
	clientID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateContract(c.Request.Context(), clientID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListContracts handles GET /api/v1/contracts. Callers only see their own contracts.
func (h *ContractHandler) ListContracts(c *gin.Context) {
	clientID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)
	result, err := h.service.ListClientContracts(c.Request.Context(), clientID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetContract handles GET /api/v1/contracts/:id.
func (h *ContractHandler) GetContract(c *gin.Context) {
	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid contract ID")
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.GetContract(c.Request.Context(), contractID, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// AmendContract handles PUT /api/v1/contracts/:id/period.
func (h *ContractHandler) AmendContract(c *gin.Context) {
	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid contract ID")
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.AmendContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.AmendContract(c.Request.Context(), contractID, actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RequestCancellation handles POST /api/v1/contracts/:id/cancel.
func (h *ContractHandler) RequestCancellation(c *gin.Context) {
	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid contract ID")
		return
	}

	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.RequestCancellation(c.Request.Context(), contractID, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CheckAvailability handles GET /api/v1/cars/:id/availability?start_date=&end_date=.
func (h *ContractHandler) CheckAvailability(c *gin.Context) {
	carID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid car ID")
		return
	}

	start, end := c.Query("start_date"), c.Query("end_date")
	if start == "" || end == "" {
		response.BadRequest(c, "start_date and end_date are required")
		return
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), carID, start, end)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
