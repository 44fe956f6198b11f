package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AyaSox/Recruitment-system-sub000/internal/models"
	"github.com/AyaSox/Recruitment-system-sub000/internal/service"
	appErrors "github.com/AyaSox/Recruitment-system-sub000/pkg/errors"
	"github.com/AyaSox/Recruitment-system-sub000/pkg/response"
)

// AuditHandler exposes the audit trail query endpoint.
type AuditHandler struct {
	audit *service.AuditService
}

// NewAuditHandler constructs AuditHandler.
func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List godoc
// @Summary Query the audit trail
// @Description Paginated audit entries, newest first. Admin only.
// @Tags Audit
// @Produce json
// @Param resource query string false "Filter by resource type"
// @Param userId query string false "Filter by acting user"
// @Param from query string false "RFC3339 lower bound"
// @Param to query string false "RFC3339 upper bound"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	var filter models.AuditFilter
	filter.Resource = c.Query("resource")
	filter.UserID = c.Query("userId")

	if raw := c.Query("from"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be RFC3339"))
			return
		}
		filter.From = &ts
	}
	if raw := c.Query("to"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must be RFC3339"))
			return
		}
		filter.To = &ts
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}

	entries, total, err := h.audit.Query(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	response.JSON(c, http.StatusOK, entries, &models.Pagination{Page: page, PageSize: size, TotalCount: total})
}
