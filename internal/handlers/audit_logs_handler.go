package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/httpresp"
	"github.com/lebarbier/lebarbier-api/internal/infra/repository"
	"github.com/lebarbier/lebarbier-api/internal/models"
	"github.com/lebarbier/lebarbier-api/internal/pagination"
)

type auditLogReader interface {
	List(ctx context.Context, f repository.AuditLogFilter) ([]models.AuditLog, int64, error)
}

type AuditLogsHandler struct {
	logs auditLogReader
}

func NewAuditLogsHandler(logs *repository.AuditLogGormRepository) *AuditLogsHandler {
	return &AuditLogsHandler{logs: logs}
}

// List pages through the audit trail, newest first. from and to are
// calendar days (YYYY-MM-DD), both inclusive.
func (h *AuditLogsHandler) List(c *gin.Context) {
	var f repository.AuditLogFilter
	if !bindQuery(c, &f) {
		return
	}
	f.Params = f.Params.Normalize(50)

	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		httperr.Respond(c, httperr.Validation("invalid_range", "La date de fin précède la date de début."))
		return
	}

	logs, total, err := h.logs.List(c.Request.Context(), f)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}

	httpresp.OK(c, gin.H{
		"logs":       logs,
		"pagination": pagination.NewMeta(f.Params, total),
	})
}
