package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lending-service/internal/usecase/reporting"
)

// ReportHandler serves the stats views.
type ReportHandler struct {
	uc  *reporting.Usecase
	log *zap.Logger
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(uc *reporting.Usecase, log *zap.Logger) *ReportHandler {
	return &ReportHandler{uc: uc, log: log}
}

// Overview handles GET /v1/reports/overview. The report is recomputed
// from a fresh snapshot on every call.
func (h *ReportHandler) Overview(c *gin.Context) {
	overview, err := h.uc.Overview(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}
