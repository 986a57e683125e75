package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lending-service/internal/adapter/gin/middleware"
	"lending-service/internal/usecase/lending"
)

// LendingHandler serves borrow, return, my-loans and the reconcile
// diagnostic.
type LendingHandler struct {
	uc  *lending.Usecase
	log *zap.Logger
}

// NewLendingHandler creates a LendingHandler.
func NewLendingHandler(uc *lending.Usecase, log *zap.Logger) *LendingHandler {
	return &LendingHandler{uc: uc, log: log}
}

// Borrow handles POST /v1/books/:id/borrow.
func (h *LendingHandler) Borrow(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	resp, err := h.uc.Borrow(c.Request.Context(), middleware.CurrentActor(c), lending.BorrowRequest{BookID: id})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": resp.Book, "loan": resp.Loan})
}

// Return handles POST /v1/books/:id/return.
func (h *LendingHandler) Return(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	resp, err := h.uc.Return(c.Request.Context(), middleware.CurrentActor(c), lending.ReturnRequest{BookID: id})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": resp.Book, "loan": resp.Loan})
}

// MyLoans handles GET /v1/loans.
func (h *LendingHandler) MyLoans(c *gin.Context) {
	loans, err := h.uc.OpenLoans(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"loans": loans})
}

// Reconcile handles GET /v1/books/:id/consistency. Read-only; a stale
// flag is reported in the body, never repaired here.
func (h *LendingHandler) Reconcile(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	report, err := h.uc.Reconcile(c.Request.Context(), lending.ReconcileRequest{BookID: id})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
