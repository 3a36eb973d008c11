package handler

import (
	"context"
	"net/http"

	"github.com/iho/budgetledger/internal/adapter/http/dto"
	"github.com/iho/budgetledger/internal/domain"
	"github.com/iho/budgetledger/internal/usecase"
)

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	ReconcileAccount(ctx context.Context, userID, accountID string) (*usecase.ReconciliationResult, error)
	GenerateReport(ctx context.Context, userID string) (*usecase.ReconciliationReport, error)
}

// AuditLister reads the audit trail.
type AuditLister interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// ReconciliationHandler exposes the ledger consistency checks and the
// audit trail of the caller.
type ReconciliationHandler struct {
	reconciliationUC ReconciliationService
	audit            AuditLister
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconciliationUC ReconciliationService, audit AuditLister) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliationUC: reconciliationUC, audit: audit}
}

// Report checks every account of the caller. With ?account_id= it checks
// only that account.
func (h *ReconciliationHandler) Report(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if accountID := r.URL.Query().Get("account_id"); accountID != "" {
		result, err := h.reconciliationUC.ReconcileAccount(r.Context(), userID, accountID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, dto.ReconciliationResultFromUseCase(result))
		return
	}

	report, err := h.reconciliationUC.GenerateReport(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromUseCase(report))
}

// AuditLog lists the caller's audit entries, newest first.
func (h *ReconciliationHandler) AuditLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit, offset := domain.ValidatePagination(
		parseIntQuery(r, "limit", domain.DefaultPageSize),
		parseIntQuery(r, "offset", 0),
	)

	filter := domain.AuditFilter{
		UserID:       userID,
		Action:       r.URL.Query().Get("action"),
		ResourceType: r.URL.Query().Get("resource_type"),
		ResourceID:   r.URL.Query().Get("resource_id"),
		Limit:        limit,
		Offset:       offset,
	}

	var err error
	if filter.StartDate, err = parseDateQuery(r, "from"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err.Error())
		return
	}
	if filter.EndDate, err = parseDateQuery(r, "to"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err.Error())
		return
	}

	logs, err := h.audit.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, domain.NewStorageError("list audit logs", err))
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAuditLogsResponse{
		Entries: dto.AuditLogsFromDomain(logs),
		Limit:   limit,
		Offset:  offset,
	})
}
