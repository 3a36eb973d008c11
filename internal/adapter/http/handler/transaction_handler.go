package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/budgetledger/internal/adapter/http/dto"
	"github.com/iho/budgetledger/internal/domain"
	"github.com/iho/budgetledger/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	CreateTransaction(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error)
	UpdateTransaction(ctx context.Context, input usecase.UpdateTransactionInput) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id string) error
	GetTransaction(ctx context.Context, userID, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) (*usecase.TransactionPage, error)
	ListByAccount(ctx context.Context, userID, accountID string, limit, offset int) (*usecase.TransactionPage, error)
	ListByCategories(ctx context.Context, userID string, categoryIDs []string) ([]*domain.Transaction, error)
	Summary(ctx context.Context, input usecase.SummaryInput) (*domain.Summary, error)
}

// TransactionHandler handles ledger record HTTP requests.
type TransactionHandler struct {
	transactionUC TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionUC TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionUC: transactionUC}
}

// Create records a new transaction.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateTransactionRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	record, err := h.transactionUC.CreateTransaction(r.Context(), req.ToUseCaseInput(userID))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(record))
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	record, err := h.transactionUC.GetTransaction(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(record))
}

// Update applies a partial update.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.UpdateTransactionRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	record, err := h.transactionUC.UpdateTransaction(r.Context(), req.ToUseCaseInput(userID, chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(record))
}

// Delete removes a transaction and reverses its balance effects.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.transactionUC.DeleteTransaction(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List lists transactions matching the query filters.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	input := usecase.ListTransactionsInput{
		UserID:     userID,
		CategoryID: optionalQuery(r, "category_id"),
		AccountID:  optionalQuery(r, "account_id"),
		Limit:      parseIntQuery(r, "limit", domain.DefaultPageSize),
		Offset:     parseIntQuery(r, "offset", 0),
	}

	var err error
	if input.From, err = parseDateQuery(r, "from"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err.Error())
		return
	}
	if input.To, err = parseDateQuery(r, "to"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err.Error())
		return
	}
	if raw := r.URL.Query().Get("kind"); raw != "" {
		kind, err := domain.ParseKind(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid query", err.Error())
			return
		}
		input.Kind = &kind
	}

	page, err := h.transactionUC.ListTransactions(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionPageFromUseCase(page))
}

// ListByAccount lists transactions touching an account.
func (h *TransactionHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	page, err := h.transactionUC.ListByAccount(
		r.Context(),
		userID,
		chi.URLParam(r, "id"),
		parseIntQuery(r, "limit", domain.DefaultPageSize),
		parseIntQuery(r, "offset", 0),
	)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionPageFromUseCase(page))
}

// ListByCategories returns every transaction in the requested categories.
func (h *TransactionHandler) ListByCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.ListByCategoriesRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	records, err := h.transactionUC.ListByCategories(r.Context(), userID, req.CategoryIDs)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransactionsResponse{
		Transactions: dto.TransactionsFromDomain(records),
		Total:        len(records),
	})
}

// Summary totals income and expenses over an optional window.
func (h *TransactionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	input := usecase.SummaryInput{
		UserID:    userID,
		AccountID: optionalQuery(r, "account_id"),
	}

	var err error
	if input.From, err = parseDateQuery(r, "from"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err.Error())
		return
	}
	if input.To, err = parseDateQuery(r, "to"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err.Error())
		return
	}

	summary, err := h.transactionUC.Summary(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryFromDomain(summary))
}
