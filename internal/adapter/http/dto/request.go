package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/budgetledger/internal/domain"
	"github.com/iho/budgetledger/internal/usecase"
)

// CreateTransactionRequest represents a request to record a transaction.
type CreateTransactionRequest struct {
	CategoryID           string          `json:"category_id" validate:"required"`
	SourceAccountID      *string         `json:"source_account_id,omitempty" validate:"omitempty,min=1"`
	DestinationAccountID *string         `json:"destination_account_id,omitempty" validate:"omitempty,min=1"`
	Amount               decimal.Decimal `json:"amount"`
	Kind                 domain.Kind     `json:"kind" validate:"required"`
	TransactionDate      *Date           `json:"transaction_date" validate:"required"`
	Description          *string         `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransactionRequest) ToUseCaseInput(userID string) usecase.CreateTransactionInput {
	input := usecase.CreateTransactionInput{
		UserID:               userID,
		CategoryID:           r.CategoryID,
		SourceAccountID:      r.SourceAccountID,
		DestinationAccountID: r.DestinationAccountID,
		Amount:               r.Amount,
		Kind:                 r.Kind,
		Description:          r.Description,
	}
	if r.TransactionDate != nil {
		input.TransactionDate = r.TransactionDate.Time
	}
	return input
}

// UpdateTransactionRequest is a partial update. The account fields accept
// null to detach the account.
type UpdateTransactionRequest struct {
	CategoryID           *string          `json:"category_id,omitempty" validate:"omitempty,min=1"`
	SourceAccountID      OptionalID       `json:"source_account_id"`
	DestinationAccountID OptionalID       `json:"destination_account_id"`
	Amount               *decimal.Decimal `json:"amount,omitempty"`
	Kind                 *domain.Kind     `json:"kind,omitempty"`
	TransactionDate      *Date            `json:"transaction_date,omitempty"`
	Description          *string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateTransactionRequest) ToUseCaseInput(userID, id string) usecase.UpdateTransactionInput {
	input := usecase.UpdateTransactionInput{
		UserID:             userID,
		TransactionID:      id,
		CategoryID:         r.CategoryID,
		SourceAccount:      r.SourceAccountID.Update(),
		DestinationAccount: r.DestinationAccountID.Update(),
		Amount:             r.Amount,
		Kind:               r.Kind,
		Description:        r.Description,
	}
	if r.TransactionDate != nil {
		date := r.TransactionDate.Time
		input.TransactionDate = &date
	}
	return input
}

// ListByCategoriesRequest asks for every record in a set of categories.
type ListByCategoriesRequest struct {
	CategoryIDs []string `json:"category_ids" validate:"max=100,dive,required"`
}

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name           string             `json:"name" validate:"required,max=255"`
	Type           domain.AccountType `json:"type" validate:"required,oneof=checking savings credit"`
	Currency       string             `json:"currency" validate:"required,len=3"`
	InitialBalance decimal.Decimal    `json:"initial_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput(userID string) usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		UserID:         userID,
		Name:           r.Name,
		Type:           r.Type,
		Currency:       r.Currency,
		InitialBalance: r.InitialBalance,
	}
}

// SetBalanceRequest overwrites an account balance outside the ledger.
type SetBalanceRequest struct {
	Balance *decimal.Decimal `json:"balance" validate:"required"`
}

// CreateBudgetRequest represents a request to create a monthly budget.
type CreateBudgetRequest struct {
	Name     string          `json:"name" validate:"required,max=255"`
	Month    *Date           `json:"month" validate:"required"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency" validate:"required,len=3"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateBudgetRequest) ToUseCaseInput(userID string) usecase.CreateBudgetInput {
	input := usecase.CreateBudgetInput{
		UserID:   userID,
		Name:     r.Name,
		Amount:   r.Amount,
		Currency: r.Currency,
	}
	if r.Month != nil {
		input.Month = r.Month.Time
	}
	return input
}

// CreateCategoryRequest represents a request to add a category to a budget.
type CreateCategoryRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	ColorHex string `json:"color_hex,omitempty" validate:"omitempty,hexcolor,len=7"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateCategoryRequest) ToUseCaseInput(userID, budgetID string) usecase.CreateCategoryInput {
	return usecase.CreateCategoryInput{
		UserID:   userID,
		BudgetID: budgetID,
		Name:     r.Name,
		ColorHex: r.ColorHex,
	}
}
