// internal/api/handler/wallet.go
package handler

import (
	"fmt"
	"net/http"
	"strings"

	"coinquest/internal/api/types"
	"coinquest/internal/domain"
	"coinquest/internal/service"
	"coinquest/internal/util"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// MinDescriptionLength is the shortest description accepted for a balance change.
const MinDescriptionLength = 3

// WalletHandler handles HTTP requests related to wallet operations.
type WalletHandler struct {
	responder
	service service.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(svc service.WalletService, logger logrus.FieldLogger) *WalletHandler {
	return &WalletHandler{
		responder: responder{logger: logger},
		service:   svc,
	}
}

// AmountRequest represents the request body for earn, add and deduct.
type AmountRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (req AmountRequest) validate() error {
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", util.ErrInvalidInput)
	}
	if !domain.IsCents(req.Amount) {
		return fmt.Errorf("%w: amount must not have more than 2 decimal places", util.ErrInvalidInput)
	}
	if len(strings.TrimSpace(req.Description)) < MinDescriptionLength {
		return fmt.Errorf("%w: description must be at least %d characters", util.ErrInvalidInput, MinDescriptionLength)
	}
	return nil
}

// WalletChange is the response body of a balance-changing request.
// Transaction is omitted when nothing was recorded.
type WalletChange struct {
	Wallet      *domain.Wallet      `json:"wallet"`
	Transaction *domain.Transaction `json:"transaction,omitempty"`
}

// GetWallet returns the wallet with its recent transactions.
// GET /api/wallet
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	summary, err := h.service.GetSummary(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithData(w, http.StatusOK, "", summary)
}

// GetTransactions returns the newest ledger entries.
// GET /api/wallet/transactions?limit=N
func (h *WalletHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	if limit == 0 {
		limit = service.DefaultTransactionLimit
	}

	transactions, err := h.service.GetTransactions(r.Context(), userID, limit)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithData(w, http.StatusOK, "", types.NewListResponse(transactions, limit))
}

// Earn credits lucre.
// POST /api/wallet/earn
func (h *WalletHandler) Earn(w http.ResponseWriter, r *http.Request) {
	h.credit(w, r, domain.TransactionTypeEarning, "Lucre earned")
}

// AddDiscretionary credits the discretionary balance.
// POST /api/wallet/discretionary/add
func (h *WalletHandler) AddDiscretionary(w http.ResponseWriter, r *http.Request) {
	h.credit(w, r, domain.TransactionTypeIncome, "Funds added")
}

func (h *WalletHandler) credit(w http.ResponseWriter, r *http.Request, kind domain.TransactionType, message string) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req AmountRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		h.respondWithError(w, err)
		return
	}

	wallet, transaction, err := h.service.Credit(r.Context(), userID, req.Amount, kind, strings.TrimSpace(req.Description))
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithData(w, http.StatusOK, message, WalletChange{Wallet: wallet, Transaction: transaction})
}

// DeductDiscretionary spends from the discretionary balance.
// POST /api/wallet/discretionary/deduct
func (h *WalletHandler) DeductDiscretionary(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req AmountRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		h.respondWithError(w, err)
		return
	}

	wallet, transaction, err := h.service.Debit(r.Context(), userID, req.Amount, strings.TrimSpace(req.Description))
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithData(w, http.StatusOK, "Funds deducted", WalletChange{Wallet: wallet, Transaction: transaction})
}

// Payout banks the lucre balance.
// POST /api/wallet/payout
func (h *WalletHandler) Payout(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	wallet, transaction, err := h.service.Payout(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	message := "Payout processed"
	if transaction == nil {
		message = "Nothing to pay out"
	}
	h.respondWithData(w, http.StatusOK, message, WalletChange{Wallet: wallet, Transaction: transaction})
}

// SetExpenses replaces the monthly expense breakdown.
// PUT /api/wallet/expenses
func (h *WalletHandler) SetExpenses(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	var req domain.Expenses
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	if !req.Validate() {
		h.respondWithError(w, fmt.Errorf("%w: expenses must be non-negative amounts in cents", util.ErrInvalidInput))
		return
	}

	wallet, err := h.service.SetExpenses(r.Context(), userID, req)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithData(w, http.StatusOK, "Expenses updated", WalletChange{Wallet: wallet})
}
