package wallet

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/store"
)

// Ledger is the subset of the store the wallet writes to.
type Ledger interface {
	CreditUserBalance(ctx context.Context, userID uuid.UUID, amount int64) error
	CreateWalletTransaction(ctx context.Context, trx *models.WalletTransaction) error
}

var _ Ledger = (store.Store)(nil)

type WalletService struct{}

func NewWalletService() *WalletService {
	return &WalletService{}
}

// CreditSeeker adds a confirmed payment to the job seeker's balance and
// writes the ledger entry. Call it with a transactional store.
func (s *WalletService) CreditSeeker(ctx context.Context, tx Ledger, userID uuid.UUID, amount int64, paymentID uuid.UUID, description string) error {
	if amount <= 0 {
		return errors.New("amount to credit must be greater than zero")
	}

	// 1. Balance, atomically
	if err := tx.CreditUserBalance(ctx, userID, amount); err != nil {
		return err
	}

	// 2. Ledger
	ledger := models.WalletTransaction{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      amount,
		Type:        models.WalletTrxCredit,
		Description: description,
		PaymentID:   &paymentID,
	}
	return tx.CreateWalletTransaction(ctx, &ledger)
}
