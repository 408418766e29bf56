package payment

import (
	"context"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/apperr"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/models"
)

// DiscountQuote previews the effect of a reward code on a booking amount.
type DiscountQuote struct {
	OriginalAmount   int64     `json:"original_amount"`
	DiscountedAmount int64     `json:"discounted_amount"`
	DiscountValue    float64   `json:"discount_value"`
	AwardID          uuid.UUID `json:"award_id"`
	Code             string    `json:"code"`
}

// applyDiscount takes pct percent off amount, rounded to the nearest unit.
func applyDiscount(amount int64, pct float64) int64 {
	if pct <= 0 {
		return amount
	}
	if pct >= 100 {
		return 0
	}
	return int64(math.Round(float64(amount) * (1 - pct/100)))
}

// CalculateDiscountedAmount validates code against the booking without
// touching any state.
func (s *Service) CalculateDiscountedAmount(ctx context.Context, bookingID uuid.UUID, code string) (*DiscountQuote, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.Validation("discount code is required")
	}

	b, err := s.Store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	r, err := s.Store.FindReward(ctx, code)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("discount code %s not found", code)
		}
		return nil, err
	}
	if r.IsUsed {
		return nil, apperr.Validation("discount code %s has already been used", code)
	}
	if !r.Redeemable(s.Now()) {
		return nil, apperr.Validation("discount code %s has expired", code)
	}

	return &DiscountQuote{
		OriginalAmount:   b.Payment.Amount,
		DiscountedAmount: applyDiscount(b.Payment.Amount, r.Value),
		DiscountValue:    r.Value,
		AwardID:          r.AwardID,
		Code:             r.Code,
	}, nil
}

// redeemableReward looks code up for Initialize. Unknown, used or expired
// codes are ignored so the payment proceeds at full price.
func (s *Service) redeemableReward(ctx context.Context, code string, now time.Time) *models.Reward {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}
	r, err := s.Store.FindReward(ctx, code)
	if err != nil {
		log.Printf("[payment] discount code %q ignored: %v", code, err)
		return nil
	}
	if !r.Redeemable(now) {
		log.Printf("[payment] discount code %q ignored: used or expired", code)
		return nil
	}
	return r
}
