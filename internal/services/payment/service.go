package payment

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/apperr"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/notify"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/services/gateway"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/services/wallet"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/store"
)

const proofDir = "payments"

// ProofStore keeps uploaded proof files.
type ProofStore interface {
	Save(dir, originalName string, data []byte) (string, error)
	Remove(path string) error
}

// Gateway opens hosted checkouts for card payments.
type Gateway interface {
	CreateCheckout(ctx context.Context, in gateway.CheckoutRequest) (*gateway.Checkout, error)
	ValidateSignature(incomingSig string, body []byte) bool
}

// JobSyncer refreshes job status after a booking is paid.
type JobSyncer interface {
	Sync(ctx context.Context, b *models.Booking)
}

type Service struct {
	Store    store.Store
	Notifier notify.Notifier
	Files    ProofStore
	Wallet   *wallet.WalletService
	Jobs     JobSyncer
	// Gateway is nil when card checkout is not configured.
	Gateway Gateway
	Now     func() time.Time
}

func NewService(st store.Store, n notify.Notifier, files ProofStore, w *wallet.WalletService, jobs JobSyncer, gw Gateway) *Service {
	return &Service{
		Store:    st,
		Notifier: n,
		Files:    files,
		Wallet:   w,
		Jobs:     jobs,
		Gateway:  gw,
		Now:      time.Now,
	}
}

type InitializeInput struct {
	BookingID     uuid.UUID
	PaymentType   models.PaymentType
	PaymentMethod string
	DiscountCode  string
}

// Initialize opens the payment of a booking waiting for payment. Manual
// payments skip straight to awaiting_confirmation.
func (s *Service) Initialize(ctx context.Context, caller models.Caller, in InitializeInput) (*models.Payment, error) {
	if in.BookingID == uuid.Nil {
		return nil, apperr.Validation("bookingId is required")
	}
	if !in.PaymentType.IsValid() {
		return nil, apperr.Validation("paymentType must be manual, payment_proof or card")
	}

	b, err := s.Store.GetBooking(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsPoster(caller.UserID) && !caller.IsAdmin() {
		return nil, apperr.Unauthorized("only the customer who posted the booking can pay for it")
	}
	if b.Status != models.BookingPaymentPending {
		return nil, apperr.Conflict("booking is %s, payment can only be initialized while payment_pending", b.Status)
	}
	if in.PaymentType == models.PaymentTypeCard && s.Gateway == nil {
		return nil, apperr.Validation("card payments are not available")
	}

	existing, err := s.Store.ListPaymentsByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	for _, p := range existing {
		if p.Status == models.PaymentReported {
			return nil, apperr.Conflict("payment %s was reported, retry it before paying again", p.ID)
		}
		return nil, apperr.Conflict("booking already has payment %s", p.ID)
	}

	now := s.Now()
	p := &models.Payment{
		ID:            uuid.New(),
		BookingID:     b.ID,
		Amount:        b.Payment.Amount,
		PaymentType:   in.PaymentType,
		PaymentMethod: strings.TrimSpace(in.PaymentMethod),
		Status:        models.PaymentPending,
	}
	if p.PaymentType == models.PaymentTypeManual {
		p.Status = models.PaymentAwaitingConfirmation
	}

	if r := s.redeemableReward(ctx, in.DiscountCode, now); r != nil {
		awardID := r.AwardID
		p.OriginalAmount = p.Amount
		p.Amount = applyDiscount(p.Amount, r.Value)
		p.DiscountApplied = true
		p.DiscountValue = r.Value
		p.DiscountCode = r.Code
		p.AwardID = &awardID
	}

	if p.PaymentType == models.PaymentTypeCard {
		if err := s.openCheckout(ctx, b, p); err != nil {
			return nil, err
		}
	}

	if err := s.Store.CreatePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	if b.HasSeeker() {
		s.notify(*b.SeekerID, models.NotifPaymentCreated, "Payment initialized",
			fmt.Sprintf("The customer started a %s payment for %q", p.PaymentType, b.Title), p)
	}
	return p, nil
}

func (s *Service) openCheckout(ctx context.Context, b *models.Booking, p *models.Payment) error {
	req := gateway.CheckoutRequest{
		MerchantRef: p.ID.String(),
		Amount:      p.Amount,
		Method:      p.PaymentMethod,
		ItemName:    b.Title,
	}
	if u, err := s.Store.GetUser(ctx, b.PosterID); err == nil {
		req.CustomerName, req.CustomerEmail, req.CustomerPhone = u.Name, u.Email, u.Phone
	}

	checkout, err := s.Gateway.CreateCheckout(ctx, req)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, err, "could not open card checkout")
	}
	p.GatewayReference = checkout.Reference
	p.CheckoutURL = checkout.CheckoutURL
	return nil
}

// ProofFile is an uploaded proof of payment.
type ProofFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// UploadProof stores a proof for a payment_proof payment and moves it to
// awaiting_confirmation. A second upload replaces the first.
func (s *Service) UploadProof(ctx context.Context, caller models.Caller, paymentID uuid.UUID, file ProofFile) (*models.Payment, error) {
	if len(file.Data) == 0 {
		return nil, apperr.Validation("paymentProof file is required")
	}

	p, b, err := s.load(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.PaymentType != models.PaymentTypePaymentProof {
		return nil, apperr.InvalidState("payment %s is %s, proofs are only accepted for payment_proof", p.ID, p.PaymentType)
	}
	if !b.IsPoster(caller.UserID) && !caller.IsAdmin() {
		return nil, apperr.Unauthorized("only the paying customer can upload a proof")
	}
	if p.Status == models.PaymentConfirmed || p.Status == models.PaymentCompleted {
		return nil, apperr.InvalidState("payment is already %s", p.Status)
	}

	path, err := s.Files.Save(proofDir, file.Filename, file.Data)
	if err != nil {
		return nil, fmt.Errorf("store proof: %w", err)
	}

	previous, from := p.ProofPath, p.Status
	p.ProofPath = path
	p.ProofFilename = file.Filename
	p.ProofContentType = file.ContentType
	p.ProofData = file.Data
	p.Status = models.PaymentAwaitingConfirmation

	if err := s.Store.UpdatePayment(ctx, p, from); err != nil {
		s.removeProof(path)
		return nil, err
	}
	if previous != "" && previous != path {
		s.removeProof(previous)
	}

	if b.HasSeeker() {
		s.notify(*b.SeekerID, models.NotifPaymentProof, "Payment proof uploaded",
			fmt.Sprintf("The customer uploaded a payment proof for %q, please confirm it", b.Title), p)
	}
	return p, nil
}

// GetProof returns the payment carrying the proof binary. Visible to both
// parties of the booking and to admins.
func (s *Service) GetProof(ctx context.Context, caller models.Caller, paymentID uuid.UUID) (*models.Payment, error) {
	p, b, err := s.load(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !canView(caller, b) {
		return nil, apperr.Unauthorized("you cannot view this payment")
	}
	if !p.HasProof() {
		return nil, apperr.NotFound("payment %s has no proof", p.ID)
	}
	return p, nil
}

func (s *Service) GetByBooking(ctx context.Context, caller models.Caller, bookingID uuid.UUID) (*models.Payment, error) {
	b, err := s.Store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !canView(caller, b) {
		return nil, apperr.Unauthorized("you cannot view this payment")
	}
	return s.Store.GetPaymentByBooking(ctx, bookingID)
}

// Confirm records the seeker's answer. A confirmation settles payment,
// reward, booking and wallet in one transaction; a rejection only reports
// the payment. Both writes require the payment to still be
// awaiting_confirmation, so concurrent answers settle once.
func (s *Service) Confirm(ctx context.Context, caller models.Caller, paymentID uuid.UUID, confirmed bool, notes string) (*models.Payment, error) {
	p, b, err := s.load(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !b.IsSeeker(caller.UserID) {
		return nil, apperr.Unauthorized("only the job seeker can confirm this payment")
	}
	if p.Status != models.PaymentAwaitingConfirmation {
		return nil, apperr.InvalidState("payment is %s, expected awaiting_confirmation", p.Status)
	}

	now := s.Now()
	notes = strings.TrimSpace(notes)
	p.SeekerConfirmation = models.SeekerConfirmation{
		Confirmed:   &confirmed,
		ConfirmedAt: &now,
		Notes:       notes,
	}

	if !confirmed {
		p.Status = models.PaymentReported
		if err := s.Store.UpdatePayment(ctx, p, models.PaymentAwaitingConfirmation); err != nil {
			return nil, err
		}
		msg := fmt.Sprintf("The job seeker reported the payment for %q", b.Title)
		if notes != "" {
			msg += ": " + notes
		}
		s.notify(b.PosterID, models.NotifPaymentReported, "Payment disputed", msg, p)
		return p, nil
	}

	p.Status = models.PaymentConfirmed
	p.CompletedAt = &now

	var paid *models.Booking
	err = s.Store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.UpdatePayment(ctx, p, models.PaymentAwaitingConfirmation); err != nil {
			return err
		}
		if err := s.redeem(ctx, tx, p, now); err != nil {
			return err
		}
		var err error
		paid, err = s.settleBooking(ctx, tx, p, string(models.PaymentConfirmed), now, true)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notify(b.PosterID, models.NotifPaymentConfirmed, "Payment confirmed",
		fmt.Sprintf("The job seeker confirmed your payment for %q", b.Title), p)
	s.syncJobs(ctx, paid)
	return p, nil
}

// redeem consumes the discount code of p. A code that vanished or was
// redeemed by a concurrent payment does not block the confirmation.
func (s *Service) redeem(ctx context.Context, tx store.Store, p *models.Payment, now time.Time) error {
	if !p.DiscountApplied || p.DiscountCode == "" {
		return nil
	}
	r, err := tx.FindReward(ctx, p.DiscountCode)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			log.Printf("[payment] reward %q for payment %s no longer exists", p.DiscountCode, p.ID)
			return nil
		}
		return err
	}
	if err := tx.MarkRewardUsed(ctx, r.ID, now); err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			log.Printf("[payment] reward %q for payment %s was already redeemed", p.DiscountCode, p.ID)
			return nil
		}
		return err
	}
	return nil
}

// settleBooking marks the booking of p paid and, when credit is set, pays
// the seeker. A booking that was already paid is never credited again.
// It must run inside a transaction.
func (s *Service) settleBooking(ctx context.Context, tx store.Store, p *models.Payment, bookingPayment string, now time.Time, credit bool) (*models.Booking, error) {
	b, err := tx.GetBooking(ctx, p.BookingID)
	if err != nil {
		return nil, err
	}

	from := b.Status
	switch from {
	case models.BookingPaymentPending, models.BookingPaid:
	default:
		return nil, apperr.InvalidState("booking is %s, expected payment_pending", from)
	}
	if from == models.BookingPaid {
		credit = false
	} else {
		b.Status = models.BookingPaid
		b.Dates.Paid = &now
	}
	b.Payment.Status = bookingPayment
	if err := tx.UpdateBooking(ctx, b, from); err != nil {
		return nil, err
	}

	if credit && b.HasSeeker() && p.Amount > 0 {
		desc := fmt.Sprintf("Payment for booking %q", b.Title)
		if err := s.Wallet.CreditSeeker(ctx, tx, *b.SeekerID, p.Amount, p.ID, desc); err != nil {
			return nil, fmt.Errorf("credit seeker: %w", err)
		}
	}
	return b, nil
}

// Retry clears a reported payment so the customer can pay again.
func (s *Service) Retry(ctx context.Context, caller models.Caller, paymentID uuid.UUID) (*models.Booking, error) {
	p, b, err := s.load(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !b.IsPoster(caller.UserID) {
		return nil, apperr.Unauthorized("only the customer who posted the booking can retry the payment")
	}
	if p.Status != models.PaymentReported {
		return nil, apperr.InvalidState("payment is %s, only reported payments can be retried", p.Status)
	}

	reset, err := s.deleteAndReset(ctx, p)
	if err != nil {
		return nil, err
	}
	s.removeProof(p.ProofPath)
	return reset, nil
}

// AdminSetStatus forces the payment status. completed also settles the
// booking like CustomerComplete.
func (s *Service) AdminSetStatus(ctx context.Context, caller models.Caller, paymentID uuid.UUID, status models.PaymentStatus) (*models.Payment, error) {
	if !caller.IsAdmin() {
		return nil, apperr.Unauthorized("only admins can override payment status")
	}
	if !status.IsValid() {
		return nil, apperr.Validation("invalid payment status %q", status)
	}

	p, _, err := s.load(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if status == models.PaymentCompleted {
		return s.complete(ctx, p)
	}

	from := p.Status
	p.Status = status
	if err := s.Store.UpdatePayment(ctx, p, from); err != nil {
		return nil, err
	}
	log.Printf("[payment] admin %s set payment %s to %s", caller.UserID, p.ID, status)
	return p, nil
}

// CustomerComplete lets the paying customer close the payment directly.
// A payment the seeker reported stays open until it is retried or an admin
// resolves it.
func (s *Service) CustomerComplete(ctx context.Context, caller models.Caller, paymentID uuid.UUID) (*models.Payment, error) {
	p, b, err := s.load(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !b.IsPoster(caller.UserID) && !caller.IsAdmin() {
		return nil, apperr.Unauthorized("only the customer who posted the booking can complete the payment")
	}
	if p.Status == models.PaymentReported && !caller.IsAdmin() {
		return nil, apperr.InvalidState("the job seeker reported this payment, retry it instead")
	}
	return s.complete(ctx, p)
}

func (s *Service) complete(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	if p.Status == models.PaymentCompleted {
		return nil, apperr.InvalidState("payment is already completed")
	}

	now := s.Now()
	// A confirmed payment already credited the seeker.
	from := p.Status
	credit := from != models.PaymentConfirmed
	p.Status = models.PaymentCompleted
	p.CompletedAt = &now

	var paid *models.Booking
	err := s.Store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.UpdatePayment(ctx, p, from); err != nil {
			return err
		}
		var err error
		paid, err = s.settleBooking(ctx, tx, p, string(models.PaymentCompleted), now, credit)
		return err
	})
	if err != nil {
		return nil, err
	}

	if paid.HasSeeker() {
		s.notify(*paid.SeekerID, models.NotifPaymentCompleted, "Payment completed",
			fmt.Sprintf("The payment for %q has been completed", paid.Title), p)
	}
	s.syncJobs(ctx, paid)
	return p, nil
}

// DeleteAsAdmin removes any payment and its proof file.
func (s *Service) DeleteAsAdmin(ctx context.Context, caller models.Caller, paymentID uuid.UUID) error {
	if !caller.IsAdmin() {
		return apperr.Unauthorized("only admins can delete payments")
	}
	p, err := s.Store.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	if err := s.Store.DeletePayment(ctx, p.ID); err != nil {
		return err
	}
	s.removeProof(p.ProofPath)
	return nil
}

// DeleteAsCustomer withdraws an unsettled payment and puts the booking back
// to payment_pending.
func (s *Service) DeleteAsCustomer(ctx context.Context, caller models.Caller, paymentID uuid.UUID) (*models.Booking, error) {
	p, b, err := s.load(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !b.IsPoster(caller.UserID) {
		return nil, apperr.Unauthorized("only the customer who posted the booking can delete its payment")
	}
	switch p.Status {
	case models.PaymentPending, models.PaymentAwaitingConfirmation, models.PaymentReported:
	default:
		return nil, apperr.InvalidState("payment is %s and can no longer be deleted", p.Status)
	}

	reset, err := s.deleteAndReset(ctx, p)
	if err != nil {
		return nil, err
	}
	s.removeProof(p.ProofPath)
	return reset, nil
}

func (s *Service) deleteAndReset(ctx context.Context, p *models.Payment) (*models.Booking, error) {
	var reset *models.Booking
	err := s.Store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.DeletePayment(ctx, p.ID); err != nil {
			return err
		}
		b, err := tx.GetBooking(ctx, p.BookingID)
		if err != nil {
			return err
		}
		from := b.Status
		if from == models.BookingPaid {
			return apperr.InvalidState("booking is already paid")
		}
		b.Status = models.BookingPaymentPending
		b.Payment.Status = string(models.PaymentPending)
		if err := tx.UpdateBooking(ctx, b, from); err != nil {
			return err
		}
		reset = b
		return nil
	})
	return reset, err
}

// HandleGatewayCallback applies a signed settlement notice. Paid checkouts
// move to awaiting_confirmation; repeats and other statuses are no-ops.
func (s *Service) HandleGatewayCallback(ctx context.Context, signature string, body []byte) (*models.Payment, error) {
	if s.Gateway == nil {
		return nil, apperr.InvalidState("card payments are not configured")
	}
	if !s.Gateway.ValidateSignature(signature, body) {
		return nil, apperr.Unauthorized("invalid callback signature")
	}
	cb, err := gateway.ParseCallback(body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "invalid callback")
	}

	p, err := s.callbackPayment(ctx, cb)
	if err != nil {
		return nil, err
	}
	if cb.Status != gateway.StatusPaid {
		log.Printf("[payment] gateway reported %s for payment %s", cb.Status, p.ID)
		return p, nil
	}
	if p.Status != models.PaymentPending {
		return p, nil
	}

	p.Status = models.PaymentAwaitingConfirmation
	if cb.PaymentMethod != "" {
		p.PaymentMethod = cb.PaymentMethod
	}
	if err := s.Store.UpdatePayment(ctx, p, models.PaymentPending); err != nil {
		return nil, err
	}

	if b, err := s.Store.GetBooking(ctx, p.BookingID); err == nil && b.HasSeeker() {
		s.notify(*b.SeekerID, models.NotifPaymentPending, "Card payment received",
			fmt.Sprintf("The card payment for %q went through, please confirm it", b.Title), p)
	}
	return p, nil
}

// callbackPayment finds the card payment a notice refers to, by gateway
// reference or else by merchant ref (the payment id).
func (s *Service) callbackPayment(ctx context.Context, cb *gateway.Callback) (*models.Payment, error) {
	var (
		p   *models.Payment
		err error
	)
	if cb.Reference != "" {
		p, err = s.Store.GetPaymentByReference(ctx, cb.Reference)
	} else {
		id, perr := uuid.Parse(cb.MerchantRef)
		if perr != nil {
			return nil, apperr.Validation("callback merchant_ref %q is not a payment id", cb.MerchantRef)
		}
		p, err = s.Store.GetPayment(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if p.PaymentType != models.PaymentTypeCard || p.GatewayReference == "" {
		return nil, apperr.NotFound("payment %s has no card checkout", p.ID)
	}
	return p, nil
}

func (s *Service) load(ctx context.Context, paymentID uuid.UUID) (*models.Payment, *models.Booking, error) {
	p, err := s.Store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, nil, err
	}
	b, err := s.Store.GetBooking(ctx, p.BookingID)
	if err != nil {
		return nil, nil, err
	}
	return p, b, nil
}

func canView(caller models.Caller, b *models.Booking) bool {
	return caller.IsAdmin() || b.IsPoster(caller.UserID) || b.IsSeeker(caller.UserID)
}

func (s *Service) syncJobs(ctx context.Context, b *models.Booking) {
	if s.Jobs == nil || b == nil {
		return
	}
	s.Jobs.Sync(ctx, b)
}

func (s *Service) removeProof(path string) {
	if path == "" || s.Files == nil {
		return
	}
	if err := s.Files.Remove(path); err != nil {
		log.Printf("[payment] remove proof %s: %v", path, err)
	}
}

func (s *Service) notify(userID uuid.UUID, typ models.NotificationType, title, message string, p *models.Payment) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.Notify(notify.Message{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
		References: map[string]any{
			"paymentId": p.ID.String(),
			"bookingId": p.BookingID.String(),
			"status":    string(p.Status),
		},
	})
}
