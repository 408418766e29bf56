// Package memstore is an in-memory store.Store used by service and handler tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/apperr"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/store"
)

type data struct {
	users         map[uuid.UUID]models.User
	wallet        []models.WalletTransaction
	jobs          map[uuid.UUID]models.Job
	bookings      map[uuid.UUID]models.Booking
	payments      map[uuid.UUID]models.Payment
	awards        map[uuid.UUID]models.Award
	rewards       map[uuid.UUID]models.Reward
	overall       map[[2]uuid.UUID]models.OverallStatus
	notifications map[uuid.UUID]models.Notification
	seq           map[uuid.UUID]int64
	nextSeq       int64
}

func newData() data {
	return data{
		users:         map[uuid.UUID]models.User{},
		jobs:          map[uuid.UUID]models.Job{},
		bookings:      map[uuid.UUID]models.Booking{},
		payments:      map[uuid.UUID]models.Payment{},
		awards:        map[uuid.UUID]models.Award{},
		rewards:       map[uuid.UUID]models.Reward{},
		overall:       map[[2]uuid.UUID]models.OverallStatus{},
		notifications: map[uuid.UUID]models.Notification{},
		seq:           map[uuid.UUID]int64{},
	}
}

func (d data) clone() data {
	c := newData()
	for k, v := range d.users {
		c.users[k] = v
	}
	c.wallet = append([]models.WalletTransaction(nil), d.wallet...)
	for k, v := range d.jobs {
		c.jobs[k] = v
	}
	for k, v := range d.bookings {
		c.bookings[k] = v
	}
	for k, v := range d.payments {
		c.payments[k] = v
	}
	for k, v := range d.awards {
		c.awards[k] = v
	}
	for k, v := range d.rewards {
		c.rewards[k] = v
	}
	for k, v := range d.overall {
		c.overall[k] = v
	}
	for k, v := range d.notifications {
		c.notifications[k] = v
	}
	for k, v := range d.seq {
		c.seq[k] = v
	}
	c.nextSeq = d.nextSeq
	return c
}

type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	d    data

	// Now stamps CreatedAt/UpdatedAt; tests may pin it.
	Now func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{d: newData(), Now: time.Now}
}

// txStore runs nested Transaction calls inline.
type txStore struct {
	*Store
}

func (t txStore) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(t)
}

func (s *Store) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.d.clone()
	s.mu.Unlock()

	if err := fn(txStore{s}); err != nil {
		s.mu.Lock()
		s.d = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) stamp(id uuid.UUID) {
	s.d.nextSeq++
	s.d.seq[id] = s.d.nextSeq
}

// ---- seeding helpers

func (s *Store) PutUser(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.d.users[u.ID] = u
	return u
}

func (s *Store) WalletTransactions() []models.WalletTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.WalletTransaction(nil), s.d.wallet...)
}

func (s *Store) Reward(id uuid.UUID) (models.Reward, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.d.rewards[id]
	return r, ok
}

// ---- users & wallet

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.d.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return &u, nil
}

func (s *Store) CreditUserBalance(ctx context.Context, userID uuid.UUID, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.d.users[userID]
	if !ok {
		return apperr.NotFound("user %s not found", userID)
	}
	u.Balance += amount
	s.d.users[userID] = u
	return nil
}

func (s *Store) CreateWalletTransaction(ctx context.Context, trx *models.WalletTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if trx.ID == uuid.Nil {
		trx.ID = uuid.New()
	}
	trx.CreatedAt = s.Now()
	s.d.wallet = append(s.d.wallet, *trx)
	return nil
}

// ---- jobs

func (s *Store) CreateJob(ctx context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = models.JobPending
	}
	job.CreatedAt, job.UpdatedAt = s.Now(), s.Now()
	s.d.jobs[job.ID] = *job
	return nil
}

func (s *Store) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.d.jobs[id]
	if !ok {
		return nil, apperr.NotFound("job not found")
	}
	return &j, nil
}

func (s *Store) UpdateJobStatus(ctx context.Context, id uuid.UUID, status models.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.d.jobs[id]
	if !ok {
		return apperr.NotFound("job %s not found", id)
	}
	j.Status = status
	j.UpdatedAt = s.Now()
	s.d.jobs[id] = j
	return nil
}

// ---- bookings

func (s *Store) CreateBooking(ctx context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt, b.UpdatedAt = s.Now(), s.Now()
	stored := *b
	stored.Poster, stored.Seeker = nil, nil
	s.d.bookings[b.ID] = stored
	s.stamp(b.ID)
	return nil
}

func (s *Store) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.d.bookings[id]
	if !ok {
		return nil, apperr.NotFound("booking not found")
	}
	return &b, nil
}

func (s *Store) UpdateBooking(ctx context.Context, b *models.Booking, expected models.BookingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.d.bookings[b.ID]
	if !ok {
		return apperr.NotFound("booking not found")
	}
	if cur.Status != expected {
		return apperr.Conflict("booking status changed concurrently, expected %s", expected)
	}
	b.CreatedAt = cur.CreatedAt
	b.UpdatedAt = s.Now()
	stored := *b
	stored.Poster, stored.Seeker = nil, nil
	s.d.bookings[b.ID] = stored
	return nil
}

func (s *Store) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.d.bookings[id]; !ok {
		return apperr.NotFound("booking %s not found", id)
	}
	delete(s.d.bookings, id)
	return nil
}

// sortedBookings returns matches newest first; caller holds mu.
func (s *Store) sortedBookings(match func(models.Booking) bool, newestFirst bool) []models.Booking {
	out := []models.Booking{}
	for _, b := range s.d.bookings {
		if match(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return s.d.seq[out[i].ID] > s.d.seq[out[j].ID]
		}
		return s.d.seq[out[i].ID] < s.d.seq[out[j].ID]
	})
	return out
}

func (s *Store) ListBookingsByUser(ctx context.Context, userID uuid.UUID, role store.BookingRole) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedBookings(func(b models.Booking) bool {
		switch role {
		case store.RolePoster:
			return b.IsPoster(userID)
		case store.RoleSeeker:
			return b.IsSeeker(userID)
		default:
			return b.IsPoster(userID) || b.IsSeeker(userID)
		}
	}, true), nil
}

func (s *Store) ListAvailableBookings(ctx context.Context, excludePoster uuid.UUID) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedBookings(func(b models.Booking) bool {
		return b.Status == models.BookingPending && b.PosterID != excludePoster
	}, true), nil
}

func (s *Store) ListAllBookings(ctx context.Context) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.sortedBookings(func(models.Booking) bool { return true }, true)
	for i := range out {
		if u, ok := s.d.users[out[i].PosterID]; ok {
			out[i].Poster = &u
		}
		if out[i].HasSeeker() {
			if u, ok := s.d.users[*out[i].SeekerID]; ok {
				out[i].Seeker = &u
			}
		}
	}
	return out, nil
}

func (s *Store) ListBookingsByJob(ctx context.Context, jobID uuid.UUID) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedBookings(func(b models.Booking) bool {
		return b.JobID != nil && *b.JobID == jobID
	}, false), nil
}

// ---- payments

func (s *Store) CreatePayment(ctx context.Context, p *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt, p.UpdatedAt = s.Now(), s.Now()
	stored := *p
	stored.Booking = nil
	s.d.payments[p.ID] = stored
	s.stamp(p.ID)
	return nil
}

func (s *Store) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.d.payments[id]
	if !ok {
		return nil, apperr.NotFound("payment not found")
	}
	return &p, nil
}

func (s *Store) paymentsOf(bookingID uuid.UUID) []models.Payment {
	out := []models.Payment{}
	for _, p := range s.d.payments {
		if p.BookingID == bookingID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.d.seq[out[i].ID] < s.d.seq[out[j].ID] })
	return out
}

func (s *Store) GetPaymentByBooking(ctx context.Context, bookingID uuid.UUID) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps := s.paymentsOf(bookingID)
	if len(ps) == 0 {
		return nil, apperr.NotFound("payment not found")
	}
	p := ps[len(ps)-1]
	return &p, nil
}

func (s *Store) GetPaymentByReference(ctx context.Context, reference string) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.d.payments {
		if p.GatewayReference != "" && p.GatewayReference == reference {
			return &p, nil
		}
	}
	return nil, apperr.NotFound("payment not found")
}

func (s *Store) ListPaymentsByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paymentsOf(bookingID), nil
}

func (s *Store) UpdatePayment(ctx context.Context, p *models.Payment, expected models.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.d.payments[p.ID]
	if !ok {
		return apperr.NotFound("payment not found")
	}
	if cur.Status != expected {
		return apperr.Conflict("payment status changed concurrently, expected %s", expected)
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = s.Now()
	stored := *p
	stored.Booking = nil
	s.d.payments[p.ID] = stored
	return nil
}

func (s *Store) DeletePayment(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.d.payments[id]; !ok {
		return apperr.NotFound("payment %s not found", id)
	}
	delete(s.d.payments, id)
	return nil
}

// ---- awards

func (s *Store) CreateAward(ctx context.Context, a *models.Award) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range a.Rewards {
		for _, existing := range s.d.rewards {
			if existing.Code == r.Code {
				return apperr.Conflict("reward code %s already exists", r.Code)
			}
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt, a.UpdatedAt = s.Now(), s.Now()
	for i := range a.Rewards {
		if a.Rewards[i].ID == uuid.Nil {
			a.Rewards[i].ID = uuid.New()
		}
		a.Rewards[i].AwardID = a.ID
		s.d.rewards[a.Rewards[i].ID] = a.Rewards[i]
	}
	stored := *a
	stored.Rewards = nil
	s.d.awards[a.ID] = stored
	s.stamp(a.ID)
	return nil
}

func (s *Store) ListAwardsByUser(ctx context.Context, userID uuid.UUID) ([]models.Award, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Award{}
	for _, a := range s.d.awards {
		if a.UserID != userID {
			continue
		}
		for _, r := range s.d.rewards {
			if r.AwardID == a.ID {
				a.Rewards = append(a.Rewards, r)
			}
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return s.d.seq[out[i].ID] > s.d.seq[out[j].ID] })
	return out, nil
}

func (s *Store) FindReward(ctx context.Context, code string) (*models.Reward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.d.rewards {
		if r.Code == code {
			return &r, nil
		}
	}
	return nil, apperr.NotFound("reward not found")
}

func (s *Store) MarkRewardUsed(ctx context.Context, rewardID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.d.rewards[rewardID]
	if !ok || r.IsUsed {
		return apperr.Conflict("reward %s already redeemed", rewardID)
	}
	r.IsUsed = true
	r.UsedAt = &at
	s.d.rewards[rewardID] = r
	return nil
}

// ---- overall status

func (s *Store) UpsertOverallStatus(ctx context.Context, o *models.OverallStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]uuid.UUID{o.JobID, o.BookingID}
	if cur, ok := s.d.overall[key]; ok {
		o.ID = cur.ID
	} else if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	s.d.overall[key] = *o
	return nil
}

func (s *Store) GetOverallStatus(ctx context.Context, jobID, bookingID uuid.UUID) (*models.OverallStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.d.overall[[2]uuid.UUID{jobID, bookingID}]
	if !ok {
		return nil, apperr.NotFound("overall status not found")
	}
	return &o, nil
}

func (s *Store) OverallStatusCounts(ctx context.Context) (*store.StatusCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := &store.StatusCounts{
		ByJobStatus:     map[string]int64{},
		ByBookingStatus: map[string]int64{},
	}
	for _, o := range s.d.overall {
		out.Total++
		out.ByJobStatus[o.OverallJobStatus]++
		if o.OverallBookingStatus != nil {
			out.ByBookingStatus[*o.OverallBookingStatus]++
		}
	}
	return out, nil
}

// ---- notifications

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = s.Now()
	s.d.notifications[n.ID] = *n
	s.stamp(n.ID)
	return nil
}

func (s *Store) ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Notification{}
	for _, n := range s.d.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.d.seq[out[i].ID] > s.d.seq[out[j].ID] })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.d.notifications[id]
	if !ok || n.UserID != userID {
		return apperr.NotFound("notification %s not found", id)
	}
	n.IsRead = true
	n.ReadAt = &at
	s.d.notifications[id] = n
	return nil
}
