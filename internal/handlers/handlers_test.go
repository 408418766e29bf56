package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/notify/notifytest"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/realtime"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/services/booking"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/services/jobstatus"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/services/payment"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/services/wallet"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/storage"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/store/memstore"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/utils"
)

const testSecret = "handler-secret"

type testEnv struct {
	app    *fiber.App
	store  *memstore.Store
	poster models.User
	seeker models.User
	other  models.User
	admin  models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := memstore.New()
	notes := &notifytest.Recorder{}
	files := storage.NewLocalFiles(t.TempDir())
	jobs := jobstatus.NewService(st)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler, BodyLimit: 6 << 20})
	RegisterRoutes(app, Handlers{
		Booking:       NewBookingHandler(booking.NewService(st, notes, files)),
		Payment:       NewPaymentHandler(payment.NewService(st, notes, files, wallet.NewWalletService(), jobs, nil)),
		OverallStatus: NewOverallStatusHandler(jobs),
		Job:           NewJobHandler(st, jobs),
		Award:         NewAwardHandler(st),
		Notification:  NewNotificationHandler(st, realtime.NewHub(), testSecret, time.Minute),
	}, testSecret)

	return &testEnv{
		app:    app,
		store:  st,
		poster: st.PutUser(models.User{Name: "Poster", Email: "p@example.com", Role: models.RoleCustomer}),
		seeker: st.PutUser(models.User{Name: "Seeker", Email: "s@example.com", Role: models.RoleJobSeeker}),
		other:  st.PutUser(models.User{Name: "Other", Email: "o@example.com", Role: models.RoleJobSeeker}),
		admin:  st.PutUser(models.User{Name: "Admin", Email: "a@example.com", Role: models.RoleAdmin}),
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, as *models.User, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return e.send(t, as, req)
}

func (e *testEnv) send(t *testing.T, as *models.User, req *http.Request) (int, envelope) {
	t.Helper()
	if as != nil {
		tok, err := utils.SignJWT(testSecret, as.ID.String(), string(as.Role), 5*time.Minute)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func (e *testEnv) createBooking(t *testing.T, amount int64) models.Booking {
	t.Helper()
	status, env := e.do(t, &e.poster, "POST", "/api/booking", map[string]any{
		"title":       "Clean windows",
		"description": "Ground floor only",
		"category":    "cleaning",
		"payment":     map[string]any{"amount": amount},
		"location":    map[string]any{"address": "Jl. Melati 3", "coordinates": map[string]float64{"lat": -6.9, "lng": 107.6}},
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	return decode[models.Booking](t, env.Data)
}

func (e *testEnv) toPaymentPending(t *testing.T, b models.Booking) {
	t.Helper()
	path := "/api/booking/" + b.ID.String() + "/status"
	status, env := e.do(t, &e.seeker, "PATCH", path, map[string]any{"seekerId": e.seeker.ID})
	require.Equal(t, fiber.StatusOK, status, env.Message)
	for _, step := range []struct {
		as *models.User
		to models.BookingStatus
	}{
		{&e.seeker, models.BookingInProgress},
		{&e.seeker, models.BookingCompletedBySeeker},
		{&e.poster, models.BookingPaymentPending},
	} {
		status, env := e.do(t, step.as, "PATCH", path, map[string]any{"status": step.to})
		require.Equal(t, fiber.StatusOK, status, env.Message)
	}
}

func TestRequiresToken(t *testing.T) {
	e := newTestEnv(t)
	status, env := e.do(t, nil, "GET", "/api/booking/user", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.False(t, env.Success)
}

func TestCreateBooking(t *testing.T) {
	e := newTestEnv(t)
	b := e.createBooking(t, 500)
	assert.Equal(t, models.BookingPending, b.Status)
	assert.Equal(t, e.poster.ID, b.PosterID)

	status, env := e.do(t, &e.poster, "POST", "/api/booking", map[string]any{"title": "x"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "validation", env.Error)

	status, _ = e.do(t, &e.seeker, "POST", "/api/booking", map[string]any{"title": "x"})
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestBookingStatusErrors(t *testing.T) {
	e := newTestEnv(t)
	b := e.createBooking(t, 500)
	path := "/api/booking/" + b.ID.String() + "/status"

	status, env := e.do(t, &e.seeker, "PATCH", path, map[string]any{"seekerId": e.seeker.ID})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, models.BookingAccepted, decode[models.Booking](t, env.Data).Status)

	status, env = e.do(t, &e.other, "PATCH", path, map[string]any{"status": "in_progress"})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "unauthorized", env.Error)

	status, env = e.do(t, &e.seeker, "PATCH", path, map[string]any{"status": "paid"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "invalid_transition", env.Error)

	status, _ = e.do(t, &e.seeker, "PATCH", "/api/booking/"+uuid.NewString()+"/status", map[string]any{"status": "in_progress"})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = e.do(t, &e.seeker, "GET", "/api/booking/not-a-uuid", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestBookingListings(t *testing.T) {
	e := newTestEnv(t)
	e.createBooking(t, 100)

	status, env := e.do(t, &e.seeker, "GET", "/api/booking/available", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]models.Booking](t, env.Data), 1)

	status, env = e.do(t, &e.poster, "GET", "/api/booking/user?role=poster", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]models.Booking](t, env.Data), 1)

	status, _ = e.do(t, &e.poster, "GET", "/api/booking/user?role=boss", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = e.do(t, &e.poster, "GET", "/api/booking/all", nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, env = e.do(t, &e.admin, "GET", "/api/booking/all", nil)
	require.Equal(t, fiber.StatusOK, status)
	rows := decode[[]map[string]any](t, env.Data)
	require.Len(t, rows, 1)
	assert.Equal(t, "Poster", rows[0]["poster_name"])
}

func TestManualPaymentOverHTTP(t *testing.T) {
	e := newTestEnv(t)
	b := e.createBooking(t, 500)
	e.toPaymentPending(t, b)

	status, env := e.do(t, &e.poster, "POST", "/api/payment/initialize", map[string]any{
		"bookingId":     b.ID,
		"paymentType":   "manual",
		"paymentMethod": "cash",
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	p := decode[models.Payment](t, env.Data)
	assert.Equal(t, models.PaymentAwaitingConfirmation, p.Status)

	status, env = e.do(t, &e.poster, "POST", "/api/payment/initialize", map[string]any{
		"bookingId":   b.ID,
		"paymentType": "manual",
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "conflict", env.Error)

	status, _ = e.do(t, &e.seeker, "POST", "/api/payment/"+p.ID.String()+"/confirm", map[string]any{})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, env = e.do(t, &e.seeker, "POST", "/api/payment/"+p.ID.String()+"/confirm", map[string]any{"confirmed": true})
	require.Equal(t, fiber.StatusOK, status, env.Message)
	assert.Equal(t, models.PaymentConfirmed, decode[models.Payment](t, env.Data).Status)

	status, env = e.do(t, &e.seeker, "GET", "/api/booking/"+b.ID.String(), nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, models.BookingPaid, decode[models.Booking](t, env.Data).Status)

	status, env = e.do(t, &e.poster, "GET", "/api/payment/booking/"+b.ID.String(), nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, p.ID, decode[models.Payment](t, env.Data).ID)
}

func proofRequest(t *testing.T, path, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("paymentProof", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestProofUploadAndDownload(t *testing.T) {
	e := newTestEnv(t)
	b := e.createBooking(t, 500)
	e.toPaymentPending(t, b)

	status, env := e.do(t, &e.poster, "POST", "/api/payment/initialize", map[string]any{
		"bookingId":   b.ID,
		"paymentType": "payment_proof",
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	p := decode[models.Payment](t, env.Data)
	assert.Equal(t, models.PaymentPending, p.Status)

	proofPath := "/api/payment/" + p.ID.String() + "/proof"

	status, _ = e.send(t, &e.poster, proofRequest(t, proofPath, "receipt.exe", []byte("MZ")))
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = e.send(t, &e.poster, proofRequest(t, proofPath, "big.png", make([]byte, maxProofSize+1)))
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, env = e.send(t, &e.poster, proofRequest(t, proofPath, "receipt.png", []byte("\x89PNG fake")))
	require.Equal(t, fiber.StatusOK, status, env.Message)
	uploaded := decode[models.Payment](t, env.Data)
	assert.Equal(t, models.PaymentAwaitingConfirmation, uploaded.Status)
	assert.Equal(t, "receipt.png", uploaded.ProofFilename)
	assert.NotContains(t, string(env.Data), "proof_data")

	req := httptest.NewRequest("GET", proofPath, nil)
	tok, err := utils.SignJWT(testSecret, e.seeker.ID.String(), string(e.seeker.Role), 5*time.Minute)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "receipt.png")
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "\x89PNG fake", string(raw))
}

func TestReportAndRetryOverHTTP(t *testing.T) {
	e := newTestEnv(t)
	b := e.createBooking(t, 500)
	e.toPaymentPending(t, b)

	_, env := e.do(t, &e.poster, "POST", "/api/payment/initialize", map[string]any{"bookingId": b.ID, "paymentType": "manual"})
	p := decode[models.Payment](t, env.Data)

	status, env := e.do(t, &e.seeker, "POST", "/api/payment/"+p.ID.String()+"/confirm", map[string]any{"confirmed": false, "notes": "not received"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, models.PaymentReported, decode[models.Payment](t, env.Data).Status)

	status, _ = e.do(t, &e.seeker, "POST", "/api/payment/"+p.ID.String()+"/retry", nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, env = e.do(t, &e.poster, "POST", "/api/payment/"+p.ID.String()+"/retry", nil)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	assert.Equal(t, models.BookingPaymentPending, decode[models.Booking](t, env.Data).Status)

	status, _ = e.do(t, &e.poster, "GET", "/api/payment/booking/"+b.ID.String(), nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestDiscountPreview(t *testing.T) {
	e := newTestEnv(t)
	b := e.createBooking(t, 1000)

	status, env := e.do(t, &e.admin, "POST", "/api/award", map[string]any{
		"userId":  e.poster.ID,
		"period":  "2026-10",
		"rewards": []map[string]any{{"code": "TENOFF", "value": 10, "validUntil": time.Now().Add(time.Hour)}},
	})
	require.Equal(t, fiber.StatusCreated, status, env.Message)

	status, env = e.do(t, &e.poster, "GET", fmt.Sprintf("/api/payment/discount?bookingId=%s&code=TENOFF", b.ID), nil)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	q := decode[payment.DiscountQuote](t, env.Data)
	assert.Equal(t, int64(900), q.DiscountedAmount)
	assert.Equal(t, 10.0, q.DiscountValue)

	status, env = e.do(t, &e.poster, "GET", "/api/award/me", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]models.Award](t, env.Data), 1)
}

func TestOverallStatusEndpoints(t *testing.T) {
	e := newTestEnv(t)

	status, env := e.do(t, &e.poster, "POST", "/api/job", map[string]any{"title": "Renovate kitchen"})
	require.Equal(t, fiber.StatusCreated, status, env.Message)
	job := decode[models.Job](t, env.Data)

	status, _ = e.do(t, &e.poster, "POST", "/api/overallStatus/update/"+job.ID.String(), nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, env = e.do(t, &e.admin, "POST", "/api/overallStatus/update/"+job.ID.String(), nil)
	require.Equal(t, fiber.StatusOK, status, env.Message)
	row := decode[models.OverallStatus](t, env.Data)
	assert.Equal(t, models.OverallPending, row.OverallJobStatus)

	status, env = e.do(t, &e.admin, "PATCH", "/api/job/"+job.ID.String()+"/status", map[string]any{"status": "approved"})
	require.Equal(t, fiber.StatusOK, status, env.Message)
	updated := decode[models.OverallStatus](t, env.Data)
	assert.Equal(t, models.OverallActive, updated.OverallJobStatus)
	assert.Equal(t, row.ID, updated.ID)

	status, _ = e.do(t, &e.admin, "POST", "/api/overallStatus/update/"+job.ID.String()+"/"+uuid.NewString(), nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, env = e.do(t, &e.admin, "POST", "/api/overallStatus/update-all", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 0, decode[jobstatus.BulkResult](t, env.Data).Total)

	status, env = e.do(t, &e.admin, "GET", "/api/overallStatus/analytics", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(env.Data), `"total":1`)
}

func TestNotificationsEndpoints(t *testing.T) {
	e := newTestEnv(t)
	n := &models.Notification{UserID: e.seeker.ID, Type: models.NotifBookingStatus, Title: "Hi"}
	require.NoError(t, e.store.CreateNotification(context.Background(), n))

	status, env := e.do(t, &e.seeker, "GET", "/api/notifications", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]models.Notification](t, env.Data), 1)

	status, _ = e.do(t, &e.other, "PATCH", "/api/notifications/"+n.ID.String()+"/read", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = e.do(t, &e.seeker, "PATCH", "/api/notifications/"+n.ID.String()+"/read", nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestNotificationTicket(t *testing.T) {
	e := newTestEnv(t)

	status, _ := e.do(t, nil, "POST", "/api/notifications/ticket", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, env := e.do(t, &e.seeker, "POST", "/api/notifications/ticket", nil)
	require.Equal(t, fiber.StatusOK, status)
	body := decode[struct {
		Ticket    string `json:"ticket"`
		ExpiresIn int    `json:"expires_in"`
	}](t, env.Data)
	assert.Equal(t, 60, body.ExpiresIn)

	_, claims, err := utils.ParseJWT(testSecret, body.Ticket)
	require.NoError(t, err)
	assert.Equal(t, e.seeker.ID.String(), claims.UserID)
	assert.Equal(t, string(models.RoleJobSeeker), claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestGatewayCallbackWithoutGateway(t *testing.T) {
	e := newTestEnv(t)

	status, _ := e.do(t, nil, "POST", "/api/payment/gateway/callback", map[string]any{"reference": "x"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	req := httptest.NewRequest("POST", "/api/payment/gateway/callback", bytes.NewReader([]byte(`{"reference":"x"}`)))
	req.Header.Set("X-Callback-Signature", "abc")
	status, env := e.send(t, nil, req)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "invalid_state", env.Error)
}
