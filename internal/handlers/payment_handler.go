package handlers

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/services/payment"
)

const maxProofSize = 5 << 20

var proofTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".pdf":  "application/pdf",
}

type PaymentHandler struct {
	Payments *payment.Service
}

func NewPaymentHandler(svc *payment.Service) *PaymentHandler {
	return &PaymentHandler{Payments: svc}
}

type initializePaymentRequest struct {
	BookingID     uuid.UUID          `json:"bookingId"`
	PaymentType   models.PaymentType `json:"paymentType"`
	PaymentMethod string             `json:"paymentMethod"`
	DiscountInfo  *struct {
		Code string `json:"code"`
	} `json:"discountInfo"`
}

func (h *PaymentHandler) Initialize(c *fiber.Ctx) error {
	caller, err := getCaller(c)
	if err != nil {
		return unauthorized(c)
	}

	var req initializePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	in := payment.InitializeInput{
		BookingID:     req.BookingID,
		PaymentType:   req.PaymentType,
		PaymentMethod: req.PaymentMethod,
	}
	if req.DiscountInfo != nil {
		in.DiscountCode = req.DiscountInfo.Code
	}

	p, err := h.Payments.Initialize(c.UserContext(), caller, in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Payment initialized",
		"data":    p,
	})
}

func (h *PaymentHandler) Discount(c *fiber.Ctx) error {
	bookingID, err := uuid.Parse(c.Query("bookingId"))
	if err != nil {
		return badRequest(c, "bookingId is required")
	}
	q, err := h.Payments.CalculateDiscountedAmount(c.UserContext(), bookingID, c.Query("code"))
	if err != nil {
		return fail(c, err)
	}
	return success(c, "", q)
}

func (h *PaymentHandler) UploadProof(c *fiber.Ctx) error {
	caller, err := getCaller(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramUUID(c, "paymentId")
	if err != nil {
		return fail(c, err)
	}

	file, err := c.FormFile("paymentProof")
	if err != nil {
		return badRequest(c, "paymentProof file is required")
	}
	if file.Size <= 0 || file.Size > maxProofSize {
		return badRequest(c, "paymentProof must be between 1 byte and 5MB")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType, allowed := proofTypes[ext]
	if !allowed {
		return badRequest(c, "Only jpg, jpeg, png and pdf files are accepted")
	}

	f, err := file.Open()
	if err != nil {
		return fail(c, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxProofSize+1))
	if err != nil {
		return fail(c, err)
	}

	p, err := h.Payments.UploadProof(c.UserContext(), caller, id, payment.ProofFile{
		Filename:    filepath.Base(file.Filename),
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		return fail(c, err)
	}
	return success(c, "Payment proof uploaded", p)
}

func (h *PaymentHandler) GetProof(c *fiber.Ctx) error {
	caller, err := getCaller(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramUUID(c, "paymentId")
	if err != nil {
		return fail(c, err)
	}

	p, err := h.Payments.GetProof(c.UserContext(), caller, id)
	if err != nil {
		return fail(c, err)
	}

	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", p.ProofFilename))
	if len(p.ProofData) == 0 {
		return c.SendFile(p.ProofPath)
	}
	c.Set(fiber.HeaderContentType, p.ProofContentType)
	return c.Send(p.ProofData)
}

func (h *PaymentHandler) GetByBooking(c *fiber.Ctx) error {
	caller, err := getCaller(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramUUID(c, "bookingId")
	if err != nil {
		return fail(c, err)
	}
	p, err := h.Payments.GetByBooking(c.UserContext(), caller, id)
	if err != nil {
		return fail(c, err)
	}
	return success(c, "", p)
}

type confirmPaymentRequest struct {
	Confirmed *bool  `json:"confirmed"`
	Notes     string `json:"notes"`
}

func (h *PaymentHandler) Confirm(c *fiber.Ctx) error {
	caller, err := getCaller(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramUUID(c, "paymentId")
	if err != nil {
		return fail(c, err)
	}

	var req confirmPaymentRequest
	if err := c.BodyParser(&req); err != nil || req.Confirmed == nil {
		return badRequest(c, "confirmed is required")
	}

	p, err := h.Payments.Confirm(c.UserContext(), caller, id, *req.Confirmed, req.Notes)
	if err != nil {
		return fail(c, err)
	}
	msg := "Payment confirmed"
	if !*req.Confirmed {
		msg = "Payment reported"
	}
	return success(c, msg, p)
}

func (h *PaymentHandler) Retry(c *fiber.Ctx) error {
	caller, err := getCaller(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramUUID(c, "paymentId")
	if err != nil {
		return fail(c, err)
	}
	b, err := h.Payments.Retry(c.UserContext(), caller, id)
	if err != nil {
		return fail(c, err)
	}
	return success(c, "Payment cleared, you can pay again", b)
}

func (h *PaymentHandler) AdminSetStatus(c *fiber.Ctx) error {
	caller, err := getCaller(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramUUID(c, "paymentId")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		Status models.PaymentStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	p, err := h.Payments.AdminSetStatus(c.UserContext(), caller, id, req.Status)
	if err != nil {
		return fail(c, err)
	}
	return success(c, "Payment status updated", p)
}

func (h *PaymentHandler) Complete(c *fiber.Ctx) error {
	caller, err := getCaller(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramUUID(c, "paymentId")
	if err != nil {
		return fail(c, err)
	}
	p, err := h.Payments.CustomerComplete(c.UserContext(), caller, id)
	if err != nil {
		return fail(c, err)
	}
	return success(c, "Payment completed", p)
}

func (h *PaymentHandler) AdminDelete(c *fiber.Ctx) error {
	caller, err := getCaller(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramUUID(c, "paymentId")
	if err != nil {
		return fail(c, err)
	}
	if err := h.Payments.DeleteAsAdmin(c.UserContext(), caller, id); err != nil {
		return fail(c, err)
	}
	return success(c, "Payment deleted", nil)
}

func (h *PaymentHandler) CustomerDelete(c *fiber.Ctx) error {
	caller, err := getCaller(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramUUID(c, "paymentId")
	if err != nil {
		return fail(c, err)
	}
	b, err := h.Payments.DeleteAsCustomer(c.UserContext(), caller, id)
	if err != nil {
		return fail(c, err)
	}
	return success(c, "Payment deleted", b)
}

// HandleCallback receives card settlement notices; it sits outside the JWT group.
func (h *PaymentHandler) HandleCallback(c *fiber.Ctx) error {
	signature := c.Get("X-Callback-Signature")
	if signature == "" {
		return badRequest(c, "Missing signature")
	}

	if _, err := h.Payments.HandleGatewayCallback(c.UserContext(), signature, c.Body()); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
