package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/services/booking"
)

type BookingHandler struct {
	Bookings *booking.Service
}

func NewBookingHandler(svc *booking.Service) *BookingHandler {
	return &BookingHandler{Bookings: svc}
}

type createBookingRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Payment     struct {
		Amount int64 `json:"amount"`
	} `json:"payment"`
	Location struct {
		Address     string          `json:"address"`
		Coordinates json.RawMessage `json:"coordinates"`
	} `json:"location"`
	SeekerID *uuid.UUID `json:"seekerId"`
	JobID    *uuid.UUID `json:"jobId"`
}

func (h *BookingHandler) Create(c *fiber.Ctx) error {
	caller, err := getCaller(c)
	if err != nil {
		return unauthorized(c)
	}

	var req createBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	b, err := h.Bookings.Create(c.UserContext(), caller, booking.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Amount:      req.Payment.Amount,
		Address:     req.Location.Address,
		Coordinates: req.Location.Coordinates,
		SeekerID:    req.SeekerID,
		JobID:       req.JobID,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Booking created",
		"data":    b,
	})
}

func (h *BookingHandler) ListMine(c *fiber.Ctx) error {
	caller, err := getCaller(c)
	if err != nil {
		return unauthorized(c)
	}
	role, err := booking.ParseRole(c.Query("role"))
	if err != nil {
		return fail(c, err)
	}

	list, err := h.Bookings.ListByUser(c.UserContext(), caller, role)
	if err != nil {
		return fail(c, err)
	}
	return success(c, "", list)
}

func (h *BookingHandler) ListAvailable(c *fiber.Ctx) error {
	caller, err := getCaller(c)
	if err != nil {
		return unauthorized(c)
	}
	list, err := h.Bookings.ListAvailable(c.UserContext(), caller)
	if err != nil {
		return fail(c, err)
	}
	return success(c, "", list)
}

type bookingWithNames struct {
	models.Booking
	PosterName string `json:"poster_name"`
	SeekerName string `json:"seeker_name,omitempty"`
}

func (h *BookingHandler) ListAll(c *fiber.Ctx) error {
	caller, err := getCaller(c)
	if err != nil {
		return unauthorized(c)
	}
	list, err := h.Bookings.ListAll(c.UserContext(), caller)
	if err != nil {
		return fail(c, err)
	}

	out := make([]bookingWithNames, 0, len(list))
	for _, b := range list {
		row := bookingWithNames{Booking: b}
		if b.Poster != nil {
			row.PosterName = b.Poster.Name
		}
		if b.Seeker != nil {
			row.SeekerName = b.Seeker.Name
		}
		out = append(out, row)
	}
	return success(c, "", out)
}

func (h *BookingHandler) Get(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	b, err := h.Bookings.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return success(c, "", b)
}

type updateStatusRequest struct {
	Status   models.BookingStatus `json:"status"`
	SeekerID *uuid.UUID           `json:"seekerId"`
}

func (h *BookingHandler) UpdateStatus(c *fiber.Ctx) error {
	caller, err := getCaller(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	b, err := h.Bookings.UpdateStatus(c.UserContext(), caller, id, booking.StatusUpdate{
		Status:   req.Status,
		SeekerID: req.SeekerID,
	})
	if err != nil {
		return fail(c, err)
	}
	return success(c, "Booking status updated", b)
}

func (h *BookingHandler) Delete(c *fiber.Ctx) error {
	caller, err := getCaller(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.Bookings.Delete(c.UserContext(), caller, id); err != nil {
		return fail(c, err)
	}
	return success(c, "Booking deleted", nil)
}
