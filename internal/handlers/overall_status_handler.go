package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/services/jobstatus"
)

type OverallStatusHandler struct {
	Jobs *jobstatus.Service
}

func NewOverallStatusHandler(svc *jobstatus.Service) *OverallStatusHandler {
	return &OverallStatusHandler{Jobs: svc}
}

// Update recomputes one job, optionally through one of its bookings.
func (h *OverallStatusHandler) Update(c *fiber.Ctx) error {
	jobID, err := paramUUID(c, "jobId")
	if err != nil {
		return fail(c, err)
	}

	var bookingID *uuid.UUID
	if raw := c.Params("bookingId"); raw != "" {
		id, err := paramUUID(c, "bookingId")
		if err != nil {
			return fail(c, err)
		}
		bookingID = &id
	}

	row, err := h.Jobs.Recompute(c.UserContext(), jobID, bookingID)
	if err != nil {
		return fail(c, err)
	}
	return success(c, "Overall status updated", row)
}

func (h *OverallStatusHandler) UpdateAll(c *fiber.Ctx) error {
	res, err := h.Jobs.RecomputeAll(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return success(c, "Overall statuses recomputed", res)
}

func (h *OverallStatusHandler) Analytics(c *fiber.Ctx) error {
	counts, err := h.Jobs.Analytics(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return success(c, "", counts)
}
