package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/apperr"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/services/jobstatus"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/store"
)

type JobHandler struct {
	Store store.Store
	Jobs  *jobstatus.Service
}

func NewJobHandler(st store.Store, jobs *jobstatus.Service) *JobHandler {
	return &JobHandler{Store: st, Jobs: jobs}
}

type createJobRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (h *JobHandler) Create(c *fiber.Ctx) error {
	caller, err := getCaller(c)
	if err != nil {
		return unauthorized(c)
	}

	var req createJobRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Title) == "" {
		return badRequest(c, "title is required")
	}

	job := &models.Job{
		PosterID:    caller.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Status:      models.JobPending,
	}
	if err := h.Store.CreateJob(c.UserContext(), job); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Job created",
		"data":    job,
	})
}

func (h *JobHandler) Get(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	job, err := h.Store.GetJob(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return success(c, "", job)
}

// UpdateStatus is the admin review of a job; the overall status row is
// refreshed afterwards.
func (h *JobHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		Status models.JobStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if !req.Status.IsValid() {
		return fail(c, apperr.Validation("invalid job status %q", req.Status))
	}

	ctx := c.UserContext()
	if err := h.Store.UpdateJobStatus(ctx, id, req.Status); err != nil {
		return fail(c, err)
	}
	row, err := h.Jobs.Recompute(ctx, id, nil)
	if err != nil {
		return fail(c, err)
	}
	return success(c, "Job status updated", row)
}
