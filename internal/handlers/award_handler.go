package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/models"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/store"
)

type AwardHandler struct {
	Store store.Store
}

func NewAwardHandler(st store.Store) *AwardHandler {
	return &AwardHandler{Store: st}
}

type createAwardRequest struct {
	UserID  uuid.UUID `json:"userId"`
	Period  string    `json:"period"`
	Rewards []struct {
		Code       string    `json:"code"`
		Value      float64   `json:"value"`
		ValidUntil time.Time `json:"validUntil"`
	} `json:"rewards"`
}

func (h *AwardHandler) Create(c *fiber.Ctx) error {
	var req createAwardRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.UserID == uuid.Nil || len(req.Rewards) == 0 {
		return badRequest(c, "userId and at least one reward are required")
	}

	ctx := c.UserContext()
	if _, err := h.Store.GetUser(ctx, req.UserID); err != nil {
		return fail(c, err)
	}

	award := &models.Award{UserID: req.UserID, Period: strings.TrimSpace(req.Period)}
	for _, r := range req.Rewards {
		code := strings.TrimSpace(r.Code)
		if code == "" || r.Value <= 0 || r.Value > 100 {
			return badRequest(c, "each reward needs a code and a value between 0 and 100")
		}
		if r.ValidUntil.IsZero() {
			return badRequest(c, "each reward needs validUntil")
		}
		award.Rewards = append(award.Rewards, models.Reward{
			Code:       code,
			Value:      r.Value,
			ValidUntil: r.ValidUntil,
		})
	}

	if err := h.Store.CreateAward(ctx, award); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Award created",
		"data":    award,
	})
}

func (h *AwardHandler) ListMine(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}
	awards, err := h.Store.ListAwardsByUser(c.UserContext(), uid)
	if err != nil {
		return fail(c, err)
	}
	return success(c, "", awards)
}
