package handlers

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/apperr"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/models"
)

func getUserUUID(c *fiber.Ctx) (uuid.UUID, error) {
	v := c.Locals("userId")
	if v == nil {
		return uuid.Nil, fmt.Errorf("unauthorized")
	}

	switch t := v.(type) {
	case uuid.UUID:
		return t, nil
	case string:
		return uuid.Parse(t)
	case []byte:
		return uuid.ParseBytes(t)
	default:
		return uuid.Nil, fmt.Errorf("invalid userId type: %T", v)
	}
}

// getCaller builds the acting user from the JWT locals.
func getCaller(c *fiber.Ctx) (models.Caller, error) {
	uid, err := getUserUUID(c)
	if err != nil {
		return models.Caller{}, err
	}
	var role models.Role
	switch t := c.Locals("role").(type) {
	case models.Role:
		role = t
	case string:
		role, _ = models.ParseRole(t)
	}
	return models.Caller{UserID: uid, Role: role}, nil
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid %s", name)
	}
	return id, nil
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Unauthorized"})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": message})
}

// fail renders err with the status of its kind.
func fail(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	if status >= fiber.StatusInternalServerError {
		log.Printf("[api] %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
		"error":   kind,
	})
}

func success(c *fiber.Ctx, message string, data interface{}) error {
	body := fiber.Map{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(body)
}

// ErrorHandler renders errors escaping handlers and middleware in the same envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if fe, isFiber := err.(*fiber.Error); isFiber {
		return c.Status(fe.Code).JSON(fiber.Map{"success": false, "message": fe.Message})
	}
	return fail(c, err)
}
