package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/realtime"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/store"
	"github.com/Windi-Fikriyansyah/platfrom_be_gig/internal/utils"
)

const notificationPageSize = 50

type NotificationHandler struct {
	Store     store.Store
	Hub       *realtime.Hub
	JWTSecret string
	TicketTTL time.Duration
}

func NewNotificationHandler(st store.Store, hub *realtime.Hub, jwtSecret string, ticketTTL time.Duration) *NotificationHandler {
	return &NotificationHandler{Store: st, Hub: hub, JWTSecret: jwtSecret, TicketTTL: ticketTTL}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}
	limit := c.QueryInt("limit", notificationPageSize)
	if limit <= 0 || limit > 200 {
		limit = notificationPageSize
	}

	list, err := h.Store.ListNotifications(c.UserContext(), uid, limit)
	if err != nil {
		return fail(c, err)
	}
	return success(c, "", list)
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	uid, err := getUserUUID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.Store.MarkNotificationRead(c.UserContext(), id, uid, time.Now()); err != nil {
		return fail(c, err)
	}
	return success(c, "Notification marked as read", nil)
}

// Ticket hands out a short-lived token for ?token= on the socket upgrade,
// so the long-lived session token never shows up in a URL.
func (h *NotificationHandler) Ticket(c *fiber.Ctx) error {
	caller, err := getCaller(c)
	if err != nil {
		return unauthorized(c)
	}
	ticket, err := utils.SignJWT(h.JWTSecret, caller.UserID.String(), string(caller.Role), h.TicketTTL)
	if err != nil {
		return fail(c, err)
	}
	return success(c, "", fiber.Map{
		"ticket":     ticket,
		"expires_in": int(h.TicketTTL.Seconds()),
	})
}

// Upgrade authenticates the socket from ?token= before handing it to the
// websocket handler; browsers cannot set headers on the upgrade request.
func (h *NotificationHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	tokenStr := c.Query("token")
	if tokenStr == "" {
		tokenStr = c.Cookies("jm_token")
	}
	_, claims, err := utils.ParseJWT(h.JWTSecret, tokenStr)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return fiber.ErrUnauthorized
	}

	c.Locals("userId", uid)
	return c.Next()
}

// WebSocketHandler streams the user's notifications until the socket closes.
func (h *NotificationHandler) WebSocketHandler(c *websocket.Conn) {
	userUUID, ok := c.Locals("userId").(uuid.UUID)
	if !ok {
		log.Println("[ws] missing user on socket")
		c.Close()
		return
	}

	client := &realtime.Client{
		ID:     uuid.New().String(),
		UserID: userUUID,
		Conn:   realtime.NewWebSocketConn(c),
		Send:   make(chan []byte, 256),
	}

	h.Hub.RegisterClient(client)
	defer func() {
		h.Hub.UnregisterClient(client)
		log.Printf("[ws] user %s disconnected", userUUID)
	}()

	go func() {
		for msg := range client.Send {
			if err := client.Conn.WriteText(msg); err != nil {
				log.Printf("[ws] write error for user %s: %v", userUUID, err)
				return
			}
		}
	}()

	// Reads only keep the connection alive and detect close.
	for {
		var payload map[string]interface{}
		if err := c.ReadJSON(&payload); err != nil {
			break
		}
		if msgType, _ := payload["type"].(string); msgType == "ping" {
			if err := client.Conn.WriteText([]byte(`{"type":"pong"}`)); err != nil {
				break
			}
		}
	}
}
