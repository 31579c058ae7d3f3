package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"babybites/app/client/whatsapp"
	"babybites/app/config"
	"babybites/app/service/queue"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
)

// Server is the thin webhook edge. It verifies, parses and enqueues inbound
// messages, all real work happens in the engine off the request path.
type Server struct {
	cfg      *config.Config
	queueSvc *queue.Service
	app      *fiber.App
}

type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				Messages []struct {
					From string `json:"from"`
					Type string `json:"type"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

func New(di *do.Injector) (*Server, error) {
	s := &Server{
		cfg:      do.MustInvoke[*config.Config](di),
		queueSvc: do.MustInvoke[*queue.Service](di),
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.app.Get("/webhook", s.handleVerify)
	s.app.Post("/webhook", s.handleReceive)

	return s, nil
}

func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.app.Shutdown()
	}()

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)

	return s.app.Listen(addr)
}

// handleVerify answers Meta's webhook subscription challenge.
func (s *Server) handleVerify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == s.cfg.WhatsApp.VerifyToken {
		slog.Info("Webhook verified")
		return c.SendString(challenge)
	}

	slog.Warn("Webhook verification failed", "mode", mode)

	return c.Status(fiber.StatusForbidden).SendString("Forbidden")
}

// handleReceive returns 200 immediately, Meta requires a response within 20s.
func (s *Server) handleReceive(c *fiber.Ctx) error {
	body := c.Body()

	signature := c.Get("X-Hub-Signature-256")
	if !whatsapp.VerifySignature(body, signature, s.cfg.WhatsApp.AppSecret) {
		slog.Warn("Webhook signature verification failed")
		return c.SendStatus(fiber.StatusForbidden)
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.Warn("Invalid webhook body", "error", err)
		return c.SendStatus(fiber.StatusBadRequest)
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			for _, msg := range change.Value.Messages {
				if msg.Type != "text" {
					continue
				}

				phone := strings.TrimPrefix(msg.From, "+")
				s.queueSvc.Add(phone, msg.Text.Body)
			}
		}
	}

	return c.SendStatus(fiber.StatusOK)
}
