package engine

import (
	"context"
	"log/slog"
	"time"

	"babybites/app/client/whatsapp"
	"babybites/app/service/queue"
	"babybites/app/service/router"

	"github.com/samber/do"
)

// Service drains the inbound queue and processes messages one at a time.
// Sequential draining keeps at most one in-flight request per phone number.
type Service struct {
	routerSvc *router.Service
	queueSvc  *queue.Service
	sender    *whatsapp.Sender
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		routerSvc: do.MustInvoke[*router.Service](di),
		queueSvc:  do.MustInvoke[*queue.Service](di),
		sender:    do.MustInvoke[*whatsapp.Sender](di),
	}, nil
}

func (s *Service) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-s.queueSvc.Channel():
			if !ok {
				return
			}

			s.process(ctx, msg)
		}
	}
}

func (s *Service) process(ctx context.Context, msg queue.Message) {
	start := time.Now()

	reply := s.routerSvc.HandleCommand(ctx, msg.Phone, msg.Text)

	if err := s.sender.SendText(ctx, msg.Phone, reply); err != nil {
		slog.Error("Failed to send reply",
			"phone", msg.Phone,
			"error", err,
		)
		return
	}

	slog.Info("Processed message",
		"phone", msg.Phone,
		"text", msg.Text,
		"duration", time.Since(start))
}
