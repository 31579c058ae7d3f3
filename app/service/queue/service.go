package queue

import (
	"log/slog"

	"github.com/samber/do"
)

const bufferSize = 64

var _ do.Shutdownable = (*Service)(nil)

// Service buffers inbound WhatsApp messages between the webhook and the
// engine, so the webhook can return 200 immediately. A full queue drops the
// message rather than blocking the transport.
type Service struct {
	queue chan Message
}

type Message struct {
	Phone string
	Text  string
}

func New(_ *do.Injector) (*Service, error) {
	return &Service{
		queue: make(chan Message, bufferSize),
	}, nil
}

func (s *Service) Add(phone, text string) {
	defer func() {
		if r := recover(); r != nil {

		}
	}()

	select {
	case s.queue <- Message{phone, text}:
	default:
		slog.Warn("message queue is full", "phone", phone)
	}
}

func (s *Service) Channel() <-chan Message {
	return s.queue
}

func (s *Service) Shutdown() error {
	close(s.queue)

	return nil
}
