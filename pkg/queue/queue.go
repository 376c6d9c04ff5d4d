package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrQueueFull = errors.New("queue is full")

type Message struct {
	ID         string
	CreatedAt  time.Time
	RetryCount int
	Message    any
}

func NewMessage(message any) *Message {
	return &Message{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now(),
		RetryCount: 0,
		Message:    message,
	}
}

type Processor interface {
	Process(ctx context.Context, m Message) error
}

type ProcessorFunc func(ctx context.Context, m Message) error

func (f ProcessorFunc) Process(ctx context.Context, m Message) error {
	return f(ctx, m)
}

// Service processes messages one at a time. A message that fails is retried
// up to maxRetries times, waiting a little longer on every attempt.
type Service struct {
	name       string
	queue      chan Message
	quit       chan struct{}
	done       chan struct{}
	maxRetries int
	timeout    time.Duration

	logger *zap.Logger
}

func NewService(name string, maxRetries, bufferSize int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		name:       name,
		queue:      make(chan Message, bufferSize),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		maxRetries: maxRetries,
		timeout:    10 * time.Second,
		logger:     logger.With(zap.String("queue", name)),
	}
}

// Enqueue never blocks, it fails with ErrQueueFull when the buffer is full
func (s *Service) Enqueue(m Message) error {
	select {
	case s.queue <- m:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops the service and waits for Start to return. Messages still in
// the queue are dropped.
func (s *Service) Close() {
	close(s.quit)
	<-s.done
}

func (s *Service) Start(p Processor) error {
	defer close(s.done)

	for {
		select {
		case message := <-s.queue:
			err := s.process(p, message)
			if err == nil {
				continue
			}

			if message.RetryCount >= s.maxRetries {
				s.logger.Warn("dropping message", zap.String("id", message.ID), zap.Int("retries", message.RetryCount), zap.Error(err))
				continue
			}

			// back off before requeueing, the receiver is probably unavailable
			message.RetryCount++
			select {
			case <-time.After(time.Duration(message.RetryCount) * 100 * time.Millisecond):
			case <-s.quit:
				return nil
			}

			if err := s.Enqueue(message); err != nil {
				s.logger.Warn("dropping message", zap.String("id", message.ID), zap.Error(err))
			}
		case <-s.quit:
			if n := len(s.queue); n > 0 {
				s.logger.Info("closing with pending messages", zap.Int("pending", n))
			}
			return nil
		}
	}
}

func (s *Service) process(p Processor, m Message) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	return p.Process(ctx, m)
}
