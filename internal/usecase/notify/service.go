package notify

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"healthquiz/internal/handler/http/requestid"
	"healthquiz/internal/resilience/circuitbreaker"
)

const (
	workerPoolTimeout   = 5 * time.Second  // Timeout for acquiring worker slot
	notificationTimeout = 30 * time.Second // Timeout for individual notification
)

// Service dispatches notifications without blocking the caller.
type Service interface {
	// NotifyReport sends r to every enabled report channel in the background.
	NotifyReport(ctx context.Context, r *Report) error

	// NotifyQuizResult emails r to r.Email in the background. It is a no-op
	// when r.Email is empty.
	NotifyQuizResult(ctx context.Context, r *QuizResult) error

	// GetChannelHealth returns the state of every channel.
	GetChannelHealth() []ChannelHealthStatus

	// Shutdown waits for in-flight notifications or ctx, whichever ends first.
	Shutdown(ctx context.Context) error
}

// ChannelHealthStatus represents the health status of a notification channel.
type ChannelHealthStatus struct {
	Name               string `json:"name"`
	Enabled            bool   `json:"enabled"`
	CircuitBreakerOpen bool   `json:"circuit_breaker_open"`
}

type service struct {
	channels       []Channel
	workerPool     chan struct{}
	breakers       map[string]*circuitbreaker.CircuitBreaker
	wg             sync.WaitGroup
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// NewService creates a notification service over channels with at most
// maxConcurrent deliveries in flight.
func NewService(channels []Channel, maxConcurrent int) Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	svc := &service{
		channels:       channels,
		workerPool:     make(chan struct{}, maxConcurrent),
		breakers:       make(map[string]*circuitbreaker.CircuitBreaker, len(channels)),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}
	enabled := 0
	for _, ch := range channels {
		svc.breakers[ch.Name()] = circuitbreaker.New(circuitbreaker.WebhookConfig("notify-" + ch.Name()))
		if ch.IsEnabled() {
			enabled++
		}
	}
	SetChannelsEnabled(float64(enabled))
	return svc
}

// NotifyReport implements Service.NotifyReport.
func (s *service) NotifyReport(ctx context.Context, r *Report) error {
	if r == nil || r.Title == "" {
		slog.Warn("Invalid report notification", slog.Bool("nil_report", r == nil))
		return nil
	}
	s.dispatch(ctx, &Notification{Report: r})
	return nil
}

// NotifyQuizResult implements Service.NotifyQuizResult.
func (s *service) NotifyQuizResult(ctx context.Context, r *QuizResult) error {
	if r == nil || r.Email == "" {
		return nil
	}
	s.dispatch(ctx, &Notification{QuizResult: r})
	return nil
}

func (s *service) dispatch(ctx context.Context, n *Notification) {
	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		reqID = uuid.New().String()
	}
	kind := n.Kind()

	var targets []Channel
	for _, ch := range s.channels {
		if ch.IsEnabled() && ch.Accepts(kind) {
			targets = append(targets, ch)
		}
	}
	if len(targets) == 0 {
		slog.Debug("No notification channels enabled",
			slog.String("request_id", reqID),
			slog.String("kind", string(kind)))
		return
	}

	slog.Info("Dispatching notification",
		slog.String("request_id", reqID),
		slog.String("kind", string(kind)),
		slog.Int("channels", len(targets)))

	for _, ch := range targets {
		s.wg.Add(1)
		go s.notifyChannel(reqID, ch, n)
	}
}

// notifyChannel delivers n to one channel in its own goroutine.
func (s *service) notifyChannel(reqID string, channel Channel, n *Notification) {
	defer s.wg.Done()

	IncrementActiveGoroutines()
	defer DecrementActiveGoroutines()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic in notification channel",
				slog.String("request_id", reqID),
				slog.String("channel", channel.Name()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	select {
	case s.workerPool <- struct{}{}:
		defer func() { <-s.workerPool }()
	case <-time.After(workerPoolTimeout):
		slog.Warn("Notification dropped: worker pool full",
			slog.String("request_id", reqID),
			slog.String("channel", channel.Name()))
		RecordDropped(channel.Name(), "pool_full")
		return
	}

	ctx, cancel := context.WithTimeout(s.shutdownCtx, notificationTimeout)
	defer cancel()
	ctx = requestid.WithRequestID(ctx, reqID)

	start := time.Now()
	RecordDispatch(channel.Name())

	cb := s.breakers[channel.Name()]
	_, err := cb.Execute(func() (interface{}, error) {
		return nil, channel.Send(ctx, n)
	})
	duration := time.Since(start)

	switch {
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		slog.Warn("Channel temporarily disabled due to circuit breaker",
			slog.String("request_id", reqID),
			slog.String("channel", channel.Name()))
		RecordDropped(channel.Name(), "circuit_open")
	case err != nil:
		RecordFailure(channel.Name(), duration)
		slog.Warn("Channel notification failed",
			slog.String("request_id", reqID),
			slog.String("channel", channel.Name()),
			slog.String("kind", string(n.Kind())),
			slog.Duration("send_duration", duration),
			slog.Any("error", err))
	default:
		RecordSuccess(channel.Name(), duration)
		slog.Info("Channel notification sent successfully",
			slog.String("request_id", reqID),
			slog.String("channel", channel.Name()),
			slog.String("kind", string(n.Kind())),
			slog.Duration("send_duration", duration))
	}
}

// GetChannelHealth implements Service.GetChannelHealth.
func (s *service) GetChannelHealth() []ChannelHealthStatus {
	statuses := make([]ChannelHealthStatus, 0, len(s.channels))
	for _, ch := range s.channels {
		statuses = append(statuses, ChannelHealthStatus{
			Name:               ch.Name(),
			Enabled:            ch.IsEnabled(),
			CircuitBreakerOpen: s.breakers[ch.Name()].IsOpen(),
		})
	}
	return statuses
}

// Shutdown implements Service.Shutdown.
func (s *service) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down notification service")

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.shutdownCancel()
		slog.Info("Notification service shutdown complete")
		return nil
	case <-ctx.Done():
		s.shutdownCancel()
		slog.Warn("Notification service shutdown timeout")
		return ctx.Err()
	}
}
