package session

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/domain"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/metrics"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/results"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/usecase"
)

// maxDeliveryAttempts bounds result pushes to a stale connection; after
// that the delivery is logged and dropped.
const maxDeliveryAttempts = 3

// Conn is the write half of one streaming connection. *websocket.Conn
// satisfies it.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// streamMessage is the default-route message body a streaming client sends.
type streamMessage struct {
	BucketName string `json:"BucketName"`
	KeyName    string `json:"KeyName"`
	Gloss      string `json:"Gloss"`
}

// Manager owns the streaming connection lifecycle. Session records live in
// the connection store (the durable source of truth); the in-memory conns map
// only tracks which live sockets THIS instance can write to.
type Manager struct {
	store  ConnectionStore
	submit *usecase.SubmitTranslationUsecase
	bus    results.Bus
	logger *zap.Logger

	mu    sync.RWMutex
	conns map[string]Conn
}

// NewManager creates a session manager.
func NewManager(store ConnectionStore, submit *usecase.SubmitTranslationUsecase, bus results.Bus, logger *zap.Logger) *Manager {
	return &Manager{
		store:  store,
		submit: submit,
		bus:    bus,
		logger: logger,
		conns:  make(map[string]Conn),
	}
}

// Start subscribes to the result bus until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		err := m.bus.Subscribe(ctx, func(d *results.Delivery) {
			m.deliver(ctx, d)
		})
		if err != nil {
			m.logger.Error("Result bus subscription ended", zap.Error(err))
		}
	}()
}

// Connect assigns a connection id and records the open session. A store
// write failure is fatal for the connection: the caller must drop it.
func (m *Manager) Connect(ctx context.Context, conn Conn) (string, error) {
	connectionID := uuid.NewString()
	s := &domain.Session{
		ConnectionID: connectionID,
		Epoch:        time.Now().UnixMilli(),
		State:        domain.SessionOpen,
	}
	if err := m.store.Create(ctx, s); err != nil {
		m.logger.Error("Failed to record session", zap.String("connection_id", connectionID), zap.Error(err))
		return "", err
	}

	m.mu.Lock()
	m.conns[connectionID] = conn
	m.mu.Unlock()
	metrics.SessionsActive.Inc()

	m.logger.Info("Session opened", zap.String("connection_id", connectionID))
	return connectionID, nil
}

// Disconnect removes the session record. Closing an already-closed or
// unknown session is a no-op.
func (m *Manager) Disconnect(ctx context.Context, connectionID string) {
	m.mu.Lock()
	_, held := m.conns[connectionID]
	delete(m.conns, connectionID)
	m.mu.Unlock()
	if held {
		metrics.SessionsActive.Dec()
	}

	if err := m.store.Delete(ctx, connectionID); err != nil {
		m.logger.Warn("Failed to delete session record",
			zap.String("connection_id", connectionID), zap.Error(err))
	}
	m.logger.Info("Session closed", zap.String("connection_id", connectionID))
}

// HandleMessage parses an inbound default-route message and starts an
// independent workflow run for it. Messages on the same connection carry no
// ordering guarantee relative to each other.
func (m *Manager) HandleMessage(ctx context.Context, connectionID string, raw []byte) error {
	if strings.TrimSpace(string(raw)) == "" {
		return nil
	}

	var msg streamMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return domain.ErrInvalidSubmission
	}

	// The store is the source of truth across instances; a message may
	// legitimately arrive before any record exists, so a miss is not fatal,
	// but the eventual delivery will find nowhere to land.
	if _, err := m.store.Get(ctx, connectionID); err != nil {
		m.logger.Warn("Message on a connection with no open session record",
			zap.String("connection_id", connectionID), zap.Error(err))
	}

	req := &usecase.SubmitRequest{
		Gloss:        msg.Gloss,
		Bucket:       msg.BucketName,
		Key:          msg.KeyName,
		ConnectionID: connectionID,
	}
	handle, err := m.submit.Execute(ctx, req)
	if err != nil {
		return err
	}

	m.logger.Info("Session message dispatched",
		zap.String("connection_id", connectionID),
		zap.String("handle", handle),
	)
	return nil
}

// deliver pushes one terminal payload to the originating connection. The
// store record is consulted first: a session that was deleted or marked
// closed since submission gets no write attempt on any instance. The
// workflow run already reached its terminal state either way.
func (m *Manager) deliver(ctx context.Context, d *results.Delivery) {
	s, err := m.store.Get(ctx, d.ConnectionID)
	if err != nil || s.State != domain.SessionOpen {
		metrics.SessionDeliveriesTotal.WithLabelValues("stale").Inc()
		m.logger.Debug("Dropping result for a closed session",
			zap.String("connection_id", d.ConnectionID))
		return
	}

	m.mu.RLock()
	conn, ok := m.conns[d.ConnectionID]
	m.mu.RUnlock()
	if !ok {
		// Open session held by another instance.
		return
	}

	var lastErr error
	for attempt := 1; attempt <= maxDeliveryAttempts; attempt++ {
		if lastErr = conn.WriteJSON(d.Payload); lastErr == nil {
			metrics.SessionDeliveriesTotal.WithLabelValues("delivered").Inc()
			return
		}
	}

	metrics.SessionDeliveriesTotal.WithLabelValues("dropped").Inc()
	m.logger.Warn("Dropping result after failed delivery attempts",
		zap.String("connection_id", d.ConnectionID),
		zap.Int("attempts", maxDeliveryAttempts),
		zap.Error(lastErr),
	)

	// Supersede the open record with a closed one (newer epoch wins on
	// read) so no instance keeps targeting a socket that rejects writes.
	tombstone := &domain.Session{
		ConnectionID: d.ConnectionID,
		Epoch:        time.Now().UnixMilli(),
		State:        domain.SessionClosed,
	}
	if err := m.store.Create(ctx, tombstone); err != nil {
		m.logger.Warn("Failed to mark session closed",
			zap.String("connection_id", d.ConnectionID), zap.Error(err))
	}
}
