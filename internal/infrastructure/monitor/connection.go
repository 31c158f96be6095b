package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pinger is satisfied by *pgxpool.Pool and by RedisPinger.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Sizer reports the number of items waiting in the mail outbox.
type Sizer interface {
	Size() (int, error)
}

// Counter reports the number of live dashboard connections.
type Counter interface {
	Count() int
}

// Probes groups the dependencies the monitor watches. Nil probes report as down.
type Probes struct {
	Postgres Pinger
	Redis    Pinger
	Outbox   Sizer
	Hub      Counter
}

type Monitor struct {
	probes Probes

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(probes Probes, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		probes:   probes,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports whether both stores answered the last check.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.PostgreSQL && m.status.Redis
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every probe once and stores the result.
func (m *Monitor) Refresh() Status {
	outboxOK, outboxSize := m.checkOutbox()
	status := Status{
		PostgreSQL: m.ping("postgres", m.probes.Postgres, 3*time.Second),
		Redis:      m.ping("redis", m.probes.Redis, 2*time.Second),
		Outbox:     outboxOK,
		OutboxSize: outboxSize,
		LastCheck:  time.Now(),
	}
	if m.probes.Hub != nil {
		status.Subscribers = m.probes.Hub.Count()
	}

	m.mu.Lock()
	prev := m.status
	m.status = status
	m.mu.Unlock()

	if !prev.LastCheck.IsZero() && prev.PostgreSQL != status.PostgreSQL {
		m.logger.Warn("postgres availability changed", zap.Bool("online", status.PostgreSQL))
	}
	if !prev.LastCheck.IsZero() && prev.Redis != status.Redis {
		m.logger.Warn("redis availability changed", zap.Bool("online", status.Redis))
	}
	return status
}

func (m *Monitor) ping(name string, p Pinger, timeout time.Duration) bool {
	if p == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		m.logger.Debug("dependency ping failed", zap.String("dependency", name), zap.Error(err))
		return false
	}
	return true
}

func (m *Monitor) checkOutbox() (bool, int) {
	if m.probes.Outbox == nil {
		return false, 0
	}
	size, err := m.probes.Outbox.Size()
	if err != nil {
		m.logger.Warn("outbox size check failed", zap.Error(err))
		return false, size
	}
	return true, size
}
