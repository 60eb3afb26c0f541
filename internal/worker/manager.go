package worker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"ubae_shell/internal/queue"
)

const (
	DefaultWorkerCount  = 1
	DefaultBatchSize    = 10
	DefaultBlockTimeout = 5 * time.Second

	readRetryDelay       = time.Second
	groupTeardownTimeout = 2 * time.Second
)

// ManagerConfig tunes the invalidation consumers of one shell instance.
type ManagerConfig struct {
	InstanceID   string        // Names the consumer group
	WorkerCount  int           // Consumer goroutines
	BatchSize    int64         // Entries per XREADGROUP
	BlockTimeout time.Duration // How long one read may block
}

// DefaultManagerConfig returns the defaults for an instance.
func DefaultManagerConfig(instanceID string) ManagerConfig {
	return ManagerConfig{
		InstanceID:   instanceID,
		WorkerCount:  DefaultWorkerCount,
		BatchSize:    DefaultBatchSize,
		BlockTimeout: DefaultBlockTimeout,
	}
}

// Manager consumes the invalidation stream on behalf of one shell instance.
// Every instance reads through its own consumer group, so each one sees
// every event.
type Manager struct {
	consumer queue.Consumer
	handler  *Handler
	group    string
	cfg      ManagerConfig

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewManager(consumer queue.Consumer, handler *Handler, cfg ManagerConfig) *Manager {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = DefaultBlockTimeout
	}
	return &Manager{
		consumer: consumer,
		handler:  handler,
		group:    queue.ConsumerGroup(cfg.InstanceID),
		cfg:      cfg,
	}
}

// Start creates the instance's group and launches the consumers.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.consumer.EnsureGroup(ctx, queue.StreamInvalidations, m.group); err != nil {
		return fmt.Errorf("start invalidation consumers: %w", err)
	}

	ctx, m.cancel = context.WithCancel(ctx)
	for i := 1; i <= m.cfg.WorkerCount; i++ {
		name := fmt.Sprintf("consumer-%d", i)
		m.wg.Add(1)
		go m.consume(ctx, name)
	}

	log.Printf("[Invalidations] Started: group=%s consumers=%d", m.group, m.cfg.WorkerCount)
	return nil
}

// Stop waits for the consumers to exit, then drops the group so the stream
// does not keep delivering to an instance that is gone.
func (m *Manager) Stop() {
	m.cancel()
	m.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), groupTeardownTimeout)
	defer cancel()
	if err := m.consumer.DestroyGroup(ctx, queue.StreamInvalidations, m.group); err != nil {
		log.Printf("[Invalidations] Teardown FAILED: group=%s err=%v", m.group, err)
		return
	}
	log.Printf("[Invalidations] Stopped: group=%s", m.group)
}

func (m *Manager) consume(ctx context.Context, name string) {
	defer m.wg.Done()

	// Entries delivered to this consumer name before a restart come first.
	for {
		batch, err := m.consumer.ReadPending(ctx, queue.StreamInvalidations, m.group, name, m.cfg.BatchSize)
		if err != nil || len(batch) == 0 {
			break
		}
		m.apply(ctx, batch)
	}

	for ctx.Err() == nil {
		batch, err := m.consumer.Read(ctx, queue.StreamInvalidations, m.group, name, m.cfg.BatchSize, m.cfg.BlockTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[Invalidations] Read FAILED: consumer=%s err=%v", name, err)
			select {
			case <-ctx.Done():
			case <-time.After(readRetryDelay):
			}
			continue
		}
		m.apply(ctx, batch)
	}
}

// apply handles and acknowledges each entry. Failed entries are acked too;
// the next invalidation of the same key refetches anyway.
func (m *Manager) apply(ctx context.Context, batch []queue.Message) {
	for _, msg := range batch {
		if err := m.handler.HandleEvent(ctx, msg.Event); err != nil {
			log.Printf("[Invalidations] Handle FAILED: msgID=%s err=%v", msg.ID, err)
		}
		if err := m.consumer.Ack(ctx, queue.StreamInvalidations, m.group, msg.ID); err != nil {
			log.Printf("[Invalidations] Ack FAILED: msgID=%s err=%v", msg.ID, err)
		}
	}
}
