package footlib

import (
	"context"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
)

const (
	DefaultNotificationTimeout = 30 * time.Second
	DefaultDispatcherPoolSize  = 128

	dispatcherPoolExpireTime = time.Minute
)

// NotificationDispatcher delivers notifications in background. Dispatch
// never blocks and never returns an error: if notification cannot be
// delivered, it is logged and forgotten. There are no retries.
type NotificationDispatcher struct {
	notifier   Notifier
	logger     Logger
	metrics    *Metrics
	timeout    time.Duration
	usageStats *UsageStats
	pool       *ants.PoolWithFunc
}

// Dispatch schedules a delivery of the record. If worker pool is
// overloaded or closed, notification is dropped.
func (n *NotificationDispatcher) Dispatch(record VisitorRecord) {
	if err := n.pool.Invoke(record); err != nil {
		n.metrics.Notification("dropped", 0)
		n.logger.NotifyError(n.notifier.Name(),
			fmt.Errorf("cannot schedule a notification: %w", err))
	}
}

// UsageStats returns usage statistics of the notifier.
func (n *NotificationDispatcher) UsageStats() *UsageStats {
	return n.usageStats
}

// Shutdown stops accepting new notifications and waits for in-flight
// ones for the given time.
func (n *NotificationDispatcher) Shutdown(timeout time.Duration) error {
	if err := n.pool.ReleaseTimeout(timeout); err != nil {
		return fmt.Errorf("cannot wait for notifications: %w", err)
	}

	return nil
}

func (n *NotificationDispatcher) deliver(arg interface{}) {
	started := time.Now()
	err := n.send(arg.(VisitorRecord))

	n.usageStats.Used(err)

	if err != nil {
		n.metrics.Notification("failed", time.Since(started))
		n.logger.NotifyError(n.notifier.Name(), err)

		return
	}

	n.metrics.Notification("sent", time.Since(started))
	n.logger.NotifyInfo(n.notifier.Name(), "notification was sent")
}

func (n *NotificationDispatcher) send(record VisitorRecord) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("notifier has panicked: %v", rec)
		}
	}()

	msg, err := FormatNotification(record)
	if err != nil {
		return fmt.Errorf("cannot format a notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	if err := n.notifier.Send(ctx, msg); err != nil {
		return fmt.Errorf("cannot send a notification: %w", err)
	}

	return nil
}

// NewNotificationDispatcher creates a new dispatcher with its own worker
// pool. Non-positive values are replaced with defaults. Metrics could
// be nil.
func NewNotificationDispatcher(notifier Notifier,
	logger Logger,
	metrics *Metrics,
	poolSize int,
	timeout time.Duration) (*NotificationDispatcher, error) {
	if poolSize <= 0 {
		poolSize = DefaultDispatcherPoolSize
	}

	if timeout <= 0 {
		timeout = DefaultNotificationTimeout
	}

	rv := &NotificationDispatcher{
		notifier: notifier,
		logger:   logger,
		metrics:  metrics,
		timeout:  timeout,
		usageStats: &UsageStats{
			Name: notifier.Name(),
			Kind: "notifier",
		},
	}

	pool, err := ants.NewPoolWithFunc(poolSize, rv.deliver,
		ants.WithNonblocking(true),
		ants.WithExpiryDuration(dispatcherPoolExpireTime))
	if err != nil {
		return nil, fmt.Errorf("cannot create a worker pool: %w", err)
	}

	rv.pool = pool

	return rv, nil
}
