// Package notifications delivers transactional email off the request path.
package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AliRajag51/bookstore-backend/metrics"
	"github.com/AliRajag51/bookstore-backend/utils"
)

type Options struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	Backoff     time.Duration
	MaxBackoff  time.Duration
	SendTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.QueueSize < 1 {
		o.QueueSize = 64
	}
	if o.MaxAttempts < 1 {
		o.MaxAttempts = 1
	}
	if o.Backoff <= 0 {
		o.Backoff = time.Second
	}
	if o.MaxBackoff < o.Backoff {
		o.MaxBackoff = 30 * o.Backoff
	}
	if o.SendTimeout <= 0 {
		o.SendTimeout = 30 * time.Second
	}
	return o
}

// Notifier queues messages and sends them from a fixed pool of workers,
// retrying failed sends with exponential backoff.
type Notifier struct {
	mailer utils.Mailer
	opts   Options
	log    *logrus.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan utils.Message
	abort  chan struct{}
	wg     sync.WaitGroup
	start  sync.Once
	halt   sync.Once
}

func New(mailer utils.Mailer, opts Options, log *logrus.Logger) *Notifier {
	opts = opts.withDefaults()
	return &Notifier{
		mailer: mailer,
		opts:   opts,
		log:    log,
		queue:  make(chan utils.Message, opts.QueueSize),
		abort:  make(chan struct{}),
	}
}

func (n *Notifier) Start() {
	n.start.Do(func() {
		for i := 0; i < n.opts.Workers; i++ {
			n.wg.Add(1)
			go n.worker()
		}
	})
}

// Enqueue never blocks. It reports false when the message was dropped because
// the queue is full or the notifier is stopping.
func (n *Notifier) Enqueue(msg utils.Message) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return false
	}
	select {
	case n.queue <- msg:
		return true
	default:
		metrics.NotificationResult("dropped")
		n.log.WithFields(logrus.Fields{"to": msg.To, "subject": msg.Subject}).Error("Notification queue full, message dropped")
		return false
	}
}

// Stop refuses new messages and waits for queued ones to be delivered. When
// ctx ends first, pending retries are abandoned.
func (n *Notifier) Stop(ctx context.Context) error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		n.halt.Do(func() { close(n.abort) })
		<-done
		return ctx.Err()
	}
}

func (n *Notifier) worker() {
	defer n.wg.Done()
	for msg := range n.queue {
		n.deliver(msg)
	}
}

func (n *Notifier) deliver(msg utils.Message) {
	entry := n.log.WithFields(logrus.Fields{"to": msg.To, "subject": msg.Subject})

	for attempt := 1; attempt <= n.opts.MaxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), n.opts.SendTimeout)
		err := n.mailer.Send(ctx, msg)
		cancel()
		if err == nil {
			metrics.NotificationResult("sent")
			entry.WithField("attempt", attempt).Info("Email sent")
			return
		}

		entry.WithError(err).WithField("attempt", attempt).Warn("Email send failed")
		if attempt == n.opts.MaxAttempts {
			break
		}

		select {
		case <-time.After(n.backoff(attempt)):
		case <-n.abort:
			metrics.NotificationResult("abandoned")
			entry.Error("Email abandoned during shutdown")
			return
		}
	}

	metrics.NotificationResult("failed")
	entry.Error("Email delivery gave up")
}

func (n *Notifier) backoff(attempt int) time.Duration {
	d := n.opts.Backoff
	for i := 1; i < attempt && d < n.opts.MaxBackoff; i++ {
		d *= 2
	}
	if d > n.opts.MaxBackoff {
		return n.opts.MaxBackoff
	}
	return d
}
