package browser

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds every element wait unless overridden.
const DefaultTimeout = 10 * time.Second

var (
	ErrTimeout      = errors.New("element wait timed out")
	ErrMissingInput = errors.New("input element not found")
)

// Driver performs waits and simulated interactions against one Document.
type Driver struct {
	doc     Document
	log     *zap.Logger
	timeout time.Duration
	jitter  time.Duration
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger used for locally recovered failures.
func WithLogger(log *zap.Logger) Option {
	return func(d *Driver) {
		d.log = log
	}
}

// WithTimeout sets the timeout applied to every wait.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Driver) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithKeystrokeJitter adds a random pause of up to limit after every typed
// character. Zero keeps typing as fast as the page can process it.
func WithKeystrokeJitter(limit time.Duration) Option {
	return func(d *Driver) {
		d.jitter = limit
	}
}

// NewDriver creates a Driver for doc.
func NewDriver(doc Document, opts ...Option) *Driver {
	d := &Driver{
		doc:     doc,
		log:     zap.NewNop(),
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Document returns the document the driver acts on.
func (d *Driver) Document() Document {
	return d.doc
}

// Timeout returns the per-wait timeout.
func (d *Driver) Timeout() time.Duration {
	return d.timeout
}

// pause sleeps for the configured keystroke jitter, if any.
func (d *Driver) pause(ctx context.Context) error {
	if d.jitter <= 0 {
		return nil
	}

	t := time.NewTimer(time.Duration(rand.Int63n(int64(d.jitter))))
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
