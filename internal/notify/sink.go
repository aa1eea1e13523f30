package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/renalog/renalog/internal/logging"
	"github.com/renalog/renalog/internal/metrics"
	"github.com/renalog/renalog/internal/model"
)

// ErrNotPermitted is returned by a gated sink when notifications have not
// been granted.
var ErrNotPermitted = errors.New("notifications not permitted")

// Sink delivers a notification somewhere the user will see it.
type Sink interface {
	Notify(ctx context.Context, n *model.Notification) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, n *model.Notification) error

// Notify calls f.
func (f SinkFunc) Notify(ctx context.Context, n *model.Notification) error {
	return f(ctx, n)
}

// PermissionSource reports the current notification permission.
type PermissionSource interface {
	Permission() (model.Permission, error)
}

// Gated forwards to a sink only while permission is granted. The permission
// is read on every call so a change takes effect without a restart.
type Gated struct {
	inner Sink
	perms PermissionSource
}

// NewGated wraps inner with a permission check.
func NewGated(inner Sink, perms PermissionSource) *Gated {
	return &Gated{inner: inner, perms: perms}
}

// Notify delivers n if permission is granted.
func (g *Gated) Notify(ctx context.Context, n *model.Notification) error {
	p, err := g.perms.Permission()
	if err != nil {
		return err
	}
	if p != model.PermissionGranted {
		metrics.RecordNotification("gate", metrics.StatusBlocked)
		logging.DebugContext(ctx, "notification suppressed", logging.KeyPermission, string(p))
		return ErrNotPermitted
	}
	return g.inner.Notify(ctx, n)
}

// Multi fans a notification out to several sinks concurrently and joins
// their errors.
type Multi []Sink

// Notify delivers n to every sink.
func (m Multi) Notify(ctx context.Context, n *model.Notification) error {
	var wg sync.WaitGroup
	errs := make([]error, len(m))

	for i, s := range m {
		wg.Add(1)
		go func(idx int, s Sink) {
			defer wg.Done()
			errs[idx] = s.Notify(ctx, n)
		}(i, s)
	}

	wg.Wait()
	return errors.Join(errs...)
}

// Recorder keeps every notification it receives. Err, when set, is returned
// from each call after recording.
type Recorder struct {
	mu    sync.Mutex
	items []*model.Notification
	Err   error
}

// Notify records n.
func (r *Recorder) Notify(_ context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
	return r.Err
}

// Notifications returns a copy of everything recorded.
func (r *Recorder) Notifications() []*model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Len returns the number of recorded notifications.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
