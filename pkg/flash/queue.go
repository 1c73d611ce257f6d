package flash

import (
	"context"

	"github.com/angelmondragon/csemotors/pkg/logger"
)

type ctxKey struct{}

// Queue binds a Store to the session id of the current request.
// Failures are logged rather than returned; a lost notice never fails a request.
type Queue struct {
	store     Store
	sessionID string
	logg      *logger.Logger
}

// NewQueue returns the request-scoped queue for sessionID.
func NewQueue(store Store, sessionID string, logg *logger.Logger) *Queue {
	return &Queue{store: store, sessionID: sessionID, logg: logg}
}

// SessionID returns the client session the queue belongs to.
func (q *Queue) SessionID() string {
	if q == nil {
		return ""
	}
	return q.sessionID
}

// Notice enqueues an informational message.
func (q *Queue) Notice(ctx context.Context, text string) {
	q.add(ctx, Message{Kind: KindNotice, Text: text})
}

// Error enqueues an error message.
func (q *Queue) Error(ctx context.Context, text string) {
	q.add(ctx, Message{Kind: KindError, Text: text})
}

func (q *Queue) add(ctx context.Context, msg Message) {
	if q == nil || q.store == nil {
		return
	}
	if err := q.store.Push(ctx, q.sessionID, msg); err != nil && q.logg != nil {
		q.logg.Warn(q.logg.WithField(ctx, "flash_kind", msg.Kind), "flash.push_failed")
	}
}

// Drain returns and clears everything queued for the session.
func (q *Queue) Drain(ctx context.Context) []Message {
	if q == nil || q.store == nil {
		return nil
	}
	msgs, err := q.store.Drain(ctx, q.sessionID)
	if err != nil {
		if q.logg != nil {
			q.logg.Warn(ctx, "flash.drain_failed")
		}
		return nil
	}
	return msgs
}

// WithQueue stores the queue on the context.
func WithQueue(ctx context.Context, q *Queue) context.Context {
	return context.WithValue(ctx, ctxKey{}, q)
}

// FromContext returns the request's queue. The nil queue is safe to use.
func FromContext(ctx context.Context) *Queue {
	q, _ := ctx.Value(ctxKey{}).(*Queue)
	return q
}
