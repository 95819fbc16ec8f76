package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyang/repair-desk/internal/domain/event"
	porteventbus "github.com/alanyang/repair-desk/internal/port/eventbus"
)

const (
	channelPrefix = "repair_desk_"
	retryDelay    = time.Second
)

var _ porteventbus.EventBus = (*EventBus)(nil)

// EventBus carries domain events over Postgres LISTEN/NOTIFY so every
// process sharing the database sees them.
type EventBus struct {
	pool *pgxpool.Pool

	mu        sync.Mutex
	listeners map[*listener]struct{}
}

func New(pool *pgxpool.Pool) *EventBus {
	return &EventBus{
		pool:      pool,
		listeners: make(map[*listener]struct{}),
	}
}

func (eb *EventBus) Publish(ctx context.Context, e event.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", e.Type, err)
	}

	channel := channelName(event.ChannelFor(e.Type))
	if _, err := eb.pool.Exec(ctx, "SELECT pg_notify($1, $2)", channel, string(payload)); err != nil {
		return fmt.Errorf("notify %s: %w", channel, err)
	}
	return nil
}

// Subscribe pins one pooled connection in LISTEN on ch. handler runs on the
// listener's goroutine, one event at a time, until ctx ends or Unsubscribe.
func (eb *EventBus) Subscribe(ctx context.Context, ch event.Channel, handler porteventbus.Handler) (porteventbus.Subscription, error) {
	conn, err := eb.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("listen %s: acquire connection: %w", ch, err)
	}

	l := &listener{
		bus:     eb,
		conn:    conn,
		channel: channelName(ch),
		handler: handler,
		done:    make(chan struct{}),
	}
	// Identifiers cannot be bound; channel names come from event.Channel constants.
	if _, err := conn.Exec(ctx, "LISTEN "+l.channel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen %s: %w", l.channel, err)
	}

	var runCtx context.Context
	runCtx, l.cancel = context.WithCancel(ctx)

	eb.mu.Lock()
	eb.listeners[l] = struct{}{}
	eb.mu.Unlock()

	go l.run(runCtx)
	return l, nil
}

// Close stops every listener and waits for each to hand its connection back.
func (eb *EventBus) Close() {
	eb.mu.Lock()
	live := make([]*listener, 0, len(eb.listeners))
	for l := range eb.listeners {
		live = append(live, l)
	}
	eb.mu.Unlock()

	for _, l := range live {
		l.Unsubscribe()
	}
}

func (eb *EventBus) forget(l *listener) {
	eb.mu.Lock()
	delete(eb.listeners, l)
	eb.mu.Unlock()
}

func channelName(ch event.Channel) string {
	return channelPrefix + string(ch)
}

// listener owns one LISTEN connection and implements porteventbus.Subscription.
type listener struct {
	bus     *EventBus
	conn    *pgxpool.Conn
	channel string
	handler porteventbus.Handler

	cancel context.CancelFunc
	done   chan struct{}
}

func (l *listener) run(ctx context.Context) {
	defer l.release()

	for {
		e, ok := l.next(ctx)
		if ctx.Err() != nil {
			return
		}
		if ok {
			l.handler(ctx, e)
		}
	}
}

// next blocks for one notification. It reports false for a dropped payload or
// a failed wait; after a failed wait it pauses so a dead connection does not spin.
func (l *listener) next(ctx context.Context) (event.Event, bool) {
	n, err := l.conn.Conn().WaitForNotification(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("eventbus: wait for notification failed", "channel", l.channel, "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(retryDelay):
			}
		}
		return event.Event{}, false
	}

	var e event.Event
	if err := json.Unmarshal([]byte(n.Payload), &e); err != nil {
		slog.Warn("eventbus: dropping malformed payload", "channel", l.channel, "error", err)
		return event.Event{}, false
	}
	return e, true
}

func (l *listener) release() {
	if _, err := l.conn.Exec(context.Background(), "UNLISTEN "+l.channel); err != nil {
		slog.Warn("eventbus: unlisten failed", "channel", l.channel, "error", err)
	}
	l.conn.Release()
	l.bus.forget(l)
	close(l.done)
}

// Unsubscribe stops the listener and waits until its connection is released.
func (l *listener) Unsubscribe() {
	l.cancel()
	<-l.done
}
