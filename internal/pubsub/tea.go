package pubsub

import (
	"context"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
)

// ListenCmd returns a tea.Cmd delivering the next event of ch whose type is
// in types, or any event when types is empty. The command yields nil once
// ctx is done or ch is closed.
func ListenCmd[T any](ctx context.Context, ch <-chan Event[T], types ...EventType) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-ch:
				if !ok {
					return nil
				}
				if len(types) == 0 || slices.Contains(types, event.Type) {
					return event
				}
			}
		}
	}
}

// ContinuousListener keeps one broker subscription for the lifetime of a
// Bubble Tea model. Call Listen again after each delivered event.
type ContinuousListener[T any] struct {
	ctx   context.Context
	ch    <-chan Event[T]
	types []EventType
}

// NewContinuousListener subscribes to broker until ctx is done. When types
// are given, events of other types are skipped.
func NewContinuousListener[T any](ctx context.Context, broker *Broker[T], types ...EventType) *ContinuousListener[T] {
	return &ContinuousListener[T]{
		ctx:   ctx,
		ch:    broker.Subscribe(ctx),
		types: types,
	}
}

// Listen waits for the next event.
func (l *ContinuousListener[T]) Listen() tea.Cmd {
	return ListenCmd(l.ctx, l.ch, l.types...)
}
