package outbox

import (
	"context"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"go.uber.org/fx"
)

// Handler performs the side effect of one event type.
type Handler interface {
	Handle(ctx context.Context, rec *Record) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, rec *Record) error

func (f HandlerFunc) Handle(ctx context.Context, rec *Record) error {
	return f(ctx, rec)
}

// NamedHandler binds a Handler to the eventType it serves.
type NamedHandler struct {
	EventType string
	Handler   Handler
}

// Registry maps eventType to Handler. It is built once at startup.
type Registry map[string]Handler

// NewRegistry rejects empty and duplicate event types.
func NewRegistry(handlers ...NamedHandler) (Registry, error) {
	r := make(Registry, len(handlers))
	for _, h := range handlers {
		if h.EventType == "" {
			return nil, fmt.Errorf("outbox handler without event type")
		}
		if h.Handler == nil {
			return nil, fmt.Errorf("outbox handler %q is nil", h.EventType)
		}
		if _, ok := r[h.EventType]; ok {
			return nil, fmt.Errorf("duplicate outbox handler for %q", h.EventType)
		}
		r[h.EventType] = h.Handler
	}
	return r, nil
}

// EventTypes returns the registered event types, sorted.
func (r Registry) EventTypes() []string {
	types := lo.Keys(r)
	slices.Sort(types)
	return types
}

// AsHandler annotates a constructor returning NamedHandler for the outbox_handlers group.
func AsHandler(constructor any) fx.Option {
	return fx.Provide(
		fx.Annotate(
			constructor,
			fx.ResultTags(`group:"outbox_handlers"`),
		),
	)
}
