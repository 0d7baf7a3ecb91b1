package saga

import (
	"context"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"go.uber.org/fx"
)

// StepHandler executes one named saga step.
type StepHandler interface {
	Execute(ctx context.Context, sagaCtx Context) error
}

// StepFunc adapts a function to StepHandler.
type StepFunc func(ctx context.Context, sagaCtx Context) error

func (f StepFunc) Execute(ctx context.Context, sagaCtx Context) error {
	return f(ctx, sagaCtx)
}

// NamedStep binds a StepHandler to its step name.
type NamedStep struct {
	Name    string
	Handler StepHandler
}

// StepRegistry maps step names to handlers.
type StepRegistry map[string]StepHandler

// NewStepRegistry rejects empty and duplicate step names.
func NewStepRegistry(steps ...NamedStep) (StepRegistry, error) {
	r := make(StepRegistry, len(steps))
	for _, s := range steps {
		if s.Name == "" {
			return nil, fmt.Errorf("saga step without name")
		}
		if s.Handler == nil {
			return nil, fmt.Errorf("saga step %q is nil", s.Name)
		}
		if _, ok := r[s.Name]; ok {
			return nil, fmt.Errorf("duplicate saga step %q", s.Name)
		}
		r[s.Name] = s.Handler
	}
	return r, nil
}

// Names returns the registered step names, sorted.
func (r StepRegistry) Names() []string {
	names := lo.Keys(r)
	slices.Sort(names)
	return names
}

// UnknownStepError is the failure recorded for a step with no handler.
type UnknownStepError struct {
	Name string
}

func (e *UnknownStepError) Error() string {
	return "Unknown saga step: " + e.Name
}

// AsStep annotates a constructor returning NamedStep for the saga_steps group.
func AsStep(constructor any) fx.Option {
	return fx.Provide(
		fx.Annotate(
			constructor,
			fx.ResultTags(`group:"saga_steps"`),
		),
	)
}
