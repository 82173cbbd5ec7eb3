// Package saga executes multi-store membership operations as an ordered
// sequence of steps with a paired compensation for every step that has
// already committed when a later step fails. The stores involved (quota
// ledger, membership store, cluster control plane) share no transaction
// boundary, so compensations are the only undo mechanism.
package saga

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	mnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"workspace-console/backend/internal/apperr"
)

// Step is one mutation in a saga. Compensate is the inverse mutation and may
// be nil for steps that need no undo (e.g. an idempotent cluster sync, which
// re-converges on the next operation).
type Step struct {
	Name       string
	Run        func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Orchestrator runs sagas and records per-operation telemetry.
type Orchestrator struct {
	tracer          trace.Tracer
	compensations   metric.Int64Counter
	inconsistencies metric.Int64Counter
}

// New returns an Orchestrator using the global OpenTelemetry providers.
func New() *Orchestrator {
	meter := otel.Meter("workspace-console/saga")
	return &Orchestrator{
		tracer: otel.Tracer("workspace-console/saga"),
		compensations: newCounter(meter, "saga.compensations",
			"Compensations executed after a failed saga step"),
		inconsistencies: newCounter(meter, "saga.inconsistencies",
			"Sagas whose compensation failed, leaving stores inconsistent"),
	}
}

// newCounter never returns nil: a counter that cannot be created falls back
// to a noop so the compensation path cannot panic on a nil instrument.
func newCounter(meter metric.Meter, name, description string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		log.Printf("saga: %s counter: %v; recording disabled", name, err)
		c, _ = mnoop.NewMeterProvider().Meter("workspace-console/saga").Int64Counter(name)
	}
	return c
}

// Execute runs the steps in order. If step n fails, the compensations of
// steps 1..n-1 run in reverse order and the step's error is returned. If any
// compensation itself fails, Execute returns an inconsistent-state error
// instead; it is never silently downgraded and the system never claims
// success after a compensation failure.
//
// Once the first step commits the saga runs to completion or compensation:
// compensations execute on a context detached from caller cancellation.
func (o *Orchestrator) Execute(ctx context.Context, op string, steps []Step) error {
	ctx, span := o.tracer.Start(ctx, "saga."+op)
	defer span.End()

	for i, step := range steps {
		err := step.Run(ctx)
		if err == nil {
			continue
		}
		span.RecordError(err)
		span.SetAttributes(attribute.String("saga.failed_step", step.Name))

		if compErr := o.compensate(context.WithoutCancel(ctx), op, steps[:i]); compErr != nil {
			o.inconsistencies.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
			log.Printf("saga: %s: INCONSISTENT STATE: step %q failed (%v) and compensation failed (%v)",
				op, step.Name, err, compErr)
			return apperr.InconsistentState(op, err, compErr)
		}
		return err
	}
	return nil
}

// compensate undoes the committed steps in reverse order. A failing
// compensation does not stop the remaining ones; all failures are joined so
// the operator log names every step left dirty.
func (o *Orchestrator) compensate(ctx context.Context, op string, committed []Step) error {
	var failed []error
	for i := len(committed) - 1; i >= 0; i-- {
		step := committed[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			log.Printf("saga: %s: compensation for step %q failed: %v", op, step.Name, err)
			failed = append(failed, fmt.Errorf("step %s: %w", step.Name, err))
			continue
		}
		o.compensations.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("step", step.Name),
		))
	}
	return errors.Join(failed...)
}
