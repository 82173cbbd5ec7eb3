package saga

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/metric"
	mnoop "go.opentelemetry.io/otel/metric/noop"

	"workspace-console/backend/internal/apperr"
)

func step(name string, log *[]string, runErr, compErr error) Step {
	return Step{
		Name: name,
		Run: func(ctx context.Context) error {
			*log = append(*log, "run:"+name)
			return runErr
		},
		Compensate: func(ctx context.Context) error {
			*log = append(*log, "comp:"+name)
			return compErr
		},
	}
}

func TestExecute_AllStepsInOrder(t *testing.T) {
	var trace []string
	o := New()
	err := o.Execute(context.Background(), "create", []Step{
		step("ledger", &trace, nil, nil),
		step("membership", &trace, nil, nil),
		step("cluster", &trace, nil, nil),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []string{"run:ledger", "run:membership", "run:cluster"}
	assertTrace(t, trace, want)
}

func TestExecute_FailureCompensatesCommittedStepsInReverse(t *testing.T) {
	var trace []string
	boom := errors.New("cluster rejected binding")
	o := New()
	err := o.Execute(context.Background(), "accept", []Step{
		step("ledger", &trace, nil, nil),
		step("membership", &trace, nil, nil),
		step("cluster", &trace, boom, nil),
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Execute = %v, want the step error", err)
	}
	want := []string{"run:ledger", "run:membership", "run:cluster", "comp:membership", "comp:ledger"}
	assertTrace(t, trace, want)
}

func TestExecute_FirstStepFailureCompensatesNothing(t *testing.T) {
	var trace []string
	boom := errors.New("reserve failed")
	o := New()
	err := o.Execute(context.Background(), "create", []Step{
		step("ledger", &trace, boom, nil),
		step("membership", &trace, nil, nil),
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Execute = %v, want the step error", err)
	}
	assertTrace(t, trace, []string{"run:ledger"})
}

func TestExecute_NilCompensationIsSkipped(t *testing.T) {
	var trace []string
	boom := errors.New("late failure")
	o := New()
	err := o.Execute(context.Background(), "remove", []Step{
		step("ledger", &trace, nil, nil),
		{
			Name: "cluster",
			Run: func(ctx context.Context) error {
				trace = append(trace, "run:cluster")
				return nil
			},
			// idempotent, nothing to undo
		},
		step("audit", &trace, boom, nil),
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Execute = %v, want the step error", err)
	}
	assertTrace(t, trace, []string{"run:ledger", "run:cluster", "run:audit", "comp:ledger"})
}

func TestExecute_CompensationFailureEscalates(t *testing.T) {
	var trace []string
	boom := errors.New("membership write failed")
	compBoom := errors.New("release failed")
	o := New()
	err := o.Execute(context.Background(), "accept", []Step{
		step("ledger", &trace, nil, compBoom),
		step("membership", &trace, boom, nil),
	})
	if !errors.Is(err, apperr.ErrInconsistentState) {
		t.Fatalf("Execute = %v, want inconsistent-state error", err)
	}
	if !errors.Is(err, boom) {
		t.Error("inconsistent-state error should retain the original step error")
	}
	if !errors.Is(err, compBoom) {
		t.Error("inconsistent-state error should retain the compensation error")
	}
}

func TestExecute_CompensationContinuesPastFailures(t *testing.T) {
	var trace []string
	o := New()
	err := o.Execute(context.Background(), "abdicate", []Step{
		step("ledger", &trace, nil, nil),
		step("membership", &trace, nil, errors.New("swap back failed")),
		step("cluster", &trace, errors.New("permanent"), nil),
	})
	if !errors.Is(err, apperr.ErrInconsistentState) {
		t.Fatalf("Execute = %v, want inconsistent-state error", err)
	}
	// the ledger compensation still ran after the membership one failed
	assertTrace(t, trace, []string{
		"run:ledger", "run:membership", "run:cluster",
		"comp:membership", "comp:ledger",
	})
}

func TestExecute_CompensationSurvivesCallerCancellation(t *testing.T) {
	var trace []string
	ctx, cancel := context.WithCancel(context.Background())
	o := New()
	err := o.Execute(ctx, "remove", []Step{
		step("ledger", &trace, nil, nil),
		{
			Name: "membership",
			Run: func(context.Context) error {
				cancel() // caller goes away mid-saga
				return errors.New("write failed")
			},
			Compensate: func(context.Context) error { return nil },
		},
	})
	if errors.Is(err, apperr.ErrInconsistentState) {
		t.Fatalf("compensation should have run despite cancellation: %v", err)
	}
	assertTrace(t, trace, []string{"run:ledger", "comp:ledger"})
}

// failingMeter rejects every instrument, forcing the fallback path.
type failingMeter struct {
	mnoop.Meter
}

func (failingMeter) Int64Counter(string, ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	return nil, errors.New("instrument rejected")
}

func TestNewCounter_FallsBackToNoop(t *testing.T) {
	c := newCounter(failingMeter{}, "saga.compensations", "test")
	if c == nil {
		t.Fatal("newCounter returned nil")
	}
	// Must not panic: this counter is incremented on the compensation path.
	c.Add(context.Background(), 1)
}

func assertTrace(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("trace = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("trace[%d] = %q, want %q (full: %v)", i, got[i], want[i], got)
		}
	}
}
