package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateStep, false},
		{StateSubmitting, false},
		{StateError, false},
		{StateCompleted, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"step", StateStep, true},
		{"completed", StateCompleted, true},
		{"unknown", State("PAUSED"), false},
		{"empty", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuilder_ConfigureReturnsSameConfig(t *testing.T) {
	builder := NewBuilder()

	config := builder.Configure(StateStep)
	if config == nil {
		t.Fatal("Configure() returned nil")
	}
	if config != builder.Configure(StateStep) {
		t.Error("Configure() should return same config for same state")
	}
}

func TestBuilder_PanicsOnInvalidStates(t *testing.T) {
	cases := map[string]func(){
		"configure": func() { NewBuilder().Configure(State("BOGUS")) },
		"build":     func() { NewBuilder().Build(State("BOGUS")) },
		"permit":    func() { NewBuilder().Configure(StateStep).Permit(TriggerNext, State("BOGUS")) },
	}

	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("%s should panic on invalid state", name)
				}
			}()
			fn()
		})
	}
}

func TestStateMachine_GuardedTransition(t *testing.T) {
	allowed := false
	builder := NewBuilder()
	builder.Configure(StateStep).
		PermitIf(TriggerSubmit, StateSubmitting, func(ctx context.Context) bool { return allowed })

	machine := builder.Build(StateStep)

	if machine.CanFire(context.Background(), TriggerSubmit) {
		t.Error("CanFire() should be false while guard fails")
	}
	err := machine.Fire(context.Background(), TriggerSubmit)
	if !errors.Is(err, ErrGuardFailed) {
		t.Fatalf("Fire() error = %v, want %v", err, ErrGuardFailed)
	}
	if machine.State() != StateStep {
		t.Errorf("State should remain %v after failed Fire(), got %v", StateStep, machine.State())
	}

	allowed = true
	if !machine.CanFire(context.Background(), TriggerSubmit) {
		t.Error("CanFire() should be true once guard passes")
	}
	if err := machine.Fire(context.Background(), TriggerSubmit); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if machine.State() != StateSubmitting {
		t.Errorf("State after Fire() = %v, want %v", machine.State(), StateSubmitting)
	}
}

func TestStateMachine_FirstPassingGuardWins(t *testing.T) {
	last := true
	builder := NewBuilder()
	builder.Configure(StateStep).
		PermitIf(TriggerNext, StateSubmitting, func(ctx context.Context) bool { return last }).
		PermitIf(TriggerNext, StateStep, func(ctx context.Context) bool { return !last })

	m1 := builder.Build(StateStep)
	if err := m1.Fire(context.Background(), TriggerNext); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if m1.State() != StateSubmitting {
		t.Errorf("State = %v, want %v", m1.State(), StateSubmitting)
	}

	last = false
	m2 := builder.Build(StateStep)
	if err := m2.Fire(context.Background(), TriggerNext); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if m2.State() != StateStep {
		t.Errorf("State = %v, want %v", m2.State(), StateStep)
	}
}

func TestStateMachine_InvalidTransition(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateStep).Permit(TriggerSubmit, StateSubmitting)
	machine := builder.Build(StateStep)

	err := machine.Fire(context.Background(), TriggerSucceed)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}

	unconfigured := NewBuilder().Build(StateCompleted)
	if err := unconfigured.Fire(context.Background(), TriggerNext); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}
}

func TestStateMachine_OnEntry(t *testing.T) {
	var entered []string
	builder := NewBuilder()
	builder.Configure(StateSubmitting).
		Permit(TriggerFail, StateError)
	builder.Configure(StateStep).
		Permit(TriggerSubmit, StateSubmitting)
	builder.Configure(StateError).
		OnEntry(func(ctx context.Context, from State, trigger Trigger) {
			entered = append(entered, from.String()+"/"+trigger.String())
		})

	machine := builder.Build(StateStep)
	if err := machine.Fire(context.Background(), TriggerSubmit); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if err := machine.Fire(context.Background(), TriggerFail); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}

	if len(entered) != 1 || entered[0] != "SUBMITTING/FAIL" {
		t.Errorf("entry actions = %v, want [SUBMITTING/FAIL]", entered)
	}
}

func TestStateMachine_PermittedTriggersSorted(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateStep).
		Permit(TriggerSubmit, StateSubmitting).
		Permit(TriggerNext, StateStep).
		Permit(TriggerPrevious, StateStep)

	got := builder.Build(StateStep).PermittedTriggers()
	want := []Trigger{TriggerNext, TriggerPrevious, TriggerSubmit}
	if len(got) != len(want) {
		t.Fatalf("PermittedTriggers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PermittedTriggers()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if n := len(NewBuilder().Build(StateStep).PermittedTriggers()); n != 0 {
		t.Errorf("PermittedTriggers() on unconfigured machine returned %d triggers, want 0", n)
	}
}

func TestStateMachine_Independence(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateStep).Permit(TriggerSubmit, StateSubmitting)

	m1 := builder.Build(StateStep)
	m2 := builder.Build(StateStep)

	if err := m1.Fire(context.Background(), TriggerSubmit); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if m2.State() != StateStep {
		t.Errorf("m2 state = %v, want %v (machines should be independent)", m2.State(), StateStep)
	}
}
