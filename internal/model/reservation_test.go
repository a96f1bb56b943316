package model

import (
	"errors"
	"testing"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		from  State
		event Event
		want  State
	}{
		{StateAvailable, EventReserve, StateReserved},
		{StateReserved, EventCancel, StateCancelled},
		{StateReserved, EventExpire, StateCancelled},
		{StateReserved, EventCheckout, StateCheckedOut},
		{StateCheckedOut, EventRequestReturn, StateReturnPending},
		{StateReturnPending, EventApproveReturn, StateReturned},
		{StateReturnPending, EventRejectReturn, StateCheckedOut},
	}

	for _, tt := range tests {
		got, err := Transition(tt.from, tt.event)
		if err != nil {
			t.Errorf("Transition(%s, %s): unexpected error %v", tt.from, tt.event, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Transition(%s, %s) = %s, want %s", tt.from, tt.event, got, tt.want)
		}
	}
}

func TestTransitionIllegal(t *testing.T) {
	tests := []struct {
		from  State
		event Event
	}{
		// No regression from return pending back to reserved.
		{StateReturnPending, EventCancel},
		{StateReturnPending, EventCheckout},
		{StateCheckedOut, EventCancel},
		{StateCheckedOut, EventCheckout},
		{StateReserved, EventRequestReturn},
		{StateReserved, EventApproveReturn},
		{StateAvailable, EventCheckout},
		{StateReserved, EventReserve},
	}

	for _, tt := range tests {
		got, err := Transition(tt.from, tt.event)
		if !errors.Is(err, ErrIllegalTransition) {
			t.Errorf("Transition(%s, %s): expected ErrIllegalTransition, got %v", tt.from, tt.event, err)
		}
		if got != tt.from {
			t.Errorf("Transition(%s, %s) moved to %s on error", tt.from, tt.event, got)
		}
	}
}

func TestTerminalStatesHaveNoExit(t *testing.T) {
	events := []Event{EventReserve, EventCancel, EventExpire, EventCheckout,
		EventRequestReturn, EventApproveReturn, EventRejectReturn}

	for _, s := range []State{StateReturned, StateCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
		for _, e := range events {
			if CanTransition(s, e) {
				t.Errorf("terminal state %s accepts %s", s, e)
			}
		}
	}
}

func TestReservationState(t *testing.T) {
	returned := "2024-06-10T10:00:00"

	tests := []struct {
		name string
		r    Reservation
		want State
	}{
		{"reserved", Reservation{IsActive: true}, StateReserved},
		{"checked out", Reservation{IsActive: true, IsCheckedOut: true}, StateCheckedOut},
		{"return pending", Reservation{IsActive: true, IsCheckedOut: true, ReturnPending: true}, StateReturnPending},
		{"cancelled", Reservation{}, StateCancelled},
		{"returned", Reservation{ReturnDate: &returned}, StateReturned},
	}

	for _, tt := range tests {
		got, err := tt.r.State()
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestReservationStateInconsistent(t *testing.T) {
	bad := []Reservation{
		{ID: 1, IsCheckedOut: true},
		{ID: 2, IsActive: true, ReturnPending: true},
		{ID: 3, ReturnPending: true},
	}

	for _, r := range bad {
		if _, err := r.State(); !errors.Is(err, ErrInconsistentFlags) {
			t.Errorf("reservation %d: expected ErrInconsistentFlags, got %v", r.ID, err)
		}
	}
}

func TestReservationToolName(t *testing.T) {
	if got := (Reservation{}).ToolName(); got != "Tool not found" {
		t.Errorf("expected placeholder, got %q", got)
	}
	r := Reservation{Tool: &Tool{Name: "Drill"}}
	if got := r.ToolName(); got != "Drill" {
		t.Errorf("expected Drill, got %q", got)
	}
}
