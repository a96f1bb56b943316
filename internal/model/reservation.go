package model

import (
	"errors"
	"fmt"
	"time"
)

// Reservation is a user's claim on a tool as reported by the backend.
type Reservation struct {
	ID              int64   `json:"id"`
	ToolID          int64   `json:"tool_id"`
	UserID          int64   `json:"user_id"`
	Tool            *Tool   `json:"tool,omitempty"`
	User            *User   `json:"user,omitempty"`
	ReservationDate string  `json:"reservation_date"`
	IsActive        bool    `json:"is_active"`
	IsCheckedOut    bool    `json:"is_checked_out"`
	ReturnPending   bool    `json:"return_pending"`
	ReturnDate      *string `json:"return_date,omitempty"`
}

// ToolName returns the nested tool name, or a placeholder when the backend
// did not include the tool.
func (r Reservation) ToolName() string {
	if r.Tool == nil || r.Tool.Name == "" {
		return "Tool not found"
	}
	return r.Tool.Name
}

// State is the lifecycle position of a reservation.
type State int

// Reservation states.
const (
	StateAvailable State = iota
	StateReserved
	StateCheckedOut
	StateReturnPending
	StateReturned
	StateCancelled
)

var stateNames = map[State]string{
	StateAvailable:     "available",
	StateReserved:      "reserved",
	StateCheckedOut:    "checked_out",
	StateReturnPending: "return_pending",
	StateReturned:      "returned",
	StateCancelled:     "cancelled",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no further transition can leave s.
func (s State) Terminal() bool {
	return s == StateReturned || s == StateCancelled
}

// Event triggers a state transition.
type Event int

// Workflow events.
const (
	EventReserve Event = iota
	EventCancel
	EventExpire
	EventCheckout
	EventRequestReturn
	EventApproveReturn
	EventRejectReturn
)

var eventNames = map[Event]string{
	EventReserve:       "reserve",
	EventCancel:        "cancel",
	EventExpire:        "expire",
	EventCheckout:      "checkout",
	EventRequestReturn: "request_return",
	EventApproveReturn: "approve_return",
	EventRejectReturn:  "reject_return",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// Errors returned by the state machine.
var (
	ErrIllegalTransition = errors.New("illegal transition")
	ErrInconsistentFlags = errors.New("inconsistent reservation flags")
)

type transitionKey struct {
	from  State
	event Event
}

var transitions = map[transitionKey]State{
	{StateAvailable, EventReserve}:           StateReserved,
	{StateReserved, EventCancel}:             StateCancelled,
	{StateReserved, EventExpire}:             StateCancelled,
	{StateReserved, EventCheckout}:           StateCheckedOut,
	{StateCheckedOut, EventRequestReturn}:    StateReturnPending,
	{StateReturnPending, EventApproveReturn}: StateReturned,
	{StateReturnPending, EventRejectReturn}:  StateCheckedOut,
}

// Transition returns the state reached by applying event to from.
func Transition(from State, event Event) (State, error) {
	to, ok := transitions[transitionKey{from, event}]
	if !ok {
		return from, fmt.Errorf("%w: %s from %s", ErrIllegalTransition, event, from)
	}
	return to, nil
}

// CanTransition reports whether event is legal from s.
func CanTransition(from State, event Event) bool {
	_, ok := transitions[transitionKey{from, event}]
	return ok
}

// State derives the lifecycle state from the backend flags.
func (r Reservation) State() (State, error) {
	switch {
	case r.IsCheckedOut && !r.IsActive:
		return 0, fmt.Errorf("%w: reservation %d checked out but inactive", ErrInconsistentFlags, r.ID)
	case r.ReturnPending && !r.IsCheckedOut:
		return 0, fmt.Errorf("%w: reservation %d return pending but not checked out", ErrInconsistentFlags, r.ID)
	case !r.IsActive && r.ReturnDate != nil:
		return StateReturned, nil
	case !r.IsActive:
		return StateCancelled, nil
	case r.ReturnPending:
		return StateReturnPending, nil
	case r.IsCheckedOut:
		return StateCheckedOut, nil
	default:
		return StateReserved, nil
	}
}

// CheckoutDeclaration is the borrower declaration given at checkout.
type CheckoutDeclaration struct {
	ReservationID      int64     `json:"reservation_id"`
	ToolID             int64     `json:"tool_id"`
	FullName           string    `json:"full_name"`
	Address            string    `json:"address"`
	Phone              string    `json:"phone"`
	ExpectedReturnDate string    `json:"expected_return_date"`
	AgreedToTerms      bool      `json:"agreed_to_terms"`
	DeclaredAt         time.Time `json:"declared_at,omitempty"`
}

// ReturnReport is the condition report given when a tool is returned.
type ReturnReport struct {
	ReservationID       int64     `json:"reservation_id"`
	ToolID              int64     `json:"tool_id"`
	Condition           string    `json:"condition"`
	ReturnReason        string    `json:"return_reason"`
	Damages             string    `json:"damages,omitempty"`
	Feedback            string    `json:"feedback,omitempty"`
	CleaningStatus      string    `json:"cleaning_status,omitempty"`
	MissingParts        string    `json:"missing_parts,omitempty"`
	MaintenanceNeeded   string    `json:"maintenance_needed,omitempty"`
	NotesForNextUser    string    `json:"notes_for_next_user,omitempty"`
	SafetyIssues        string    `json:"safety_issues,omitempty"`
	ActualUsageDuration string    `json:"actual_usage_duration,omitempty"`
	Transmitted         bool      `json:"-"`
	SubmittedAt         time.Time `json:"-"`
}
