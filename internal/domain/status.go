package domain

import (
	"encoding/json"
	"fmt"
)

// Status represents the lifecycle state of a task node.
type Status string

const (
	StatusPending    Status = "pending"     // Waiting to be scheduled
	StatusInProgress Status = "in-progress" // An agent is working on it
	StatusDone       Status = "done"        // Completed
	StatusBlocked    Status = "blocked"     // Parked until unblocked

	// Legacy spelling accepted on read
	statusInProgressLegacy Status = "in_progress"
)

// AllStatuses returns all valid status values in display order.
func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusInProgress,
		StatusDone,
		StatusBlocked,
	}
}

// transitions defines the allowed status transitions.
// Flow: pending → in-progress → done
//
//	pending/in-progress → blocked → pending
var transitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusDone, StatusBlocked},
	StatusInProgress: {StatusDone, StatusBlocked, StatusPending},
	StatusBlocked:    {StatusPending},
	StatusDone:       {},
}

// CanTransitionTo returns true if the status can transition to the target status.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// CanComplete returns true if a leaf in this status may be marked done.
func (s Status) CanComplete() bool {
	return s == StatusPending || s == StatusInProgress
}

// IsValid returns true if the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone, StatusBlocked:
		return true
	default:
		return false
	}
}

// Display returns a human-readable representation of the status.
func (s Status) Display() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	case StatusBlocked:
		return "Blocked"
	default:
		return string(s)
	}
}

// Marker returns the compact status marker used in tree listings.
func (s Status) Marker() string {
	switch s {
	case StatusDone:
		return "[x]"
	case StatusPending:
		return "[ ]"
	default:
		return "[" + string(s) + "]"
	}
}

// ParseStatus parses a status string, accepting the legacy underscore spelling.
// An empty string parses as pending.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case "":
		return StatusPending, nil
	case statusInProgressLegacy:
		return StatusInProgress, nil
	}
	if !st.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// UnmarshalJSON decodes a status, normalizing legacy values.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// UnmarshalYAML decodes a status from YAML, normalizing legacy values.
func (s *Status) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}
