// Package publication is the status graph a design project follows from
// draft to a live marketplace listing.
package publication

import (
	"fmt"
	"strings"
	"time"
)

// AutoApproveAfter is how long a submission may wait in review before it is
// approved automatically.
const AutoApproveAfter = 48 * time.Hour

// publishedOrder is the order of the last status; progress is order/publishedOrder.
const publishedOrder = 10

// Record is the persisted publication state of one project.
type Record struct {
	ProjectID     string     `json:"project_id"`
	DesignerID    string     `json:"designer_id,omitempty"`
	Status        Status     `json:"status"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	ReviewerNotes string     `json:"reviewer_notes,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Machine answers transition questions. It is immutable after NewMachine.
type Machine struct {
	info        map[Status]StatusInfo
	order       []Status
	transitions map[Status]map[Status]struct{}
}

// NewMachine builds the machine from the constant tables.
func NewMachine() *Machine {
	m := &Machine{
		info:        make(map[Status]StatusInfo, len(statusList)),
		order:       make([]Status, 0, len(statusList)),
		transitions: make(map[Status]map[Status]struct{}, len(transitionTable)),
	}
	for _, info := range statusList {
		info.AdminActions = append([]Action(nil), info.AdminActions...)
		m.info[info.Status] = info
		m.order = append(m.order, info.Status)
	}
	for from, tos := range transitionTable {
		set := make(map[Status]struct{}, len(tos))
		for _, to := range tos {
			set[to] = struct{}{}
		}
		m.transitions[from] = set
	}
	return m
}

// CanTransition reports whether to is an allowed successor of from.
func (m *Machine) CanTransition(from, to Status) bool {
	_, ok := m.transitions[from][to]
	return ok
}

// Successors returns the allowed next statuses of from, in display order.
func (m *Machine) Successors(from Status) []Status {
	var out []Status
	for _, s := range m.order {
		if m.CanTransition(from, s) {
			out = append(out, s)
		}
	}
	return out
}

// Info returns the metadata for status.
func (m *Machine) Info(status Status) (StatusInfo, bool) {
	info, ok := m.info[status]
	if !ok {
		return StatusInfo{}, false
	}
	info.AdminActions = append([]Action(nil), info.AdminActions...)
	return info, true
}

// Statuses returns every status's metadata in display order.
func (m *Machine) Statuses() []StatusInfo {
	out := make([]StatusInfo, 0, len(m.order))
	for _, s := range m.order {
		info, _ := m.Info(s)
		out = append(out, info)
	}
	return out
}

// StageProgress is how far along the pipeline status is, as a percentage.
// Rejected and unknown statuses report 0.
func (m *Machine) StageProgress(status Status) float64 {
	info, ok := m.info[status]
	if !ok || info.Order < 0 {
		return 0
	}
	return float64(info.Order) / publishedOrder * 100
}

// ParseAction validates an external action identifier.
func ParseAction(raw string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := actionTargets[a]; !ok {
		return "", fmt.Errorf("%w: %q", ErrIllegalAction, raw)
	}
	return a, nil
}

// ActionTarget resolves an admin action taken in status to the status it
// leads to. The action must be listed for status.
func (m *Machine) ActionTarget(status Status, action Action) (Status, error) {
	info, ok := m.info[status]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	for _, a := range info.AdminActions {
		if a == action {
			return actionTargets[a], nil
		}
	}
	return "", fmt.Errorf("%w: %s in %s", ErrIllegalAction, action, status)
}

// AutoApproveDeadline returns when a pending review will be approved
// automatically. ok is false for any other status or a missing submit time.
func (m *Machine) AutoApproveDeadline(rec Record) (deadline time.Time, ok bool) {
	if rec.Status != PendingReview || rec.SubmittedAt == nil {
		return time.Time{}, false
	}
	return rec.SubmittedAt.Add(AutoApproveAfter), true
}

// ShouldAutoApprove reports whether rec's deadline has been reached at now.
func (m *Machine) ShouldAutoApprove(rec Record, now time.Time) bool {
	deadline, ok := m.AutoApproveDeadline(rec)
	return ok && !now.Before(deadline)
}

// Apply returns rec moved to status to. It does not mutate rec.
func (m *Machine) Apply(rec Record, to Status, now time.Time, notes string) (Record, error) {
	if _, ok := m.info[to]; !ok {
		return rec, fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if !m.CanTransition(rec.Status, to) {
		return rec, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, rec.Status, to)
	}

	next := rec
	ts := now.UTC()
	if to == PendingReview {
		next.SubmittedAt = &ts
		next.ReviewedAt = nil
	}
	if rec.Status == PendingReview {
		next.ReviewedAt = &ts
	}
	if notes != "" {
		next.ReviewerNotes = notes
	}
	next.Status = to
	next.UpdatedAt = ts
	return next, nil
}
