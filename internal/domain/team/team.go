// Package team coordinates role assignment and submission progress for a
// multi-member challenge attempt.
package team

import (
	"fmt"
	"sort"
	"time"
)

// Role identifies one slot in a team challenge, e.g. "pattern_maker".
type Role string

// Assignments maps each role to the member holding it.
type Assignments map[Role]string

// SubmissionStatus is the review state of one role's work.
type SubmissionStatus string

const (
	StatusPending          SubmissionStatus = "pending"
	StatusSubmitted        SubmissionStatus = "submitted"
	StatusApproved         SubmissionStatus = "approved"
	StatusRevisionRequired SubmissionStatus = "revision_required"
)

// Valid reports whether s is a known status.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSubmitted, StatusApproved, StatusRevisionRequired:
		return true
	}
	return false
}

// counts reports whether s counts toward completion.
func (s SubmissionStatus) counts() bool {
	return s == StatusSubmitted || s == StatusApproved
}

// RoleSubmission is the work one role holder has handed in.
type RoleSubmission struct {
	Files       []string         `json:"files"`
	SubmittedAt *time.Time       `json:"submitted_at,omitempty"`
	Status      SubmissionStatus `json:"status"`
}

// Submissions maps each role to its submission state.
type Submissions map[Role]RoleSubmission

// AllRolesAssigned reports whether every role has a member and no member
// holds two of them. A challenge with no roles is never fully assigned.
func AllRolesAssigned(roles []Role, assignments Assignments) bool {
	if len(roles) == 0 {
		return false
	}
	seen := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		m := assignments[r]
		if m == "" {
			return false
		}
		if _, dup := seen[m]; dup {
			return false
		}
		seen[m] = struct{}{}
	}
	return true
}

// Progress returns the percentage of roles whose work is submitted or
// approved. Zero roles yields 0.
func Progress(roles []Role, submissions Submissions) float64 {
	if len(roles) == 0 {
		return 0
	}
	done := 0
	for _, r := range roles {
		if sub, ok := submissions[r]; ok && sub.Status.counts() {
			done++
		}
	}
	return float64(done) / float64(len(roles)) * 100
}

// AssignableMembers returns the members that may take role: those holding no
// role, plus the current holder of role itself. Input order is kept.
func AssignableMembers(members []string, assignments Assignments, role Role) []string {
	holding := make(map[string]Role, len(assignments))
	for r, m := range assignments {
		if m != "" {
			holding[m] = r
		}
	}
	out := make([]string, 0, len(members))
	for _, m := range members {
		if r, taken := holding[m]; taken && r != role {
			continue
		}
		out = append(out, m)
	}
	return out
}

// DuplicateMembers returns members assigned to more than one role, sorted.
func DuplicateMembers(assignments Assignments) []string {
	counts := make(map[string]int, len(assignments))
	for _, m := range assignments {
		if m != "" {
			counts[m]++
		}
	}
	var dups []string
	for m, n := range counts {
		if n > 1 {
			dups = append(dups, m)
		}
	}
	sort.Strings(dups)
	return dups
}

// Attempt is one try at a team challenge. Assignments and submissions live
// only as long as the attempt; Reset starts a fresh one.
type Attempt struct {
	Roles       []Role      `json:"roles"`
	Assignments Assignments `json:"assignments"`
	Submissions Submissions `json:"submissions"`
}

// NewAttempt returns an empty attempt over roles.
func NewAttempt(roles []Role) *Attempt {
	a := &Attempt{Roles: append([]Role(nil), roles...)}
	a.clear()
	return a
}

func (a *Attempt) clear() {
	a.Assignments = make(Assignments, len(a.Roles))
	a.Submissions = make(Submissions, len(a.Roles))
	for _, r := range a.Roles {
		a.Submissions[r] = RoleSubmission{Status: StatusPending}
	}
}

func (a *Attempt) hasRole(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Assign gives role to member, replacing any previous holder.
func (a *Attempt) Assign(role Role, member string) error {
	if !a.hasRole(role) {
		return fmt.Errorf("%w: %q", ErrRoleUnknown, role)
	}
	if member == "" {
		return ErrEmptyMember
	}
	for r, m := range a.Assignments {
		if m == member && r != role {
			return fmt.Errorf("%w: %s holds %s", ErrMemberTaken, member, r)
		}
	}
	a.Assignments[role] = member
	return nil
}

// Submit records member's files for role.
func (a *Attempt) Submit(role Role, member string, files []string, now time.Time) error {
	if !a.hasRole(role) {
		return fmt.Errorf("%w: %q", ErrRoleUnknown, role)
	}
	if a.Assignments[role] != member || member == "" {
		return fmt.Errorf("%w: %s for %s", ErrNotAssigned, member, role)
	}
	ts := now.UTC()
	a.Submissions[role] = RoleSubmission{
		Files:       append([]string(nil), files...),
		SubmittedAt: &ts,
		Status:      StatusSubmitted,
	}
	return nil
}

// Review settles a submitted role as approved or revision_required.
func (a *Attempt) Review(role Role, verdict SubmissionStatus) error {
	if !a.hasRole(role) {
		return fmt.Errorf("%w: %q", ErrRoleUnknown, role)
	}
	if verdict != StatusApproved && verdict != StatusRevisionRequired {
		return fmt.Errorf("%w: %q", ErrInvalidVerdict, verdict)
	}
	sub := a.Submissions[role]
	if sub.Status != StatusSubmitted {
		return fmt.Errorf("%w: %s is %s", ErrNotSubmitted, role, sub.Status)
	}
	sub.Status = verdict
	a.Submissions[role] = sub
	return nil
}

// Reset discards assignments and submissions for a new attempt.
func (a *Attempt) Reset() {
	a.clear()
}

// AllRolesAssigned reports whether the attempt is fully staffed.
func (a *Attempt) AllRolesAssigned() bool {
	return AllRolesAssigned(a.Roles, a.Assignments)
}

// Progress returns the attempt's completion percentage.
func (a *Attempt) Progress() float64 {
	return Progress(a.Roles, a.Submissions)
}
