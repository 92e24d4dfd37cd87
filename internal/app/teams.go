package service

import (
	"fmt"

	"github.com/adorzia/atelier/internal/domain/team"
)

// TeamState is a snapshot of one team-challenge attempt.
type TeamState struct {
	Roles       []team.Role      `json:"roles"`
	Members     []string         `json:"members,omitempty"`
	Assignments team.Assignments `json:"assignments"`
	Submissions team.Submissions `json:"submissions"`
}

// TeamProgress is the coordinator's view of a TeamState.
type TeamProgress struct {
	AllRolesAssigned bool                   `json:"all_roles_assigned"`
	Progress         float64                `json:"progress"`
	DuplicateMembers []string               `json:"duplicate_members"`
	Assignable       map[team.Role][]string `json:"assignable,omitempty"`
}

// TeamProgress evaluates a team attempt. Submissions with an unknown status
// are rejected.
func (s *Service) TeamProgress(st TeamState) (TeamProgress, error) {
	for role, sub := range st.Submissions {
		if !sub.Status.Valid() {
			return TeamProgress{}, fmt.Errorf("%w: role %s has status %q", ErrInvalidInput, role, sub.Status)
		}
	}

	out := TeamProgress{
		AllRolesAssigned: team.AllRolesAssigned(st.Roles, st.Assignments),
		Progress:         team.Progress(st.Roles, st.Submissions),
		DuplicateMembers: team.DuplicateMembers(st.Assignments),
	}
	if out.DuplicateMembers == nil {
		out.DuplicateMembers = []string{}
	}
	if len(st.Members) > 0 {
		out.Assignable = make(map[team.Role][]string, len(st.Roles))
		for _, r := range st.Roles {
			out.Assignable[r] = team.AssignableMembers(st.Members, st.Assignments, r)
		}
	}
	return out, nil
}
