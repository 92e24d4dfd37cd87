package team

import "errors"

// Sentinel kinds for team challenge errors.
var (
	ErrRoleUnknown    = errors.New("role is not defined for this challenge")
	ErrMemberTaken    = errors.New("member already holds another role")
	ErrNotAssigned    = errors.New("member is not assigned to this role")
	ErrEmptyMember    = errors.New("member id must not be empty")
	ErrNotSubmitted   = errors.New("role has nothing submitted for review")
	ErrInvalidVerdict = errors.New("invalid review verdict")
)
