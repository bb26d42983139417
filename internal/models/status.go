package models

// Status is the closed lifecycle of a time entry. Transition validity is
// answered here and nowhere else.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// rejected → submitted is the single backward edge: a rejected entry may be
// fixed up and resubmitted.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusSubmitted},
	StatusSubmitted: {StatusApproved, StatusRejected},
	StatusRejected:  {StatusSubmitted},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Editable reports whether entry content may still change. Approved entries
// are frozen except for the billed flag.
func (s Status) Editable() bool {
	return s == StatusDraft || s == StatusRejected
}
