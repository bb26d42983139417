package models

import "testing"

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusDraft, StatusSubmitted, true},
		{StatusSubmitted, StatusApproved, true},
		{StatusSubmitted, StatusRejected, true},
		{StatusRejected, StatusSubmitted, true},
		{StatusDraft, StatusApproved, false},
		{StatusDraft, StatusRejected, false},
		{StatusApproved, StatusSubmitted, false},
		{StatusApproved, StatusRejected, false},
		{StatusApproved, StatusDraft, false},
		{StatusRejected, StatusApproved, false},
		{StatusSubmitted, StatusDraft, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.want {
			t.Errorf("%s -> %s = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestStatusEditable(t *testing.T) {
	if !StatusDraft.Editable() || !StatusRejected.Editable() {
		t.Error("draft and rejected must be editable")
	}
	if StatusSubmitted.Editable() || StatusApproved.Editable() {
		t.Error("submitted and approved must not be editable")
	}
}

func TestStatusValid(t *testing.T) {
	if Status("billed").Valid() {
		t.Error("unknown status accepted")
	}
	if !StatusDraft.Valid() {
		t.Error("draft rejected")
	}
}
