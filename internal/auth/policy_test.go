package auth

import "testing"

func TestPolicyTable(t *testing.T) {
	cases := []struct {
		role Role
		op   Operation
		want bool
	}{
		{RoleStaff, OpEntryApprove, false},
		{RoleManager, OpEntryApprove, true},
		{RoleAdmin, OpEntryApprove, true},
		{RoleStaff, OpEntryReject, false},
		{RoleManager, OpEntryReject, true},
		{RoleStaff, OpEntryDelete, false},
		{RoleManager, OpEntryDelete, false},
		{RoleAdmin, OpEntryDelete, true},
		{RoleStaff, OpQueueView, false},
		{RoleManager, OpQueueView, true},
		{RoleStaff, OpRateWrite, false},
		{RoleAdmin, OpRateWrite, true},
	}
	for _, c := range cases {
		if got := Allowed(c.role, c.op); got != c.want {
			t.Errorf("Allowed(%s, %s) = %v, want %v", c.role, c.op, got, c.want)
		}
	}
}

func TestParseRole(t *testing.T) {
	if _, ok := ParseRole("superuser"); ok {
		t.Error("unknown role accepted")
	}
	for _, s := range []string{"staff", "manager", "admin"} {
		if _, ok := ParseRole(s); !ok {
			t.Errorf("role %q rejected", s)
		}
	}
}

func TestManagerial(t *testing.T) {
	if (Caller{Role: RoleStaff}).Managerial() {
		t.Error("staff counted as managerial")
	}
	if !(Caller{Role: RoleManager}).Managerial() || !(Caller{Role: RoleAdmin}).Managerial() {
		t.Error("manager/admin not counted as managerial")
	}
}
