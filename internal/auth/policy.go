package auth

// Operation names every role-gated engine operation. Ownership checks
// (owner-only submit, owner-or-managerial edit) live in the services; this
// table only answers "may this role ever do this".
type Operation string

const (
	OpEntryApprove Operation = "entry.approve"
	OpEntryReject  Operation = "entry.reject"
	OpEntryDelete  Operation = "entry.delete"
	OpQueueView    Operation = "queue.view"
	OpRateWrite    Operation = "rate.write"
)

var policy = map[Operation]map[Role]bool{
	OpEntryApprove: {RoleManager: true, RoleAdmin: true},
	OpEntryReject:  {RoleManager: true, RoleAdmin: true},
	OpEntryDelete:  {RoleAdmin: true},
	OpQueueView:    {RoleManager: true, RoleAdmin: true},
	OpRateWrite:    {RoleManager: true, RoleAdmin: true},
}

func Allowed(role Role, op Operation) bool {
	return policy[op][role]
}
