package models

import "time"

type EntryType string

const (
	EntryBillable    EntryType = "billable"
	EntryNonBillable EntryType = "non_billable"
)

func (t EntryType) Valid() bool {
	return t == EntryBillable || t == EntryNonBillable
}

// Audit actions, one per mutating operation.
const (
	ActionCreate      = "create"
	ActionEdit        = "edit"
	ActionSubmit      = "submit"
	ActionApprove     = "approve"
	ActionReject      = "reject"
	ActionBulkApprove = "bulk_approve"
	ActionBulkReject  = "bulk_reject"
	ActionMarkBilled  = "mark_billed"
	ActionDelete      = "delete"
)

// TimerSession is a running clock for one staff member. A partial unique
// index on (user_id) WHERE is_active guarantees at most one active session
// per user; see cmd/api/main.go.
type TimerSession struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID    string    `gorm:"type:uuid;index;not null" json:"tenant_id"`
	UserID      string    `gorm:"type:uuid;index;not null" json:"user_id"`
	ClientID    *string   `gorm:"type:uuid" json:"client_id,omitempty"`
	ProjectID   *string   `gorm:"type:uuid" json:"project_id,omitempty"`
	TaskID      *string   `gorm:"type:uuid" json:"task_id,omitempty"`
	Description *string   `json:"description,omitempty"`
	StartedAt   time.Time `gorm:"not null" json:"started_at"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TimeEntry is the canonical unit of work. BillableAmount stays nil until a
// rate has been resolved; once IsBilled is set the row is immutable.
type TimeEntry struct {
	ID              string     `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID        string     `gorm:"type:uuid;index;not null" json:"tenant_id"`
	UserID          string     `gorm:"type:uuid;index;not null" json:"user_id"`
	ClientID        *string    `gorm:"type:uuid;index" json:"client_id,omitempty"`
	ProjectID       *string    `gorm:"type:uuid;index" json:"project_id,omitempty"`
	TaskID          *string    `gorm:"type:uuid" json:"task_id,omitempty"`
	Description     *string    `json:"description,omitempty"`
	StartTime       time.Time  `gorm:"not null;index" json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationSeconds int64      `gorm:"not null" json:"duration_seconds"`
	Type            EntryType  `gorm:"size:20;not null;default:billable" json:"type"`
	Status          Status     `gorm:"size:20;not null;default:draft;index" json:"status"`
	RateApplied     *float64   `json:"rate_applied,omitempty"`
	BillableAmount  *float64   `json:"billable_amount,omitempty"`
	IsBilled        bool       `gorm:"not null;default:false;index" json:"is_billed"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Rate lookup tables. Independent, tenant-scoped; precedence is
// staff > task type > client, decided in services/ratebook.

type StaffRate struct {
	ID            string     `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID      string     `gorm:"type:uuid;index;not null" json:"tenant_id"`
	UserID        string     `gorm:"type:uuid;index;not null" json:"user_id"`
	HourlyRate    float64    `gorm:"not null" json:"hourly_rate"`
	EffectiveFrom *time.Time `json:"effective_from,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type TaskTypeRate struct {
	ID            string     `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID      string     `gorm:"type:uuid;index;not null" json:"tenant_id"`
	TaskTypeID    string     `gorm:"type:uuid;index;not null" json:"task_type_id"`
	HourlyRate    float64    `gorm:"not null" json:"hourly_rate"`
	EffectiveFrom *time.Time `json:"effective_from,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type ClientRate struct {
	ID            string     `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID      string     `gorm:"type:uuid;index;not null" json:"tenant_id"`
	ClientID      string     `gorm:"type:uuid;index;not null" json:"client_id"`
	HourlyRate    float64    `gorm:"not null" json:"hourly_rate"`
	EffectiveFrom *time.Time `json:"effective_from,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TimeEntryComment is append-only; there is no update or delete path.
type TimeEntryComment struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	TimeEntryID string    `gorm:"type:uuid;index;not null" json:"time_entry_id"`
	TenantID    string    `gorm:"type:uuid;index;not null" json:"tenant_id"`
	UserID      string    `gorm:"type:uuid;not null" json:"user_id"`
	Comment     string    `gorm:"not null" json:"comment"`
	IsInternal  bool      `gorm:"not null;default:false" json:"is_internal"`
	CreatedAt   time.Time `json:"created_at"`
}

// AuditRecord is append-only, one row per mutating operation. Changes holds
// a field-level diff on edits.
type AuditRecord struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TimeEntryID    string    `gorm:"type:uuid;index;not null" json:"time_entry_id"`
	TenantID       string    `gorm:"type:uuid;index;not null" json:"tenant_id"`
	ActorID        string    `gorm:"type:uuid;not null" json:"actor_id"`
	Action         string    `gorm:"size:30;not null" json:"action"`
	PreviousStatus *Status   `gorm:"size:20" json:"previous_status,omitempty"`
	NewStatus      *Status   `gorm:"size:20" json:"new_status,omitempty"`
	Reason         *string   `json:"reason,omitempty"`
	Changes        JSONB     `gorm:"type:jsonb;default:'{}'" json:"changes"`
	OccurredAt     time.Time `gorm:"not null;index" json:"occurred_at"`
}
