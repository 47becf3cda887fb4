package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	StatusSubmitted  ComplaintStatus = "submitted"
	StatusInProgress ComplaintStatus = "in_progress"
	StatusResolved   ComplaintStatus = "resolved"
	StatusRejected   ComplaintStatus = "rejected"
)

// ValidStatus reports whether s is one of the four statuses. Any status is
// reachable from any other through the transition operation; the lifecycle is
// intentionally not a forward-only lattice.
func ValidStatus(s ComplaintStatus) bool {
	switch s {
	case StatusSubmitted, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// ComplaintCategory enumerates what a complaint is about.
type ComplaintCategory string

const (
	CategoryPotholes    ComplaintCategory = "potholes"
	CategoryStreetlight ComplaintCategory = "streetlight"
	CategoryGarbage     ComplaintCategory = "garbage"
	CategoryWaterSupply ComplaintCategory = "water_supply"
	CategoryDrainage    ComplaintCategory = "drainage"
	CategoryOther       ComplaintCategory = "other"
)

// ValidCategory reports whether c is a known category.
func ValidCategory(c ComplaintCategory) bool {
	switch c {
	case CategoryPotholes, CategoryStreetlight, CategoryGarbage,
		CategoryWaterSupply, CategoryDrainage, CategoryOther:
		return true
	}
	return false
}

// ComplaintPriority enumerates urgency levels.
type ComplaintPriority string

const (
	PriorityHigh   ComplaintPriority = "high"
	PriorityMedium ComplaintPriority = "medium"
	PriorityLow    ComplaintPriority = "low"
)

// ValidPriority reports whether p is a known priority.
func ValidPriority(p ComplaintPriority) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Complaint is the aggregate for citizen-filed issues. Status is mutated only
// through the transition path that also appends a StatusUpdate; resolved_at
// is stamped when the complaint reaches resolved and is deliberately left in
// place when it later moves away (only resolution_notes is cleared).
type Complaint struct {
	ID                 string
	UserID             string
	Category           ComplaintCategory
	Description        string
	Address            string
	Landmark           *string
	ImageFilename      *string
	AssignedDepartment *string
	AssignedOfficer    *string
	Status             ComplaintStatus
	Priority           ComplaintPriority
	ResolutionNotes    *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ResolvedAt         *time.Time
}

// DepartmentName returns the assigned department or "" when unassigned.
func (c *Complaint) DepartmentName() string {
	if c.AssignedDepartment == nil {
		return ""
	}
	return *c.AssignedDepartment
}
