package dto

import (
	"time"

	"github.com/civicdesk/complaint-service/internal/domain"
)

// SubmitComplaintRequest is the JSON variant of complaint submission; the
// multipart form path reads the same field names.
type SubmitComplaintRequest struct {
	Category    string `json:"category" form:"category"`
	Description string `json:"description" form:"description"`
	Address     string `json:"address" form:"address"`
	Landmark    string `json:"landmark,omitempty" form:"landmark"`
	Priority    string `json:"priority,omitempty" form:"priority"`
}

// UpdateStatusRequest transitions a complaint.
type UpdateStatusRequest struct {
	Status          string `json:"status"`
	Note            string `json:"note,omitempty"`
	ResolutionNotes string `json:"resolution_notes,omitempty"`
}

// ReassignRequest assigns a different officer.
type ReassignRequest struct {
	OfficerID string `json:"officer_id"`
}

// ComplaintSummary is the list view of a complaint.
type ComplaintSummary struct {
	ID                 string                   `json:"id"`
	Category           domain.ComplaintCategory `json:"category"`
	Description        string                   `json:"description"`
	Address            string                   `json:"address"`
	Status             domain.ComplaintStatus   `json:"status"`
	Priority           domain.ComplaintPriority `json:"priority"`
	AssignedDepartment *string                  `json:"assigned_department,omitempty"`
	AssignedOfficer    *string                  `json:"assigned_officer,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

// ComplaintDetail adds the full record and timeline.
type ComplaintDetail struct {
	ComplaintSummary
	UserID          string                 `json:"user_id"`
	Landmark        *string                `json:"landmark,omitempty"`
	ImageFilename   *string                `json:"image_filename,omitempty"`
	ResolutionNotes *string                `json:"resolution_notes,omitempty"`
	ResolvedAt      *time.Time             `json:"resolved_at,omitempty"`
	Timeline        []StatusUpdateResponse `json:"timeline"`
}

// StatusUpdateResponse is one timeline entry.
type StatusUpdateResponse struct {
	ID        string                  `json:"id"`
	UpdatedBy string                  `json:"updated_by"`
	OldStatus *domain.ComplaintStatus `json:"old_status,omitempty"`
	NewStatus domain.ComplaintStatus  `json:"new_status"`
	Note      *string                 `json:"note,omitempty"`
	Timestamp time.Time               `json:"timestamp"`
}

// NewComplaintSummary maps a domain complaint.
func NewComplaintSummary(c *domain.Complaint) ComplaintSummary {
	return ComplaintSummary{
		ID:                 c.ID,
		Category:           c.Category,
		Description:        c.Description,
		Address:            c.Address,
		Status:             c.Status,
		Priority:           c.Priority,
		AssignedDepartment: c.AssignedDepartment,
		AssignedOfficer:    c.AssignedOfficer,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

// NewComplaintDetail maps a domain complaint with its timeline.
func NewComplaintDetail(c *domain.Complaint, timeline []domain.StatusUpdate) ComplaintDetail {
	entries := make([]StatusUpdateResponse, 0, len(timeline))
	for i := range timeline {
		entries = append(entries, NewStatusUpdateResponse(&timeline[i]))
	}
	return ComplaintDetail{
		ComplaintSummary: NewComplaintSummary(c),
		UserID:           c.UserID,
		Landmark:         c.Landmark,
		ImageFilename:    c.ImageFilename,
		ResolutionNotes:  c.ResolutionNotes,
		ResolvedAt:       c.ResolvedAt,
		Timeline:         entries,
	}
}

// NewStatusUpdateResponse maps a timeline entry.
func NewStatusUpdateResponse(u *domain.StatusUpdate) StatusUpdateResponse {
	return StatusUpdateResponse{
		ID:        u.ID,
		UpdatedBy: u.UpdatedBy,
		OldStatus: u.OldStatus,
		NewStatus: u.NewStatus,
		Note:      u.Note,
		Timestamp: u.Timestamp,
	}
}
