package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/events"
	"github.com/civicdesk/complaint-service/internal/repository"
	apperrors "github.com/civicdesk/complaint-service/pkg/util"
)

// UploadCleaner removes a staged upload when the surrounding write fails.
type UploadCleaner interface {
	Remove(filename string) error
}

// ComplaintService coordinates the complaint lifecycle: submission with
// auto-routing, status transitions, reassignment and timeline reads. Status
// is never written outside a transaction that also appends the matching
// StatusUpdate.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	updates    repository.StatusUpdateRepository
	tx         repository.TxManager
	assigner   *AssignmentService
	uploads    UploadCleaner
	dispatcher events.Dispatcher
}

// ComplaintDependencies bundles repositories for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo    repository.ComplaintRepository
	StatusUpdateRepo repository.StatusUpdateRepository
	TxManager        repository.TxManager
	Assigner         *AssignmentService
	Uploads          UploadCleaner
	Dispatcher       events.Dispatcher
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	return &ComplaintService{
		complaints: deps.ComplaintRepo,
		updates:    deps.StatusUpdateRepo,
		tx:         deps.TxManager,
		assigner:   deps.Assigner,
		uploads:    deps.Uploads,
		dispatcher: deps.Dispatcher,
	}
}

// SubmitInput describes a new complaint. ImageFilename refers to an already
// staged upload; the service deletes it if persistence fails.
type SubmitInput struct {
	Category      domain.ComplaintCategory
	Description   string
	Address       string
	Landmark      string
	Priority      domain.ComplaintPriority
	ImageFilename *string
}

// TransitionInput describes a status change.
type TransitionInput struct {
	NewStatus       domain.ComplaintStatus
	Note            string
	ResolutionNotes string
}

// CitizenFilter narrows a citizen's own listing.
type CitizenFilter struct {
	Statuses []domain.ComplaintStatus
	Limit    int
	Offset   int
}

// OfficerFilter narrows a department queue listing.
type OfficerFilter struct {
	Statuses   []domain.ComplaintStatus
	Priorities []domain.ComplaintPriority
	Limit      int
	Offset     int
}

// AdminFilter narrows the all-complaints listing.
type AdminFilter struct {
	Statuses    []domain.ComplaintStatus
	Categories  []domain.ComplaintCategory
	Priorities  []domain.ComplaintPriority
	Department  *string
	Officer     *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Unassigned  bool
	Limit       int
	Offset      int
}

// CitizenSummary holds a citizen's dashboard counts.
type CitizenSummary struct {
	Total    int64 `json:"total"`
	Resolved int64 `json:"resolved"`
	Pending  int64 `json:"pending"`
}

// OfficerSummary holds a department dashboard's counts.
type OfficerSummary struct {
	Department    string `json:"department"`
	TotalAssigned int64  `json:"total_assigned"`
	ResolvedToday int64  `json:"resolved_today"`
	Pending       int64  `json:"pending"`
}

// Submit validates and files a new complaint for a citizen. Validation
// failures are collected and returned together; nothing is written. On
// success the complaint, routed to its department, and the initial timeline
// entry commit in one transaction.
func (s *ComplaintService) Submit(ctx context.Context, actor *domain.User, input SubmitInput) (*domain.Complaint, error) {
	if actor == nil || actor.Role != domain.RoleCitizen {
		return nil, apperrors.NewForbidden("only citizens can submit complaints")
	}

	if input.Priority == "" {
		input.Priority = domain.PriorityMedium
	}
	if errs := validateSubmission(input); len(errs) > 0 {
		s.discardUpload(input.ImageFilename)
		return nil, apperrors.NewValidationList(errs)
	}

	department := s.assigner.DepartmentFor(input.Category)

	complaint := &domain.Complaint{
		UserID:             actor.ID,
		Category:           input.Category,
		Description:        strings.TrimSpace(input.Description),
		Address:            strings.TrimSpace(input.Address),
		Landmark:           optionalString(input.Landmark),
		ImageFilename:      input.ImageFilename,
		AssignedDepartment: &department,
		Status:             domain.StatusSubmitted,
		Priority:           input.Priority,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context, r repository.TxRepos) error {
		if err := r.Complaints.Create(ctx, complaint); err != nil {
			return err
		}
		note := fmt.Sprintf("Complaint submitted to %s department", department)
		return r.Updates.Create(ctx, &domain.StatusUpdate{
			ComplaintID: complaint.ID,
			UpdatedBy:   actor.ID,
			NewStatus:   domain.StatusSubmitted,
			Note:        &note,
		})
	})
	if err != nil {
		s.discardUpload(input.ImageFilename)
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:        events.EventComplaintSubmitted,
		ComplaintID: complaint.ID,
		ActorID:     actor.ID,
		Payload: events.ComplaintSubmittedPayload{
			Category:   complaint.Category,
			Department: department,
			Priority:   complaint.Priority,
		},
	})
	return complaint, nil
}

// Get returns a complaint with its timeline, enforcing view access: citizens
// see their own, officers their department's, admins everything.
func (s *ComplaintService) Get(ctx context.Context, actor *domain.User, id string) (*domain.Complaint, []domain.StatusUpdate, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": id})
		}
		return nil, nil, apperrors.MapError(err)
	}
	if !canView(actor, complaint) {
		return nil, nil, apperrors.NewForbidden("access denied")
	}
	timeline, err := s.updates.ListByComplaint(ctx, complaint.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return complaint, timeline, nil
}

// ListForCitizen returns the actor's own complaints, newest first.
func (s *ComplaintService) ListForCitizen(ctx context.Context, actor *domain.User, filter CitizenFilter) ([]domain.Complaint, error) {
	list, err := s.complaints.ListWithFilter(ctx, repository.ComplaintFilter{
		UserID:   &actor.ID,
		Statuses: filter.Statuses,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// CitizenSummary returns the actor's dashboard counts.
func (s *ComplaintService) CitizenSummary(ctx context.Context, actor *domain.User) (CitizenSummary, error) {
	var summary CitizenSummary
	var err error

	if summary.Total, err = s.complaints.Count(ctx, repository.ComplaintFilter{UserID: &actor.ID}); err != nil {
		return summary, apperrors.MapError(err)
	}
	if summary.Resolved, err = s.complaints.Count(ctx, repository.ComplaintFilter{
		UserID:   &actor.ID,
		Statuses: []domain.ComplaintStatus{domain.StatusResolved},
	}); err != nil {
		return summary, apperrors.MapError(err)
	}
	if summary.Pending, err = s.complaints.Count(ctx, repository.ComplaintFilter{
		UserID:   &actor.ID,
		Statuses: []domain.ComplaintStatus{domain.StatusSubmitted, domain.StatusInProgress},
	}); err != nil {
		return summary, apperrors.MapError(err)
	}
	return summary, nil
}

// ListForOfficer returns the actor's department queue, high priority first.
func (s *ComplaintService) ListForOfficer(ctx context.Context, actor *domain.User, filter OfficerFilter) ([]domain.Complaint, error) {
	if actor.Department == nil {
		return nil, apperrors.NewForbidden("officer has no department")
	}
	list, err := s.complaints.ListWithFilter(ctx, repository.ComplaintFilter{
		AssignedDepartment: actor.Department,
		Statuses:           filter.Statuses,
		Priorities:         filter.Priorities,
		OrderByPriority:    true,
		Limit:              filter.Limit,
		Offset:             filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// OfficerSummary returns department dashboard counts for the actor.
func (s *ComplaintService) OfficerSummary(ctx context.Context, actor *domain.User) (OfficerSummary, error) {
	var summary OfficerSummary
	if actor.Department == nil {
		return summary, apperrors.NewForbidden("officer has no department")
	}
	summary.Department = *actor.Department

	var err error
	if summary.TotalAssigned, err = s.complaints.Count(ctx, repository.ComplaintFilter{
		AssignedDepartment: actor.Department,
	}); err != nil {
		return summary, apperrors.MapError(err)
	}
	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	if summary.ResolvedToday, err = s.complaints.Count(ctx, repository.ComplaintFilter{
		AssignedDepartment: actor.Department,
		Statuses:           []domain.ComplaintStatus{domain.StatusResolved},
		ResolvedFrom:       &startOfDay,
	}); err != nil {
		return summary, apperrors.MapError(err)
	}
	if summary.Pending, err = s.complaints.Count(ctx, repository.ComplaintFilter{
		AssignedDepartment: actor.Department,
		Statuses:           []domain.ComplaintStatus{domain.StatusSubmitted, domain.StatusInProgress},
	}); err != nil {
		return summary, apperrors.MapError(err)
	}
	return summary, nil
}

// ListAll returns filtered complaints for admins.
func (s *ComplaintService) ListAll(ctx context.Context, actor *domain.User, filter AdminFilter) ([]domain.Complaint, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin required")
	}
	list, err := s.complaints.ListWithFilter(ctx, repository.ComplaintFilter{
		AssignedDepartment: filter.Department,
		AssignedOfficer:    filter.Officer,
		Statuses:           filter.Statuses,
		Categories:         filter.Categories,
		Priorities:         filter.Priorities,
		CreatedFrom:        filter.CreatedFrom,
		CreatedTo:          filter.CreatedTo,
		Unassigned:         filter.Unassigned,
		Limit:              filter.Limit,
		Offset:             filter.Offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// UpdateStatus transitions a complaint to any of the four statuses. The
// actor must be an admin or an officer of the assigned department. Moving to
// resolved stamps resolved_at and may attach resolution notes; moving away
// clears the notes but leaves resolved_at as history. Exactly one timeline
// entry is appended, same-status no-ops included, in the same transaction as
// the complaint row.
func (s *ComplaintService) UpdateStatus(ctx context.Context, actor *domain.User, complaintID string, input TransitionInput) (*domain.Complaint, error) {
	if !domain.ValidStatus(input.NewStatus) {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": input.NewStatus})
	}

	var updated *domain.Complaint
	var oldStatus domain.ComplaintStatus
	err := s.tx.WithinTx(ctx, func(ctx context.Context, r repository.TxRepos) error {
		complaint, err := r.Complaints.GetByID(ctx, complaintID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
			}
			return err
		}
		if !canManage(actor, complaint) {
			return apperrors.NewForbidden("access denied")
		}

		oldStatus = complaint.Status
		complaint.Status = input.NewStatus

		resolutionNotes := strings.TrimSpace(input.ResolutionNotes)
		if input.NewStatus == domain.StatusResolved {
			now := time.Now()
			complaint.ResolvedAt = &now
			if resolutionNotes != "" {
				complaint.ResolutionNotes = &resolutionNotes
			}
		} else {
			complaint.ResolutionNotes = nil
		}

		if err := r.Complaints.Update(ctx, complaint); err != nil {
			return err
		}

		note := transitionNote(input.NewStatus, strings.TrimSpace(input.Note), resolutionNotes)
		if err := r.Updates.Create(ctx, &domain.StatusUpdate{
			ComplaintID: complaint.ID,
			UpdatedBy:   actor.ID,
			OldStatus:   &oldStatus,
			NewStatus:   input.NewStatus,
			Note:        optionalString(note),
		}); err != nil {
			return err
		}
		updated = complaint
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:        events.EventComplaintStatusChanged,
		ComplaintID: updated.ID,
		ActorID:     actor.ID,
		Payload: events.ComplaintStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: updated.Status,
			Note:      input.Note,
		},
	})
	return updated, nil
}

// Reassign changes the assigned officer without touching status. Admin only.
// A same-status timeline entry records the change for audit continuity.
func (s *ComplaintService) Reassign(ctx context.Context, actor *domain.User, complaintID, officerID string) (*domain.Complaint, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin required")
	}

	var updated *domain.Complaint
	var oldOfficer *string
	err := s.tx.WithinTx(ctx, func(ctx context.Context, r repository.TxRepos) error {
		officer, err := r.Users.GetByID(ctx, officerID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("officer", map[string]any{"officer_id": officerID})
			}
			return err
		}
		if !officer.IsOfficer() {
			return apperrors.NewValidationError("assignee is not a municipal officer", nil)
		}

		complaint, err := r.Complaints.GetByID(ctx, complaintID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
			}
			return err
		}

		oldName := "Unassigned"
		if complaint.AssignedOfficer != nil {
			oldOfficer = complaint.AssignedOfficer
			if previous, err := r.Users.GetByID(ctx, *complaint.AssignedOfficer); err == nil {
				oldName = previous.Name
			}
		}

		complaint.AssignedOfficer = &officer.ID
		if err := r.Complaints.Update(ctx, complaint); err != nil {
			return err
		}

		note := fmt.Sprintf("Reassigned from %s to %s (%s)", oldName, officer.Name, officer.DepartmentName())
		if err := r.Updates.Create(ctx, &domain.StatusUpdate{
			ComplaintID: complaint.ID,
			UpdatedBy:   actor.ID,
			OldStatus:   &complaint.Status,
			NewStatus:   complaint.Status,
			Note:        &note,
		}); err != nil {
			return err
		}
		updated = complaint
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:        events.EventComplaintReassigned,
		ComplaintID: updated.ID,
		ActorID:     actor.ID,
		Payload: events.ComplaintReassignedPayload{
			OldOfficerID: oldOfficer,
			NewOfficerID: officerID,
		},
	})
	return updated, nil
}

// AutoAssign picks the least-loaded officer for the complaint's department
// and assigns them, recording a same-status timeline entry. Admin only.
func (s *ComplaintService) AutoAssign(ctx context.Context, actor *domain.User, complaintID string) (*domain.Complaint, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin required")
	}

	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
		}
		return nil, apperrors.MapError(err)
	}

	department := complaint.DepartmentName()
	if department == "" {
		department = s.assigner.DepartmentFor(complaint.Category)
	}
	officer, err := s.assigner.PickOfficer(ctx, department)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if officer == nil {
		return nil, apperrors.NewConflict("no eligible officer available", map[string]any{"department": department})
	}
	return s.Reassign(ctx, actor, complaintID, officer.ID)
}

// NotifyDepartment appends a same-status timeline entry noting that the
// admin nudged the owning department. Admin only.
func (s *ComplaintService) NotifyDepartment(ctx context.Context, actor *domain.User, complaintID string) error {
	if !actor.IsAdmin() {
		return apperrors.NewForbidden("admin required")
	}

	var department string
	err := s.tx.WithinTx(ctx, func(ctx context.Context, r repository.TxRepos) error {
		complaint, err := r.Complaints.GetByID(ctx, complaintID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaintID})
			}
			return err
		}
		department = complaint.DepartmentName()
		note := "Admin notified department about pending work"
		return r.Updates.Create(ctx, &domain.StatusUpdate{
			ComplaintID: complaint.ID,
			UpdatedBy:   actor.ID,
			OldStatus:   &complaint.Status,
			NewStatus:   complaint.Status,
			Note:        &note,
		})
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:        events.EventDepartmentNotified,
		ComplaintID: complaintID,
		ActorID:     actor.ID,
		Payload:     events.DepartmentNotifiedPayload{Department: department},
	})
	return nil
}

func validateSubmission(input SubmitInput) []string {
	var errs []string
	if !domain.ValidCategory(input.Category) {
		errs = append(errs, "Please select a valid complaint category")
	}
	if len(strings.TrimSpace(input.Description)) < 10 {
		errs = append(errs, "Description must be at least 10 characters long")
	}
	if len(strings.TrimSpace(input.Address)) < 5 {
		errs = append(errs, "Please provide a valid address")
	}
	if !domain.ValidPriority(input.Priority) {
		errs = append(errs, "Please select a valid priority level")
	}
	return errs
}

func transitionNote(newStatus domain.ComplaintStatus, note, resolutionNotes string) string {
	if newStatus == domain.StatusResolved && resolutionNotes != "" {
		if note != "" {
			return note + "\nResolution: " + resolutionNotes
		}
		return resolutionNotes
	}
	return note
}

func canView(actor *domain.User, complaint *domain.Complaint) bool {
	if actor == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleMunicipal:
		return actor.Department != nil && complaint.AssignedDepartment != nil &&
			*actor.Department == *complaint.AssignedDepartment
	case domain.RoleCitizen:
		return complaint.UserID == actor.ID
	}
	return false
}

func canManage(actor *domain.User, complaint *domain.Complaint) bool {
	if actor == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return actor.IsOfficer() && actor.Department != nil && complaint.AssignedDepartment != nil &&
		*actor.Department == *complaint.AssignedDepartment
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *ComplaintService) discardUpload(filename *string) {
	if filename == nil || s.uploads == nil {
		return
	}
	_ = s.uploads.Remove(*filename)
}

func (s *ComplaintService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
