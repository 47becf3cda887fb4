package service

import (
	"context"
	"io"
	"time"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/report"
	"github.com/civicdesk/complaint-service/internal/repository"
	apperrors "github.com/civicdesk/complaint-service/pkg/util"
)

const reportTimeFormat = "2006-01-02 15:04:05"

// ReportFormat selects an export encoding.
type ReportFormat string

const (
	FormatCSV   ReportFormat = "csv"
	FormatExcel ReportFormat = "excel"
)

// ReportService produces filtered complaint exports for admins.
type ReportService struct {
	complaints repository.ComplaintRepository
	updates    repository.StatusUpdateRepository
	users      repository.UserRepository
}

// NewReportService constructs the service.
func NewReportService(complaints repository.ComplaintRepository, updates repository.StatusUpdateRepository, users repository.UserRepository) *ReportService {
	return &ReportService{complaints: complaints, updates: updates, users: users}
}

// ReportFilter narrows the export window. A zero From defaults to the
// trailing 30 days; a zero To defaults to now. To is extended to the end of
// its day so a date-only bound includes the whole day.
type ReportFilter struct {
	From       time.Time
	To         time.Time
	Status     *domain.ComplaintStatus
	Category   *domain.ComplaintCategory
	Department *string
}

// Rows joins complaints in the window with their reporters, assigned
// officers and timeline counts, newest first.
func (s *ReportService) Rows(ctx context.Context, actor *domain.User, filter ReportFilter) ([]report.Row, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin required")
	}

	from := filter.From
	if from.IsZero() {
		from = time.Now().UTC().AddDate(0, 0, -30)
	}
	to := filter.To
	if to.IsZero() {
		to = time.Now().UTC()
	} else if to.Hour() == 0 && to.Minute() == 0 && to.Second() == 0 {
		to = to.Add(24*time.Hour - time.Second)
	}

	repoFilter := repository.ComplaintFilter{
		CreatedFrom: &from,
		CreatedTo:   &to,
		Limit:       10000,
	}
	if filter.Status != nil {
		repoFilter.Statuses = []domain.ComplaintStatus{*filter.Status}
	}
	if filter.Category != nil {
		repoFilter.Categories = []domain.ComplaintCategory{*filter.Category}
	}
	repoFilter.AssignedDepartment = filter.Department

	complaints, err := s.complaints.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(complaints) == 0 {
		return []report.Row{}, nil
	}

	userIDs := make([]string, 0, len(complaints)*2)
	complaintIDs := make([]string, 0, len(complaints))
	for _, c := range complaints {
		userIDs = append(userIDs, c.UserID)
		if c.AssignedOfficer != nil {
			userIDs = append(userIDs, *c.AssignedOfficer)
		}
		complaintIDs = append(complaintIDs, c.ID)
	}

	people, err := s.users.GetManyByIDs(ctx, userIDs)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	counts, err := s.updates.CountByComplaints(ctx, complaintIDs)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	rows := make([]report.Row, 0, len(complaints))
	for _, c := range complaints {
		rows = append(rows, buildRow(c, people, counts[c.ID]))
	}
	return rows, nil
}

// Export writes the filtered report in the requested format.
func (s *ReportService) Export(ctx context.Context, actor *domain.User, filter ReportFilter, format ReportFormat, w io.Writer) error {
	rows, err := s.Rows(ctx, actor, filter)
	if err != nil {
		return err
	}
	switch format {
	case FormatCSV:
		err = report.WriteCSV(w, rows)
	case FormatExcel:
		err = report.WriteExcel(w, rows)
	default:
		return apperrors.NewValidationError("unsupported export format", map[string]any{"format": format})
	}
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// Filename returns the dated attachment name for the format.
func Filename(format ReportFormat) string {
	date := time.Now().Format("2006-01-02")
	if format == FormatExcel {
		return "complaints_report_" + date + ".xlsx"
	}
	return "complaints_report_" + date + ".csv"
}

func buildRow(c domain.Complaint, people map[string]domain.User, updates int64) report.Row {
	row := report.Row{
		ComplaintID:     c.ID,
		SubmissionDate:  c.CreatedAt.Format(reportTimeFormat),
		Category:        string(c.Category),
		Priority:        string(c.Priority),
		Address:         c.Address,
		Description:     c.Description,
		Status:          string(c.Status),
		AssignedOfficer: "Unassigned",
		CreatedAt:       c.CreatedAt.Format(reportTimeFormat),
		UpdatedAt:       c.UpdatedAt.Format(reportTimeFormat),
		UpdatesCount:    updates,
	}
	if citizen, ok := people[c.UserID]; ok {
		row.CitizenName = citizen.Name
		row.CitizenEmail = citizen.Email
	}
	if c.Landmark != nil {
		row.Landmark = *c.Landmark
	}
	if c.AssignedOfficer != nil {
		if officer, ok := people[*c.AssignedOfficer]; ok {
			row.AssignedOfficer = officer.Name
			row.Department = officer.DepartmentName()
		}
	}
	if c.ResolutionNotes != nil {
		row.ResolutionNotes = *c.ResolutionNotes
	}
	if c.ResolvedAt != nil {
		row.ResolvedAt = c.ResolvedAt.Format(reportTimeFormat)
	}
	return row
}
