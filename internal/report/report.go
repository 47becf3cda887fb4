// Package report renders complaint exports as CSV or Excel workbooks. Rows
// are pre-joined by the caller; this package only formats.
package report

// Row is one exported complaint with its reporter and officer joined in.
type Row struct {
	ComplaintID     string
	SubmissionDate  string
	CitizenName     string
	CitizenEmail    string
	Category        string
	Priority        string
	Address         string
	Landmark        string
	Description     string
	Status          string
	AssignedOfficer string
	Department      string
	ResolutionNotes string
	CreatedAt       string
	UpdatedAt       string
	ResolvedAt      string
	UpdatesCount    int64
}

// Headers are the export columns, in order.
var Headers = []string{
	"Complaint ID",
	"Submission Date",
	"Citizen Name",
	"Citizen Email",
	"Category",
	"Priority",
	"Address",
	"Landmark",
	"Description",
	"Status",
	"Assigned Officer",
	"Department",
	"Resolution Notes",
	"Created At",
	"Updated At",
	"Resolved At",
	"Status Updates Count",
}

func (r Row) values() []any {
	return []any{
		r.ComplaintID,
		r.SubmissionDate,
		r.CitizenName,
		r.CitizenEmail,
		r.Category,
		r.Priority,
		r.Address,
		r.Landmark,
		r.Description,
		r.Status,
		r.AssignedOfficer,
		r.Department,
		r.ResolutionNotes,
		r.CreatedAt,
		r.UpdatedAt,
		r.ResolvedAt,
		r.UpdatesCount,
	}
}
