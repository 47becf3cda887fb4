package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/report"
)

type reportFixture struct {
	svc        *ReportService
	users      *fakeUserRepo
	complaints *fakeComplaintRepo
	updates    *fakeUpdateRepo
	admin      *domain.User
	citizen    *domain.User
}

func newReportFixture() *reportFixture {
	users := newFakeUserRepo()
	complaints := newFakeComplaintRepo()
	updates := newFakeUpdateRepo()
	svc := NewReportService(complaints, updates, users)
	admin := users.add(&domain.User{Name: "Root", Email: "root@city.test", Role: domain.RoleAdmin, Active: true})
	citizen := users.add(&domain.User{Name: "Asha Rao", Email: "asha@city.test", Role: domain.RoleCitizen, Active: true})
	return &reportFixture{svc: svc, users: users, complaints: complaints, updates: updates, admin: admin, citizen: citizen}
}

func (f *reportFixture) seedComplaint(t *testing.T, status domain.ComplaintStatus, assignee *domain.User) *domain.Complaint {
	t.Helper()
	roads := "roads"
	c := &domain.Complaint{
		UserID:             f.citizen.ID,
		Category:           domain.CategoryPotholes,
		Description:        "Large pothole near the bus stop",
		Address:            "12 MG Road",
		Status:             status,
		Priority:           domain.PriorityHigh,
		AssignedDepartment: &roads,
	}
	if assignee != nil {
		c.AssignedOfficer = &assignee.ID
	}
	require.NoError(t, f.complaints.Create(context.Background(), c))
	require.NoError(t, f.updates.Create(context.Background(), &domain.StatusUpdate{
		ComplaintID: c.ID,
		UpdatedBy:   f.citizen.ID,
		NewStatus:   domain.StatusSubmitted,
	}))
	return c
}

func TestReportRowsJoinPeopleAndCounts(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()

	assignee := f.users.add(officer("Priya", "roads"))
	f.seedComplaint(t, domain.StatusInProgress, assignee)
	f.seedComplaint(t, domain.StatusSubmitted, nil)

	rows, err := f.svc.Rows(ctx, f.admin, ReportFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Asha Rao", rows[1].CitizenName)
	assert.Equal(t, "asha@city.test", rows[1].CitizenEmail)
	assert.Equal(t, "Priya", rows[1].AssignedOfficer)
	assert.Equal(t, "roads", rows[1].Department)
	assert.Equal(t, int64(1), rows[1].UpdatesCount)

	assert.Equal(t, "Unassigned", rows[0].AssignedOfficer)
	assert.Empty(t, rows[0].Department)
}

func TestReportFiltersByStatus(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()

	f.seedComplaint(t, domain.StatusResolved, nil)
	f.seedComplaint(t, domain.StatusSubmitted, nil)

	resolved := domain.StatusResolved
	rows, err := f.svc.Rows(ctx, f.admin, ReportFilter{Status: &resolved})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "resolved", rows[0].Status)
}

func TestReportExcludesOldComplaintsByDefault(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()

	old := f.seedComplaint(t, domain.StatusSubmitted, nil)
	stored := f.complaints.complaints[old.ID]
	stored.CreatedAt = time.Now().AddDate(0, 0, -45)

	f.seedComplaint(t, domain.StatusSubmitted, nil)

	rows, err := f.svc.Rows(ctx, f.admin, ReportFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 1, "default window is the trailing 30 days")
}

func TestReportRequiresAdmin(t *testing.T) {
	f := newReportFixture()

	_, err := f.svc.Rows(context.Background(), f.citizen, ReportFilter{})
	require.Error(t, err)
}

func TestExportCSVHasAllColumns(t *testing.T) {
	f := newReportFixture()
	ctx := context.Background()

	f.seedComplaint(t, domain.StatusSubmitted, nil)

	var buf bytes.Buffer
	require.NoError(t, f.svc.Export(ctx, f.admin, ReportFilter{}, FormatCSV, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, report.Headers, records[0])
	assert.Len(t, records[1], len(report.Headers))
	assert.Equal(t, "Asha Rao", records[1][2])
	assert.Equal(t, "1", records[1][16])
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	f := newReportFixture()

	var buf bytes.Buffer
	err := f.svc.Export(context.Background(), f.admin, ReportFilter{}, ReportFormat("pdf"), &buf)
	require.Error(t, err)
}
