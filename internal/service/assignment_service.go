package service

import (
	"context"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/repository"
	"github.com/civicdesk/complaint-service/internal/routing"
)

// AssignmentService resolves where a complaint belongs: which department owns
// its category, and which officer should work it. It is a read-only query
// over current data; callers persist the result. Load counts are recomputed
// on every call, so concurrent submissions may both observe the same minimum;
// the later write wins.
type AssignmentService struct {
	table      routing.Table
	users      repository.UserRepository
	complaints repository.ComplaintRepository
}

// AssignmentDependencies bundles resolver inputs.
type AssignmentDependencies struct {
	Table         routing.Table
	UserRepo      repository.UserRepository
	ComplaintRepo repository.ComplaintRepository
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		table:      deps.Table,
		users:      deps.UserRepo,
		complaints: deps.ComplaintRepo,
	}
}

// DepartmentFor maps a category to its owning department, falling back to
// the default department for unmapped categories.
func (s *AssignmentService) DepartmentFor(category domain.ComplaintCategory) string {
	return s.table.DepartmentFor(category)
}

// PickOfficer selects the active municipal officer of the department with
// the fewest complaints currently in progress, first found winning ties.
// An empty department falls back to all active officers; if none exist at
// all, (nil, nil) is returned and the complaint stays unassigned.
func (s *AssignmentService) PickOfficer(ctx context.Context, department string) (*domain.User, error) {
	officers, err := s.activeOfficers(ctx, &department)
	if err != nil {
		return nil, err
	}
	if len(officers) == 0 {
		officers, err = s.activeOfficers(ctx, nil)
		if err != nil {
			return nil, err
		}
	}
	if len(officers) == 0 {
		return nil, nil
	}

	ids := make([]string, len(officers))
	for i := range officers {
		ids[i] = officers[i].ID
	}
	counts, err := s.complaints.CountInProgressByOfficer(ctx, ids)
	if err != nil {
		return nil, err
	}

	best := &officers[0]
	bestCount := counts[best.ID]
	for i := 1; i < len(officers); i++ {
		if c := counts[officers[i].ID]; c < bestCount {
			best = &officers[i]
			bestCount = c
		}
	}
	return best, nil
}

func (s *AssignmentService) activeOfficers(ctx context.Context, department *string) ([]domain.User, error) {
	role := domain.RoleMunicipal
	active := true
	return s.users.List(ctx, repository.UserFilter{
		Role:       &role,
		Department: department,
		Active:     &active,
		Limit:      1000,
	})
}
