package handlers

import (
	"bytes"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/complaint-service/internal/api/dto"
	"github.com/civicdesk/complaint-service/internal/auth"
	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/repository"
	"github.com/civicdesk/complaint-service/internal/service"
	apperrors "github.com/civicdesk/complaint-service/pkg/util"
)

// AdminHandler covers oversight: the full complaint ledger, assignment,
// user management, the dashboard and report exports.
type AdminHandler struct {
	complaints *service.ComplaintService
	admin      *service.AdminService
	reports    *service.ReportService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(complaints *service.ComplaintService, admin *service.AdminService, reports *service.ReportService) *AdminHandler {
	return &AdminHandler{complaints: complaints, admin: admin, reports: reports}
}

// ListComplaints GET /admin/complaints.
func (h *AdminHandler) ListComplaints(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromContext(c)
	limit, offset := parsePaging(c)
	filter := service.AdminFilter{
		Statuses:    parseStatuses(c.Query("status")),
		Priorities:  parsePriorities(c.Query("priority")),
		CreatedFrom: parseDate(c.Query("start_date")),
		CreatedTo:   parseEndDate(c.Query("end_date")),
		Unassigned:  c.QueryBool("unassigned"),
		Limit:       limit,
		Offset:      offset,
	}
	if raw := c.Query("category"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			filter.Categories = append(filter.Categories, domain.ComplaintCategory(strings.TrimSpace(part)))
		}
	}
	if dept := c.Query("department"); dept != "" {
		filter.Department = &dept
	}
	if officerID := c.Query("officer_id"); officerID != "" {
		filter.Officer = &officerID
	}
	complaints, err := h.complaints.ListAll(c.Context(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summaries(complaints)})
}

// Reassign POST /admin/complaints/:id/reassign.
func (h *AdminHandler) Reassign(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromContext(c)
	var req dto.ReassignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.OfficerID == "" {
		return apperrors.NewValidationError("officer_id required", nil)
	}
	complaint, err := h.complaints.Reassign(c.Context(), actor, c.Params("id"), req.OfficerID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintSummary(complaint)})
}

// AutoAssign POST /admin/complaints/:id/auto-assign.
func (h *AdminHandler) AutoAssign(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromContext(c)
	complaint, err := h.complaints.AutoAssign(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintSummary(complaint)})
}

// NotifyDepartment POST /admin/complaints/:id/notify-department.
func (h *AdminHandler) NotifyDepartment(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromContext(c)
	if err := h.complaints.NotifyDepartment(c.Context(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"notified": true}})
}

// ListUsers GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromContext(c)
	limit, offset := parsePaging(c)
	filter := repository.UserFilter{Limit: limit, Offset: offset}
	if role := c.Query("role"); role != "" {
		r := domain.Role(role)
		filter.Role = &r
	}
	if dept := c.Query("department"); dept != "" {
		filter.Department = &dept
	}
	if raw := c.Query("active"); raw != "" {
		active := raw == "true" || raw == "1"
		filter.Active = &active
	}
	users, err := h.admin.ListUsers(c.Context(), actor, filter)
	if err != nil {
		return err
	}
	items := make([]dto.UserProfile, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserProfile(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateUser POST /admin/users.
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromContext(c)
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.admin.CreateUser(c.Context(), actor, service.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       domain.Role(req.Role),
		Department: req.Department,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewUserProfile(user)})
}

// SetUserActive PATCH /admin/users/:id/active.
func (h *AdminHandler) SetUserActive(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromContext(c)
	var req dto.SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.admin.SetUserActive(c.Context(), actor, c.Params("id"), req.Active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserProfile(user)})
}

// UpdateUser PUT /admin/users/:id.
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromContext(c)
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.admin.UpdateUser(c.Context(), actor, c.Params("id"), service.UpdateUserInput{
		Name:       req.Name,
		Email:      req.Email,
		Role:       domain.Role(req.Role),
		Department: req.Department,
		Active:     req.Active,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserProfile(user)})
}

// DeleteUser DELETE /admin/users/:id.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromContext(c)
	if err := h.admin.DeleteUser(c.Context(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Dashboard GET /admin/dashboard.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromContext(c)
	stats, err := h.admin.Dashboard(c.Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// Report GET /admin/reports. Returns rows as JSON, or an attachment when
// export=csv or export=excel.
func (h *AdminHandler) Report(c *fiber.Ctx) error {
	actor, _ := auth.ActorFromContext(c)
	filter := service.ReportFilter{}
	if from := parseDate(c.Query("start_date")); from != nil {
		filter.From = *from
	}
	if to := parseDate(c.Query("end_date")); to != nil {
		filter.To = *to
	}
	if status := c.Query("status"); status != "" && status != "all" {
		s := domain.ComplaintStatus(status)
		filter.Status = &s
	}
	if category := c.Query("category"); category != "" && category != "all" {
		cat := domain.ComplaintCategory(category)
		filter.Category = &cat
	}
	if dept := c.Query("department"); dept != "" && dept != "all" {
		filter.Department = &dept
	}

	switch export := c.Query("export"); export {
	case "":
		rows, err := h.reports.Rows(c.Context(), actor, filter)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": rows})
	case "csv", "excel":
		format := service.ReportFormat(export)
		var buf bytes.Buffer
		if err := h.reports.Export(c.Context(), actor, filter, format, &buf); err != nil {
			return err
		}
		if format == service.FormatExcel {
			c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		} else {
			c.Set(fiber.HeaderContentType, "text/csv")
		}
		c.Set(fiber.HeaderContentDisposition, `attachment; filename=`+service.Filename(format))
		return c.Send(buf.Bytes())
	default:
		return apperrors.NewValidationError("unsupported export format", map[string]any{"export": export})
	}
}
