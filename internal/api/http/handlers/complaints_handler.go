package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/complaint-service/internal/api/dto"
	"github.com/civicdesk/complaint-service/internal/auth"
	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/service"
	"github.com/civicdesk/complaint-service/internal/storage"
	apperrors "github.com/civicdesk/complaint-service/pkg/util"
)

// ComplaintsHandler covers citizen submission and the officer queue.
type ComplaintsHandler struct {
	service *service.ComplaintService
	uploads *storage.UploadStore
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService *service.ComplaintService, uploads *storage.UploadStore) *ComplaintsHandler {
	return &ComplaintsHandler{service: complaintService, uploads: uploads}
}

// Submit POST /complaints. Accepts JSON or multipart form; the optional
// "image" file part is staged before the write and cleaned up by the
// service if persistence fails.
func (h *ComplaintsHandler) Submit(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SubmitComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	var imageFilename *string
	if fileHeader, err := c.FormFile("image"); err == nil && fileHeader != nil {
		if !h.uploads.Allowed(fileHeader.Filename) {
			return apperrors.NewValidationError("Invalid file type. Allowed types: png, jpg, jpeg, gif", nil)
		}
		if fileHeader.Size > h.uploads.MaxBytes() {
			return apperrors.NewValidationError("File too large. Maximum size is 5MB", nil)
		}
		file, err := fileHeader.Open()
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		defer file.Close()
		stored, err := h.uploads.Save(fileHeader.Filename, file)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		imageFilename = &stored
	}

	complaint, err := h.service.Submit(c.Context(), actor, service.SubmitInput{
		Category:      domain.ComplaintCategory(req.Category),
		Description:   req.Description,
		Address:       req.Address,
		Landmark:      req.Landmark,
		Priority:      domain.ComplaintPriority(req.Priority),
		ImageFilename: imageFilename,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewComplaintSummary(complaint)})
}

// ListMine GET /complaints.
func (h *ComplaintsHandler) ListMine(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit, offset := parsePaging(c)
	complaints, err := h.service.ListForCitizen(c.Context(), actor, service.CitizenFilter{
		Statuses: parseStatuses(c.Query("status")),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summaries(complaints)})
}

// MySummary GET /complaints/summary.
func (h *ComplaintsHandler) MySummary(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	summary, err := h.service.CitizenSummary(c.Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}

// Get GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	complaint, timeline, err := h.service.Get(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintDetail(complaint, timeline)})
}

// Image GET /complaints/:id/image. Serves the attached photo to anyone
// allowed to view the complaint.
func (h *ComplaintsHandler) Image(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	complaint, _, err := h.service.Get(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	if complaint.ImageFilename == nil {
		return apperrors.NewNotFound("image", map[string]any{"complaint_id": complaint.ID})
	}
	return c.SendFile(h.uploads.Path(*complaint.ImageFilename))
}

// Queue GET /department/complaints. Officer view of the assigned
// department, high priority first.
func (h *ComplaintsHandler) Queue(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit, offset := parsePaging(c)
	complaints, err := h.service.ListForOfficer(c.Context(), actor, service.OfficerFilter{
		Statuses:   parseStatuses(c.Query("status")),
		Priorities: parsePriorities(c.Query("priority")),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summaries(complaints)})
}

// QueueSummary GET /department/summary.
func (h *ComplaintsHandler) QueueSummary(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	summary, err := h.service.OfficerSummary(c.Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}

// UpdateStatus POST /complaints/:id/status.
func (h *ComplaintsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.service.UpdateStatus(c.Context(), actor, c.Params("id"), service.TransitionInput{
		NewStatus:       domain.ComplaintStatus(req.Status),
		Note:            req.Note,
		ResolutionNotes: req.ResolutionNotes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintSummary(complaint)})
}

func summaries(complaints []domain.Complaint) []dto.ComplaintSummary {
	items := make([]dto.ComplaintSummary, 0, len(complaints))
	for i := range complaints {
		items = append(items, dto.NewComplaintSummary(&complaints[i]))
	}
	return items
}

func parseStatuses(raw string) []domain.ComplaintStatus {
	if raw == "" {
		return nil
	}
	var statuses []domain.ComplaintStatus
	for _, part := range strings.Split(raw, ",") {
		statuses = append(statuses, domain.ComplaintStatus(strings.TrimSpace(part)))
	}
	return statuses
}

func parsePriorities(raw string) []domain.ComplaintPriority {
	if raw == "" {
		return nil
	}
	var priorities []domain.ComplaintPriority
	for _, part := range strings.Split(raw, ",") {
		priorities = append(priorities, domain.ComplaintPriority(strings.TrimSpace(part)))
	}
	return priorities
}

func parsePaging(c *fiber.Ctx) (limit, offset int) {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	return pageSize, (page - 1) * pageSize
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func parseDate(val string) *time.Time {
	if val == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", val); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return &t
	}
	return nil
}

// parseEndDate extends a date-only upper bound to the end of that day so the
// named day's complaints are included.
func parseEndDate(val string) *time.Time {
	t := parseDate(val)
	if t == nil {
		return nil
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		end := t.Add(24*time.Hour - time.Second)
		return &end
	}
	return t
}
