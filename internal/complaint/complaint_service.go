// Package complaint provides the complaint lifecycle: submission, listing,
// access checks, status updates and the per-status dashboard counts.
package complaint

import (
	"civicdesk/backend/internal/analysis"
	"civicdesk/backend/internal/auth"
	"civicdesk/backend/internal/config"
	"civicdesk/backend/internal/models"
	"civicdesk/backend/internal/storage"
	"civicdesk/backend/internal/validation"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrForbidden is returned when a citizen reads someone else's complaint.
	ErrForbidden = errors.New("not allowed to access this complaint")
	// ErrInvalidTransition is returned by Update when strict transitions are on
	// and the requested status cannot follow the current one.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNoChanges is returned by Update when the input sets no field.
	ErrNoChanges = errors.New("no fields to update")
)

// EventPublisher receives an event after every successful create or update.
type EventPublisher interface {
	Publish(ctx context.Context, evt models.ComplaintEvent) error
}

// Service handles the business logic for complaints.
type Service struct {
	Storage           storage.Storage
	Events            EventPublisher
	Logger            *zap.Logger
	StrictTransitions bool
}

// NewService creates a new complaint service. events may be nil.
func NewService(s storage.Storage, events EventPublisher, logger *zap.Logger, strictTransitions bool) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		Storage:           s,
		Events:            events,
		Logger:            logger,
		StrictTransitions: strictTransitions,
	}
}

// CreateInput is a validated complaint submission.
type CreateInput struct {
	Title       string
	Description string
	Category    string
	Email       string
	Phone       string
	Location    models.GeoPoint
	Attachments []string
}

// Create stores a new complaint. submitter is nil for anonymous submissions,
// which must then carry a contact email.
func (s *Service) Create(ctx context.Context, submitter *auth.Identity, in CreateInput) (*models.Complaint, error) {
	c := &models.Complaint{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Category:    in.Category,
		Email:       in.Email,
		Phone:       in.Phone,
		Location:    in.Location,
		Attachments: models.StringList(in.Attachments),
		Status:      config.StatusPending,
		Priority:    config.PriorityMedium,
	}
	if c.Title == "" {
		c.Title = strings.TrimSpace(in.Category)
	}

	if submitter != nil {
		user, err := s.Storage.GetUserByID(ctx, submitter.ID)
		if err != nil {
			return nil, fmt.Errorf("load submitter: %w", err)
		}
		c.SubmittedBy = &user.ID
		if strings.TrimSpace(c.Email) == "" {
			c.Email = user.Email
		}
	}
	if strings.TrimSpace(c.Email) == "" {
		return nil, validation.New("email", "is required")
	}

	if dept := s.routeToDepartment(ctx, c.Category); dept != nil {
		c.DepartmentID = &dept.ID
	}

	if err := s.Storage.CreateComplaint(ctx, c); err != nil {
		return nil, err
	}

	s.Logger.Info("complaint created",
		zap.String("complaint_id", c.ID),
		zap.String("category", c.Category),
		zap.Bool("anonymous", c.SubmittedBy == nil),
	)
	s.publish(ctx, models.NewComplaintEvent(models.EventComplaintCreated, c, ""))
	return c, nil
}

func (s *Service) routeToDepartment(ctx context.Context, category string) *models.Department {
	depts, err := s.Storage.ListDepartments(ctx)
	if err != nil {
		s.Logger.Warn("department routing skipped", zap.Error(err))
		return nil
	}
	return analysis.MatchDepartment(category, depts)
}

// List returns complaints newest first.
func (s *Service) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error) {
	return s.Storage.ListComplaints(ctx, clampPage(filter))
}

// ListMine returns only the complaints submitted by userID.
func (s *Service) ListMine(ctx context.Context, userID string, filter models.ComplaintFilter) ([]models.Complaint, error) {
	filter.SubmittedBy = userID
	return s.Storage.ListComplaints(ctx, clampPage(filter))
}

func clampPage(f models.ComplaintFilter) models.ComplaintFilter {
	if f.Limit > config.MaxPageSize {
		f.Limit = config.MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// Get loads a complaint. Staff may read any complaint; citizens only their own.
func (s *Service) Get(ctx context.Context, id string, viewer auth.Identity) (*models.Complaint, error) {
	c, err := s.Storage.GetComplaintByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.IsStaff() && !c.IsSubmittedBy(viewer.ID) {
		return nil, ErrForbidden
	}
	return c, nil
}

// UpdateInput holds the fields an administrator may change. Nil means unchanged.
// An empty AssignedTo or DepartmentID clears the reference.
type UpdateInput struct {
	Status       *string
	Resolution   *string
	Priority     *string
	AssignedTo   *string
	DepartmentID *string
}

// IsEmpty reports whether no field is set.
func (in UpdateInput) IsEmpty() bool {
	return in.Status == nil && in.Resolution == nil && in.Priority == nil &&
		in.AssignedTo == nil && in.DepartmentID == nil
}

// Update overwrites the given fields. There is no version check, so the last
// write wins; re-applying the same input leaves the record unchanged.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Complaint, error) {
	if in.IsEmpty() {
		return nil, ErrNoChanges
	}

	c, err := s.Storage.GetComplaintByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := c.Status

	if in.Status != nil {
		if s.StrictTransitions && !CanTransition(c.Status, *in.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, *in.Status)
		}
		c.Status = *in.Status
	}
	if in.Resolution != nil {
		c.Resolution = *in.Resolution
	}
	if in.Priority != nil {
		c.Priority = *in.Priority
	}
	if in.AssignedTo != nil {
		ref, err := s.userRef(ctx, *in.AssignedTo)
		if err != nil {
			return nil, err
		}
		c.AssignedTo = ref
	}
	if in.DepartmentID != nil {
		ref, err := s.departmentRef(ctx, *in.DepartmentID)
		if err != nil {
			return nil, err
		}
		c.DepartmentID = ref
	}

	if err := s.Storage.SaveComplaint(ctx, c); err != nil {
		return nil, err
	}

	s.Logger.Info("complaint updated",
		zap.String("complaint_id", c.ID),
		zap.String("previous_status", previous),
		zap.String("status", c.Status),
	)
	s.publish(ctx, models.NewComplaintEvent(models.EventComplaintUpdated, c, previous))
	return c, nil
}

func (s *Service) userRef(ctx context.Context, id string) (*string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	user, err := s.Storage.GetUserByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, validation.New("assignedTo", "must reference an existing user")
	}
	if err != nil {
		return nil, err
	}
	return &user.ID, nil
}

func (s *Service) departmentRef(ctx context.Context, id string) (*string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	dept, err := s.Storage.GetDepartmentByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, validation.New("department", "must reference an existing department")
	}
	if err != nil {
		return nil, err
	}
	return &dept.ID, nil
}

// CanTransition reports whether a complaint may move from one status to another
// under the strict transition table. Staying in the same status is always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range config.StatusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Stats counts complaints per status. Statuses with no complaints are absent.
func (s *Service) Stats(ctx context.Context) (map[string]int64, error) {
	rows, err := s.Storage.CountComplaintsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}

func (s *Service) publish(ctx context.Context, evt models.ComplaintEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, evt); err != nil {
		s.Logger.Warn("failed to publish complaint event",
			zap.String("type", evt.Type),
			zap.String("complaint_id", evt.ComplaintID),
			zap.Error(err),
		)
	}
}
