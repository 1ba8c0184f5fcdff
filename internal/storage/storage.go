package storage

import (
	"civicdesk/backend/internal/config"
	"civicdesk/backend/internal/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique field (email, department name) is already taken.
	ErrDuplicate = errors.New("duplicate record")
)

// Storage is everything the services need from persistence.
type Storage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	ListUsersByRole(ctx context.Context, role string) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)

	CreateDepartment(ctx context.Context, dept *models.Department) error
	GetDepartmentByID(ctx context.Context, id string) (*models.Department, error)
	ListDepartments(ctx context.Context) ([]models.Department, error)
	UpdateDepartment(ctx context.Context, dept *models.Department) error

	CreateComplaint(ctx context.Context, complaint *models.Complaint) error
	GetComplaintByID(ctx context.Context, id string) (*models.Complaint, error)
	ListComplaints(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error)
	SaveComplaint(ctx context.Context, complaint *models.Complaint) error
	CountComplaintsByStatus(ctx context.Context) ([]models.StatusCount, error)

	Ping(ctx context.Context) error
}

// Service implements Storage on top of gorm, with an optional Redis client
// used to fan complaint events out to every API replica.
type Service struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Logger *zap.Logger
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		DB:     db,
		Redis:  rdb,
		Logger: logger,
	}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

// CreateUser inserts a user. The password is hashed by the model hook.
func (s *Service) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.DB.WithContext(ctx).Create(user).Error)
}

func (s *Service) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetUserByEmail looks a user up by its normalized email.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Service) UpdateUser(ctx context.Context, user *models.User) error {
	return translate(s.DB.WithContext(ctx).Save(user).Error)
}

func (s *Service) ListUsersByRole(ctx context.Context, role string) ([]models.User, error) {
	var users []models.User
	if err := s.DB.WithContext(ctx).Where("role = ?", role).Order("created_at asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Service) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (s *Service) CreateDepartment(ctx context.Context, dept *models.Department) error {
	return translate(s.DB.WithContext(ctx).Create(dept).Error)
}

func (s *Service) GetDepartmentByID(ctx context.Context, id string) (*models.Department, error) {
	var dept models.Department
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&dept).Error; err != nil {
		return nil, translate(err)
	}
	return &dept, nil
}

func (s *Service) ListDepartments(ctx context.Context) ([]models.Department, error) {
	var depts []models.Department
	if err := s.DB.WithContext(ctx).Order("name asc").Find(&depts).Error; err != nil {
		return nil, err
	}
	return depts, nil
}

func (s *Service) UpdateDepartment(ctx context.Context, dept *models.Department) error {
	return translate(s.DB.WithContext(ctx).Save(dept).Error)
}

func (s *Service) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	if err := s.DB.WithContext(ctx).Create(complaint).Error; err != nil {
		s.Logger.Error("failed to save complaint", zap.String("category", complaint.Category), zap.Error(err))
		return translate(err)
	}
	return nil
}

func (s *Service) GetComplaintByID(ctx context.Context, id string) (*models.Complaint, error) {
	var complaint models.Complaint
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&complaint).Error; err != nil {
		return nil, translate(err)
	}
	return &complaint, nil
}

// ListComplaints returns complaints newest first, narrowed by the filter.
func (s *Service) ListComplaints(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error) {
	q := s.DB.WithContext(ctx).Model(&models.Complaint{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("LOWER(category) = LOWER(?)", filter.Category)
	}
	if filter.SubmittedBy != "" {
		q = q.Where("submitted_by = ?", filter.SubmittedBy)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	complaints := []models.Complaint{}
	err := q.Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Order("id desc").
		Find(&complaints).Error
	if err != nil {
		s.Logger.Error("failed to list complaints", zap.Error(err))
		return nil, err
	}
	return complaints, nil
}

// SaveComplaint overwrites every column of an existing complaint.
// There is no version check: concurrent saves resolve as last write wins.
func (s *Service) SaveComplaint(ctx context.Context, complaint *models.Complaint) error {
	return translate(s.DB.WithContext(ctx).Save(complaint).Error)
}

// CountComplaintsByStatus groups all complaints by status.
func (s *Service) CountComplaintsByStatus(ctx context.Context) ([]models.StatusCount, error) {
	var rows []models.StatusCount
	err := s.DB.WithContext(ctx).
		Model(&models.Complaint{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Ping checks the database connection.
func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// PublishEvent publishes a complaint event on the Redis feed channel.
func (s *Service) PublishEvent(ctx context.Context, evt models.ComplaintEvent) error {
	if s.Redis == nil {
		return errors.New("redis is not configured")
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	if err := s.Redis.Publish(ctx, config.FeedChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}
	return nil
}

// SubscribeEvents subscribes to the Redis feed channel.
func (s *Service) SubscribeEvents(ctx context.Context) *redis.PubSub {
	return s.Redis.Subscribe(ctx, config.FeedChannel)
}
