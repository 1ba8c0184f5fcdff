// Package seed loads demo users, departments and complaints into an empty or
// partially filled database. Every step is idempotent.
package seed

import (
	"civicdesk/backend/internal/config"
	"civicdesk/backend/internal/models"
	"civicdesk/backend/internal/storage"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options controls a seeding run.
type Options struct {
	// Reset deletes every complaint, department and user first.
	Reset bool
}

// Result counts the records created by a run.
type Result struct {
	Users       int
	Departments int
	Complaints  int
}

type seedUser struct {
	Name, Email, Password, Role string
}

var users = []seedUser{
	{Name: "Admin User", Email: "admin@example.com", Password: "admin123", Role: config.RoleAdmin},
	{Name: "Department Head", Email: "head@example.com", Password: "head1234", Role: config.RoleDepartmentHead},
	{Name: "Regular User", Email: "user@example.com", Password: "user1234", Role: config.RoleCitizen},
}

var departments = []models.Department{
	{
		Name:         "Public Works",
		Description:  "Handles infrastructure and public facilities",
		ContactEmail: "publicworks@example.com",
		ContactPhone: "123-456-7890",
		Address:      "123 Main St, City",
		Categories:   models.StringList{"Roads", "Bridges", "Public Buildings", "Street Lighting"},
	},
	{
		Name:         "Environmental Services",
		Description:  "Manages environmental protection and waste management",
		ContactEmail: "environment@example.com",
		ContactPhone: "123-456-7891",
		Address:      "456 Green St, City",
		Categories:   models.StringList{"Waste Management", "Recycling", "Environmental Protection"},
	},
	{
		Name:         "Public Safety",
		Description:  "Oversees traffic control and emergency response",
		ContactEmail: "safety@example.com",
		ContactPhone: "123-456-7892",
		Address:      "789 Safe Ave, City",
		Categories:   models.StringList{"Traffic Management", "Emergency Services", "Public Safety"},
	},
}

type seedComplaint struct {
	Title, Description, Category, Status, Priority, Resolution, Department string
}

var complaints = []seedComplaint{
	{
		Title:       "Pothole on Main Street",
		Description: "Large pothole causing traffic issues and potential damage to vehicles",
		Category:    "Road Maintenance", Status: config.StatusPending, Priority: config.PriorityHigh,
		Department: "Public Works",
	},
	{
		Title:       "Broken Street Light",
		Description: "Street light not working for the past week, making the area unsafe at night",
		Category:    "Street Lighting", Status: config.StatusInProgress, Priority: config.PriorityMedium,
		Department: "Public Works",
	},
	{
		Title:       "Illegal Dumping",
		Description: "People dumping garbage in the park after hours",
		Category:    "Waste Management", Status: config.StatusPending, Priority: config.PriorityHigh,
		Department: "Environmental Services",
	},
	{
		Title:       "Traffic Light Malfunction",
		Description: "Traffic light at intersection not working properly",
		Category:    "Traffic Management", Status: config.StatusResolved, Priority: config.PriorityHigh,
		Resolution: "Traffic light has been repaired and is now functioning normally",
		Department: "Public Safety",
	},
}

// Seeder writes the demo data set.
type Seeder struct {
	Store  *storage.Service
	Logger *zap.Logger
}

// New creates a Seeder.
func New(store *storage.Service, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{Store: store, Logger: logger}
}

// Run seeds users, then departments headed by the department head, then
// sample complaints when the complaint table is empty.
func (s *Seeder) Run(ctx context.Context, opts Options) (Result, error) {
	var res Result

	if opts.Reset {
		if err := s.reset(ctx); err != nil {
			return res, err
		}
	}

	byRole := map[string]*models.User{}
	for _, u := range users {
		user, created, err := s.ensureUser(ctx, u)
		if err != nil {
			return res, err
		}
		if created {
			res.Users++
		}
		if _, ok := byRole[u.Role]; !ok {
			byRole[u.Role] = user
		}
	}

	head := byRole[config.RoleDepartmentHead]
	deptIDs := map[string]string{}
	existing, err := s.Store.ListDepartments(ctx)
	if err != nil {
		return res, fmt.Errorf("list departments: %w", err)
	}
	for _, d := range existing {
		deptIDs[d.Name] = d.ID
	}
	for _, d := range departments {
		if _, ok := deptIDs[d.Name]; ok {
			continue
		}
		dept := d
		dept.Categories = append(models.StringList(nil), d.Categories...)
		dept.HeadID = head.ID
		if err := s.Store.CreateDepartment(ctx, &dept); err != nil {
			return res, fmt.Errorf("seed department %s: %w", d.Name, err)
		}
		deptIDs[dept.Name] = dept.ID
		res.Departments++
	}

	current, err := s.Store.ListComplaints(ctx, models.ComplaintFilter{Limit: 1})
	if err != nil {
		return res, fmt.Errorf("list complaints: %w", err)
	}
	if len(current) == 0 {
		citizen := byRole[config.RoleCitizen]
		for _, sc := range complaints {
			c := &models.Complaint{
				Title:       sc.Title,
				Description: sc.Description,
				Category:    sc.Category,
				Status:      sc.Status,
				Priority:    sc.Priority,
				Resolution:  sc.Resolution,
				Location:    models.NewGeoPoint(-73.935242, 40.73061),
				SubmittedBy: &citizen.ID,
				Email:       citizen.Email,
			}
			if id, ok := deptIDs[sc.Department]; ok {
				c.DepartmentID = &id
			}
			if err := s.Store.CreateComplaint(ctx, c); err != nil {
				return res, fmt.Errorf("seed complaint %q: %w", sc.Title, err)
			}
			res.Complaints++
		}
	}

	s.Logger.Info("seeding finished",
		zap.Int("users", res.Users),
		zap.Int("departments", res.Departments),
		zap.Int("complaints", res.Complaints),
	)
	return res, nil
}

func (s *Seeder) ensureUser(ctx context.Context, u seedUser) (*models.User, bool, error) {
	user, err := s.Store.GetUserByEmail(ctx, u.Email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, fmt.Errorf("look up %s: %w", u.Email, err)
	}
	user = &models.User{Name: u.Name, Email: u.Email, Password: u.Password, Role: u.Role}
	if err := s.Store.CreateUser(ctx, user); err != nil {
		return nil, false, fmt.Errorf("seed user %s: %w", u.Email, err)
	}
	return user, true, nil
}

func (s *Seeder) reset(ctx context.Context) error {
	return s.Store.DB.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Complaint{}, &models.Department{}, &models.User{}} {
			if err := tx.Delete(model).Error; err != nil {
				return fmt.Errorf("reset: %w", err)
			}
		}
		s.Logger.Warn("database reset before seeding")
		return nil
	})
}
