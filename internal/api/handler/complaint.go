package handler

import (
	"civicdesk/backend/internal/api/middleware"
	"civicdesk/backend/internal/auth"
	"civicdesk/backend/internal/complaint"
	"civicdesk/backend/internal/config"
	"civicdesk/backend/internal/export"
	"civicdesk/backend/internal/models"
	"civicdesk/backend/internal/validation"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

const complaintNotFound = "Complaint not found"

type locationRequest struct {
	Type        string    `json:"type" binding:"omitempty,eq=Point"`
	Coordinates []float64 `json:"coordinates" binding:"required,coordinates"`
}

type createComplaintRequest struct {
	Title       validation.Text  `json:"title" binding:"omitempty,min=3,max=100"`
	Description validation.Text  `json:"description" binding:"required,min=10,max=1000"`
	Category    validation.Text  `json:"category" binding:"required,min=3,max=50"`
	Email       string           `json:"email" binding:"omitempty,email"`
	Phone       string           `json:"phone" binding:"omitempty,max=20"`
	Location    *locationRequest `json:"location" binding:"omitempty"`
	Attachments []string         `json:"attachments" binding:"omitempty,max=10,dive,max=500"`
}

type updateComplaintRequest struct {
	Status     *string          `json:"status" binding:"omitempty,complaint_status"`
	Resolution *validation.Text `json:"resolution" binding:"omitempty,max=1000"`
	// Response is accepted as an alias of Resolution.
	Response   *validation.Text `json:"response" binding:"omitempty,max=1000"`
	Priority   *string          `json:"priority" binding:"omitempty,priority"`
	AssignedTo *string          `json:"assignedTo" binding:"omitempty,max=36"`
	Department *string          `json:"department" binding:"omitempty,max=36"`
}

type listComplaintsQuery struct {
	Status   string `form:"status" binding:"omitempty,complaint_status"`
	Category string `form:"category" binding:"omitempty,max=50"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=200"`
}

// filter converts the query. Without page or limit every match is returned;
// asking for a page without a limit uses the default page size.
func (q listComplaintsQuery) filter() models.ComplaintFilter {
	f := models.ComplaintFilter{Status: q.Status, Category: q.Category, Limit: q.Limit}
	if f.Limit == 0 && q.Page > 0 {
		f.Limit = config.DefaultPageSize
	}
	if f.Limit > 0 && q.Page > 1 {
		f.Offset = (q.Page - 1) * f.Limit
	}
	return f
}

type complaintURI struct {
	ID string `uri:"id" binding:"required,max=36"`
}

// CreateComplaint accepts a submission from a signed-in citizen or an anonymous
// visitor (who must then give an email).
func (h *Handler) CreateComplaint(c *gin.Context) {
	var req createComplaintRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err, "")
		return
	}

	in := complaint.CreateInput{
		Title:       req.Title.String(),
		Description: req.Description.String(),
		Category:    req.Category.String(),
		Email:       req.Email,
		Phone:       req.Phone,
		Attachments: req.Attachments,
	}
	if req.Location != nil {
		in.Location = models.NewGeoPoint(req.Location.Coordinates[0], req.Location.Coordinates[1])
	}

	var submitter *auth.Identity
	if id, ok := middleware.IdentityFrom(c); ok {
		submitter = &id
	}

	created, err := h.Complaints.Create(c.Request.Context(), submitter, in)
	if err != nil {
		h.respondError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListComplaints returns every complaint, newest first.
func (h *Handler) ListComplaints(c *gin.Context) {
	var q listComplaintsQuery
	if err := bindQuery(c, &q); err != nil {
		h.respondError(c, err, "")
		return
	}
	list, err := h.Complaints.List(c.Request.Context(), q.filter())
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, list)
}

// MyComplaints returns the caller's own submissions, newest first.
func (h *Handler) MyComplaints(c *gin.Context) {
	identity, _ := middleware.IdentityFrom(c)

	var q listComplaintsQuery
	if err := bindQuery(c, &q); err != nil {
		h.respondError(c, err, "")
		return
	}
	list, err := h.Complaints.ListMine(c.Request.Context(), identity.ID, q.filter())
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetComplaint returns one complaint if the caller may see it.
func (h *Handler) GetComplaint(c *gin.Context) {
	var uri complaintURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.respondError(c, asValidation(err, "id"), "")
		return
	}
	identity, _ := middleware.IdentityFrom(c)

	found, err := h.Complaints.Get(c.Request.Context(), uri.ID, identity)
	if err != nil {
		h.respondError(c, err, complaintNotFound)
		return
	}
	c.JSON(http.StatusOK, found)
}

// UpdateComplaint lets an administrator change status, resolution, priority,
// assignee or department.
func (h *Handler) UpdateComplaint(c *gin.Context) {
	var uri complaintURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.respondError(c, asValidation(err, "id"), "")
		return
	}
	var req updateComplaintRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err, "")
		return
	}

	in := complaint.UpdateInput{
		Status:       req.Status,
		Resolution:   validation.TextPtr(req.Resolution),
		Priority:     req.Priority,
		AssignedTo:   req.AssignedTo,
		DepartmentID: req.Department,
	}
	if in.Resolution == nil {
		in.Resolution = validation.TextPtr(req.Response)
	}

	updated, err := h.Complaints.Update(c.Request.Context(), uri.ID, in)
	if err != nil {
		h.respondError(c, err, complaintNotFound)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ComplaintStats returns {status: count} for the statuses that occur.
func (h *Handler) ComplaintStats(c *gin.Context) {
	stats, err := h.Complaints.Stats(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportComplaints streams every complaint as an XLSX workbook.
func (h *Handler) ExportComplaints(c *gin.Context) {
	ctx := c.Request.Context()
	list, err := h.Complaints.List(ctx, models.ComplaintFilter{})
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	stats, err := h.Complaints.Stats(ctx)
	if err != nil {
		h.respondError(c, err, "")
		return
	}

	data, err := export.Complaints(list, stats)
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", export.Filename(h.Now())))
	c.Data(http.StatusOK, export.ContentType, data)
}
