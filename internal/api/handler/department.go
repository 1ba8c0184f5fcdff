package handler

import (
	"civicdesk/backend/internal/config"
	"civicdesk/backend/internal/models"
	"civicdesk/backend/internal/storage"
	"civicdesk/backend/internal/validation"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const departmentNotFound = "Department not found"

type createDepartmentRequest struct {
	Name         validation.Text   `json:"name" binding:"required,min=3,max=50"`
	Description  validation.Text   `json:"description" binding:"required,min=10,max=500"`
	HeadID       string            `json:"headId" binding:"required,max=36"`
	ContactEmail string            `json:"contactEmail" binding:"required,email"`
	ContactPhone string            `json:"contactPhone" binding:"required,min=7,max=20"`
	Address      validation.Text   `json:"address" binding:"omitempty,max=200"`
	Categories   []validation.Text `json:"categories" binding:"omitempty,max=20,dive,min=3,max=50"`
}

type updateDepartmentRequest struct {
	Name         *validation.Text  `json:"name" binding:"omitempty,min=3,max=50"`
	Description  *validation.Text  `json:"description" binding:"omitempty,min=10,max=500"`
	HeadID       *string           `json:"headId" binding:"omitempty,max=36"`
	ContactEmail *string           `json:"contactEmail" binding:"omitempty,email"`
	ContactPhone *string           `json:"contactPhone" binding:"omitempty,min=7,max=20"`
	Address      *validation.Text  `json:"address" binding:"omitempty,max=200"`
	Categories   []validation.Text `json:"categories" binding:"omitempty,max=20,dive,min=3,max=50"`
}

type departmentURI struct {
	ID string `uri:"id" binding:"required,max=36"`
}

func (h *Handler) ListDepartments(c *gin.Context) {
	depts, err := h.Store.ListDepartments(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, depts)
}

func (h *Handler) GetDepartment(c *gin.Context) {
	var uri departmentURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.respondError(c, asValidation(err, "id"), "")
		return
	}
	dept, err := h.Store.GetDepartmentByID(c.Request.Context(), uri.ID)
	if err != nil {
		h.respondError(c, err, departmentNotFound)
		return
	}
	c.JSON(http.StatusOK, dept)
}

// CreateDepartment adds a department. Its head must hold the department_head role.
func (h *Handler) CreateDepartment(c *gin.Context) {
	var req createDepartmentRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err, "")
		return
	}

	ctx := c.Request.Context()
	if err := h.checkHead(ctx, req.HeadID); err != nil {
		h.respondError(c, err, "")
		return
	}

	dept := &models.Department{
		Name:         req.Name.String(),
		Description:  req.Description.String(),
		HeadID:       req.HeadID,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Address:      req.Address.String(),
		Categories:   models.StringList(validation.Strings(req.Categories)),
	}
	if err := h.Store.CreateDepartment(ctx, dept); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			c.JSON(http.StatusConflict, message("Department already exists"))
			return
		}
		h.respondError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, dept)
}

// UpdateDepartment changes the given fields of a department.
func (h *Handler) UpdateDepartment(c *gin.Context) {
	var uri departmentURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.respondError(c, asValidation(err, "id"), "")
		return
	}
	var req updateDepartmentRequest
	if err := bindJSON(c, &req); err != nil {
		h.respondError(c, err, "")
		return
	}

	ctx := c.Request.Context()
	dept, err := h.Store.GetDepartmentByID(ctx, uri.ID)
	if err != nil {
		h.respondError(c, err, departmentNotFound)
		return
	}

	if req.HeadID != nil {
		if err := h.checkHead(ctx, *req.HeadID); err != nil {
			h.respondError(c, err, "")
			return
		}
		dept.HeadID = *req.HeadID
	}
	if req.Name != nil {
		dept.Name = req.Name.String()
	}
	if req.Description != nil {
		dept.Description = req.Description.String()
	}
	if req.ContactEmail != nil {
		dept.ContactEmail = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		dept.ContactPhone = *req.ContactPhone
	}
	if req.Address != nil {
		dept.Address = req.Address.String()
	}
	if req.Categories != nil {
		dept.Categories = models.StringList(validation.Strings(req.Categories))
	}

	if err := h.Store.UpdateDepartment(ctx, dept); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			c.JSON(http.StatusConflict, message("Department already exists"))
			return
		}
		h.respondError(c, err, departmentNotFound)
		return
	}
	c.JSON(http.StatusOK, dept)
}

func (h *Handler) checkHead(ctx context.Context, headID string) error {
	head, err := h.Store.GetUserByID(ctx, headID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && head.Role != config.RoleDepartmentHead) {
		return validation.New("headId", "must reference a user with the department_head role")
	}
	return err
}
