// Package handler implements the HTTP endpoints: binding and validating
// requests, calling the services and shaping JSON responses.
package handler

import (
	"civicdesk/backend/internal/auth"
	"civicdesk/backend/internal/complaint"
	"civicdesk/backend/internal/feed"
	"civicdesk/backend/internal/storage"
	"civicdesk/backend/internal/validation"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler holds the dependencies shared by every endpoint.
type Handler struct {
	Store       storage.Storage
	Complaints  *complaint.Service
	Tokens      *auth.TokenManager
	Hub         *feed.ManagerService
	Logger      *zap.Logger
	FrontendURL string
	// Development exposes internal error details in 500 responses.
	Development bool
	Now         func() time.Time
}

// Deps bundles the constructor arguments of NewHandler.
type Deps struct {
	Store       storage.Storage
	Complaints  *complaint.Service
	Tokens      *auth.TokenManager
	Hub         *feed.ManagerService
	Logger      *zap.Logger
	FrontendURL string
	Development bool
}

func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:       d.Store,
		Complaints:  d.Complaints,
		Tokens:      d.Tokens,
		Hub:         d.Hub,
		Logger:      logger,
		FrontendURL: d.FrontendURL,
		Development: d.Development,
		Now:         time.Now,
	}
}

func message(text string) gin.H {
	return gin.H{"message": text}
}

// bindJSON binds and validates the request body into dst.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return asValidation(err, "body")
	}
	return nil
}

// bindQuery binds and validates query parameters into dst.
func bindQuery(c *gin.Context, dst any) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return asValidation(err, "query")
	}
	return nil
}

func asValidation(err error, field string) error {
	err = validation.Translate(err)
	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr
	}
	return validation.New(field, err.Error())
}

// respondError maps an error to its HTTP status. notFound is the message used
// for storage.ErrNotFound.
func (h *Handler) respondError(c *gin.Context, err error, notFound string) {
	_ = c.Error(err)

	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, verr)
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, message(notFound))
	case errors.Is(err, storage.ErrDuplicate):
		c.JSON(http.StatusConflict, message("Resource already exists"))
	case errors.Is(err, complaint.ErrForbidden):
		c.JSON(http.StatusForbidden, message("Not authorized to access this complaint"))
	case errors.Is(err, complaint.ErrInvalidTransition):
		c.JSON(http.StatusConflict, message(err.Error()))
	case errors.Is(err, complaint.ErrNoChanges):
		c.JSON(http.StatusBadRequest, validation.New("body", "at least one field must be provided"))
	default:
		h.Logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		body := message("Internal server error")
		if h.Development {
			body["error"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}
