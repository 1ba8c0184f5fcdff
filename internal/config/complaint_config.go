package config

import "time"

const (
	// Roles
	RoleCitizen        = "citizen"
	RoleAdmin          = "admin"
	RoleDepartmentHead = "department_head"

	// Complaint status
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusRejected   = "rejected"

	// Complaint priority
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	// Tokens
	DefaultTokenTTL = 24 * time.Hour
	TokenIssuer     = "civicdesk-api"

	// Passwords
	BcryptCost        = 10
	MinPasswordLength = 8

	// Listing
	DefaultPageSize = 50
	MaxPageSize     = 200

	// Feed
	FeedChannel        = "complaints:events"
	ClientSendBuffer   = 64
	HubBroadcastBuffer = 256
)

// Roles lists every role a user can hold.
var Roles = []string{RoleCitizen, RoleAdmin, RoleDepartmentHead}

// Statuses lists the complaint lifecycle states in dashboard order.
var Statuses = []string{StatusPending, StatusInProgress, StatusResolved, StatusRejected}

// Priorities lists the complaint priorities from lowest to highest.
var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

// StatusTransitions is the guard applied when strict transitions are enabled.
// Moving to the current status is always allowed and is not listed here.
var StatusTransitions = map[string][]string{
	StatusPending:    {StatusInProgress, StatusResolved, StatusRejected},
	StatusInProgress: {StatusPending, StatusResolved, StatusRejected},
	StatusResolved:   {StatusInProgress},
	StatusRejected:   {StatusPending},
}
