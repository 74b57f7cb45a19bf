package models

import "errors"

// Sentinel errors shared across services. Handlers translate these into HTTP
// statuses; everything else becomes a generic 500.
var (
	// ErrNotFound marks a missing entity (user, plan, subscription, story).
	ErrNotFound = errors.New("not found")
	// ErrUsernameTaken marks a unique-key conflict on registration.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// login failures are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccessDenied marks an ownership or role mismatch on a mutation.
	ErrAccessDenied = errors.New("access denied")
	// ErrPlanNotFound marks a missing or inactive plan on subscribe.
	ErrPlanNotFound = errors.New("subscription plan not found")
	// ErrPremiumRequired gates premium content.
	ErrPremiumRequired = errors.New("premium subscription required")
)
