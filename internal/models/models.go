// Package models contains the domain structures shared between the storage,
// service and HTTP layers, plus the request shapes decoded from JSON bodies.
package models

import "time"

// Roles assigned to users. Registration always produces RoleUser; admins are
// promoted out of band.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Subscription statuses persisted in storage. "expired" is never written:
// reads treat an active subscription with end_date in the past as expired.
const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
)

// Billing cycles understood by the entitlement engine. Any other value falls
// back to a 30-day term.
const (
	BillingMonthly = "monthly"
	BillingYearly  = "yearly"
)

// User is an account record. PasswordHash never leaves the service layer.
// IsPremium is a cached flag derived from subscription state; the
// subscriptions table is the authority.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string
	IsPremium    bool
	Theme        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the JSON shape of a user returned by the API.
type PublicUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Theme     string `json:"theme"`
	Role      string `json:"role"`
	IsPremium bool   `json:"isPremium"`
}

// Public strips the fields that must not be serialized.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Theme:     u.Theme,
		Role:      u.Role,
		IsPremium: u.IsPremium,
	}
}

// Session is a server-side record of an issued token. Rows are removed on
// logout; rows past ExpiresAt are inert because the token itself has expired.
type Session struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// SubscriptionPlan is a catalog entry. Plans are soft-deleted via IsActive so
// historical subscriptions and payments keep their references.
// Price is a decimal carried as a string, never a float.
type SubscriptionPlan struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        string    `json:"price"`
	BillingCycle string    `json:"billingCycle"`
	Features     []string  `json:"features"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Subscription ties a user to a plan for a bounded term.
type Subscription struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	PlanID    int64     `json:"planId"`
	Status    string    `json:"status"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	AutoRenew bool      `json:"autoRenew"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Payment is an append-only ledger row. Amount is a decimal string over a
// NUMERIC column.
type Payment struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"userId"`
	SubscriptionID int64     `json:"subscriptionId"`
	Amount         string    `json:"amount"`
	Currency       string    `json:"currency"`
	Status         string    `json:"status"`
	PaymentMethod  string    `json:"paymentMethod"`
	TransactionID  string    `json:"transactionId"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Genre and Theme are seeded reference lists, read-only from the API.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Theme struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Story is a generated or hand-written narrative.
type Story struct {
	ID          int64     `json:"id"`
	UserID      *int64    `json:"userId"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Summary     string    `json:"summary"`
	Genre       string    `json:"genre"`
	Theme       string    `json:"theme"`
	Character   string    `json:"character"`
	Setting     string    `json:"setting"`
	StoryLength string    `json:"storyLength"`
	Images      []string  `json:"images"`
	IsPublic    bool      `json:"isPublic"`
	IsPremium   bool      `json:"isPremium"`
	Rating      int       `json:"rating"`
	Views       int       `json:"views"`
	CreatedAt   time.Time `json:"createdAt"`
}

// StorySettings are the generation parameters sent to the LLM.
type StorySettings struct {
	Genre       string `json:"genre" validate:"required"`
	Theme       string `json:"theme" validate:"required"`
	Character   string `json:"character" validate:"required"`
	Setting     string `json:"setting" validate:"required"`
	StoryLength string `json:"storyLength" validate:"required"`
}

// GeneratedStory is the parsed LLM response.
type GeneratedStory struct {
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Summary      string   `json:"summary"`
	ImagePrompts []string `json:"imagePrompts"`
}
