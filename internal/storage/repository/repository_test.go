package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/storyverse/storyverse/internal/migrations"
	"github.com/storyverse/storyverse/internal/models"
)

// setupTestDatabase starts a throwaway PostgreSQL container and applies the
// real migrations, seed data included.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(3*time.Minute)),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(connStr)
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(func() {
		_ = storage.DB.Close()
	})

	require.NoError(t, migrations.Run(storage.DB, "../../../migrations"))
	return storage
}

func createTestUser(t *testing.T, storage *Storage, username, email string) *models.User {
	t.Helper()
	user, err := storage.CreateUser(context.Background(), models.User{
		Username:     username,
		Email:        email,
		PasswordHash: "not-a-real-hash",
		Role:         models.RoleUser,
		Theme:        "system",
	})
	require.NoError(t, err)
	return user
}

func TestStorage_Users(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage := setupTestDatabase(t)
	ctx := context.Background()

	user := createTestUser(t, storage, "reader42", "reader42@example.com")
	assert.False(t, user.IsPremium)

	// Duplicate username maps to the sentinel.
	_, err := storage.CreateUser(ctx, models.User{
		Username: "reader42", Email: "other@example.com",
		PasswordHash: "x", Role: models.RoleUser, Theme: "system",
	})
	assert.ErrorIs(t, err, models.ErrUsernameTaken)

	byEmail, err := storage.GetUserByEmail(ctx, "reader42@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = storage.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)

	updated, err := storage.UpdateUserTheme(ctx, user.ID, "dark")
	require.NoError(t, err)
	assert.Equal(t, "dark", updated.Theme)
}

func TestStorage_Sessions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage := setupTestDatabase(t)
	ctx := context.Background()

	user := createTestUser(t, storage, "reader42", "reader42@example.com")

	session, err := storage.CreateSession(ctx, user.ID, "some.jwt.token", time.Now().Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.UserID)

	deleted, err := storage.DeleteSession(ctx, "some.jwt.token")
	require.NoError(t, err)
	assert.True(t, deleted)

	// Second delete is a no-op, not an error.
	deleted, err = storage.DeleteSession(ctx, "some.jwt.token")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestStorage_SubscribeAndCancel(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage := setupTestDatabase(t)
	ctx := context.Background()

	user := createTestUser(t, storage, "reader42", "reader42@example.com")

	// The seed migration ships a catalog; take the first active plan.
	plans, err := storage.ListActivePlans(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, plans)
	plan := plans[0]

	now := time.Now()
	sub, err := storage.SubscribeTx(ctx, models.Subscription{
		UserID:    user.ID,
		PlanID:    plan.ID,
		Status:    models.SubscriptionActive,
		StartDate: now,
		EndDate:   now.AddDate(0, 1, 0),
		AutoRenew: true,
	}, models.Payment{
		UserID:        user.ID,
		Amount:        plan.Price,
		Currency:      "USD",
		Status:        "succeeded",
		PaymentMethod: "card",
		TransactionID: "txn_test_1",
	})
	require.NoError(t, err)

	// Premium flag and exactly one ledger row land in the same transaction.
	after, err := storage.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, after.IsPremium)

	payments, err := storage.ListPaymentsByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "succeeded", payments[0].Status)
	assert.Equal(t, sub.ID, payments[0].SubscriptionID)

	active, err := storage.GetActiveUserSubscription(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, active.ID)

	cancelled, err := storage.CancelTx(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionCancelled, cancelled.Status)
	assert.False(t, cancelled.AutoRenew)

	// No other live subscription remained, so premium is withdrawn.
	after, err = storage.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, after.IsPremium)

	_, err = storage.GetActiveUserSubscription(ctx, user.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStorage_CancelKeepsPremiumWithSecondSubscription(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage := setupTestDatabase(t)
	ctx := context.Background()

	user := createTestUser(t, storage, "reader42", "reader42@example.com")

	plans, err := storage.ListActivePlans(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, plans)

	now := time.Now()
	newSub := func(txn string) *models.Subscription {
		sub, err := storage.SubscribeTx(ctx, models.Subscription{
			UserID: user.ID, PlanID: plans[0].ID, Status: models.SubscriptionActive,
			StartDate: now, EndDate: now.AddDate(0, 1, 0), AutoRenew: true,
		}, models.Payment{
			UserID: user.ID, Amount: plans[0].Price, Currency: "USD",
			Status: "succeeded", PaymentMethod: "card", TransactionID: txn,
		})
		require.NoError(t, err)
		return sub
	}

	first := newSub("txn_test_1")
	newSub("txn_test_2")

	_, err = storage.CancelTx(ctx, first.ID)
	require.NoError(t, err)

	// The second live subscription keeps premium up.
	after, err := storage.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, after.IsPremium)
}

func TestStorage_Stories(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage := setupTestDatabase(t)
	ctx := context.Background()

	user := createTestUser(t, storage, "reader42", "reader42@example.com")

	story, err := storage.CreateStory(ctx, models.Story{
		UserID:   &user.ID,
		Title:    "The Clockwork Fox",
		Content:  "Once upon a time...",
		Genre:    "fantasy",
		Images:   []string{"a fox made of brass"},
		IsPublic: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a fox made of brass"}, story.Images)

	require.NoError(t, storage.IncrementStoryViews(ctx, story.ID))
	got, err := storage.GetStory(ctx, story.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Views)

	listed, err := storage.ListStoriesByGenre(ctx, "fantasy", 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	deleted, err := storage.DeleteStory(ctx, story.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = storage.GetStory(ctx, story.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStorage_ReferenceSeeds(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	storage := setupTestDatabase(t)
	ctx := context.Background()

	genres, err := storage.ListGenres(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, genres)

	themes, err := storage.ListThemes(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, themes)
}
