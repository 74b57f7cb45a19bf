package story

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/storyverse/storyverse/internal/models"
)

type MockStoryRepo struct {
	mock.Mock
}

func (m *MockStoryRepo) GetStory(ctx context.Context, id int64) (*models.Story, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Story), args.Error(1)
}

func (m *MockStoryRepo) ListPublicStories(ctx context.Context, limit int) ([]*models.Story, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Story), args.Error(1)
}

func (m *MockStoryRepo) ListStoriesByGenre(ctx context.Context, genre string, limit int) ([]*models.Story, error) {
	args := m.Called(ctx, genre, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Story), args.Error(1)
}

func (m *MockStoryRepo) ListPremiumStories(ctx context.Context, limit int) ([]*models.Story, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Story), args.Error(1)
}

func (m *MockStoryRepo) CreateStory(ctx context.Context, story models.Story) (*models.Story, error) {
	args := m.Called(ctx, story)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Story), args.Error(1)
}

func (m *MockStoryRepo) UpdateStory(ctx context.Context, story models.Story) (*models.Story, error) {
	args := m.Called(ctx, story)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Story), args.Error(1)
}

func (m *MockStoryRepo) DeleteStory(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockStoryRepo) IncrementStoryViews(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockReferenceRepo struct {
	mock.Mock
}

func (m *MockReferenceRepo) ListGenres(ctx context.Context) ([]*models.Genre, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Genre), args.Error(1)
}

func (m *MockReferenceRepo) ListThemes(ctx context.Context) ([]*models.Theme, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Theme), args.Error(1)
}

type MockUserReader struct {
	mock.Mock
}

func (m *MockUserReader) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateStory(ctx context.Context, settings models.StorySettings) (*models.GeneratedStory, error) {
	args := m.Called(ctx, settings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GeneratedStory), args.Error(1)
}

func (m *MockGenerator) GenerateSpeech(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

func newService(stories *MockStoryRepo, reference *MockReferenceRepo,
	users *MockUserReader, generator *MockGenerator) *Service {
	return New(slog.New(slog.DiscardHandler), stories, reference, users, generator)
}

func TestService_Read_BumpsViews(t *testing.T) {
	stories := new(MockStoryRepo)
	stories.On("GetStory", mock.Anything, int64(3)).
		Return(&models.Story{ID: 3, Title: "The Clockwork Fox", Views: 9}, nil)
	stories.On("IncrementStoryViews", mock.Anything, int64(3)).Return(nil)

	got, err := newService(stories, nil, nil, nil).Read(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Views)
	stories.AssertExpectations(t)
}

func TestService_Read_CounterFailureIsNotFatal(t *testing.T) {
	stories := new(MockStoryRepo)
	stories.On("GetStory", mock.Anything, int64(3)).
		Return(&models.Story{ID: 3, Views: 0}, nil)
	stories.On("IncrementStoryViews", mock.Anything, int64(3)).
		Return(errors.New("connection reset"))

	got, err := newService(stories, nil, nil, nil).Read(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ID)
}

func TestService_ListPremium_RequiresPremium(t *testing.T) {
	stories := new(MockStoryRepo)
	users := new(MockUserReader)
	users.On("GetUser", mock.Anything, int64(7)).
		Return(&models.User{ID: 7, IsPremium: false}, nil)

	_, err := newService(stories, nil, users, nil).ListPremium(context.Background(), 7)
	assert.ErrorIs(t, err, models.ErrPremiumRequired)
	stories.AssertNotCalled(t, "ListPremiumStories", mock.Anything, mock.Anything)
}

func TestService_ListPremium_PremiumUser(t *testing.T) {
	stories := new(MockStoryRepo)
	users := new(MockUserReader)
	users.On("GetUser", mock.Anything, int64(7)).
		Return(&models.User{ID: 7, IsPremium: true}, nil)
	stories.On("ListPremiumStories", mock.Anything, defaultListLimit).
		Return([]*models.Story{{ID: 1, IsPremium: true}}, nil)

	got, err := newService(stories, nil, users, nil).ListPremium(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestService_Update_OwnershipRules(t *testing.T) {
	owner := int64(7)

	tests := []struct {
		name     string
		identity Identity
		stored   *models.Story
		wantErr  error
	}{
		{
			name:     "owner may update",
			identity: Identity{UserID: 7, Role: models.RoleUser},
			stored:   &models.Story{ID: 3, UserID: &owner},
		},
		{
			name:     "stranger is denied",
			identity: Identity{UserID: 8, Role: models.RoleUser},
			stored:   &models.Story{ID: 3, UserID: &owner},
			wantErr:  models.ErrAccessDenied,
		},
		{
			name:     "unowned story stays open",
			identity: Identity{UserID: 7, Role: models.RoleUser},
			stored:   &models.Story{ID: 3, UserID: nil},
		},
		{
			name:     "admin may update anything",
			identity: Identity{UserID: 99, Role: models.RoleAdmin},
			stored:   &models.Story{ID: 3, UserID: &owner},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stories := new(MockStoryRepo)
			stories.On("GetStory", mock.Anything, int64(3)).Return(tt.stored, nil).Maybe()
			stories.On("UpdateStory", mock.Anything, mock.Anything).
				Return(&models.Story{ID: 3}, nil).Maybe()

			_, err := newService(stories, nil, nil, nil).
				Update(context.Background(), tt.identity, models.Story{ID: 3})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				stories.AssertNotCalled(t, "UpdateStory", mock.Anything, mock.Anything)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestService_Generate_SavesOwnedStory(t *testing.T) {
	stories := new(MockStoryRepo)
	generator := new(MockGenerator)

	settings := models.StorySettings{
		Genre: "fantasy", Theme: "courage", Character: "a young mapmaker",
		Setting: "a floating city", StoryLength: "short",
	}
	generator.On("GenerateStory", mock.Anything, settings).Return(&models.GeneratedStory{
		Title:   "Maps of the Upper Air",
		Content: "Once...",
		Summary: "A mapmaker charts the sky.",
	}, nil)
	userID := int64(7)
	stories.On("CreateStory", mock.Anything, mock.MatchedBy(func(st models.Story) bool {
		return st.UserID != nil && *st.UserID == 7 &&
			st.Title == "Maps of the Upper Air" &&
			st.Genre == "fantasy" &&
			!st.IsPublic
	})).Return(&models.Story{ID: 21, UserID: &userID, Title: "Maps of the Upper Air"}, nil)

	got, err := newService(stories, nil, nil, generator).
		Generate(context.Background(), &userID, settings)
	require.NoError(t, err)
	assert.Equal(t, int64(21), got.ID)
	stories.AssertExpectations(t)
}

func TestService_Generate_ReturnsTextWhenSaveFails(t *testing.T) {
	stories := new(MockStoryRepo)
	generator := new(MockGenerator)

	generator.On("GenerateStory", mock.Anything, mock.Anything).Return(&models.GeneratedStory{
		Title: "Unsaved", Content: "...",
	}, nil)
	stories.On("CreateStory", mock.Anything, mock.Anything).
		Return(nil, errors.New("disk full"))

	got, err := newService(stories, nil, nil, generator).
		Generate(context.Background(), nil, models.StorySettings{Genre: "fantasy"})
	require.NoError(t, err)
	assert.Equal(t, "Unsaved", got.Title)
	assert.Zero(t, got.ID)
}
