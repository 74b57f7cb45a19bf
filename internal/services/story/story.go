// Package story manages the story library and AI generation: public browsing,
// authoring, the premium shelf and the LLM-backed generate flow.
package story

import (
	"context"
	"log/slog"

	"github.com/storyverse/storyverse/internal/lib/sl"
	"github.com/storyverse/storyverse/internal/models"
)

const defaultListLimit = 10

// Repository is the story storage contract.
type Repository interface {
	GetStory(ctx context.Context, id int64) (*models.Story, error)
	ListPublicStories(ctx context.Context, limit int) ([]*models.Story, error)
	ListStoriesByGenre(ctx context.Context, genre string, limit int) ([]*models.Story, error)
	ListPremiumStories(ctx context.Context, limit int) ([]*models.Story, error)
	CreateStory(ctx context.Context, story models.Story) (*models.Story, error)
	UpdateStory(ctx context.Context, story models.Story) (*models.Story, error)
	DeleteStory(ctx context.Context, id int64) (bool, error)
	IncrementStoryViews(ctx context.Context, id int64) error
}

// ReferenceRepository serves the seeded genre and theme lists.
type ReferenceRepository interface {
	ListGenres(ctx context.Context) ([]*models.Genre, error)
	ListThemes(ctx context.Context) ([]*models.Theme, error)
}

// UserReader resolves the premium flag for the premium shelf.
type UserReader interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// Generator produces story text and narration audio.
type Generator interface {
	GenerateStory(ctx context.Context, settings models.StorySettings) (*models.GeneratedStory, error)
	GenerateSpeech(ctx context.Context, text string) (string, error)
}

type Service struct {
	log       *slog.Logger
	stories   Repository
	reference ReferenceRepository
	users     UserReader
	generator Generator
}

func New(log *slog.Logger, stories Repository, reference ReferenceRepository,
	users UserReader, generator Generator) *Service {
	return &Service{
		log:       log,
		stories:   stories,
		reference: reference,
		users:     users,
		generator: generator,
	}
}

// ListPublic returns the public shelf ordered by popularity. A non-positive
// limit falls back to the default page size.
func (s *Service) ListPublic(ctx context.Context, genre string, limit int) ([]*models.Story, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if genre != "" {
		return s.stories.ListStoriesByGenre(ctx, genre, limit)
	}
	return s.stories.ListPublicStories(ctx, limit)
}

// ListPremium returns the premium shelf. Callers without the premium flag get
// models.ErrPremiumRequired.
func (s *Service) ListPremium(ctx context.Context, userID int64) ([]*models.Story, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsPremium {
		return nil, models.ErrPremiumRequired
	}
	return s.stories.ListPremiumStories(ctx, defaultListLimit)
}

// Get returns a story without touching the view counter.
func (s *Service) Get(ctx context.Context, id int64) (*models.Story, error) {
	return s.stories.GetStory(ctx, id)
}

// Read returns a story and bumps its view counter. The bump is best effort;
// a failed counter never hides the story.
func (s *Service) Read(ctx context.Context, id int64) (*models.Story, error) {
	story, err := s.stories.GetStory(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.stories.IncrementStoryViews(ctx, id); err != nil {
		s.log.Warn("view counter update failed", slog.Int64("story_id", id), sl.Err(err))
	}
	story.Views++
	return story, nil
}

// Create saves a hand-written story. userID is nil for anonymous authors.
func (s *Service) Create(ctx context.Context, userID *int64, story models.Story) (*models.Story, error) {
	story.UserID = userID
	return s.stories.CreateStory(ctx, story)
}

// Update overwrites a story. Only the owner or an admin may write; everyone
// else gets models.ErrAccessDenied.
func (s *Service) Update(ctx context.Context, identity Identity, story models.Story) (*models.Story, error) {
	if err := s.checkOwnership(ctx, identity, story.ID); err != nil {
		return nil, err
	}
	return s.stories.UpdateStory(ctx, story)
}

// Delete removes a story under the same ownership rule as Update. Returns
// false when the story did not exist.
func (s *Service) Delete(ctx context.Context, identity Identity, id int64) (bool, error) {
	if err := s.checkOwnership(ctx, identity, id); err != nil {
		return false, err
	}
	return s.stories.DeleteStory(ctx, id)
}

// Identity is the slice of the caller the service needs for ownership checks.
type Identity struct {
	UserID int64
	Role   string
}

// checkOwnership lets admins write anything and leaves unowned stories open,
// since anonymous generations have no owner to check against. Owned stories
// accept writes from their owner only.
func (s *Service) checkOwnership(ctx context.Context, identity Identity, storyID int64) error {
	if identity.Role == models.RoleAdmin {
		return nil
	}
	existing, err := s.stories.GetStory(ctx, storyID)
	if err != nil {
		return err
	}
	if existing.UserID != nil && *existing.UserID != identity.UserID {
		return models.ErrAccessDenied
	}
	return nil
}

// Genres returns the seeded genre list.
func (s *Service) Genres(ctx context.Context) ([]*models.Genre, error) {
	return s.reference.ListGenres(ctx)
}

// Themes returns the seeded theme list.
func (s *Service) Themes(ctx context.Context) ([]*models.Theme, error) {
	return s.reference.ListThemes(ctx)
}

// Generate asks the LLM for a story and saves it. userID is nil for
// anonymous callers; their stories are saved unowned. Rate limiting happens
// at the HTTP layer, before this is reached.
func (s *Service) Generate(ctx context.Context, userID *int64, settings models.StorySettings) (*models.Story, error) {
	generated, err := s.generator.GenerateStory(ctx, settings)
	if err != nil {
		return nil, err
	}

	story := models.Story{
		UserID:      userID,
		Title:       generated.Title,
		Content:     generated.Content,
		Summary:     generated.Summary,
		Genre:       settings.Genre,
		Theme:       settings.Theme,
		Character:   settings.Character,
		Setting:     settings.Setting,
		StoryLength: settings.StoryLength,
		IsPublic:    false,
	}
	saved, err := s.stories.CreateStory(ctx, story)
	if err != nil {
		// The text was produced but could not be stored; hand it back anyway
		// so the caller's generation is not wasted.
		s.log.Error("generated story not persisted", sl.Err(err))
		story.Images = []string{}
		return &story, nil
	}
	return saved, nil
}

// Narrate renders story text as speech.
func (s *Service) Narrate(ctx context.Context, text string) (string, error) {
	return s.generator.GenerateSpeech(ctx, text)
}
