package storygen

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/storyverse/storyverse/internal/http/middlewarectx"
	"github.com/storyverse/storyverse/internal/models"
)

// MockService implements storygen.Service.
type MockService struct {
	mock.Mock
}

func (m *MockService) Generate(ctx context.Context, userID *int64, settings models.StorySettings) (*models.Story, error) {
	args := m.Called(ctx, userID, settings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Story), args.Error(1)
}

// MockLimiter implements storygen.Limiter.
type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(userID int64) (bool, int) {
	args := m.Called(userID)
	return args.Bool(0), args.Int(1)
}

const validBody = `{"genre":"fantasy","theme":"courage","character":"a young mapmaker","setting":"a floating city","storyLength":"short"}`

func TestStorygenHandler(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	tests := []struct {
		name           string
		body           string
		authenticated  bool
		setupMock      func(*MockService, *MockLimiter)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:          "authenticated generation",
			body:          validBody,
			authenticated: true,
			setupMock: func(s *MockService, l *MockLimiter) {
				l.On("Allow", int64(7)).Return(true, 0)
				s.On("Generate", mock.Anything, mock.Anything, mock.Anything).
					Return(&models.Story{ID: 21, Title: "Maps of the Upper Air"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"Maps of the Upper Air"`,
		},
		{
			name:          "limit reached",
			body:          validBody,
			authenticated: true,
			setupMock: func(s *MockService, l *MockLimiter) {
				l.On("Allow", int64(7)).Return(false, 23)
			},
			expectedStatus: http.StatusTooManyRequests,
			expectedBody:   `"hoursRemaining":23`,
		},
		{
			name: "anonymous caller skips the limiter",
			body: validBody,
			setupMock: func(s *MockService, l *MockLimiter) {
				s.On("Generate", mock.Anything, (*int64)(nil), mock.Anything).
					Return(&models.Story{ID: 22, Title: "Unowned"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"Unowned"`,
		},
		{
			name:           "missing settings",
			body:           `{"genre":"fantasy"}`,
			authenticated:  true,
			setupMock:      func(_ *MockService, _ *MockLimiter) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `required field`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			mockLimiter := new(MockLimiter)
			tt.setupMock(mockService, mockLimiter)

			handler := New(logger, mockService, mockLimiter)

			req := httptest.NewRequest(http.MethodPost, "/api/generate-story", strings.NewReader(tt.body))
			if tt.authenticated {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.IdentityKey,
					middlewarectx.Identity{UserID: 7, Role: models.RoleUser}))
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
			mockLimiter.AssertExpectations(t)
		})
	}
}
