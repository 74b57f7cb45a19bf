package cancel

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/storyverse/storyverse/internal/http/middlewarectx"
	"github.com/storyverse/storyverse/internal/models"
)

// MockService implements cancel.Service.
type MockService struct {
	mock.Mock
}

func (m *MockService) Cancel(ctx context.Context, userID, subscriptionID int64) (*models.Subscription, error) {
	args := m.Called(ctx, userID, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func TestCancelHandler(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "successful cancel",
			id:   "11",
			setupMock: func(m *MockService) {
				m.On("Cancel", mock.Anything, int64(7), int64(11)).
					Return(&models.Subscription{ID: 11, Status: models.SubscriptionCancelled}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"cancelled"`,
		},
		{
			name: "not the owner",
			id:   "12",
			setupMock: func(m *MockService) {
				m.On("Cancel", mock.Anything, int64(7), int64(12)).
					Return(nil, models.ErrAccessDenied)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"access denied"`,
		},
		{
			name:           "invalid id",
			id:             "abc",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"invalid id"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/user/subscription/"+tt.id+"/cancel", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			req = req.WithContext(context.WithValue(req.Context(), middlewarectx.IdentityKey,
				middlewarectx.Identity{UserID: 7, Role: models.RoleUser}))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
