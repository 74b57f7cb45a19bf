package subscribe

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
	"github.com/storyverse/storyverse/internal/services/entitlement"
)

// MockService implements subscribe.Service.
type MockService struct {
	mock.Mock
}

func (m *MockService) Subscribe(ctx context.Context, userID int64, req entitlement.SubscribeRequest) (*models.Subscription, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func asUser(req *http.Request, userID int64) *http.Request {
	ctx := context.WithValue(req.Context(), middlewarectx.IdentityKey, middlewarectx.Identity{
		UserID: userID, Username: "reader42", Role: models.RoleUser,
	})
	return req.WithContext(ctx)
}

func TestSubscribeHandler(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	tests := []struct {
		name           string
		body           string
		authenticated  bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:          "successful subscribe",
			body:          `{"planId":2,"paymentMethod":"card","paymentAmount":"19.99"}`,
			authenticated: true,
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, int64(7), entitlement.SubscribeRequest{
					PlanID: 2, PaymentMethod: "card", PaymentAmount: "19.99",
				}).Return(&models.Subscription{ID: 11, UserID: 7, PlanID: 2, Status: models.SubscriptionActive}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"status":"active"`,
		},
		{
			name:           "anonymous caller",
			body:           `{"planId":2,"paymentMethod":"card","paymentAmount":"19.99"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"authentication required"`,
		},
		{
			name:           "missing payment fields",
			body:           `{"planId":2}`,
			authenticated:  true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `field PaymentMethod is a required field`,
		},
		{
			name:          "unknown plan",
			body:          `{"planId":99,"paymentMethod":"card","paymentAmount":"19.99"}`,
			authenticated: true,
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, int64(7), mock.Anything).
					Return(nil, models.ErrPlanNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"plan not found"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/user/subscription", strings.NewReader(tt.body))
			if tt.authenticated {
				req = asUser(req, 7)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
