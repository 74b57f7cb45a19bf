package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockService implements remove.Service.
type MockService struct {
	mock.Mock
}

func (m *MockService) RemovePlan(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func TestRemoveHandler(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockService)
		expectedStatus int
	}{
		{
			name: "successful soft delete",
			id:   "2",
			setupMock: func(m *MockService) {
				m.On("RemovePlan", mock.Anything, int64(2)).Return(true, nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name: "unknown plan",
			id:   "99",
			setupMock: func(m *MockService) {
				m.On("RemovePlan", mock.Anything, int64(99)).Return(false, nil)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid id",
			id:             "abc",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "storage failure",
			id:   "2",
			setupMock: func(m *MockService) {
				m.On("RemovePlan", mock.Anything, int64(2)).Return(false, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodDelete, "/api/subscription-plans/"+tt.id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}
