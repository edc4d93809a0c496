package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/emonotate/emonotate/internal/modules/model"
	"github.com/emonotate/emonotate/internal/modules/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRequestService struct {
	mock.Mock
}

func (m *MockRequestService) Create(ctx context.Context, owner *model.EmailUser, in service.CreateRequestInput) (*model.Request, error) {
	args := m.Called(ctx, owner, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Request), args.Error(1)
}

func (m *MockRequestService) Get(ctx context.Context, id uint) (*model.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Request), args.Error(1)
}

func (m *MockRequestService) GetByRoomName(ctx context.Context, roomName string) (*model.Request, error) {
	args := m.Called(ctx, roomName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Request), args.Error(1)
}

func (m *MockRequestService) List(ctx context.Context, in service.ListRequestsInput) (*service.ListRequestsOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListRequestsOutput), args.Error(1)
}

func (m *MockRequestService) ListParticipating(ctx context.Context, userID uint) ([]*model.Request, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Request), args.Error(1)
}

func (m *MockRequestService) Update(ctx context.Context, actor *model.EmailUser, id uint, in service.UpdateRequestInput) (*model.Request, error) {
	args := m.Called(ctx, actor, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Request), args.Error(1)
}

func (m *MockRequestService) Delete(ctx context.Context, actor *model.EmailUser, id uint) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockRequestService) AddParticipants(ctx context.Context, actor *model.EmailUser, id uint, userIDs []uint) (int64, error) {
	args := m.Called(ctx, actor, id, userIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRequestService) ListParticipants(ctx context.Context, actor *model.EmailUser, id uint) ([]*model.RelationParticipant, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.RelationParticipant), args.Error(1)
}

type MockMailService struct {
	mock.Mock
}

func (m *MockMailService) Dispatch(ctx context.Context, actor *model.EmailUser, requestID uint, targets []uint) (*service.DispatchResult, error) {
	args := m.Called(ctx, actor, requestID, targets)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DispatchResult), args.Error(1)
}

func (m *MockMailService) ResetEmails(ctx context.Context, actor *model.EmailUser, requestID uint) (int64, error) {
	args := m.Called(ctx, actor, requestID)
	return args.Get(0).(int64), args.Error(1)
}

func TestRequestHandler_SendMail(t *testing.T) {
	owner := &model.EmailUser{ID: 7, IsActive: true}
	stranger := &model.EmailUser{ID: 8, IsActive: true}

	tests := []struct {
		name           string
		path           string
		actor          *model.EmailUser
		setup          func(*MockMailService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "targets are passed through",
			path:  "/send/1?targets=2;3;2;",
			actor: owner,
			setup: func(svc *MockMailService) {
				svc.On("Dispatch", mock.Anything, owner, uint(1), []uint{2, 3, 2}).
					Return(&service.DispatchResult{Sent: 2}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"sent":2`,
		},
		{
			name: "no targets mails everyone",
			path:  "/send/1",
			actor: owner,
			setup: func(svc *MockMailService) {
				svc.On("Dispatch", mock.Anything, owner, uint(1), []uint(nil)).
					Return(&service.DispatchResult{Sent: 4, Skipped: 1}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"skipped":1`,
		},
		{
			name:           "malformed target",
			path:           "/send/1?targets=2;x",
			setup:          func(svc *MockMailService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown request without a session",
			path: "/send/42",
			setup: func(svc *MockMailService) {
				svc.On("Dispatch", mock.Anything, (*model.EmailUser)(nil), uint(42), []uint(nil)).Return(nil, service.ErrRequestNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:  "someone else's request",
			path:  "/send/1",
			actor: stranger,
			setup: func(svc *MockMailService) {
				svc.On("Dispatch", mock.Anything, stranger, uint(1), []uint(nil)).Return(nil, service.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mail := &MockMailService{}
			tt.setup(mail)
			h := NewRequestHandler(&MockRequestService{}, mail)

			router := setupRouter()
			router.GET("/send/:request_id", withUser(tt.actor, h.SendMail))

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
			mail.AssertExpectations(t)
		})
	}
}

func TestRequestHandler_ResetEmails(t *testing.T) {
	owner := &model.EmailUser{ID: 7, IsActive: true}
	stranger := &model.EmailUser{ID: 8, IsActive: true}

	mail := &MockMailService{}
	mail.On("ResetEmails", mock.Anything, owner, uint(5)).Return(int64(3), nil)
	mail.On("ResetEmails", mock.Anything, stranger, uint(5)).Return(int64(0), service.ErrForbidden)
	h := NewRequestHandler(&MockRequestService{}, mail)

	router := setupRouter()
	router.GET("/owner/:request_id", withUser(owner, h.ResetEmails))
	router.GET("/stranger/:request_id", withUser(stranger, h.ResetEmails))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/owner/5", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"reset":3`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stranger/5", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	mail.AssertExpectations(t)
}

func TestRequestHandler_CreateRequest(t *testing.T) {
	owner := &model.EmailUser{ID: 2, IsActive: true}

	tests := []struct {
		name           string
		body           string
		setup          func(*MockRequestService)
		expectedStatus int
	}{
		{
			name: "created",
			body: `{"title":"Watch","content_id":1,"value_type_id":1}`,
			setup: func(svc *MockRequestService) {
				svc.On("Create", mock.Anything, owner, service.CreateRequestInput{Title: "Watch", ContentID: 1, ValueTypeID: 1}).
					Return(&model.Request{ID: 1, RoomName: "AbC123"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing title",
			body:           `{"content_id":1,"value_type_id":1}`,
			setup:          func(svc *MockRequestService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "dangling reference",
			body: `{"title":"Watch","content_id":99,"value_type_id":1}`,
			setup: func(svc *MockRequestService) {
				svc.On("Create", mock.Anything, owner, mock.Anything).Return(nil, service.ErrInvalidReference)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockRequestService{}
			tt.setup(svc)
			h := NewRequestHandler(svc, &MockMailService{})

			router := setupRouter()
			router.POST("/requests", withUser(owner, h.CreateRequest))

			req := httptest.NewRequest(http.MethodPost, "/requests", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestRequestHandler_GetRequestByRoom(t *testing.T) {
	svc := &MockRequestService{}
	svc.On("GetByRoomName", mock.Anything, "AbC123").Return(&model.Request{ID: 1, RoomName: "AbC123"}, nil)
	h := NewRequestHandler(svc, &MockMailService{})

	router := setupRouter()
	router.GET("/requests/room/:room_name", h.GetRequestByRoom)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/requests/room/AbC123", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/requests/room/ab-123", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

func TestRequestHandler_Forbidden(t *testing.T) {
	stranger := &model.EmailUser{ID: 9, IsActive: true}
	svc := &MockRequestService{}
	svc.On("Delete", mock.Anything, stranger, uint(1)).Return(service.ErrForbidden)
	h := NewRequestHandler(svc, &MockMailService{})

	router := setupRouter()
	router.DELETE("/requests/:id", withUser(stranger, h.DeleteRequest))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/requests/1", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	svc.AssertExpectations(t)
}
