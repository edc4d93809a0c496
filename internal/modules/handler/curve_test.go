package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/emonotate/emonotate/internal/modules/model"
	"github.com/emonotate/emonotate/internal/modules/repo"
	"github.com/emonotate/emonotate/internal/modules/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type MockCurveService struct {
	mock.Mock
}

func (m *MockCurveService) Create(ctx context.Context, userID uint, in service.CreateCurveInput) (*model.Curve, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Curve), args.Error(1)
}

func (m *MockCurveService) Get(ctx context.Context, id uint) (*model.Curve, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Curve), args.Error(1)
}

func (m *MockCurveService) List(ctx context.Context, in service.ListCurvesInput) (*service.ListCurvesOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListCurvesOutput), args.Error(1)
}

func (m *MockCurveService) UpdateValues(ctx context.Context, actor *model.EmailUser, id uint, values datatypes.JSON, version string) (*model.Curve, error) {
	args := m.Called(ctx, actor, id, values, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Curve), args.Error(1)
}

func (m *MockCurveService) SetLocked(ctx context.Context, actor *model.EmailUser, id uint, locked bool) (*model.Curve, error) {
	args := m.Called(ctx, actor, id, locked)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Curve), args.Error(1)
}

func (m *MockCurveService) Delete(ctx context.Context, actor *model.EmailUser, id uint) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) ExportRequest(ctx context.Context, actor *model.EmailUser, requestID uint) (*service.ExportOutput, error) {
	args := m.Called(ctx, actor, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportOutput), args.Error(1)
}

func (m *MockExportService) ExportCurves(ctx context.Context, ids []uint) (*service.ExportOutput, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportOutput), args.Error(1)
}

func TestCurveHandler_DownloadByIDs(t *testing.T) {
	researcher := &model.EmailUser{ID: 1, IsActive: true}
	ten := []uint{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	tests := []struct {
		name           string
		user           *model.EmailUser
		query          string
		setup          func(*MockExportService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "ten ids are exported",
			user:  researcher,
			query: "?ids=1,2,3,4,5,6,7,8,9,10",
			setup: func(svc *MockExportService) {
				svc.On("ExportCurves", mock.Anything, ten).Return(&service.ExportOutput{URL: "https://s3/x.zip", Count: 10}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"url":"https://s3/x.zip"}`,
		},
		{
			name:  "eleven ids are refused",
			user:  researcher,
			query: "?ids=1,2,3,4,5,6,7,8,9,10,11",
			setup: func(svc *MockExportService) {
				svc.On("ExportCurves", mock.Anything, append(ten, 11)).Return(nil, service.ErrTooManyCurveIDs)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "anonymous caller is refused",
			query:          "?ids=1",
			setup:          func(svc *MockExportService) {},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "missing ids",
			user:           researcher,
			query:          "",
			setup:          func(svc *MockExportService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed id",
			user:           researcher,
			query:          "?ids=1,abc",
			setup:          func(svc *MockExportService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "storage failure",
			user:  researcher,
			query: "?ids=5",
			setup: func(svc *MockExportService) {
				svc.On("ExportCurves", mock.Anything, []uint{5}).Return(nil, errors.New("s3 down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := &MockExportService{}
			tt.setup(exp)
			h := NewCurveHandler(&MockCurveService{}, exp)

			router := setupRouter()
			router.GET("/download_curve_data/", withUser(tt.user, h.DownloadByIDs))

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download_curve_data/"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
			exp.AssertExpectations(t)
		})
	}
}

func TestCurveHandler_DownloadByRequest(t *testing.T) {
	participant := &model.EmailUser{ID: 5, IsActive: true}
	stranger := &model.EmailUser{ID: 6, IsActive: true}

	tests := []struct {
		name           string
		path           string
		actor          *model.EmailUser
		setup          func(*MockExportService)
		expectedStatus int
	}{
		{
			name:  "known request",
			path:  "/get_download_curve_data/3",
			actor: participant,
			setup: func(svc *MockExportService) {
				svc.On("ExportRequest", mock.Anything, participant, uint(3)).Return(&service.ExportOutput{URL: "https://s3/r.zip"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "unknown request without a session",
			path: "/get_download_curve_data/99",
			setup: func(svc *MockExportService) {
				svc.On("ExportRequest", mock.Anything, (*model.EmailUser)(nil), uint(99)).Return(nil, service.ErrRequestNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:  "caller unrelated to the request",
			path:  "/get_download_curve_data/3",
			actor: stranger,
			setup: func(svc *MockExportService) {
				svc.On("ExportRequest", mock.Anything, stranger, uint(3)).Return(nil, service.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "bad id",
			path:           "/get_download_curve_data/abc",
			setup:          func(svc *MockExportService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := &MockExportService{}
			tt.setup(exp)
			h := NewCurveHandler(&MockCurveService{}, exp)

			router := setupRouter()
			router.GET("/get_download_curve_data/:request_id", withUser(tt.actor, h.DownloadByRequest))

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			exp.AssertExpectations(t)
		})
	}
}

func TestCurveHandler_CreateCurve(t *testing.T) {
	u := &model.EmailUser{ID: 4, IsActive: true}

	tests := []struct {
		name           string
		body           string
		setup          func(*MockCurveService)
		expectedStatus int
	}{
		{
			name: "created",
			body: `{"content_id":1,"value_type_id":2,"values":[{"x":0,"y":0}],"version":"1.0.0","room_name":"AbC123"}`,
			setup: func(svc *MockCurveService) {
				svc.On("Create", mock.Anything, uint(4), mock.MatchedBy(func(in service.CreateCurveInput) bool {
					return in.ContentID == 1 && in.ValueTypeID == 2 && in.RoomName == "AbC123" && in.Locked == nil
				})).Return(&model.Curve{ID: 10}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "bad room code",
			body:           `{"content_id":1,"value_type_id":2,"values":[],"room_name":"toolongcode"}`,
			setup:          func(svc *MockCurveService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown content",
			body: `{"content_id":1,"value_type_id":2,"values":[]}`,
			setup: func(svc *MockCurveService) {
				svc.On("Create", mock.Anything, uint(4), mock.Anything).Return(nil, service.ErrInvalidReference)
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockCurveService{}
			tt.setup(svc)
			h := NewCurveHandler(svc, &MockExportService{})

			router := setupRouter()
			router.POST("/curves", withUser(u, h.CreateCurve))

			req := httptest.NewRequest(http.MethodPost, "/curves", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestCurveHandler_UpdateCurveLocked(t *testing.T) {
	u := &model.EmailUser{ID: 4, IsActive: true}
	svc := &MockCurveService{}
	svc.On("UpdateValues", mock.Anything, u, uint(9), mock.Anything, "").Return(nil, service.ErrCurveLocked)
	h := NewCurveHandler(svc, &MockExportService{})

	router := setupRouter()
	router.PUT("/curves/:id", withUser(u, h.UpdateCurve))

	req := httptest.NewRequest(http.MethodPut, "/curves/9", bytes.NewBufferString(`{"values":[]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	svc.AssertExpectations(t)
}

func TestCurveHandler_ListCurves(t *testing.T) {
	staff := &model.EmailUser{ID: 1, IsActive: true, IsStaff: true}
	plain := &model.EmailUser{ID: 2, IsActive: true}

	tests := []struct {
		name       string
		user       *model.EmailUser
		query      string
		wantFilter repo.CurveFilter
	}{
		{name: "own curves", user: plain, query: "?content_id=5", wantFilter: repo.CurveFilter{UserID: 2, ContentID: 5}},
		{name: "all ignored for non-staff", user: plain, query: "?all=true", wantFilter: repo.CurveFilter{UserID: 2}},
		{name: "staff lists everyone", user: staff, query: "?all=true&room_name=AbC123", wantFilter: repo.CurveFilter{RoomName: "AbC123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockCurveService{}
			svc.On("List", mock.Anything, service.ListCurvesInput{Filter: tt.wantFilter}).
				Return(&service.ListCurvesOutput{Items: []*model.Curve{}}, nil)
			h := NewCurveHandler(svc, &MockExportService{})

			router := setupRouter()
			router.GET("/curves", withUser(tt.user, h.ListCurves))

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/curves"+tt.query, nil))

			require.Equal(t, http.StatusOK, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestCurveHandler_LockCurve(t *testing.T) {
	u := &model.EmailUser{ID: 4, IsActive: true}
	svc := &MockCurveService{}
	svc.On("SetLocked", mock.Anything, u, uint(3), false).Return(&model.Curve{ID: 3}, nil)
	h := NewCurveHandler(svc, &MockExportService{})

	router := setupRouter()
	router.PUT("/curves/:id/lock", withUser(u, h.LockCurve))

	for _, body := range []string{`{}`, `{"locked":false}`} {
		req := httptest.NewRequest(http.MethodPut, "/curves/3/lock", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if body == `{}` {
			assert.Equal(t, http.StatusBadRequest, w.Code)
		} else {
			assert.Equal(t, http.StatusOK, w.Code)
		}
	}
	svc.AssertExpectations(t)
}
