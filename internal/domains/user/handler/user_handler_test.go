package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"book-catalog-api/internal/domains/user"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockService struct {
	mock.Mock
}

func (m *mockService) Register(ctx context.Context, req user.RegisterRequest) (*user.UserDTO, error) {
	args := m.Called(ctx, req)
	dto, _ := args.Get(0).(*user.UserDTO)
	return dto, args.Error(1)
}

func (m *mockService) Login(ctx context.Context, req user.LoginRequest) (*user.LoginResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*user.LoginResponse)
	return resp, args.Error(1)
}

func (m *mockService) MakeAdmin(ctx context.Context, req user.MakeAdminRequest) error {
	return m.Called(ctx, req).Error(0)
}

func setup(svc user.Service) *gin.Engine {
	h := NewUserHandler(svc)
	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/make-admin", h.MakeAdmin)
	return r
}

func post(r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	req := user.RegisterRequest{FullName: "A", Email: "a@x.com", Password: "Secret1!"}

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"created", nil, http.StatusCreated},
		{"conflict", user.ErrEmailAlreadyExists, http.StatusConflict},
		{"validation", validation.Errors{"email": errors.New("invalid email address")}, http.StatusBadRequest},
		{"store failure", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockService)
			var dto *user.UserDTO
			if tt.err == nil {
				dto = &user.UserDTO{Email: req.Email, Roles: []string{"user"}}
			}
			svc.On("Register", mock.Anything, req).Return(dto, tt.err)

			w := post(setup(svc), "/auth/register", req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "db down")
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestRegister_MalformedBody(t *testing.T) {
	svc := new(mockService)
	w := post(setup(svc), "/auth/register", "{not json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	req := user.LoginRequest{Email: "a@x.com", Password: "Secret1!"}

	t.Run("returns token", func(t *testing.T) {
		svc := new(mockService)
		svc.On("Login", mock.Anything, req).Return(&user.LoginResponse{Token: "tkn"}, nil)

		w := post(setup(svc), "/auth/login", req)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Data user.LoginResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "tkn", body.Data.Token)
	})

	cases := []struct {
		err    error
		status int
	}{
		{user.ErrInvalidCredentials, http.StatusUnauthorized},
		{user.ErrTooManyAttempts, http.StatusTooManyRequests},
		{errors.New("generate access token: x"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		svc := new(mockService)
		svc.On("Login", mock.Anything, req).Return(nil, tc.err)

		w := post(setup(svc), "/auth/login", req)
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
	}
}

func TestMakeAdmin(t *testing.T) {
	req := user.MakeAdminRequest{Email: "a@x.com"}

	cases := []struct {
		err    error
		status int
	}{
		{nil, http.StatusOK},
		{user.ErrUserNotFound, http.StatusNotFound},
		{user.ErrAlreadyAdmin, http.StatusConflict},
		{validation.Errors{"email": errors.New("email is required")}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		svc := new(mockService)
		svc.On("MakeAdmin", mock.Anything, req).Return(tc.err)

		w := post(setup(svc), "/auth/make-admin", req)
		assert.Equal(t, tc.status, w.Code)
	}
}
