package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/libradesk/libradesk/internal/handler"
	"github.com/libradesk/libradesk/internal/model"
	"github.com/libradesk/libradesk/internal/session"
	"github.com/libradesk/libradesk/pkg/validate"

	service_mocks "github.com/libradesk/libradesk/internal/handler/mocks"
)

func newTestHandler(c *gomock.Controller) (*handler.Handler, *service_mocks.MockCatalogService, *service_mocks.MockLoanService, *service_mocks.MockPeopleService, *service_mocks.MockStatsService, *service_mocks.MockSessionManager) {
	catalogSvc := service_mocks.NewMockCatalogService(c)
	loanSvc := service_mocks.NewMockLoanService(c)
	peopleSvc := service_mocks.NewMockPeopleService(c)
	statsSvc := service_mocks.NewMockStatsService(c)
	sessions := service_mocks.NewMockSessionManager(c)
	scans := service_mocks.NewMockScanStore(c)
	log := zap.NewExample().Named("test")
	h := handler.New(log, catalogSvc, loanSvc, peopleSvc, statsSvc, sessions, scans)
	return h, catalogSvc, loanSvc, peopleSvc, statsSvc, sessions
}

func TestHandler_GetBooks(t *testing.T) {
	t.Parallel()
	type input struct {
		search string
	}
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockCatalogService, req input)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		input        input
		response     response
		wantErr      bool
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockCatalogService, req input) {
				r.EXPECT().
					ListBooks(gomock.Any(), req.search).
					Return([]model.Book{
						{
							ID:     "f7cdc58f-2caf-4b15-9727-f89dcc629b27",
							Title:  "The Go Programming Language",
							Author: "Alan A. A. Donovan",
							Genre:  "Computing",
							ISBN:   "9780134190440",
							Year:   2015,
						},
					}, http.StatusOK, nil)
			},
			input: input{search: "go"},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `[{"id":"f7cdc58f-2caf-4b15-9727-f89dcc629b27","title":"The Go Programming Language","author":"Alan A. A. Donovan","genre":"Computing","isbn":"9780134190440","year":2015}]`,
			},
			wantErr: false,
		},
		{
			name: "err. upstream unavailable",
			mockBehavior: func(r *service_mocks.MockCatalogService, req input) {
				r.EXPECT().
					ListBooks(gomock.Any(), req.search).
					Return(nil, http.StatusServiceUnavailable, errors.New("connection refused"))
			},
			input: input{search: ""},
			response: response{
				expectedCode: http.StatusServiceUnavailable,
				expectedBody: `{"message":"connection refused"}`,
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			h, catalogSvc, _, _, _, _ := newTestHandler(c)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.GET("/api/v1/books", h.GetBooks)

			r := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/books?search=%s", tt.input.search), http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(catalogSvc, tt.input)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_GetBook(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	h, catalogSvc, _, _, _, _ := newTestHandler(c)

	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	e.GET("/api/v1/books/:bookId", h.GetBook)

	catalogSvc.EXPECT().
		GetBook(gomock.Any(), "b-1").
		Return(model.Book{ID: "b-1", Title: "Dune", Author: "Frank Herbert"}, http.StatusOK, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/books/b-1", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, `{"id":"b-1","title":"Dune","author":"Frank Herbert"}`, strings.Trim(w.Body.String(), "\n"))
}

func TestHandler_GetLoans(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	h, catalogSvc, loanSvc, peopleSvc, _, _ := newTestHandler(c)

	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	e.GET("/api/v1/loan", h.GetLoans)

	start := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	returned := time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC)
	loanSvc.EXPECT().ListLoans(gomock.Any()).Return([]model.Loan{
		{ID: "l-1", BookID: "b-1", PersonID: "p-1", StartDate: start, DurationDays: 14},
		{ID: "l-2", BookID: "b-2", PersonID: "p-1", StartDate: start, DurationDays: 14, ReturnDate: &returned},
	}, http.StatusOK, nil)
	catalogSvc.EXPECT().GetBook(gomock.Any(), "b-1").
		Return(model.Book{ID: "b-1", Title: "Dune", Author: "Frank Herbert"}, http.StatusOK, nil)
	catalogSvc.EXPECT().GetBook(gomock.Any(), "b-2").
		Return(model.Book{ID: "b-2", Title: "Solaris", Author: "Stanislaw Lem"}, http.StatusOK, nil)
	peopleSvc.EXPECT().GetPerson(gomock.Any(), "p-1").
		Return(model.Person{ID: "p-1", Name: "Ada", Email: "ada@example.com", Role: model.RoleReader}, http.StatusOK, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/loan", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp []model.LoanDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	require.Equal(t, "OVERDUE", resp[0].Status)
	require.Equal(t, "Dune", resp[0].Book.Title)
	require.Equal(t, "Ada", resp[0].Person.Name)
	require.Equal(t, "RETURNED", resp[1].Status)
	require.Equal(t, "Solaris", resp[1].Book.Title)
}

func TestHandler_IssueLoan(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
	}
	type mockBehavior func(loanSvc *service_mocks.MockLoanService, catalogSvc *service_mocks.MockCatalogService, peopleSvc *service_mocks.MockPeopleService)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			body: `{"bookId":"b-1","personId":"p-1","durationDays":14}`,
			mockBehavior: func(loanSvc *service_mocks.MockLoanService, catalogSvc *service_mocks.MockCatalogService, peopleSvc *service_mocks.MockPeopleService) {
				loanSvc.EXPECT().
					IssueLoan(gomock.Any(), model.CreateLoanRequest{BookID: "b-1", PersonID: "p-1", DurationDays: 14}).
					Return(model.Loan{ID: "l-1", BookID: "b-1", PersonID: "p-1", StartDate: time.Now().UTC(), DurationDays: 14}, http.StatusCreated, nil)
				catalogSvc.EXPECT().GetBook(gomock.Any(), "b-1").
					Return(model.Book{ID: "b-1", Title: "Dune"}, http.StatusOK, nil)
				peopleSvc.EXPECT().GetPerson(gomock.Any(), "p-1").
					Return(model.Person{ID: "p-1", Name: "Ada"}, http.StatusOK, nil)
			},
			response: response{expectedCode: http.StatusCreated},
		},
		{
			name:         "err. missing duration",
			body:         `{"bookId":"b-1","personId":"p-1"}`,
			mockBehavior: func(loanSvc *service_mocks.MockLoanService, catalogSvc *service_mocks.MockCatalogService, peopleSvc *service_mocks.MockPeopleService) {},
			response:     response{expectedCode: http.StatusBadRequest},
		},
		{
			name: "err. conflict",
			body: `{"bookId":"b-1","personId":"p-1","durationDays":14}`,
			mockBehavior: func(loanSvc *service_mocks.MockLoanService, catalogSvc *service_mocks.MockCatalogService, peopleSvc *service_mocks.MockPeopleService) {
				loanSvc.EXPECT().
					IssueLoan(gomock.Any(), gomock.Any()).
					Return(model.Loan{}, http.StatusConflict, errors.New("book not available"))
			},
			response: response{expectedCode: http.StatusConflict},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			h, catalogSvc, loanSvc, peopleSvc, _, _ := newTestHandler(c)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/api/v1/loan", h.IssueLoan)

			r := httptest.NewRequest(http.MethodPost, "/api/v1/loan", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(loanSvc, catalogSvc, peopleSvc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
		})
	}
}

func TestHandler_Login(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	h, _, _, _, _, sessions := newTestHandler(c)

	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	e.POST("/api/v1/auth/login", h.Login)

	sessions.EXPECT().Login(gomock.Any(), "ada@example.com", "hunter22secret").Return(nil)
	sessions.EXPECT().State().Return(session.State{
		Authenticated: true,
		Identity:      &model.Identity{ID: "u-1", Name: "Ada", Email: "ada@example.com", Role: model.RoleAdmin},
	})

	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"ada@example.com","password":"hunter22secret"}`))
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"authenticated":true`)
	require.Contains(t, w.Body.String(), `"email":"ada@example.com"`)
}

func TestHandler_Login_BadCredentials(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	h, _, _, _, _, sessions := newTestHandler(c)

	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	e.POST("/api/v1/auth/login", h.Login)

	sessions.EXPECT().Login(gomock.Any(), "ada@example.com", "wrongpassword").
		Return(errors.New("invalid credentials"))

	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"ada@example.com","password":"wrongpassword"}`))
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_DeletePerson(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	h, _, _, peopleSvc, _, _ := newTestHandler(c)

	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	e.DELETE("/api/v1/people/:personId", h.DeletePerson)

	peopleSvc.EXPECT().DeletePerson(gomock.Any(), "p-1").Return(http.StatusNoContent, nil)

	r := httptest.NewRequest(http.MethodDelete, "/api/v1/people/p-1", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandler_GetSummary(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	h, _, _, _, statsSvc, _ := newTestHandler(c)

	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	e.GET("/api/v1/summary", h.GetSummary)

	statsSvc.EXPECT().GetSummary(gomock.Any()).
		Return(model.Summary{Books: 12, People: 3, Loans: 5, Overdue: 1}, http.StatusOK, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/summary", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, `{"books":12,"people":3,"loans":5,"overdue":1}`, strings.Trim(w.Body.String(), "\n"))
}
