package loans_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/libradesk/libradesk/internal/config"
	"github.com/libradesk/libradesk/internal/model"
	"github.com/libradesk/libradesk/internal/service/loans"
)

func TestService_ListLoans(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	want := []model.Loan{
		{
			ID:           "loan-1",
			BookID:       "book-1",
			PersonID:     "person-1",
			StartDate:    start,
			DurationDays: 14,
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/v1/loan", r.URL.Path)
		require.NoError(t, json.NewEncoder(w).Encode(want))
	}))
	defer srv.Close()

	svc := loans.NewService(zap.NewExample(), srv.Client(), config.LibraryAPI{BaseURL: srv.URL})

	got, code, err := svc.ListLoans(context.Background())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, want, got)
}

func TestService_IssueLoan(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/loan", r.URL.Path)

		var req model.CreateLoanRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "book-1", req.BookID)
		require.Equal(t, 14, req.DurationDays)

		w.WriteHeader(http.StatusCreated)
		require.NoError(t, json.NewEncoder(w).Encode(model.Loan{
			ID:           "loan-7",
			BookID:       req.BookID,
			PersonID:     req.PersonID,
			StartDate:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			DurationDays: req.DurationDays,
		}))
	}))
	defer srv.Close()

	svc := loans.NewService(zap.NewExample(), srv.Client(), config.LibraryAPI{BaseURL: srv.URL})

	got, code, err := svc.IssueLoan(context.Background(), model.CreateLoanRequest{
		BookID:       "book-1",
		PersonID:     "person-1",
		DurationDays: 14,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, "loan-7", got.ID)
	require.Nil(t, got.ReturnDate)
}

func TestService_ExtendLoan(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/api/v1/loan/loan-7/extend", r.URL.Path)

		var req model.ExtendLoanRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NoError(t, json.NewEncoder(w).Encode(model.Loan{ID: "loan-7", DurationDays: req.DurationDays}))
	}))
	defer srv.Close()

	svc := loans.NewService(zap.NewExample(), srv.Client(), config.LibraryAPI{BaseURL: srv.URL})

	got, code, err := svc.ExtendLoan(context.Background(), "loan-7", model.ExtendLoanRequest{DurationDays: 28})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 28, got.DurationDays)
}

func TestService_ReturnLoan_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	svc := loans.NewService(zap.NewExample(), srv.Client(), config.LibraryAPI{BaseURL: srv.URL})

	_, code, err := svc.ReturnLoan(context.Background(), "missing", model.ReturnLoanRequest{})
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, code)
}
