package loans

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/libradesk/libradesk/internal/config"
	"github.com/libradesk/libradesk/internal/model"
)

type Service struct {
	log    *zap.Logger
	client *http.Client
	cfg    config.LibraryAPI
}

func NewService(log *zap.Logger, client *http.Client, cfg config.LibraryAPI) *Service {
	return &Service{
		log:    log,
		client: client,
		cfg:    cfg,
	}
}

func (s *Service) ListLoans(ctx context.Context) ([]model.Loan, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/v1/loan", s.cfg.BaseURL), http.NoBody)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}
	var items []model.Loan
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, http.StatusBadRequest, err
	}
	return items, resp.StatusCode, nil
}

func (s *Service) IssueLoan(ctx context.Context, request model.CreateLoanRequest) (model.Loan, int, error) {
	return s.send(ctx, http.MethodPost, fmt.Sprintf("%s/api/v1/loan", s.cfg.BaseURL), request)
}

// ReturnLoan records the return; the server sets returnDate, the sole
// source of truth for "returned".
func (s *Service) ReturnLoan(ctx context.Context, loanID string, request model.ReturnLoanRequest) (model.Loan, int, error) {
	return s.send(ctx, http.MethodPatch, fmt.Sprintf("%s/api/v1/loan/%s/return", s.cfg.BaseURL, loanID), request)
}

// ExtendLoan replaces durationDays; the due date is always recomputed from
// it, so an overdue loan flips back to in-progress with no extra step.
func (s *Service) ExtendLoan(ctx context.Context, loanID string, request model.ExtendLoanRequest) (model.Loan, int, error) {
	return s.send(ctx, http.MethodPatch, fmt.Sprintf("%s/api/v1/loan/%s/extend", s.cfg.BaseURL, loanID), request)
}

func (s *Service) send(ctx context.Context, method, url string, request any) (model.Loan, int, error) {
	b := bytes.NewBuffer(nil)
	if err := json.NewEncoder(b).Encode(request); err != nil {
		return model.Loan{}, http.StatusBadRequest, err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, b)
	if err != nil {
		return model.Loan{}, http.StatusBadRequest, err
	}
	req.Header.Set("Content-Type", echo.MIMEApplicationJSONCharsetUTF8)
	resp, err := s.client.Do(req)
	if err != nil {
		return model.Loan{}, http.StatusBadRequest, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return model.Loan{}, resp.StatusCode, nil
	}
	var ln model.Loan
	if err := json.NewDecoder(resp.Body).Decode(&ln); err != nil {
		return model.Loan{}, http.StatusBadRequest, err
	}
	return ln, resp.StatusCode, nil
}
