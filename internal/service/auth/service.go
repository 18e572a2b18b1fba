package auth

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

// Service talks to the remote auth collaborator. Credentials never touch
// the bearer transport state: the token appears only in the login response.
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

func (s *Service) Login(ctx context.Context, request model.LoginRequest) (model.AuthResponse, int, error) {
	b := bytes.NewBuffer(nil)
	if err := json.NewEncoder(b).Encode(request); err != nil {
		return model.AuthResponse{}, http.StatusBadRequest, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/api/v1/auth/login", s.cfg.BaseURL), b)
	if err != nil {
		return model.AuthResponse{}, http.StatusBadRequest, err
	}
	req.Header.Set("Content-Type", echo.MIMEApplicationJSONCharsetUTF8)
	resp, err := s.client.Do(req)
	if err != nil {
		return model.AuthResponse{}, http.StatusBadRequest, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.AuthResponse{}, resp.StatusCode, nil
	}
	var auth model.AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return model.AuthResponse{}, http.StatusBadRequest, err
	}
	return auth, resp.StatusCode, nil
}

func (s *Service) Register(ctx context.Context, request model.RegisterRequest) (int, error) {
	return s.register(ctx, fmt.Sprintf("%s/api/v1/auth/register", s.cfg.BaseURL), request)
}

func (s *Service) RegisterLibrarian(ctx context.Context, request model.RegisterRequest) (int, error) {
	return s.register(ctx, fmt.Sprintf("%s/api/v1/auth/register/librarian", s.cfg.BaseURL), request)
}

func (s *Service) register(ctx context.Context, url string, request model.RegisterRequest) (int, error) {
	b := bytes.NewBuffer(nil)
	if err := json.NewEncoder(b).Encode(request); err != nil {
		return http.StatusBadRequest, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, b)
	if err != nil {
		return http.StatusBadRequest, err
	}
	req.Header.Set("Content-Type", echo.MIMEApplicationJSONCharsetUTF8)
	resp, err := s.client.Do(req)
	if err != nil {
		return http.StatusBadRequest, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
