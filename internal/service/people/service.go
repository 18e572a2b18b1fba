package people

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

func (s *Service) ListPeople(ctx context.Context) ([]model.Person, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/v1/people", s.cfg.BaseURL), http.NoBody)
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
	var items []model.Person
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, http.StatusBadRequest, err
	}
	return items, resp.StatusCode, nil
}

func (s *Service) GetPerson(ctx context.Context, personID string) (model.Person, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/v1/people/%s", s.cfg.BaseURL, personID), http.NoBody)
	if err != nil {
		return model.Person{}, http.StatusBadRequest, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return model.Person{}, http.StatusBadRequest, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Person{}, resp.StatusCode, nil
	}
	var person model.Person
	if err := json.NewDecoder(resp.Body).Decode(&person); err != nil {
		return model.Person{}, http.StatusBadRequest, err
	}
	return person, resp.StatusCode, nil
}

func (s *Service) UpdatePerson(ctx context.Context, personID string, request model.UpdatePersonRequest) (model.Person, int, error) {
	b := bytes.NewBuffer(nil)
	if err := json.NewEncoder(b).Encode(request); err != nil {
		return model.Person{}, http.StatusBadRequest, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, fmt.Sprintf("%s/api/v1/people/%s", s.cfg.BaseURL, personID), b)
	if err != nil {
		return model.Person{}, http.StatusBadRequest, err
	}
	req.Header.Set("Content-Type", echo.MIMEApplicationJSONCharsetUTF8)
	resp, err := s.client.Do(req)
	if err != nil {
		return model.Person{}, http.StatusBadRequest, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Person{}, resp.StatusCode, nil
	}
	var person model.Person
	if err := json.NewDecoder(resp.Body).Decode(&person); err != nil {
		return model.Person{}, http.StatusBadRequest, err
	}
	return person, resp.StatusCode, nil
}

func (s *Service) DeletePerson(ctx context.Context, personID string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/api/v1/people/%s", s.cfg.BaseURL, personID), http.NoBody)
	if err != nil {
		return http.StatusBadRequest, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return http.StatusBadRequest, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
