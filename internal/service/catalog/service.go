package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

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

func (s *Service) ListBooks(ctx context.Context, search string) ([]model.Book, int, error) {
	u := fmt.Sprintf("%s/api/v1/books", s.cfg.BaseURL)
	if search != "" {
		u += "?search=" + url.QueryEscape(search)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
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
	var books []model.Book
	if err := json.NewDecoder(resp.Body).Decode(&books); err != nil {
		return nil, http.StatusBadRequest, err
	}
	return books, resp.StatusCode, nil
}

func (s *Service) GetBook(ctx context.Context, bookID string) (model.Book, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/v1/books/%s", s.cfg.BaseURL, bookID), http.NoBody)
	if err != nil {
		return model.Book{}, http.StatusBadRequest, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return model.Book{}, http.StatusBadRequest, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Book{}, resp.StatusCode, nil
	}
	var book model.Book
	if err := json.NewDecoder(resp.Body).Decode(&book); err != nil {
		return model.Book{}, http.StatusBadRequest, err
	}
	return book, resp.StatusCode, nil
}

func (s *Service) CreateBook(ctx context.Context, request model.CreateBookRequest) (model.Book, int, error) {
	return s.send(ctx, http.MethodPost, fmt.Sprintf("%s/api/v1/books", s.cfg.BaseURL), request)
}

func (s *Service) UpdateBook(ctx context.Context, bookID string, request model.CreateBookRequest) (model.Book, int, error) {
	return s.send(ctx, http.MethodPut, fmt.Sprintf("%s/api/v1/books/%s", s.cfg.BaseURL, bookID), request)
}

func (s *Service) DeleteBook(ctx context.Context, bookID string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/api/v1/books/%s", s.cfg.BaseURL, bookID), http.NoBody)
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

func (s *Service) send(ctx context.Context, method, url string, request model.CreateBookRequest) (model.Book, int, error) {
	b := bytes.NewBuffer(nil)
	if err := json.NewEncoder(b).Encode(request); err != nil {
		return model.Book{}, http.StatusBadRequest, err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, b)
	if err != nil {
		return model.Book{}, http.StatusBadRequest, err
	}
	req.Header.Set("Content-Type", echo.MIMEApplicationJSONCharsetUTF8)
	resp, err := s.client.Do(req)
	if err != nil {
		return model.Book{}, http.StatusBadRequest, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return model.Book{}, resp.StatusCode, nil
	}
	var book model.Book
	if err := json.NewDecoder(resp.Body).Decode(&book); err != nil {
		return model.Book{}, http.StatusBadRequest, err
	}
	return book, resp.StatusCode, nil
}
