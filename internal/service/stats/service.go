package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

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

func (s *Service) GetSummary(ctx context.Context) (model.Summary, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/v1/summary", s.cfg.BaseURL), http.NoBody)
	if err != nil {
		return model.Summary{}, http.StatusBadRequest, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return model.Summary{}, http.StatusBadRequest, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Summary{}, resp.StatusCode, nil
	}
	var sum model.Summary
	if err := json.NewDecoder(resp.Body).Decode(&sum); err != nil {
		return model.Summary{}, http.StatusBadRequest, err
	}
	return sum, resp.StatusCode, nil
}
