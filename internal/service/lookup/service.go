package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/libradesk/libradesk/internal/config"
	"github.com/libradesk/libradesk/internal/model"
)

// Service queries the external bibliographic collaborator by identifier.
// It deliberately carries its own plain http.Client: the session bearer
// token must never leave the library API.
type Service struct {
	log    *zap.Logger
	client *http.Client
	cfg    config.LookupAPI
}

func NewService(log *zap.Logger, cfg config.LookupAPI) *Service {
	return &Service{
		log:    log,
		client: &http.Client{Timeout: time.Minute},
		cfg:    cfg,
	}
}

type record struct {
	Title   string `json:"title"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
	PublishDate string `json:"publish_date"`
}

// Lookup returns zero or one record for the identifier; a miss is not an
// error, nothing downstream depends on the result.
func (s *Service) Lookup(ctx context.Context, identifier string) (*model.BibRecord, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/isbn/%s.json", s.cfg.BaseURL, identifier), http.NoBody)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, resp.StatusCode, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}
	var rec record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, http.StatusBadRequest, err
	}

	out := &model.BibRecord{
		Identifier: identifier,
		Title:      rec.Title,
		Year:       publishYear(rec.PublishDate),
	}
	for _, a := range rec.Authors {
		out.Authors = append(out.Authors, a.Name)
	}
	return out, resp.StatusCode, nil
}

func publishYear(date string) int {
	fields := strings.Fields(date)
	if len(fields) == 0 {
		return 0
	}
	year, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0
	}
	return year
}
