package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"job-connect-backend/internal/logging"
)

// ErrDataFile is returned when the data file cannot be read or is not valid JSON.
var ErrDataFile = errors.New("could not load data file")

func newHTTPClient(ctx context.Context, proxy string) *http.Client {
	var transport http.RoundTripper = &http.Transport{}
	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			log := logging.GetFromContext(ctx)
			log.Warn().Err(err).Str("proxy", proxy).Msg("invalid proxy URL, importing without a proxy")
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}
	return &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}
}

// Source describes where data is read from.
func (s *Service) Source() string {
	if s.cfg.URL != "" {
		return s.cfg.URL
	}
	return s.cfg.DataFile
}

// ReadDataFile reads and decodes the configured data file, or the document
// at the configured URL.
func (s *Service) ReadDataFile(ctx context.Context) (any, error) {
	var (
		body []byte
		err  error
	)
	if s.cfg.URL != "" {
		body, err = s.fetch(ctx)
	} else {
		body, err = os.ReadFile(s.cfg.DataFile)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataFile, err)
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON in %s: %w", ErrDataFile, s.Source(), err)
	}
	return data, nil
}

func (s *Service) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range s.cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
