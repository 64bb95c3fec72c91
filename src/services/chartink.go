package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/anvesh2019/dhan-trading/src/models"
)

const chartinkProcessURL = "https://chartink.com/screener/process"

// ChartinkClient runs saved screener scans against chartink.com. The screener
// has no API token; authentication rides on a browser cookie blob plus the CSRF
// token extracted from it.
type ChartinkClient struct {
	cookie    string
	csrfToken string
}

func NewChartinkClient(cookie, csrfToken string) *ChartinkClient {
	return &ChartinkClient{
		cookie:    cookie,
		csrfToken: csrfToken,
	}
}

type chartinkResponseDTO struct {
	ScanError string `json:"scan_error"`
	Data      []struct {
		NseCode string `json:"nsecode"`
	} `json:"data"`
}

func (c *ChartinkClient) FetchSignals(ctx context.Context, side models.TransactionType, scanClause string) ([]models.ScreenerSignal, error) {
	if scanClause == "" {
		return nil, nil
	}

	client := http.Client{
		Timeout: 12 * time.Second,
	}

	payload, err := json.Marshal(map[string]string{"scan_clause": scanClause})
	if err != nil {
		return nil, fmt.Errorf("ChartinkClient:FetchSignals(): failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, chartinkProcessURL, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("ChartinkClient:FetchSignals(): failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", "https://chartink.com/")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	if token := c.resolveCSRFToken(); token != "" {
		req.Header.Set("X-XSRF-TOKEN", token)
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ChartinkClient:FetchSignals(): query failed: %w", err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ChartinkClient:FetchSignals(): invalid status code: %s", res.Status)
	}

	responseBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("ChartinkClient:FetchSignals(): failed to read response body: %w", err)
	}

	var dto chartinkResponseDTO
	if err := json.Unmarshal(responseBytes, &dto); err != nil {
		return nil, fmt.Errorf("ChartinkClient:FetchSignals(): failed to parse response: %w", err)
	}

	if dto.ScanError != "" {
		return nil, fmt.Errorf("ChartinkClient:FetchSignals(): scan error: %s", dto.ScanError)
	}

	signals := make([]models.ScreenerSignal, 0, len(dto.Data))
	for _, row := range dto.Data {
		symbol := strings.ToUpper(strings.TrimSpace(row.NseCode))
		if symbol == "" {
			continue
		}

		signals = append(signals, models.ScreenerSignal{
			Symbol: symbol,
			Side:   side,
		})
	}

	log.Debugf("chartink %s scan returned %d signals", side, len(signals))

	return signals, nil
}

// resolveCSRFToken prefers the explicitly configured token and falls back to
// the XSRF-TOKEN cookie value.
func (c *ChartinkClient) resolveCSRFToken() string {
	token := c.csrfToken

	if token == "" {
		for _, part := range strings.Split(c.cookie, ";") {
			if name, value, found := strings.Cut(strings.TrimSpace(part), "="); found && name == "XSRF-TOKEN" {
				token = value
				break
			}
		}
	}

	if unescaped, err := url.QueryUnescape(token); err == nil {
		return unescaped
	}

	return token
}
