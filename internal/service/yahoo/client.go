// Package yahoo fetches daily OHLCV bars from the Yahoo Finance chart API.
// Implements the BarSource contract: partial results are normal, only a
// batch where every symbol fails is an error.
package yahoo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"KabuScan/internal/domain/models"
	drepo "KabuScan/internal/domain/repository"
	xhttp "KabuScan/pkg/http"
	xlogger "KabuScan/pkg/logger"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Client calls the chart endpoint symbol by symbol.
type Client struct {
	baseURL string
	http    *xhttp.Client
	logger  *xlogger.Logger
}

func New(baseURL string, timeout time.Duration, logger *xlogger.Logger) drepo.BarSource {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &Client{
		baseURL: baseURL,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
		logger:  logger,
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchBars fetches each symbol's trailing window. Symbols that fail are
// logged and left out of the map.
func (c *Client) FetchBars(ctx context.Context, codes []string, days int) (map[string][]models.Bar, error) {
	out := make(map[string][]models.Bar, len(codes))
	var lastErr error
	failed := 0

	for _, code := range codes {
		bars, err := c.fetchSymbol(ctx, code, days)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			c.logger.Warn("symbol fetch failed", xlogger.String("code", code), xlogger.Error(err))
			lastErr = err
			failed++
			continue
		}
		if len(bars) > 0 {
			out[code] = bars
		}
	}

	if len(codes) > 0 && failed == len(codes) {
		return nil, fmt.Errorf("all %d symbols failed: %w", failed, lastErr)
	}
	return out, nil
}

func (c *Client) fetchSymbol(ctx context.Context, code string, days int) ([]models.Bar, error) {
	var resp chartResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, code),
		QueryParams: map[string][]string{
			"range":    {fmt.Sprintf("%dd", days)},
			"interval": {"1d"},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", code, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart %s: %s", code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := resp.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	// a malformed payload can truncate any of the five arrays independently;
	// rows past the shortest one carry no usable bar
	rows := len(result.Timestamp)
	for _, arr := range [][]*float64{quote.Open, quote.High, quote.Low, quote.Close, quote.Volume} {
		if len(arr) < rows {
			rows = len(arr)
		}
	}

	bars := make([]models.Bar, 0, rows)
	for i := 0; i < rows; i++ {
		ts := result.Timestamp[i]
		// null entries mark half-days and unsynced rows; drop them
		if quote.Open[i] == nil || quote.High[i] == nil ||
			quote.Low[i] == nil || quote.Close[i] == nil || quote.Volume[i] == nil {
			continue
		}
		bars = append(bars, models.Bar{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   *quote.Open[i],
			High:   *quote.High[i],
			Low:    *quote.Low[i],
			Close:  *quote.Close[i],
			Volume: *quote.Volume[i],
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}
