package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"KabuScan/internal/domain/models"
	xch "KabuScan/pkg/clickhouse"
)

// ClickHouseBarSource reads daily bars from a ClickHouse table populated by
// an external ingestion job. Alternative to the Yahoo chart client for
// deployments with a local bar store.
type ClickHouseBarSource struct {
	client *xch.Client
	table  string
}

func NewClickHouseBarSource(client *xch.Client, table string) *ClickHouseBarSource {
	if table == "" {
		table = "daily_bars"
	}
	return &ClickHouseBarSource{client: client, table: table}
}

// FetchBars loads the trailing window of daily bars for the given codes.
// Codes with no rows are absent from the result; only a query failure
// returns an error.
func (s *ClickHouseBarSource) FetchBars(ctx context.Context, codes []string, days int) (map[string][]models.Bar, error) {
	if len(codes) == 0 {
		return map[string][]models.Bar{}, nil
	}

	since := time.Now().AddDate(0, 0, -days)

	placeholders := make([]string, len(codes))
	args := make([]interface{}, 0, len(codes)+1)
	for i, code := range codes {
		placeholders[i] = "?"
		args = append(args, code)
	}
	args = append(args, since)

	query := fmt.Sprintf(`
		SELECT code, date, open, high, low, close, volume
		FROM %s
		WHERE code IN (%s) AND date >= ?
		ORDER BY code, date ASC`,
		s.table, strings.Join(placeholders, ","))

	rows, err := s.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query daily bars: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.Bar, len(codes))
	for rows.Next() {
		var code string
		var bar models.Bar
		if err := rows.Scan(&code, &bar.Date, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, fmt.Errorf("scan bar row: %w", err)
		}
		out[code] = append(out[code], bar)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bar rows: %w", err)
	}
	return out, nil
}
