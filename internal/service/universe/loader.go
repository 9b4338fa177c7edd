// Package universe loads and filters the instrument list a scan runs over.
// Sources are tabular (JPX-style listing files): market segment, sector
// code, ticker code, display name. Filtering to equities in the wanted
// segments happens here, upstream of the scan core.
package universe

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"KabuScan/internal/domain/models"
)

// Required logical columns. Header matching accepts the English names and
// the JPX listing-file headers.
var columnAliases = map[string][]string{
	"code":    {"code", "ticker", "コード"},
	"name":    {"name", "銘柄名"},
	"sector":  {"sector", "sector_code", "33業種コード"},
	"segment": {"segment", "market", "市場・商品区分"},
}

// MalformedSourceError names the columns a universe file is missing. This is
// fatal for a scan: without a valid universe there is nothing to run over.
type MalformedSourceError struct {
	Missing []string
}

func (e *MalformedSourceError) Error() string {
	return fmt.Sprintf("universe source missing required columns: %s", strings.Join(e.Missing, ", "))
}

// ParseCSV reads a tabular universe from r. The first row is the header.
func ParseCSV(r io.Reader) ([]models.Instrument, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read universe header: %w", err)
	}

	idx, missing := mapColumns(header)
	if len(missing) > 0 {
		return nil, &MalformedSourceError{Missing: missing}
	}

	var out []models.Instrument
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read universe row: %w", err)
		}
		inst := models.Instrument{
			Code:    strings.TrimSpace(row[idx["code"]]),
			Name:    strings.TrimSpace(row[idx["name"]]),
			Sector:  strings.TrimSpace(row[idx["sector"]]),
			Segment: strings.TrimSpace(row[idx["segment"]]),
		}
		if inst.Code == "" {
			continue
		}
		out = append(out, inst)
	}
	return out, nil
}

func mapColumns(header []string) (map[string]int, []string) {
	idx := make(map[string]int, len(columnAliases))
	var missing []string
	for logical, aliases := range columnAliases {
		found := -1
		for i, h := range header {
			h = strings.TrimSpace(strings.ToLower(h))
			for _, a := range aliases {
				if h == strings.ToLower(a) {
					found = i
					break
				}
			}
			if found >= 0 {
				break
			}
		}
		if found < 0 {
			missing = append(missing, logical)
		} else {
			idx[logical] = found
		}
	}
	return idx, missing
}

// Filter keeps equities in the wanted segments. Empty segments keeps all
// segments; ETFs and REITs (sentinel sector) always drop.
func Filter(instruments []models.Instrument, segments []string) []models.Instrument {
	want := make(map[string]bool, len(segments))
	for _, s := range segments {
		want[strings.ToLower(s)] = true
	}
	kept := make([]models.Instrument, 0, len(instruments))
	for _, inst := range instruments {
		if !inst.IsEquity() {
			continue
		}
		if len(want) > 0 && !want[strings.ToLower(inst.Segment)] {
			continue
		}
		kept = append(kept, inst)
	}
	return kept
}

// FileSource loads the universe from a CSV file on disk.
type FileSource struct {
	Path     string
	Segments []string
}

func NewFileSource(path string, segments []string) *FileSource {
	return &FileSource{Path: path, Segments: segments}
}

func (s *FileSource) Load(_ context.Context) ([]models.Instrument, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open universe file: %w", err)
	}
	defer f.Close()

	instruments, err := ParseCSV(f)
	if err != nil {
		return nil, err
	}
	return Filter(instruments, s.Segments), nil
}

// StaticSource serves a fixed instrument list, used when no file is
// configured.
type StaticSource struct {
	Instruments []models.Instrument
}

func NewStaticSource(instruments []models.Instrument) *StaticSource {
	return &StaticSource{Instruments: instruments}
}

func (s *StaticSource) Load(_ context.Context) ([]models.Instrument, error) {
	out := make([]models.Instrument, len(s.Instruments))
	copy(out, s.Instruments)
	return out, nil
}
