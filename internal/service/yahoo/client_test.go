package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func chartJSON(timestamps []int64, closes []string) string {
	ts := make([]string, len(timestamps))
	for i, t := range timestamps {
		ts[i] = fmt.Sprintf("%d", t)
	}
	quotes := strings.Join(closes, ",")
	return fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%s],"indicators":{"quote":[{
		"open":[%s],"high":[%s],"low":[%s],"close":[%s],"volume":[%s]}]}}],"error":null}}`,
		strings.Join(ts, ","), quotes, quotes, quotes, quotes, quotes)
}

func TestFetchBarsParsesAndSorts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v8/finance/chart/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("interval"); got != "1d" {
			t.Errorf("interval = %s, want 1d", got)
		}
		// second timestamp deliberately older than the first
		fmt.Fprint(w, chartJSON([]int64{1700086400, 1700000000}, []string{"100", "99"}))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, nil)
	got, err := c.FetchBars(context.Background(), []string{"7203.T"}, 30)
	if err != nil {
		t.Fatalf("FetchBars: %v", err)
	}
	bars := got["7203.T"]
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
	if !bars[0].Date.Before(bars[1].Date) {
		t.Errorf("bars not sorted ascending: %v then %v", bars[0].Date, bars[1].Date)
	}
}

func TestFetchBarsDropsNullRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON([]int64{1700000000, 1700086400, 1700172800}, []string{"100", "null", "102"}))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, nil)
	got, err := c.FetchBars(context.Background(), []string{"7203.T"}, 30)
	if err != nil {
		t.Fatalf("FetchBars: %v", err)
	}
	if len(got["7203.T"]) != 2 {
		t.Errorf("got %d bars, want 2 (null row dropped)", len(got["7203.T"]))
	}
}

func TestFetchBarsRaggedArraysDoNotPanic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// three timestamps but the high/low/close/volume arrays hold two rows
		fmt.Fprint(w, `{"chart":{"result":[{"timestamp":[1700000000,1700086400,1700172800],
			"indicators":{"quote":[{"open":[100,101,102],"high":[100,101],"low":[100,101],
			"close":[100,101],"volume":[1000,1000]}]}}],"error":null}}`)
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, nil)
	got, err := c.FetchBars(context.Background(), []string{"7203.T"}, 30)
	if err != nil {
		t.Fatalf("FetchBars: %v", err)
	}
	if len(got["7203.T"]) != 2 {
		t.Errorf("got %d bars, want the 2 rows every array covers", len(got["7203.T"]))
	}
}

func TestFetchBarsPartialFailureKeepsOthers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "BAD.T") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, chartJSON([]int64{1700000000}, []string{"100"}))
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, nil)
	got, err := c.FetchBars(context.Background(), []string{"7203.T", "BAD.T"}, 30)
	if err != nil {
		t.Fatalf("FetchBars: %v", err)
	}
	if _, ok := got["7203.T"]; !ok {
		t.Errorf("healthy symbol missing from result")
	}
	if _, ok := got["BAD.T"]; ok {
		t.Errorf("failed symbol should be absent")
	}
}

func TestFetchBarsAllFailedIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second, nil)
	if _, err := c.FetchBars(context.Background(), []string{"A.T", "B.T"}, 30); err == nil {
		t.Fatal("want error when every symbol fails")
	}
}
