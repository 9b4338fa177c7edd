package universe

import (
	"context"
	"errors"
	"strings"
	"testing"

	"KabuScan/internal/domain/models"
)

func TestParseCSV(t *testing.T) {
	src := "segment,sector,code,name\n" +
		"prime,3650,7203.T,Toyota Motor\n" +
		"prime,-,1570.T,Nikkei Leveraged ETF\n" +
		"standard,3250,9984.T,SoftBank Group\n"
	instruments, err := ParseCSV(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(instruments) != 3 {
		t.Fatalf("parsed %d rows, want 3", len(instruments))
	}
	if instruments[0].Code != "7203.T" || instruments[0].Segment != "prime" {
		t.Fatalf("unexpected first row %+v", instruments[0])
	}
}

func TestParseCSVJPXHeaders(t *testing.T) {
	src := "市場・商品区分,33業種コード,コード,銘柄名\n" +
		"プライム,3650,7203,トヨタ自動車\n"
	instruments, err := ParseCSV(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(instruments) != 1 || instruments[0].Code != "7203" {
		t.Fatalf("unexpected rows %+v", instruments)
	}
}

func TestParseCSVMissingColumnsIsFatal(t *testing.T) {
	src := "segment,code\nprime,7203.T\n"
	_, err := ParseCSV(strings.NewReader(src))
	if err == nil {
		t.Fatalf("expected error for missing columns")
	}
	var malformed *MalformedSourceError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedSourceError, got %v", err)
	}
	missing := strings.Join(malformed.Missing, ",")
	if !strings.Contains(missing, "name") || !strings.Contains(missing, "sector") {
		t.Fatalf("missing columns %q must name name and sector", missing)
	}
}

func TestFilterDropsETFsAndOtherSegments(t *testing.T) {
	in := []models.Instrument{
		{Code: "7203.T", Sector: "3650", Segment: "prime"},
		{Code: "1570.T", Sector: models.SectorETF, Segment: "prime"},
		{Code: "9984.T", Sector: "3250", Segment: "standard"},
	}
	out := Filter(in, []string{"prime"})
	if len(out) != 1 || out[0].Code != "7203.T" {
		t.Fatalf("unexpected filter output %+v", out)
	}

	all := Filter(in, nil)
	if len(all) != 2 {
		t.Fatalf("no segment filter must keep both equities, got %d", len(all))
	}
}

func TestStaticSourceCopies(t *testing.T) {
	in := []models.Instrument{{Code: "7203.T", Sector: "3650"}}
	src := NewStaticSource(in)
	out, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	out[0].Code = "mutated"
	again, _ := src.Load(context.Background())
	if again[0].Code != "7203.T" {
		t.Fatalf("source must hand out copies, got %+v", again[0])
	}
}
