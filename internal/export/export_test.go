package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/ganttr/internal/gantt"
)

func sampleChart(t *testing.T) *gantt.Chart {
	t.Helper()
	opts := gantt.DefaultOptions()
	opts.DatePadding = "0d"
	opts.Logger = log.New(io.Discard, "", 0)
	opts.Ignore = gantt.IgnoreRule{Weekends: true}
	c, err := gantt.New([]gantt.Task{
		{ID: "a", Name: "Plan, draft", Start: "2024-01-01", End: "2024-01-05", Progress: 50},
		{ID: "b", Name: "Build", Start: "2024-01-05", Duration: "1w", Dependencies: []string{"a"}},
		{ID: "bad", Name: "Broken", Start: "2024-01-10", End: "2024-01-02"},
	}, opts)
	if err != nil {
		t.Fatalf("gantt.New: %v", err)
	}
	return c
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	c := sampleChart(t)
	path := filepath.Join(t.TempDir(), "out.csv")

	if err := ToCSV(c, path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}

	// header + 2 valid tasks
	if len(records) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(records))
	}
	if records[0][0] != "ID" || records[0][4] != "Days" {
		t.Fatalf("unexpected header: %v", records[0])
	}

	a := records[1]
	if a[0] != "a" || a[1] != "Plan, draft" {
		t.Fatalf("unexpected row: %v", a)
	}
	if !strings.HasPrefix(a[2], "2024-01-01T00:00:00") || !strings.HasPrefix(a[3], "2024-01-05T00:00:00") {
		t.Fatalf("dates = %s %s", a[2], a[3])
	}
	if a[4] != "4" || a[5] != "4" || a[6] != "0" || a[7] != "50" {
		t.Fatalf("durations = %v", a[4:8])
	}
	if a[9] != "0" || a[10] != "180" {
		t.Fatalf("geometry = %s %s", a[9], a[10])
	}

	b := records[2]
	if b[8] != "a" || b[4] != "7" || b[5] != "5" || b[6] != "2" {
		t.Fatalf("row b = %v", b)
	}
}

func TestToCSVInvalidPath(t *testing.T) {
	c := sampleChart(t)
	if err := ToCSV(c, "/nonexistent/dir/out.csv"); err == nil {
		t.Fatal("expected error for invalid path")
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	c := sampleChart(t)
	path := filepath.Join(t.TempDir(), "out.json")

	if err := ToJSON(c, path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if result.Count != 2 || len(result.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d/%d", result.Count, len(result.Tasks))
	}
	if result.ViewMode != "Day" {
		t.Fatalf("view mode = %q", result.ViewMode)
	}
	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("invalid exported_at: %v", err)
	}

	b := result.Tasks[1]
	if b.ID != "b" || b.WorkingDays != 5 || b.IgnoredDays != 2 {
		t.Fatalf("task b = %+v", b)
	}
	if b.Bar == nil || b.Bar.X != 180 || b.Bar.Width != 315 {
		t.Fatalf("bar b = %+v", b.Bar)
	}
	if len(result.Invalid) != 1 || result.Invalid[0].ID != "bad" {
		t.Fatalf("invalid = %+v", result.Invalid)
	}
}

func TestToJSONInvalidPath(t *testing.T) {
	c := sampleChart(t)
	if err := ToJSON(c, "/nonexistent/dir/out.json"); err == nil {
		t.Fatal("expected error for invalid path")
	}
}

// ============================================================
// SVG
// ============================================================

func TestToSVG(t *testing.T) {
	c := sampleChart(t)
	path := filepath.Join(t.TempDir(), "out.svg")

	if err := ToSVG(c, path); err != nil {
		t.Fatalf("ToSVG: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"<svg", `data-id="a"`, `data-id="b"`, `data-from="a"`, "Plan, draft"} {
		if !strings.Contains(out, want) {
			t.Errorf("svg missing %q", want)
		}
	}
	if strings.Contains(out, `data-id="bad"`) {
		t.Error("invalid task rendered")
	}
}
