package ferret_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/ferret"
	"github.com/aretw0/ferret/pkg/extract"
)

// stubExtractor serves canned records keyed by URL.
type stubExtractor struct {
	records map[string]extract.Record
}

func (s *stubExtractor) Extract(ctx context.Context, url, instruction string) (extract.Record, error) {
	if rec, ok := s.records[url]; ok {
		return rec, nil
	}
	return extract.Record{"summary": "nothing of note"}, nil
}

func TestNew_RequiresKeyOrExtractor(t *testing.T) {
	if _, err := ferret.New(""); err == nil {
		t.Fatal("expected an error when no API key and no extractor are provided")
	}

	if _, err := ferret.New("", ferret.WithExtractor(&stubExtractor{})); err != nil {
		t.Fatalf("custom extractor should not require an API key: %v", err)
	}
}

func TestAgent_RunReportsWinningPage(t *testing.T) {
	agent, err := ferret.New("", ferret.WithExtractor(&stubExtractor{
		records: map[string]extract.Record{
			"https://docs.example": {"summary": "sprockets are configured in three steps"},
		},
	}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	report, err := agent.Run(context.Background(), ferret.Input{
		URLs:    []string{"https://blog.example", "https://docs.example"},
		Keyword: "sprockets",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !report.Found {
		t.Fatal("expected the keyword to be found")
	}
	if report.SourceURL != "https://docs.example" {
		t.Errorf("expected hit on docs.example, got %q", report.SourceURL)
	}
	if report.URLsTried != 2 {
		t.Errorf("expected 2 pages scraped, got %d", report.URLsTried)
	}
}

func TestAgent_Graph(t *testing.T) {
	agent, err := ferret.New("", ferret.WithExtractor(&stubExtractor{}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	g := agent.Graph()
	if g.Entry() != "initialize_state" {
		t.Errorf("unexpected entry node %q", g.Entry())
	}
	if len(g.Topology()) == 0 {
		t.Error("expected a non-empty topology")
	}
}

func TestRunner_WritesRenderedReport(t *testing.T) {
	agent, err := ferret.New("", ferret.WithExtractor(&stubExtractor{
		records: map[string]extract.Record{
			"https://docs.example": {"summary": "sprockets everywhere"},
		},
	}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var buf bytes.Buffer
	runner := ferret.NewRunner()
	runner.Output = &buf
	runner.Renderer = strings.ToUpper

	report, err := runner.Run(context.Background(), agent, ferret.Input{
		URLs:    "https://docs.example",
		Keyword: "sprockets",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !report.Found {
		t.Fatal("expected the keyword to be found")
	}

	out := buf.String()
	if !strings.Contains(out, "FOUND ON HTTPS://DOCS.EXAMPLE") {
		t.Errorf("renderer was not applied to the report:\n%s", out)
	}
}

func TestRunner_RequiresOutput(t *testing.T) {
	agent, err := ferret.New("", ferret.WithExtractor(&stubExtractor{}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := ferret.NewRunner().Run(context.Background(), agent, ferret.Input{}); err == nil {
		t.Fatal("expected an error when no output writer is set")
	}
}

func TestReport_Markdown(t *testing.T) {
	found := &ferret.Report{
		Found:     true,
		SourceURL: "https://docs.example",
		Keyword:   "sprockets",
		URLsTried: 2,
		Info:      extract.Record{"summary": "sprockets everywhere", "source_url": "https://docs.example"},
	}
	md := found.Markdown()
	for _, want := range []string{
		"**Keyword:** sprockets",
		"**Pages scraped:** 2",
		"## Found on https://docs.example",
		"- **summary:** sprockets everywhere",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}

	missed := &ferret.Report{Keyword: "sprockets", URLsTried: 1, LastError: "status 503"}
	md = missed.Markdown()
	if !strings.Contains(md, "## Not found") {
		t.Errorf("markdown missing not-found section:\n%s", md)
	}
	if !strings.Contains(md, "status 503") {
		t.Errorf("markdown missing last error:\n%s", md)
	}
}
