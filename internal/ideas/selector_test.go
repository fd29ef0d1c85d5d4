package ideas

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hochfrequenz/app-forge/internal/catalog"
	"github.com/hochfrequenz/app-forge/internal/domain"
	"github.com/hochfrequenz/app-forge/internal/llm"
	"github.com/hochfrequenz/app-forge/internal/prompts"
)

// scriptedProvider returns canned responses in order, repeating the
// last one once the script is exhausted.
type scriptedProvider struct {
	responses []string
	errs      []error
	calls     int
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Generate(_ context.Context, _ llm.Request) (string, error) {
	i := p.calls
	p.calls++
	if i >= len(p.responses) {
		i = len(p.responses) - 1
	}
	if i < len(p.errs) && p.errs[i] != nil {
		return "", p.errs[i]
	}
	return p.responses[i], nil
}

func (p *scriptedProvider) SubmitBatch(context.Context, []llm.BatchItem) (string, error) {
	return "", llm.ErrBatchUnsupported
}

func (p *scriptedProvider) PollBatch(context.Context, string) (llm.BatchStatus, error) {
	return llm.BatchFailed, llm.ErrBatchUnsupported
}

func (p *scriptedProvider) FetchBatchResults(context.Context, string) (map[string]llm.Outcome, error) {
	return nil, llm.ErrBatchUnsupported
}

func testCatalog(t *testing.T, names ...string) *catalog.Catalog {
	t.Helper()
	cat := catalog.Open(filepath.Join(t.TempDir(), "catalog.json"), zerolog.Nop())
	for _, name := range names {
		if err := cat.Register(domain.Entry{Name: name, Category: "rag_on_aws"}); err != nil {
			t.Fatalf("seed catalog: %v", err)
		}
	}
	return cat
}

const validIdeaJSON = `{
	"name": "Invoice Extraction Pipeline",
	"description": "Extracts structured data from invoices.",
	"features": ["OCR", "validation"],
	"services": ["Textract", "S3"],
	"use_case": "Accounts payable automation",
	"difficulty": "intermediate"
}`

func TestGenerateReturnsParsedIdea(t *testing.T) {
	provider := &scriptedProvider{responses: []string{validIdeaJSON}}
	sel := New(provider, testCatalog(t), prompts.NewLoader(), zerolog.Nop())

	idea := sel.Generate(context.Background(), "rag_on_aws", []string{"Textract"})
	if idea.Name != "Invoice Extraction Pipeline" {
		t.Errorf("name = %q", idea.Name)
	}
	if provider.calls != 1 {
		t.Errorf("calls = %d, want 1", provider.calls)
	}
}

func TestGenerateRetriesOnCollision(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"name":"Invoice Extraction Pipeline","description":"d","features":["f"],"services":["s"],"use_case":"u"}`,
		`{"name":"Fresh Idea App","description":"d","features":["f"],"services":["s"],"use_case":"u"}`,
	}}
	sel := New(provider, testCatalog(t, "Invoice Extraction Pipeline"), prompts.NewLoader(), zerolog.Nop())

	idea := sel.Generate(context.Background(), "rag_on_aws", nil)
	if idea.Name != "Fresh Idea App" {
		t.Errorf("name = %q, want retry result", idea.Name)
	}
	if provider.calls != 2 {
		t.Errorf("calls = %d, want 2", provider.calls)
	}
}

func TestGenerateFallsBackAfterExhaustedRetries(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"not json at all"}}
	sel := New(provider, testCatalog(t), prompts.NewLoader(), zerolog.Nop())

	idea := sel.Generate(context.Background(), "rag_on_aws", []string{"Bedrock", "OpenSearch"})
	if provider.calls != defaultMaxAttempts {
		t.Errorf("calls = %d, want %d", provider.calls, defaultMaxAttempts)
	}
	if idea.Name != "AWS Legal Document RAG Assistant" {
		t.Errorf("fallback name = %q", idea.Name)
	}
	if len(idea.Services) != 2 || idea.Services[0] != "Bedrock" {
		t.Errorf("fallback services = %v, want requested services", idea.Services)
	}
	if len(idea.Frameworks) == 0 {
		t.Error("fallback should carry default frameworks")
	}
}

func TestGenerateFallbackForUnknownCategory(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"{}"}}
	sel := New(provider, testCatalog(t), prompts.NewLoader(), zerolog.Nop())

	idea := sel.Generate(context.Background(), "no_such_category", nil)
	if idea.Name == "" {
		t.Error("unknown category must still yield a fallback idea")
	}
}

func TestParseIdeaStripsFences(t *testing.T) {
	fenced := "```json\n" + validIdeaJSON + "\n```"
	idea, err := ParseIdea(fenced)
	if err != nil {
		t.Fatalf("ParseIdea: %v", err)
	}
	if idea.UseCase != "Accounts payable automation" {
		t.Errorf("use case = %q", idea.UseCase)
	}
}

func TestParseIdeaRejectsMissingFields(t *testing.T) {
	cases := map[string]string{
		"name":        `{"description":"d","features":["f"],"services":["s"],"use_case":"u"}`,
		"description": `{"name":"n","features":["f"],"services":["s"],"use_case":"u"}`,
		"features":    `{"name":"n","description":"d","services":["s"],"use_case":"u"}`,
		"services":    `{"name":"n","description":"d","features":["f"],"use_case":"u"}`,
		"use_case":    `{"name":"n","description":"d","features":["f"],"services":["s"]}`,
	}
	for field, payload := range cases {
		if _, err := ParseIdea(payload); err == nil {
			t.Errorf("missing %s accepted", field)
		}
	}
}

func TestIsUnique(t *testing.T) {
	cat := testCatalog(t, "Chat Helper", "Document Search Engine", "Short")
	sel := New(&scriptedProvider{}, cat, prompts.NewLoader(), zerolog.Nop())

	cases := []struct {
		name string
		want bool
	}{
		{"Totally New App", true},
		{"chat helper", false},                   // exact match ignoring case
		{"Document Search", false},               // substring of an existing name
		{"My Document Search Engine Pro", false}, // contains an existing name
		{"Shorts", true},                         // "Short" is only 5 chars, containment not checked
		{"short", false},                         // but exact match still applies
		{"Chat-Helper", true},                    // punctuation breaks the byte-wise substring
		{"Süper Document Search Engine", false},  // containment holds through surrounding non-ASCII
		{"Chät Helper", true},                    // no unicode normalization, bytes differ
	}
	for _, tc := range cases {
		if got := sel.IsUnique(tc.name); got != tc.want {
			t.Errorf("IsUnique(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
