package orchestrator

import (
	"math/rand"
	"testing"

	"github.com/hochfrequenz/app-forge/internal/domain"
	"github.com/hochfrequenz/app-forge/internal/runstate"
)

// fixedCounts serves per-category app counts without a state file.
type fixedCounts map[string]int

func (f fixedCounts) Category(name string) runstate.CategoryState {
	return runstate.CategoryState{AppsCount: f[name]}
}

func TestSelectCategoryPrefersStarvedCategory(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	categories := []domain.Category{
		{Name: "empty", Priority: 1},
		{Name: "crowded", Priority: 1},
	}
	counts := fixedCounts{"empty": 0, "crowded": 9}

	draws := map[string]int{}
	for i := 0; i < 2000; i++ {
		draws[SelectCategory(rng, categories, counts)]++
	}

	// Weights are 1 vs 0.1, so the empty category should win roughly
	// ten times as often. Require a clear majority with slack.
	if draws["empty"] < draws["crowded"]*5 {
		t.Errorf("draws = %v, empty category not favored enough", draws)
	}
}

func TestSelectCategoryPriorityRatio(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	categories := []domain.Category{
		{Name: "a", Priority: 2},
		{Name: "b", Priority: 1},
	}
	counts := fixedCounts{}

	draws := map[string]int{}
	const total = 1000
	for i := 0; i < total; i++ {
		draws[SelectCategory(rng, categories, counts)]++
	}

	// Priority 2 vs 1 with equal counts: expect roughly a 2:1 split.
	ratio := float64(draws["a"]) / float64(draws["b"])
	if ratio < 1.6 || ratio > 2.5 {
		t.Errorf("draws = %v, ratio = %.2f, want about 2.0", draws, ratio)
	}
}

func TestSelectCategoryNeverStarvesCompletely(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	categories := []domain.Category{
		{Name: "hot", Priority: 3},
		{Name: "cold", Priority: 1},
	}
	counts := fixedCounts{"hot": 0, "cold": 50}

	draws := map[string]int{}
	for i := 0; i < 5000; i++ {
		draws[SelectCategory(rng, categories, counts)]++
	}
	if draws["cold"] == 0 {
		t.Error("low-weight category must keep a positive probability")
	}
}

func TestSelectCategoryEdgeCases(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	if got := SelectCategory(rng, nil, fixedCounts{}); got != "" {
		t.Errorf("empty categories should yield empty string, got %q", got)
	}

	one := []domain.Category{{Name: "only", Priority: 1}}
	if got := SelectCategory(rng, one, fixedCounts{}); got != "only" {
		t.Errorf("single category = %q", got)
	}

	// Zero priorities degrade to a uniform draw instead of a panic.
	zero := []domain.Category{{Name: "x"}, {Name: "y"}}
	if got := SelectCategory(rng, zero, fixedCounts{}); got != "x" && got != "y" {
		t.Errorf("zero-priority draw = %q", got)
	}
}

func TestSelectServicesCountAndUniqueness(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	services := []domain.Service{
		{Name: "bedrock", Priority: 1},
		{Name: "lambda", Priority: 1},
		{Name: "s3", Priority: 2},
		{Name: "kinesis", Priority: 3},
	}

	for i := 0; i < 200; i++ {
		got := SelectServices(rng, services)
		if len(got) < 1 || len(got) > 4 {
			t.Fatalf("selected %d services", len(got))
		}
		seen := map[string]bool{}
		for _, name := range got {
			if seen[name] {
				t.Fatalf("duplicate service %q in %v", name, got)
			}
			seen[name] = true
		}
	}

	if got := SelectServices(rng, nil); got != nil {
		t.Errorf("no services configured should yield nil, got %v", got)
	}
}
