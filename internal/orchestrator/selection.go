package orchestrator

import (
	"math/rand"

	"github.com/hochfrequenz/app-forge/internal/domain"
	"github.com/hochfrequenz/app-forge/internal/runstate"
)

// categoryCounts reports how many apps each category has produced.
type categoryCounts interface {
	Category(name string) runstate.CategoryState
}

// SelectCategory picks a category weighted by priority and starvation:
// weight = priority / (apps_count + 1), so high-priority and empty
// categories are drawn more often.
func SelectCategory(rng *rand.Rand, categories []domain.Category, counts categoryCounts) string {
	if len(categories) == 0 {
		return ""
	}

	weights := make([]float64, len(categories))
	var total float64
	for i, cat := range categories {
		count := counts.Category(cat.Name).AppsCount
		weights[i] = float64(cat.Priority) / float64(count+1)
		total += weights[i]
	}
	if total <= 0 {
		return categories[rng.Intn(len(categories))].Name
	}

	r := rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r <= 0 {
			return categories[i].Name
		}
	}
	return categories[len(categories)-1].Name
}

// SelectServices draws two to four services weighted by priority.
// Duplicates are possible in the draw and are collapsed.
func SelectServices(rng *rand.Rand, services []domain.Service) []string {
	if len(services) == 0 {
		return nil
	}

	var total float64
	for _, svc := range services {
		total += float64(svc.Priority)
	}

	n := 2 + rng.Intn(3)
	seen := make(map[string]bool, n)
	var out []string
	for i := 0; i < n; i++ {
		name := drawService(rng, services, total)
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func drawService(rng *rand.Rand, services []domain.Service, total float64) string {
	if total <= 0 {
		return services[rng.Intn(len(services))].Name
	}
	r := rng.Float64() * total
	for _, svc := range services {
		r -= float64(svc.Priority)
		if r <= 0 {
			return svc.Name
		}
	}
	return services[len(services)-1].Name
}
