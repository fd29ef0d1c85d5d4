package domain

import (
	"regexp"
	"strings"
	"time"
)

// Entry is one generated application tracked in the catalog.
// Name is the natural key and must be unique across the whole catalog.
type Entry struct {
	Name      string            `json:"name"`
	Category  string            `json:"category"`
	Path      string            `json:"path"`
	Services  []string          `json:"services,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt *time.Time        `json:"updated_at,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// UsesService reports whether the entry's service set contains the given tag
func (e *Entry) UsesService(service string) bool {
	for _, s := range e.Services {
		if s == service {
			return true
		}
	}
	return false
}

var slugCleanRegex = regexp.MustCompile(`[^a-z0-9-]+`)

// Slugify converts an app name into a directory-safe slug
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = slugCleanRegex.ReplaceAllString(s, "")
	return strings.Trim(s, "-")
}
