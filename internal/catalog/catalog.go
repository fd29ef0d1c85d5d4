// Package catalog tracks every generated application ever produced.
package catalog

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hochfrequenz/app-forge/internal/domain"
	"github.com/hochfrequenz/app-forge/internal/store"
)

const docVersion = "1.0.0"

// document is the on-disk catalog layout
type document struct {
	Version string         `json:"version"`
	Apps    []domain.Entry `json:"apps"`
}

func (d document) DocVersion() string { return d.Version }

// Catalog owns the app-catalog document. Every mutation rewrites the
// full persisted file; mutation frequency is a few per run at most.
type Catalog struct {
	doc  *store.Document[document]
	data document
	log  zerolog.Logger
}

// Open loads the catalog from path, substituting an empty catalog when
// the file is missing or unreadable
func Open(path string, log zerolog.Logger) *Catalog {
	doc := store.NewDocument[document](path, log)
	return &Catalog{
		doc:  doc,
		data: doc.Load(document{Version: docVersion}),
		log:  log,
	}
}

// Register appends a new entry. The name is the uniqueness key: a
// duplicate (case-sensitive) is rejected.
func (c *Catalog) Register(entry domain.Entry) error {
	if entry.Name == "" {
		return fmt.Errorf("catalog: entry name is required")
	}
	if c.Exists(entry.Name) {
		return fmt.Errorf("catalog: app %q already registered", entry.Name)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	c.data.Apps = append(c.data.Apps, entry)
	if err := c.doc.Save(c.data); err != nil {
		return err
	}
	c.log.Info().Str("app", entry.Name).Str("category", entry.Category).Msg("registered app")
	return nil
}

// Exists reports whether an entry with exactly this name is registered
func (c *Catalog) Exists(name string) bool {
	for i := range c.data.Apps {
		if c.data.Apps[i].Name == name {
			return true
		}
	}
	return false
}

// Get returns the entry with the given name, or nil
func (c *Catalog) Get(name string) *domain.Entry {
	for i := range c.data.Apps {
		if c.data.Apps[i].Name == name {
			return &c.data.Apps[i]
		}
	}
	return nil
}

// All returns every entry in registration order
func (c *Catalog) All() []domain.Entry {
	out := make([]domain.Entry, len(c.data.Apps))
	copy(out, c.data.Apps)
	return out
}

// ByCategory returns entries in the given category, preserving order
func (c *Catalog) ByCategory(category string) []domain.Entry {
	var out []domain.Entry
	for _, e := range c.data.Apps {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// ByService returns entries whose service set contains the given tag
func (c *Catalog) ByService(service string) []domain.Entry {
	var out []domain.Entry
	for i := range c.data.Apps {
		if c.data.Apps[i].UsesService(service) {
			out = append(out, c.data.Apps[i])
		}
	}
	return out
}

// Count returns the total number of registered apps
func (c *Catalog) Count() int {
	return len(c.data.Apps)
}

// Update merges the given fields into an existing entry and stamps its
// update time. A missing name is a warned no-op.
func (c *Catalog) Update(name string, fields map[string]string) error {
	for i := range c.data.Apps {
		if c.data.Apps[i].Name != name {
			continue
		}
		entry := &c.data.Apps[i]
		if len(fields) > 0 && entry.Metadata == nil {
			entry.Metadata = make(map[string]string, len(fields))
		}
		for k, v := range fields {
			switch k {
			case "category":
				entry.Category = v
			case "path":
				entry.Path = v
			default:
				entry.Metadata[k] = v
			}
		}
		now := time.Now()
		entry.UpdatedAt = &now

		if err := c.doc.Save(c.data); err != nil {
			return err
		}
		c.log.Info().Str("app", name).Msg("updated app")
		return nil
	}

	c.log.Warn().Str("app", name).Msg("update skipped, app not registered")
	return nil
}
