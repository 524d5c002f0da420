package scraper

import (
	"fmt"

	"go-geojob-automation/internal/models"
)

// Registry picks an adapter by source name.
type Registry struct {
	byName map[models.Source]Scraper
	order  []models.Source
}

func NewRegistry(scrapers ...Scraper) *Registry {
	r := &Registry{byName: make(map[models.Source]Scraper, len(scrapers))}
	for _, s := range scrapers {
		if _, dup := r.byName[s.Name()]; !dup {
			r.order = append(r.order, s.Name())
		}
		r.byName[s.Name()] = s
	}
	return r
}

func (r *Registry) Get(src models.Source) (Scraper, error) {
	s, ok := r.byName[src]
	if !ok {
		return nil, fmt.Errorf("no scraper registered for %q: %w", src, models.ErrUnknownSource)
	}
	return s, nil
}

// All returns the registered adapters in registration order.
func (r *Registry) All() []Scraper {
	out := make([]Scraper, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}
