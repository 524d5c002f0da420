package dedup

import (
	"context"
	"fmt"
	"log"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"go-geojob-automation/internal/models"
)

var (
	digitsOnly = regexp.MustCompile(`^\d+$`)
	numeric    = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
)

// CanonicalID maps the different spellings a table can hand back for one id
// ("123", "123.0", " 0123", "1.23e2") onto a single key.
func CanonicalID(id string) string {
	id = strings.TrimSpace(id)
	if digitsOnly.MatchString(id) {
		if trimmed := strings.TrimLeft(id, "0"); trimmed != "" {
			return trimmed
		}
		return "0"
	}
	if !numeric.MatchString(id) {
		return id
	}
	f, err := strconv.ParseFloat(id, 64)
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) >= 1e18 {
		return id
	}
	return strconv.FormatInt(int64(f), 10)
}

// SeenLoader is the read side of the job table.
type SeenLoader interface {
	SeenIDs(ctx context.Context, source models.Source) ([]string, error)
}

// SeenSet holds the canonical ids already stored, per source.
// Mutex is required because Go maps are NOT thread-safe
type SeenSet struct {
	mu   sync.Mutex
	seen map[models.Source]map[string]struct{}
}

func NewSeenSet() *SeenSet {
	return &SeenSet{seen: make(map[models.Source]map[string]struct{})}
}

// Load pulls every stored id of source into the set.
func (s *SeenSet) Load(ctx context.Context, loader SeenLoader, source models.Source) error {
	ids, err := loader.SeenIDs(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to load seen ids for %s: %w", source, err)
	}
	s.Add(source, ids...)
	log.Printf("📋 Loaded %d previously seen %s jobs", len(ids), source)
	return nil
}

func (s *SeenSet) Add(source models.Source, ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.seen[source]
	if !ok {
		set = make(map[string]struct{})
		s.seen[source] = set
	}
	for _, id := range ids {
		if key := CanonicalID(id); key != "" {
			set[key] = struct{}{}
		}
	}
}

func (s *SeenSet) Contains(source models.Source, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[source][CanonicalID(id)]
	return ok
}

// Len is the number of ids known for source.
func (s *SeenSet) Len(source models.Source) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen[source])
}

// Filter keeps the summaries that still need enriching. When hasIDs is set a
// summary without an id is dropped, as is one whose id was already stored or
// already appeared earlier in the batch. Kept summaries are not modified.
func Filter(summaries []models.JobSummary, seen *SeenSet, hasIDs bool) []models.JobSummary {
	kept := make([]models.JobSummary, 0, len(summaries))
	batch := make(map[models.Source]map[string]struct{})

	for _, s := range summaries {
		if s.JobID == nil {
			if hasIDs {
				continue
			}
			kept = append(kept, s)
			continue
		}

		key := CanonicalID(*s.JobID)
		if seen != nil && seen.Contains(s.Source, key) {
			continue
		}
		if batch[s.Source] == nil {
			batch[s.Source] = make(map[string]struct{})
		}
		if _, dup := batch[s.Source][key]; dup {
			continue
		}
		batch[s.Source][key] = struct{}{}
		kept = append(kept, s)
	}
	return kept
}
