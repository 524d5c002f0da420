package filter

import (
	"fmt"
	"regexp"

	"go-geojob-automation/internal/models"
)

// Rules restricts which enriched jobs are worth announcing, per source, by
// matching their industries. Sources without a rule are always relevant.
type Rules map[models.Source]*regexp.Regexp

// DefaultIndustries is the LinkedIn industry rule: the search pages mix in
// every sector, so only Oil and Gas or Mining postings go out.
var DefaultIndustries = map[string]string{
	string(models.SourceLinkedIn): "Oil and Gas|Mining",
}

// Compile builds case-insensitive rules from source -> pattern pairs.
func Compile(patterns map[string]string) (Rules, error) {
	rules := make(Rules, len(patterns))
	for name, pattern := range patterns {
		src, err := models.ParseSource(name)
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid industry filter for %s: %w", src, err)
		}
		rules[src] = re
	}
	return rules, nil
}

func (r Rules) Relevant(d models.JobDetail) bool {
	re, ok := r[d.Source]
	if !ok {
		return true
	}
	if d.Industries == nil {
		return false
	}
	return re.MatchString(*d.Industries)
}

// Split partitions details, keeping their order.
func (r Rules) Split(details []models.JobDetail) (relevant, rest []models.JobDetail) {
	for _, d := range details {
		if r.Relevant(d) {
			relevant = append(relevant, d)
		} else {
			rest = append(rest, d)
		}
	}
	return relevant, rest
}
