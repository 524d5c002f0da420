// Package normalize turns scraped markup into sheet-ready text.
package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type rewrite struct {
	re   *regexp.Regexp
	repl string
}

func rw(pattern, repl string) rewrite {
	return rewrite{re: regexp.MustCompile(pattern), repl: repl}
}

var (
	lineBreaks = regexp.MustCompile(`\n|\t`)
	spaceRuns  = regexp.MustCompile(`\s+`)
	blankRuns  = regexp.MustCompile(`[ \t\r\f\v]+`)

	// markup that the rewrite pass consumes; its absence means the text was
	// already normalized
	rewritable = regexp.MustCompile(`(?i)<(p|div|ul|ol|li|span|h[1-9])(\s[^>]*)?>|</(p|div|ul|ol|li|span|h[1-9])\s*>|<br\s*/?>`)

	blockBreaks = []rewrite{
		rw(`(?i)<p>\s*<br\s*/?>\s*</p\s*>`, "\n\n"),
		rw(`(?i)</ul\s*>`, "\n\n"),
	}
	headings = []rewrite{
		rw(`(?i)<h[1-9](\s[^>]*)?>`, "<strong>"),
		rw(`(?i)</h[1-9]\s*>`, "</strong>"),
	}
	containers = rw(`(?i)<div(\s[^>]*)?>|</div\s*>|<ul(\s[^>]*)?>|</li\s*>|</p\s*>|</ol\s*>|<br\s*/?>|<span(\s[^>]*)?>|</span\s*>`, "")
	openers    = []rewrite{
		rw(`(?i)<p(\s[^>]*)?>|<ol(\s[^>]*)?>`, "\n\n"),
		rw(`(?i)<li(\s[^>]*)?>`, "\n • "),
	}
	collapse = []rewrite{
		rw(`\n\s+\n`, "\n\n"),
		rw(`(?i)\n\n<strong>\n\n`, "<strong>\n\n"),
		rw(`•\s*\n(\s*\n)?`, "• "),
		rw(`\s+•`, " •"),
		rw(`(\n\s*){2,}`, "\n\n"),
		rw(`(?i)\n\n</strong>\n`, "\n</strong>\n"),
	}

	// DefaultKeywords are detail-page labels LinkedIn separates from their value
	// with a blank line.
	DefaultKeywords = []string{"Job ID", "Job Type", "Location", "Categories", "Applications close"}
)

// Option tweaks a Normalizer for one source's markup.
type Option func(*Normalizer)

// WithExtraStrip removes whole blocks (scripts, ads, embeds, tables) before
// the container pass and turns table rows and cells into line breaks.
func WithExtraStrip() Option {
	return func(n *Normalizer) {
		n.extra = []rewrite{
			rw(`(?is)<script[^>]*>.*?</script>|<ins[^>]*>.*?</ins>|<hr[^>]*>|<img[^>]*>|<noscript>.*?</noscript>|<iframe[^>]*>.*?</iframe>|<table[^>]*>.*?</table>|<tbody[^>]*>.*?</tbody>`, ""),
			rw(`(?i)</?(script|ins|noscript|iframe|table|tbody)[^>]*>`, ""),
			rw(`\(adsbygoogle = window\.adsbygoogle \|\| \[\]\)\.push\(\{\}\);`, ""),
			rw(`(?i)</tr>|</td>|<tr>|<td[^>]*>`, "\n"),
		}
		n.detect = append(n.detect, regexp.MustCompile(`(?i)<(script|ins|hr|img|noscript|iframe|table|tbody|tr|td)[\s>/]`))
	}
}

// WithKeywordJoin drops the blank line after each keyword label.
func WithKeywordJoin(keywords ...string) Option {
	return func(n *Normalizer) {
		quoted := make([]string, len(keywords))
		for i, k := range keywords {
			quoted[i] = regexp.QuoteMeta(k)
		}
		n.joins = append(n.joins, rw(`\b(`+strings.Join(quoted, "|")+`)\b\n\n`, "$1\n"))
	}
}

// WithMaxLen hard-truncates the cleaned text to n runes.
func WithMaxLen(max int) Option {
	return func(n *Normalizer) { n.maxLen = max }
}

type Normalizer struct {
	extra  []rewrite
	joins  []rewrite
	detect []*regexp.Regexp
	maxLen int
}

func New(opts ...Option) *Normalizer {
	n := &Normalizer{detect: []*regexp.Regexp{rewritable}}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

var plain = New()

// Description cleans a description fragment with the default rules.
func Description(raw string) *string {
	return plain.Description(raw)
}

// Description runs the ordered rewrites over raw. Text that carries no
// rewritable markup keeps its lines and only gets the collapse pass and the
// in-line whitespace squish, so feeding the output back in returns it
// unchanged. Blank results are nil.
func (n *Normalizer) Description(raw string) *string {
	s := raw
	if n.hasMarkup(s) {
		s = n.rewriteMarkup(s)
	} else {
		s = strings.ReplaceAll(s, `"`, "'")
	}
	s = n.tidy(s)
	if n.maxLen > 0 && utf8.RuneCountInString(s) > n.maxLen {
		s = n.tidy(string([]rune(s)[:n.maxLen]))
	}
	if s == "" {
		return nil
	}
	return &s
}

func (n *Normalizer) hasMarkup(s string) bool {
	for _, re := range n.detect {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func (n *Normalizer) rewriteMarkup(s string) string {
	s = lineBreaks.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, `"`, "'")
	s = strings.TrimSpace(spaceRuns.ReplaceAllString(s, " "))
	s = apply(s, blockBreaks)
	s = apply(s, headings)
	s = apply(s, n.extra)
	s = containers.re.ReplaceAllString(s, containers.repl)
	return apply(s, openers)
}

// tidy repeats the collapse rules and squishes blanks within lines until the
// text stops changing.
func (n *Normalizer) tidy(s string) string {
	for i := 0; i < 8; i++ {
		next := apply(apply(s, collapse), n.joins)
		next = strings.TrimSpace(blankRuns.ReplaceAllString(next, " "))
		if next == s {
			break
		}
		s = next
	}
	return s
}

func apply(s string, rules []rewrite) string {
	for _, r := range rules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return s
}

// Squish trims s and collapses inner whitespace runs to one space.
func Squish(s string) string {
	return strings.TrimSpace(spaceRuns.ReplaceAllString(s, " "))
}

// Text squishes s and returns nil when nothing is left.
func Text(s string) *string {
	s = Squish(s)
	if s == "" {
		return nil
	}
	return &s
}

// Fold lowercases s and strips diacritics.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	return strings.ToLower(result)
}
