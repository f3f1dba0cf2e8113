// Package pagefilter selects the policy pages worth sending to the model.
// The heuristics are cheap and lexical: keyword hits and significant dollar
// amounts, expanded with neighbor context and merged into contiguous ranges.
package pagefilter

import (
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/mudassirkhan-17/policyqc/internal/ocrtext"
)

// Criteria configures one selection pass. Leaving Keywords and Pattern empty
// disables the keyword criterion; MinDollarAmount 0 disables the dollar
// criterion.
type Criteria struct {
	// Keywords are case-insensitive substrings; a page qualifies when it
	// contains any of them.
	Keywords []string
	// Pattern is an optional regexp alternative for the keyword criterion.
	Pattern *regexp.Regexp
	// MinDollarAmount qualifies pages containing a currency-like token
	// whose value is at or above it.
	MinDollarAmount int
	// Intersect requires every active criterion to match instead of any.
	Intersect bool
	// NeighborRadius keeps this many context pages on each side of a hit,
	// clipped to the document's page bounds.
	NeighborRadius int
	// MaxPages truncates the kept list by ascending page number. 0 = no cap.
	MaxPages int
}

func (c Criteria) keywordActive() bool { return len(c.Keywords) > 0 || c.Pattern != nil }
func (c Criteria) dollarActive() bool  { return c.MinDollarAmount > 0 }

// PageRange is a maximal contiguous run of kept pages.
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Result reports one selection pass.
type Result struct {
	// Pages is the final kept set, ascending, after expansion, merge and cap.
	Pages []int `json:"pages"`
	// Ranges are the merged ranges before the MaxPages cap.
	Ranges []PageRange `json:"ranges"`
	// KeywordHits and DollarHits are the raw qualifying pages per criterion.
	KeywordHits []int `json:"keyword_hits"`
	DollarHits  []int `json:"dollar_hits"`
	// TotalPages is the document's page count before filtering.
	TotalPages int `json:"total_pages"`
	// ReductionRatio is kept/total; 0 when nothing qualified.
	ReductionRatio float64 `json:"reduction_ratio"`
}

// Instructional pages trip the dollar criterion with example numbers, so
// they are excluded from it outright.
var skipMarkers = []string{"EXAMPLE", "CALCULATION", "HOW TO", "SAMPLE", "ILLUSTRATION"}

var (
	dollarRe      = regexp.MustCompile(`\$\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
	commaNumberRe = regexp.MustCompile(`\b([0-9]{1,3}(?:,[0-9]{3})+)(?:\.[0-9]+)?\b`)
	bigNumberRe   = regexp.MustCompile(`\b([0-9]{5,})\b`)
)

// Filter evaluates Criteria across a PageMap with a fixed worker pool.
type Filter struct {
	workers int
	logger  *slog.Logger
}

// Option configures a Filter.
type Option func(*Filter)

// WithWorkers sets the scan pool size.
func WithWorkers(n int) Option {
	return func(f *Filter) {
		if n > 0 {
			f.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Filter) {
		if l != nil {
			f.logger = l
		}
	}
}

// New creates a Filter. Defaults: 4 workers, slog.Default().
func New(opts ...Option) *Filter {
	f := &Filter{workers: 4, logger: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// pageHit is one page's criterion outcome, merged by set union.
type pageHit struct {
	page    int
	keyword bool
	dollar  bool
}

// Select scans all pages against the criteria and returns the kept set.
// An empty result is a valid negative, not an error: whether "nothing
// relevant" is fatal belongs to the caller.
func (f *Filter) Select(pages ocrtext.PageMap, c Criteria) Result {
	res := Result{TotalPages: len(pages)}
	if len(pages) == 0 {
		return res
	}

	hits := f.scan(pages, c)

	keywordSet := make(map[int]struct{})
	dollarSet := make(map[int]struct{})
	for _, h := range hits {
		if h.keyword {
			keywordSet[h.page] = struct{}{}
		}
		if h.dollar {
			dollarSet[h.page] = struct{}{}
		}
	}
	res.KeywordHits = sortedKeys(keywordSet)
	res.DollarHits = sortedKeys(dollarSet)

	qualified := combine(c, keywordSet, dollarSet)
	if len(qualified) == 0 {
		f.logger.Debug("filter.pages.none",
			"total_pages", res.TotalPages)
		return res
	}

	minPage, maxPage, _ := pages.Bounds()
	res.Ranges = mergeRanges(qualified, c.NeighborRadius, minPage, maxPage)

	kept := make([]int, 0, len(pages))
	for _, n := range pages.Numbers() {
		for _, r := range res.Ranges {
			if n >= r.Start && n <= r.End {
				kept = append(kept, n)
				break
			}
		}
	}
	if c.MaxPages > 0 && len(kept) > c.MaxPages {
		kept = kept[:c.MaxPages]
	}
	res.Pages = kept
	res.ReductionRatio = float64(len(kept)) / float64(res.TotalPages)

	f.logger.Debug("filter.pages.selected",
		"total_pages", res.TotalPages,
		"keyword_hits", len(res.KeywordHits),
		"dollar_hits", len(res.DollarHits),
		"kept_pages", len(kept),
		"ranges", len(res.Ranges),
		"reduction_ratio", res.ReductionRatio)
	return res
}

// scan fans page evaluation out over the worker pool. Criteria are pure per
// page, so the only merge needed is set union over the hit records.
func (f *Filter) scan(pages ocrtext.PageMap, c Criteria) []pageHit {
	jobs := make(chan int, len(pages))
	out := make(chan pageHit, len(pages))

	var wg sync.WaitGroup
	for i := 0; i < f.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range jobs {
				text := pages[n]
				h := pageHit{page: n}
				if c.keywordActive() {
					h.keyword = matchesKeywords(text, c)
				}
				if c.dollarActive() {
					h.dollar = hasSignificantAmount(text, c.MinDollarAmount)
				}
				if h.keyword || h.dollar {
					out <- h
				}
			}
		}()
	}
	for n := range pages {
		jobs <- n
	}
	close(jobs)
	wg.Wait()
	close(out)

	hits := make([]pageHit, 0, len(pages))
	for h := range out {
		hits = append(hits, h)
	}
	return hits
}

func matchesKeywords(text string, c Criteria) bool {
	lower := strings.ToLower(text)
	for _, k := range c.Keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	if c.Pattern != nil && c.Pattern.MatchString(text) {
		return true
	}
	return false
}

// hasSignificantAmount reports whether the page carries a currency-like
// token valued at or above min. Instructional pages never qualify.
func hasSignificantAmount(text string, min int) bool {
	upper := strings.ToUpper(text)
	for _, skip := range skipMarkers {
		if strings.Contains(upper, skip) {
			return false
		}
	}
	for _, re := range []*regexp.Regexp{dollarRe, commaNumberRe, bigNumberRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if amountAtLeast(m[1], min) {
				return true
			}
		}
	}
	return false
}

func amountAtLeast(token string, min int) bool {
	digits := strings.ReplaceAll(token, ",", "")
	if i := strings.IndexByte(digits, '.'); i >= 0 {
		digits = digits[:i]
	}
	v, err := strconv.Atoi(digits)
	if err != nil {
		return false
	}
	return v >= min
}

func combine(c Criteria, keywordSet, dollarSet map[int]struct{}) map[int]struct{} {
	switch {
	case c.keywordActive() && c.dollarActive() && c.Intersect:
		qualified := make(map[int]struct{})
		for n := range keywordSet {
			if _, ok := dollarSet[n]; ok {
				qualified[n] = struct{}{}
			}
		}
		return qualified
	case c.keywordActive() && c.dollarActive():
		qualified := make(map[int]struct{}, len(keywordSet)+len(dollarSet))
		for n := range keywordSet {
			qualified[n] = struct{}{}
		}
		for n := range dollarSet {
			qualified[n] = struct{}{}
		}
		return qualified
	case c.keywordActive():
		return keywordSet
	default:
		return dollarSet
	}
}

// mergeRanges expands each qualifying page by radius, clips to the document
// bounds, and coalesces overlapping or adjacent ranges ascending.
func mergeRanges(qualified map[int]struct{}, radius, minPage, maxPage int) []PageRange {
	pages := sortedKeys(qualified)
	ranges := make([]PageRange, 0, len(pages))
	for _, p := range pages {
		start, end := p-radius, p+radius
		if start < minPage {
			start = minPage
		}
		if end > maxPage {
			end = maxPage
		}
		ranges = append(ranges, PageRange{Start: start, End: end})
	}

	merged := make([]PageRange, 0, len(ranges))
	for _, r := range ranges {
		if n := len(merged); n > 0 && r.Start <= merged[n-1].End+1 {
			if r.End > merged[n-1].End {
				merged[n-1].End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// JoinPages renders the kept pages as one text block in ascending order,
// each page under its own fenced marker so the model can cite pages.
func JoinPages(pages ocrtext.PageMap, kept []int) string {
	fence := strings.Repeat("=", 80)
	var b strings.Builder
	for _, n := range kept {
		text, ok := pages[n]
		if !ok {
			continue
		}
		b.WriteString(fence + "\n")
		b.WriteString("PAGE " + strconv.Itoa(n) + "\n")
		b.WriteString(fence + "\n")
		b.WriteString(strings.TrimSpace(text))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func sortedKeys(set map[int]struct{}) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
