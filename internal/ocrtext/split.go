// Package ocrtext parses and merges raw OCR extraction text. OCR producers
// emit page markers in several shapes; everything downstream works on the
// page-indexed form produced here.
package ocrtext

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// PageMap maps page number to that page's text span.
type PageMap map[int]string

// Numbers returns the page numbers in ascending order.
func (m PageMap) Numbers() []int {
	nums := make([]int, 0, len(m))
	for n := range m {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// Bounds returns the smallest and largest page number. ok is false for an
// empty map.
func (m PageMap) Bounds() (min, max int, ok bool) {
	if len(m) == 0 {
		return 0, 0, false
	}
	first := true
	for n := range m {
		if first {
			min, max = n, n
			first = false
			continue
		}
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}
	return min, max, true
}

// DefaultMinEqualsRun is the shortest `=` fence accepted around a PAGE
// marker. OCR producers vary between 40 and 80.
const DefaultMinEqualsRun = 40

// Splitter parses raw OCR text into a PageMap.
type Splitter struct {
	minEqualsRun int
	fallbackPage int
}

// SplitterOption configures a Splitter.
type SplitterOption func(*Splitter)

// WithMinEqualsRun sets the minimum length of the `=` fence lines.
func WithMinEqualsRun(n int) SplitterOption {
	return func(s *Splitter) {
		if n > 0 {
			s.minEqualsRun = n
		}
	}
}

// WithFallbackPage sets the page number assigned to markerless input.
func WithFallbackPage(n int) SplitterOption {
	return func(s *Splitter) {
		s.fallbackPage = n
	}
}

// NewSplitter creates a Splitter. Defaults: equals fences of 40+, markerless
// input numbered page 1.
func NewSplitter(opts ...SplitterOption) *Splitter {
	s := &Splitter{
		minEqualsRun: DefaultMinEqualsRun,
		fallbackPage: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// marker is one detected page marker occurrence in the raw text.
type marker struct {
	start, end int // character span of the marker itself
	page       int
}

// Split parses raw OCR text into pages. It never fails: the marker shapes
// are tried in priority order and the first shape with at least one hit is
// used for the whole document; markerless input degrades to a single page,
// noted in the returned diagnostics.
//
// Duplicate page numbers keep the first occurrence's start and extend the
// end when a later occurrence covers more text. Residual span overlaps are
// resolved by clipping the earlier page's tail.
func (s *Splitter) Split(raw string) (PageMap, []string) {
	var diags []string

	markers := s.findMarkers(raw)
	if len(markers) == 0 {
		diags = append(diags, fmt.Sprintf("no page markers found, treating input as single page %d", s.fallbackPage))
		return PageMap{s.fallbackPage: raw}, diags
	}

	sort.Slice(markers, func(i, j int) bool { return markers[i].start < markers[j].start })

	type span struct{ start, end int }
	bounds := make(map[int]span)
	order := make([]int, 0, len(markers))

	for i, mk := range markers {
		pageStart := mk.end
		pageEnd := len(raw)
		if i < len(markers)-1 {
			pageEnd = markers[i+1].start
		}
		if existing, seen := bounds[mk.page]; seen {
			// Keep the first start; only ever grow the span.
			if pageEnd > existing.end {
				bounds[mk.page] = span{existing.start, pageEnd}
			}
			diags = append(diags, fmt.Sprintf("duplicate marker for page %d, span extended", mk.page))
			continue
		}
		bounds[mk.page] = span{pageStart, pageEnd}
		order = append(order, mk.page)
	}

	// Clip overlaps in start order: the earlier page loses the tail.
	sort.Slice(order, func(i, j int) bool { return bounds[order[i]].start < bounds[order[j]].start })
	for i := 0; i < len(order)-1; i++ {
		cur, next := bounds[order[i]], bounds[order[i+1]]
		if cur.end > next.start {
			bounds[order[i]] = span{cur.start, next.start}
		}
	}

	pages := make(PageMap, len(bounds))
	for page, sp := range bounds {
		pages[page] = raw[sp.start:sp.end]
	}
	return pages, diags
}

// findMarkers tries the marker shapes in priority order.
func (s *Splitter) findMarkers(raw string) []marker {
	eq := strconv.Itoa(s.minEqualsRun)
	patterns := []*regexp.Regexp{
		// fenced: =====\nPAGE N\n=====
		regexp.MustCompile(`(?im)={` + eq + `,}[ \t]*\nPAGE[ \t]+(\d+)[ \t]*\n={` + eq + `,}`),
		// fenced with a [Match N] prefix, produced by re-combined documents
		regexp.MustCompile(`(?im)={` + eq + `,}[ \t]*\n\[Match[ \t]+\d+\][ \t]+Page[ \t]+(\d+)[ \t]*\n={` + eq + `,}`),
		// bare line: PAGE N
		regexp.MustCompile(`(?im)^PAGE[ \t]+(\d+)[ \t]*$`),
	}
	for _, re := range patterns {
		locs := re.FindAllStringSubmatchIndex(raw, -1)
		if len(locs) == 0 {
			continue
		}
		markers := make([]marker, 0, len(locs))
		for _, loc := range locs {
			n, err := strconv.Atoi(raw[loc[2]:loc[3]])
			if err != nil {
				continue
			}
			markers = append(markers, marker{start: loc[0], end: loc[1], page: n})
		}
		if len(markers) > 0 {
			return markers
		}
	}
	return nil
}
