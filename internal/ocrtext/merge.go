package ocrtext

import (
	"fmt"
	"sort"
	"strings"
)

const fence = "================================================================================"

// Merger combines two OCR extractions of the same document into one
// page-aligned text. Pages missing from one source are flagged, never
// fabricated.
type Merger struct {
	splitter *Splitter
	labelA   string
	labelB   string
}

// MergerOption configures a Merger.
type MergerOption func(*Merger)

// WithSourceLabels overrides the source names shown in combined output.
func WithSourceLabels(a, b string) MergerOption {
	return func(m *Merger) {
		m.labelA = a
		m.labelB = b
	}
}

// WithSplitter replaces the page splitter used on both inputs.
func WithSplitter(s *Splitter) MergerOption {
	return func(m *Merger) {
		m.splitter = s
	}
}

// NewMerger creates a Merger. Default labels name the two OCR passes the
// upstream extractor runs.
func NewMerger(opts ...MergerOption) *Merger {
	m := &Merger{
		splitter: NewSplitter(),
		labelA:   "TESSERACT (Buffer=1)",
		labelB:   "PYMUPDF (Buffer=0)",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MergeInterleaved splits both sources and returns a PageMap over the union
// of page numbers. Each page's text carries both sources' versions, labeled;
// a page absent from one source gets an explicit not-found line for it.
func (m *Merger) MergeInterleaved(sourceA, sourceB string) PageMap {
	pagesA, _ := m.splitter.Split(sourceA)
	pagesB, _ := m.splitter.Split(sourceB)

	nums := SortedUnion(pagesA, pagesB)
	merged := make(PageMap, len(nums))
	for _, n := range nums {
		var b strings.Builder
		writeSourceBlock(&b, m.labelA, pagesA, n)
		writeSourceBlock(&b, m.labelB, pagesB, n)
		merged[n] = b.String()
	}
	return merged
}

func writeSourceBlock(b *strings.Builder, label string, pages PageMap, n int) {
	fmt.Fprintf(b, "--- %s ---\n", label)
	if text, ok := pages[n]; ok {
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(text))
		b.WriteString("\n\n")
	} else {
		fmt.Fprintf(b, "[Page not found in %s extraction]\n\n", label)
	}
}

// Combine produces one combined document: a header explaining the two
// sources, then every page in ascending order with standard fenced PAGE
// markers around the interleaved content.
func (m *Merger) Combine(sourceA, sourceB string) string {
	merged := m.MergeInterleaved(sourceA, sourceB)

	var b strings.Builder
	m.writeHeader(&b)

	nums := merged.Numbers()
	for _, n := range nums {
		b.WriteString(fence + "\n")
		fmt.Fprintf(&b, "PAGE %d\n", n)
		b.WriteString(fence + "\n\n")
		b.WriteString(merged[n])
		b.WriteString("\n")
	}
	return b.String()
}

// CombineSimple concatenates the two sources whole, section-fenced, without
// page alignment. Kept for documents whose markers are too damaged to split.
func (m *Merger) CombineSimple(sourceA, sourceB string) string {
	var b strings.Builder
	m.writeHeader(&b)

	writeSection := func(ordinal int, label, content string) {
		b.WriteString(fence + "\n")
		fmt.Fprintf(&b, "SOURCE %d: %s\n", ordinal, label)
		b.WriteString(fence + "\n\n")
		b.WriteString(content)
		b.WriteString("\n\n")
		b.WriteString(fence + "\n")
		fmt.Fprintf(&b, "END OF %s\n", label)
		b.WriteString(fence + "\n\n")
	}
	writeSection(1, m.labelA, sourceA)
	writeSection(2, m.labelB, sourceB)
	return b.String()
}

func (m *Merger) writeHeader(b *strings.Builder) {
	b.WriteString(fence + "\n")
	b.WriteString("COMBINED EXTRACTION - DUAL SOURCE\n")
	b.WriteString(fence + "\n\n")
	b.WriteString("This document contains two extraction sources:\n")
	fmt.Fprintf(b, "1. %s\n", m.labelA)
	fmt.Fprintf(b, "2. %s\n", m.labelB)
	b.WriteString("\nUse the most complete/accurate version when sources differ.\n\n")
	b.WriteString(fence + "\n\n")
}

// SortedUnion returns the ascending union of two page-number sets. Exposed
// for callers that align page maps themselves.
func SortedUnion(a, b PageMap) []int {
	set := make(map[int]struct{}, len(a)+len(b))
	for n := range a {
		set[n] = struct{}{}
	}
	for n := range b {
		set[n] = struct{}{}
	}
	nums := make([]int, 0, len(set))
	for n := range set {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}
