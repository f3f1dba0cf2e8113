package ocrtext

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fencedDoc(pages map[int]string) string {
	m := make(PageMap, len(pages))
	for n, t := range pages {
		m[n] = t
	}
	var b strings.Builder
	for _, n := range m.Numbers() {
		fmt.Fprintf(&b, "%s\nPAGE %d\n%s%s", fence, n, fence, pages[n])
	}
	return b.String()
}

func TestSplitFencedMarkers(t *testing.T) {
	raw := fencedDoc(map[int]string{
		1: "\nDeclarations\n",
		2: "\nBuilding limit $500,000\n",
		3: "\nEndorsements\n",
	})

	pages, diags := NewSplitter().Split(raw)

	require.Len(t, pages, 3)
	assert.Empty(t, diags)
	assert.Contains(t, pages[2], "Building limit $500,000")
	assert.Equal(t, []int{1, 2, 3}, pages.Numbers())
}

func TestSplitMatchPrefixedMarkers(t *testing.T) {
	raw := fence + "\n[Match 1] Page 17\n" + fence + "\nMortgagee: ABC BANK\n" +
		fence + "\n[Match 2] Page 18\n" + fence + "\nLoss payee section\n"

	pages, _ := NewSplitter().Split(raw)

	require.Len(t, pages, 2)
	assert.Contains(t, pages[17], "ABC BANK")
	assert.Contains(t, pages[18], "Loss payee")
}

func TestSplitBareMarkers(t *testing.T) {
	raw := "PAGE 1\nalpha\nPAGE 2\nbeta\n"

	pages, _ := NewSplitter().Split(raw)

	require.Len(t, pages, 2)
	assert.Contains(t, pages[1], "alpha")
	assert.Contains(t, pages[2], "beta")
}

func TestSplitMarkerlessFallsBackToSinglePage(t *testing.T) {
	pages, diags := NewSplitter().Split("just a blob of text with no markers")

	require.Len(t, pages, 1)
	assert.Equal(t, "just a blob of text with no markers", pages[1])
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0], "single page")
}

func TestSplitFallbackPageConfigurable(t *testing.T) {
	pages, _ := NewSplitter(WithFallbackPage(0)).Split("blob")

	require.Len(t, pages, 1)
	assert.Equal(t, "blob", pages[0])
}

func TestSplitEmptyInput(t *testing.T) {
	pages, diags := NewSplitter().Split("")

	require.Len(t, pages, 1)
	assert.Equal(t, "", pages[1])
	assert.NotEmpty(t, diags)
}

func TestSplitDuplicatePageExtendsSpan(t *testing.T) {
	// Page 2 appears twice; the first occurrence's start must be kept and
	// the span extended through the later occurrence's text.
	raw := fence + "\nPAGE 1\n" + fence + "\nfirst\n" +
		fence + "\nPAGE 2\n" + fence + "\nsecond-a\n" +
		fence + "\nPAGE 2\n" + fence + "\nsecond-b\n"

	pages, diags := NewSplitter().Split(raw)

	require.Len(t, pages, 2)
	assert.Contains(t, pages[2], "second-a")
	assert.Contains(t, pages[2], "second-b")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0], "duplicate")
}

func TestSplitDeterministicAndNonOverlapping(t *testing.T) {
	raw := fencedDoc(map[int]string{1: "\none\n", 5: "\nfive\n", 3: "\nthree\n"})

	first, _ := NewSplitter().Split(raw)
	second, _ := NewSplitter().Split(raw)
	assert.Equal(t, first, second)

	// Page spans must be disjoint: each page's text appears intact and no
	// page contains another's content.
	assert.Contains(t, first[1], "one")
	assert.NotContains(t, first[1], "three")
	assert.NotContains(t, first[3], "five")
}

func TestSplitReconstructsInputMinusMarkers(t *testing.T) {
	raw := fencedDoc(map[int]string{1: "\nalpha\n", 2: "\nbeta\n", 3: "\ngamma\n"})

	pages, _ := NewSplitter().Split(raw)

	var joined strings.Builder
	for _, n := range pages.Numbers() {
		joined.WriteString(pages[n])
	}
	stripped := raw
	for _, n := range pages.Numbers() {
		markerText := fmt.Sprintf("%s\nPAGE %d\n%s", fence, n, fence)
		stripped = strings.Replace(stripped, markerText, "", 1)
	}
	assert.Equal(t, stripped, joined.String())
}

func TestSplitMinEqualsRunConfigurable(t *testing.T) {
	shortFence := strings.Repeat("=", 45)
	raw := shortFence + "\nPAGE 1\n" + shortFence + "\ncontent\n"

	// Default 40 accepts the 45-char fence.
	pages, _ := NewSplitter().Split(raw)
	require.Len(t, pages, 1)
	assert.Contains(t, pages[1], "content")

	// Raising the minimum past 45 demotes the document to the bare-line
	// shape, which still finds the PAGE line.
	strict, _ := NewSplitter(WithMinEqualsRun(60)).Split(raw)
	require.Len(t, strict, 1)
	assert.Contains(t, strict[1], "content")
}

func TestPageMapBounds(t *testing.T) {
	m := PageMap{3: "", 17: "", 9: ""}
	min, max, ok := m.Bounds()
	require.True(t, ok)
	assert.Equal(t, 3, min)
	assert.Equal(t, 17, max)

	_, _, ok = PageMap{}.Bounds()
	assert.False(t, ok)
}
