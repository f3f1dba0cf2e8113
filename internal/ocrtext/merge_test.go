package ocrtext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeInterleaved(t *testing.T) {
	sourceA := fencedDoc(map[int]string{1: "alpha one", 2: "alpha two"})
	sourceB := fencedDoc(map[int]string{2: "beta two", 3: "beta three"})

	merged := NewMerger().MergeInterleaved(sourceA, sourceB)

	require.Equal(t, []int{1, 2, 3}, merged.Numbers())

	// page in both sources carries both labeled versions
	assert.Contains(t, merged[2], "--- TESSERACT (Buffer=1) ---")
	assert.Contains(t, merged[2], "alpha two")
	assert.Contains(t, merged[2], "--- PYMUPDF (Buffer=0) ---")
	assert.Contains(t, merged[2], "beta two")

	// one-sided pages get an explicit not-found line, never fabricated text
	assert.Contains(t, merged[1], "[Page not found in PYMUPDF (Buffer=0) extraction]")
	assert.Contains(t, merged[3], "[Page not found in TESSERACT (Buffer=1) extraction]")
}

func TestCombineRoundTripsThroughSplitter(t *testing.T) {
	sourceA := fencedDoc(map[int]string{1: "alpha", 3: "gamma"})
	sourceB := fencedDoc(map[int]string{2: "beta"})

	combined := NewMerger(WithSourceLabels("OCR-A", "OCR-B")).Combine(sourceA, sourceB)

	assert.True(t, strings.HasPrefix(combined, fence+"\nCOMBINED EXTRACTION - DUAL SOURCE"))
	assert.Contains(t, combined, "1. OCR-A")
	assert.Contains(t, combined, "2. OCR-B")

	pages, diags := NewSplitter().Split(combined)
	assert.Empty(t, diags)
	assert.Equal(t, []int{1, 2, 3}, pages.Numbers())
	assert.Contains(t, pages[2], "beta")
	assert.Contains(t, pages[2], "[Page not found in OCR-A extraction]")
}

func TestCombineSimpleSections(t *testing.T) {
	combined := NewMerger().CombineSimple("first text", "second text")

	assert.Contains(t, combined, "SOURCE 1: TESSERACT (Buffer=1)")
	assert.Contains(t, combined, "first text")
	assert.Contains(t, combined, "END OF TESSERACT (Buffer=1)")
	assert.Contains(t, combined, "SOURCE 2: PYMUPDF (Buffer=0)")
	assert.Contains(t, combined, "second text")
}

func TestSortedUnion(t *testing.T) {
	a := PageMap{3: "c", 1: "a"}
	b := PageMap{2: "b", 3: "c'"}

	assert.Equal(t, []int{1, 2, 3}, SortedUnion(a, b))
	assert.Empty(t, SortedUnion(PageMap{}, PageMap{}))
}
