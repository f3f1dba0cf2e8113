package pagefilter

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mudassirkhan-17/policyqc/internal/ocrtext"
)

func blankPages(n int) ocrtext.PageMap {
	pages := make(ocrtext.PageMap, n)
	for i := 1; i <= n; i++ {
		pages[i] = fmt.Sprintf("filler text for page %d", i)
	}
	return pages
}

func TestSelectKeywordCriterion(t *testing.T) {
	pages := blankPages(30)
	pages[17] = "Mortgagee: ABC BANK, 100 Main St"

	res := New().Select(pages, Criteria{
		Keywords:       []string{"mortgagee"},
		NeighborRadius: 1,
	})

	assert.Equal(t, []int{17}, res.KeywordHits)
	assert.Equal(t, []int{16, 17, 18}, res.Pages)
	assert.Equal(t, []PageRange{{Start: 16, End: 18}}, res.Ranges)
}

func TestSelectRegexCriterion(t *testing.T) {
	pages := blankPages(5)
	pages[3] = "names an Additional Insured per endorsement"

	res := New().Select(pages, Criteria{
		Pattern: regexp.MustCompile(`(?i)additional insur(ed|e)\w*`),
	})

	assert.Equal(t, []int{3}, res.Pages)
}

func TestSelectDollarCriterion(t *testing.T) {
	pages := ocrtext.PageMap{
		1: "table of contents, see page 12",
		2: "Building limit: $500,000 per occurrence",
		3: "deductible applies, $100",           // below minimum
		4: "schedule number 181472",             // bare 5+ digit block
		5: "premium shown as 1,320,000 total",   // comma-grouped
		6: "EXAMPLE: a limit of $900,000 would", // instructional, excluded
	}

	res := New().Select(pages, Criteria{MinDollarAmount: 200})

	assert.Equal(t, []int{2, 4, 5}, res.DollarHits)
	assert.Equal(t, []int{2, 4, 5}, res.Pages)
}

func TestSelectUnionAndIntersection(t *testing.T) {
	pages := ocrtext.PageMap{
		1: "mortgagee listed here, no amounts",
		2: "limit $750,000 and mortgagee clause",
		3: "limit $300,000 only",
		4: "nothing relevant",
	}
	c := Criteria{
		Keywords:        []string{"mortgagee"},
		MinDollarAmount: 200,
	}

	union := New().Select(pages, c)
	assert.Equal(t, []int{1, 2, 3}, union.Pages)

	c.Intersect = true
	both := New().Select(pages, c)
	assert.Equal(t, []int{2}, both.Pages)
}

func TestMergeRangesCoalescesAdjacent(t *testing.T) {
	// Qualifying pages {5,6,9,20} with radius 1 expand to
	// {4..7, 8..10, 19..21}; adjacent ranges coalesce, the 11-18 gap stays.
	pages := blankPages(30)
	qualified := map[int]struct{}{5: {}, 6: {}, 9: {}, 20: {}}
	min, max, _ := pages.Bounds()

	ranges := mergeRanges(qualified, 1, min, max)

	assert.Equal(t, []PageRange{{Start: 4, End: 10}, {Start: 19, End: 21}}, ranges)
}

func TestMergeRangesClipsToDocumentBounds(t *testing.T) {
	ranges := mergeRanges(map[int]struct{}{1: {}, 30: {}}, 3, 1, 30)

	assert.Equal(t, []PageRange{{Start: 1, End: 4}, {Start: 27, End: 30}}, ranges)
}

func TestSelectMaxPagesCapsAscending(t *testing.T) {
	pages := blankPages(30)
	for _, n := range []int{5, 6, 9, 20} {
		pages[n] = "mortgagee"
	}

	res := New().Select(pages, Criteria{
		Keywords:       []string{"mortgagee"},
		NeighborRadius: 1,
		MaxPages:       4,
	})

	assert.Equal(t, []int{4, 5, 6, 7}, res.Pages)
	// Ranges still report the full merged view before the cap.
	assert.Equal(t, []PageRange{{Start: 4, End: 10}, {Start: 19, End: 21}}, res.Ranges)
}

func TestSelectEmptyResultIsValidNegative(t *testing.T) {
	res := New().Select(blankPages(10), Criteria{Keywords: []string{"forgery"}})

	assert.Empty(t, res.Pages)
	assert.Empty(t, res.Ranges)
	assert.Zero(t, res.ReductionRatio)
	assert.Equal(t, 10, res.TotalPages)
}

func TestSelectReductionRatio(t *testing.T) {
	pages := blankPages(20)
	pages[10] = "mortgagee"

	res := New(WithWorkers(8)).Select(pages, Criteria{
		Keywords:       []string{"mortgagee"},
		NeighborRadius: 1,
	})

	require.Len(t, res.Pages, 3)
	assert.InDelta(t, 0.15, res.ReductionRatio, 1e-9)
}

func TestJoinPagesRendersAscendingWithMarkers(t *testing.T) {
	pages := ocrtext.PageMap{16: "before", 17: "Mortgagee: ABC BANK", 18: "after"}

	text := JoinPages(pages, []int{16, 17, 18})

	assert.Contains(t, text, "PAGE 16")
	assert.Contains(t, text, "PAGE 17")
	assert.Contains(t, text, "ABC BANK")

	// Re-splitting the joined text recovers the same page numbers.
	split, _ := ocrtext.NewSplitter().Split(text)
	assert.Equal(t, []int{16, 17, 18}, split.Numbers())
}
