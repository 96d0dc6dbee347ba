package pdf

import (
	"sort"
	"strconv"
	"strings"
)

// Numbering styles of a /PageLabels entry
const (
	StyleDecimal    = "D"
	StyleUpperRoman = "R"
	StyleLowerRoman = "r"
	StyleUpperAlpha = "A"
	StyleLowerAlpha = "a"
)

// LabelRange is one entry of the /PageLabels number tree
type LabelRange struct {
	// StartIndex is the 0-based page index the range starts at
	StartIndex int
	// Style is empty when the range carries only a prefix
	Style  string
	Prefix string
	// First is the numeric value of the first page in the range
	First int
}

// DefaultLabels numbers pages 1..pageCount
func DefaultLabels(pageCount int) []string {
	labels := make([]string, pageCount)
	for i := range labels {
		labels[i] = strconv.Itoa(i + 1)
	}
	return labels
}

// ExpandLabels computes one label per page. Pages before the first range fall
// back to their decimal page number.
func ExpandLabels(ranges []LabelRange, pageCount int) []string {
	labels := DefaultLabels(pageCount)
	if len(ranges) == 0 {
		return labels
	}

	sorted := append([]LabelRange(nil), ranges...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartIndex < sorted[j].StartIndex })

	for i, r := range sorted {
		if r.StartIndex < 0 || r.StartIndex >= pageCount {
			continue
		}
		end := pageCount
		if i+1 < len(sorted) && sorted[i+1].StartIndex < end {
			end = sorted[i+1].StartIndex
		}
		first := r.First
		if first < 1 {
			first = 1
		}
		for p := r.StartIndex; p < end; p++ {
			labels[p] = r.Prefix + FormatNumber(r.Style, first+p-r.StartIndex)
		}
	}
	return labels
}

// FormatNumber renders n in one of the page label styles. An empty or unknown
// style renders nothing, leaving only the prefix.
func FormatNumber(style string, n int) string {
	switch style {
	case StyleDecimal:
		return strconv.Itoa(n)
	case StyleUpperRoman:
		return strings.ToUpper(roman(n))
	case StyleLowerRoman:
		return roman(n)
	case StyleUpperAlpha:
		return alpha(n, 'A')
	case StyleLowerAlpha:
		return alpha(n, 'a')
	default:
		return ""
	}
}

var romanNumerals = []struct {
	value  int
	symbol string
}{
	{1000, "m"}, {900, "cm"}, {500, "d"}, {400, "cd"},
	{100, "c"}, {90, "xc"}, {50, "l"}, {40, "xl"},
	{10, "x"}, {9, "ix"}, {5, "v"}, {4, "iv"}, {1, "i"},
}

func roman(n int) string {
	if n < 1 {
		return strconv.Itoa(n)
	}
	var b strings.Builder
	for _, r := range romanNumerals {
		for n >= r.value {
			b.WriteString(r.symbol)
			n -= r.value
		}
	}
	return b.String()
}

// alpha renders A..Z, then AA..ZZ, then AAA and so on
func alpha(n int, base byte) string {
	if n < 1 {
		return strconv.Itoa(n)
	}
	letter := string(rune(base + byte((n-1)%26)))
	return strings.Repeat(letter, (n-1)/26+1)
}
