package compare

import "strings"

// corporate suffixes ignored when comparing entity names
var nameSuffixes = []string{" L.L.C.", " I.N.C.", " CORP.", " LLC", " INC", " CORP"}

// common OCR confusions between visually similar characters
var ocrConfusions = [][2]string{
	{"G", "H"}, {"H", "G"},
	{"O", "0"}, {"0", "O"},
	{"I", "1"}, {"1", "I"},
}

// IsNameVariation reports whether two entity names are likely the same
// entity differing only by an OCR-level error. A variation is still a
// mismatch; this only qualifies how the mismatch is tagged.
func IsNameVariation(name1, name2 string) bool {
	n1 := stripSuffixes(strings.ToUpper(name1))
	n2 := stripSuffixes(strings.ToUpper(name2))

	// same length, at most two differing characters on a non-trivial name
	if len(n1) == len(n2) && len(n1) > 5 {
		diff := 0
		for i := range n1 {
			if n1[i] != n2[i] {
				diff++
			}
		}
		if diff <= 2 {
			return true
		}
	}

	// single-substitution OCR confusions on longer names
	if len(n1) > 8 && len(n2) > 8 {
		v1 := confusionVariants(n1)
		v2 := confusionVariants(n2)
		for _, a := range v1 {
			for _, b := range v2 {
				if a == b {
					return true
				}
			}
		}
	}
	return false
}

func stripSuffixes(name string) string {
	for _, suffix := range nameSuffixes {
		name = strings.ReplaceAll(name, suffix, "")
	}
	return name
}

func confusionVariants(name string) []string {
	variants := []string{name}
	for _, pair := range ocrConfusions {
		variants = append(variants, strings.ReplaceAll(name, pair[0], pair[1]))
	}
	return variants
}
