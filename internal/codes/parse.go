package codes

import (
	"strconv"
	"strings"
)

// ParseCodeRecord reads one "<n>. <code>" line. The split happens on the first dot,
// so codes may contain dots themselves.
func ParseCodeRecord(line string) (int, string, bool) {
	indexPart, codePart, found := strings.Cut(line, ".")
	if !found {
		return 0, "", false
	}
	index, err := strconv.Atoi(strings.TrimSpace(indexPart))
	if err != nil {
		return 0, "", false
	}
	return index, strings.TrimSpace(codePart), true
}

// ParseCodeList folds every newline-separated record into a map, skipping records that
// do not parse. Later duplicates overwrite earlier ones.
func ParseCodeList(text string) map[int]string {
	out := make(map[int]string)
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if index, code, ok := ParseCodeRecord(line); ok {
			out[index] = code
		}
	}
	return out
}

// ParseIndex reads one comma-separated token.
func ParseIndex(token string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseIndices returns every token of a comma-separated list that parses as an integer,
// in input order. Duplicates are kept; callers collapse them.
func ParseIndices(text string) []int {
	var out []int
	for _, token := range strings.Split(strings.TrimSpace(text), ",") {
		if n, ok := ParseIndex(token); ok {
			out = append(out, n)
		}
	}
	return out
}
