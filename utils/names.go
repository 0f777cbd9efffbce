package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var classNameRe = regexp.MustCompile(`^\s*(\d{1,2})\s*[- ]?\s*([A-Za-zА-Яа-я])\s*$`)

// NormalizeClassName turns inputs like "7 a", "7-A" or "7а" into the canonical
// "7A" form. It returns "" when the value is not a grade 1–11 class name.
func NormalizeClassName(value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return ""
	}
	m := classNameRe.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	num, err := strconv.Atoi(m[1])
	if err != nil || num < 1 || num > 11 {
		return ""
	}
	return strconv.Itoa(num) + strings.ToUpper(m[2])
}

// NameCaseVariants returns the distinct case forms a full name is searched
// under: as typed, Title Case, Sentence case, UPPER and lower.
func NameCaseVariants(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var variants []string
	for _, v := range []string{
		name,
		titleCase(name),
		sentenceCase(name),
		strings.ToUpper(name),
		strings.ToLower(name),
	} {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}
	return variants
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = upperFirst(w)
	}
	return strings.Join(words, " ")
}

func sentenceCase(s string) string {
	return upperFirst(strings.ToLower(s))
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
