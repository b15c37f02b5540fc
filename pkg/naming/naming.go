/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: naming.go
Description: Naming normalizer. Turns arbitrary JSON keys into identifiers that are valid in a
target language: keys are split into words, re-joined in the requested convention, kept
clear of reserved words and made unique within a scope.
*/

package naming

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-set/v3"
)

// Convention is an identifier casing style
type Convention int

const (
	PascalCase Convention = iota
	CamelCase
	SnakeCase
	ScreamingSnakeCase
	GoPascalCase // PascalCase with Go initialisms (UserID, HTTPServer)
)

// ErrCollisionUnresolved marks a failure to find a free identifier. It is a defect: the
// suffix search is unbounded, so it can only fire if the used set is corrupted.
var ErrCollisionUnresolved = errors.New("identifier collision could not be resolved")

// placeholderStem names keys that carry no usable letters
const placeholderStem = "field"

var conventionNames = map[Convention]string{
	PascalCase:         "pascal",
	CamelCase:          "camel",
	SnakeCase:          "snake",
	ScreamingSnakeCase: "screaming_snake",
	GoPascalCase:       "go",
}

// String returns the configuration name of the convention
func (c Convention) String() string {
	if name, ok := conventionNames[c]; ok {
		return name
	}
	return "convention(" + strconv.Itoa(int(c)) + ")"
}

// ParseConvention parses a configuration name such as "snake" or "camel"
func ParseConvention(name string) (Convention, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimSuffix(strings.ReplaceAll(key, "-", "_"), "_case")
	for c, n := range conventionNames {
		if n == key {
			return c, nil
		}
	}
	return 0, errors.Newf("unknown naming convention %q (want pascal, camel, snake, screaming_snake or go)", name)
}

// Split breaks a raw key into words. Any non-alphanumeric rune separates words, and so do
// lower-to-upper transitions and the end of an upper-case run ("XMLHttp" -> XML, Http).
// Digits stay attached to the word they follow.
func Split(raw string) []string {
	var words []string
	runes := []rune(raw)
	start := -1
	flush := func(end int) {
		if start >= 0 && end > start {
			words = append(words, string(runes[start:end]))
		}
		start = -1
	}
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		prev := runes[i-1]
		if unicode.IsUpper(r) {
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				flush(i)
				start = i
				continue
			}
			if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				flush(i)
				start = i
			}
		}
	}
	flush(len(runes))
	return words
}

// Join assembles words in the given convention. It does no keyword or uniqueness checks.
func Join(words []string, c Convention) string {
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	for i, w := range words {
		switch c {
		case SnakeCase:
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteString(strings.ToLower(w))
		case ScreamingSnakeCase:
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteString(strings.ToUpper(w))
		case CamelCase:
			if i == 0 {
				b.WriteString(strings.ToLower(w))
			} else {
				b.WriteString(title(w))
			}
		case GoPascalCase:
			if up := strings.ToUpper(w); initialisms.Contains(up) {
				b.WriteString(up)
			} else {
				b.WriteString(title(w))
			}
		default:
			b.WriteString(title(w))
		}
	}
	return b.String()
}

// title upper-cases the first rune and lower-cases the rest
func title(w string) string {
	runes := []rune(strings.ToLower(w))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Normalize converts raw into a unique identifier in convention c. The result is not a
// member of reserved, is not yet in used, and is added to used before returning.
func Normalize(raw string, c Convention, reserved, used *set.Set[string]) string {
	words := Split(raw)
	if allDigits(words) {
		return claim(placeholder(c, used), used)
	}
	name := Join(words, c)
	// Go identifiers are exported only when they start with an upper-case letter, and
	// scripts without letter case never do
	if r := []rune(name); unicode.IsDigit(r[0]) || (c == GoPascalCase && !unicode.IsUpper(r[0])) {
		name = Join(append([]string{placeholderStem}, words...), c)
	}
	if isReserved(name, reserved, c == SnakeCase || c == ScreamingSnakeCase) {
		name += "_"
	}
	return claim(name, used)
}

// NormalizeTypeName converts raw into a unique PascalCase type name
func NormalizeTypeName(raw string, reserved, used *set.Set[string]) string {
	return Normalize(raw, PascalCase, reserved, used)
}

// Material reports whether ident differs from raw by more than letter case. Renames that
// are material get a comment naming the raw key.
func Material(raw, ident string) bool {
	return !strings.EqualFold(raw, ident)
}

// RootName derives a type name from an input file name, e.g. "/data/user_data.json" ->
// "UserData". It returns fallback when the file name has no usable words.
func RootName(path, fallback string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	words := Split(base)
	if path == "" || path == "-" || allDigits(words) {
		return fallback
	}
	name := Join(words, PascalCase)
	if unicode.IsDigit([]rune(name)[0]) {
		return fallback
	}
	return name
}

// allDigits reports whether no word carries a letter
func allDigits(words []string) bool {
	for _, w := range words {
		for _, r := range w {
			if unicode.IsLetter(r) {
				return false
			}
		}
	}
	return true
}

// placeholder returns the first free placeholder name (Field1, Field2, ...) in c
func placeholder(c Convention, used *set.Set[string]) string {
	for n := 1; n > 0; n++ {
		name := Join([]string{placeholderStem, strconv.Itoa(n)}, c)
		if c == PascalCase || c == CamelCase || c == GoPascalCase {
			name = Join([]string{placeholderStem}, c) + strconv.Itoa(n)
		}
		if !used.Contains(name) {
			return name
		}
	}
	panic(errors.Mark(errors.AssertionFailedf("no free placeholder identifier"), ErrCollisionUnresolved))
}

// claim adds a numeric suffix (2, 3, ...) until name is free, then records it
func claim(name string, used *set.Set[string]) string {
	candidate := name
	for n := 2; used.Contains(candidate); n++ {
		if n <= 0 {
			panic(errors.Mark(errors.AssertionFailedf("suffix search for %q overflowed", name), ErrCollisionUnresolved))
		}
		candidate = name + strconv.Itoa(n)
	}
	used.Insert(candidate)
	return candidate
}

func isReserved(name string, reserved *set.Set[string], fold bool) bool {
	if reserved == nil {
		return false
	}
	if reserved.Contains(name) {
		return true
	}
	if !fold {
		return false
	}
	for _, word := range reserved.Slice() {
		if strings.EqualFold(word, name) {
			return true
		}
	}
	return false
}
