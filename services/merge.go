package services

import (
	"errors"
	"regexp"
	"strings"
)

// ErrUnresolved is returned by Resolve when a placeholder path does not lead
// to a value.
var ErrUnresolved = errors.New("unresolved placeholder")

// placeholderPattern matches {{ path }} non-greedily. Braces are not allowed
// inside the delimiters, so an unterminated "{{" never swallows later text.
var placeholderPattern = regexp.MustCompile(`\{\{([^{}]*?)\}\}`)

// Resolve walks a dotted path through params and returns the string form of
// the value it ends on. Surrounding whitespace in path is ignored.
func Resolve(params Value, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrUnresolved
	}

	segments := strings.Split(path, ".")
	if len(segments) > MaxPathDepth {
		return "", ErrUnresolved
	}

	current := params
	for _, seg := range segments {
		child, ok := current.Lookup(seg)
		if !ok {
			return "", ErrUnresolved
		}
		current = child
	}

	if current.Kind() == KindMissing {
		return "", ErrUnresolved
	}
	return current.String(), nil
}

// MergeTemplate replaces every {{path}} token in text with the value it
// resolves to in params. Tokens that do not resolve become empty strings.
func MergeTemplate(text string, params Value) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(token string) string {
		value, err := Resolve(params, token[2:len(token)-2])
		if err != nil {
			return ""
		}
		return value
	})
}

// Placeholders lists the distinct trimmed paths referenced by text, in order
// of first appearance.
func Placeholders(text string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool, len(matches))
	var paths []string
	for _, m := range matches {
		p := strings.TrimSpace(m[1])
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		paths = append(paths, p)
	}
	return paths
}
