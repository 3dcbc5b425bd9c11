// Package extract locates a JSON value inside free-form model output.
//
// Models wrap JSON in prose, markdown fences, or both. Extraction runs a
// fixed list of pure strategies in order and returns the first candidate
// that parses as a JSON object or array.
package extract

import (
	"bytes"
	"regexp"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// Strategy names the technique that produced a payload.
type Strategy string

const (
	Direct      Strategy = "direct"
	FencedBlock Strategy = "fenced_block"
	BraceScan   Strategy = "brace_scan"
)

// Payload is a parsed JSON value together with the strategy that found it.
// Value is a map[string]any or a []any.
type Payload struct {
	Value    any
	Strategy Strategy
}

// Object returns the value as an object, if it is one.
func (p Payload) Object() (map[string]any, bool) {
	m, ok := p.Value.(map[string]any)
	return m, ok
}

// Array returns the value as an array, if it is one.
func (p Payload) Array() ([]any, bool) {
	a, ok := p.Value.([]any)
	return a, ok
}

// StrategyFunc returns candidate substrings of raw in the order they should
// be tried. It must not panic on any input.
type StrategyFunc func(raw string) []string

// Step pairs a strategy name with its candidate generator.
type Step struct {
	Name       Strategy
	Candidates StrategyFunc
}

// Strategies is the ordered extraction pipeline. First success wins.
var Strategies = []Step{
	{Name: Direct, Candidates: directCandidates},
	{Name: FencedBlock, Candidates: fencedCandidates},
	{Name: BraceScan, Candidates: braceCandidates},
}

// Extract runs Strategies over raw and returns the first candidate that
// parses. ok is false when nothing parses; that is a normal outcome.
func Extract(raw string) (p Payload, ok bool) {
	for _, step := range Strategies {
		if v, found := firstParse(step.Candidates(raw)); found {
			return Payload{Value: v, Strategy: step.Name}, true
		}
	}
	return Payload{}, false
}

// Parse decodes a single candidate. Only objects and arrays are accepted.
func Parse(candidate string) (any, bool) {
	b := bytes.TrimSpace([]byte(candidate))
	if len(b) == 0 || (b[0] != '{' && b[0] != '[') {
		return nil, false
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, false
	}
	switch v.(type) {
	case map[string]any, []any:
		return v, true
	}
	return nil, false
}

func firstParse(candidates []string) (any, bool) {
	for _, c := range candidates {
		if v, ok := Parse(c); ok {
			return v, true
		}
	}
	return nil, false
}

func directCandidates(raw string) []string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return []string{s}
}

// fenceRe matches ``` blocks with an optional language label on the
// opening line. Blocks are matched non-greedily, first to last.
var fenceRe = regexp.MustCompile("(?s)```[ \\t]*([A-Za-z0-9_+-]*)[ \\t]*\\r?\\n?(.*?)```")

func fencedCandidates(raw string) []string {
	matches := fenceRe.FindAllStringSubmatch(raw, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSpace(m[2]))
	}
	return out
}

// braceCandidates tries the larger of the widest {...} and [...] spans
// first, then every balanced span together with the smaller widest span,
// longest first. Spans of equal length keep their left to right order.
func braceCandidates(raw string) []string {
	obj := widestSpan(raw, '{', '}')
	arr := widestSpan(raw, '[', ']')
	if len(arr) > len(obj) {
		obj, arr = arr, obj
	}

	var out, rest []string
	if obj != "" {
		out = append(out, obj)
	}
	if arr != "" {
		rest = append(rest, arr)
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] != '{' && raw[i] != '[' {
			continue
		}
		if s, ok := balancedSpan(raw, i); ok {
			rest = append(rest, s)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool { return len(rest[i]) > len(rest[j]) })
	return append(out, rest...)
}

func widestSpan(raw string, open, close byte) string {
	start := strings.IndexByte(raw, open)
	end := strings.LastIndexByte(raw, close)
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

// balancedSpan returns the substring from start to its matching closer,
// skipping brackets inside JSON strings.
func balancedSpan(raw string, start int) (string, bool) {
	var stack []byte
	inString, escaped := false, false

	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return "", false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}
