// Package glob translates the shell glob-like patterns spec.md's --glob
// flag accepts into RE2-compatible regular expressions, so the resulting
// pattern can be handed straight to internal/predicate's regex engine.
//
// Supported syntax, ported from original_source/src/glob.rs:
//   - any character other than ?, *, [, \, or { matches itself
//   - ? matches any single character except '/'
//   - * matches any run of zero or more characters, including '/' — this
//     follows glob.rs's actual Literal handling ('*' maps straight to
//     ".*"), not its doc comment's claim that '*' stops at a slash; a
//     glob like "src/*.go" therefore also matches "src/pkg/x.go"
//   - \x escapes x literally, except for \a \b \e \f \n \r \t \v which map
//     to the usual control characters
//   - [...] is a character class; a leading '!' negates it, a leading ']'
//     (after an optional '!') is a literal ']', and ranges (a-z) are
//     supported. Character classes never match '/'; a negated class always
//     excludes it too, since glob patterns are meant for filenames.
//   - {a,b,c} is an alternation between literal (escapable) alternatives;
//     nested classes or alternations inside it are not supported.
package glob

import (
	"fmt"
	"sort"
	"strings"
)

// ToRegex converts a glob pattern into an RE2 pattern string anchored with
// ^ and $, matching the whole input exactly as fd's glob patterns do.
func ToRegex(pattern string) (string, error) {
	p := &parser{runes: []rune(pattern)}
	var out strings.Builder
	out.WriteByte('^')
	for p.pos < len(p.runes) {
		piece, err := p.next()
		if err != nil {
			return "", err
		}
		out.WriteString(piece)
	}
	out.WriteByte('$')
	return out.String(), nil
}

type parser struct {
	runes []rune
	pos   int
}

func (p *parser) peekConsume() (rune, bool) {
	if p.pos >= len(p.runes) {
		return 0, false
	}
	r := p.runes[p.pos]
	p.pos++
	return r, true
}

func (p *parser) next() (string, error) {
	c, ok := p.peekConsume()
	if !ok {
		return "", nil
	}
	switch c {
	case '\\':
		esc, ok := p.peekConsume()
		if !ok {
			return "", fmt.Errorf("glob: bare escape at end of pattern")
		}
		return escapeOutsideClass(mapLetterEscape(esc)), nil
	case '[':
		return p.parseClass()
	case '{':
		return p.parseAlternate()
	case '?':
		return "[^/]", nil
	case '*':
		return ".*", nil
	case ']', '}', '.':
		return "\\" + string(c), nil
	default:
		return escapeOutsideClass(c), nil
	}
}

func mapLetterEscape(c rune) rune {
	switch c {
	case 'a':
		return '\a'
	case 'b':
		return '\b'
	case 'e':
		return '\x1b'
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'v':
		return '\v'
	default:
		return c
	}
}

const outsideClassSpecials = "[{()|^$.*?+\\"

func escapeOutsideClass(c rune) string {
	if strings.ContainsRune(outsideClassSpecials, c) {
		return "\\" + string(c)
	}
	return string(c)
}

func escapeInClass(c rune) string {
	if c == ']' || c == '\\' || c == '-' || c == '^' {
		return "\\" + string(c)
	}
	return string(c)
}

type classItem struct {
	isRange    bool
	start, end rune
}

func (p *parser) parseClass() (string, error) {
	negated := false
	c, ok := p.peekConsume()
	if !ok {
		return "", fmt.Errorf("glob: unclosed character class")
	}
	if c == '!' {
		negated = true
		c, ok = p.peekConsume()
		if !ok {
			return "", fmt.Errorf("glob: unclosed character class")
		}
	}

	var items []classItem
	// A ']' right after '[' or '[!' is a literal member, not the closer.
	first := true
	pending := c
	pendingValid := true
	for {
		var chr rune
		if pendingValid {
			chr = pending
			pendingValid = false
		} else {
			var ok bool
			chr, ok = p.peekConsume()
			if !ok {
				return "", fmt.Errorf("glob: unclosed character class")
			}
		}

		if chr == ']' && !first {
			return closeClass(negated, items), nil
		}
		first = false

		if chr == '\\' {
			esc, ok := p.peekConsume()
			if !ok {
				return "", fmt.Errorf("glob: unclosed character class")
			}
			chr = mapLetterEscape(esc)
		}

		// look ahead for a range a-b
		if p.pos < len(p.runes) && p.runes[p.pos] == '-' && p.pos+1 < len(p.runes) && p.runes[p.pos+1] != ']' {
			p.pos++ // consume '-'
			end, ok := p.peekConsume()
			if !ok {
				return "", fmt.Errorf("glob: unclosed character class")
			}
			if end == '\\' {
				e2, ok := p.peekConsume()
				if !ok {
					return "", fmt.Errorf("glob: unclosed character class")
				}
				end = mapLetterEscape(e2)
			}
			if chr > end {
				return "", fmt.Errorf("glob: reversed range %q > %q", chr, end)
			}
			items = append(items, classItem{isRange: true, start: chr, end: end})
			continue
		}

		items = append(items, classItem{start: chr})
	}
}

// closeClass renders a parsed character class to its RE2 form, excluding
// '/' from a positive class and guaranteeing a negated class still excludes
// it (a bare [^...] would otherwise match '/').
func closeClass(negated bool, items []classItem) string {
	var chars []rune
	var ranges [][2]rune
	hasSlash := false

	for _, it := range items {
		if it.isRange {
			if it.start <= '/' && it.end >= '/' {
				hasSlash = true
				if it.start != '/' {
					ranges = append(ranges, [2]rune{it.start, '.'})
				}
				if it.end != '/' {
					ranges = append(ranges, [2]rune{'0', it.end})
				}
			} else {
				ranges = append(ranges, [2]rune{it.start, it.end})
			}
			continue
		}
		if it.start == '/' {
			hasSlash = true
			continue
		}
		chars = append(chars, it.start)
	}

	sort.Slice(chars, func(i, j int) bool { return chars[i] < chars[j] })
	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i][0] != ranges[j][0] {
			return ranges[i][0] < ranges[j][0]
		}
		return ranges[i][1] < ranges[j][1]
	})

	var b strings.Builder
	b.WriteByte('[')
	if negated {
		b.WriteByte('^')
		if !hasSlash {
			b.WriteString("/")
		}
	}
	for _, c := range chars {
		b.WriteString(escapeInClass(c))
	}
	for _, r := range ranges {
		b.WriteString(escapeInClass(r[0]))
		b.WriteByte('-')
		b.WriteString(escapeInClass(r[1]))
	}
	b.WriteByte(']')
	return b.String()
}

func (p *parser) parseAlternate() (string, error) {
	var current strings.Builder
	var gathered []string
	for {
		c, ok := p.peekConsume()
		if !ok {
			return "", fmt.Errorf("glob: unclosed alternation")
		}
		switch c {
		case ',':
			gathered = append(gathered, current.String())
			current.Reset()
		case '}':
			if current.Len() == 0 && len(gathered) == 0 {
				return `\{\}`, nil
			}
			gathered = append(gathered, current.String())
			return closeAlternate(gathered), nil
		case '\\':
			esc, ok := p.peekConsume()
			if !ok {
				return "", fmt.Errorf("glob: unclosed alternation")
			}
			current.WriteRune(mapLetterEscape(esc))
		case '[':
			return "", fmt.Errorf("glob: character classes inside alternations are not supported")
		default:
			current.WriteRune(c)
		}
	}
}

func closeAlternate(items []string) string {
	escaped := make([]string, len(items))
	for i, s := range items {
		var b strings.Builder
		for _, r := range s {
			b.WriteString(escapeOutsideClass(r))
		}
		escaped[i] = b.String()
	}
	sort.Strings(escaped)
	uniq := escaped[:0]
	var last string
	for i, s := range escaped {
		if i == 0 || s != last {
			uniq = append(uniq, s)
			last = s
		}
	}
	return "(" + strings.Join(uniq, "|") + ")"
}
