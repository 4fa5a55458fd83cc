package textcorrect

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"captioner/internal/language"
)

// Correct applies the rules for lang to text.
func Correct(text string, lang language.Language) string {
	return RulesFor(lang).Apply(text)
}

// Apply runs capitalization, terminal punctuation, and token substitution in
// that order.
func (r Rules) Apply(text string) string {
	text = r.capitalize(text)
	text = r.terminate(text)
	return r.substitute(text)
}

func (r Rules) capitalize(text string) string {
	if text == "" {
		return text
	}
	// Casers keep state between calls so each invocation gets its own.
	upper := cases.Upper(r.Language.Tag())
	pieces := strings.Split(text, r.Delimiter)
	for i, piece := range pieces {
		pieces[i] = upperFirst(upper, piece)
	}
	return strings.Join(pieces, r.Delimiter)
}

func (r Rules) terminate(text string) string {
	if text == "" {
		return text
	}
	last, _ := utf8.DecodeLastRuneInString(text)
	if strings.ContainsRune(r.Terminals, last) {
		return text
	}
	return text + r.Terminator
}

func (r Rules) substitute(text string) string {
	if len(r.Substitutions) == 0 || text == "" {
		return text
	}
	fold := cases.Fold()
	upper := cases.Upper(r.Language.Tag())
	var b strings.Builder
	b.Grow(len(text) + 8)
	start := -1
	flush := func(end int) {
		word := text[start:end]
		if repl, ok := r.Substitutions[fold.String(word)]; ok {
			// A capitalized source keeps its capital so sentence starts survive.
			if first, _ := utf8.DecodeRuneInString(word); unicode.IsUpper(first) {
				repl = upperFirst(upper, repl)
			}
			b.WriteString(repl)
		} else {
			b.WriteString(word)
		}
		start = -1
	}
	for i, ch := range text {
		if isWordRune(ch) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			flush(i)
		}
		b.WriteRune(ch)
	}
	if start >= 0 {
		flush(len(text))
	}
	return b.String()
}

func isWordRune(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsMark(ch) || unicode.IsDigit(ch) || ch == '_'
}

func upperFirst(upper cases.Caser, s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if size == 0 || first == utf8.RuneError {
		return s
	}
	return upper.String(s[:size]) + s[size:]
}
