package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Language identifies a supported caption language by its config word form.
type Language string

const (
	English Language = "english"
	Hindi   Language = "hindi"
)

// Default is used when no language is configured.
const Default = English

type entry struct {
	lang    Language
	code2   string // ISO 639-1
	code3   string // ISO 639-2
	display string
	tag     language.Tag
}

var languages = []entry{
	{English, "en", "eng", "English", language.English},
	{Hindi, "hi", "hin", "Hindi", language.Hindi},
}

var index map[string]*entry

func init() {
	index = make(map[string]*entry, len(languages)*3)
	for i := range languages {
		e := &languages[i]
		index[string(e.lang)] = e
		index[e.code2] = e
		index[e.code3] = e
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	return index[code]
}

// Parse resolves a language word, ISO 639-1, or ISO 639-2 code.
func Parse(value string) (Language, error) {
	if e := lookup(value); e != nil {
		return e.lang, nil
	}
	return "", fmt.Errorf("unsupported language %q (want one of %s)", strings.TrimSpace(value), strings.Join(Names(), ", "))
}

// Names lists the supported languages in their config word form.
func Names() []string {
	out := make([]string, 0, len(languages))
	for _, e := range languages {
		out = append(out, string(e.lang))
	}
	return out
}

// Valid reports whether l is a supported language.
func (l Language) Valid() bool {
	return lookup(string(l)) != nil
}

// ISO2 returns the ISO 639-1 code, or an empty string for unsupported values.
func (l Language) ISO2() string {
	if e := lookup(string(l)); e != nil {
		return e.code2
	}
	return ""
}

// ISO3 returns the ISO 639-2 code, or "und".
func (l Language) ISO3() string {
	if e := lookup(string(l)); e != nil {
		return e.code3
	}
	return "und"
}

// Tag returns the x/text tag used for case mapping.
func (l Language) Tag() language.Tag {
	if e := lookup(string(l)); e != nil {
		return e.tag
	}
	return language.Und
}

// DisplayName returns the human-readable name, or "Unknown".
func (l Language) DisplayName() string {
	if e := lookup(string(l)); e != nil {
		return e.display
	}
	return "Unknown"
}

func (l Language) String() string { return string(l) }

// ToISO2 converts any recognized language code or word to ISO 639-1.
// Returns an empty string for unrecognized input.
func ToISO2(code string) string {
	if e := lookup(code); e != nil {
		return e.code2
	}
	return ""
}
