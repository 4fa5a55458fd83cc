package textcorrect

import "captioner/internal/language"

// Rules describe the correction steps for one language.
type Rules struct {
	Language language.Language
	// Delimiter separates sentences; the piece after each one is capitalized.
	Delimiter string
	// Terminals are the runes accepted as a sentence end.
	Terminals string
	// Terminator is appended when the text does not end in a terminal.
	Terminator string
	// Substitutions maps case-folded whole words to their corrected form.
	Substitutions map[string]string
}

var english = Rules{
	Language:   language.English,
	Delimiter:  ". ",
	Terminals:  ".!?",
	Terminator: ".",
	Substitutions: map[string]string{
		"i":    "I",
		"im":   "I'm",
		"dont": "don't",
		"cant": "can't",
	},
}

var hindi = Rules{
	Language:   language.Hindi,
	Delimiter:  "। ",
	Terminals:  "।!?",
	Terminator: "।",
	Substitutions: map[string]string{
		"मै": "मैं",
		"हे": "है",
	},
}

// RulesFor returns the rule set for lang. Unsupported languages use English rules.
func RulesFor(lang language.Language) Rules {
	if lang == language.Hindi {
		return hindi
	}
	return english
}
