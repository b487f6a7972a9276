package checker

import "strings"

// Vocabulary is the fixed keyword table the classifier matches against.
// It is a value so tests can substitute alternate vocabularies.
type Vocabulary struct {
	Available []string
	SoldOut   []string
}

// DefaultVocabulary covers the phrasings the TBS ticket pages have been
// seen to use, plus the english equivalents.
var DefaultVocabulary = Vocabulary{
	Available: []string{
		"受付中",
		"購入する",
		"残りわずか",
		"on sale",
		"buy now",
	},
	SoldOut: []string{
		"売り切れ",
		"完売",
		"予定枚数終了",
		"販売終了",
		"sold out",
	},
}

// Classify maps rendered page text to a Status. Available keywords win
// over co-occurring sold-out keywords: a page showing a general sold-out
// banner next to a live buy button for one session is a sale we must not
// miss, while the converse only costs a premature mail. Matching is
// case-insensitive so ascii keywords can be written naturally.
func (v Vocabulary) Classify(text string) Status {
	lower := strings.ToLower(text)

	for _, keyword := range v.Available {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return StatusAvailable
		}
	}
	for _, keyword := range v.SoldOut {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return StatusSoldOut
		}
	}
	return StatusUnknown
}
