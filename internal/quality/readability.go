package quality

import (
	"strings"
	"unicode"
)

// defaultReadability is returned for content too short to score meaningfully.
// It sits in the "fairly easy" band so thin inputs are neither rewarded nor
// punished by the readability penalty.
const defaultReadability = 60.0

// minWordsForReadability guards the Flesch math against divide-by-zero and
// nonsense averages on trivial inputs.
const minWordsForReadability = 10

// FleschReadingEase approximates the Flesch Reading Ease score for the
// content: 206.835 - 1.015*(words/sentence) - 84.6*(syllables/word).
// The result is clamped to [0, 100].
func FleschReadingEase(content string) float64 {
	words := splitWords(content)
	if len(words) < minWordsForReadability {
		return defaultReadability
	}

	sentences := countSentences(content)
	if sentences == 0 {
		sentences = 1
	}

	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	wordsPerSentence := float64(len(words)) / float64(sentences)
	syllablesPerWord := float64(syllables) / float64(len(words))

	score := 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func splitWords(content string) []string {
	return strings.FieldsFunc(content, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func countSentences(content string) int {
	count := 0
	for _, r := range content {
		switch r {
		case '.', '!', '?':
			count++
		}
	}
	return count
}

// countSyllables estimates syllables by counting vowel groups, with a naive
// adjustment for a trailing silent "e". Every word counts at least one.
func countSyllables(word string) int {
	word = strings.ToLower(word)
	groups := 0
	prevVowel := false
	for _, r := range word {
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !prevVowel {
			groups++
		}
		prevVowel = vowel
	}
	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && groups > 1 {
		groups--
	}
	if groups < 1 {
		groups = 1
	}
	return groups
}
