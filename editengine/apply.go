package editengine

import (
	"github.com/filecoord/osnfs/helper"
)

// Apply applies a parsed edit script to body and returns the rebuilt body
// (spec §4.9 steps 1-5). It validates every step before mutating anything,
// so a commit that fails partway (an out-of-range word index) aborts with
// the original body untouched (spec §8: "aborts the entire commit
// atomically").
func Apply(body string, script EditScript) (string, error) {
	sentences := Sentences(body)
	n := len(sentences)

	if script.SentenceIdx > n {
		return "", helper.ErrInvalidIndex
	}

	working := ""
	if script.SentenceIdx < n {
		working = sentences[script.SentenceIdx]
	}

	for _, pair := range script.Pairs {
		words := Words(working)
		m := len(words)
		if pair.WordIdx > m {
			return "", helper.ErrInvalidIndex
		}
		words = insertWord(words, pair.WordIdx, pair.Word)
		working = JoinWords(words)
	}

	// A word insertion containing a terminator splits the working
	// sentence into multiple sentences, which replace the original
	// in place and shift subsequent indices (spec §4.9 step 4, §8).
	replacement := Sentences(working)

	removeEnd := script.SentenceIdx
	if script.SentenceIdx < n {
		removeEnd = script.SentenceIdx + 1
	}

	newSentences := make([]string, 0, len(sentences)+len(replacement))
	newSentences = append(newSentences, sentences[:script.SentenceIdx]...)
	newSentences = append(newSentences, replacement...)
	newSentences = append(newSentences, sentences[removeEnd:]...)

	return JoinSentences(newSentences), nil
}

// insertWord inserts word at position idx within words, shifting later
// words right (spec §4.9 step 3). idx == len(words) appends.
func insertWord(words []string, idx int, word string) []string {
	out := make([]string, 0, len(words)+1)
	out = append(out, words[:idx]...)
	out = append(out, word)
	out = append(out, words[idx:]...)
	return out
}
