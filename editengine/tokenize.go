// Package editengine implements the sentence/word tokenizer and the
// structured edit-script applier described in spec §4.9.
package editengine

import (
	"strings"

	"github.com/filecoord/osnfs/helper"
)

// Sentences splits body into sentences: a maximal run of characters
// terminated by '.', '!', or '?' (terminator included), with surrounding
// whitespace trimmed after splitting. Residual input with no terminator
// forms a final sentence if non-empty after trimming (spec §4.9, GLOSSARY).
func Sentences(body string) []string {
	var out []string
	start := 0
	for i, r := range body {
		if strings.ContainsRune(helper.SentenceTerminators, r) {
			s := strings.TrimSpace(body[start : i+1])
			if s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if rest := strings.TrimSpace(body[start:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

// Words splits a sentence into words: maximal whitespace-free substrings
// (spec §4.9, GLOSSARY).
func Words(sentence string) []string {
	return strings.Fields(sentence)
}

// JoinWords rebuilds a sentence from its words, single-space separated.
func JoinWords(words []string) string {
	return strings.Join(words, " ")
}

// JoinSentences rebuilds a body from its sentences, single-space separated
// (spec §4.9 step 5).
func JoinSentences(sentences []string) string {
	return strings.Join(sentences, " ")
}

// Stats recomputes (word count, character count) from a body by
// retokenising it (spec §4.9 step 6, and the invariant in spec §8).
func Stats(body string) (words, chars int) {
	for _, s := range Sentences(body) {
		words += len(Words(s))
	}
	return words, len(body)
}
