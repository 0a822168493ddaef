package editengine

import (
	"strconv"
	"strings"

	"github.com/filecoord/osnfs/helper"
)

// WordEdit is one (word-index, word) insertion pair from an edit script
// (spec §4.9).
type WordEdit struct {
	WordIdx int
	Word    string
}

// EditScript is a parsed edit-script payload: one target sentence index
// plus an ordered list of word insertions (spec GLOSSARY: "Edit script").
type EditScript struct {
	SentenceIdx int
	Pairs       []WordEdit
}

// ParseEditScript decodes the wire format
// "<sentence-index>|<word-index>|<word>|<word-index>|<word>|..." (spec
// §4.9, §6). A single trailing "|" is tolerated (and stripped) to match
// the representative encodings in spec §6, which all end their repeated
// fields with a trailing delimiter. Because "|" is the field separator, a
// word containing "|" cannot be represented (spec §9: "edit-script
// injectivity"): its pieces are read as further fields, so the script is
// rejected as malformed unless those pieces happen to form valid
// (word-index, word) pairs, in which case they are parsed as such.
func ParseEditScript(raw string) (EditScript, error) {
	tokens := strings.Split(raw, "|")
	if len(tokens) > 0 && tokens[len(tokens)-1] == "" {
		tokens = tokens[:len(tokens)-1]
	}
	if len(tokens) == 0 {
		return EditScript{}, helper.ErrInvalidParameters
	}

	sentenceIdx, err := strconv.Atoi(tokens[0])
	if err != nil || sentenceIdx < 0 {
		return EditScript{}, helper.ErrInvalidParameters
	}

	rest := tokens[1:]
	if len(rest)%2 != 0 {
		return EditScript{}, helper.ErrInvalidParameters
	}

	script := EditScript{SentenceIdx: sentenceIdx}
	for i := 0; i < len(rest); i += 2 {
		wordIdx, err := strconv.Atoi(rest[i])
		if err != nil || wordIdx < 0 {
			return EditScript{}, helper.ErrInvalidParameters
		}
		script.Pairs = append(script.Pairs, WordEdit{WordIdx: wordIdx, Word: rest[i+1]})
	}
	return script, nil
}

// Encode renders an EditScript back to its wire form, trailing-delimited
// to match spec §6's representative encodings.
func (s EditScript) Encode() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(s.SentenceIdx))
	b.WriteByte('|')
	for _, p := range s.Pairs {
		b.WriteString(strconv.Itoa(p.WordIdx))
		b.WriteByte('|')
		b.WriteString(p.Word)
		b.WriteByte('|')
	}
	return b.String()
}
