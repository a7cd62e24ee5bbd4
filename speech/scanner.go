// Package speech turns a streaming text buffer into complete sentences for
// an external speech-output queue, without waiting for the stream to finish.
package speech

import (
	"strings"
	"unicode"
)

// abbreviations that a terminating period does not close a sentence after.
var abbreviations = map[string]bool{
	"st":  true,
	"mr":  true,
	"mrs": true,
	"dr":  true,
	"ms":  true,
	"jr":  true,
	"sr":  true,
}

// Scanner consumes text deltas and emits complete sentences in input order.
// It is stateful across Feed calls and never re-emits a sentence. One
// Scanner serves exactly one streaming cycle; it is not safe for concurrent
// use and must not be shared across cycles.
type Scanner struct {
	emit func(sentence string)
	buf  []rune
}

// NewScanner creates a scanner that delivers completed sentences to emit.
func NewScanner(emit func(sentence string)) *Scanner {
	return &Scanner{emit: emit}
}

// Feed scans the delta since the last call and emits any sentences that
// close inside it. The caller passes only the new increment, never the full
// buffer.
func (s *Scanner) Feed(delta string) {
	for _, r := range delta {
		if isTerminator(r) && s.closesSentence() {
			s.buf = append(s.buf, r)
			s.flushSentence()
			continue
		}
		s.buf = append(s.buf, r)
	}
}

// Flush emits whatever is buffered as a final sentence. Called once when the
// stream finalizes so a trailing unterminated sentence is still spoken.
func (s *Scanner) Flush() {
	s.flushSentence()
}

func (s *Scanner) flushSentence() {
	sentence := strings.TrimSpace(string(s.buf))
	s.buf = s.buf[:0]
	if sentence != "" && s.emit != nil {
		s.emit(sentence)
	}
}

// closesSentence applies the abbreviation and decimal guards to the text
// buffered so far, deciding whether a terminator at this position ends the
// sentence.
func (s *Scanner) closesSentence() bool {
	if len(s.buf) == 0 {
		return false
	}
	prev := s.buf[len(s.buf)-1]
	// Digit right before the terminator guards decimals ("3.5", "3.14").
	if unicode.IsDigit(prev) {
		return false
	}
	if abbreviations[s.precedingWord()] {
		return false
	}
	return true
}

// precedingWord returns the lowercased run of letters ending the buffer.
func (s *Scanner) precedingWord() string {
	end := len(s.buf)
	start := end
	for start > 0 && unicode.IsLetter(s.buf[start-1]) {
		start--
	}
	return strings.ToLower(string(s.buf[start:end]))
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
