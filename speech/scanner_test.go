package speech

import (
	"reflect"
	"strings"
	"testing"
)

func collectSentences(feed func(s *Scanner)) []string {
	var got []string
	s := NewScanner(func(sentence string) { got = append(got, sentence) })
	feed(s)
	return got
}

func TestScannerSentences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		flush bool
		want  []string
	}{
		{
			name:  "two plain sentences",
			input: "Hello there. How are you?",
			want:  []string{"Hello there."},
		},
		{
			name:  "trailing sentence needs flush",
			input: "Hello there. How are you?",
			flush: true,
			want:  []string{"Hello there.", "How are you?"},
		},
		{
			name:  "abbreviation does not close",
			input: "Dr. Smith is here. He left at 3.5 ft.",
			flush: true,
			want:  []string{"Dr. Smith is here.", "He left at 3.5 ft."},
		},
		{
			name:  "decimal does not close",
			input: "Pi is 3.14 roughly. Neat!",
			flush: true,
			want:  []string{"Pi is 3.14 roughly.", "Neat!"},
		},
		{
			name:  "exclamation and question",
			input: "Stop! Why? Because.",
			want:  []string{"Stop!", "Why?", "Because."},
		},
		{
			name:  "mixed-case abbreviation",
			input: "Ask MRS. Jones today. Done.",
			want:  []string{"Ask MRS. Jones today.", "Done."},
		},
		{
			name:  "empty input",
			input: "",
			flush: true,
			want:  nil,
		},
		{
			name:  "whitespace only flush",
			input: "   ",
			flush: true,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collectSentences(func(s *Scanner) {
				s.Feed(tt.input)
				if tt.flush {
					s.Flush()
				}
			})
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("sentences = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScannerGranularityInvariance(t *testing.T) {
	input := "Dr. Smith is here. He left at 3.5 ft. See you!"

	whole := collectSentences(func(s *Scanner) {
		s.Feed(input)
		s.Flush()
	})
	charByChar := collectSentences(func(s *Scanner) {
		for _, c := range strings.Split(input, "") {
			s.Feed(c)
		}
		s.Flush()
	})

	if !reflect.DeepEqual(whole, charByChar) {
		t.Errorf("whole feed %q != char-by-char feed %q", whole, charByChar)
	}
	if len(whole) != 3 {
		t.Errorf("got %d sentences, want 3: %q", len(whole), whole)
	}
}

func TestScannerNeverReemits(t *testing.T) {
	got := collectSentences(func(s *Scanner) {
		s.Feed("One.")
		s.Feed(" Two.")
		s.Flush()
		s.Flush() // second flush on empty buffer emits nothing
	})
	want := []string{"One.", "Two."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sentences = %q, want %q", got, want)
	}
}

func TestQueuePreservesOrder(t *testing.T) {
	spoken := make(chan string, 10)
	q := NewQueue(func(sentence string) { spoken <- sentence })

	q.Enqueue("first")
	q.Enqueue("second")
	q.Enqueue("third")

	for _, want := range []string{"first", "second", "third"} {
		got := <-spoken
		if got != want {
			t.Errorf("spoke %q, want %q", got, want)
		}
	}
}

func TestQueueClearDropsPending(t *testing.T) {
	entered := make(chan struct{})
	block := make(chan struct{})
	var spoken []string
	done := make(chan struct{}, 10)

	q := NewQueue(func(sentence string) {
		entered <- struct{}{}
		<-block
		spoken = append(spoken, sentence)
		done <- struct{}{}
	})

	q.Enqueue("first")
	<-entered // "first" is in flight before we clear
	q.Enqueue("second")
	q.Clear()
	close(block)
	<-done

	// Only the in-flight sentence survives a clear.
	if len(spoken) != 1 || spoken[0] != "first" {
		t.Errorf("spoken = %q, want just [first]", spoken)
	}
}
