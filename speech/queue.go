package speech

import "sync"

// SpeakFunc performs the actual speech output for one sentence.
type SpeakFunc func(sentence string)

// Queue delivers sentences to a SpeakFunc strictly in enqueue order.
// Enqueue is fire-and-forget: it never blocks the streaming path on slow
// speech output.
type Queue struct {
	mu      sync.Mutex
	pending []string
	active  bool
	speak   SpeakFunc
}

// NewQueue creates a queue draining into speak.
func NewQueue(speak SpeakFunc) *Queue {
	return &Queue{speak: speak}
}

// Enqueue adds a sentence and starts a drain goroutine if none is running.
func (q *Queue) Enqueue(sentence string) {
	q.mu.Lock()
	q.pending = append(q.pending, sentence)
	if q.active {
		q.mu.Unlock()
		return
	}
	q.active = true
	q.mu.Unlock()
	go q.drain()
}

// Clear drops every sentence not yet spoken.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.pending = nil
	q.mu.Unlock()
}

func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.active = false
			q.mu.Unlock()
			return
		}
		next := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		if q.speak != nil {
			q.speak(next)
		}
	}
}
