package engine

import (
	"strings"
	"time"

	"iask/model"
)

// publisher owns the authoritative content buffer for one streaming cycle
// and commits it to the active turn with throttled visibility: subscribers
// see coalesced updates, but the buffer always equals the full concatenated
// stream regardless of publish cadence.
//
// One publisher serves one cycle and is only touched from that cycle's
// goroutine.
type publisher struct {
	conv     *model.Conversation
	turnID   string
	interval time.Duration
	notify   func(turnID string)

	buf       strings.Builder
	committed int
	last      time.Time
}

func newPublisher(conv *model.Conversation, turnID string, interval time.Duration, notify func(string)) *publisher {
	return &publisher{
		conv:     conv,
		turnID:   turnID,
		interval: interval,
		notify:   notify,
	}
}

// Append buffers a text delta and commits when the throttle window elapsed.
func (p *publisher) Append(delta string) {
	p.buf.WriteString(delta)
	if p.interval <= 0 || time.Since(p.last) >= p.interval {
		p.commit()
	}
}

// Flush commits any buffered text that has not been made visible yet.
func (p *publisher) Flush() {
	p.commit()
}

// Content returns the full accumulated stream so far.
func (p *publisher) Content() string {
	return p.buf.String()
}

func (p *publisher) commit() {
	full := p.buf.String()
	if len(full) > p.committed {
		p.conv.AppendContent(p.turnID, full[p.committed:])
		p.committed = len(full)
		if p.notify != nil {
			p.notify(p.turnID)
		}
	}
	p.last = time.Now()
}
