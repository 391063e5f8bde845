package room

import "chatroom-service/internal/models"

// historyRing is the bounded, FIFO-evicting message log. Insertion order is
// chronological order; once limit is reached the oldest entry is dropped for
// every append.
type historyRing struct {
	limit int
	msgs  []models.Message
}

func newHistoryRing(limit int) *historyRing {
	return &historyRing{limit: limit}
}

func (r *historyRing) append(msg models.Message) {
	r.msgs = append(r.msgs, msg)
	for len(r.msgs) > r.limit {
		r.msgs = r.msgs[1:]
	}
}

// tail returns a copy of the n most recent messages in chronological order.
func (r *historyRing) tail(n int) []models.Message {
	start := len(r.msgs) - n
	if start < 0 {
		start = 0
	}
	out := make([]models.Message, len(r.msgs)-start)
	copy(out, r.msgs[start:])
	return out
}

// remove deletes the message with the given id, preserving the order of the
// remaining entries.
func (r *historyRing) remove(id string) (models.Message, bool) {
	for i, msg := range r.msgs {
		if msg.ID == id {
			r.msgs = append(r.msgs[:i], r.msgs[i+1:]...)
			return msg, true
		}
	}
	return models.Message{}, false
}

func (r *historyRing) find(id string) (models.Message, bool) {
	for _, msg := range r.msgs {
		if msg.ID == id {
			return msg, true
		}
	}
	return models.Message{}, false
}

func (r *historyRing) clear() {
	r.msgs = nil
}

func (r *historyRing) len() int {
	return len(r.msgs)
}
