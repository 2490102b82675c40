package session

import "strings"

// HistoryWindow is how many recent entries feed the next prompt.
const HistoryWindow = 3

// History keeps the most recent story exchanges, alternating narrative and
// player action. Older entries are dropped once maxSize is reached.
type History struct {
	entries []string
	maxSize int
}

// NewHistory returns an empty history holding at most maxSize entries.
func NewHistory(maxSize int) *History {
	if maxSize <= 0 {
		maxSize = HistoryWindow
	}
	return &History{
		entries: make([]string, 0, maxSize),
		maxSize: maxSize,
	}
}

// Add appends entries in order.
func (h *History) Add(entries ...string) {
	for _, entry := range entries {
		h.entries = append(h.entries, entry)
		if len(h.entries) > h.maxSize {
			h.entries = h.entries[len(h.entries)-h.maxSize:]
		}
	}
}

// Entries returns a copy of the retained entries, oldest first.
func (h *History) Entries() []string {
	if h == nil {
		return nil
	}
	result := make([]string, len(h.entries))
	copy(result, h.entries)
	return result
}

// Len reports the number of retained entries.
func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.entries)
}

// Context joins the retained entries with single spaces.
func (h *History) Context() string {
	if h == nil {
		return ""
	}
	return strings.Join(h.entries, " ")
}

func (h *History) clone() *History {
	if h == nil {
		return NewHistory(HistoryWindow)
	}
	c := NewHistory(h.maxSize)
	c.entries = append(c.entries, h.entries...)
	return c
}
