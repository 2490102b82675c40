package session

import (
	"reflect"
	"testing"
)

func TestHistoryKeepsMostRecentEntries(t *testing.T) {
	h := NewHistory(3)
	h.Add("opening", "narrative 1")
	h.Add("action 1", "narrative 2")

	want := []string{"narrative 1", "action 1", "narrative 2"}
	if got := h.Entries(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	if got := h.Context(); got != "narrative 1 action 1 narrative 2" {
		t.Errorf("Unexpected context %q", got)
	}
}

func TestHistoryEntriesIsACopy(t *testing.T) {
	h := NewHistory(3)
	h.Add("a")
	entries := h.Entries()
	entries[0] = "changed"
	if h.Entries()[0] != "a" {
		t.Errorf("Expected history to be unaffected by caller mutation")
	}
}

func TestNewHistoryDefaultsWindow(t *testing.T) {
	h := NewHistory(0)
	h.Add("1", "2", "3", "4")
	if h.Len() != HistoryWindow {
		t.Errorf("Expected %d entries, got %d", HistoryWindow, h.Len())
	}
}
