package journal

import (
	"context"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/tatianab/story-adventure/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndTranscript(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	records := []models.TurnRecord{
		{StoryID: "s1", Turn: 2, Theme: "mystery", Action: "เปิดประตู", Narrative: "ประตูเปิด", Inventory: []string{"กุญแจ"}, Duration: 1500 * time.Millisecond, CreatedAt: at.Add(time.Minute)},
		{StoryID: "s1", Turn: 1, Theme: "mystery", Prompt: "p", Response: "NARRATIVE: เริ่ม", Narrative: "เริ่ม", CreatedAt: at},
		{StoryID: "s2", Turn: 1, Theme: "horror", Narrative: "อื่น", CreatedAt: at},
		{StoryID: "s1", Turn: 3, Theme: "mystery", Action: "วิ่ง", Narrative: "คุณวิ่งหนี", IsEnding: true, EndReason: "keyword", CreatedAt: at.Add(2 * time.Minute)},
	}
	for _, r := range records {
		if err := db.RecordTurn(ctx, r); err != nil {
			t.Fatalf("record turn: %v", err)
		}
	}

	got, err := db.Transcript(ctx, "s1")
	if err != nil {
		t.Fatalf("transcript: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 turns, got %d", len(got))
	}
	for i, want := range []int{1, 2, 3} {
		if got[i].Turn != want {
			t.Errorf("Expected turn %d at %d, got %d", want, i, got[i].Turn)
		}
	}

	first := got[0]
	if first.Prompt != "p" || first.Response != "NARRATIVE: เริ่ม" || !first.CreatedAt.Equal(at) {
		t.Errorf("Unexpected opening record %+v", first)
	}
	if !reflect.DeepEqual(first.Inventory, []string{}) {
		t.Errorf("Expected empty inventory, got %#v", first.Inventory)
	}
	if got[1].Duration != 1500*time.Millisecond || !reflect.DeepEqual(got[1].Inventory, []string{"กุญแจ"}) {
		t.Errorf("Unexpected second record %+v", got[1])
	}
	if !got[2].IsEnding || got[2].EndReason != "keyword" {
		t.Errorf("Expected ending record, got %+v", got[2])
	}
}

func TestTranscriptUnknownStory(t *testing.T) {
	db := openTestDB(t)
	got, err := db.Transcript(context.Background(), "nope")
	if err != nil {
		t.Fatalf("transcript: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty transcript, got %d rows", len(got))
	}
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	db, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.RecordTurn(ctx, models.TurnRecord{StoryID: "s", Turn: 1, Theme: "drama"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	db.Close()

	db, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	got, err := db.Transcript(ctx, "s")
	if err != nil || len(got) != 1 {
		t.Fatalf("Expected 1 row after reopen, got %d (%v)", len(got), err)
	}
}

func TestConcurrentWrites(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := db.RecordTurn(ctx, models.TurnRecord{StoryID: "busy", Turn: i, Theme: "scifi"}); err != nil {
				t.Errorf("record %d: %v", i, err)
			}
		}()
	}
	wg.Wait()

	got, err := db.Transcript(ctx, "busy")
	if err != nil {
		t.Fatalf("transcript: %v", err)
	}
	if len(got) != 10 {
		t.Errorf("Expected 10 rows, got %d", len(got))
	}
}
