package engine

import (
	"strings"
	"testing"
)

func TestBuildPromptIsPure(t *testing.T) {
	in := PromptInput{
		Theme:      "mystery",
		Context:    OpeningContext,
		References: "ลึกลับ: ในคฤหาสน์เก่าแก่",
		Inventory:  InventoryText(nil),
	}
	first, err := BuildPrompt(in)
	if err != nil {
		t.Fatalf("BuildPrompt failed: %v", err)
	}
	second, _ := BuildPrompt(in)
	if first != second {
		t.Fatal("Expected identical prompts for identical input")
	}

	for _, want := range []string{
		"ธีม: mystery",
		"บริบทเรื่อง: " + OpeningContext,
		"สิ่งของในกระเป๋า: ไม่มี",
		"ลึกลับ: ในคฤหาสน์เก่าแก่",
		"NARRATIVE:", "DIRECTIONS:", "OBJECTS:", "HINT:", "INVENTORY:",
	} {
		if !strings.Contains(first, want) {
			t.Errorf("Prompt missing %q", want)
		}
	}

	order := []int{
		strings.Index(first, "NARRATIVE:"),
		strings.Index(first, "DIRECTIONS:"),
		strings.Index(first, "OBJECTS:"),
		strings.Index(first, "HINT:"),
		strings.LastIndex(first, "INVENTORY:"),
	}
	for i := 1; i < len(order); i++ {
		if order[i] < order[i-1] {
			t.Fatalf("Output fields out of order: %v", order)
		}
	}
}

func TestInventoryText(t *testing.T) {
	if got := InventoryText(nil); got != EmptyInventory {
		t.Errorf("Expected sentinel, got %q", got)
	}
	if got := InventoryText([]string{"ดาบ", "คบเพลิง"}); got != "ดาบ, คบเพลิง" {
		t.Errorf("Unexpected inventory text %q", got)
	}
}

func TestContinuationContext(t *testing.T) {
	got := ContinuationContext("a b c", "เปิดประตู", false)
	if got != "a b c\nผู้เล่น: เปิดประตู" {
		t.Errorf("Unexpected context %q", got)
	}
	ending := ContinuationContext("a b c", "เปิดประตู", true)
	if !strings.HasSuffix(ending, EndingDirective) {
		t.Errorf("Expected ending directive, got %q", ending)
	}
}
