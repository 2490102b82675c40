package engine

import "testing"

func TestEndingKeywordMatch(t *testing.T) {
	tests := []struct {
		narrative string
		want      bool
	}{
		{"ในที่สุดตัวละครก็ตายแล้ว", true},
		{"คุณหลบหนีออกมาได้ทันเวลา", true},
		{"คุณตัดสินใจยอมแพ้", true},
		{"คุณเดินเข้าไปในห้องมืด", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := EndingKeywordMatch(tt.narrative); got != tt.want {
			t.Errorf("EndingKeywordMatch(%q) = %v, want %v", tt.narrative, got, tt.want)
		}
	}
}

func TestDecideEnding(t *testing.T) {
	tests := []struct {
		name      string
		turn      int
		narrative string
		want      Ending
	}{
		{"early turn", 2, "คุณเปิดประตู", Continue},
		{"keyword", 5, "คุณตายแล้ว", ForceEndKeyword},
		{"turn limit", 15, "คุณเปิดประตู", ForceEndTurnLimit},
		{"turn limit wins over keyword", 15, "คุณตายแล้ว", ForceEndTurnLimit},
		{"past the limit", 16, "", ForceEndTurnLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecideEnding(tt.turn, DefaultMaxTurns, tt.narrative)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if got.Ended() != (tt.want != Continue) {
				t.Errorf("Ended() = %v for %v", got.Ended(), got)
			}
		})
	}
}

func TestEndingString(t *testing.T) {
	if Continue.String() != "continue" || ForceEndTurnLimit.String() != "turn_limit" || ForceEndKeyword.String() != "keyword" {
		t.Errorf("Unexpected names: %s %s %s", Continue, ForceEndTurnLimit, ForceEndKeyword)
	}
}
