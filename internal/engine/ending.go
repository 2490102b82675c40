package engine

import "strings"

// Ending is the outcome of the ending policy for one turn.
type Ending int

const (
	Continue Ending = iota
	ForceEndTurnLimit
	ForceEndKeyword
)

func (e Ending) String() string {
	switch e {
	case Continue:
		return "continue"
	case ForceEndTurnLimit:
		return "turn_limit"
	case ForceEndKeyword:
		return "keyword"
	default:
		return "unknown"
	}
}

// Ended reports whether e finishes the story.
func (e Ending) Ended() bool { return e != Continue }

// EndingKeywords are phrases that mean the story is over: death, victory,
// defeat, escape, capture, surrender or quitting.
var EndingKeywords = []string{
	"ตายแล้ว", "เสียชีวิตแล้ว", "สิ้นใจแล้ว", "หมดลมหายใจ",
	"จบเรื่อง", "จบลง", "จบเกม",
	"ชัยชนะครั้งยิ่งใหญ่", "ประสบความสำเร็จในที่สุด",
	"พ่ายแพ้อย่างราบคาบ", "ล้มเหลวอย่างสิ้นเชิง",
	"รอดชีวิตมาได้", "หนีออกมาได้สำเร็จ", "หลบหนีออกมาได้",
	"ถูกจับได้", "ติดกับดักแล้ว", "ไม่มีทางออกอีกต่อไป",
	"ยอมแพ้", "ยอมจำนน", "ยอมจนน", "ยอมพ่ายแพ้",
	"หนีกลับบ้าน", "หนีกลับ", "วิ่งหนี", "ถอยหนี", "หนีไป",
	"ล้มเลิก", "เลิกเล่น", "ไม่เล่นแล้ว", "เลิกทำ",
}

var foldedKeywords = func() []string {
	out := make([]string, len(EndingKeywords))
	for i, k := range EndingKeywords {
		out[i] = fold(k)
	}
	return out
}()

// EndingKeywordMatch reports whether narrative contains any ending keyword,
// ignoring case.
func EndingKeywordMatch(narrative string) bool {
	n := fold(narrative)
	for _, k := range foldedKeywords {
		if strings.Contains(n, k) {
			return true
		}
	}
	return false
}

// DecideEnding applies the ending policy. The turn limit wins over keywords.
func DecideEnding(turn, maxTurns int, narrative string) Ending {
	if turn >= maxTurns {
		return ForceEndTurnLimit
	}
	if EndingKeywordMatch(narrative) {
		return ForceEndKeyword
	}
	return Continue
}
