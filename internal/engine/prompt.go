package engine

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed prompts/story.txt
var storyPrompt string

var storyTemplate = template.Must(template.New("story").Parse(storyPrompt))

// EmptyInventory is how an empty bag is written in prompts and how the model
// reports one back.
const EmptyInventory = "ไม่มี"

// OpeningContext asks for the protagonist's backstory, motivation, situation
// and starting items.
const OpeningContext = "เริ่มต้นเรื่องราว - แนะนำที่มาที่ไปของตัวละครหลัก ว่ามาจากไหน มาที่นี่ทำไม มีจุดประสงค์อะไร และอยู่ในสถานการณ์แบบไหน บอกสิ่งของเริ่มต้นที่มีติดตัว"

// PlayerPrefix introduces the player's action in a continuation context.
const PlayerPrefix = "ผู้เล่น: "

// EndingDirective is appended to the context once the turn limit is reached.
const EndingDirective = "\n[นี่คือตอนจบของเรื่อง! สร้างฉากจบที่สมบูรณ์ อธิบายให้ชัดเจนว่า:\n" +
	"1. เกิดอะไรขึ้นกับตัวละครหลักหลังจากการกระทำนี้\n" +
	"2. ตัวละครหลักมีชีวิตรอดหรือไม่ ถ้าตายให้บอกว่าตายอย่างไร ถ้ารอดให้บอกว่ารอดอย่างไรและมีชีวิตต่อไปอย่างไร\n" +
	"3. ผลที่ตามมาจากการตัดสินใจทั้งหมด\n" +
	"4. บทสรุปของเรื่องราวทั้งหมด\n" +
	"เขียนเป็นเรื่องราวที่ยาวและละเอียด 5-8 ประโยค\n" +
	"ไม่ต้องระบุ DIRECTIONS, OBJECTS, HINT]"

// PromptInput is everything the story prompt is rendered from.
type PromptInput struct {
	Theme      string
	Context    string
	References string
	Inventory  string
}

// BuildPrompt renders the story prompt. The output depends only on in.
func BuildPrompt(in PromptInput) (string, error) {
	var buf bytes.Buffer
	if err := storyTemplate.Execute(&buf, in); err != nil {
		return "", fmt.Errorf("failed to render story prompt: %w", err)
	}
	return buf.String(), nil
}

// InventoryText renders items for a prompt, or EmptyInventory when there are none.
func InventoryText(items []string) string {
	if len(items) == 0 {
		return EmptyInventory
	}
	return strings.Join(items, ", ")
}

// ContinuationContext joins the recent history with the player's action and,
// when ending is set, the ending directive.
func ContinuationContext(history, action string, ending bool) string {
	ctx := history + "\n" + PlayerPrefix + action
	if ending {
		ctx += EndingDirective
	}
	return ctx
}
