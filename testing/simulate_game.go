package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/tatianab/story-adventure/internal/app"
	"github.com/tatianab/story-adventure/internal/config"
	"github.com/tatianab/story-adventure/internal/models"
	"github.com/tatianab/story-adventure/internal/oracle"
)

func main() {
	themeFlag := flag.String("theme", "", "theme id; random when empty")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// The engine plays "Game Master"; its logs stay quiet unless something breaks.
	a, err := app.New(ctx, cfg, app.NewLogger(os.Stderr, slog.LevelWarn, cfg.LogFormat))
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	defer a.Close()

	player := a.NewOracle(1.0)

	theme := *themeFlag
	if themes := a.Engine.Themes(); theme == "" && len(themes) > 0 {
		theme = themes[rand.IntN(len(themes))].ID
	}

	fmt.Printf("--- Opening (%s) ---\n", theme)
	turn, err := a.Engine.StartStory(ctx, theme)
	if err != nil {
		log.Fatalf("Failed to start story: %v", err)
	}
	printTurn(turn)

	var transcript []string
	transcript = append(transcript, "เรื่องเล่า: "+turn.Narrative)

	// The engine forces an ending at MaxTurns; the extra turns only guard
	// against a broken engine looping forever.
	for i := 0; i < a.Engine.MaxTurns()+2 && !turn.IsEnding; i++ {
		action := getPlayerAction(ctx, player, turn, transcript)
		fmt.Printf("--- Turn %d ---\nPlayer Action: %s\n", turn.Turn+1, action)

		turn, err = a.Engine.ContinueStory(ctx, turn.StoryID, action)
		if err != nil {
			fmt.Printf("Error processing turn: %v\n", err)
			break
		}
		printTurn(turn)
		transcript = append(transcript, "ผู้เล่น: "+action, "เรื่องเล่า: "+turn.Narrative)
	}

	if turn.IsEnding {
		fmt.Printf("Story Ended at turn %d (%s)\n", turn.Turn, turn.EndReason)
	}
}

func printTurn(t models.TurnResult) {
	fmt.Printf("Narrative: %s\n", t.Narrative)
	if len(t.Directions) > 0 {
		fmt.Printf("Directions: %s\n", strings.Join(t.Directions, ", "))
	}
	if len(t.Objects) > 0 {
		fmt.Printf("Objects: %s\n", strings.Join(t.Objects, ", "))
	}
	if t.Hint != "" {
		fmt.Printf("Hint: %s\n", t.Hint)
	}
	fmt.Printf("Inventory: %v\n\n", t.Inventory)
}

func getPlayerAction(ctx context.Context, player oracle.Oracle, t models.TurnResult, transcript []string) string {
	recent := transcript
	if len(recent) > 6 {
		recent = recent[len(recent)-6:]
	}

	prompt := fmt.Sprintf(`คุณกำลังเล่นเกมผจญภัยแบบข้อความ
เรื่องราวล่าสุด:
%s

ทิศทางที่ไปได้: %s
สิ่งของที่เห็น: %s
คำใบ้: %s
ของที่มีติดตัว: %s

คุณจะทำอะไรต่อไป? ตอบเป็นประโยคสั้นๆ ภาษาไทยเพียงประโยคเดียว ไม่ต้องอธิบายเพิ่ม`,
		strings.Join(recent, "\n"),
		orNone(t.Directions),
		orNone(t.Objects),
		t.Hint,
		orNone(t.Inventory),
	)

	action, err := player.Generate(ctx, prompt)
	action = strings.TrimSpace(action)
	if err != nil || action == "" {
		if len(t.Directions) > 0 {
			return "เดินไปทาง" + t.Directions[0]
		}
		return "มองไปรอบๆ"
	}
	if first, _, ok := strings.Cut(action, "\n"); ok {
		action = strings.TrimSpace(first)
	}
	return action
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "ไม่มี"
	}
	return strings.Join(items, ", ")
}
