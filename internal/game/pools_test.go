package game_test

import (
	"errors"
	"testing"

	"github.com/aparna-hs/literally-invented/internal/domain"
	"github.com/aparna-hs/literally-invented/internal/engine"
	"github.com/aparna-hs/literally-invented/internal/game"
)

func TestVariantForMapsEveryGame(t *testing.T) {
	for _, id := range []domain.GameID{domain.GameMatching, domain.GameTimeline, domain.GameCrossword, domain.GameBluff} {
		v, err := game.VariantFor(id)
		if err != nil {
			t.Fatalf("variant for %s: %v", id, err)
		}
		if v.Game() != id {
			t.Fatalf("variant %s reports game %s", id, v.Game())
		}
		if back, ok := domain.GameForLevel(id.Level()); !ok || back != id {
			t.Fatalf("level round-trip failed for %s", id)
		}
	}
	if _, err := game.VariantFor("charades"); !errors.Is(err, domain.ErrUnknownGame) {
		t.Fatalf("expected ErrUnknownGame, got %v", err)
	}
}

func TestPoolShapes(t *testing.T) {
	cases := []struct {
		id    domain.GameID
		size  int
		shape domain.AnswerShape
	}{
		{domain.GameMatching, 10, domain.ShapePairedID},
		{domain.GameTimeline, 1, domain.ShapeOrdering},
		{domain.GameCrossword, 14, domain.ShapeWord},
		{domain.GameBluff, 13, domain.ShapeBool},
	}
	for _, tc := range cases {
		v, err := game.VariantFor(tc.id)
		if err != nil {
			t.Fatalf("variant for %s: %v", tc.id, err)
		}
		pool := v.Pool()
		if len(pool) != tc.size {
			t.Fatalf("%s: expected %d items, got %d", tc.id, tc.size, len(pool))
		}
		seen := make(map[string]bool, len(pool))
		for _, item := range pool {
			if item.Shape != tc.shape {
				t.Fatalf("%s: item %s has shape %v", tc.id, item.ID, item.Shape)
			}
			if seen[item.ID] {
				t.Fatalf("%s: duplicate item id %s", tc.id, item.ID)
			}
			seen[item.ID] = true
		}
	}
}

func TestVariantRules(t *testing.T) {
	matching, _ := game.VariantFor(domain.GameMatching)
	if !matching.Batch() || !matching.LockOnIncorrect() || matching.AttemptCap() != 0 {
		t.Fatalf("unexpected matching rules")
	}
	timeline, _ := game.VariantFor(domain.GameTimeline)
	if timeline.Batch() || timeline.LockOnIncorrect() || timeline.AttemptCap() != 3 {
		t.Fatalf("unexpected timeline rules")
	}
	crossword, _ := game.VariantFor(domain.GameCrossword)
	if crossword.Batch() || crossword.LockOnIncorrect() || crossword.AttemptCap() != 0 {
		t.Fatalf("unexpected crossword rules")
	}
	bluff, _ := game.VariantFor(domain.GameBluff)
	if bluff.Batch() || !bluff.LockOnIncorrect() || bluff.AttemptCap() != 0 {
		t.Fatalf("unexpected bluff rules")
	}
}

func TestCrosswordLayoutFitsGrid(t *testing.T) {
	for _, clue := range game.CrosswordClues() {
		endRow, endCol := clue.Row, clue.Col
		if clue.Direction == engine.Across {
			endCol += clue.Length - 1
		} else {
			endRow += clue.Length - 1
		}
		if clue.Row < 0 || clue.Col < 0 || endRow >= game.GridRows || endCol >= game.GridCols {
			t.Fatalf("clue %s overflows the grid: %+v", clue.Key(), clue)
		}
	}
}

func TestCrosswordClueKeysMatchItems(t *testing.T) {
	v, _ := game.VariantFor(domain.GameCrossword)
	items := make(map[string]bool, len(v.Pool()))
	for _, item := range v.Pool() {
		items[item.ID] = true
	}
	for _, clue := range game.CrosswordClues() {
		if !items[clue.Key()] {
			t.Fatalf("clue %s has no item", clue.Key())
		}
	}
}

func TestCrosswordRestoreDraftRebuildsGrid(t *testing.T) {
	v, ok := game.CrosswordVariant().(engine.DraftRestorer)
	if !ok {
		t.Fatalf("crossword variant must restore drafts")
	}

	// 1-across and 2-down share the cell at row 0, col 6. The draft guessed
	// the crossing letter wrong; the confirmed word corrects it. The
	// half-typed 3-across never filled its clue and is dropped.
	confirmed := map[string]string{"1-across": "MAYA"}
	draft := map[string]string{
		"2-down":   "xrjun",
		"3-across": "DE",
	}

	out := v.RestoreDraft(confirmed, draft)
	if out["2-down"] != "ARJUN" {
		t.Fatalf("expected crossing letter corrected to ARJUN, got %q", out["2-down"])
	}
	if _, ok := out["3-across"]; ok {
		t.Fatalf("incomplete draft word must be dropped, got %+v", out)
	}
	if _, ok := out["1-across"]; ok {
		t.Fatalf("confirmed words belong to answered records, not the draft")
	}
	if len(out) != 1 {
		t.Fatalf("expected exactly one restored word, got %+v", out)
	}
}

func TestStatementKeys(t *testing.T) {
	seen := make(map[string]bool)
	for _, s := range game.Statements() {
		key := s.Key()
		if seen[key] {
			t.Fatalf("duplicate statement key %s", key)
		}
		seen[key] = true
	}
	if !seen["1-22"] || !seen["13-41"] {
		t.Fatalf("expected catalog endpoints present, got %v", seen)
	}
}

func TestTimelinePoolIsSingleComposite(t *testing.T) {
	v, _ := game.VariantFor(domain.GameTimeline)
	if len(v.Pool()) != 1 || v.Pool()[0].ID != game.TimelineItemID {
		t.Fatalf("expected single composite item, got %+v", v.Pool())
	}
	if len(game.TimelineEntries()) != 5 {
		t.Fatalf("expected 5 orderable entries, got %d", len(game.TimelineEntries()))
	}
}
