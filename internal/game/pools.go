// Package game holds the immutable build-time content of the four
// mini-games. Answer keys are deliberately absent: correctness lives
// server-side only.
package game

import (
	"github.com/aparna-hs/literally-invented/internal/domain"
	"github.com/aparna-hs/literally-invented/internal/engine"
)

// Colleague is one entry of the matching game: drop an invention onto its
// inventor.
type Colleague struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Invention is a draggable matching candidate.
type Invention struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// TimelineEntry is one orderable card of the timeline game. The proposed
// ordering of all entries is submitted as a single composite answer.
type TimelineEntry struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	FunFact string `json:"funFact"`
}

// Statement is one true/false card of the bluff game. The key pairs a person
// with a claimed fact; the server knows whether the pairing is genuine.
type Statement struct {
	PersonID      string `json:"personId"`
	DescriptionID string `json:"descriptionId"`
	PersonName    string `json:"personName"`
	Text          string `json:"text"`
}

// Key returns the stable item identifier for a statement.
func (s Statement) Key() string { return s.PersonID + "-" + s.DescriptionID }

// Colleagues lists the matching game targets.
func Colleagues() []Colleague {
	return []Colleague{
		{ID: "1", Name: "Aparna"},
		{ID: "2", Name: "Raiid"},
		{ID: "3", Name: "Ana"},
		{ID: "4", Name: "Harshad"},
		{ID: "5", Name: "Kara"},
		{ID: "6", Name: "Christian"},
		{ID: "7", Name: "Leigh"},
		{ID: "8", Name: "Emery"},
		{ID: "9", Name: "Ted"},
		{ID: "10", Name: "Miriam"},
	}
}

// Inventions lists the draggable matching candidates.
func Inventions() []Invention {
	return []Invention{
		{ID: "board-games", Name: "Board Games", Emoji: "🎲"},
		{ID: "retro-games", Name: "Retro Games", Emoji: "🕹️"},
		{ID: "dancing", Name: "Dancing", Emoji: "💃"},
		{ID: "randr", Name: "R&R", Emoji: "🎉"},
		{ID: "christmas", Name: "Christmas", Emoji: "🎄"},
		{ID: "weekly-bytes", Name: "Weekly Bytes", Emoji: "📰"},
		{ID: "lunch-learn", Name: "Lunch & Learn", Emoji: "🍽️"},
		{ID: "whiteboarding", Name: "White Boarding", Emoji: "📝"},
		{ID: "football", Name: "Football", Emoji: "⚽"},
		{ID: "servicing-innovation", Name: "Servicing Innovation", Emoji: "💡"},
	}
}

// TimelineEntries lists the cards to order from newest hire to longest
// tenured. Join dates are server-side only.
func TimelineEntries() []TimelineEntry {
	return []TimelineEntry{
		{ID: "1", Name: "Aparna", Role: "Tech Lead", FunFact: "Board game strategist extraordinaire"},
		{ID: "2", Name: "Raiid", Role: "Senior Developer", FunFact: "Retro gaming console collector"},
		{ID: "3", Name: "Ana", Role: "UX Designer", FunFact: "Salsa dancing champion"},
		{ID: "4", Name: "Harshad", Role: "Product Manager", FunFact: "R&R event planning mastermind"},
		{ID: "5", Name: "Christian", Role: "DevOps Engineer", FunFact: "Weekly Bytes newsletter curator"},
	}
}

// TimelineItemID is the single composite item the ordering game submits.
const TimelineItemID = "timeline-order"

// GridRows and GridCols bound the crossword layout.
const (
	GridRows = 14
	GridCols = 19
)

// CrosswordClues returns the crossword layout: clue placement, lengths, and
// prompts. Answers are never shipped with the layout.
func CrosswordClues() []engine.Clue {
	return []engine.Clue{
		{Number: 1, Direction: engine.Across, Prompt: "Went on vacation to Mauritius this year", Row: 0, Col: 3, Length: 4},
		{Number: 2, Direction: engine.Down, Prompt: "Mr. Event Coordinator", Row: 0, Col: 6, Length: 5},
		{Number: 3, Direction: engine.Across, Prompt: "Into Music Production", Row: 4, Col: 4, Length: 5},
		{Number: 3, Direction: engine.Down, Prompt: "Bollywood Music Lover", Row: 4, Col: 4, Length: 5},
		{Number: 4, Direction: engine.Across, Prompt: "Innovation Award Winner", Row: 7, Col: 4, Length: 7},
		{Number: 5, Direction: engine.Down, Prompt: "a Delhite who Plays Guitar", Row: 7, Col: 9, Length: 5},
		{Number: 6, Direction: engine.Across, Prompt: "Grew up on a farm", Row: 7, Col: 14, Length: 5},
		{Number: 7, Direction: engine.Down, Prompt: "The Leader. The Fighter. The Inspiration", Row: 7, Col: 15, Length: 6},
		{Number: 8, Direction: engine.Down, Prompt: "Can't disclose due to privacy issues :P", Row: 8, Col: 0, Length: 6},
		{Number: 9, Direction: engine.Across, Prompt: "Got married in February", Row: 9, Col: 5, Length: 7},
		{Number: 9, Direction: engine.Down, Prompt: "Son graduated HS this year", Row: 9, Col: 5, Length: 4},
		{Number: 10, Direction: engine.Across, Prompt: "Selfie Queen!", Row: 10, Col: 0, Length: 6},
		{Number: 11, Direction: engine.Across, Prompt: "Getting married in December", Row: 11, Col: 9, Length: 7},
		{Number: 12, Direction: engine.Across, Prompt: "Table Tennis Wizard", Row: 12, Col: 0, Length: 6},
	}
}

// Statements lists the bluff game cards in catalog order.
func Statements() []Statement {
	return []Statement{
		{PersonID: "1", DescriptionID: "22", PersonName: "Jidnesh (JD)", Text: "football fan and is writing an autobiography"},
		{PersonID: "2", DescriptionID: "26", PersonName: "Mohammed (Mo)", Text: "loves baking and watching F1"},
		{PersonID: "3", DescriptionID: "29", PersonName: "Mark", Text: "Has been a part of Hollywood movie crew"},
		{PersonID: "4", DescriptionID: "54", PersonName: "Daniella (Dani)", Text: "Has met the Queen of England and Rishi Sunak in a span of one week"},
		{PersonID: "5", DescriptionID: "48", PersonName: "Leigh", Text: "If not travelling, love to practise ballet and ceramic crafts"},
		{PersonID: "6", DescriptionID: "74", PersonName: "Charles", Text: "Can speak 5 sentences in Hindi"},
		{PersonID: "7", DescriptionID: "21", PersonName: "Nishtha", Text: "loves to play cricket and chess"},
		{PersonID: "8", DescriptionID: "19", PersonName: "Suraj", Text: "Always watches FRIENDS when eating"},
		{PersonID: "9", DescriptionID: "39", PersonName: "Ted", Text: "Plays golf as well as soccer"},
		{PersonID: "10", DescriptionID: "47", PersonName: "Jaymin", Text: "Has a graduate degree in Political Science"},
		{PersonID: "11", DescriptionID: "35", PersonName: "Aparna", Text: "Has read one Harry Potter Book in espanol"},
		{PersonID: "12", DescriptionID: "32", PersonName: "Laissa", Text: "Can fluently converse in 5 languages"},
		{PersonID: "13", DescriptionID: "41", PersonName: "Prerna", Text: "Can binge watch Naruto on repeat"},
	}
}

// MatchingVariant builds the engine variant for level 1.
func MatchingVariant() engine.Variant {
	colleagues := Colleagues()
	items := make([]domain.Item, 0, len(colleagues))
	for _, c := range colleagues {
		items = append(items, domain.Item{ID: c.ID, Prompt: c.Name, Shape: domain.ShapePairedID})
	}
	return engine.NewMatchingVariant(items)
}

// TimelineVariant builds the engine variant for level 2: a single composite
// ordering item with a three-attempt budget.
func TimelineVariant() engine.Variant {
	items := []domain.Item{
		{ID: TimelineItemID, Prompt: "Order colleagues from newest hire to longest tenured", Shape: domain.ShapeOrdering},
	}
	return engine.NewTimelineVariant(items)
}

// CrosswordVariant builds the engine variant for level 3: one item per clue.
func CrosswordVariant() engine.Variant {
	clues := CrosswordClues()
	items := make([]domain.Item, 0, len(clues))
	for _, clue := range clues {
		items = append(items, domain.Item{ID: clue.Key(), Prompt: clue.Prompt, Shape: domain.ShapeWord})
	}
	return crosswordVariant{Variant: engine.NewCrosswordVariant(items), clues: clues}
}

// crosswordVariant extends the generic variant with grid-aware draft
// restoration, so a resumed session rebuilds the letter grid the player left.
type crosswordVariant struct {
	engine.Variant
	clues []engine.Clue
}

var _ engine.DraftRestorer = crosswordVariant{}

// RestoreDraft replays the saved draft and then the confirmed words onto the
// grid, so confirmed letters win at crossings, and reads back every complete
// unconfirmed word. Entries that do not fill their clue are dropped.
func (v crosswordVariant) RestoreDraft(confirmed, draft map[string]string) map[string]string {
	g := engine.NewGrid(GridRows, GridCols, v.clues)
	g.Restore(draft)
	g.Restore(confirmed)

	out := make(map[string]string)
	for _, clue := range v.clues {
		if _, done := confirmed[clue.Key()]; done {
			continue
		}
		if w := g.Word(clue); len([]rune(w)) == clue.Length {
			out[clue.Key()] = w
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// BluffVariant builds the engine variant for level 4.
func BluffVariant() engine.Variant {
	statements := Statements()
	items := make([]domain.Item, 0, len(statements))
	for _, s := range statements {
		items = append(items, domain.Item{ID: s.Key(), Prompt: s.PersonName + ": " + s.Text, Shape: domain.ShapeBool})
	}
	return engine.NewBluffVariant(items)
}

// VariantFor maps a game ID to its variant.
func VariantFor(id domain.GameID) (engine.Variant, error) {
	switch id {
	case domain.GameMatching:
		return MatchingVariant(), nil
	case domain.GameTimeline:
		return TimelineVariant(), nil
	case domain.GameCrossword:
		return CrosswordVariant(), nil
	case domain.GameBluff:
		return BluffVariant(), nil
	}
	return nil, domain.ErrUnknownGame
}
