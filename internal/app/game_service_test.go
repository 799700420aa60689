package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aparna-hs/literally-invented/internal/app"
	"github.com/aparna-hs/literally-invented/internal/domain"
	"github.com/aparna-hs/literally-invented/internal/engine"
	"github.com/aparna-hs/literally-invented/internal/infra/memory"
)

func demoKeys() map[domain.GameID]map[string]string {
	return map[domain.GameID]map[string]string{
		domain.GameBluff: {
			"1-22":  "true",
			"2-26":  "true",
			"3-29":  "false",
			"4-54":  "true",
			"5-48":  "false",
			"6-74":  "true",
			"7-21":  "false",
			"8-19":  "true",
			"9-39":  "true",
			"10-47": "false",
			"11-35": "true",
			"12-32": "false",
			"13-41": "true",
		},
		domain.GameMatching: {
			"1":  "board-games",
			"2":  "retro-games",
			"3":  "dancing",
			"4":  "randr",
			"5":  "christmas",
			"6":  "weekly-bytes",
			"7":  "lunch-learn",
			"8":  "whiteboarding",
			"9":  "football",
			"10": "servicing-innovation",
		},
		domain.GameTimeline: {
			"timeline-order": "1,2,3,4,5",
		},
		domain.GameCrossword: {
			"1-across": "MAYA",
		},
	}
}

func newTestService() (*app.GameService, *memory.Judge) {
	judge := memory.NewJudge(memory.NewStaticKeys(demoKeys()))
	auth := memory.NewAuth([]memory.Credential{
		{Player: domain.Player{ID: 1, Username: "aparna", DisplayName: "Aparna"}, Password: "coffee123"},
	})
	sessions := memory.NewSessionStore(engine.NewReconciler(judge))
	return app.NewGameService(sessions, judge, auth, memory.NewScoreboard(judge, auth)), judge
}

func TestLoginAndResume(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	player, err := service.Login(ctx, "aparna", "coffee123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	snap, decision, err := service.Resume(ctx, player.ID, domain.GameBluff)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if decision.Verdict != engine.VerdictAllowed {
		t.Fatalf("expected allowed, got %s", decision.Verdict)
	}
	if snap.Phase != domain.PhaseInProgress || len(snap.Pending) != 13 {
		t.Fatalf("expected 13 pending, got phase=%s pending=%d", snap.Phase, len(snap.Pending))
	}
}

func TestResumeRequiresAuthentication(t *testing.T) {
	service, _ := newTestService()
	if _, _, err := service.Resume(context.Background(), 0, domain.GameBluff); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestResumeUnknownGame(t *testing.T) {
	service, _ := newTestService()
	if _, _, err := service.Resume(context.Background(), 1, "charades"); !errors.Is(err, domain.ErrUnknownGame) {
		t.Fatalf("expected ErrUnknownGame, got %v", err)
	}
}

func TestBluffPlayThrough(t *testing.T) {
	ctx := context.Background()
	service, judge := newTestService()

	snap, _, err := service.Resume(ctx, 1, domain.GameBluff)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}

	answers := demoKeys()[domain.GameBluff]
	for _, item := range snap.Pending {
		res, after, err := service.Submit(ctx, 1, domain.GameBluff, item.ID, answers[item.ID])
		if err != nil {
			t.Fatalf("submit %s: %v", item.ID, err)
		}
		if !res.Correct {
			t.Fatalf("expected %s correct", item.ID)
		}
		snap = after
	}

	if snap.Phase != domain.PhaseCompleted {
		t.Fatalf("expected completed, got %s", snap.Phase)
	}
	if snap.Final == nil || snap.Final.Score != 130 || snap.Final.CorrectCount != 13 || !snap.Final.Perfect {
		t.Fatalf("unexpected final: %+v", snap.Final)
	}

	final, err := judge.FinalizedScore(ctx, 1, domain.GameBluff)
	if err != nil || final == nil {
		t.Fatalf("expected persisted final, got %+v err=%v", final, err)
	}

	// A later resume lands on the terminal session and denies replay.
	snap, decision, err := service.Resume(ctx, 1, domain.GameBluff)
	if err != nil {
		t.Fatalf("resume after completion: %v", err)
	}
	if decision.Verdict != engine.VerdictDenied || snap.Phase != domain.PhaseCompleted {
		t.Fatalf("expected denied terminal resume, got verdict=%s phase=%s", decision.Verdict, snap.Phase)
	}
}

func TestMatchingBatchFlow(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	if _, _, err := service.Resume(ctx, 1, domain.GameMatching); err != nil {
		t.Fatalf("resume: %v", err)
	}

	// Per-item submissions are rejected for the batch game.
	if _, _, err := service.Submit(ctx, 1, domain.GameMatching, "1", "board-games"); !errors.Is(err, domain.ErrBatchOnly) {
		t.Fatalf("expected ErrBatchOnly, got %v", err)
	}

	answers := demoKeys()[domain.GameMatching]
	answers["3"] = "wrong"
	res, snap, err := service.SubmitBatch(ctx, 1, domain.GameMatching, answers)
	if err != nil {
		t.Fatalf("submit batch: %v", err)
	}
	if res.CorrectCount != 9 || res.Score != 90 {
		t.Fatalf("expected 9 correct for 90 points, got %+v", res)
	}
	if snap.Phase != domain.PhaseCompleted {
		t.Fatalf("one batch resolves the game, got %s", snap.Phase)
	}
	if snap.Final == nil || snap.Final.Perfect {
		t.Fatalf("expected imperfect final, got %+v", snap.Final)
	}
}

func TestSaveDraftRoundTrip(t *testing.T) {
	ctx := context.Background()
	service, judge := newTestService()

	if err := service.SaveDraft(ctx, 1, domain.GameCrossword, map[string]string{"1-across": "MA"}); err != nil {
		t.Fatalf("save draft: %v", err)
	}
	progress, err := judge.PartialProgress(ctx, 1, domain.GameCrossword)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if progress.Draft["1-across"] != "MA" {
		t.Fatalf("expected draft persisted, got %+v", progress.Draft)
	}

	if err := service.SaveDraft(ctx, 0, domain.GameCrossword, nil); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestCrosswordDraftRestoredOnResume(t *testing.T) {
	ctx := context.Background()
	judge := memory.NewJudge(memory.NewStaticKeys(demoKeys()))
	auth := memory.NewAuth([]memory.Credential{
		{Player: domain.Player{ID: 1, Username: "aparna", DisplayName: "Aparna"}, Password: "coffee123"},
	})
	sessions := memory.NewSessionStore(engine.NewReconciler(judge))
	service := app.NewGameService(sessions, judge, auth, memory.NewScoreboard(judge, auth))

	if _, _, err := service.Resume(ctx, 1, domain.GameCrossword); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if _, _, err := service.Submit(ctx, 1, domain.GameCrossword, "1-across", "MAYA"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	draft := map[string]string{
		"2-down":   "arnav",
		"3-across": "DE",
	}
	if err := service.SaveDraft(ctx, 1, domain.GameCrossword, draft); err != nil {
		t.Fatalf("save draft: %v", err)
	}

	// The live session mirrors the save immediately.
	snap, _, err := service.Resume(ctx, 1, domain.GameCrossword)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if snap.Draft["2-down"] != "ARNAV" {
		t.Fatalf("expected live draft ARNAV, got %+v", snap.Draft)
	}

	// A reload on another instance rebuilds the same state from the judge.
	sessions.Drop(1, domain.GameCrossword)
	snap, _, err = service.Resume(ctx, 1, domain.GameCrossword)
	if err != nil {
		t.Fatalf("resume after drop: %v", err)
	}
	if snap.Draft["2-down"] != "ARNAV" {
		t.Fatalf("expected restored draft ARNAV, got %+v", snap.Draft)
	}
	if _, ok := snap.Draft["3-across"]; ok {
		t.Fatalf("half-typed word must not survive the restore, got %+v", snap.Draft)
	}
	if _, ok := snap.Draft["1-across"]; ok {
		t.Fatalf("confirmed word belongs to answered records, got %+v", snap.Draft)
	}
	if len(snap.Answered) != 1 || snap.Answered[0].ItemID != "1-across" {
		t.Fatalf("expected 1-across answered, got %+v", snap.Answered)
	}
}

func TestLeaderboardAfterPlay(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()

	if _, _, err := service.Resume(ctx, 1, domain.GameTimeline); err != nil {
		t.Fatalf("resume: %v", err)
	}
	res, _, err := service.Submit(ctx, 1, domain.GameTimeline, "timeline-order", "1,2,3,4,5")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Correct {
		t.Fatalf("expected correct ordering")
	}

	lb, err := service.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(lb.Entries) != 1 || lb.Entries[0].TotalScore != 50 || lb.Entries[0].CompletedLevels != 1 {
		t.Fatalf("unexpected leaderboard: %+v", lb.Entries)
	}
}
