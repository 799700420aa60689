package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aparna-hs/literally-invented/internal/domain"
)

// Credential pairs a demo player with their password. The lookup is a direct
// equality check, matching the production table's (unhashed) contract.
type Credential struct {
	Player   domain.Player
	Password string
}

// Auth is an in-memory credential store for tests and demo mode.
type Auth struct {
	mu    sync.RWMutex
	users map[string]Credential
}

func NewAuth(creds []Credential) *Auth {
	users := make(map[string]Credential, len(creds))
	for _, c := range creds {
		users[c.Player.Username] = c
	}
	return &Auth{users: users}
}

func (a *Auth) Authenticate(_ context.Context, username, password string) (domain.Player, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	cred, ok := a.users[username]
	if !ok || cred.Password != password {
		return domain.Player{}, domain.ErrInvalidCredentials
	}
	return cred.Player, nil
}

// Players lists the known players for scoreboard assembly.
func (a *Auth) Players() []domain.Player {
	a.mu.RLock()
	defer a.mu.RUnlock()
	players := make([]domain.Player, 0, len(a.users))
	for _, cred := range a.users {
		players = append(players, cred.Player)
	}
	return players
}

// Scoreboard aggregates finalized and in-progress points across all players,
// mirroring the single-query contract of the Postgres leaderboard.
type Scoreboard struct {
	judge *Judge
	auth  *Auth
}

func NewScoreboard(judge *Judge, auth *Auth) *Scoreboard {
	return &Scoreboard{judge: judge, auth: auth}
}

func (sb *Scoreboard) Leaderboard(_ context.Context) (domain.Leaderboard, error) {
	sb.judge.mu.Lock()
	defer sb.judge.mu.Unlock()

	games := []domain.GameID{domain.GameMatching, domain.GameTimeline, domain.GameCrossword, domain.GameBluff}
	entries := make([]domain.LeaderboardEntry, 0)
	for _, player := range sb.auth.Players() {
		entry := domain.LeaderboardEntry{UserID: player.ID, DisplayName: player.DisplayName}
		for _, gameID := range games {
			key := stateKey{player.ID, gameID}
			if final, ok := sb.judge.finals[key]; ok {
				entry.TotalScore += final.Score
				entry.CompletedLevels++
				continue
			}
			if state, ok := sb.judge.states[key]; ok {
				score, _ := state.totals(gameID)
				entry.TotalScore += score
			}
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].DisplayName < entries[j].DisplayName
	})

	return domain.Leaderboard{Entries: entries, UpdatedAt: time.Now()}, nil
}
