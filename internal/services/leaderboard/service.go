// Package leaderboard derives per-game best scores and pages through them.
package leaderboard

import (
	"context"
	"errors"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mcoot/arcadebot/internal/model"
	"github.com/mcoot/arcadebot/internal/storage"
	"github.com/mcoot/arcadebot/internal/telemetry"
)

var tracer = otel.Tracer("github.com/mcoot/arcadebot/internal/services/leaderboard")

// ErrEmpty is returned by Page when there is nothing to show
var ErrEmpty = errors.New("no scores to page through")

// SessionResolver maps a web session to its player
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (*model.Player, error)
}

// Service reads best scores. It never writes.
type Service struct {
	storage  storage.Storage
	sessions SessionResolver
}

// New creates a new leaderboard Service
func New(storage storage.Storage, sessions SessionResolver) *Service {
	return &Service{storage: storage, sessions: sessions}
}

// BestScores returns the session player's best score per game
func (s *Service) BestScores(ctx context.Context, sessionID string) ([]model.GameScore, error) {
	player, err := s.sessions.Resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.BestScoresForPlayer(ctx, player.ID)
}

// BestScoresForPlayer returns a player's best score per game
func (s *Service) BestScoresForPlayer(ctx context.Context, playerID model.PlayerID) ([]model.GameScore, error) {
	ctx, span := tracer.Start(ctx, "leaderboard.BestScores")
	defer span.End()
	span.SetAttributes(attribute.Int64("player.id", int64(playerID)))

	scores, err := s.storage.ListScores(ctx, playerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return Best(scores), nil
}

// Best keeps one row per game: the highest score, ties going to the most
// recent (and, at equal timestamps, the later submitted) row. The result is
// ordered by score descending, then game id ascending.
func Best(scores []model.GameScore) []model.GameScore {
	best := make(map[model.GameID]model.GameScore)
	for _, sc := range scores {
		cur, ok := best[sc.GameID]
		if !ok || sc.Score > cur.Score || (sc.Score == cur.Score && !sc.CreatedAt.Before(cur.CreatedAt)) {
			best[sc.GameID] = sc
		}
	}

	out := make([]model.GameScore, 0, len(best))
	for _, sc := range best {
		out = append(out, sc)
	}
	slices.SortFunc(out, func(a, b model.GameScore) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		return strings.Compare(string(a.GameID), string(b.GameID))
	})
	return out
}

// PageView is one entry of a cyclic pager and its neighbours
type PageView struct {
	Entry model.GameScore
	Index int
	Prev  int
	Next  int
	Total int
}

// Page selects entry index of scores, wrapping in both directions
func Page(scores []model.GameScore, index int) (PageView, error) {
	n := len(scores)
	if n == 0 {
		return PageView{}, ErrEmpty
	}
	effective := ((index % n) + n) % n
	return PageView{
		Entry: scores[effective],
		Index: effective,
		Prev:  (effective - 1 + n) % n,
		Next:  (effective + 1) % n,
		Total: n,
	}, nil
}
