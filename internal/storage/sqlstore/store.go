package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mcoot/arcadebot/internal/model"
	"github.com/mcoot/arcadebot/internal/storage"
)

// Store is a database/sql implementation of the storage interface. Each
// operation borrows one pooled connection for a single transaction and
// returns it on every path.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps an open database. The schema must already be migrated.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Ensure Store implements the interface
var _ storage.Storage = (*Store)(nil)

// Close closes the underlying database handle
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the handle for tests and tooling
func (s *Store) DB() *sql.DB {
	return s.db
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// withTx runs fn inside a transaction. The transaction is rolled back unless
// fn returns nil and the commit succeeds.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", s.dialect.Name(), err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", s.dialect.Name(), err)
	}
	return nil
}

func (s *Store) wrap(op string, err error) error {
	return fmt.Errorf("%s: %s: %w", s.dialect.Name(), op, err)
}

func (s *Store) playerExists(ctx context.Context, tx *sql.Tx, id model.PlayerID) (bool, error) {
	var found int
	err := tx.QueryRowContext(ctx, s.dialect.Rebind(`SELECT 1 FROM players WHERE id = ?`), int64(id)).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, s.wrap("check player", err)
	}
	return true, nil
}

// Player operations

func (s *Store) SavePlayer(ctx context.Context, player *model.Player) error {
	_, err := s.db.ExecContext(ctx, s.dialect.Rebind(
		`INSERT INTO players (id, display_name, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET display_name = excluded.display_name`),
		int64(player.ID), player.DisplayName, toMillis(player.CreatedAt),
	)
	if err != nil {
		return s.wrap("save player", err)
	}
	return nil
}

func (s *Store) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var (
		name    string
		created int64
	)
	err := s.db.QueryRowContext(ctx, s.dialect.Rebind(
		`SELECT display_name, created_at FROM players WHERE id = ?`), int64(id),
	).Scan(&name, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPlayerNotFound
	}
	if err != nil {
		return nil, s.wrap("get player", err)
	}
	return &model.Player{ID: id, DisplayName: name, CreatedAt: fromMillis(created)}, nil
}

// dependentTables are cleared before the players row on reset
var dependentTables = []string{
	"user_achievements",
	"game_scores",
	"sessions",
	"handoff_tokens",
	"reward_balances",
}

func (s *Store) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range dependentTables {
			if _, err := tx.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM `+table+` WHERE player_id = ?`), int64(id)); err != nil {
				return s.wrap("delete "+table, err)
			}
		}
		if _, err := tx.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM players WHERE id = ?`), int64(id)); err != nil {
			return s.wrap("delete player", err)
		}
		return nil
	})
}

func (s *Store) GetBalance(ctx context.Context, id model.PlayerID) (*model.RewardBalance, error) {
	balance := &model.RewardBalance{PlayerID: id}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		ok, err := s.playerExists(ctx, tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrPlayerNotFound
		}
		if _, err := tx.ExecContext(ctx, s.dialect.Rebind(
			`INSERT INTO reward_balances (player_id, coins, xp, level) VALUES (?, 0, 0, 1)
			 ON CONFLICT (player_id) DO NOTHING`), int64(id),
		); err != nil {
			return s.wrap("create balance", err)
		}
		err = tx.QueryRowContext(ctx, s.dialect.Rebind(
			`SELECT coins, xp, level FROM reward_balances WHERE player_id = ?`), int64(id),
		).Scan(&balance.Coins, &balance.XP, &balance.Level)
		if err != nil {
			return s.wrap("get balance", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

// Handoff token operations

func (s *Store) SaveHandoffToken(ctx context.Context, token *model.HandoffToken) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		ok, err := s.playerExists(ctx, tx, token.PlayerID)
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrPlayerNotFound
		}
		_, err = tx.ExecContext(ctx, s.dialect.Rebind(
			`INSERT INTO handoff_tokens (token, player_id, expires_at) VALUES (?, ?, ?)`),
			token.Token, int64(token.PlayerID), toMillis(token.ExpiresAt),
		)
		if err != nil {
			if s.dialect.IsUniqueViolation(err) {
				return model.ErrTokenCollision
			}
			return s.wrap("save token", err)
		}
		return nil
	})
}

func (s *Store) RedeemHandoffToken(ctx context.Context, token string, sessionID string, now time.Time) (*model.Session, error) {
	session := &model.Session{ID: sessionID, CreatedAt: fromMillis(toMillis(now))}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var (
			playerID int64
			expires  int64
		)
		err := tx.QueryRowContext(ctx, s.dialect.Rebind(
			`SELECT player_id, expires_at FROM handoff_tokens WHERE token = ?`+s.dialect.LockForUpdate()), token,
		).Scan(&playerID, &expires)
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrInvalidToken
		}
		if err != nil {
			return s.wrap("lookup token", err)
		}
		if toMillis(now) > expires {
			return model.ErrTokenExpired
		}

		res, err := tx.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM handoff_tokens WHERE token = ?`), token)
		if err != nil {
			return s.wrap("consume token", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return s.wrap("consume token", err)
		} else if n != 1 {
			return model.ErrInvalidToken
		}

		if _, err := tx.ExecContext(ctx, s.dialect.Rebind(
			`INSERT INTO sessions (session_id, player_id, created_at) VALUES (?, ?, ?)`),
			sessionID, playerID, toMillis(now),
		); err != nil {
			return s.wrap("create session", err)
		}
		session.PlayerID = model.PlayerID(playerID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Store) DeleteExpiredHandoffTokens(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM handoff_tokens WHERE expires_at < ?`), toMillis(now))
	if err != nil {
		return 0, s.wrap("sweep tokens", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, s.wrap("sweep tokens", err)
	}
	return int(n), nil
}

// Session operations

func (s *Store) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var playerID, created int64
	err := s.db.QueryRowContext(ctx, s.dialect.Rebind(
		`SELECT player_id, created_at FROM sessions WHERE session_id = ?`), id,
	).Scan(&playerID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrInvalidSession
	}
	if err != nil {
		return nil, s.wrap("get session", err)
	}
	return &model.Session{ID: id, PlayerID: model.PlayerID(playerID), CreatedAt: fromMillis(created)}, nil
}

// Score operations

func (s *Store) RecordScore(ctx context.Context, record *model.ScoreRecord) (*model.ScoreOutcome, error) {
	score := record.Score
	id := int64(score.PlayerID)
	outcome := &model.ScoreOutcome{Balance: model.RewardBalance{PlayerID: score.PlayerID}}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		ok, err := s.playerExists(ctx, tx, score.PlayerID)
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrPlayerNotFound
		}

		if _, err := tx.ExecContext(ctx, s.dialect.Rebind(
			`INSERT INTO game_scores (player_id, game_id, score, created_at) VALUES (?, ?, ?, ?)`),
			id, string(score.GameID), score.Score, toMillis(score.CreatedAt),
		); err != nil {
			return s.wrap("insert score", err)
		}

		b := &outcome.Balance
		err = tx.QueryRowContext(ctx, s.dialect.Rebind(
			`INSERT INTO reward_balances (player_id, coins, xp, level) VALUES (?, ?, ?, ?)
			 ON CONFLICT (player_id) DO UPDATE SET
			   coins = reward_balances.coins + excluded.coins,
			   xp = reward_balances.xp + excluded.xp,
			   level = 1 + (reward_balances.xp + excluded.xp) / ?
			 RETURNING coins, xp, level`),
			id, record.Reward.Coins, record.Reward.XP, model.LevelForXP(record.Reward.XP), int64(model.XPPerLevel),
		).Scan(&b.Coins, &b.XP, &b.Level)
		if err != nil {
			return s.wrap("accrue reward", err)
		}

		for _, rule := range record.Candidates {
			res, err := tx.ExecContext(ctx, s.dialect.Rebind(
				`INSERT INTO user_achievements (player_id, achievement_id, unlocked_at) VALUES (?, ?, ?)
				 ON CONFLICT (player_id, achievement_id) DO NOTHING`),
				id, string(rule.ID), toMillis(score.CreatedAt),
			)
			if err != nil {
				return s.wrap("unlock achievement", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return s.wrap("unlock achievement", err)
			}
			if n == 1 {
				outcome.Unlocked = append(outcome.Unlocked, rule)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (s *Store) ListScores(ctx context.Context, id model.PlayerID) ([]model.GameScore, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(
		`SELECT game_id, score, created_at FROM game_scores WHERE player_id = ? ORDER BY id`), int64(id))
	if err != nil {
		return nil, s.wrap("list scores", err)
	}
	defer rows.Close()

	scores := make([]model.GameScore, 0)
	for rows.Next() {
		var (
			gameID  string
			score   int64
			created int64
		)
		if err := rows.Scan(&gameID, &score, &created); err != nil {
			return nil, s.wrap("scan score", err)
		}
		scores = append(scores, model.GameScore{
			PlayerID:  id,
			GameID:    model.GameID(gameID),
			Score:     score,
			CreatedAt: fromMillis(created),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("list scores", err)
	}
	return scores, nil
}

// Achievement operations

func (s *Store) ListUnlockedAchievements(ctx context.Context, id model.PlayerID) ([]model.UnlockedAchievement, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(
		`SELECT achievement_id, unlocked_at FROM user_achievements WHERE player_id = ?
		 ORDER BY unlocked_at, achievement_id`), int64(id))
	if err != nil {
		return nil, s.wrap("list achievements", err)
	}
	defer rows.Close()

	unlocked := make([]model.UnlockedAchievement, 0)
	for rows.Next() {
		var (
			ruleID string
			at     int64
		)
		if err := rows.Scan(&ruleID, &at); err != nil {
			return nil, s.wrap("scan achievement", err)
		}
		unlocked = append(unlocked, model.UnlockedAchievement{
			PlayerID:   id,
			RuleID:     model.RuleID(ruleID),
			UnlockedAt: fromMillis(at),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap("list achievements", err)
	}
	return unlocked, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return s.wrap("ping", err)
	}
	return nil
}
