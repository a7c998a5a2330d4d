package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/arcadebot/internal/model"
	"github.com/mcoot/arcadebot/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Operations that touch more than one key run as Lua scripts, which Redis
// executes atomically.
type Storage struct {
	client *redis.Client
	cfg    Config
	keys   keys
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultConfig().KeyPrefix
	}
	return &Storage{
		client: client,
		cfg:    cfg,
		keys:   keys{prefix: cfg.KeyPrefix},
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// scoreEntry is the LIST element format for a GameScore
type scoreEntry struct {
	GameID    model.GameID `json:"game_id"`
	Score     int64        `json:"score"`
	CreatedAt int64        `json:"created_at"`
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	key := s.keys.playerKey(player.ID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, "display_name", player.DisplayName)
	pipe.HSetNX(ctx, key, "created_at", toMillis(player.CreatedAt))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: save player: %w", err)
	}
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	fields, err := s.client.HGetAll(ctx, s.keys.playerKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: get player: %w", err)
	}
	if len(fields) == 0 {
		return nil, model.ErrPlayerNotFound
	}
	created, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("redis: player %s created_at: %w", id, err)
	}
	return &model.Player{
		ID:          id,
		DisplayName: fields["display_name"],
		CreatedAt:   fromMillis(created),
	}, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	err := deletePlayerScript.Run(ctx, s.client, []string{
		s.keys.playerKey(id),
		s.keys.balanceKey(id),
		s.keys.scoresKey(id),
		s.keys.achievementsKey(id),
		s.keys.playerTokensKey(id),
		s.keys.playerSessionsKey(id),
		s.keys.tokenExpiryKey(),
	}, s.keys.prefix).Err()
	if err != nil {
		return fmt.Errorf("redis: delete player: %w", err)
	}
	return nil
}

func (s *Storage) GetBalance(ctx context.Context, id model.PlayerID) (*model.RewardBalance, error) {
	res, err := ensureBalanceScript.Run(ctx, s.client, []string{
		s.keys.playerKey(id),
		s.keys.balanceKey(id),
	}).Slice()
	if err != nil {
		return nil, fmt.Errorf("redis: get balance: %w", err)
	}
	if status, _ := res[0].(int64); status == statusPlayerNotFound {
		return nil, model.ErrPlayerNotFound
	}
	return balanceFromReply(id, res)
}

// balanceFromReply reads {status, coins, xp, level} from a script reply
func balanceFromReply(id model.PlayerID, res []interface{}) (*model.RewardBalance, error) {
	if len(res) < 4 {
		return nil, fmt.Errorf("redis: unexpected balance reply of length %d", len(res))
	}
	b := &model.RewardBalance{PlayerID: id}
	for i, dst := range []*int64{&b.Coins, &b.XP, &b.Level} {
		v, ok := res[i+1].(int64)
		if !ok {
			return nil, fmt.Errorf("redis: unexpected balance field %T", res[i+1])
		}
		*dst = v
	}
	return b, nil
}

// Handoff token operations

func (s *Storage) SaveHandoffToken(ctx context.Context, token *model.HandoffToken) error {
	status, err := saveTokenScript.Run(ctx, s.client, []string{
		s.keys.playerKey(token.PlayerID),
		s.keys.tokenKey(token.Token),
		s.keys.tokenExpiryKey(),
		s.keys.playerTokensKey(token.PlayerID),
	}, token.Token, int64(token.PlayerID), toMillis(token.ExpiresAt)).Int64()
	if err != nil {
		return fmt.Errorf("redis: save token: %w", err)
	}
	switch status {
	case statusPlayerNotFound:
		return model.ErrPlayerNotFound
	case statusTokenCollision:
		return model.ErrTokenCollision
	}
	return nil
}

func (s *Storage) RedeemHandoffToken(ctx context.Context, token string, sessionID string, now time.Time) (*model.Session, error) {
	res, err := redeemTokenScript.Run(ctx, s.client, []string{
		s.keys.tokenKey(token),
		s.keys.tokenExpiryKey(),
	}, token, toMillis(now), sessionID, s.keys.prefix).Slice()
	if err != nil {
		return nil, fmt.Errorf("redis: redeem token: %w", err)
	}
	status, _ := res[0].(int64)
	switch status {
	case statusInvalidToken:
		return nil, model.ErrInvalidToken
	case statusTokenExpired:
		return nil, model.ErrTokenExpired
	}
	pid, _ := res[1].(string)
	playerID, err := model.ParsePlayerID(pid)
	if err != nil {
		return nil, fmt.Errorf("redis: token player id: %w", err)
	}
	return &model.Session{ID: sessionID, PlayerID: playerID, CreatedAt: fromMillis(toMillis(now))}, nil
}

func (s *Storage) DeleteExpiredHandoffTokens(ctx context.Context, now time.Time) (int, error) {
	n, err := sweepTokensScript.Run(ctx, s.client, []string{s.keys.tokenExpiryKey()},
		toMillis(now), s.keys.prefix).Int()
	if err != nil {
		return 0, fmt.Errorf("redis: sweep tokens: %w", err)
	}
	return n, nil
}

// Session operations

func (s *Storage) GetSession(ctx context.Context, id string) (*model.Session, error) {
	vals, err := s.client.HMGet(ctx, s.keys.sessionKey(id), "player_id", "created_at").Result()
	if err != nil {
		return nil, fmt.Errorf("redis: get session: %w", err)
	}
	pid, ok := vals[0].(string)
	if !ok {
		return nil, model.ErrInvalidSession
	}
	playerID, err := model.ParsePlayerID(pid)
	if err != nil {
		return nil, fmt.Errorf("redis: session player id: %w", err)
	}
	created, _ := vals[1].(string)
	ms, err := strconv.ParseInt(created, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("redis: session created_at: %w", err)
	}
	return &model.Session{ID: id, PlayerID: playerID, CreatedAt: fromMillis(ms)}, nil
}

// Score operations

func (s *Storage) RecordScore(ctx context.Context, record *model.ScoreRecord) (*model.ScoreOutcome, error) {
	id := record.Score.PlayerID
	entry, err := json.Marshal(scoreEntry{
		GameID:    record.Score.GameID,
		Score:     record.Score.Score,
		CreatedAt: toMillis(record.Score.CreatedAt),
	})
	if err != nil {
		return nil, err
	}

	args := []interface{}{
		string(entry),
		record.Reward.Coins,
		record.Reward.XP,
		toMillis(record.Score.CreatedAt),
		model.XPPerLevel,
	}
	candidates := make(map[model.RuleID]model.AchievementRule, len(record.Candidates))
	for _, rule := range record.Candidates {
		args = append(args, string(rule.ID))
		candidates[rule.ID] = rule
	}

	res, err := recordScoreScript.Run(ctx, s.client, []string{
		s.keys.playerKey(id),
		s.keys.balanceKey(id),
		s.keys.scoresKey(id),
		s.keys.achievementsKey(id),
	}, args...).Slice()
	if err != nil {
		return nil, fmt.Errorf("redis: record score: %w", err)
	}
	if status, _ := res[0].(int64); status == statusPlayerNotFound {
		return nil, model.ErrPlayerNotFound
	}

	balance, err := balanceFromReply(id, res)
	if err != nil {
		return nil, err
	}
	outcome := &model.ScoreOutcome{Balance: *balance}
	for _, v := range res[4:] {
		ruleID, _ := v.(string)
		outcome.Unlocked = append(outcome.Unlocked, candidates[model.RuleID(ruleID)])
	}
	return outcome, nil
}

func (s *Storage) ListScores(ctx context.Context, id model.PlayerID) ([]model.GameScore, error) {
	items, err := s.client.LRange(ctx, s.keys.scoresKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list scores: %w", err)
	}
	scores := make([]model.GameScore, 0, len(items))
	for _, item := range items {
		var e scoreEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("redis: decode score: %w", err)
		}
		scores = append(scores, model.GameScore{
			PlayerID:  id,
			GameID:    e.GameID,
			Score:     e.Score,
			CreatedAt: fromMillis(e.CreatedAt),
		})
	}
	return scores, nil
}

// Achievement operations

func (s *Storage) ListUnlockedAchievements(ctx context.Context, id model.PlayerID) ([]model.UnlockedAchievement, error) {
	fields, err := s.client.HGetAll(ctx, s.keys.achievementsKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list achievements: %w", err)
	}
	unlocked := make([]model.UnlockedAchievement, 0, len(fields))
	for rule, at := range fields {
		ms, err := strconv.ParseInt(at, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("redis: achievement %s unlocked_at: %w", rule, err)
		}
		unlocked = append(unlocked, model.UnlockedAchievement{
			PlayerID:   id,
			RuleID:     model.RuleID(rule),
			UnlockedAt: fromMillis(ms),
		})
	}
	sortUnlocked(unlocked)
	return unlocked, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}

// sortUnlocked orders unlocks oldest first; HGETALL has no stable order
func sortUnlocked(unlocked []model.UnlockedAchievement) {
	slices.SortFunc(unlocked, func(a, b model.UnlockedAchievement) int {
		if c := a.UnlockedAt.Compare(b.UnlockedAt); c != 0 {
			return c
		}
		return strings.Compare(string(a.RuleID), string(b.RuleID))
	})
}
