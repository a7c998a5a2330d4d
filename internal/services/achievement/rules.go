// Package achievement holds the immutable set of achievement rules.
package achievement

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mcoot/arcadebot/internal/model"
)

// Rules is a validated, read-only rule set. Safe for concurrent use.
type Rules struct {
	rules []model.AchievementRule
	byID  map[model.RuleID]model.AchievementRule
}

// NewRules validates and indexes rules. Order is preserved.
func NewRules(rules []model.AchievementRule) (*Rules, error) {
	r := &Rules{
		rules: make([]model.AchievementRule, 0, len(rules)),
		byID:  make(map[model.RuleID]model.AchievementRule, len(rules)),
	}
	for i, rule := range rules {
		if rule.ID == "" {
			return nil, fmt.Errorf("rule %d: id is required", i)
		}
		if rule.GameID == "" {
			return nil, fmt.Errorf("rule %s: game_id is required", rule.ID)
		}
		if rule.Threshold < 0 {
			return nil, fmt.Errorf("rule %s: score must not be negative", rule.ID)
		}
		if rule.Name == "" {
			return nil, fmt.Errorf("rule %s: name is required", rule.ID)
		}
		if _, dup := r.byID[rule.ID]; dup {
			return nil, fmt.Errorf("rule %s: duplicate id", rule.ID)
		}
		r.byID[rule.ID] = rule
		r.rules = append(r.rules, rule)
	}
	return r, nil
}

// LoadFile reads a JSON array of rules
func LoadFile(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read achievements file: %w", err)
	}
	var rules []model.AchievementRule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse achievements file: %w", err)
	}
	return NewRules(rules)
}

// Load returns the rules in path, or the built-in defaults when path is empty
func Load(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	return LoadFile(path)
}

// Candidates returns every rule the score qualifies for, in rule order
func (r *Rules) Candidates(gameID model.GameID, score int64) []model.AchievementRule {
	var out []model.AchievementRule
	for _, rule := range r.rules {
		if rule.Matches(gameID, score) {
			out = append(out, rule)
		}
	}
	return out
}

// All returns a copy of every rule
func (r *Rules) All() []model.AchievementRule {
	out := make([]model.AchievementRule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Get looks up a rule by id
func (r *Rules) Get(id model.RuleID) (model.AchievementRule, bool) {
	rule, ok := r.byID[id]
	return rule, ok
}

// Len returns the number of rules
func (r *Rules) Len() int {
	return len(r.rules)
}
