package redis

import "github.com/redis/go-redis/v9"

// Script status codes
const (
	statusOK             = 1
	statusPlayerNotFound = -1
	statusTokenCollision = -2
	statusInvalidToken   = -1
	statusTokenExpired   = -2
)

// KEYS: player, balance
var ensureBalanceScript = redis.NewScript(`
	if redis.call("EXISTS", KEYS[1]) == 0 then
		return {-1}
	end
	redis.call("HSETNX", KEYS[2], "coins", 0)
	redis.call("HSETNX", KEYS[2], "xp", 0)
	redis.call("HSETNX", KEYS[2], "level", 1)
	local b = redis.call("HMGET", KEYS[2], "coins", "xp", "level")
	return {1, tonumber(b[1]), tonumber(b[2]), tonumber(b[3])}
`)

// KEYS: player, token, token expiry index, player tokens
// ARGV: token, player id, expires at (ms)
var saveTokenScript = redis.NewScript(`
	if redis.call("EXISTS", KEYS[1]) == 0 then
		return -1
	end
	if redis.call("EXISTS", KEYS[2]) == 1 then
		return -2
	end
	redis.call("HSET", KEYS[2], "player_id", ARGV[2], "expires_at", ARGV[3])
	redis.call("ZADD", KEYS[3], ARGV[3], ARGV[1])
	redis.call("SADD", KEYS[4], ARGV[1])
	return 1
`)

// KEYS: token, token expiry index
// ARGV: token, now (ms), session id, key prefix
var redeemTokenScript = redis.NewScript(`
	local pid = redis.call("HGET", KEYS[1], "player_id")
	if not pid then
		return {-1}
	end
	local expires = tonumber(redis.call("HGET", KEYS[1], "expires_at"))
	if tonumber(ARGV[2]) > expires then
		return {-2}
	end
	redis.call("DEL", KEYS[1])
	redis.call("ZREM", KEYS[2], ARGV[1])
	redis.call("SREM", ARGV[4] .. ":player:" .. pid .. ":tokens", ARGV[1])
	redis.call("HSET", ARGV[4] .. ":session:" .. ARGV[3], "player_id", pid, "created_at", ARGV[2])
	redis.call("SADD", ARGV[4] .. ":player:" .. pid .. ":sessions", ARGV[3])
	return {1, pid}
`)

// KEYS: token expiry index
// ARGV: now (ms), key prefix
var sweepTokensScript = redis.NewScript(`
	local expired = redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", "(" .. ARGV[1])
	for _, t in ipairs(expired) do
		local tkey = ARGV[2] .. ":token:" .. t
		local pid = redis.call("HGET", tkey, "player_id")
		if pid then
			redis.call("SREM", ARGV[2] .. ":player:" .. pid .. ":tokens", t)
		end
		redis.call("DEL", tkey)
		redis.call("ZREM", KEYS[1], t)
	end
	return #expired
`)

// KEYS: player, balance, scores, achievements
// ARGV: score entry, coins, xp, unlocked at (ms), xp per level, candidate rule ids...
var recordScoreScript = redis.NewScript(`
	if redis.call("EXISTS", KEYS[1]) == 0 then
		return {-1}
	end
	redis.call("RPUSH", KEYS[3], ARGV[1])
	local coins = redis.call("HINCRBY", KEYS[2], "coins", ARGV[2])
	local xp = redis.call("HINCRBY", KEYS[2], "xp", ARGV[3])
	local level = 1 + math.floor(xp / tonumber(ARGV[5]))
	redis.call("HSET", KEYS[2], "level", level)
	local result = {1, coins, xp, level}
	for i = 6, #ARGV do
		if redis.call("HSETNX", KEYS[4], ARGV[i], ARGV[4]) == 1 then
			table.insert(result, ARGV[i])
		end
	end
	return result
`)

// KEYS: player, balance, scores, achievements, player tokens, player sessions, token expiry index
// ARGV: key prefix
var deletePlayerScript = redis.NewScript(`
	for _, t in ipairs(redis.call("SMEMBERS", KEYS[5])) do
		redis.call("DEL", ARGV[1] .. ":token:" .. t)
		redis.call("ZREM", KEYS[7], t)
	end
	for _, s in ipairs(redis.call("SMEMBERS", KEYS[6])) do
		redis.call("DEL", ARGV[1] .. ":session:" .. s)
	end
	redis.call("DEL", KEYS[1], KEYS[2], KEYS[3], KEYS[4], KEYS[5], KEYS[6])
	return 1
`)
