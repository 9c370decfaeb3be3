// Package redis keeps pending reminders in Redis.
//
// Layout, for prefix "reminders":
//
//	reminders:item:{user}:{item}  hash  title, trigger_at (unix seconds)
//	reminders:user:{user}         zset  item ids scored by trigger time
//	reminders:due                 zset  "{user}/{item}" scored by trigger time
//	reminders:users               set   users with pending reminders
//
// A user leaves reminders:users when their last entry is cancelled or
// claimed.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ghuser/todoreminder/pkg/cache"
	"github.com/ghuser/todoreminder/services/notification/domain"
	"github.com/ghuser/todoreminder/services/notification/domain/models"
)

const (
	defaultPrefix = "reminders"
	memberSep     = "/"
	maxTxRetries  = 3
)

// claimScript pops up to ARGV[2] members of the due index scored at or
// before ARGV[1] and deletes their records, returning user, item, title and
// trigger for each. Running as one script makes every claim exclusive.
var claimScript = goredis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, tonumber(ARGV[2]))
local out = {}
for _, member in ipairs(due) do
  local sep = string.find(member, '/', 1, true)
  local user = string.sub(member, 1, sep - 1)
  local item = string.sub(member, sep + 1)
  local key = ARGV[3] .. ':item:' .. user .. ':' .. item
  local title = redis.call('HGET', key, 'title')
  local at = redis.call('HGET', key, 'trigger_at')
  redis.call('ZREM', KEYS[1], member)
  local userKey = ARGV[3] .. ':user:' .. user
  redis.call('ZREM', userKey, item)
  if redis.call('ZCARD', userKey) == 0 then
    redis.call('SREM', ARGV[3] .. ':users', user)
  end
  redis.call('DEL', key)
  if title and at then
    table.insert(out, user)
    table.insert(out, item)
    table.insert(out, title)
    table.insert(out, at)
  end
end
return out
`)

// cancelScript deletes one entry and drops the user from the index once the
// user has nothing pending. With a non-empty ARGV[4] it only deletes when
// the stored trigger_at equals it, and returns 0 otherwise.
//
// KEYS: item hash, user zset, due zset, users set.
// ARGV: item id, due member, user id, expected trigger_at.
var cancelScript = goredis.NewScript(`
if ARGV[4] ~= '' and redis.call('HGET', KEYS[1], 'trigger_at') ~= ARGV[4] then
  return 0
end
redis.call('DEL', KEYS[1])
redis.call('ZREM', KEYS[2], ARGV[1])
redis.call('ZREM', KEYS[3], ARGV[2])
if redis.call('ZCARD', KEYS[2]) == 0 then
  redis.call('SREM', KEYS[4], ARGV[3])
end
return 1
`)

// PendingStore implements scheduler.Notifier on Redis. Delivery happens
// elsewhere: a dispatcher claims due entries with ClaimDue.
type PendingStore struct {
	client *cache.RedisClient
	prefix string
}

// NewPendingStore returns a PendingStore using the "reminders" key prefix.
func NewPendingStore(client *cache.RedisClient) *PendingStore {
	return &PendingStore{client: client, prefix: defaultPrefix}
}

// Schedule writes n, replacing any pending entry for the same item in the
// same transaction.
func (s *PendingStore) Schedule(ctx context.Context, n models.Notification) error {
	if err := validateIDs(n.UserID, n.ItemID); err != nil {
		return err
	}
	at := n.TriggerAt.Unix()

	_, err := s.client.Client().TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, s.itemKey(n.UserID, n.ItemID),
			"title", n.Title,
			"trigger_at", at,
		)
		pipe.ZAdd(ctx, s.userKey(n.UserID), goredis.Z{Score: float64(at), Member: n.ItemID})
		pipe.ZAdd(ctx, s.dueKey(), goredis.Z{Score: float64(at), Member: member(n.UserID, n.ItemID)})
		pipe.SAdd(ctx, s.usersKey(), n.UserID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("pending schedule: %w", err)
	}
	return nil
}

// Cancel removes the entry for itemID. Missing entries are ignored.
func (s *PendingStore) Cancel(ctx context.Context, userID, itemID string) error {
	if _, err := s.cancel(ctx, userID, itemID, ""); err != nil {
		return fmt.Errorf("pending cancel: %w", err)
	}
	return nil
}

// Release removes n's entry only if it still fires at n.TriggerAt, so a
// delivery for a replaced reminder leaves the replacement alone. It reports
// whether the entry was removed.
func (s *PendingStore) Release(ctx context.Context, n models.Notification) (bool, error) {
	removed, err := s.cancel(ctx, n.UserID, n.ItemID, strconv.FormatInt(n.TriggerAt.Unix(), 10))
	if err != nil {
		return false, fmt.Errorf("pending release: %w", err)
	}
	return removed, nil
}

func (s *PendingStore) cancel(ctx context.Context, userID, itemID, expectAt string) (bool, error) {
	n, err := cancelScript.Run(ctx, s.client.Client(),
		[]string{s.itemKey(userID, itemID), s.userKey(userID), s.dueKey(), s.usersKey()},
		itemID, member(userID, itemID), userID, expectAt,
	).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// CancelAll removes every entry of userID. The user index is watched so a
// concurrent Schedule is never half-deleted.
func (s *PendingStore) CancelAll(ctx context.Context, userID string) error {
	userKey := s.userKey(userID)
	wipe := func(tx *goredis.Tx) error {
		items, err := tx.ZRange(ctx, userKey, 0, -1).Result()
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			for _, item := range items {
				pipe.Del(ctx, s.itemKey(userID, item))
				pipe.ZRem(ctx, s.dueKey(), member(userID, item))
			}
			pipe.Del(ctx, userKey)
			pipe.SRem(ctx, s.usersKey(), userID)
			return nil
		})
		return err
	}

	for range maxTxRetries {
		err := s.client.Client().Watch(ctx, wipe, userKey)
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("pending cancel all: %w", err)
		}
		return nil
	}
	return fmt.Errorf("pending cancel all: %w", goredis.TxFailedErr)
}

// Pending lists the user's entries ordered by trigger time.
func (s *PendingStore) Pending(ctx context.Context, userID string) ([]models.Notification, error) {
	rdb := s.client.Client()
	entries, err := rdb.ZRangeWithScores(ctx, s.userKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("pending list: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	titles := make([]*goredis.StringCmd, len(entries))
	_, err = rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for i, e := range entries {
			titles[i] = pipe.HGet(ctx, s.itemKey(userID, e.Member.(string)), "title")
		}
		return nil
	})
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("pending titles: %w", err)
	}

	out := make([]models.Notification, 0, len(entries))
	for i, e := range entries {
		title, err := titles[i].Result()
		if errors.Is(err, goredis.Nil) {
			// Claimed between the two reads.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("pending title: %w", err)
		}
		out = append(out, models.Notification{
			UserID:    userID,
			ItemID:    e.Member.(string),
			Title:     title,
			TriggerAt: time.Unix(int64(e.Score), 0).UTC(),
		})
	}
	return out, nil
}

// ClaimDue removes and returns up to limit entries whose trigger is not
// after now. Each entry is returned to exactly one caller.
func (s *PendingStore) ClaimDue(ctx context.Context, now time.Time, limit int) ([]models.Notification, error) {
	res, err := claimScript.Run(ctx, s.client.Client(),
		[]string{s.dueKey()},
		now.Unix(), limit, s.prefix,
	).StringSlice()
	if err != nil {
		return nil, fmt.Errorf("pending claim: %w", err)
	}

	out := make([]models.Notification, 0, len(res)/4)
	for i := 0; i+3 < len(res); i += 4 {
		at, err := strconv.ParseInt(res[i+3], 10, 64)
		if err != nil {
			return out, fmt.Errorf("pending claim: parse trigger of %s: %w", res[i+1], err)
		}
		out = append(out, models.Notification{
			UserID:    res[i],
			ItemID:    res[i+1],
			Title:     res[i+2],
			TriggerAt: time.Unix(at, 0).UTC(),
		})
	}
	return out, nil
}

// UserIDs lists users that currently have pending entries.
func (s *PendingStore) UserIDs(ctx context.Context) ([]string, error) {
	ids, err := s.client.Client().SMembers(ctx, s.usersKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("pending users: %w", err)
	}
	return ids, nil
}

func (s *PendingStore) itemKey(userID, itemID string) string {
	return s.prefix + ":item:" + userID + ":" + itemID
}

func (s *PendingStore) userKey(userID string) string {
	return s.prefix + ":user:" + userID
}

func (s *PendingStore) dueKey() string {
	return s.prefix + ":due"
}

func (s *PendingStore) usersKey() string {
	return s.prefix + ":users"
}

func member(userID, itemID string) string {
	return userID + memberSep + itemID
}

// validateIDs rejects ids the due index cannot encode unambiguously.
func validateIDs(userID, itemID string) error {
	if userID == "" || itemID == "" {
		return fmt.Errorf("%w: empty user or item id", domain.ErrInvalidNotification)
	}
	if strings.Contains(userID, memberSep) {
		return fmt.Errorf("%w: user id %q contains %q", domain.ErrInvalidNotification, userID, memberSep)
	}
	return nil
}
