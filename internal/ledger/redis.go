package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/osse101/pointshop/internal/domain"
)

// debitScript subtracts ARGV[1] from KEYS[1] when the balance covers it.
// A missing key holds ARGV[2]. Returns the new balance or -1 when refused.
const debitScript = `
local v = redis.call('GET', KEYS[1])
local bal = tonumber(ARGV[2])
if v then bal = tonumber(v) end
local amt = tonumber(ARGV[1])
if bal < amt then return -1 end
bal = bal - amt
redis.call('SET', KEYS[1], bal)
return bal
`

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
}

// RedisLedger stores balances as integer strings under pointshop:balance:{platform}:{user}
type RedisLedger struct {
	store          cmdable
	defaultBalance int64
}

// NewRedisLedger connects to redisURL and verifies connectivity
func NewRedisLedger(ctx context.Context, redisURL string, defaultBalance int64) (*RedisLedger, *redis.Client, error) {
	if redisURL == "" {
		return nil, nil, errors.New(ErrMsgRedisURLRequired)
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf(ErrMsgParseRedisURL, err)
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, nil, fmt.Errorf(ErrMsgPingRedis, err)
	}
	return &RedisLedger{store: raw, defaultBalance: defaultBalance}, raw, nil
}

// BalanceKey builds the redis key for a user's balance
func BalanceKey(user domain.Identity) string {
	return strings.Join([]string{RedisKeyNamespace, RedisBalancePrefix, user.Platform, user.UserID}, ":")
}

func (r *RedisLedger) GetBalance(ctx context.Context, user domain.Identity) (int64, error) {
	if r.store == nil {
		return 0, errors.New(ErrMsgRedisNotReady)
	}
	raw, err := r.store.Get(ctx, BalanceKey(user)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return r.defaultBalance, nil
		}
		return 0, err
	}
	balance, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf(ErrMsgParseBalance, err)
	}
	return balance, nil
}

func (r *RedisLedger) SetBalance(ctx context.Context, user domain.Identity, balance int64) error {
	if r.store == nil {
		return errors.New(ErrMsgRedisNotReady)
	}
	return r.store.Set(ctx, BalanceKey(user), balance, 0).Err()
}

// Debit runs the conditional debit script
func (r *RedisLedger) Debit(ctx context.Context, user domain.Identity, amount int64) (int64, error) {
	if r.store == nil {
		return 0, errors.New(ErrMsgRedisNotReady)
	}
	res, err := r.store.Eval(ctx, debitScript, []string{BalanceKey(user)}, amount, r.defaultBalance).Result()
	if err != nil {
		return 0, err
	}
	balance, ok := res.(int64)
	if !ok {
		return 0, fmt.Errorf(ErrMsgScriptResult, res)
	}
	if balance == redisDebitRefused {
		return 0, domain.ErrInsufficientFunds
	}
	return balance, nil
}

// Ping checks connectivity for readiness probes
func (r *RedisLedger) Ping(ctx context.Context) error {
	if r.store == nil {
		return errors.New(ErrMsgRedisNotReady)
	}
	return r.store.Ping(ctx).Err()
}
