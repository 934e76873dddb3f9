package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xavierca1/quizlead-crm/internal/entity"
)

const otpKeyPrefix = "otp:"

// OTPStore keeps one hash per phone (code, attempts) that expires with the code.
type OTPStore struct {
	client *redis.Client
}

func NewOTPStore(client *redis.Client) *OTPStore {
	return &OTPStore{client: client}
}

func otpKey(phone string) string { return otpKeyPrefix + phone }

func (s *OTPStore) Put(ctx context.Context, phone, code string, ttl time.Duration) error {
	key := otpKey(phone)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key, "code", code, "attempts", 0)
		p.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

func (s *OTPStore) Get(ctx context.Context, phone string) (string, int, error) {
	values, err := s.client.HGetAll(ctx, otpKey(phone)).Result()
	if err != nil {
		return "", 0, fmt.Errorf("load otp: %w", err)
	}
	code, ok := values["code"]
	if !ok {
		return "", 0, entity.ErrNotFound
	}
	attempts, _ := strconv.Atoi(values["attempts"])
	return code, attempts, nil
}

// IncrementAttempts bumps the counter only while the code still exists, so a
// late wrong guess cannot resurrect an expired key without TTL.
func (s *OTPStore) IncrementAttempts(ctx context.Context, phone string) (int, error) {
	key := otpKey(phone)
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("load otp: %w", err)
	}
	if exists == 0 {
		return 0, entity.ErrNotFound
	}
	n, err := s.client.HIncrBy(ctx, key, "attempts", 1).Result()
	if errors.Is(err, redis.Nil) {
		return 0, entity.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment otp attempts: %w", err)
	}
	return int(n), nil
}

func (s *OTPStore) Delete(ctx context.Context, phone string) error {
	if err := s.client.Del(ctx, otpKey(phone)).Err(); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	return nil
}
