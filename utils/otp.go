package utils

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	OTPLength      = 6
	OTPTTL         = 5 * time.Minute
	maxOTPAttempts = 5
	attemptWindow  = time.Hour
)

var (
	ErrOTPInvalid      = errors.New("invalid or expired OTP")
	ErrOTPTooManyTries = errors.New("too many OTP attempts")
	ErrOTPStoreOffline = errors.New("OTP store unavailable")
)

// GenerateOTP returns a uniformly random numeric code.
func GenerateOTP() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", OTPLength, n.Int64()), nil
}

// OTPStore keeps one-time codes in Redis keyed by purpose and email.
type OTPStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewOTPStore(rdb *redis.Client) *OTPStore {
	return &OTPStore{rdb: rdb, ttl: OTPTTL}
}

func otpKey(purpose, email string) string {
	return "otp:" + purpose + ":" + email
}

func attemptsKey(purpose, email string) string {
	return "otp_attempts:" + purpose + ":" + email
}

// Save stores code, replacing any previous one, and resets the attempt counter.
func (s *OTPStore) Save(ctx context.Context, purpose, email, code string) error {
	if s.rdb == nil {
		return ErrOTPStoreOffline
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, otpKey(purpose, email), code, s.ttl)
	pipe.Del(ctx, attemptsKey(purpose, email))
	_, err := pipe.Exec(ctx)
	return err
}

// Verify consumes the code on success. At most five attempts per hour are
// allowed for one purpose and email.
func (s *OTPStore) Verify(ctx context.Context, purpose, email, code string) error {
	if s.rdb == nil {
		return ErrOTPStoreOffline
	}

	key := attemptsKey(purpose, email)
	attempts, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if attempts == 1 {
		s.rdb.Expire(ctx, key, attemptWindow)
	}
	if attempts > maxOTPAttempts {
		return ErrOTPTooManyTries
	}

	stored, err := s.rdb.Get(ctx, otpKey(purpose, email)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrOTPInvalid
	}
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return ErrOTPInvalid
	}

	s.rdb.Del(ctx, otpKey(purpose, email), key)
	return nil
}

// Discard removes a pending code, for example when its mail bounced.
func (s *OTPStore) Discard(ctx context.Context, purpose, email string) {
	if s.rdb == nil {
		return
	}
	s.rdb.Del(ctx, otpKey(purpose, email))
}
