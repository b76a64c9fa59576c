package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/coursecal/coursecal/internal/apperrors"
	"github.com/coursecal/coursecal/internal/config"
)

const (
	CookieName = "coursecal_sid"

	keyPrefix  = "session:"
	sessionTTL = 24 * time.Hour
)

// Session holds what the server keeps between requests: the bearer token for
// the LMS. Core components never read this directly; handlers resolve the
// token and pass it down explicitly.
type Session struct {
	AccessToken string `json:"access_token"`
}

type Store struct {
	client *redis.Client
}

func NewStore(cfg config.RedisConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Create stores the session under a fresh id and returns the id for the
// cookie.
func (s *Store) Create(ctx context.Context, sess *Session) (string, error) {
	data, err := json.Marshal(sess)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeObjectMarshalError, "failed to marshal session")
	}

	sid := uuid.New().String()
	if err := s.client.Set(ctx, keyPrefix+sid, data, sessionTTL).Err(); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeSessionError, "failed to store session")
	}

	return sid, nil
}

// Get returns nil without error when the session is absent or expired.
func (s *Store) Get(ctx context.Context, sid string) (*Session, error) {
	data, err := s.client.Get(ctx, keyPrefix+sid).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSessionError, "failed to load session")
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeObjectUnmarshalError, "failed to unmarshal session")
	}

	return &sess, nil
}

func (s *Store) Destroy(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, keyPrefix+sid).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeSessionError, "failed to destroy session")
	}
	return nil
}
