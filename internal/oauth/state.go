package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/redis/go-redis/v9"
)

const stateTTL = 10 * time.Minute

// StateStore keeps the OAuth state parameter between the consent redirect
// and the provider callback. States are single-use: Consume deletes on read.
type StateStore struct {
	rdb *redis.Client
}

func NewStateStore(rdb *redis.Client) *StateStore {
	return &StateStore{rdb: rdb}
}

func (s *StateStore) Issue(ctx context.Context) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	state := base64.RawURLEncoding.EncodeToString(buf)
	if err := s.rdb.Set(ctx, stateKey(state), "1", stateTTL).Err(); err != nil {
		return "", err
	}
	return state, nil
}

func (s *StateStore) Consume(ctx context.Context, state string) (bool, error) {
	if state == "" {
		return false, nil
	}
	err := s.rdb.GetDel(ctx, stateKey(state)).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func stateKey(state string) string {
	return "oauth:state:" + state
}
