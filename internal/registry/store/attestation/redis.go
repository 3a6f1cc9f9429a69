package attestation

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	id "attestry/pkg/domain"
)

// RedisStore keeps the ledger in Redis: a list per subject preserves
// attestation order, a companion set makes the duplicate check O(1). Both are
// written in one MULTI/EXEC so they cannot drift.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "attestry"}
}

func (s *RedisStore) listKey(subjectID id.SubjectID) string {
	return fmt.Sprintf("%s:attestors:%s", s.prefix, subjectID)
}

func (s *RedisStore) setKey(subjectID id.SubjectID) string {
	return fmt.Sprintf("%s:attestorset:%s", s.prefix, subjectID)
}

func (s *RedisStore) Has(ctx context.Context, subjectID id.SubjectID, agency id.AgencyID) (bool, error) {
	ok, err := s.client.SIsMember(ctx, s.setKey(subjectID), string(agency)).Result()
	if err != nil {
		return false, fmt.Errorf("check attestor membership: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) Append(ctx context.Context, subjectID id.SubjectID, agency id.AgencyID) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, s.listKey(subjectID), string(agency))
		pipe.SAdd(ctx, s.setKey(subjectID), string(agency))
		return nil
	})
	if err != nil {
		return fmt.Errorf("append attestor: %w", err)
	}
	return nil
}

func (s *RedisStore) ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]id.AgencyID, error) {
	values, err := s.client.LRange(ctx, s.listKey(subjectID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list attestors: %w", err)
	}
	out := make([]id.AgencyID, 0, len(values))
	for _, v := range values {
		out = append(out, id.AgencyID(v))
	}
	return out, nil
}
