package resultstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/tessely/summarizer/internal/domain/summarizer"
	apperrors "github.com/tessely/summarizer/pkg/errors"
)

// ValkeyStore shares the result cache across instances through a
// Valkey-compatible database. TTL handling is delegated to the server.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "summary"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

// Get implements summarizer.ResultStore.
func (s *ValkeyStore) Get(ctx context.Context, fingerprint string) (summarizer.Result, bool, error) {
	cmd := s.client.B().Get().Key(s.key(fingerprint)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return summarizer.Result{}, false, nil
		}
		return summarizer.Result{}, false, apperrors.Wrap(summarizer.CodeCacheBackend, "valkey get", err)
	}
	var result summarizer.Result
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return summarizer.Result{}, false, apperrors.Wrap(summarizer.CodeCacheBackend, "decode cached result", err)
	}
	return result, true, nil
}

// Put stores the serialized result under the fingerprint key.
func (s *ValkeyStore) Put(ctx context.Context, fingerprint string, result summarizer.Result, ttl time.Duration) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return apperrors.Wrap(summarizer.CodeCacheBackend, "encode result", err)
	}
	builder := s.client.B().Set().Key(s.key(fingerprint)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return apperrors.Wrap(summarizer.CodeCacheBackend, "valkey set", err)
	}
	return nil
}

func (s *ValkeyStore) key(fingerprint string) string {
	return fmt.Sprintf("%s:result:%s", s.prefix, fingerprint)
}

var _ summarizer.ResultStore = (*ValkeyStore)(nil)
