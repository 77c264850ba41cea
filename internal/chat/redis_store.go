package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	stateKeyPrefix   = "chat:state:"
	sessionKeyPrefix = "chat:side:"
	recentKeyPrefix  = "chat:recent:"
)

// RedisStore is a StateStore backed by Redis, for multi-instance deployments.
// Conversation states and the suppression marker expire by TTL; side sessions
// are swept explicitly because their expiry must produce a message.
type RedisStore struct {
	client *redis.Client
	tracer trace.Tracer
}

// NewRedisStore creates a Redis-backed state store.
func NewRedisStore(client *redis.Client, tracer trace.Tracer) *RedisStore {
	if client == nil {
		panic("chat: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("agendazap.internal.chat.store")
	}
	return &RedisStore{client: client, tracer: tracer}
}

// State returns the requester's conversation state, or nil when absent.
func (s *RedisStore) State(ctx context.Context, requesterID string) (*State, error) {
	ctx, span := s.tracer.Start(ctx, "chat.state.load")
	defer span.End()

	data, err := s.client.Get(ctx, stateKeyPrefix+requesterID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("chat: load state: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("chat: decode state: %w", err)
	}
	return &st, nil
}

// SaveState stores the state with the idle TTL, refreshed on every save.
func (s *RedisStore) SaveState(ctx context.Context, requesterID string, st *State) error {
	ctx, span := s.tracer.Start(ctx, "chat.state.save")
	defer span.End()

	data, err := json.Marshal(st)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: encode state: %w", err)
	}
	if err := s.client.Set(ctx, stateKeyPrefix+requesterID, data, StateIdleAfter).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: persist state: %w", err)
	}
	return nil
}

// ClearState destroys the requester's conversation state.
func (s *RedisStore) ClearState(ctx context.Context, requesterID string) error {
	ctx, span := s.tracer.Start(ctx, "chat.state.clear")
	defer span.End()

	if err := s.client.Del(ctx, stateKeyPrefix+requesterID).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: clear state: %w", err)
	}
	return nil
}

// Session returns the requester's side session, or nil when absent.
func (s *RedisStore) Session(ctx context.Context, requesterID string) (*SideSession, error) {
	ctx, span := s.tracer.Start(ctx, "chat.session.load")
	defer span.End()

	data, err := s.client.Get(ctx, sessionKeyPrefix+requesterID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("chat: load session: %w", err)
	}

	var sess SideSession
	if err := json.Unmarshal(data, &sess); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("chat: decode session: %w", err)
	}
	return &sess, nil
}

// SaveSession stores the side session. No TTL: the sweeper owns expiry so the
// idle-termination message is never skipped.
func (s *RedisStore) SaveSession(ctx context.Context, requesterID string, sess *SideSession) error {
	ctx, span := s.tracer.Start(ctx, "chat.session.save")
	defer span.End()

	data, err := json.Marshal(sess)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+requesterID, data, 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: persist session: %w", err)
	}
	return nil
}

// ClearSession destroys the requester's side session.
func (s *RedisStore) ClearSession(ctx context.Context, requesterID string) error {
	ctx, span := s.tracer.Start(ctx, "chat.session.clear")
	defer span.End()

	if err := s.client.Del(ctx, sessionKeyPrefix+requesterID).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: clear session: %w", err)
	}
	return nil
}

// MarkRecentBooking records the post-booking suppression marker with its TTL.
func (s *RedisStore) MarkRecentBooking(ctx context.Context, requesterID string) error {
	ctx, span := s.tracer.Start(ctx, "chat.recent.mark")
	defer span.End()

	if err := s.client.Set(ctx, recentKeyPrefix+requesterID, "1", RecentBookingTTL).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: mark recent booking: %w", err)
	}
	return nil
}

// ConsumeRecentBooking reports whether the marker existed and clears it atomically.
func (s *RedisStore) ConsumeRecentBooking(ctx context.Context, requesterID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "chat.recent.consume")
	defer span.End()

	err := s.client.GetDel(ctx, recentKeyPrefix+requesterID).Err()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		span.RecordError(err)
		return false, fmt.Errorf("chat: consume recent booking: %w", err)
	}
	return true, nil
}

// ExpireStates is a no-op under Redis: SaveState applies the idle TTL and the
// server drops expired states on its own.
func (s *RedisStore) ExpireStates(ctx context.Context, olderThan time.Time) (int, error) {
	return 0, nil
}

// ExpireSessions scans side sessions and drops those idle since before
// olderThan, returning the affected requester IDs.
func (s *RedisStore) ExpireSessions(ctx context.Context, olderThan time.Time) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "chat.session.expire")
	defer span.End()

	var expired []string
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, sessionKeyPrefix+"*", 100).Result()
		if err != nil {
			span.RecordError(err)
			return expired, fmt.Errorf("chat: scan sessions: %w", err)
		}
		for _, key := range keys {
			data, err := s.client.Get(ctx, key).Bytes()
			if err != nil {
				if err == redis.Nil {
					continue
				}
				span.RecordError(err)
				return expired, fmt.Errorf("chat: load session %s: %w", key, err)
			}
			var sess SideSession
			if err := json.Unmarshal(data, &sess); err != nil {
				// Unreadable sessions are dropped rather than kept alive forever.
				_ = s.client.Del(ctx, key).Err()
				continue
			}
			if !sess.LastContactAt.Before(olderThan) {
				continue
			}
			if err := s.client.Del(ctx, key).Err(); err != nil {
				span.RecordError(err)
				return expired, fmt.Errorf("chat: expire session %s: %w", key, err)
			}
			expired = append(expired, strings.TrimPrefix(key, sessionKeyPrefix))
		}
		cursor = next
		if cursor == 0 {
			return expired, nil
		}
	}
}
