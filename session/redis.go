package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taa217/lucidai/core"
)

// RedisOptions configures the Redis backed session store.
type RedisOptions struct {
	// URL is the Redis connection string (e.g. "redis://localhost:6379/0").
	URL string

	// KeyPrefix namespaces session keys. Defaults to "lucidai:session:".
	KeyPrefix string

	// TTL expires idle sessions. Zero means no expiry.
	TTL time.Duration

	// ConnectTimeout bounds the construction-time ping. Defaults to 5s.
	ConnectTimeout time.Duration
}

// RedisStore persists sessions as JSON blobs in Redis, one key per session.
// Event history is stored at transcript level: textual content, author, and
// role survive a round trip; structured parts and streaming fragments do not.
// That is sufficient for conversation history reconstruction, which is the
// only read path that consumes persisted events.
//
// Writes use read-modify-write on the whole blob. Concurrent writers to the
// same session from different processes can lose events; run one engine per
// session or front the store with a per-session queue.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ core.SessionStore = (*RedisStore)(nil)

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(optFns ...func(o *RedisOptions)) (*RedisStore, error) {
	opts := RedisOptions{
		URL:            "redis://localhost:6379",
		KeyPrefix:      "lucidai:session:",
		ConnectTimeout: 5 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{client: client, prefix: opts.KeyPrefix, ttl: opts.TTL}, nil
}

// Close releases the underlying Redis connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

// Get loads a session, creating a fresh one when the key does not exist.
func (s *RedisStore) Get(sessionID string) (*core.Session, error) {
	ctx := context.Background()

	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return s.Create(sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	var stored storedSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return stored.toSession(), nil
}

// Create overwrites any existing session under the id with a fresh one.
func (s *RedisStore) Create(sessionID string) (*core.Session, error) {
	sess := core.NewSession(sessionID)
	if err := s.save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// AppendEvent adds an event to an existing or newly created session.
func (s *RedisStore) AppendEvent(sessionID string, ev core.Event) error {
	sess, err := s.Get(sessionID)
	if err != nil {
		return err
	}
	sess.AddEvent(ev)
	return s.save(sess)
}

// ApplyDelta merges a key/value delta into the session state.
func (s *RedisStore) ApplyDelta(sessionID string, delta map[string]interface{}) error {
	sess, err := s.Get(sessionID)
	if err != nil {
		return err
	}
	sess.MergeState(delta)
	return s.save(sess)
}

func (s *RedisStore) save(sess *core.Session) error {
	raw, err := json.Marshal(newStoredSession(sess))
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sess.ID, err)
	}

	ctx := context.Background()
	if err := s.client.Set(ctx, s.key(sess.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("store session %s: %w", sess.ID, err)
	}
	return nil
}

// storedSession is the wire form of a session. Events are flattened because
// content parts are interface values that cannot round-trip through JSON.
type storedSession struct {
	ID       string                 `json:"id"`
	UserID   string                 `json:"user_id,omitempty"`
	State    map[string]interface{} `json:"state"`
	Events   []storedEvent          `json:"events"`
	Created  time.Time              `json:"created"`
	Updated  time.Time              `json:"updated"`
	Metadata map[string]string      `json:"metadata,omitempty"`
}

type storedEvent struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Author    string    `json:"author"`
	Role      string    `json:"role,omitempty"`
	Text      string    `json:"text,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// newStoredSession flattens a session for persistence. Partial streaming
// events and events without textual content are skipped.
func newStoredSession(sess *core.Session) storedSession {
	events := sess.GetEvents()
	stored := storedSession{
		ID:       sess.ID,
		UserID:   sess.UserID,
		State:    sess.State,
		Events:   make([]storedEvent, 0, len(events)),
		Created:  sess.Created,
		Updated:  sess.Updated,
		Metadata: sess.Metadata,
	}

	for _, ev := range events {
		if ev.IsPartial() || ev.Content == nil {
			continue
		}
		text := ev.Content.Text()
		if text == "" {
			continue
		}
		stored.Events = append(stored.Events, storedEvent{
			ID:        ev.ID,
			RunID:     ev.RunID,
			Author:    ev.Author,
			Role:      ev.Content.Role,
			Text:      text,
			Timestamp: ev.Timestamp,
		})
	}

	return stored
}

// toSession rebuilds an in-memory session from its wire form.
func (ss storedSession) toSession() *core.Session {
	sess := core.NewSession(ss.ID)
	sess.UserID = ss.UserID
	sess.Created = ss.Created
	sess.Updated = ss.Updated
	if ss.State != nil {
		sess.State = ss.State
	}
	if ss.Metadata != nil {
		sess.Metadata = ss.Metadata
	}

	for _, se := range ss.Events {
		content := core.NewTextContent(se.Role, se.Text)
		sess.Events = append(sess.Events, core.Event{
			ID:        se.ID,
			RunID:     se.RunID,
			Author:    se.Author,
			Timestamp: se.Timestamp,
			Content:   &content,
		})
	}

	return sess
}
