package draft

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/migios-apps/migios-console-api/internal/cart"
	pkgerrors "github.com/migios-apps/migios-console-api/pkg/errors"
	"github.com/migios-apps/migios-console-api/pkg/logger"
)

// Key addresses one draft slot: every club terminal edits its own transaction.
type Key struct {
	ClubID   int64
	Terminal string
}

// Envelope is the stored shape. The timestamp records the last save so stale
// drafts can be surfaced to the operator.
type Envelope struct {
	cart.TransactionDraft
	Timestamp int64 `json:"_timestamp"`
}

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	DraftKey(clubID, terminal string) string
}

// Store persists checkout drafts in Redis so an interrupted session resumes
// where it left off.
type Store struct {
	kv     kvStore
	ttl    time.Duration
	logger *logger.Logger
	now    func() time.Time
}

// NewStore wires the draft store. TTL bounds how long an abandoned draft
// survives.
func NewStore(kv kvStore, ttl time.Duration, logg *logger.Logger) (*Store, error) {
	if kv == nil {
		return nil, errors.New("draft store requires a redis client")
	}
	if logg == nil {
		return nil, errors.New("draft store requires a logger")
	}
	return &Store{kv: kv, ttl: ttl, logger: logg, now: time.Now}, nil
}

// Load returns the saved draft for a terminal, or CodeNotFound when no draft
// exists or the stored blob cannot be decoded.
func (s *Store) Load(ctx context.Context, key Key) (*Envelope, error) {
	raw, err := s.kv.Get(ctx, s.storageKey(key))
	if errors.Is(err, redis.Nil) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no draft saved for this terminal")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load draft")
	}

	var envelope Envelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		// Corrupt drafts are treated as absent rather than blocking checkout.
		s.logger.Error(ctx, "stored draft is not decodable, discarding", err)
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no draft saved for this terminal")
	}
	return &envelope, nil
}

// Save overwrites the draft slot, stamping the save time.
func (s *Store) Save(ctx context.Context, key Key, d *cart.TransactionDraft) (*Envelope, error) {
	if d == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction draft is nil")
	}

	envelope := &Envelope{TransactionDraft: *d, Timestamp: s.now().UnixMilli()}
	encoded, err := json.Marshal(envelope)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode draft")
	}
	if err := s.kv.Set(ctx, s.storageKey(key), string(encoded), s.ttl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save draft")
	}
	return envelope, nil
}

// Clear resets the slot to a fresh empty draft instead of deleting the key, so
// a reload after checkout lands on a clean transaction.
func (s *Store) Clear(ctx context.Context, key Key) (*Envelope, error) {
	return s.Save(ctx, key, cart.NewTransactionDraft())
}

// Delete removes the slot entirely.
func (s *Store) Delete(ctx context.Context, key Key) error {
	if err := s.kv.Del(ctx, s.storageKey(key)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete draft")
	}
	return nil
}

func (s *Store) storageKey(key Key) string {
	return s.kv.DraftKey(strconv.FormatInt(key.ClubID, 10), key.Terminal)
}
