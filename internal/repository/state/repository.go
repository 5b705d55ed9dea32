package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/leet-alarm/internal/codec"
	"github.com/oshokin/leet-alarm/internal/domain/alarm"
	"github.com/oshokin/leet-alarm/internal/repository/blob"
)

// Blob keys.
const (
	AlarmsKey      = "alarms"
	ActiveAlarmKey = "active_alarm_id"
)

// ErrNotFound is returned when nothing has been persisted under a key yet.
var ErrNotFound = errors.New("state not found")

// Repository stores alarm state in a blob store.
type Repository struct {
	// blobs is the underlying key-value store.
	blobs blob.Store
}

// NewRepository creates a repository over the given blob store.
func NewRepository(blobs blob.Store) *Repository {
	return &Repository{blobs: blobs}
}

// LoadAlarms reads the alarm collection.
func (r *Repository) LoadAlarms(ctx context.Context) ([]alarm.Alarm, error) {
	contents, err := r.get(ctx, AlarmsKey)
	if err != nil {
		return nil, err
	}

	var list structpb.ListValue
	if err = protojson.Unmarshal(contents, &list); err != nil {
		return nil, fmt.Errorf("decode alarms: %w", err)
	}

	alarms, err := codec.AlarmsFromList(&list)
	if err != nil {
		return nil, fmt.Errorf("decode alarms: %w", err)
	}

	return alarms, nil
}

// SaveAlarms writes the whole alarm collection.
func (r *Repository) SaveAlarms(ctx context.Context, alarms []alarm.Alarm) error {
	data, err := protojson.Marshal(codec.AlarmsToList(alarms))
	if err != nil {
		return fmt.Errorf("encode alarms: %w", err)
	}

	if err = r.blobs.Put(ctx, AlarmsKey, data); err != nil {
		return fmt.Errorf("write alarms: %w", err)
	}

	return nil
}

// LoadActive reads the active alarm id.
func (r *Repository) LoadActive(ctx context.Context) (string, error) {
	contents, err := r.get(ctx, ActiveAlarmKey)
	if err != nil {
		return "", err
	}

	id, err := uuid.ParseBytes(contents)
	if err != nil {
		return "", fmt.Errorf("decode active alarm id: %w", err)
	}

	return id.String(), nil
}

// SaveActive writes the active alarm id. An empty id clears it.
// A malformed id also clears it, so a stale id never outlives the error.
func (r *Repository) SaveActive(ctx context.Context, id string) error {
	if id == "" {
		return r.clearActive(ctx)
	}

	if _, err := uuid.Parse(id); err != nil {
		if clearErr := r.clearActive(ctx); clearErr != nil {
			return errors.Join(fmt.Errorf("encode active alarm id: %w", err), clearErr)
		}

		return fmt.Errorf("encode active alarm id: %w", err)
	}

	if err := r.blobs.Put(ctx, ActiveAlarmKey, []byte(id)); err != nil {
		return fmt.Errorf("write active alarm id: %w", err)
	}

	return nil
}

func (r *Repository) clearActive(ctx context.Context) error {
	if err := r.blobs.Delete(ctx, ActiveAlarmKey); err != nil {
		return fmt.Errorf("clear active alarm id: %w", err)
	}

	return nil
}

func (r *Repository) get(ctx context.Context, key string) ([]byte, error) {
	contents, err := r.blobs.Get(ctx, key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	return contents, nil
}
