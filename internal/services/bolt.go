package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/codychat/chat-web-ui/internal/models"
	bolt "go.etcd.io/bbolt"
)

const (
	stateBucket      = "state"
	conversationsKey = "conversations"
	themeKey         = "theme"
)

// BoltMirror implements the persisted mirror on a BoltDB backend. The whole conversation set lives
// in a single slot as a JSON-serialized array, mimicking a browser local-storage entry: every write
// replaces the entire array, and a slot that cannot be parsed is cleared rather than retried.
type BoltMirror struct {
	db *bolt.DB

	logger *slog.Logger
}

// NewBoltMirror creates a new BoltMirror instance with the specified file path. It initializes the
// database with the required bucket and returns an error if the database cannot be opened or
// initialized. The database file is created with 0600 permissions if it doesn't exist.
func NewBoltMirror(path string, logger *slog.Logger) (BoltMirror, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return BoltMirror{}, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(stateBucket))
		return err
	})

	return BoltMirror{
		db:     db,
		logger: logger.With(slog.String("module", "boltmirror")),
	}, err
}

// LoadConversations reads the conversation slot. A missing slot yields an empty set. A slot that
// fails to unmarshal is discarded and cleared, so a corrupted mirror cannot fail every subsequent
// load; the caller just starts over with an empty history.
func (b BoltMirror) LoadConversations(context.Context) ([]models.Conversation, error) {
	var raw []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(stateBucket))
		if bkt == nil {
			return nil
		}
		if v := bkt.Get([]byte(conversationsKey)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read conversations: %w", err)
	}
	if raw == nil {
		return nil, nil
	}

	var conversations []models.Conversation
	if err := json.Unmarshal(raw, &conversations); err != nil {
		b.logger.Error("Discarding unreadable conversation history",
			slog.String("err", err.Error()))
		if clearErr := b.clearSlot(conversationsKey); clearErr != nil {
			return nil, clearErr
		}
		return nil, nil
	}
	return conversations, nil
}

// SaveConversations overwrites the conversation slot with the full serialized set.
func (b BoltMirror) SaveConversations(_ context.Context, conversations []models.Conversation) error {
	v, err := json.Marshal(conversations)
	if err != nil {
		return fmt.Errorf("failed to marshal conversations: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(stateBucket))
		if bkt == nil {
			return fmt.Errorf("state bucket is missing")
		}
		return bkt.Put([]byte(conversationsKey), v)
	})
}

// Theme reads the persisted theme preference. An empty string means no preference is stored.
func (b BoltMirror) Theme(context.Context) (string, error) {
	var theme string
	err := b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(stateBucket))
		if bkt == nil {
			return nil
		}
		theme = string(bkt.Get([]byte(themeKey)))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to read theme: %w", err)
	}
	return theme, nil
}

// SaveTheme stores the theme preference.
func (b BoltMirror) SaveTheme(_ context.Context, theme string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(stateBucket))
		if bkt == nil {
			return fmt.Errorf("state bucket is missing")
		}
		return bkt.Put([]byte(themeKey), []byte(theme))
	})
}

// Close releases the underlying database file.
func (b BoltMirror) Close() error {
	return b.db.Close()
}

func (b BoltMirror) clearSlot(key string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(stateBucket))
		if bkt == nil {
			return nil
		}
		return bkt.Delete([]byte(key))
	})
}
