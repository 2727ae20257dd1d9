package conversation

import (
	"context"
	"time"

	"consumo_wpp_backend/internal/consumption"
)

// memoryKeyPrefix namespaces conversation keys so the expiry listener
// can tell them apart from anything else living in the same keyspace.
const memoryKeyPrefix = "conversa:"

// MemoryKey builds the storage key for a sender's conversation.
func MemoryKey(phone string) string {
	return memoryKeyPrefix + phone
}

// PhoneFromKey recovers the sender phone from a storage key, or ""
// when the key is not a conversation key.
func PhoneFromKey(key string) string {
	if len(key) <= len(memoryKeyPrefix) || key[:len(memoryKeyPrefix)] != memoryKeyPrefix {
		return ""
	}
	return key[len(memoryKeyPrefix):]
}

// Store keeps per-sender conversation history with a sliding TTL.
// Both Load and Save refresh the TTL, so any activity keeps the
// conversation alive.
type Store interface {
	// Load returns the history for a sender, or an empty slice when
	// no conversation exists or it has expired.
	Load(ctx context.Context, phone string) ([]consumption.Turn, error)

	// Save replaces the history for a sender and resets its TTL.
	Save(ctx context.Context, phone string, history []consumption.Turn) error

	// Clear removes the conversation without triggering expiry
	// notifications semantics (an explicit close, not a timeout).
	Clear(ctx context.Context, phone string) error
}

// TTL is carried by the store implementations; this is the fallback
// used when configuration leaves it unset.
const DefaultTTL = 30 * time.Minute
