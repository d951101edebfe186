package sessiond

import (
	"net"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/robfig/cron/v3"
)

type memoryEntry struct {
	playerUUID uuid.UUID
	expiresAt  time.Time
}

// memoryStorage is the cache fallback when no redis URI is configured.
// Expired entries are dropped lazily on read and in bulk by a cron sweep.
type memoryStorage struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	sweeper *cron.Cron
}

func newMemory(ttl time.Duration, sweepSchedule string) (*memoryStorage, error) {
	s := &memoryStorage{
		ttl:     ttl,
		entries: map[string]memoryEntry{},
		sweeper: cron.New(),
	}

	if _, err := s.sweeper.AddJob(sweepSchedule, cron.FuncJob(s.sweep)); err != nil {
		return nil, err
	}
	s.sweeper.Start()

	return s, nil
}

func (s *memoryStorage) PutValidation(username string, ip net.IP, playerUUID uuid.UUID) error {
	key := validationKey(username, ip)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{
		playerUUID: playerUUID,
		expiresAt:  time.Now().Add(s.ttl),
	}
	return nil
}

func (s *memoryStorage) GetValidation(username string, ip net.IP) (uuid.UUID, error) {
	key := validationKey(username, ip)
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return uuid.Nil, errValidationNotFound
	}

	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return uuid.Nil, errValidationNotFound
	}

	return entry.playerUUID, nil
}

func (s *memoryStorage) sweep() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
}

func (s *memoryStorage) Close() error {
	s.sweeper.Stop()
	return nil
}
