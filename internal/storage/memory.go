package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"medscribe/internal/model"
	"medscribe/internal/repository"
)

// MemoryRepository keeps notes and topics in process memory. It is used
// when no database is configured; contents are lost on restart.
type MemoryRepository struct {
	mu     sync.Mutex
	notes  []model.NoteRecord
	topics []model.TopicRecord
	ids    map[uuid.UUID]struct{}
}

var _ repository.Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{ids: make(map[uuid.UUID]struct{})}
}

func (m *MemoryRepository) InsertNote(_ context.Context, note *model.NoteRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ids[note.ID]; ok {
		return repository.ErrDuplicate
	}
	m.ids[note.ID] = struct{}{}
	m.notes = append(m.notes, *note)
	return nil
}

func (m *MemoryRepository) ListNotes(_ context.Context, userID uuid.UUID) ([]model.NoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []model.NoteRecord{}
	for _, n := range m.notes {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// AddTopic stores a topic; topics have no writer in the recording flow.
func (m *MemoryRepository) AddTopic(topic model.TopicRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topics = append(m.topics, topic)
}

func (m *MemoryRepository) ListTopics(_ context.Context, userID uuid.UUID) ([]model.TopicRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []model.TopicRecord{}
	for _, t := range m.topics {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// NoteCount returns the number of stored notes across all users.
func (m *MemoryRepository) NoteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notes)
}
