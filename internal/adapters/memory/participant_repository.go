package memory

import (
	"context"
	"fmt"
	"sync"

	"freight-bid-service/internal/domain/shared"

	"github.com/google/uuid"
)

// ParticipantRepo is an in-memory implementation of outbound.ParticipantRepository
type ParticipantRepo struct {
	mu           sync.RWMutex
	participants map[uuid.UUID]shared.Participant
}

func NewParticipantRepo() *ParticipantRepo {
	return &ParticipantRepo{participants: make(map[uuid.UUID]shared.Participant)}
}

func (r *ParticipantRepo) GetByID(ctx context.Context, id uuid.UUID) (*shared.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.participants[id]
	if !ok {
		return nil, shared.ErrParticipantNotFound
	}
	return &p, nil
}

func (r *ParticipantRepo) Create(ctx context.Context, p *shared.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.participants[p.ID]; ok {
		return fmt.Errorf("create participant %s: %w", p.ID, shared.ErrDuplicateID)
	}
	r.participants[p.ID] = *p
	return nil
}
