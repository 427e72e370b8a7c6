package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"freight-bid-service/internal/domain/shared"

	"github.com/google/uuid"
)

// ParticipantRepository implements the participant repository interface
type ParticipantRepository struct {
	conn *Connection
}

// NewParticipantRepository creates a new participant repository
func NewParticipantRepository(conn *Connection) *ParticipantRepository {
	return &ParticipantRepository{conn: conn}
}

// GetByID retrieves a participant by ID
func (r *ParticipantRepository) GetByID(ctx context.Context, id uuid.UUID) (*shared.Participant, error) {
	query := `
		SELECT id, name, kind, role, notify_token, email, created_at
		FROM participants
		WHERE id = $1
	`

	var participant shared.Participant
	err := r.conn.GetDB().QueryRowContext(ctx, query, id).Scan(
		&participant.ID,
		&participant.Name,
		&participant.Kind,
		&participant.Role,
		&participant.NotifyToken,
		&participant.Email,
		&participant.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	return &participant, nil
}

// Create creates a new participant
func (r *ParticipantRepository) Create(ctx context.Context, participant *shared.Participant) error {
	query := `
		INSERT INTO participants (id, name, kind, role, notify_token, email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.GetDB().ExecContext(ctx, query,
		participant.ID,
		participant.Name,
		participant.Kind,
		participant.Role,
		participant.NotifyToken,
		participant.Email,
		participant.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("create participant %s: %w", participant.ID, shared.ErrDuplicateID)
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}

	return nil
}
