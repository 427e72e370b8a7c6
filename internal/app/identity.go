package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"freight-bid-service/internal/domain/shared"
	"freight-bid-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// IdentityService resolves participant ids to names and roles
type IdentityService struct {
	participantRepo outbound.ParticipantRepository
	clock           func() time.Time
	logger          zerolog.Logger
}

type IdentityServiceParams struct {
	ParticipantRepo outbound.ParticipantRepository
	Clock           func() time.Time
	Logger          zerolog.Logger
}

func NewIdentityService(params IdentityServiceParams) *IdentityService {
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &IdentityService{
		participantRepo: params.ParticipantRepo,
		clock:           clock,
		logger:          params.Logger.With().Str("component", "identity_service").Logger(),
	}
}

// Resolve looks up the participant acting on a request
func (service *IdentityService) Resolve(ctx context.Context, participantID uuid.UUID) (*shared.Participant, error) {
	if participantID == uuid.Nil {
		return nil, shared.ErrParticipantRequired
	}

	participant, err := service.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			service.logger.Error().Err(err).Str("participant_id", participantID.String()).Msg("Failed to resolve participant")
		}
		return nil, err
	}

	return participant, nil
}

// Register stores a participant, assigning an ID when missing
func (service *IdentityService) Register(ctx context.Context, participant *shared.Participant) error {
	participant.Name = strings.TrimSpace(participant.Name)
	if participant.Name == "" {
		return shared.ErrNameRequired
	}
	switch participant.Kind {
	case shared.KindCarrier:
		participant.Role = shared.RoleStandard
	case shared.KindStaff:
		if participant.Role == "" {
			participant.Role = shared.RoleStandard
		}
	default:
		return shared.ErrInvalidKind
	}
	if participant.ID == uuid.Nil {
		participant.ID = uuid.New()
	}
	if participant.CreatedAt.IsZero() {
		participant.CreatedAt = service.clock()
	}

	if err := service.participantRepo.Create(ctx, participant); err != nil {
		service.logger.Error().Err(err).Str("participant_id", participant.ID.String()).Msg("Failed to register participant")
		return err
	}

	service.logger.Info().
		Str("participant_id", participant.ID.String()).
		Str("kind", string(participant.Kind)).
		Str("role", string(participant.Role)).
		Msg("Participant registered")
	return nil
}
