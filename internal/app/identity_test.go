package app

import (
	"context"
	"testing"

	"freight-bid-service/internal/adapters/memory"
	"freight-bid-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestIdentityService(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service := NewIdentityService(IdentityServiceParams{
		ParticipantRepo: memory.NewParticipantRepo(),
		Logger:          zerolog.Nop(),
	})

	boss := &shared.Participant{Name: " Marta ", Kind: shared.KindStaff, Role: shared.RoleMaster}
	require.NoError(t, service.Register(ctx, boss))
	require.NotEqual(t, uuid.Nil, boss.ID)
	require.False(t, boss.CreatedAt.IsZero())

	resolved, err := service.Resolve(ctx, boss.ID)
	require.NoError(t, err)
	require.Equal(t, "Marta", resolved.Name)
	require.True(t, resolved.IsMaster())

	// carriers never hold the master role
	carrier := &shared.Participant{Name: "Alpha", Kind: shared.KindCarrier, Role: shared.RoleMaster}
	require.NoError(t, service.Register(ctx, carrier))
	require.Equal(t, shared.RoleStandard, carrier.Role)

	require.ErrorIs(t, service.Register(ctx, &shared.Participant{Kind: shared.KindStaff}), shared.ErrNameRequired)
	require.ErrorIs(t, service.Register(ctx, &shared.Participant{Name: "x", Kind: "robot"}), shared.ErrValidation)

	_, err = service.Resolve(ctx, uuid.New())
	require.ErrorIs(t, err, shared.ErrParticipantNotFound)

	_, err = service.Resolve(ctx, uuid.Nil)
	require.ErrorIs(t, err, shared.ErrParticipantRequired)
}
