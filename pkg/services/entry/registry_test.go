package entry

import (
	"context"
	"testing"

	"github.com/de-tools/sales-atlas/pkg/clock"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	remote := &mockRemote{}
	registry := NewRegistry(Dependencies{
		Summaries: remote,
		Dashboard: remote,
		Goals:     remote,
		Providers: remote,
		Saver:     remote,
		Clock:     clock.Fake(now),
	}, Options{})

	id, session := registry.Create()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, 1, registry.Len())

	got, ok := registry.Get(id)
	require.True(t, ok)
	assert.Same(t, session, got)

	otherID, _ := registry.Create()
	assert.NotEqual(t, id, otherID)

	remote.On("GetRestaurantGoals", mock.Anything).Return(goals(false), nil)
	remote.On("GetProviderConfig", mock.Anything).Return(providers(), nil)
	remote.On("FetchDashboardSummary", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(domain.DashboardSummary{}, nil)
	require.NoError(t, session.Open(context.Background(), currentWeek, nil))

	assert.True(t, registry.Remove(id))
	assert.False(t, registry.Remove(id))
	assert.False(t, session.IsOpen())
	_, ok = registry.Get(id)
	assert.False(t, ok)

	registry.Close()
	assert.Equal(t, 0, registry.Len())
}
