package event_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/alanyang/repair-desk/internal/domain/event"
)

func TestChannelFor(t *testing.T) {
	tests := []struct {
		typ  event.Type
		want event.Channel
	}{
		{event.TypeTaskCreated, event.ChannelTask},
		{event.TypeTaskAssigned, event.ChannelTask},
		{event.TypeTaskStatusUpdated, event.ChannelTask},
		{event.TypeUserCreated, event.ChannelUser},
		{event.TypeUserDeleted, event.ChannelUser},
		{event.TypeDashboardRevalidated, event.ChannelDashboard},
		{event.Type("unknown"), event.Channel("")},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			assert.Equal(t, tt.want, event.ChannelFor(tt.typ))
		})
	}
}

func TestRevalidated(t *testing.T) {
	e := event.Revalidated("admin-dashboard")
	assert.Equal(t, event.TypeDashboardRevalidated, e.Type)
	assert.Equal(t, "admin-dashboard", e.Tag)
	assert.Equal(t, uuid.Nil, e.EntityID)
	assert.False(t, e.Timestamp.IsZero())
}
