package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeTaskCreated          Type = "task_created"
	TypeTaskAssigned         Type = "task_assigned"
	TypeTaskStatusUpdated    Type = "task_status_updated"
	TypeUserCreated          Type = "user_created"
	TypeUserDeleted          Type = "user_deleted"
	TypeDashboardRevalidated Type = "dashboard_revalidated"
)

// Channel is a domain-scoped Postgres NOTIFY channel.
// All event types within a domain share one LISTEN connection.
type Channel string

const (
	ChannelTask      Channel = "task"
	ChannelUser      Channel = "user"
	ChannelDashboard Channel = "dashboard"
)

var typeToChannel = map[Type]Channel{
	TypeTaskCreated:          ChannelTask,
	TypeTaskAssigned:         ChannelTask,
	TypeTaskStatusUpdated:    ChannelTask,
	TypeUserCreated:          ChannelUser,
	TypeUserDeleted:          ChannelUser,
	TypeDashboardRevalidated: ChannelDashboard,
}

// ChannelFor returns the domain channel for a given event type.
func ChannelFor(t Type) Channel { return typeToChannel[t] }

// Event carries identifiers only, not full state.
// Subscribers fetch fresh state from the appropriate repository.
// Tag is set for dashboard revalidation and names the invalidated view.
type Event struct {
	Type      Type      `json:"type"`
	EntityID  uuid.UUID `json:"entity_id"`
	Tag       string    `json:"tag,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func New(eventType Type, entityID uuid.UUID) Event {
	return Event{
		Type:      eventType,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}

func Revalidated(tag string) Event {
	return Event{
		Type:      TypeDashboardRevalidated,
		Tag:       tag,
		Timestamp: time.Now().UTC(),
	}
}
