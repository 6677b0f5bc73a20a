package model

import (
	"time"
)

// ChangeAction describes a mutation carried by a ChangeEvent.
type ChangeAction string

const (
	ChangeCreate ChangeAction = "create"
	ChangeUpdate ChangeAction = "update"
	ChangeDelete ChangeAction = "delete"
)

// ChangeEvent announces a mutation so list views keyed by the affected
// parent ids can be invalidated. An empty Keys map means every cached view of
// the collection is stale.
type ChangeEvent struct {
	ID         string            `json:"id"`
	Collection string            `json:"collection"`
	Action     ChangeAction      `json:"action"`
	RecordID   string            `json:"record_id,omitempty"`
	Keys       map[string]string `json:"keys,omitempty"`
	ActorID    string            `json:"actor_id"`
	Source     string            `json:"source"`
	OccurredAt time.Time         `json:"occurred_at"`
}
