package services

import (
	"time"

	"arguematch/models"
)

// Registry tracks the identity of every joined connection.
// It is not safe for concurrent use; the Coordinator serializes access.
type Registry struct {
	identities map[string]models.ConnectionIdentity
	order      []string
	now        func() time.Time
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		identities: make(map[string]models.ConnectionIdentity),
		now:        time.Now,
	}
}

// Register stores or replaces the identity for a connection. A repeated
// register keeps the original join time and registration order.
func (r *Registry) Register(identity models.ConnectionIdentity) models.ConnectionIdentity {
	if existing, ok := r.identities[identity.ConnectionID]; ok {
		identity.JoinedAt = existing.JoinedAt
	} else {
		if identity.JoinedAt.IsZero() {
			identity.JoinedAt = r.now()
		}
		r.order = append(r.order, identity.ConnectionID)
	}
	r.identities[identity.ConnectionID] = identity
	return identity
}

// Lookup returns the identity of a connection
func (r *Registry) Lookup(connectionID string) (models.ConnectionIdentity, bool) {
	identity, ok := r.identities[connectionID]
	return identity, ok
}

// Remove forgets a connection. Unknown ids are ignored.
func (r *Registry) Remove(connectionID string) {
	if _, ok := r.identities[connectionID]; !ok {
		return
	}
	delete(r.identities, connectionID)
	for i, id := range r.order {
		if id == connectionID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of joined connections
func (r *Registry) Len() int {
	return len(r.identities)
}

// IDs returns connection ids in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}
