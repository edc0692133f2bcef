package access

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// RoleLookup resolves the stored role for an identity. Implementations
// return (RoleNone, nil) when no role record exists.
type RoleLookup func(ctx context.Context, identityID string) (Role, error)

// RoleState is the resolver's published state. While a lookup is in flight
// Loading is true and Role is RoleNone; once settled Loading is false and
// Role carries the resolved value.
type RoleState struct {
	Role    Role
	Loading bool
}

// Resolver tracks the role of the current identity. SetIdentity starts an
// asynchronous lookup; a lookup error or a missing role record settles to
// patient rather than an error state, so an authenticated identity never
// stays unresolved.
type Resolver struct {
	lookup RoleLookup
	logger zerolog.Logger

	mu         sync.Mutex
	generation uint64
	identityID string
	state      RoleState
	subs       map[int]func(RoleState)
	nextSub    int
}

func NewResolver(lookup RoleLookup, logger zerolog.Logger) *Resolver {
	return &Resolver{
		lookup: lookup,
		logger: logger,
		subs:   make(map[int]func(RoleState)),
	}
}

// SetIdentity switches the resolver to a new identity and starts a lookup
// for it. An empty identity settles immediately to RoleNone. A lookup still
// in flight for a previous identity is superseded: its completion is
// discarded when it lands.
func (r *Resolver) SetIdentity(ctx context.Context, identityID string) {
	r.mu.Lock()
	r.generation++
	gen := r.generation
	r.identityID = identityID

	if identityID == "" {
		fns, state := r.publishLocked(RoleState{Role: RoleNone, Loading: false})
		r.mu.Unlock()
		notify(fns, state)
		return
	}

	fns, state := r.publishLocked(RoleState{Role: RoleNone, Loading: true})
	r.mu.Unlock()
	notify(fns, state)

	go r.resolve(ctx, gen, identityID)
}

func (r *Resolver) resolve(ctx context.Context, gen uint64, identityID string) {
	role, err := r.lookup(ctx, identityID)
	if err != nil {
		r.logger.Warn().Err(err).Str("identity_id", identityID).
			Msg("role lookup failed, falling back to patient")
		role = RolePatient
	}
	if role == RoleNone {
		role = RolePatient
	}

	r.mu.Lock()
	if gen != r.generation {
		// A newer SetIdentity superseded this lookup.
		r.mu.Unlock()
		return
	}
	fns, state := r.publishLocked(RoleState{Role: role, Loading: false})
	r.mu.Unlock()
	notify(fns, state)
}

// State returns the current role state snapshot.
func (r *Resolver) State() RoleState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Subscribe registers fn to be called on every state change. The returned
// function removes the subscription.
func (r *Resolver) Subscribe(fn func(RoleState)) func() {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

// publishLocked stores the new state and returns the subscriber callbacks to
// invoke. Callbacks run outside the lock so subscribers may call back into
// the resolver.
func (r *Resolver) publishLocked(state RoleState) ([]func(RoleState), RoleState) {
	r.state = state
	fns := make([]func(RoleState), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	return fns, state
}

func notify(fns []func(RoleState), state RoleState) {
	for _, fn := range fns {
		fn(state)
	}
}
