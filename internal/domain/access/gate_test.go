package access

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestGuard(t *testing.T) {
	settled := func(role Role) RoleState { return RoleState{Role: role} }

	tests := []struct {
		name     string
		required Role
		sess     SessionState
		role     RoleState
		want     Action
	}{
		{"session loading", RoleDoctor, SessionState{Loading: true}, settled(RoleDoctor), Suspend},
		{"role loading", RoleDoctor, SessionState{Authenticated: true}, RoleState{Loading: true}, Suspend},
		{"both loading", RoleDoctor, SessionState{Loading: true}, RoleState{Loading: true}, Suspend},
		{"unauthenticated", RoleDoctor, SessionState{}, settled(RoleNone), Redirect(RouteSignIn)},
		{"unauthenticated wins over role", RolePatient, SessionState{}, settled(RolePatient), Redirect(RouteSignIn)},
		{"doctor on patient surface", RolePatient, SessionState{Authenticated: true}, settled(RoleDoctor), Redirect(RouteDoctorHome)},
		{"patient on doctor surface", RoleDoctor, SessionState{Authenticated: true}, settled(RolePatient), Redirect(RoutePatientHome)},
		{"admin on doctor surface", RoleDoctor, SessionState{Authenticated: true}, settled(RoleAdmin), Redirect(RouteHome)},
		{"doctor match", RoleDoctor, SessionState{Authenticated: true}, settled(RoleDoctor), Render},
		{"patient match", RolePatient, SessionState{Authenticated: true}, settled(RolePatient), Render},
		{"identity-only check ignores role", RoleNone, SessionState{Authenticated: true}, settled(RoleDoctor), Render},
		{"identity-only check unauthenticated", RoleNone, SessionState{}, settled(RoleNone), Redirect(RouteSignIn)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Guard(tt.required, tt.sess, tt.role); got != tt.want {
				t.Errorf("Guard() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHomeRoute(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleDoctor, RouteDoctorHome},
		{RolePatient, RoutePatientHome},
		{RoleAdmin, RouteHome},
		{RoleNone, RouteHome},
	}
	for _, tt := range tests {
		if got := HomeRoute(tt.role); got != tt.want {
			t.Errorf("HomeRoute(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
}

// mockSessionStore is a hand-driven SessionStore.
type mockSessionStore struct {
	mu    sync.Mutex
	state SessionState
	subs  []func(SessionState)
}

func (m *mockSessionStore) Session() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *mockSessionStore) Subscribe(fn func(SessionState)) func() {
	m.mu.Lock()
	m.subs = append(m.subs, fn)
	m.mu.Unlock()
	return func() {}
}

func (m *mockSessionStore) set(s SessionState) {
	m.mu.Lock()
	m.state = s
	fns := append([]func(SessionState){}, m.subs...)
	m.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

func TestGate_SuspendsUntilSettledThenRenders(t *testing.T) {
	release := make(chan struct{})
	lookup := func(_ context.Context, _ string) (Role, error) {
		<-release
		return RoleDoctor, nil
	}
	resolver := NewResolver(lookup, zerolog.Nop())
	sessions := &mockSessionStore{state: SessionState{Authenticated: true}}

	resolver.SetIdentity(context.Background(), "doc-1")
	g := NewGate(RoleDoctor, sessions, resolver)
	defer g.Close()

	if a := g.Action(); a != Suspend {
		t.Fatalf("action while loading = %+v, want Suspend", a)
	}

	actions := make(chan Action, 8)
	defer g.Subscribe(func(a Action) { actions <- a })()

	close(release)
	select {
	case a := <-actions:
		if a != Render {
			t.Errorf("action after settle = %+v, want Render", a)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("gate never republished after role settled")
	}
}

func TestGate_ReevaluatesOnSessionChange(t *testing.T) {
	lookup := func(_ context.Context, _ string) (Role, error) { return RolePatient, nil }
	resolver := NewResolver(lookup, zerolog.Nop())
	sessions := &mockSessionStore{state: SessionState{Authenticated: false}}

	resolver.SetIdentity(context.Background(), "")
	g := NewGate(RoleNone, sessions, resolver)
	defer g.Close()

	if a := g.Action(); a != Redirect(RouteSignIn) {
		t.Fatalf("action = %+v, want redirect to sign-in", a)
	}

	sessions.set(SessionState{Authenticated: true})
	if a := g.Action(); a != Render {
		t.Errorf("action after sign-in = %+v, want Render", a)
	}
}

func TestGate_NoRepublishWhenActionUnchanged(t *testing.T) {
	lookup := func(_ context.Context, _ string) (Role, error) { return RolePatient, nil }
	resolver := NewResolver(lookup, zerolog.Nop())
	sessions := &mockSessionStore{state: SessionState{Authenticated: false}}

	resolver.SetIdentity(context.Background(), "")
	g := NewGate(RolePatient, sessions, resolver)
	defer g.Close()

	calls := 0
	defer g.Subscribe(func(Action) { calls++ })()

	// Still unauthenticated; the decision stays redirect-to-sign-in.
	sessions.set(SessionState{Authenticated: false})
	if calls != 0 {
		t.Errorf("gate republished %d times for an unchanged action", calls)
	}
}
