package access

import "sync"

// Route targets are logical identifiers; clients interpret them.
const (
	RouteSignIn      = "/auth"
	RouteDoctorHome  = "/doctor/dashboard"
	RoutePatientHome = "/patient/dashboard"
	RouteHome        = "/dashboard"
)

// HomeRoute returns the canonical landing route for a role.
func HomeRoute(role Role) string {
	switch role {
	case RoleDoctor:
		return RouteDoctorHome
	case RolePatient:
		return RoutePatientHome
	default:
		return RouteHome
	}
}

type ActionKind int

const (
	ActionSuspend ActionKind = iota
	ActionRender
	ActionRedirect
)

// Action is a gate decision. Target is set only for redirects.
type Action struct {
	Kind   ActionKind
	Target string
}

var (
	Suspend = Action{Kind: ActionSuspend}
	Render  = Action{Kind: ActionRender}
)

func Redirect(target string) Action {
	return Action{Kind: ActionRedirect, Target: target}
}

// SessionState is the authentication snapshot the gate consumes.
type SessionState struct {
	Authenticated bool
	Loading       bool
}

// Guard decides what a role-gated surface should do. It never redirects
// while either the session or the role is still loading; once both are
// settled, an unauthenticated caller goes to sign-in and a wrong-role caller
// goes to their own role's home. A required role of RoleNone checks
// authentication only.
func Guard(required Role, sess SessionState, role RoleState) Action {
	if sess.Loading || role.Loading {
		return Suspend
	}
	if !sess.Authenticated {
		return Redirect(RouteSignIn)
	}
	if required == RoleNone {
		return Render
	}
	if role.Role != required {
		return Redirect(HomeRoute(role.Role))
	}
	return Render
}

// SessionStore provides the authentication state the gate observes. It is an
// injected dependency so tests and alternative session backends can supply
// their own.
type SessionStore interface {
	Session() SessionState
	Subscribe(fn func(SessionState)) func()
}

// Gate continuously evaluates Guard over a session store and a role
// resolver, republishing whenever the resulting action changes.
type Gate struct {
	required Role

	mu      sync.Mutex
	session SessionState
	role    RoleState
	action  Action
	subs    map[int]func(Action)
	nextSub int
	unsubs  []func()
}

// NewGate builds a gate for the required role and subscribes it to both
// inputs. Call Close to detach.
func NewGate(required Role, sessions SessionStore, resolver *Resolver) *Gate {
	g := &Gate{
		required: required,
		session:  sessions.Session(),
		role:     resolver.State(),
		subs:     make(map[int]func(Action)),
	}
	g.action = Guard(g.required, g.session, g.role)

	g.unsubs = append(g.unsubs,
		sessions.Subscribe(func(s SessionState) {
			g.mu.Lock()
			g.session = s
			fns, action, changed := g.reevaluateLocked()
			g.mu.Unlock()
			if changed {
				notifyActions(fns, action)
			}
		}),
		resolver.Subscribe(func(r RoleState) {
			g.mu.Lock()
			g.role = r
			fns, action, changed := g.reevaluateLocked()
			g.mu.Unlock()
			if changed {
				notifyActions(fns, action)
			}
		}),
	)
	return g
}

// Action returns the current decision.
func (g *Gate) Action() Action {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.action
}

// Subscribe registers fn to be called whenever the decision changes. The
// returned function removes the subscription.
func (g *Gate) Subscribe(fn func(Action)) func() {
	g.mu.Lock()
	id := g.nextSub
	g.nextSub++
	g.subs[id] = fn
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.subs, id)
		g.mu.Unlock()
	}
}

// Close detaches the gate from its inputs.
func (g *Gate) Close() {
	for _, unsub := range g.unsubs {
		unsub()
	}
	g.unsubs = nil
}

func (g *Gate) reevaluateLocked() ([]func(Action), Action, bool) {
	next := Guard(g.required, g.session, g.role)
	if next == g.action {
		return nil, next, false
	}
	g.action = next
	fns := make([]func(Action), 0, len(g.subs))
	for _, fn := range g.subs {
		fns = append(fns, fn)
	}
	return fns, next, true
}

func notifyActions(fns []func(Action), action Action) {
	for _, fn := range fns {
		fn(action)
	}
}
