package gate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/edubd/internal/client/dialog"
	"github.com/dmitrijs2005/edubd/internal/client/session"
	"github.com/dmitrijs2005/edubd/internal/common"
	"github.com/dmitrijs2005/edubd/internal/logging"
)

// maxRedirects bounds the redirect chain of a single navigation.
const maxRedirects = 8

// Sessions is the read side of session.Store.
type Sessions interface {
	Snapshot() session.Snapshot
	Subscribe(fn func(session.Snapshot)) func()
}

// Page is the router's committed location and what it resolved to.
type Page struct {
	Location string
	Route    Route
	Params   map[string]string
	Decision Decision
	// From is the location a gate redirect replaced, if any.
	From string
}

func (p Page) Param(key string) string {
	return p.Params[key]
}

type entry struct {
	location string
	from     string
}

type RouterOption func(*Router)

func WithRouterLogger(l logging.Logger) RouterOption {
	return func(r *Router) { r.log = l }
}

func WithRoutes(routes []Route) RouterOption {
	return func(r *Router) { r.table = routes }
}

// Router owns the navigation history. Every navigation is gated, the
// result is committed and published, and only then are the decision's
// effects run.
type Router struct {
	sessions Sessions
	dialog   dialog.Opener
	log      logging.Logger
	table    []Route

	mux    *chi.Mux
	routes map[string]Route
	unsub  func()

	mu      sync.Mutex
	history []entry
	current Page
	// seq counts commits; a refresh started at one seq must not land
	// after a newer navigation.
	seq     uint64
	subs    map[int]func(Page)
	nextSub int
}

var _ session.Navigator = (*Router)(nil)

// NewRouter builds the routing tree, starts at the root and re-gates the
// current location every time the session changes.
func NewRouter(sessions Sessions, opener dialog.Opener, opts ...RouterOption) (*Router, error) {
	r := &Router{
		sessions: sessions,
		dialog:   opener,
		log:      logging.Nop(),
		table:    DefaultRoutes(),
		mux:      chi.NewRouter(),
		routes:   make(map[string]Route),
		subs:     make(map[int]func(Page)),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With("component", "router")

	for _, rt := range r.table {
		if _, dup := r.routes[rt.Pattern]; dup {
			return nil, fmt.Errorf("duplicate route %q", rt.Pattern)
		}
		r.routes[rt.Pattern] = rt
		r.mux.Handle(rt.Pattern, http.NotFoundHandler())
	}

	r.Push(common.RootPath)
	r.unsub = sessions.Subscribe(func(session.Snapshot) { r.refresh() })
	return r, nil
}

// Close stops following session changes.
func (r *Router) Close() {
	if r.unsub != nil {
		r.unsub()
	}
}

// Navigate implements session.Navigator.
func (r *Router) Navigate(path string) {
	r.Push(path)
}

// Push navigates to path, adding a history entry.
func (r *Router) Push(path string) Page {
	return r.navigate(path, false)
}

// Replace navigates to path, overwriting the current history entry.
func (r *Router) Replace(path string) Page {
	return r.navigate(path, true)
}

// Back pops the current entry and re-gates the previous one. It reports
// false when there is nothing to go back to.
func (r *Router) Back() (Page, bool) {
	r.mu.Lock()
	if len(r.history) < 2 {
		page := r.current
		r.mu.Unlock()
		return page, false
	}
	r.history = r.history[:len(r.history)-1]
	prev := r.history[len(r.history)-1]
	r.seq++
	r.mu.Unlock()

	return r.navigate(prev.location, true), true
}

func (r *Router) Current() Page {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History returns the locations on the stack, oldest first.
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.history))
	for i, e := range r.history {
		out[i] = e.location
	}
	return out
}

func (r *Router) Subscribe(fn func(Page)) func() {
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

// refresh re-gates the current location after a session change. A page
// that was loading while the session bootstrapped gets its real decision
// here.
func (r *Router) refresh() {
	r.mu.Lock()
	if len(r.history) == 0 {
		r.mu.Unlock()
		return
	}
	loc := r.history[len(r.history)-1].location
	prev := r.current.Decision.Outcome
	seq := r.seq
	r.mu.Unlock()

	page, effects := r.resolveChain(loc)
	if page.Decision.Outcome == prev && page.Location == loc {
		return
	}
	if _, ok := r.commit(page, true, effects, &seq); !ok {
		r.log.Debug(context.Background(), "dropped stale re-gate", "location", loc)
	}
}

func (r *Router) navigate(path string, replace bool) Page {
	page, effects := r.resolveChain(path)
	page, _ = r.commit(page, replace, effects, nil)
	return page
}

// resolveChain follows gate redirects until a location renders something
// other than a redirect. Effects of every hop are collected in order.
func (r *Router) resolveChain(path string) (Page, []Effect) {
	var (
		effects []Effect
		from    string
	)
	loc := path
	for hop := 0; ; hop++ {
		page := r.resolve(loc)
		effects = append(effects, page.Decision.Effects...)

		if page.Decision.Outcome != OutcomeRedirect {
			if from != "" {
				page.From = from
			}
			return page, effects
		}
		if hop == maxRedirects {
			r.log.Error(context.Background(), "redirect loop", "path", path)
			page.Decision = Decision{Outcome: OutcomeNotFound}
			return page, effects
		}
		if from == "" {
			from = page.Decision.From
		}
		loc = page.Decision.To
	}
}

// resolve matches loc against the routing tree and gates it.
func (r *Router) resolve(loc string) Page {
	page := Page{Location: loc}

	path := loc
	if u, err := url.Parse(loc); err == nil && u.Path != "" {
		path = u.Path
	}

	rctx := chi.NewRouteContext()
	if !r.mux.Match(rctx, http.MethodGet, path) {
		page.Decision = Decision{Outcome: OutcomeNotFound}
		return page
	}

	rt, ok := r.routes[rctx.RoutePattern()]
	if !ok {
		page.Decision = Decision{Outcome: OutcomeNotFound}
		return page
	}
	page.Route = rt

	if n := len(rctx.URLParams.Keys); n > 0 {
		page.Params = make(map[string]string, n)
		for i, k := range rctx.URLParams.Keys {
			page.Params[k] = rctx.URLParams.Values[i]
		}
	}

	snap := r.sessions.Snapshot()
	if rt.IsVirtual() {
		page.Decision = DecideVirtual(snap, loc, rt.Virtual)
	} else {
		page.Decision = Decide(snap, loc, rt.Requirement)
	}
	return page
}

// commit records page and runs its effects. With ifSeq set, nothing
// happens unless no other commit ran since *ifSeq was read.
func (r *Router) commit(page Page, replace bool, effects []Effect, ifSeq *uint64) (Page, bool) {
	r.mu.Lock()
	if ifSeq != nil && *ifSeq != r.seq {
		r.mu.Unlock()
		return page, false
	}
	r.seq++
	e := entry{location: page.Location, from: page.From}
	if replace && len(r.history) > 0 {
		r.history[len(r.history)-1] = e
	} else {
		r.history = append(r.history, e)
	}
	r.current = page
	subs := make([]func(Page), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	r.mu.Unlock()

	r.log.Debug(context.Background(), "navigated", "location", page.Location,
		"outcome", page.Decision.Outcome.String(), "from", page.From)

	for _, fn := range subs {
		fn(page)
	}
	for _, eff := range effects {
		if eff.OpenView != "" && r.dialog != nil {
			r.dialog.OpenView(eff.OpenView)
		}
	}
	return page, true
}
