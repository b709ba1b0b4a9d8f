// Package dialog holds the single authentication dialog shared by every
// screen: whether it is visible and which of its views is showing.
package dialog

import (
	"fmt"
	"sync"
)

type View string

const (
	ViewLogin          View = "login"
	ViewRegister       View = "register"
	ViewForgotPassword View = "forgot-password"
)

// Views lists every view in the order the dialog offers them.
var Views = []View{ViewLogin, ViewRegister, ViewForgotPassword}

func (v View) Valid() bool {
	switch v {
	case ViewLogin, ViewRegister, ViewForgotPassword:
		return true
	}
	return false
}

// ParseView converts user input into a View.
func ParseView(s string) (View, error) {
	v := View(s)
	if !v.Valid() {
		return "", fmt.Errorf("unknown dialog view %q, expected one of %v", s, Views)
	}
	return v, nil
}

// State is what subscribers see. View is kept while the dialog is hidden
// so it reopens where it was.
type State struct {
	Visible bool
	View    View
}

// Opener is the part of Coordinator the access gate needs.
type Opener interface {
	OpenView(v View)
}

type Coordinator struct {
	mu      sync.Mutex
	state   State
	subs    map[int]func(State)
	nextSub int
}

var _ Opener = (*Coordinator)(nil)

func NewCoordinator() *Coordinator {
	return &Coordinator{
		state: State{View: ViewLogin},
		subs:  make(map[int]func(State)),
	}
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OpenView shows the dialog on v. Opening the view that is already
// showing changes nothing and notifies nobody.
func (c *Coordinator) OpenView(v View) {
	mustBeValid(v)
	c.set(State{Visible: true, View: v})
}

// Close hides the dialog. Closing a hidden dialog is a no-op.
func (c *Coordinator) Close() {
	c.mu.Lock()
	next := State{Visible: false, View: c.state.View}
	c.mu.Unlock()
	c.set(next)
}

// SwitchView changes the view and leaves visibility alone, so switching a
// hidden dialog only decides what the next open shows.
func (c *Coordinator) SwitchView(v View) {
	mustBeValid(v)
	c.mu.Lock()
	next := State{Visible: c.state.Visible, View: v}
	c.mu.Unlock()
	c.set(next)
}

func (c *Coordinator) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Coordinator) set(next State) {
	c.mu.Lock()
	if c.state == next {
		c.mu.Unlock()
		return
	}
	c.state = next
	subs := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

func mustBeValid(v View) {
	if !v.Valid() {
		panic(fmt.Sprintf("dialog: invalid view %q", string(v)))
	}
}
