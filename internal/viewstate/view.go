// Package viewstate holds the client-side screen state: which view is
// showing, the two overlays that sit on top of it and the signed-in session.
// Nothing here talks to the network; clients drive it from their own loop.
package viewstate

import (
	"errors"
	"fmt"
)

// View identifies one screen. The set is closed.
type View int

const (
	Welcome View = iota
	Login
	Register
	Forgot
	Explore
	Post
	MyItems
	Inbox
	Profile
)

var ErrUnknownView = errors.New("unknown view")

// MainViews are reachable from the navigation bar once signed in, in bar order.
var MainViews = []View{Explore, Post, MyItems, Inbox, Profile}

func (v View) String() string {
	switch v {
	case Welcome:
		return "welcome"
	case Login:
		return "login"
	case Register:
		return "register"
	case Forgot:
		return "forgot"
	case Explore:
		return "explore"
	case Post:
		return "post"
	case MyItems:
		return "my-items"
	case Inbox:
		return "inbox"
	case Profile:
		return "profile"
	default:
		return fmt.Sprintf("view(%d)", int(v))
	}
}

// IsMain reports whether v belongs to the signed-in app rather than the
// welcome and auth screens.
func (v View) IsMain() bool {
	return v >= Explore && v <= Profile
}

// ParseView is the inverse of String.
func ParseView(s string) (View, error) {
	for v := Welcome; v <= Profile; v++ {
		if v.String() == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// Screens renders each view. Adding a view means adding a method here, so
// every implementation has to handle it.
type Screens interface {
	Welcome() error
	Login() error
	Register() error
	Forgot() error
	Explore() error
	Post() error
	MyItems() error
	Inbox() error
	Profile() error
}

// Dispatch calls the Screens method for v.
func Dispatch(v View, s Screens) error {
	switch v {
	case Welcome:
		return s.Welcome()
	case Login:
		return s.Login()
	case Register:
		return s.Register()
	case Forgot:
		return s.Forgot()
	case Explore:
		return s.Explore()
	case Post:
		return s.Post()
	case MyItems:
		return s.MyItems()
	case Inbox:
		return s.Inbox()
	case Profile:
		return s.Profile()
	default:
		return fmt.Errorf("%w: %d", ErrUnknownView, int(v))
	}
}
