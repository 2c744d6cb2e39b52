package viewstate

import (
	"errors"
	"fmt"

	"github.com/javajoker/barter-backend/internal/models"
)

var ErrInvalidTransition = errors.New("invalid view transition")

// authTransitions lists where each pre-app screen may go. Main views are
// entered only through OnSignedIn.
var authTransitions = map[View][]View{
	Welcome:  {Login, Register},
	Login:    {Welcome, Forgot, Register},
	Register: {Welcome, Login},
	Forgot:   {Login},
}

// backTargets is hand-wired per screen; there is no history stack.
var backTargets = map[View]View{
	Welcome:  Welcome,
	Login:    Welcome,
	Register: Welcome,
	Forgot:   Login,
	Explore:  Explore,
	Post:     Explore,
	MyItems:  Explore,
	Inbox:    Explore,
	Profile:  Explore,
}

// Router holds the current view plus two independent overlays: the listing
// an offer is being drafted for and the offer whose chat is open.
type Router struct {
	current     View
	signedIn    bool
	offerTarget *models.Listing
	chatTarget  *models.Offer
}

func NewRouter() *Router {
	return &Router{current: Welcome}
}

func (r *Router) Current() View {
	return r.current
}

func (r *Router) SignedIn() bool {
	return r.signedIn
}

// Navigate switches screens. Signed-in users move freely between main
// views; before that only the auth flow edges are allowed.
func (r *Router) Navigate(to View) error {
	if to < Welcome || to > Profile {
		return fmt.Errorf("%w: %d", ErrUnknownView, int(to))
	}
	if r.signedIn {
		if !to.IsMain() {
			return fmt.Errorf("%w: %s -> %s while signed in", ErrInvalidTransition, r.current, to)
		}
		r.current = to
		return nil
	}

	if to == r.current {
		return nil
	}
	for _, allowed := range authTransitions[r.current] {
		if allowed == to {
			r.current = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.current, to)
}

// Back goes to the screen's fixed back target.
func (r *Router) Back() View {
	r.current = backTargets[r.current]
	return r.current
}

// OnSignedIn enters the app on Explore with no overlays.
func (r *Router) OnSignedIn() {
	r.signedIn = true
	r.current = Explore
	r.clearOverlays()
}

// OnSignedOut returns to Welcome and drops both overlays.
func (r *Router) OnSignedOut() {
	r.signedIn = false
	r.current = Welcome
	r.clearOverlays()
}

// Posted moves to My Items after a listing is created.
func (r *Router) Posted() {
	if r.signedIn {
		r.current = MyItems
	}
}

// OfferSent closes the offer overlay and shows the inbox.
func (r *Router) OfferSent() {
	r.offerTarget = nil
	if r.signedIn {
		r.current = Inbox
	}
}

func (r *Router) OpenOffer(target models.Listing) error {
	if !r.signedIn {
		return ErrSignedOut
	}
	r.offerTarget = &target
	return nil
}

func (r *Router) CloseOffer() {
	r.offerTarget = nil
}

func (r *Router) OfferTarget() (*models.Listing, bool) {
	return r.offerTarget, r.offerTarget != nil
}

func (r *Router) OpenChat(offer models.Offer) error {
	if !r.signedIn {
		return ErrSignedOut
	}
	r.chatTarget = &offer
	return nil
}

func (r *Router) CloseChat() {
	r.chatTarget = nil
}

func (r *Router) ChatTarget() (*models.Offer, bool) {
	return r.chatTarget, r.chatTarget != nil
}

func (r *Router) clearOverlays() {
	r.offerTarget = nil
	r.chatTarget = nil
}
