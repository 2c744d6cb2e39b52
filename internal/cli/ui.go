// Package cli is a terminal front end for the barter API. Each screen is a
// viewstate view; the loop renders whatever view the router is on.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/barter-backend/internal/livequery"
	"github.com/javajoker/barter-backend/internal/models"
	"github.com/javajoker/barter-backend/internal/services"
	"github.com/javajoker/barter-backend/internal/viewstate"
	"github.com/javajoker/barter-backend/pkg/client"
)

// Backend is the slice of the API the terminal uses.
type Backend interface {
	SignInAnonymously(ctx context.Context) (*client.AuthResult, error)
	Register(ctx context.Context, req services.RegisterRequest) (*client.AuthResult, error)
	Login(ctx context.Context, email, password string) (*client.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, email string) error
	PublicProfile(ctx context.Context, userID uuid.UUID) (*services.PublicProfile, error)
	Browse(ctx context.Context, category models.Category, page int) ([]models.Listing, error)
	MyListings(ctx context.Context, includeTraded bool) ([]models.Listing, error)
	CreateListing(ctx context.Context, req services.CreateListingRequest) (*models.Listing, error)
	Polish(ctx context.Context, draft services.ListingDraft) (services.ListingDraft, error)
	Propose(ctx context.Context, listingID uuid.UUID, offeredItemID string) (*models.Offer, error)
	IncomingOffers(ctx context.Context) ([]models.Offer, error)
	MyOffers(ctx context.Context) ([]models.Offer, error)
	Accept(ctx context.Context, offerID uuid.UUID) (*client.AcceptResult, error)
	Reject(ctx context.Context, offerID uuid.UUID) (*models.Offer, error)
	Messages(ctx context.Context, offerID uuid.UUID) ([]models.Message, error)
	SendMessage(ctx context.Context, offerID uuid.UUID, text string) (*models.Message, error)
	Advice(ctx context.Context, offerID uuid.UUID) (*services.Advice, error)
	Rate(ctx context.Context, offerID uuid.UUID, score int, comment string) (*models.Rating, error)
	Notifications(ctx context.Context, unreadOnly bool) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id uuid.UUID) error
	Watch(ctx context.Context, q livequery.Query, onSnapshot func(json.RawMessage) error) error
}

type UI struct {
	api     Backend
	router  *viewstate.Router
	session *viewstate.Session
	in      *bufio.Reader
	out     io.Writer
	ctx     context.Context
	quit    bool
}

func NewUI(api Backend, in *bufio.Reader, out io.Writer) *UI {
	return &UI{
		api:    api,
		router: viewstate.NewRouter(),
		in:     in,
		out:    out,
		ctx:    context.Background(),
	}
}

// Run renders screens until the user quits, input ends or ctx is done.
func (ui *UI) Run(ctx context.Context) error {
	ui.ctx = ctx
	fmt.Fprintln(ui.out, "Barter: swap what you have for what you need.")
	for !ui.quit && ctx.Err() == nil {
		view := ui.router.Current()
		logrus.WithField("view", view.String()).Debug("Rendering view")
		if err := viewstate.Dispatch(view, ui); err != nil {
			return err
		}
	}
	if ui.session != nil {
		ui.signOut()
	}
	return nil
}

func (ui *UI) Current() viewstate.View {
	return ui.router.Current()
}

func (ui *UI) Welcome() error {
	fmt.Fprintln(ui.out, "\n=== Welcome ===")
	fmt.Fprintln(ui.out, "1) Sign in")
	fmt.Fprintln(ui.out, "2) Create account")
	fmt.Fprintln(ui.out, "3) Look around as a guest")
	fmt.Fprintln(ui.out, "0) Quit")
	switch ui.prompt("> ") {
	case "1":
		return ui.navigate(viewstate.Login)
	case "2":
		return ui.navigate(viewstate.Register)
	case "3":
		res, err := ui.api.SignInAnonymously(ui.ctx)
		if err != nil {
			ui.fail(err)
			return nil
		}
		ui.signedIn(res)
	default:
		ui.quit = true
	}
	return nil
}

func (ui *UI) Login() error {
	fmt.Fprintln(ui.out, "\n=== Sign in ===")
	fmt.Fprintln(ui.out, "1) Email and password")
	fmt.Fprintln(ui.out, "2) Forgot password")
	fmt.Fprintln(ui.out, "3) Create account instead")
	fmt.Fprintln(ui.out, "0) Back")
	switch ui.prompt("> ") {
	case "1":
		email := ui.prompt("Email: ")
		password := ui.prompt("Password: ")
		res, err := ui.api.Login(ui.ctx, email, password)
		if err != nil {
			ui.fail(err)
			return nil
		}
		ui.signedIn(res)
		return nil
	case "2":
		return ui.navigate(viewstate.Forgot)
	case "3":
		return ui.navigate(viewstate.Register)
	}
	ui.router.Back()
	return nil
}

func (ui *UI) Register() error {
	fmt.Fprintln(ui.out, "\n=== Create account ===")
	req, ok := ui.readRegistration()
	if !ok {
		ui.router.Back()
		return nil
	}
	res, err := ui.api.Register(ui.ctx, req)
	if err != nil {
		ui.fail(err)
		return nil
	}
	ui.signedIn(res)
	return nil
}

func (ui *UI) Forgot() error {
	fmt.Fprintln(ui.out, "\n=== Reset password ===")
	email := ui.prompt("Email (blank to go back): ")
	if email != "" {
		if err := ui.api.ForgotPassword(ui.ctx, email); err != nil {
			ui.fail(err)
			return nil
		}
		fmt.Fprintln(ui.out, "If that address is registered, a reset link is on its way.")
	}
	ui.router.Back()
	return nil
}

func (ui *UI) signedIn(res *client.AuthResult) {
	if ui.session != nil && ui.session.Update(&res.User, res.Token, res.RefreshToken) == nil {
		fmt.Fprintln(ui.out, "Profile saved.")
		return
	}
	ui.session = viewstate.NewSession(&res.User, res.Token, res.RefreshToken)
	ui.router.OnSignedIn()
	name := res.User.DisplayName()
	if name == "" {
		name = "guest"
	}
	fmt.Fprintf(ui.out, "Welcome, %s!\n", name)
}

func (ui *UI) signOut() {
	access, refresh := ui.session.SignOut()
	ui.session = nil
	if access != "" {
		if err := ui.api.Logout(ui.ctx, refresh); err != nil {
			logrus.WithError(err).Debug("Logout failed")
		}
	}
	ui.router.OnSignedOut()
}

// identity fails once the session is gone.
func (ui *UI) identity() (viewstate.Identity, bool) {
	if ui.session == nil {
		ui.router.OnSignedOut()
		return viewstate.Identity{}, false
	}
	id, err := ui.session.Guard()
	if err != nil {
		ui.router.OnSignedOut()
		return viewstate.Identity{}, false
	}
	return id, true
}

// mainMenu handles the tab keys shared by every main view. It reports
// whether the key was consumed.
func (ui *UI) mainMenu(key string) bool {
	tabs := map[string]viewstate.View{
		"e": viewstate.Explore,
		"p": viewstate.Post,
		"m": viewstate.MyItems,
		"i": viewstate.Inbox,
		"u": viewstate.Profile,
	}
	if v, ok := tabs[key]; ok {
		if err := ui.router.Navigate(v); err != nil {
			ui.fail(err)
		}
		return true
	}
	switch key {
	case "b":
		ui.router.Back()
		return true
	case "s":
		ui.signOut()
		return true
	case "q":
		ui.quit = true
		return true
	}
	return false
}

func (ui *UI) printTabs() {
	fmt.Fprintln(ui.out, "[e]xplore [p]ost [m]y items [i]nbox [u] profile [b]ack [s]ign out [q]uit")
}

func (ui *UI) navigate(v viewstate.View) error {
	if err := ui.router.Navigate(v); err != nil {
		ui.fail(err)
	}
	return nil
}

func (ui *UI) readRegistration() (services.RegisterRequest, bool) {
	var req services.RegisterRequest
	req.FirstName = ui.prompt("First name (blank to cancel): ")
	if req.FirstName == "" {
		return req, false
	}
	req.LastName = ui.prompt("Last name: ")
	req.Email = ui.prompt("Email: ")
	req.Password = ui.prompt("Password (8+ chars, letters and digits): ")
	req.Mobile = ui.prompt("Mobile: ")
	req.DOB = ui.prompt("Date of birth YYYY-MM-DD (optional): ")
	req.Sex = ui.prompt("Sex (optional): ")
	req.Address1 = ui.prompt("Address line 1: ")
	req.Address2 = ui.prompt("Address line 2 (optional): ")
	req.City = ui.prompt("City: ")
	req.Pin = ui.prompt("PIN: ")
	req.State = ui.prompt("State: ")
	req.Country = ui.prompt("Country: ")
	req.AgreedToTerms = strings.EqualFold(ui.prompt("Agree to the terms? (y/n): "), "y")
	return req, true
}

func (ui *UI) prompt(label string) string {
	fmt.Fprint(ui.out, label)
	return strings.TrimSpace(ui.readLine())
}

func (ui *UI) readLine() string {
	s, err := ui.in.ReadString('\n')
	if errors.Is(err, io.EOF) && s == "" {
		ui.quit = true
	}
	return strings.TrimRight(s, "\r\n")
}

// pick reads a 1-based index into a list of n items.
func (ui *UI) pick(label string, n int) (int, bool) {
	raw := ui.prompt(label)
	i, err := strconv.Atoi(raw)
	if err != nil || i < 1 || i > n {
		return 0, false
	}
	return i - 1, true
}

func (ui *UI) fail(err error) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		fmt.Fprintln(ui.out, "Error:", apiErr.Message)
		return
	}
	fmt.Fprintln(ui.out, "Error:", err)
}
