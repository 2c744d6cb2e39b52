package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/javajoker/barter-backend/internal/livequery"
	"github.com/javajoker/barter-backend/internal/models"
	"github.com/javajoker/barter-backend/internal/services"
	"github.com/javajoker/barter-backend/internal/viewstate"
)

func (ui *UI) Explore() error {
	id, ok := ui.identity()
	if !ok {
		return nil
	}
	fmt.Fprintln(ui.out, "\n=== Explore ===")
	category := ui.prompt("Category filter (blank for all, one of " + joinCategories() + "): ")
	if category != "" && !models.Category(category).Valid() {
		fmt.Fprintln(ui.out, "Unknown category, showing all.")
		category = ""
	}

	listings, err := ui.api.Browse(ui.ctx, models.Category(category), 0)
	if err != nil {
		ui.fail(err)
		return ui.tabLoop()
	}
	others, _ := viewstate.Partition(listings, id.UserID)
	if len(others) == 0 {
		fmt.Fprintln(ui.out, "Nothing to trade for yet.")
		return ui.tabLoop()
	}
	for i, l := range others {
		fmt.Fprintf(ui.out, "%d) %s [%s, %s] by %s in %s\n", i+1, l.Title, l.Category, l.Type, l.UserName, empty(l.Location))
		if l.Wants != "" {
			fmt.Fprintf(ui.out, "    wants: %s\n", l.Wants)
		}
	}

	ui.printTabs()
	key := ui.prompt("Item number to make an offer, or a tab: ")
	if ui.mainMenu(key) {
		return nil
	}
	n, err := strconv.Atoi(key)
	if err != nil || n < 1 || n > len(others) {
		return nil
	}
	if err := ui.router.OpenOffer(others[n-1]); err != nil {
		ui.fail(err)
		return nil
	}
	ui.offerOverlay()
	return nil
}

// offerOverlay drafts an offer for the router's offer target.
func (ui *UI) offerOverlay() {
	target, ok := ui.router.OfferTarget()
	if !ok {
		return
	}
	defer ui.router.CloseOffer()

	mine, err := ui.api.MyListings(ui.ctx, false)
	if err != nil {
		ui.fail(err)
		return
	}
	form := viewstate.NewOfferForm(*target, mine)

	fmt.Fprintf(ui.out, "\n--- Offer for %s ---\n", target.Title)
	if !form.IsClaim() {
		choices := form.Choices()
		if len(choices) == 0 {
			fmt.Fprintln(ui.out, "Post an item first; barter offers trade one of yours.")
			return
		}
		for i, l := range choices {
			fmt.Fprintf(ui.out, "%d) %s\n", i+1, l.Title)
		}
		i, ok := ui.pick("Trade which item? ", len(choices))
		if !ok {
			return
		}
		if err := form.Select(choices[i].ID.String()); err != nil {
			ui.fail(err)
			return
		}
	} else if !strings.EqualFold(ui.prompt("Claim this giveaway? (y/n): "), "y") {
		return
	}
	if !form.CanSubmit() {
		return
	}

	if _, ok := ui.identity(); !ok {
		return
	}
	if _, err := ui.api.Propose(ui.ctx, target.ID, form.OfferedItemID()); err != nil {
		ui.fail(err)
		return
	}
	fmt.Fprintln(ui.out, "Offer sent.")
	ui.router.OfferSent()
}

func (ui *UI) Post() error {
	if _, ok := ui.identity(); !ok {
		return nil
	}
	fmt.Fprintln(ui.out, "\n=== Post an item ===")
	title := ui.prompt("Title (blank to cancel): ")
	if title == "" {
		ui.router.Back()
		return nil
	}

	req := services.CreateListingRequest{
		Title:     title,
		Category:  models.Category(ui.prompt("Category (" + joinCategories() + "): ")),
		Type:      models.ListingTypeBarter,
		Quantity:  ui.prompt("Quantity: "),
		Condition: models.Condition(ui.prompt("Condition (optional): ")),
		Brand:     ui.prompt("Brand (optional): "),
	}
	if strings.EqualFold(ui.prompt("Give it away for free? (y/n): "), "y") {
		req.Type = models.ListingTypeGiveaway
	} else {
		req.Wants = ui.prompt("What do you want in return? ")
	}
	req.Description = ui.prompt("Description: ")

	if strings.EqualFold(ui.prompt("Polish title and description with AI? (y/n): "), "y") {
		draft := services.ListingDraft{Title: req.Title, Description: req.Description, Type: req.Type}
		polished, err := ui.api.Polish(ui.ctx, draft)
		if err != nil {
			ui.fail(err)
		} else if polished != draft {
			fmt.Fprintf(ui.out, "Title: %s\nDescription: %s\n", polished.Title, polished.Description)
			if strings.EqualFold(ui.prompt("Use this? (y/n): "), "y") {
				req.Title, req.Description = polished.Title, polished.Description
			}
		}
	}

	if _, ok := ui.identity(); !ok {
		return nil
	}
	listing, err := ui.api.CreateListing(ui.ctx, req)
	if err != nil {
		ui.fail(err)
		return nil
	}
	fmt.Fprintf(ui.out, "Posted %s.\n", listing.Title)
	ui.router.Posted()
	return nil
}

func (ui *UI) MyItems() error {
	if _, ok := ui.identity(); !ok {
		return nil
	}
	fmt.Fprintln(ui.out, "\n=== My items ===")
	listings, err := ui.api.MyListings(ui.ctx, true)
	if err != nil {
		ui.fail(err)
	} else if len(listings) == 0 {
		fmt.Fprintln(ui.out, "You have not posted anything.")
	}
	for _, l := range listings {
		fmt.Fprintf(ui.out, "- %s [%s, %s] %s\n", l.Title, l.Category, l.Type, l.Status)
	}
	return ui.tabLoop()
}

func (ui *UI) Inbox() error {
	id, ok := ui.identity()
	if !ok {
		return nil
	}
	fmt.Fprintln(ui.out, "\n=== Inbox ===")
	incoming, err := ui.api.IncomingOffers(ui.ctx)
	if err != nil {
		ui.fail(err)
		return ui.tabLoop()
	}
	sent, err := ui.api.MyOffers(ui.ctx)
	if err != nil {
		ui.fail(err)
		return ui.tabLoop()
	}
	offers := append(incoming, sent...)

	for i, o := range offers {
		if o.OwnerID == id.UserID {
			fmt.Fprintf(ui.out, "%d) %s offers %s for your %s (%s)\n", i+1, o.BidderName, offerItem(o), o.ListingTitle, o.Status)
		} else {
			fmt.Fprintf(ui.out, "%d) you offered %s for %s (%s)\n", i+1, offerItem(o), o.ListingTitle, o.Status)
		}
	}
	if len(offers) == 0 {
		fmt.Fprintln(ui.out, "No offers yet.")
	}

	ui.printTabs()
	key := ui.prompt("Offer number, [w]atch incoming, or a tab: ")
	if ui.mainMenu(key) {
		return nil
	}
	if key == "w" {
		ui.watchIncoming(id)
		return nil
	}
	n, err := strconv.Atoi(key)
	if err != nil || n < 1 || n > len(offers) {
		return nil
	}
	ui.offerActions(id, offers[n-1])
	return nil
}

func (ui *UI) offerActions(id viewstate.Identity, offer models.Offer) {
	owner := offer.OwnerID == id.UserID
	pending := offer.Status == models.OfferStatusPending

	fmt.Fprintln(ui.out, "c) Chat")
	fmt.Fprintln(ui.out, "f) Is this fair?")
	if owner && pending {
		fmt.Fprintln(ui.out, "a) Accept")
		fmt.Fprintln(ui.out, "r) Reject")
	}
	switch ui.prompt("> ") {
	case "c":
		if err := ui.router.OpenChat(offer); err != nil {
			ui.fail(err)
			return
		}
		ui.chatOverlay()
	case "f":
		advice, err := ui.api.Advice(ui.ctx, offer.ID)
		if err != nil {
			ui.fail(err)
			return
		}
		fmt.Fprintf(ui.out, "%s for %s: %s\n", advice.Mine, advice.Theirs, advice.Text)
	case "a":
		if !owner || !pending {
			return
		}
		result, err := ui.api.Accept(ui.ctx, offer.ID)
		if err != nil {
			ui.fail(err)
			return
		}
		fmt.Fprintln(ui.out, "Trade accepted.")
		ui.ratePrompt(result.RatingPrompt.Message, offer)
	case "r":
		if !owner || !pending {
			return
		}
		if _, err := ui.api.Reject(ui.ctx, offer.ID); err != nil {
			ui.fail(err)
			return
		}
		fmt.Fprintln(ui.out, "Offer rejected.")
	}
}

func (ui *UI) ratePrompt(message string, offer models.Offer) {
	if message != "" {
		fmt.Fprintln(ui.out, message)
	}
	raw := ui.prompt("Score 1-5 (blank to skip): ")
	if raw == "" {
		return
	}
	score, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Fprintln(ui.out, "Not a number, skipped.")
		return
	}
	comment := ui.prompt("Comment (optional): ")
	if _, err := ui.api.Rate(ui.ctx, offer.ID, score, comment); err != nil {
		ui.fail(err)
		return
	}
	fmt.Fprintln(ui.out, "Thanks for rating.")
}

// chatOverlay shows the thread and sends lines until a blank one.
func (ui *UI) chatOverlay() {
	offer, ok := ui.router.ChatTarget()
	if !ok {
		return
	}
	defer ui.router.CloseChat()

	id, ok := ui.identity()
	if !ok {
		return
	}
	fmt.Fprintf(ui.out, "\n--- Chat: %s ---\n", offer.ListingTitle)
	for !ui.quit {
		msgs, err := ui.api.Messages(ui.ctx, offer.ID)
		if err != nil {
			ui.fail(err)
			return
		}
		for _, m := range msgs {
			who := "them"
			if m.SenderID == id.UserID {
				who = "you"
			}
			fmt.Fprintf(ui.out, "[%s] %s: %s\n", m.CreatedAt.Format("15:04"), who, m.Text)
		}
		text := ui.prompt("Message (blank to close): ")
		if text == "" {
			return
		}
		if _, err := ui.api.SendMessage(ui.ctx, offer.ID, text); err != nil {
			ui.fail(err)
			return
		}
	}
}

// watchIncoming streams incoming offer counts until Enter is pressed.
func (ui *UI) watchIncoming(id viewstate.Identity) {
	ctx, cancel := context.WithCancel(ui.ctx)
	done := make(chan error, 1)
	go func() {
		done <- ui.api.Watch(ctx, livequery.Query{
			Collection: livequery.CollectionOffers,
			Field:      "owner_id",
			Value:      id.UserID.String(),
		}, func(raw json.RawMessage) error {
			var offers []models.Offer
			if err := json.Unmarshal(raw, &offers); err != nil {
				return err
			}
			pending := 0
			for _, o := range offers {
				if o.Status == models.OfferStatusPending {
					pending++
				}
			}
			fmt.Fprintf(ui.out, "* %d incoming offers, %d pending\n", len(offers), pending)
			return nil
		})
	}()

	fmt.Fprintln(ui.out, "Watching incoming offers. Press Enter to stop.")
	ui.readLine()
	cancel()
	if err := <-done; err != nil {
		ui.fail(err)
	}
}

func (ui *UI) Profile() error {
	id, ok := ui.identity()
	if !ok {
		return nil
	}
	fmt.Fprintln(ui.out, "\n=== Profile ===")
	if !ui.session.HasProfile() {
		fmt.Fprintln(ui.out, "You are browsing as a guest. Complete a profile to post and trade.")
		fmt.Fprintln(ui.out, "c) Complete profile")
	} else {
		profile, err := ui.api.PublicProfile(ui.ctx, id.UserID)
		if err != nil {
			ui.fail(err)
		} else {
			fmt.Fprintf(ui.out, "%s, %s\n", profile.FullName, empty(strings.Trim(profile.City+", "+profile.State, ", ")))
			fmt.Fprintf(ui.out, "%d active listings, rated %.1f from %d trades\n", profile.ActiveListings, profile.RatingAverage, profile.RatingCount)
		}
	}

	notes, err := ui.api.Notifications(ui.ctx, true)
	if err != nil {
		ui.fail(err)
	}
	for i, n := range notes {
		fmt.Fprintf(ui.out, "%d) %s: %s\n", i+1, n.Title, n.Message)
	}

	ui.printTabs()
	key := ui.prompt("Notification number to mark read, or a tab: ")
	if ui.mainMenu(key) {
		return nil
	}
	if key == "c" && !ui.session.HasProfile() {
		req, ok := ui.readRegistration()
		if !ok {
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
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(notes) {
		if err := ui.api.MarkNotificationRead(ui.ctx, notes[n-1].ID); err != nil {
			ui.fail(err)
		}
	}
	return nil
}

// tabLoop waits for a tab key; anything else re-renders the view.
func (ui *UI) tabLoop() error {
	ui.printTabs()
	ui.mainMenu(ui.prompt("> "))
	return nil
}

func offerItem(o models.Offer) string {
	if o.IsClaim() {
		return "a claim"
	}
	return o.OfferedItemTitle
}

func joinCategories() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func empty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
