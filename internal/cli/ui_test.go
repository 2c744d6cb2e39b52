package cli

import (
	"bufio"
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/barter-backend/internal/ai"
	"github.com/javajoker/barter-backend/internal/config"
	"github.com/javajoker/barter-backend/internal/i18n"
	"github.com/javajoker/barter-backend/internal/livequery"
	"github.com/javajoker/barter-backend/internal/models"
	"github.com/javajoker/barter-backend/internal/router"
	"github.com/javajoker/barter-backend/internal/services"
	"github.com/javajoker/barter-backend/internal/store"
	"github.com/javajoker/barter-backend/internal/viewstate"
	"github.com/javajoker/barter-backend/pkg/client"
)

type UITestSuite struct {
	suite.Suite
	server *httptest.Server
	stop   func()
	cancel context.CancelFunc
}

func (suite *UITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	require.NoError(suite.T(), i18n.Initialize("", "en"))
}

func (suite *UITestSuite) SetupTest() {
	cfg := &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "cli-test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		Upload: config.UploadConfig{
			Dir:           suite.T().TempDir(),
			PublicBaseURL: "http://localhost/uploads",
			MaxImageBytes: 1 << 20,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
		I18n: config.I18nConfig{DefaultLocale: "en"},
	}

	hub := livequery.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	suite.cancel = cancel

	engine, stop, err := router.Initialize(router.Deps{
		Config:    cfg,
		Store:     store.NewMemoryStore(),
		Hub:       hub,
		Revoker:   store.NewMemoryTokenRevoker(),
		Generator: ai.Disabled{},
	})
	require.NoError(suite.T(), err)
	suite.server = httptest.NewServer(engine)
	suite.stop = stop
}

func (suite *UITestSuite) TearDownTest() {
	suite.server.Close()
	suite.stop()
	suite.cancel()
}

// run feeds the script line by line and returns everything printed.
func (suite *UITestSuite) run(lines ...string) (*UI, string) {
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	ui := NewUI(client.New(suite.server.URL), in, &out)
	require.NoError(suite.T(), ui.Run(context.Background()))
	return ui, out.String()
}

func registrationScript(first, email string) []string {
	return []string{
		first, "Trader", email, "barter123", "9999999999", "", "",
		"1 Market Street", "", "Pune", "411001", "Maharashtra", "India", "y",
	}
}

func (suite *UITestSuite) TestQuitFromWelcome() {
	ui, out := suite.run("0")
	assert.Contains(suite.T(), out, "=== Welcome ===")
	assert.Equal(suite.T(), viewstate.Welcome, ui.Current())
}

func (suite *UITestSuite) TestEndOfInputStops() {
	var out bytes.Buffer
	ui := NewUI(client.New(suite.server.URL), bufio.NewReader(strings.NewReader("")), &out)
	require.NoError(suite.T(), ui.Run(context.Background()))
}

func (suite *UITestSuite) TestForgotPasswordReturnsToLogin() {
	_, out := suite.run("1", "2", "nobody@example.com", "0", "0")
	assert.Contains(suite.T(), out, "=== Reset password ===")
	assert.Contains(suite.T(), out, "reset link is on its way")
	assert.Equal(suite.T(), 2, strings.Count(out, "=== Welcome ==="))
}

func (suite *UITestSuite) TestRegisterPostAndSeeMyItems() {
	t := suite.T()
	script := []string{"2"}
	script = append(script, registrationScript("Alice", "alice@example.com")...)
	script = append(script,
		"",  // explore: all categories
		"p", // nothing to trade for yet, go post
		"Bicycle", "Other", "1", "", "", "n", "A lamp", "Red bike", "n",
		"q",
	)

	_, out := suite.run(script...)
	assert.Contains(t, out, "Welcome, Alice Trader!")
	assert.Contains(t, out, "Nothing to trade for yet.")
	assert.Contains(t, out, "Posted Bicycle.")
	assert.Contains(t, out, "- Bicycle [Other, Barter] active")

	bob := client.New(suite.server.URL)
	_, err := bob.SignInAnonymously(context.Background())
	require.NoError(t, err)
	listings, err := bob.Browse(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "Bicycle", listings[0].Title)
}

func (suite *UITestSuite) TestGuestSeesProfilePrompt() {
	_, out := suite.run("3", "", "u", "q")
	assert.Contains(suite.T(), out, "Welcome, guest!")
	assert.Contains(suite.T(), out, "browsing as a guest")
}

func (suite *UITestSuite) TestClaimGiveawayAndOwnerAccepts() {
	t := suite.T()
	ctx := context.Background()

	alice := client.New(suite.server.URL)
	_, err := alice.Register(ctx, services.RegisterRequest{
		FirstName: "Alice", LastName: "Trader", Email: "alice@example.com", Password: "barter123",
		Mobile: "9999999999", Address1: "1 Market Street", City: "Pune", Pin: "411001",
		State: "Maharashtra", Country: "India", AgreedToTerms: true,
	})
	require.NoError(t, err)
	_, err = alice.CreateListing(ctx, services.CreateListingRequest{
		Title: "Old Textbook", Category: models.CategoryBooks, Type: models.ListingTypeGiveaway,
	})
	require.NoError(t, err)

	script := []string{"2"}
	script = append(script, registrationScript("Bob", "bob@example.com")...)
	script = append(script, "", "1", "y", "q")
	_, out := suite.run(script...)
	assert.Contains(t, out, "Old Textbook")
	assert.Contains(t, out, "Offer sent.")
	assert.Contains(t, out, "=== Inbox ===")

	incoming, err := alice.IncomingOffers(ctx)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.True(t, incoming[0].IsClaim())

	// alice accepts through the terminal and rates bob
	var buf bytes.Buffer
	in := bufio.NewReader(strings.NewReader(strings.Join([]string{
		"1", "1", "alice@example.com", "barter123",
		"", "i", "1", "a", "5", "quick pickup", "q",
	}, "\n") + "\n"))
	ui := NewUI(client.New(suite.server.URL), in, &buf)
	require.NoError(t, ui.Run(ctx))

	assert.Contains(t, buf.String(), "Bob Trader offers a claim for your Old Textbook (pending)")
	assert.Contains(t, buf.String(), "Trade accepted.")
	assert.Contains(t, buf.String(), "Thanks for rating.")
}

func TestUISuite(t *testing.T) {
	suite.Run(t, new(UITestSuite))
}
