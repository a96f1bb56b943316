package workflow

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erazemk/toolshed/internal/auth"
	"github.com/erazemk/toolshed/internal/client"
	"github.com/erazemk/toolshed/internal/db"
	"github.com/erazemk/toolshed/internal/model"
	"github.com/erazemk/toolshed/internal/session"
	"github.com/erazemk/toolshed/internal/testutil"
)

const testPassword = "password"

type staticToken string

func (s staticToken) Token() string { return string(s) }

type fixture struct {
	backend *testutil.Backend
	url     string
	db      *sql.DB
	sess    *session.Session
	api     *client.Client
	ctrl    *Controller
	user    model.Identity
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	ctx := context.Background()

	b := testutil.NewBackend("")
	url := testutil.Start(t, b)
	require.NoError(t, testutil.Seed(b, testPassword))

	database := db.NewTestDB(t)
	sess, err := session.Open(ctx, database)
	require.NoError(t, err)

	token, err := b.TokenFor("demo")
	require.NoError(t, err)
	id := auth.NewIdentity(token, "", "", 0)
	require.NoError(t, sess.Login(ctx, id))

	api := client.New(url, sess)
	ctrl := NewController(api, database, sess, opts)
	t.Cleanup(ctrl.Close)

	return &fixture{backend: b, url: url, db: database, sess: sess, api: api, ctrl: ctrl, user: id}
}

// adminAPI returns a client signed in as the seeded admin.
func (f *fixture) adminAPI(t *testing.T) *client.Client {
	t.Helper()
	token, err := f.backend.TokenFor("admin")
	require.NoError(t, err)
	return client.New(f.url, staticToken(token))
}

// reservationFor returns the controller's reservation on toolID.
func (f *fixture) reservationFor(t *testing.T, toolID int64) model.Reservation {
	t.Helper()
	for _, r := range f.ctrl.Reservations() {
		if r.ToolID == toolID {
			return r
		}
	}
	t.Fatalf("no reservation for tool %d", toolID)
	return model.Reservation{}
}

func (f *fixture) toolFor(t *testing.T, toolID int64) model.Tool {
	t.Helper()
	for _, tool := range f.ctrl.Tools() {
		if tool.ID == toolID {
			return tool
		}
	}
	t.Fatalf("tool %d not in catalog", toolID)
	return model.Tool{}
}

func stateOf(t *testing.T, r model.Reservation) model.State {
	t.Helper()
	s, err := r.State()
	require.NoError(t, err)
	return s
}
