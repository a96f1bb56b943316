package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/toolshed/internal/client"
	"github.com/erazemk/toolshed/internal/db"
	"github.com/erazemk/toolshed/internal/model"
	"github.com/erazemk/toolshed/internal/session"
	"github.com/erazemk/toolshed/internal/testutil"
	"github.com/erazemk/toolshed/internal/workflow"
)

const testPassword = "password"

// drill is the first seeded tool.
const drill = int64(3)

type webFixture struct {
	backend *testutil.Backend
	sess    *session.Session
	ctrl    *workflow.Controller
	handler http.Handler
}

func newWebFixture(t *testing.T) *webFixture {
	t.Helper()
	ctx := context.Background()

	b := testutil.NewBackend("")
	url := testutil.Start(t, b)
	require.NoError(t, testutil.Seed(b, testPassword))

	database := db.NewTestDB(t)
	sess, err := session.Open(ctx, database)
	require.NoError(t, err)

	api := client.New(url, sess)
	ctrl := workflow.NewController(api, database, sess, workflow.Options{NotificationTTL: time.Minute})
	t.Cleanup(ctrl.Close)

	h, err := NewRouter(&Server{
		Session:    sess,
		Accounts:   api,
		Controller: ctrl,
		Catalog:    workflow.NewCatalog(api, time.Minute),
		Review:     workflow.NewReview(api, database, time.Minute),
	})
	require.NoError(t, err)

	return &webFixture{backend: b, sess: sess, ctrl: ctrl, handler: h}
}

func (f *webFixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func (f *webFixture) post(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *webFixture) login(t *testing.T, username string) {
	t.Helper()
	rec := f.post(t, "/login", url.Values{"username": {username}, "password": {testPassword}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Equal(t, "/tools", rec.Header().Get("Location"))
}

func TestSignedOutRedirectsToLogin(t *testing.T) {
	f := newWebFixture(t)

	for _, path := range []string{"/", "/tools", "/reservations", "/admin/returns"} {
		rec := f.get(t, path)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), path)
	}

	rec := f.get(t, "/login")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="username"`)
}

func TestLoginStoresSession(t *testing.T) {
	f := newWebFixture(t)
	f.login(t, "demo")

	id, ok := f.sess.Current()
	require.True(t, ok)
	assert.Equal(t, "demo", id.Username)
	assert.Equal(t, model.RoleUser, id.Role)

	rec := f.get(t, "/tools")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cordless Drill")
	assert.Contains(t, rec.Body.String(), workflow.CheckoutWarning)
}

func TestLoginFailures(t *testing.T) {
	f := newWebFixture(t)

	rec := f.post(t, "/login", url.Values{"username": {"demo"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.post(t, "/login", url.Values{"username": {"demo"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Login failed")

	_, ok := f.sess.Current()
	assert.False(t, ok)
}

func TestRegisterThenLogin(t *testing.T) {
	f := newWebFixture(t)

	rec := f.post(t, "/register", url.Values{"username": {"ab"}, "email": {"nope"}, "password": {"short"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.post(t, "/register", url.Values{
		"username": {"carol"},
		"email":    {"carol@example.com"},
		"password": {"longenough"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = f.get(t, "/login")
	assert.Contains(t, rec.Body.String(), "Account created")

	rec = f.post(t, "/login", url.Values{"username": {"carol"}, "password": {"longenough"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestReserveCheckoutReturnFlow(t *testing.T) {
	f := newWebFixture(t)
	f.login(t, "demo")

	rec := f.post(t, "/tools/3/reserve", url.Values{"date": {"2024-06-01"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/reservations", rec.Header().Get("Location"))

	rec = f.get(t, "/reservations")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Cordless Drill")
	assert.Contains(t, body, "Reserved")

	var resID int64
	for _, r := range f.ctrl.Reservations() {
		if r.ToolID == drill {
			resID = r.ID
		}
	}
	require.NotZero(t, resID)
	base := "/reservations/" + itoa(resID)

	// Incomplete declaration is rejected without a call.
	f.backend.ResetRequests()
	rec = f.post(t, base+"/checkout", url.Values{"name": {"Demo User"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Address is required")
	for _, req := range f.backend.Requests() {
		assert.NotEqual(t, http.MethodPost, req.Method, "no write should be sent: %s", req.Path)
	}

	rec = f.post(t, base+"/checkout", url.Values{
		"name":               {"Demo User"},
		"address":            {"1 High Street"},
		"phone":              {"555-0100"},
		"expectedReturnDate": {"2024-06-08"},
		"agreeToTerms":       {"on"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	res, ok := f.backend.Reservation(resID)
	require.True(t, ok)
	assert.True(t, res.IsCheckedOut)

	rec = f.post(t, base+"/return", url.Values{"returnReason": {"done"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please select the tool condition")

	rec = f.post(t, base+"/return", url.Values{"condition": {"good"}, "returnReason": {"project finished"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	res, _ = f.backend.Reservation(resID)
	assert.True(t, res.ReturnPending)

	rec = f.get(t, "/reservations")
	assert.Contains(t, rec.Body.String(), "Return pending")
	assert.NoError(t, f.backend.CheckInvariants())
}

func TestCancelReservation(t *testing.T) {
	f := newWebFixture(t)
	f.login(t, "demo")

	require.Equal(t, http.StatusSeeOther, f.post(t, "/tools/3/reserve", url.Values{"date": {"2024-06-01"}}).Code)
	var resID int64
	for _, r := range f.ctrl.Reservations() {
		resID = r.ID
	}
	require.NotZero(t, resID)

	rec := f.post(t, "/reservations/"+itoa(resID)+"/cancel", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	tool, ok := f.backend.Tool(drill)
	require.True(t, ok)
	assert.True(t, tool.IsAvailable)
}

func TestUnknownReservation(t *testing.T) {
	f := newWebFixture(t)
	f.login(t, "demo")

	rec := f.get(t, "/reservations/999/checkout")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.get(t, "/reservations/abc/return")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminPagesForbiddenForUsers(t *testing.T) {
	f := newWebFixture(t)
	f.login(t, "demo")

	for _, path := range []string{"/admin/returns", "/admin/submissions", "/admin/tools", "/admin/report"} {
		rec := f.get(t, path)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}
}

func TestAdminApprovesReturn(t *testing.T) {
	f := newWebFixture(t)
	ctx := context.Background()

	// Borrower side: reserve, check out, request the return.
	f.login(t, "demo")
	require.Equal(t, http.StatusSeeOther, f.post(t, "/tools/3/reserve", url.Values{"date": {"2024-06-01"}}).Code)
	var resID int64
	for _, r := range f.ctrl.Reservations() {
		resID = r.ID
	}
	require.Equal(t, http.StatusSeeOther, f.post(t, "/reservations/"+itoa(resID)+"/checkout", url.Values{
		"name": {"Demo"}, "address": {"Street 1"}, "phone": {"1"},
		"expectedReturnDate": {"2024-06-08"}, "agreeToTerms": {"1"},
	}).Code)
	require.Equal(t, http.StatusSeeOther, f.post(t, "/reservations/"+itoa(resID)+"/return", url.Values{
		"condition": {"fair"}, "returnReason": {"finished"}, "feedback": {"worked well"},
	}).Code)

	require.NoError(t, f.sess.Logout(ctx))
	f.login(t, "admin")

	rec := f.get(t, "/admin/returns")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Cordless Drill")
	assert.Contains(t, body, "worked well", "locally stored report is shown")

	rec = f.post(t, "/admin/returns/"+itoa(resID)+"/approve", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	tool, _ := f.backend.Tool(drill)
	assert.True(t, tool.IsAvailable)
	res, _ := f.backend.Reservation(resID)
	assert.False(t, res.IsActive)
}

func TestAdminToolsAndReport(t *testing.T) {
	f := newWebFixture(t)
	f.login(t, "admin")

	rec := f.post(t, "/admin/tools", url.Values{"name": {"Ladder"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Description is required")

	rec = f.post(t, "/admin/tools", url.Values{
		"name": {"Ladder"}, "description": {"3m aluminium"}, "category": {"Hand Tools"}, "condition": {"good"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = f.get(t, "/admin/tools")
	assert.Contains(t, rec.Body.String(), "Ladder")

	rec = f.get(t, "/admin/report")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<dd>9</dd>", "eight seeded tools plus the ladder")
}

func TestSubmitTool(t *testing.T) {
	f := newWebFixture(t)
	f.login(t, "demo")

	rec := f.post(t, "/submit", url.Values{
		"name": {"Tile Cutter"}, "description": {"Manual, 600mm"}, "category": {"Hand Tools"}, "condition": {"good"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	require.NoError(t, f.sess.Logout(context.Background()))
	f.login(t, "admin")
	rec = f.get(t, "/admin/submissions")
	assert.Contains(t, rec.Body.String(), "Tile Cutter")
}

func TestLogoutClearsSession(t *testing.T) {
	f := newWebFixture(t)
	f.login(t, "demo")

	rec := f.post(t, "/logout", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	_, ok := f.sess.Current()
	assert.False(t, ok)
	assert.Empty(t, f.ctrl.Reservations())
}

func TestStaticAssets(t *testing.T) {
	f := newWebFixture(t)
	rec := f.get(t, "/static/style.css")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
