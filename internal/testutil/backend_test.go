package testutil_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/toolshed/internal/client"
	"github.com/erazemk/toolshed/internal/model"
	"github.com/erazemk/toolshed/internal/testutil"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newUserClient(t *testing.T, b *testutil.Backend, url, username string) *client.Client {
	t.Helper()
	token, err := b.TokenFor(username)
	require.NoError(t, err)
	return client.New(url, staticToken(token))
}

func TestLifecycleKeepsInvariants(t *testing.T) {
	ctx := context.Background()
	b := testutil.NewBackend("")
	url := testutil.Start(t, b)
	require.NoError(t, testutil.Seed(b, "password"))

	user := newUserClient(t, b, url, "demo")
	admin := newUserClient(t, b, url, "admin")

	tool := b.AddTool(model.Tool{Name: "Angle Grinder", Category: "Power Tools"})
	require.NoError(t, b.CheckInvariants())

	require.NoError(t, user.Reserve(ctx, tool.ID, "2024-06-01"))
	got, _ := b.Tool(tool.ID)
	assert.False(t, got.IsAvailable, "reserved tool must not be available")
	require.NoError(t, b.CheckInvariants())

	require.NoError(t, user.Checkout(ctx, tool.ID))
	require.NoError(t, b.CheckInvariants())

	require.NoError(t, user.Return(ctx, tool.ID, nil))
	pending, err := admin.PendingReturns(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Angle Grinder", pending[0].ToolName())
	require.NoError(t, b.CheckInvariants())

	require.NoError(t, admin.ApproveReturn(ctx, pending[0].ID))
	got, _ = b.Tool(tool.ID)
	assert.True(t, got.IsAvailable, "approved return frees the tool")
	require.NoError(t, b.CheckInvariants())

	rs, err := user.ListReservations(ctx)
	require.NoError(t, err)
	require.Len(t, rs, 1)
	state, err := rs[0].State()
	require.NoError(t, err)
	assert.Equal(t, model.StateReturned, state)
}

func TestReserveUnavailableTool(t *testing.T) {
	ctx := context.Background()
	b := testutil.NewBackend("")
	url := testutil.Start(t, b)
	require.NoError(t, testutil.Seed(b, "password"))
	user := newUserClient(t, b, url, "demo")
	tool := b.AddTool(model.Tool{Name: "Pressure Washer", Category: "Garden Tools"})

	require.NoError(t, user.Reserve(ctx, tool.ID, "2024-06-01"))
	err := user.Reserve(ctx, tool.ID, "2024-06-02")
	assert.Equal(t, 400, client.StatusCode(err))
}

func TestReturnBeforeCheckoutCancels(t *testing.T) {
	ctx := context.Background()
	b := testutil.NewBackend("")
	url := testutil.Start(t, b)
	_, err := b.AddUser("ana", "password", model.RoleUser)
	require.NoError(t, err)
	tool := b.AddTool(model.Tool{Name: "Ladder", Category: "Hand Tools"})
	user := newUserClient(t, b, url, "ana")

	require.NoError(t, user.Reserve(ctx, tool.ID, "2024-06-01"))
	require.NoError(t, user.Return(ctx, tool.ID, nil))

	rs, err := user.ListReservations(ctx)
	require.NoError(t, err)
	require.Len(t, rs, 1)
	state, err := rs[0].State()
	require.NoError(t, err)
	assert.Equal(t, model.StateCancelled, state)
	require.NoError(t, b.CheckInvariants())
}

func TestRejectReturnKeepsToolCheckedOut(t *testing.T) {
	ctx := context.Background()
	b := testutil.NewBackend("")
	url := testutil.Start(t, b)
	require.NoError(t, testutil.Seed(b, "password"))
	user := newUserClient(t, b, url, "demo")
	admin := newUserClient(t, b, url, "admin")
	tool := b.AddTool(model.Tool{Name: "Chainsaw", Category: "Garden Tools"})

	require.NoError(t, user.Reserve(ctx, tool.ID, "2024-06-01"))
	require.NoError(t, user.Checkout(ctx, tool.ID))
	require.NoError(t, user.Return(ctx, tool.ID, nil))

	pending, err := admin.PendingReturns(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NoError(t, admin.RejectReturn(ctx, pending[0].ID))

	res, ok := b.Reservation(pending[0].ID)
	require.True(t, ok)
	state, err := res.State()
	require.NoError(t, err)
	assert.Equal(t, model.StateCheckedOut, state)
	require.NoError(t, b.CheckInvariants())
}

func TestExpireReservation(t *testing.T) {
	ctx := context.Background()
	b := testutil.NewBackend("")
	url := testutil.Start(t, b)
	require.NoError(t, testutil.Seed(b, "password"))
	user := newUserClient(t, b, url, "demo")
	tool := b.AddTool(model.Tool{Name: "Tile Cutter", Category: "Hand Tools"})

	require.NoError(t, user.Reserve(ctx, tool.ID, "2024-06-01"))
	rs, err := user.ListReservations(ctx)
	require.NoError(t, err)
	require.Len(t, rs, 1)

	require.NoError(t, b.ExpireReservation(rs[0].ID))
	got, _ := b.Tool(tool.ID)
	assert.True(t, got.IsAvailable)

	rs, err = user.ListReservations(ctx)
	require.NoError(t, err)
	assert.Empty(t, rs)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	ctx := context.Background()
	b := testutil.NewBackend("")
	url := testutil.Start(t, b)
	require.NoError(t, testutil.Seed(b, "password"))
	user := newUserClient(t, b, url, "demo")

	_, err := user.PendingReturns(ctx)
	assert.Equal(t, 403, client.StatusCode(err))

	anon := client.New(url, nil)
	_, err = anon.ListReservations(ctx)
	assert.Equal(t, 401, client.StatusCode(err))
}

func TestFailNextAndRequests(t *testing.T) {
	ctx := context.Background()
	b := testutil.NewBackend("")
	url := testutil.Start(t, b)
	require.NoError(t, testutil.Seed(b, "password"))
	anon := client.New(url, nil)

	b.FailNext("GET", "/tools", 500, "boom")
	_, err := anon.ListTools(ctx, 0, 0)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "boom", apiErr.Detail)

	tools, err := anon.ListTools(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, tools, len(testutil.SampleTools))

	reqs := b.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "/tools", reqs[1].Path)

	b.ResetRequests()
	assert.Empty(t, b.Requests())
}
