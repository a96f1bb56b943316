package workflow

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/toolshed/internal/client"
	"github.com/erazemk/toolshed/internal/model"
	"github.com/erazemk/toolshed/internal/notify"
	"github.com/erazemk/toolshed/internal/testutil"
)

func newCatalog(t *testing.T) (*Catalog, *testutil.Backend) {
	t.Helper()
	b := testutil.NewBackend("")
	url := testutil.Start(t, b)
	require.NoError(t, testutil.Seed(b, testPassword))
	return NewCatalog(client.New(url, nil), 0), b
}

func TestBrowsePages(t *testing.T) {
	cat, b := newCatalog(t)
	for i := range 10 {
		b.AddTool(model.Tool{Name: fmt.Sprintf("Clamp %d", i), Category: "Hand Tools"})
	}
	ctx := context.Background()

	page, err := cat.Browse(ctx, Query{})
	require.NoError(t, err)
	assert.Len(t, page.Tools, DefaultPerPage)
	assert.True(t, page.HasNext)
	assert.False(t, page.HasPrev)
	assert.Equal(t, model.CategoryAll, page.Query.Category)

	page, err = cat.Browse(ctx, Query{Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.Tools, len(testutil.SampleTools)+10-DefaultPerPage)
	assert.False(t, page.HasNext)
	assert.True(t, page.HasPrev)

	reqs := b.Requests()
	assert.Equal(t, "limit=13&skip=12", reqs[len(reqs)-1].Query)
}

func TestBrowseSearch(t *testing.T) {
	cat, b := newCatalog(t)

	page, err := cat.Browse(context.Background(), Query{Search: "  drill ", Category: "Garden Tools"})
	require.NoError(t, err)
	require.Len(t, page.Tools, 1)
	assert.Equal(t, "Cordless Drill", page.Tools[0].Name)

	reqs := b.Requests()
	assert.Equal(t, "/tools", reqs[len(reqs)-1].Path)
	assert.Equal(t, "search_term=drill", reqs[len(reqs)-1].Query)
}

func TestBrowseCategory(t *testing.T) {
	cat, b := newCatalog(t)

	page, err := cat.Browse(context.Background(), Query{Category: "Garden Tools"})
	require.NoError(t, err)
	assert.Len(t, page.Tools, 2)
	for _, tool := range page.Tools {
		assert.Equal(t, "Garden Tools", tool.Category)
	}

	reqs := b.Requests()
	assert.Equal(t, "/tools/category/Garden Tools", reqs[len(reqs)-1].Path)
}

func TestBrowseAvailableOnly(t *testing.T) {
	ctx := context.Background()
	cat, b := newCatalog(t)
	tool := b.AddTool(model.Tool{Name: "Lawn Mower", Category: "Garden Tools"})

	token, err := b.TokenFor("demo")
	require.NoError(t, err)
	require.NoError(t, client.New(testutil.Start(t, b), staticToken(token)).Reserve(ctx, tool.ID, "2024-06-01"))

	page, err := cat.Browse(ctx, Query{Category: "Garden Tools", AvailableOnly: true})
	require.NoError(t, err)
	for _, got := range page.Tools {
		assert.NotEqual(t, tool.ID, got.ID, "reserved tools are not offered")
		assert.True(t, got.IsAvailable)
	}

	page, err = cat.Browse(ctx, Query{Category: "Garden Tools"})
	require.NoError(t, err)
	assert.Len(t, page.Tools, 3)
}

func TestBrowseAvailableOnlyPagesFullListing(t *testing.T) {
	ctx := context.Background()
	cat, b := newCatalog(t)

	token, err := b.TokenFor("admin")
	require.NoError(t, err)
	admin := client.New(testutil.Start(t, b), staticToken(token))
	for i := range 30 {
		tool := b.AddTool(model.Tool{Name: fmt.Sprintf("Chisel %d", i), Category: "Hand Tools"})
		if i%2 == 1 {
			require.NoError(t, admin.Reserve(ctx, tool.ID, "2024-06-01"))
		}
	}

	// Seeded tools plus the even-numbered chisels are available.
	total := len(testutil.SampleTools) + 15

	var seen int
	q := Query{AvailableOnly: true}
	for q.Page = 1; ; q.Page++ {
		page, err := cat.Browse(ctx, q)
		require.NoError(t, err)
		for _, got := range page.Tools {
			assert.True(t, got.IsAvailable, got.Name)
		}
		seen += len(page.Tools)
		if !page.HasNext {
			break
		}
		require.Len(t, page.Tools, DefaultPerPage, "only the last page may be short")
	}
	assert.Equal(t, total, seen)
}

func TestListAllWalksPages(t *testing.T) {
	ctx := context.Background()
	_, b := newCatalog(t)
	for i := range listPageSize {
		b.AddTool(model.Tool{Name: fmt.Sprintf("Bit %d", i), Category: "Power Tools"})
	}
	b.ResetRequests()

	tools, err := listAll(ctx, client.New(testutil.Start(t, b), nil))
	require.NoError(t, err)
	assert.Len(t, tools, listPageSize+len(testutil.SampleTools))
	assert.Len(t, b.Requests(), 2)
}

func TestBrowseEmptyAndFailure(t *testing.T) {
	ctx := context.Background()
	cat, b := newCatalog(t)

	page, err := cat.Browse(ctx, Query{Search: "nothing matches this"})
	require.NoError(t, err)
	assert.Empty(t, page.Tools)
	n, ok := cat.Notifications().Current()
	require.True(t, ok)
	assert.Equal(t, notify.Info, n.Severity)

	b.FailNext(http.MethodGet, "/tools", http.StatusInternalServerError, "boom")
	_, err = cat.Browse(ctx, Query{})
	require.Error(t, err)
	n, _ = cat.Notifications().Current()
	assert.Equal(t, notify.Error, n.Severity)
	assert.Equal(t, "Failed to fetch tools", n.Message)
}
