package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/erazemk/toolshed/internal/model"
	"github.com/erazemk/toolshed/internal/notify"
)

// DefaultPerPage is the catalog page size.
const DefaultPerPage = 12

// CatalogAPI is the part of the backend the catalog reader uses.
type CatalogAPI interface {
	ListTools(ctx context.Context, skip, limit int) ([]model.Tool, error)
	SearchTools(ctx context.Context, term string) ([]model.Tool, error)
	ToolsByCategory(ctx context.Context, category string) ([]model.Tool, error)
}

// Query selects a catalog page. Search wins over Category.
type Query struct {
	Search        string
	Category      string
	Page          int // 1-based
	PerPage       int
	AvailableOnly bool
}

func (q Query) normalize() Query {
	q.Search = strings.TrimSpace(q.Search)
	if q.Category == "" {
		q.Category = model.CategoryAll
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = DefaultPerPage
	}
	return q
}

// Page is one page of catalog results.
type Page struct {
	Query   Query
	Tools   []model.Tool
	HasPrev bool
	HasNext bool
}

// Catalog reads the tool catalog.
type Catalog struct {
	api   CatalogAPI
	board *notify.Board
}

// NewCatalog returns a catalog reader with its own notification board.
func NewCatalog(api CatalogAPI, ttl time.Duration) *Catalog {
	return &Catalog{api: api, board: notify.NewBoard(ttl)}
}

// Notifications returns the catalog's notification board.
func (c *Catalog) Notifications() *notify.Board {
	return c.board
}

// Browse returns the page q selects. A search goes to the search endpoint
// and a category other than All to the category endpoint; both are paged
// locally, as is the full listing when only available tools are wanted.
// Otherwise the backend pages.
func (c *Catalog) Browse(ctx context.Context, q Query) (Page, error) {
	q = q.normalize()
	page := Page{Query: q, HasPrev: q.Page > 1}

	var (
		tools []model.Tool
		err   error
	)
	// Filtering a backend page would hide rows of later pages.
	local := q.Search != "" || q.Category != model.CategoryAll || q.AvailableOnly
	switch {
	case q.Search != "":
		tools, err = c.api.SearchTools(ctx, q.Search)
	case q.Category != model.CategoryAll:
		tools, err = c.api.ToolsByCategory(ctx, q.Category)
	case q.AvailableOnly:
		tools, err = listAll(ctx, c.api)
	default:
		// One extra row tells whether a next page exists.
		tools, err = c.api.ListTools(ctx, (q.Page-1)*q.PerPage, q.PerPage+1)
	}
	if ctx.Err() != nil {
		return page, ctx.Err()
	}
	if err != nil {
		slog.Warn("browsing catalog failed", "search", q.Search, "category", q.Category, "error", err)
		c.board.Error(msgFetchTools)
		return page, fmt.Errorf("browsing catalog: %w", err)
	}

	if q.AvailableOnly {
		tools = availableOnly(tools)
	}

	if local {
		start := min((q.Page-1)*q.PerPage, len(tools))
		end := min(start+q.PerPage, len(tools))
		page.HasNext = end < len(tools)
		tools = tools[start:end]
	} else if len(tools) > q.PerPage {
		page.HasNext = true
		tools = tools[:q.PerPage]
	}
	page.Tools = tools

	if len(page.Tools) == 0 {
		c.board.Info("No tools found")
	}
	return page, nil
}

// listPageSize is the page size listAll walks the backend with.
const listPageSize = 100

type toolLister interface {
	ListTools(ctx context.Context, skip, limit int) ([]model.Tool, error)
}

// listAll pages through the whole catalog until the backend returns a
// short page.
func listAll(ctx context.Context, api toolLister) ([]model.Tool, error) {
	var all []model.Tool
	for skip := 0; ; skip += listPageSize {
		tools, err := api.ListTools(ctx, skip, listPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, tools...)
		if len(tools) < listPageSize {
			return all, nil
		}
	}
}

func availableOnly(tools []model.Tool) []model.Tool {
	out := make([]model.Tool, 0, len(tools))
	for _, t := range tools {
		if t.IsAvailable {
			out = append(out, t)
		}
	}
	return out
}
