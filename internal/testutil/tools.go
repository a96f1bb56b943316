package testutil

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/toolshed/internal/model"
)

// listTools handles GET /tools with optional skip, limit and search_term.
func (b *Backend) listTools(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	skip, _ := strconv.Atoi(q.Get("skip"))
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	term := strings.ToLower(strings.TrimSpace(q.Get("search_term")))

	b.mu.Lock()
	all := b.sortedTools()
	b.mu.Unlock()

	tools := make([]model.Tool, 0, len(all))
	for _, t := range all {
		if term != "" && !strings.Contains(strings.ToLower(t.Name), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			continue
		}
		tools = append(tools, t)
	}

	if skip < 0 {
		skip = 0
	}
	if skip > len(tools) {
		skip = len(tools)
	}
	end := min(skip+limit, len(tools))
	jsonResponse(w, http.StatusOK, tools[skip:end])
}

// toolsByCategory handles GET /tools/category/{category}.
func (b *Backend) toolsByCategory(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")

	b.mu.Lock()
	all := b.sortedTools()
	b.mu.Unlock()

	tools := make([]model.Tool, 0)
	for _, t := range all {
		if strings.EqualFold(t.Category, category) {
			tools = append(tools, t)
		}
	}
	jsonResponse(w, http.StatusOK, tools)
}

func validToolInput(in model.ToolInput) string {
	if strings.TrimSpace(in.Name) == "" {
		return "name is required"
	}
	if strings.TrimSpace(in.Category) == "" {
		return "category is required"
	}
	return ""
}

// createTool handles POST /tools.
func (b *Backend) createTool(w http.ResponseWriter, r *http.Request) {
	var in model.ToolInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if msg := validToolInput(in); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	owner := getClaims(r.Context()).UserID
	tool := b.AddTool(model.Tool{
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Condition:   in.Condition,
		OwnerID:     &owner,
	})
	jsonResponse(w, http.StatusOK, tool)
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil
}

// updateTool handles PUT /tools/{id}.
func (b *Backend) updateTool(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid tool id")
		return
	}

	var in model.ToolInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if msg := validToolInput(in); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tools[id]
	if !ok {
		jsonError(w, http.StatusNotFound, "Tool not found")
		return
	}
	t.Name = in.Name
	t.Description = in.Description
	t.Category = in.Category
	if in.Condition != "" {
		t.Condition = in.Condition
	}
	jsonResponse(w, http.StatusOK, *t)
}

// deleteTool handles DELETE /tools/{id}. A tool with an active reservation
// cannot be deleted.
func (b *Backend) deleteTool(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid tool id")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.tools[id]; !ok {
		jsonError(w, http.StatusNotFound, "Tool not found")
		return
	}
	if b.activeFor(id) != nil {
		jsonError(w, http.StatusBadRequest, "Tool has an active reservation")
		return
	}
	delete(b.tools, id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "Tool deleted"})
}
