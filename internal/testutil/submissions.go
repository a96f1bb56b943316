package testutil

import (
	"net/http"
	"sort"

	"github.com/erazemk/toolshed/internal/model"
)

// createSubmission handles POST /tool-submissions.
func (b *Backend) createSubmission(w http.ResponseWriter, r *http.Request) {
	var in model.ToolInput
	if err := decodeJSON(r, &in); err != nil {
		jsonError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if msg := validToolInput(in); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}
	claims := getClaims(r.Context())

	b.mu.Lock()
	defer b.mu.Unlock()
	sub := &model.ToolSubmission{
		ID:          b.id(),
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Condition:   in.Condition,
		UserID:      claims.UserID,
		UserName:    claims.Username,
		Status:      model.SubmissionPending,
		SubmittedAt: b.now().UTC(),
	}
	b.submissions[sub.ID] = sub
	jsonResponse(w, http.StatusOK, *sub)
}

// pendingSubmissions handles GET /tool-submissions/pending.
func (b *Backend) pendingSubmissions(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	out := make([]model.ToolSubmission, 0)
	for _, sub := range b.submissions {
		if sub.Status == model.SubmissionPending {
			out = append(out, *sub)
		}
	}
	b.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	jsonResponse(w, http.StatusOK, out)
}

// reviewSubmission handles PUT /tool-submissions/{id}/{action}. Approval
// adds the tool to the catalog.
func (b *Backend) reviewSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid submission id")
		return
	}
	action := r.PathValue("action")
	if action != model.ReviewApprove && action != model.ReviewReject {
		jsonError(w, http.StatusNotFound, "Not Found")
		return
	}

	b.mu.Lock()
	sub, ok := b.submissions[id]
	if !ok {
		b.mu.Unlock()
		jsonError(w, http.StatusNotFound, "Submission not found")
		return
	}
	if sub.Status != model.SubmissionPending {
		b.mu.Unlock()
		jsonError(w, http.StatusBadRequest, "Submission already reviewed")
		return
	}
	if action == model.ReviewReject {
		sub.Status = model.SubmissionRejected
		b.mu.Unlock()
		jsonResponse(w, http.StatusOK, map[string]string{"message": "Tool submission rejected"})
		return
	}
	sub.Status = model.SubmissionApproved
	owner := sub.UserID
	tool := model.Tool{
		Name:        sub.Name,
		Description: sub.Description,
		Category:    sub.Category,
		Condition:   sub.Condition,
		OwnerID:     &owner,
	}
	b.mu.Unlock()

	tool = b.AddTool(tool)
	jsonResponse(w, http.StatusOK, tool)
}
