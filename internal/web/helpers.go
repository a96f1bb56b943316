package web

import (
	"net/http"
	"strconv"
)

// pathID reads a positive integer path value.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request, msg string) {
	data := s.page("Not found", nil)
	data.Error = msg
	s.Templates.RenderStatus(w, http.StatusNotFound, "error.html", &data)
}
