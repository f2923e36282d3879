package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/dgallion1/docoutline/internal/output"
)

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, job.Snapshot())
}

// completedResult returns the job's result, or writes an error response
// and returns nil when the job is unknown or still running.
func (s *Server) completedResult(w http.ResponseWriter, r *http.Request) *doctree.Result {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return nil
	}
	res := job.Result()
	if res == nil {
		snap := job.Snapshot()
		jsonError(w, "job is "+string(snap.Status), http.StatusConflict)
		return nil
	}
	return res
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	if res := s.completedResult(w, r); res != nil {
		writeJSON(w, res.Outline)
	}
}

func (s *Server) handleSegments(w http.ResponseWriter, r *http.Request) {
	if res := s.completedResult(w, r); res != nil {
		writeJSON(w, res.Segments)
	}
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	if res := s.completedResult(w, r); res != nil {
		writeJSON(w, res.Tree)
	}
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	res := s.completedResult(w, r)
	if res == nil {
		return
	}
	file := output.SectionsDir + "/" + chi.URLParam(r, "file")
	var doc *doctree.SectionDoc
	for i := range res.Documents {
		if res.Documents[i].File == file {
			doc = &res.Documents[i]
			break
		}
	}
	if doc == nil {
		jsonError(w, "section not found", http.StatusNotFound)
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "html") {
		html, err := s.preview.Render(doc.Markdown)
		if err != nil {
			s.log.Error("preview failed", "file", file, "error", err)
			jsonError(w, "preview failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(doc.Markdown))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
