package http

import (
	"bytes"
	"net/http"

	applog "assetguard/internal/log"
)

// handleDashboard renders the full page for ?month=YYYY-MM&rollover=0|1.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.renderLedger(w, r, "dashboard.html")
}

// handleLedgerPartial renders only the #ledger fragment, for HTMX refreshes.
func (s *Server) handleLedgerPartial(w http.ResponseWriter, r *http.Request) {
	s.renderLedger(w, r, "ledger")
}

func (s *Server) renderLedger(w http.ResponseWriter, r *http.Request, name string) {
	p, err := ParseViewParams(r, s.now(), s.opts.Rollover)
	if err != nil {
		failHTMX(w, r, applog.OpRender, err)
		return
	}
	view, err := s.buildView(r.Context(), p)
	if err != nil {
		failHTMX(w, r, applog.OpRender, err)
		return
	}
	body, err := s.render(name, view)
	if err != nil {
		failHTMX(w, r, applog.OpRender, err)
		return
	}
	NewHTMXResponse().BodyHTML(body).Write(w)
}

// render executes a template into memory so a failure never leaves a half-written page.
func (s *Server) render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
