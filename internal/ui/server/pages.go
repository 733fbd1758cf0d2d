package server

import (
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Its-donkey/circuit-console/internal/config"
	"github.com/Its-donkey/circuit-console/internal/ui/forms"
	"github.com/Its-donkey/circuit-console/internal/ui/model"
)

const (
	connectLabel = "Connect"
	submitLabel  = "Run on IBM Quantum"
)

type basePageData struct {
	PageTitle      string
	Heading        string
	SiteName       string
	StylesheetPath string
	CurrentYear    int
	LoadWASM       bool
	CSRFToken      string
	ErrorHTML      template.HTML
}

type circuitPageData struct {
	basePageData
	FormAction       string
	Code             string
	Selected         string
	Predefined       []model.PredefinedOption
	Targets          []model.Target
	Connected        bool
	ConnectionStatus template.HTML
	Form             config.FormConfig
	ConnectLabel     string
	SubmitLabel      string
	FetchTargetsURL  string
	RunSimulationURL string
}

type resultsPageData struct {
	basePageData
	JobID string
	Job   *jobView
}

func (s *server) basePage(w http.ResponseWriter, r *http.Request, heading string, errs []string) basePageData {
	var errorHTML template.HTML
	if len(errs) > 0 {
		errorHTML = template.HTML(forms.RenderNotice(model.Notice{Kind: model.NoticeDanger, Items: errs}))
	}
	return basePageData{
		PageTitle:      heading + " - " + s.cfg.App.Name,
		Heading:        heading,
		SiteName:       s.cfg.App.Name,
		StylesheetPath: "/styles.css",
		CurrentYear:    s.now().Year(),
		CSRFToken:      ensureCSRF(w, r),
		ErrorHTML:      errorHTML,
	}
}

func (s *server) handleCircuitPage(w http.ResponseWriter, r *http.Request) {
	s.renderCircuitPage(w, r, forms.DefaultCircuit, "", nil)
}

// handleCircuitPost serves the predefined-circuit reload and the no-script
// form fallback. Both re-render the page.
func (s *server) handleCircuitPost(w http.ResponseWriter, r *http.Request) {
	code := r.PostFormValue("python_code")
	if strings.TrimSpace(code) == "" {
		code = forms.DefaultCircuit
	}
	selection := strings.TrimSpace(r.PostFormValue("predefined_circuit"))

	if r.PostFormValue("load_predefined") == "" {
		s.renderCircuitPage(w, r, code, selection, nil)
		return
	}

	circuit, ok := s.catalog.Lookup(selection)
	if !ok {
		s.logger.FromContext(r.Context()).WithCategory("catalog").WithField("selection", selection).Warn("unknown predefined circuit")
		s.renderCircuitPage(w, r, code, selection, []string{fmt.Sprintf("Invalid predefined circuit '%s'.", selection)})
		return
	}
	s.renderCircuitPage(w, r, circuit.Code, selection, nil)
}

func (s *server) renderCircuitPage(w http.ResponseWriter, r *http.Request, code, selection string, errs []string) {
	base := s.basePage(w, r, "Hardware Simulation", errs)
	base.LoadWASM = true

	data := circuitPageData{
		basePageData:     base,
		FormAction:       r.URL.Path,
		Code:             code,
		Selected:         selection,
		Predefined:       s.catalog.Options(),
		Form:             s.cfg.Form,
		ConnectLabel:     connectLabel,
		SubmitLabel:      submitLabel,
		FetchTargetsURL:  "/fetch_backends",
		RunSimulationURL: "/run_hardware_simulation",
	}
	if sess, ok := s.provider.Session(r); ok {
		data.Connected = true
		data.Targets = sess.Targets
	}
	data.ConnectionStatus = template.HTML(forms.RenderConnectionStatus(data.Connected))
	s.render(w, "circuit", data)
}

func (s *server) handleResultsPage(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimSpace(r.URL.Query().Get("job_id"))
	if r.Method == http.MethodPost {
		jobID = strings.TrimSpace(r.PostFormValue("job_id"))
	}

	var errs []string
	var job *jobView
	switch {
	case jobID == "" && r.Method == http.MethodPost:
		errs = append(errs, "Invalid Job ID. Please enter a valid Job ID.")
	case jobID != "":
		if found, ok := s.provider.Job(jobID); ok {
			job = &found
		} else {
			errs = append(errs, msgJobNotFound)
		}
	}

	s.render(w, "results", resultsPageData{
		basePageData: s.basePage(w, r, "Job Results", errs),
		JobID:        jobID,
		Job:          job,
	})
}

func (s *server) assetHandler(name, contentType string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.assetsDir == "" {
			http.NotFound(w, r)
			return
		}
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		http.ServeFile(w, r, filepath.Join(s.assetsDir, name))
	})
}
