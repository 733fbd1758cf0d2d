package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Its-donkey/circuit-console/internal/ui/forms"
	"github.com/Its-donkey/circuit-console/internal/ui/model"
	"github.com/go-chi/chi/v5"
)

const (
	maxSubmissionBytes = 1 << 20

	msgInvalidRequest  = "Invalid request format"
	msgMissingRequired = "Python code, backend name, and token are required"
	msgJobNotFound     = "Job not found."
)

func (s *server) handleFetchBackends(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.PostFormValue("ibm_token"))
	if verr := forms.ValidateToken(token, s.cfg.Form.MinTokenLength); verr != nil {
		writeFailure(w, http.StatusBadRequest, verr.Message)
		return
	}

	log := s.logger.FromContext(r.Context()).WithCategory("provider")
	targets, err := s.provider.Connect(token)
	if errors.Is(err, errInvalidToken) {
		s.provider.DropSession(r)
		log.Warn("token rejected")
		writeFailure(w, http.StatusUnauthorized, msgInvalidProviderToken)
		return
	}

	id := s.provider.sessionID(w, r)
	s.provider.StoreSession(id, browserSession{Token: token, Targets: targets})
	log.WithField("targets", len(targets)).Info("connected")
	writeJSON(w, http.StatusOK, model.FetchTargetsResponse{Success: true, Targets: targets})
}

func (s *server) handleRunSimulation(w http.ResponseWriter, r *http.Request) {
	if !isJSONRequest(r) {
		writeFailure(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	var req model.SubmissionRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxSubmissionBytes))
	if err := dec.Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	req.Code = strings.TrimSpace(req.Code)
	req.Target = strings.TrimSpace(req.Target)
	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" {
		if sess, ok := s.provider.Session(r); ok {
			req.Token = sess.Token
		}
	}
	if req.Mode == "" {
		req.Mode = model.ModeSampler
	} else {
		req.Mode = model.ParseMode(string(req.Mode))
	}
	if req.Shots == 0 {
		req.Shots = s.cfg.Form.DefaultShots
	}

	if req.Code == "" || req.Target == "" || req.Token == "" {
		writeFailure(w, http.StatusBadRequest, msgMissingRequired)
		return
	}
	if req.Shots < s.cfg.Form.MinShots || req.Shots > s.cfg.Form.MaxShots {
		writeFailure(w, http.StatusBadRequest, fmt.Sprintf("Shots must be between %d and %d", s.cfg.Form.MinShots, s.cfg.Form.MaxShots))
		return
	}
	if req.Mode.RequiresMeasurement() && !forms.ParseMeasureMatch(s.cfg.Form.MeasureMatch).HasMeasurement(req.Code) {
		writeFailure(w, http.StatusBadRequest, forms.MsgMeasurementRequired)
		return
	}

	log := s.logger.FromContext(r.Context()).WithCategory("provider").
		WithField("backend", req.Target).
		WithField("shots", req.Shots)
	job, err := s.provider.Submit(req)
	switch {
	case errors.Is(err, errInvalidToken):
		s.provider.DropSession(r)
		log.Warn("token rejected")
		writeFailure(w, http.StatusUnauthorized, msgInvalidProviderToken)
		return
	case errors.Is(err, errUnknownTarget):
		writeFailure(w, http.StatusBadRequest, fmt.Sprintf("Backend '%s' is not available.", req.Target))
		return
	case err != nil:
		log.Error("submit failed", err)
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.WithField("job_id", job.JobID).Info("job accepted")
	resp := model.RunSimulationResponse{Success: true, JobID: job.JobID}
	if s.cfg.Form.ResultMode == model.ResultJobIDOnly {
		resp.Redirect = "/hardware_results?job_id=" + url.QueryEscape(job.JobID)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")
	job, ok := s.provider.Job(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"status": "Failed", "error": msgJobNotFound})
		return
	}
	writeJSON(w, http.StatusOK, job)
}
