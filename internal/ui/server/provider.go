package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Its-donkey/circuit-console/internal/config"
	"github.com/Its-donkey/circuit-console/internal/ui/model"
	"github.com/google/uuid"
)

var (
	errInvalidToken  = errors.New("invalid provider token")
	errUnknownTarget = errors.New("unknown backend")
)

const (
	sessionCookieName = "circuit_session"

	msgInvalidProviderToken = "Invalid IBM Quantum token."

	statusPending = "Pending"
	statusQueued  = "On Queue"

	secondsPerQueuedJob = 60
)

// queueInfo mirrors the provider's queue estimate for a job.
type queueInfo struct {
	Position             *int `json:"position"`
	EstimatedWaitSeconds *int `json:"estimated_wait_seconds"`
}

// jobView is the job_status payload and the results page model.
type jobView struct {
	JobID       string     `json:"job_id"`
	Status      string     `json:"status"`
	Backend     string     `json:"backend"`
	Mode        model.Mode `json:"simulator_type"`
	Shots       int        `json:"shots"`
	SubmittedAt time.Time  `json:"submitted_at"`
	QueueInfo   queueInfo  `json:"queue_info"`
}

// browserSession is what the server remembers about one page visitor.
type browserSession struct {
	Token   string
	Targets []model.Target
}

// stubProvider stands in for the quantum provider. It validates tokens
// against a reject list, offers the configured targets and records jobs
// without running them.
type stubProvider struct {
	mu       sync.RWMutex
	targets  []model.Target
	reject   map[string]bool
	jobs     map[string]jobView
	sessions map[string]browserSession
	now      func() time.Time
	newID    func() string
}

func newStubProvider(cfg config.ProviderConfig) *stubProvider {
	reject := make(map[string]bool, len(cfg.RejectTokens))
	for _, token := range cfg.RejectTokens {
		if token = strings.TrimSpace(token); token != "" {
			reject[token] = true
		}
	}
	return &stubProvider{
		targets:  append([]model.Target(nil), cfg.Targets...),
		reject:   reject,
		jobs:     make(map[string]jobView),
		sessions: make(map[string]browserSession),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Connect validates a token and returns the targets it may use.
func (p *stubProvider) Connect(token string) ([]model.Target, error) {
	if p.reject[strings.TrimSpace(token)] {
		return nil, errInvalidToken
	}
	return append([]model.Target(nil), p.targets...), nil
}

// Submit records a job for req and returns its status view.
func (p *stubProvider) Submit(req model.SubmissionRequest) (jobView, error) {
	if p.reject[req.Token] {
		return jobView{}, errInvalidToken
	}
	var target *model.Target
	for i := range p.targets {
		if p.targets[i].ID == req.Target {
			target = &p.targets[i]
			break
		}
	}
	if target == nil {
		return jobView{}, fmt.Errorf("%w %q", errUnknownTarget, req.Target)
	}

	job := jobView{
		JobID:       p.newID(),
		Status:      statusPending,
		Backend:     target.ID,
		Mode:        req.Mode,
		Shots:       req.Shots,
		SubmittedAt: p.now().UTC(),
	}
	if target.QueueDepth != nil && *target.QueueDepth > 0 {
		position := *target.QueueDepth
		wait := position * secondsPerQueuedJob
		job.Status = statusQueued
		job.QueueInfo = queueInfo{Position: &position, EstimatedWaitSeconds: &wait}
	}

	p.mu.Lock()
	p.jobs[job.JobID] = job
	p.mu.Unlock()
	return job, nil
}

// Job looks up a job recorded by Submit.
func (p *stubProvider) Job(id string) (jobView, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	job, ok := p.jobs[id]
	return job, ok
}

// sessionID returns the visitor's session id, issuing a cookie when absent.
func (p *stubProvider) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := p.newID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	return id
}

func (p *stubProvider) Session(r *http.Request) (browserSession, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return browserSession{}, false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.sessions[c.Value]
	return s, ok
}

func (p *stubProvider) StoreSession(id string, s browserSession) {
	p.mu.Lock()
	p.sessions[id] = s
	p.mu.Unlock()
}

func (p *stubProvider) DropSession(r *http.Request) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return
	}
	p.mu.Lock()
	delete(p.sessions, c.Value)
	p.mu.Unlock()
}
