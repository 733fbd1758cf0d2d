package server

import (
	"errors"
	"testing"
	"time"

	"github.com/Its-donkey/circuit-console/internal/config"
	"github.com/Its-donkey/circuit-console/internal/ui/model"
)

func TestStubProviderSubmit(t *testing.T) {
	p := newStubProvider(config.ProviderConfig{
		Targets:      []model.Target{{ID: "busy", QueueDepth: model.IntPtr(2)}, {ID: "idle"}},
		RejectTokens: []string{" bad-token "},
	})
	p.newID = func() string { return "job-1" }
	p.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	if _, err := p.Connect("bad-token"); !errors.Is(err, errInvalidToken) {
		t.Fatalf("expected rejected token, got %v", err)
	}

	job, err := p.Submit(model.SubmissionRequest{Target: "idle", Mode: model.ModeLocal, Shots: 3, Token: "good"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if job.Status != statusPending || job.QueueInfo.Position != nil {
		t.Fatalf("idle target should be pending without queue info: %+v", job)
	}
	if got, ok := p.Job("job-1"); !ok || got.Backend != "idle" {
		t.Fatalf("expected stored job, got %+v %v", got, ok)
	}

	if _, err := p.Submit(model.SubmissionRequest{Target: "gone", Token: "good"}); !errors.Is(err, errUnknownTarget) {
		t.Fatalf("expected unknown target, got %v", err)
	}
}
