package interview

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/naviya/naviya/internal/api"
)

type fakeDevice struct {
	name     string
	data     []byte
	err      error
	releases atomic.Int64
}

func (d *fakeDevice) Name() string { return d.name }

func (d *fakeDevice) Capture(ctx context.Context) (io.Reader, func(), error) {
	if d.err != nil {
		return nil, nil, d.err
	}
	return bytes.NewReader(d.data), func() { d.releases.Add(1) }, nil
}

type fakeRecorder struct {
	buf  bytes.Buffer
	err  error
	done chan struct{}
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{done: make(chan struct{})}
}

func (r *fakeRecorder) Record(ctx context.Context, src io.Reader) error {
	defer close(r.done)
	_, err := io.Copy(&r.buf, src)
	return err
}

func (r *fakeRecorder) Stop() ([]byte, error) {
	<-r.done
	if r.err != nil {
		return nil, r.err
	}
	return r.buf.Bytes(), nil
}

type fakeBackend struct {
	submits atomic.Int64
	resp    *api.InterviewResponse
	err     error
	chats   []api.InterviewChatRequest
}

func (b *fakeBackend) SubmitInterview(ctx context.Context, userID string, recording io.Reader) (*api.InterviewResponse, error) {
	b.submits.Add(1)
	if b.err != nil {
		return nil, b.err
	}
	return b.resp, nil
}

func (b *fakeBackend) InterviewChat(ctx context.Context, req api.InterviewChatRequest) (*api.InterviewChatResponse, error) {
	b.chats = append(b.chats, req)
	return &api.InterviewChatResponse{Success: true, Reply: "work on pacing"}, nil
}

func blob(size int) []byte {
	out := make([]byte, size)
	for i := range out {
		out[i] = byte(i)
	}
	return out
}

func okResponse() *api.InterviewResponse {
	return &api.InterviewResponse{
		Success:    true,
		Transcript: "tell me about yourself",
		Segments:   []api.Segment{{Speaker: "interviewer", Text: "tell me about yourself"}},
		Evaluation: &api.Evaluation{OverallScore: 7.5, OverallRating: "good"},
	}
}

func TestPipelineHappyPath(t *testing.T) {
	mic := &fakeDevice{name: "mic", data: blob(MinBlobSize)}
	sys := &fakeDevice{name: "system", data: blob(MinBlobSize)}
	backend := &fakeBackend{resp: okResponse()}
	p := NewPipeline(backend, mic, sys, newFakeRecorder(), "u1")

	if p.Phase() != PhaseSetup {
		t.Fatalf("phase = %s, want setup", p.Phase())
	}
	p.Begin()
	if p.Phase() != PhaseInterview {
		t.Fatalf("phase = %s, want interview", p.Phase())
	}

	if err := p.StartRecording(context.Background()); err != nil {
		t.Fatal(err)
	}
	if p.Phase() != PhaseRecording {
		t.Fatalf("phase = %s, want recording", p.Phase())
	}
	if p.MicOnly() {
		t.Error("both devices granted; should not be mic-only")
	}

	if err := p.StopAndSubmit(context.Background()); err != nil {
		t.Fatal(err)
	}
	if p.Phase() != PhaseResults {
		t.Fatalf("phase = %s, want results", p.Phase())
	}

	transcript, segments, eval := p.Results()
	if transcript == "" || len(segments) != 1 || eval == nil {
		t.Errorf("results incomplete: %q %d %v", transcript, len(segments), eval)
	}
	if mic.releases.Load() == 0 || sys.releases.Load() == 0 {
		t.Error("capture handles not released after submit")
	}
}

func TestPipelineMicRequired(t *testing.T) {
	mic := &fakeDevice{name: "mic", err: errors.New("permission denied")}
	p := NewPipeline(&fakeBackend{}, mic, nil, newFakeRecorder(), "u1")
	p.Begin()

	if err := p.StartRecording(context.Background()); err == nil {
		t.Fatal("mic denial must fail the start")
	}
	if p.Phase() != PhaseInterview {
		t.Errorf("phase = %s, want back to interview", p.Phase())
	}
	if p.ErrMsg() == "" {
		t.Error("expected a user-facing error message")
	}
}

func TestPipelineSystemDenialFallsBackToMicOnly(t *testing.T) {
	mic := &fakeDevice{name: "mic", data: blob(2 * MinBlobSize)}
	sys := &fakeDevice{name: "system", err: errors.New("capture blocked")}
	backend := &fakeBackend{resp: okResponse()}
	p := NewPipeline(backend, mic, sys, newFakeRecorder(), "u1")
	p.Begin()

	if err := p.StartRecording(context.Background()); err != nil {
		t.Fatalf("system denial must not fail the start: %v", err)
	}
	if !p.MicOnly() {
		t.Error("expected mic-only fallback")
	}
	if err := p.StopAndSubmit(context.Background()); err != nil {
		t.Fatal(err)
	}
	if p.Phase() != PhaseResults {
		t.Errorf("phase = %s, want results", p.Phase())
	}
}

func TestPipelineTooShortRecording(t *testing.T) {
	mic := &fakeDevice{name: "mic", data: blob(MinBlobSize - 1)}
	backend := &fakeBackend{resp: okResponse()}
	p := NewPipeline(backend, mic, nil, newFakeRecorder(), "u1")
	p.Begin()

	if err := p.StartRecording(context.Background()); err != nil {
		t.Fatal(err)
	}
	err := p.StopAndSubmit(context.Background())
	if !errors.Is(err, ErrTooShort) {
		t.Fatalf("err = %v, want ErrTooShort", err)
	}
	if backend.submits.Load() != 0 {
		t.Error("short blob must never reach the backend")
	}
	if p.Phase() != PhaseInterview {
		t.Errorf("phase = %s, want back to interview for retry", p.Phase())
	}
	if mic.releases.Load() == 0 {
		t.Error("capture handle not released on the short-blob path")
	}
}

func TestPipelineSubmitFailureReturnsToInterview(t *testing.T) {
	mic := &fakeDevice{name: "mic", data: blob(MinBlobSize)}
	backend := &fakeBackend{err: errors.New("503")}
	p := NewPipeline(backend, mic, nil, newFakeRecorder(), "u1")
	p.Begin()
	p.StartRecording(context.Background())

	if err := p.StopAndSubmit(context.Background()); err == nil {
		t.Fatal("expected submit failure")
	}
	if p.Phase() != PhaseInterview {
		t.Errorf("phase = %s, want interview", p.Phase())
	}
	if p.ErrMsg() == "" {
		t.Error("expected a user-facing error message")
	}
}

func TestPipelineCancelReleasesDevices(t *testing.T) {
	mic := &fakeDevice{name: "mic", data: blob(MinBlobSize)}
	p := NewPipeline(&fakeBackend{}, mic, nil, newFakeRecorder(), "u1")
	p.Begin()
	p.StartRecording(context.Background())

	p.Cancel()
	if p.Phase() != PhaseInterview {
		t.Errorf("phase = %s, want interview", p.Phase())
	}
	if mic.releases.Load() == 0 {
		t.Error("cancel must release capture handles")
	}

	// Cancel outside recording is a no-op.
	p.Cancel()
}

func TestChatRequiresResultsAndAccumulatesHistory(t *testing.T) {
	mic := &fakeDevice{name: "mic", data: blob(MinBlobSize)}
	backend := &fakeBackend{resp: okResponse()}
	p := NewPipeline(backend, mic, nil, newFakeRecorder(), "u1")
	p.Begin()

	if _, err := p.Chat(context.Background(), "how did I do?"); err == nil {
		t.Fatal("chat before results should fail")
	}

	p.StartRecording(context.Background())
	if err := p.StopAndSubmit(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, err := p.Chat(context.Background(), "how did I do?"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Chat(context.Background(), "what should I practice?"); err != nil {
		t.Fatal(err)
	}

	if len(backend.chats) != 2 {
		t.Fatalf("chats = %d, want 2", len(backend.chats))
	}
	second := backend.chats[1]
	if len(second.History) != 2 {
		t.Errorf("second request history = %d turns, want 2", len(second.History))
	}
	if second.Evaluation == nil || second.Transcript == "" {
		t.Error("chat requests must carry the evaluation context")
	}
}
