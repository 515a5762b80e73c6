// Package interview runs the mock-interview capture pipeline: acquire
// microphone and system audio, mix them into one stream, record a
// single opus-webm blob, upload it, and hold the returned transcript
// and evaluation for the results view.
package interview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/naviya/naviya/internal/api"
)

// MinBlobSize rejects silent-tap recordings before upload.
const MinBlobSize = 1024

// ErrTooShort is surfaced when the recording blob is under MinBlobSize.
var ErrTooShort = errors.New("recording too short")

// Phase is the pipeline state.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseInterview
	PhaseRecording
	PhaseTranscribing
	PhaseResults
)

// String implements fmt.Stringer for logs and tests.
func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseInterview:
		return "interview"
	case PhaseRecording:
		return "recording"
	case PhaseTranscribing:
		return "transcribing"
	case PhaseResults:
		return "results"
	default:
		return "unknown"
	}
}

// Device is one audio capture source. Implementations for system audio
// must stop any display/video leg immediately after tapping its audio,
// before returning, so no sharing indicator lingers.
type Device interface {
	Name() string
	// Capture returns the audio stream and a release func that stops
	// the underlying tracks. release must be safe to call twice.
	Capture(ctx context.Context) (io.Reader, func(), error)
}

// Recorder consumes the mixed stream and produces the final blob.
type Recorder interface {
	// Record reads src until Stop is called or src ends.
	Record(ctx context.Context, src io.Reader) error
	// Stop finishes the recording and returns the opus-webm blob.
	Stop() ([]byte, error)
}

// Backend is the slice of the API the pipeline needs.
type Backend interface {
	SubmitInterview(ctx context.Context, userID string, recording io.Reader) (*api.InterviewResponse, error)
	InterviewChat(ctx context.Context, req api.InterviewChatRequest) (*api.InterviewChatResponse, error)
}

// Pipeline is the session state machine. Methods are called from the
// owning view's update loop; internal capture goroutines are managed
// here and always released on exit paths.
type Pipeline struct {
	backend Backend
	mic     Device
	system  Device
	rec     Recorder
	userID  string

	mu       sync.Mutex
	phase    Phase
	errMsg   string
	micOnly  bool
	releases []func()
	recWait  chan error

	transcript string
	segments   []api.Segment
	evaluation *api.Evaluation
	history    []api.ChatTurn
}

// NewPipeline creates a session in the setup phase. system may be nil
// when the platform offers no system-audio capture at all.
func NewPipeline(backend Backend, mic, system Device, rec Recorder, userID string) *Pipeline {
	return &Pipeline{
		backend: backend,
		mic:     mic,
		system:  system,
		rec:     rec,
		userID:  userID,
		phase:   PhaseSetup,
	}
}

// Phase returns the current phase.
func (p *Pipeline) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// ErrMsg returns the last user-facing error, cleared on phase change.
func (p *Pipeline) ErrMsg() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errMsg
}

// MicOnly reports whether system audio was denied and the session fell
// back to microphone only.
func (p *Pipeline) MicOnly() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.micOnly
}

// Results returns the adopted transcript, segments and evaluation.
// Valid only in PhaseResults.
func (p *Pipeline) Results() (string, []api.Segment, *api.Evaluation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transcript, p.segments, p.evaluation
}

// Begin moves setup to interview once the view is ready.
func (p *Pipeline) Begin() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.phase == PhaseSetup {
		p.phase = PhaseInterview
		p.errMsg = ""
	}
}

// StartRecording acquires sources and begins recording. The microphone
// is required; system audio denial downgrades to mic-only and the
// session continues.
func (p *Pipeline) StartRecording(ctx context.Context) error {
	p.mu.Lock()
	if p.phase != PhaseInterview {
		p.mu.Unlock()
		return fmt.Errorf("cannot record from phase %s", p.phase)
	}
	p.mu.Unlock()

	micTrack, micRelease, err := p.mic.Capture(ctx)
	if err != nil {
		p.fail(PhaseInterview, fmt.Sprintf("microphone unavailable: %v", err))
		return err
	}

	var src io.Reader = micTrack
	releases := []func(){micRelease}
	micOnly := true

	if p.system != nil {
		sysTrack, sysRelease, err := p.system.Capture(ctx)
		if err == nil {
			src = Mix(micTrack, sysTrack)
			releases = append(releases, sysRelease)
			micOnly = false
		}
		// Denied system capture is not an error: mic-only fallback.
	}

	wait := make(chan error, 1)
	go func() { wait <- p.rec.Record(ctx, src) }()

	p.mu.Lock()
	p.phase = PhaseRecording
	p.errMsg = ""
	p.micOnly = micOnly
	p.releases = releases
	p.recWait = wait
	p.mu.Unlock()
	return nil
}

// StopAndSubmit ends the recording, enforces the minimum blob size and
// uploads. On success the pipeline holds the results; on any failure it
// returns to the interview phase with a message. Capture handles are
// released on every path.
func (p *Pipeline) StopAndSubmit(ctx context.Context) error {
	p.mu.Lock()
	if p.phase != PhaseRecording {
		p.mu.Unlock()
		return fmt.Errorf("cannot stop from phase %s", p.phase)
	}
	p.phase = PhaseTranscribing
	p.mu.Unlock()

	p.release()

	blob, err := p.rec.Stop()
	if err != nil {
		p.fail(PhaseInterview, fmt.Sprintf("recording failed: %v", err))
		return err
	}
	if len(blob) < MinBlobSize {
		p.fail(PhaseInterview, "Recording too short — say a little more and try again.")
		return ErrTooShort
	}

	resp, err := p.backend.SubmitInterview(ctx, p.userID, bytes.NewReader(blob))
	if err != nil {
		p.fail(PhaseInterview, fmt.Sprintf("evaluation failed: %v", err))
		return err
	}

	p.mu.Lock()
	p.phase = PhaseResults
	p.errMsg = ""
	p.transcript = resp.Transcript
	p.segments = resp.Segments
	p.evaluation = resp.Evaluation
	p.mu.Unlock()
	return nil
}

// Cancel abandons an in-flight recording and returns to the interview
// phase, releasing all capture handles.
func (p *Pipeline) Cancel() {
	p.mu.Lock()
	if p.phase != PhaseRecording {
		p.mu.Unlock()
		return
	}
	p.phase = PhaseInterview
	p.errMsg = ""
	p.mu.Unlock()

	p.release()
	_, _ = p.rec.Stop()
}

// Chat asks the coach a follow-up grounded in the evaluation.
func (p *Pipeline) Chat(ctx context.Context, message string) (string, error) {
	p.mu.Lock()
	if p.phase != PhaseResults {
		p.mu.Unlock()
		return "", fmt.Errorf("chat requires results")
	}
	req := api.InterviewChatRequest{
		Message:    message,
		Evaluation: p.evaluation,
		Transcript: p.transcript,
		Segments:   p.segments,
		History:    append([]api.ChatTurn(nil), p.history...),
	}
	p.mu.Unlock()

	resp, err := p.backend.InterviewChat(ctx, req)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	p.history = append(p.history,
		api.ChatTurn{Role: "user", Content: message},
		api.ChatTurn{Role: "assistant", Content: resp.Reply},
	)
	p.mu.Unlock()
	return resp.Reply, nil
}

// Close releases everything regardless of phase.
func (p *Pipeline) Close() {
	p.release()
}

// release runs and clears all pending capture releases.
func (p *Pipeline) release() {
	p.mu.Lock()
	releases := p.releases
	p.releases = nil
	p.mu.Unlock()
	for _, r := range releases {
		r()
	}
}

// fail records a user-facing message and moves to the given phase.
func (p *Pipeline) fail(to Phase, msg string) {
	p.release()
	p.mu.Lock()
	p.phase = to
	p.errMsg = msg
	p.mu.Unlock()
}
