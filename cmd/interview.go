package cmd

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/naviya/naviya/internal/api"
	"github.com/naviya/naviya/internal/features"
	"github.com/naviya/naviya/internal/interview"
	"github.com/naviya/naviya/internal/output"
)

// fileDevice replays a capture file as an audio device. It stands in
// for live capture, which the terminal cannot do portably; point it at
// a raw s16le recording.
type fileDevice struct {
	name string
	path string
}

func (d *fileDevice) Name() string { return d.name }

func (d *fileDevice) Capture(ctx context.Context) (io.Reader, func(), error) {
	f, err := os.Open(d.path)
	if err != nil {
		return nil, nil, err
	}
	var once sync.Once
	return f, func() { once.Do(func() { f.Close() }) }, nil
}

// bufferRecorder accumulates the mixed stream in memory until Stop.
type bufferRecorder struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	done chan struct{}
}

func newBufferRecorder() *bufferRecorder {
	return &bufferRecorder{done: make(chan struct{})}
}

func (r *bufferRecorder) Record(ctx context.Context, src io.Reader) error {
	defer close(r.done)
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := src.Read(buf)
		if n > 0 {
			r.mu.Lock()
			r.buf.Write(buf[:n])
			r.mu.Unlock()
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (r *bufferRecorder) Stop() ([]byte, error) {
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Bytes(), nil
}

var interviewCmd = &cobra.Command{
	Use:     "interview",
	Short:   "Record a mock interview and get an AI evaluation",
	GroupID: "career",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := requireUser(a)
		if err != nil {
			return err
		}
		if err := requireFeature(cmd.Context(), a, user, features.MockInterview); err != nil {
			return err
		}

		micPath, _ := cmd.Flags().GetString("mic")
		sysPath, _ := cmd.Flags().GetString("system")
		if micPath == "" {
			return fmt.Errorf("--mic is required (raw s16le PCM file)")
		}

		var system interview.Device
		if sysPath != "" {
			system = &fileDevice{name: "system", path: sysPath}
		}

		mic := &fileDevice{name: "microphone", path: micPath}
		p := interview.NewPipeline(a.Client, mic, system, newBufferRecorder(), user.ID)
		defer p.Close()

		p.Begin()
		reader := bufio.NewReader(os.Stdin)

		fmt.Println("Press Enter to start recording (or q to quit).")
		if quitRequested(reader) {
			p.Cancel()
			return nil
		}

		if err := p.StartRecording(cmd.Context()); err != nil {
			return fmt.Errorf("start recording: %w", err)
		}
		if p.MicOnly() {
			output.Warning("System audio unavailable; recording microphone only.")
		}

		fmt.Println("Recording. Press Enter to stop and submit.")
		if quitRequested(reader) {
			p.Cancel()
			return nil
		}

		fmt.Println("Transcribing and evaluating...")
		if err := p.StopAndSubmit(cmd.Context()); err != nil {
			if errors.Is(err, interview.ErrTooShort) {
				output.Warning("Recording too short to evaluate; try again.")
				return nil
			}
			return fmt.Errorf("submit interview: %w", err)
		}

		transcript, segments, eval := p.Results()
		if err := printInterviewResults(transcript, segments, eval); err != nil {
			return err
		}

		// Follow-up chat about the evaluation.
		fmt.Println("Ask the coach about your results (empty line to finish).")
		for {
			fmt.Print("> ")
			line, err := reader.ReadString('\n')
			if err != nil {
				break
			}
			line = strings.TrimSpace(line)
			if line == "" {
				break
			}
			reply, err := p.Chat(cmd.Context(), line)
			if err != nil {
				output.Error("chat: %v", err)
				continue
			}
			rendered, err := output.RenderMarkdown(reply)
			if err != nil {
				fmt.Println(reply)
				continue
			}
			fmt.Println(rendered)
		}
		return nil
	},
}

func quitRequested(reader *bufio.Reader) bool {
	line, err := reader.ReadString('\n')
	if err != nil {
		return true
	}
	return strings.TrimSpace(line) == "q"
}

func printInterviewResults(transcript string, segments []api.Segment, eval *api.Evaluation) error {
	var md strings.Builder
	md.WriteString("# Interview results\n\n")
	if eval != nil {
		fmt.Fprintf(&md, "**Overall:** %.1f/10 (%s)\n\n", eval.OverallScore, eval.OverallRating)
		fmt.Fprintf(&md, "- Communication: %.1f\n- Technical: %.1f\n- Confidence: %.1f\n\n",
			eval.CommunicationScore, eval.TechnicalScore, eval.ConfidenceScore)
		if len(eval.StrengthsSummary) > 0 {
			md.WriteString("## Strengths\n\n")
			for _, s := range eval.StrengthsSummary {
				fmt.Fprintf(&md, "- %s\n", s)
			}
			md.WriteString("\n")
		}
		if len(eval.ImprovementAreas) > 0 {
			md.WriteString("## Improve\n\n")
			for _, s := range eval.ImprovementAreas {
				fmt.Fprintf(&md, "- %s\n", s)
			}
			md.WriteString("\n")
		}
		if eval.Recommendation != "" {
			fmt.Fprintf(&md, "**Recommendation:** %s\n\n", eval.Recommendation)
		}
	}
	if len(segments) > 0 {
		md.WriteString("## Transcript\n\n")
		for _, s := range segments {
			fmt.Fprintf(&md, "**%s:** %s\n\n", s.Speaker, s.Text)
		}
	} else if transcript != "" {
		fmt.Fprintf(&md, "## Transcript\n\n%s\n", transcript)
	}

	rendered, err := output.RenderMarkdown(md.String())
	if err != nil {
		return err
	}
	fmt.Println(rendered)
	return nil
}

func init() {
	rootCmd.AddCommand(interviewCmd)
	interviewCmd.Flags().String("mic", "", "Microphone capture file (raw s16le PCM)")
	interviewCmd.Flags().String("system", "", "System audio capture file (raw s16le PCM)")
}
