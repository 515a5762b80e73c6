package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/naviya/naviya/internal/api"
	"github.com/naviya/naviya/internal/config"
	"github.com/naviya/naviya/internal/events"
	"github.com/naviya/naviya/internal/output"
	"github.com/naviya/naviya/internal/session"
	"github.com/naviya/naviya/internal/store"
	"github.com/naviya/naviya/internal/telemetry"
)

var (
	version string
	baseDir string
)

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "naviya",
	Short: "AI career-development dashboard in your terminal",
	Long: `naviya - terminal client for the NAVIYA career-development backend.

Upload a resume, generate a learning roadmap, practice interviews and
watch the agent team unlock features on your dashboard as you go.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.Error("%v", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initBaseDir)

	// Accept snake_case spellings for every flag.
	rootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.AddGroup(
		&cobra.Group{ID: "account", Title: "Account Commands:"},
		&cobra.Group{ID: "career", Title: "Career Commands:"},
		&cobra.Group{ID: "system", Title: "System Commands:"},
	)
	rootCmd.SetHelpCommandGroupID("system")
	rootCmd.SetCompletionCommandGroupID("system")
}

func initBaseDir() {
	// A .env next to the binary may carry NAVIYA_API_URL and the
	// realtime credentials during development.
	_ = godotenv.Load()
	baseDir = config.BaseDir()
}

// getBaseDir returns the base directory for per-user state
func getBaseDir() string {
	return baseDir
}

// app bundles the components every command needs.
type app struct {
	Config  *config.Config
	Store   *store.Store
	Session *session.Manager
	Client  *api.Client
}

func (a *app) Close() {
	if a.Store != nil {
		a.Store.Close()
	}
}

// openApp wires config, local store, session and the API client.
// Plain (non-TUI) commands print agent traces as attribution lines;
// the dashboard passes its own interceptor to feed the toast stack.
func openApp() (*app, error) {
	return openAppWith(func(t telemetry.Trace) {
		status := t.Status
		if status == "" {
			status = "ok"
		}
		output.Agent("  %s · %s · %.0fms · %s", t.Agent, t.Label, t.LatencyMs, status)
	})
}

func openAppWith(fn api.Interceptor) (*app, error) {
	cfg, err := config.Load(getBaseDir())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	st, err := store.Open(getBaseDir())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	mgr := session.NewManager(st, events.Default())
	client := api.New(cfg.BaseURL(), func() string {
		return mgr.Tokens().Access
	})
	client.AttachInterceptor(fn)

	return &app{Config: cfg, Store: st, Session: mgr, Client: client}, nil
}

// requireUser loads the current identity or fails with a login hint.
func requireUser(a *app) (session.Identity, error) {
	id, err := a.Session.Current()
	if err != nil {
		return session.Identity{}, fmt.Errorf("read session: %w", err)
	}
	if id == nil {
		return session.Identity{}, fmt.Errorf("not logged in (run `naviya login` first)")
	}
	return *id, nil
}
