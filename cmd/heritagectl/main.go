package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/tendant/heritage-content/pkg/heritage"
	"github.com/tendant/heritage-content/pkg/heritage/config"
	"github.com/tendant/heritage-content/pkg/heritage/store"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	configFile string
	envFile    string
	seedFile   string
	jsonOutput bool
	timeout    time.Duration
}

func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "heritagectl",
		Short: "Administer the heritage content store",
		Long: `heritagectl talks to the document store configured for the heritage API
(MONGO_URL, DB_NAME) and runs maintenance tasks against it directly.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "YAML config file (optional)")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load (optional)")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of tables")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "time limit for the command")

	rootCmd.AddCommand(NewSeedCommand(opts))
	rootCmd.AddCommand(NewStatsCommand(opts))
	rootCmd.AddCommand(NewSubscribersCommand(opts))
	rootCmd.AddCommand(NewTokenCommand(opts))

	return rootCmd
}

// session holds the resources a command works with
type session struct {
	cfg     *config.ServerConfig
	store   store.Store
	service heritage.Service
}

func (o *globalOptions) loadConfig() (*config.ServerConfig, error) {
	return config.Load(
		config.WithDotEnv(o.envFile),
		config.WithEnv(),
		config.WithFile(o.configFile),
	)
}

func (o *globalOptions) open(ctx context.Context) (*session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	if o.seedFile != "" {
		cfg.SeedFile = o.seedFile
	}

	st, err := cfg.BuildStore(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := heritage.New(heritage.WithStore(st), heritage.WithLogger(cfg.NewLogger(os.Stderr)))
	if err != nil {
		_ = st.Close(ctx)
		return nil, err
	}
	return &session{cfg: cfg, store: st, service: svc}, nil
}

func (s *session) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.store.Close(ctx)
}

func (o *globalOptions) withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	defer cancel()

	s, err := o.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(ctx, s)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}
