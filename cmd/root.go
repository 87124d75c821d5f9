// Package cmd wires configuration, logging and the agent backend into the
// chat front ends.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"policy-chat/internal/agent"
	"policy-chat/internal/chat"
	"policy-chat/internal/config"
	"policy-chat/internal/logging"
	"policy-chat/internal/session"
	"policy-chat/internal/terminal"
	"policy-chat/internal/ui"
)

// options are the raw command-line values. They only override the config
// when the flag was given explicitly.
type options struct {
	configFile      string
	apiHost         string
	timeout         time.Duration
	feedbackTimeout time.Duration
	plain           bool
	verbose         bool
	logFile         string
	noReferences    bool
}

// Execute is the entry point called from main
func Execute(version, commit string) {
	if err := NewRootCmd(version, commit).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd builds the policy-chat command tree
func NewRootCmd(version, commit string) *cobra.Command {
	return newRootCmd(version, commit, func(cmd *cobra.Command, cfg *config.Config) error {
		return runChat(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), version)
	})
}

func newRootCmd(version, commit string, run func(*cobra.Command, *config.Config) error) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "policy-chat",
		Short: "Chat with the HR policy agent",
		Long: "policy-chat is a terminal client for the HR policy agent. Ask questions,\n" +
			"read the agent's answers with their sources, and rate replies 👍 or 👎.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			return run(cmd, cfg)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file path (default ~/.policy-chat/config.yaml)")
	flags.StringVar(&opts.apiHost, "api-host", "", "agent API base URL (env "+config.EnvAPIHost+")")
	flags.DurationVar(&opts.timeout, "timeout", 0, "agent request timeout (default 60s)")
	flags.DurationVar(&opts.feedbackTimeout, "feedback-timeout", 0, "feedback report timeout (default 10s)")
	flags.BoolVar(&opts.plain, "plain", false, "use the line-mode interface even on a terminal")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&opts.logFile, "log-file", "", "log file path, - for stderr (default ~/.policy-chat/client.log)")
	flags.BoolVar(&opts.noReferences, "no-references", false, "hide the sources listed under agent replies")

	rootCmd.AddCommand(newVersionCmd(version, commit))
	return rootCmd
}

// resolveConfig layers defaults, the config file, the environment and
// explicit flags, in that order, then validates the result.
func resolveConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg := config.NewConfig()

	path, required := opts.configFile, true
	if path == "" {
		path, required = config.DefaultPath(), false
	}
	if err := cfg.LoadFile(path, required); err != nil {
		return nil, err
	}

	cfg.ApplyEnv()

	flags := cmd.Flags()
	if flags.Changed("api-host") {
		cfg.APIHost = opts.apiHost
	}
	if flags.Changed("timeout") {
		cfg.AgentTimeout = opts.timeout
	}
	if flags.Changed("feedback-timeout") {
		cfg.FeedbackTimeout = opts.feedbackTimeout
	}
	if flags.Changed("plain") {
		cfg.Plain = opts.plain
	}
	if flags.Changed("verbose") {
		cfg.Verbose = opts.verbose
	}
	if flags.Changed("log-file") {
		cfg.LogFile = opts.logFile
	}
	if flags.Changed("no-references") {
		cfg.ShowReferences = !opts.noReferences
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runChat(parent context.Context, cfg *config.Config, stdout, stderr io.Writer, version string) error {
	if parent == nil {
		parent = context.Background()
	}

	logger, err := logging.New(logging.Options{File: cfg.LogFile, Verbose: cfg.Verbose})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	client := agent.NewClient(cfg.APIHost, cfg.AgentTimeout, agent.WithUserAgent(cfg.UserAgent))
	logger.Info("starting policy-chat",
		zap.String("version", version),
		zap.String("api_host", client.BaseURL()),
		zap.Duration("agent_timeout", cfg.AgentTimeout),
		zap.Bool("plain", cfg.Plain),
	)

	sess := session.NewManager()
	ctrl := chat.NewController(sess, client, logger)
	corr := chat.NewCorrelator(sess, client, cfg.FeedbackTimeout, logger)
	logger.Debug("session created", zap.String("session_id", sess.ID()))

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("shutting down", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	// Health check (non-fatal)
	var notice string
	if err := client.HealthCheck(ctx); err != nil {
		logger.Warn("agent health check failed", zap.Error(err))
		notice = fmt.Sprintf("Agent at %s did not answer the health check: %v", cfg.APIHost, err)
	}

	if terminal.IsTerminal() && !cfg.Plain {
		err = runTUI(ctx, cfg, sess, ctrl, corr, logger, notice)
	} else {
		err = runPlain(ctx, cfg, sess, ctrl, corr, logger, notice, stdout, stderr)
	}

	// Pending reports are bounded by the feedback timeout.
	corr.Wait()
	logger.Info("session ended",
		zap.String("session_id", sess.ID()),
		zap.Int("messages", sess.Len()),
		zap.Duration("duration", time.Since(sess.StartedAt())),
	)
	return err
}

func runTUI(ctx context.Context, cfg *config.Config, sess *session.Manager, ctrl *chat.Controller,
	corr *chat.Correlator, logger *zap.Logger, notice string) error {
	model := ui.NewModel(ui.ModelDeps{
		Context:        ctx,
		Session:        sess,
		Controller:     ctrl,
		Correlator:     corr,
		Renderer:       ui.NewRenderer(ui.StyleAuto),
		Host:           cfg.APIHost,
		ShowReferences: cfg.ShowReferences,
		Notice:         notice,
		Logger:         logger,
	})

	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}

func runPlain(ctx context.Context, cfg *config.Config, sess *session.Manager, ctrl *chat.Controller,
	corr *chat.Correlator, logger *zap.Logger, notice string, stdout, stderr io.Writer) error {
	style := ui.StyleAuto
	if !terminal.IsTerminal() {
		style = "notty"
	}
	display := ui.NewDisplay(stdout, terminal.Width(80), ui.NewRenderer(style), cfg.ShowReferences)
	if notice != "" {
		display.PrintWarning(notice)
	}

	repl := ui.NewPlain(ui.PlainDeps{
		Session:    sess,
		Controller: ctrl,
		Correlator: corr,
		Display:    display,
		Host:       cfg.APIHost,
		Logger:     logger,
	}, os.Stdin, stderr)

	// Reading stdin cannot be interrupted, so a signal ends the run without
	// waiting for the next line.
	done := make(chan error, 1)
	go func() { done <- repl.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			display.PrintError(err)
		}
		return err
	case <-ctx.Done():
		display.PrintInfo("Shutting down gracefully...")
		return nil
	}
}
