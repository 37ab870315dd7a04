package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alcyxob/plan-coach/internal/config"
	"alcyxob/plan-coach/internal/domain"
	"alcyxob/plan-coach/internal/llm"
	"alcyxob/plan-coach/internal/logging"
	"alcyxob/plan-coach/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "coachctl",
		Short:         "Talk to the training-plan coach from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing config.yaml")

	root.AddCommand(newChatCmd(&configPath))
	root.AddCommand(newEventsCmd(&configPath))
	return root
}

type cliEnv struct {
	cfg       config.Config
	logger    *zap.Logger
	creds     domain.Credentials
	calendars service.CalendarFactory
}

func loadEnv(configPath string) (*cliEnv, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	// Keep the terminal for the conversation; only problems are logged.
	logCfg := cfg.Log
	if logCfg.Level == "" || logCfg.Level == "info" {
		logCfg.Level = "warn"
	}
	logCfg.Development = true
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}
	creds := domain.Credentials{AthleteID: cfg.Intervals.AthleteID, APIKey: cfg.Intervals.APIKey}
	if !creds.Complete() {
		return nil, fmt.Errorf("set INTERVALS_ATHLETE_ID and INTERVALS_API_KEY: %w", service.ErrMissingCredentials)
	}
	return &cliEnv{
		cfg:       cfg,
		logger:    logger,
		creds:     creds,
		calendars: service.IntervalsFactory(cfg.Intervals.BaseURL, cfg.Intervals.Timeout),
	}, nil
}

func newChatCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session (/voice <file>, /draft, /quit)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := loadEnv(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = env.logger.Sync() }()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			model, err := llm.NewGemini(ctx, env.cfg.Gemini.APIKey, env.cfg.Gemini.Model, env.logger)
			if err != nil {
				return err
			}
			assistant := service.NewAssistant(env.cfg.Assistant, model, env.calendars, nil, env.logger)
			return runChat(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), assistant, env.creds)
		},
	}
}

func newEventsCmd(configPath *string) *cobra.Command {
	var oldest, newest string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List calendar events in a date range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := loadEnv(*configPath)
			if err != nil {
				return err
			}
			if !domain.ValidDay(oldest) || !domain.ValidDay(newest) {
				return service.ErrInvalidRange
			}
			events, err := env.calendars(env.creds.APIKey).ListEvents(cmd.Context(), env.creds.AthleteID, oldest, newest)
			if err != nil {
				return err
			}
			return printEvents(cmd.OutOrStdout(), events)
		},
	}
	cmd.Flags().StringVar(&oldest, "oldest", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&newest, "newest", "", "last day, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("oldest")
	_ = cmd.MarkFlagRequired("newest")
	return cmd
}
