package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/powersched/powersched/internal/config"
	"github.com/powersched/powersched/internal/version"
	"github.com/powersched/powersched/pkg/aws"
	"github.com/powersched/powersched/pkg/formatter"
	"github.com/powersched/powersched/pkg/notify"
	"github.com/powersched/powersched/pkg/scheduler"
	"github.com/powersched/powersched/pkg/timezone"
)

var (
	cfgPath     string
	regions     []string
	dryRun      bool
	cronExpr    string
	prettyLogs  bool
	showVersion bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "powersched",
		Short: "Reconcile EC2 instance power state with schedule tags",
		Long: `powersched evaluates PowerScheduleOnTime/PowerScheduleOffTime tags
on EC2 instances and starts or stops each instance so that its power
state matches its schedule, in the timezone of the instance's region.`,
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to the config file (default: ./powersched.yaml)")
	rootCmd.Flags().StringSliceVarP(&regions, "regions", "r", nil, "AWS regions to reconcile (comma separated, default: autodetect)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Evaluate schedules and print the plan without starting or stopping anything")
	rootCmd.Flags().StringVar(&cronExpr, "cron", "", "Run continuously on this cron expression instead of once")
	rootCmd.Flags().BoolVar(&prettyLogs, "pretty", false, "Human-readable console logs instead of JSON")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "Show version information")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	if showVersion {
		fmt.Println(version.Get())
		return nil
	}

	// Optional .env for local runs; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if len(regions) > 0 {
		cfg.Regions = regions
	}
	if dryRun {
		cfg.DryRun = true
	}
	if cronExpr != "" {
		cfg.Cron = cronExpr
	}

	logger := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(cfg.Regions) == 0 {
		cfg.Regions = []string{aws.DetectRegion(ctx)}
	}
	for _, region := range cfg.Regions {
		if !timezone.IsKnownRegion(region) {
			logger.Warn().
				Str("region", region).
				Str("timezone", cfg.FallbackTimezone).
				Msg("Region has no timezone mapping, schedules will use the fallback zone")
		}
	}

	runner, err := buildRunner(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if cfg.Cron != "" {
		return runDaemon(ctx, runner, cfg.Cron, logger)
	}
	return runOnce(ctx, runner, cfg.DryRun)
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var out = os.Stdout
	logger := zerolog.New(out).Level(lvl).With().Timestamp().Logger()
	if prettyLogs {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out})
	}
	return logger
}

func buildRunner(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*scheduler.Runner, error) {
	resolver, err := timezone.NewResolver(cfg.FallbackTimezone)
	if err != nil {
		return nil, err
	}

	keys := aws.TagKeys{
		OnTime:        cfg.Tags.OnTime,
		OffTime:       cfg.Tags.OffTime,
		DisabledUntil: cfg.Tags.DisabledUntil,
		Stakeholders:  cfg.Tags.Stakeholders,
	}
	clients, err := aws.NewClients(ctx, cfg.Regions, keys)
	if err != nil {
		return nil, err
	}
	services := make([]scheduler.InstanceService, len(clients))
	for i, c := range clients {
		services[i] = c
	}

	var notifier scheduler.Notifier
	if token := os.Getenv("SLACK_BOT_TOKEN"); token != "" {
		notifier = notify.NewSlackNotifier(token, logger)
	} else {
		logger.Warn().Msg("SLACK_BOT_TOKEN not set, stakeholder notifications are disabled")
	}

	reconciler := scheduler.NewReconciler(resolver, logger)
	return scheduler.NewRunner(reconciler, services, notifier, cfg.DryRun, logger), nil
}

func runOnce(ctx context.Context, runner *scheduler.Runner, plan bool) error {
	var s *spinner.Spinner
	if plan {
		s = spinner.New(spinner.CharSets[9], 200*time.Millisecond)
		s.Suffix = " Evaluating power schedules ..."
		s.Start()
	}

	start := time.Now()
	outcome, decisions, err := runner.RunCycle(ctx)
	duration := time.Since(start)

	if s != nil {
		s.FinalMSG = fmt.Sprintf("✓ [%d instances evaluated] Power schedules analyzed - Completed in %.2f seconds\n",
			len(decisions), duration.Seconds())
		s.Stop()
	}
	if err != nil {
		return err
	}

	if plan {
		formatter.PrintDecisionsTable(os.Stdout, decisions, start, duration)
		formatter.PrintOutcomeSummary(os.Stdout, outcome)
	}
	return nil
}

func runDaemon(ctx context.Context, runner *scheduler.Runner, expr string, logger zerolog.Logger) error {
	// First cycle immediately, then on the cron schedule.
	if _, _, err := runner.RunCycle(ctx); err != nil {
		logger.Error().Err(err).Msg("Cycle failed")
	}

	c := cron.New()
	_, err := c.AddFunc(expr, func() {
		if _, _, err := runner.RunCycle(ctx); err != nil {
			logger.Error().Err(err).Msg("Cycle failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}

	logger.Info().Str("cron", expr).Msg("Starting scheduler daemon")
	c.Start()
	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	stopCtx := c.Stop()
	<-stopCtx.Done()
	return nil
}
