package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/studyfocus/internal/config"
	"github.com/sadopc/studyfocus/internal/export"
	"github.com/sadopc/studyfocus/internal/logging"
	"github.com/sadopc/studyfocus/internal/planner"
	"github.com/sadopc/studyfocus/internal/store"
	"github.com/sadopc/studyfocus/internal/timer"
	"github.com/sadopc/studyfocus/internal/tui"
)

var (
	dbPath     string
	configPath string
	logLevel   string

	planGoal     string
	planMood     string
	planHours    float64
	planDays     []string
	planDeadline string

	exportFormat string
	exportOut    string

	statsDays int

	configForce bool

	rootCmd = &cobra.Command{
		Use:          "studyfocus",
		Short:        "Study planner with a focus timer",
		Long:         `studyfocus plans study goals week by week and runs pomodoro and custom focus timers in the terminal.`,
		SilenceUsage: true,
		RunE:         runTUI,
	}

	planCmd = &cobra.Command{
		Use:   "plan",
		Short: "Generate a study plan for a goal and print it as markdown",
		RunE:  runPlan,
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export focus history to CSV or JSON",
		RunE:  runExport,
	}

	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Print daily focus totals",
		RunE:  runStats,
	}

	askCmd = &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the study coach a question",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a config.yaml with the default settings",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the SQLite database (default ~/.config/studyfocus/studyfocus.db)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (default ~/.config/studyfocus/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringVar(&planGoal, "goal", "", "What you want to learn")
	planCmd.Flags().StringVar(&planMood, "mood", "moderate", "Motivation: motivated, moderate or low")
	planCmd.Flags().Float64Var(&planHours, "hours", 0, "Hours per day (0 uses the mood default)")
	planCmd.Flags().StringSliceVar(&planDays, "days", []string{"Monday", "Wednesday", "Friday"}, "Study days")
	planCmd.Flags().StringVar(&planDeadline, "deadline", "", "Deadline as YYYY-MM-DD")

	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Export format: csv or json")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default ~/studyfocus-export-<date>.<format>)")

	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().IntVar(&statsDays, "days", 7, "Number of days to include")

	rootCmd.AddCommand(askCmd)

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
}

// appEnv is the shared state every command opens.
type appEnv struct {
	cfg   config.Config
	log   *logging.Logger
	store *store.Store
}

func (e *appEnv) close() {
	if e.store != nil {
		e.store.Close()
	}
	if e.log != nil {
		e.log.Close()
	}
}

// setup loads configuration, opens the log file and the database. Flags
// override the config file.
func setup() (*appEnv, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	logDir := cfg.LogDir
	if logDir == "" {
		logDir = logging.DefaultDir()
	}
	lg, err := logging.New(logging.Config{Level: cfg.LogLevel, Dir: logDir})
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	slog.SetDefault(lg.Logger)

	if cfg.DBPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			lg.Close()
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		cfg.DBPath = p
	}
	s, err := store.New(cfg.DBPath)
	if err != nil {
		lg.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	slog.Info("studyfocus started", "db", cfg.DBPath, "log_level", cfg.LogLevel)
	return &appEnv{cfg: cfg, log: lg, store: s}, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	env, err := setup()
	if err != nil {
		return err
	}
	defer env.close()

	notifier := tui.NewNotifier()
	focusCfg := env.store.FocusConfig()
	focusCfg.TickInterval = env.cfg.TickInterval
	engine := timer.New(focusCfg,
		timer.WithObserver(env.store),
		timer.WithNotifier(notifier),
		timer.WithLogger(env.log.Logger),
	)
	defer engine.Reset()

	client := planner.NewClient(env.cfg.Planner, env.log.Logger)
	out := tui.NewOutput(os.Stdout)
	app := tui.NewApp(env.store, engine, client).WithBell(out.Bell)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithOutput(out))
	notifier.Attach(p)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(planGoal) == "" {
		return errors.New("--goal is required")
	}

	env, err := setup()
	if err != nil {
		return err
	}
	defer env.close()

	g, err := findOrCreateGoal(env.store)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	client := planner.NewClient(env.cfg.Planner, env.log.Logger)
	plan, err := client.Generate(ctx, planner.Request{
		Goal:        g.Name,
		Mood:        g.Mood,
		Deadline:    g.Deadline,
		HoursPerDay: g.HoursPerDay,
		Days:        g.Days,
	})
	if err != nil {
		return fmt.Errorf("generate plan: %w", err)
	}
	if _, err := env.store.SavePlan(g.ID, plan); err != nil {
		return err
	}
	tasks, err := env.store.ListPlanTasks(g.ID)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), export.PlanToMarkdown(plan, tasks))
	return nil
}

// findOrCreateGoal reuses a goal with the same name so plans can be regenerated.
func findOrCreateGoal(s *store.Store) (*store.Goal, error) {
	name := strings.TrimSpace(planGoal)
	g, err := s.FindGoal(name)
	if err != nil || g != nil {
		return g, err
	}

	intensity := planner.Intensity(planMood)
	hours := planHours
	if hours <= 0 {
		hours = float64(planner.BaseHours(intensity))
	}
	return s.CreateGoal(store.Goal{
		Name:        name,
		Mood:        planMood,
		Intensity:   intensity,
		HoursPerDay: hours,
		Days:        planDays,
		Deadline:    planDeadline,
	})
}

func runExport(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(exportFormat)
	if format != "csv" && format != "json" {
		return fmt.Errorf("unknown format %q (want csv or json)", exportFormat)
	}

	env, err := setup()
	if err != nil {
		return err
	}
	defer env.close()

	phases, err := env.store.ListPhases(store.PhaseFilter{})
	if err != nil {
		return err
	}

	out := exportOut
	if out == "" {
		home, _ := os.UserHomeDir()
		out = filepath.Join(home, fmt.Sprintf("studyfocus-export-%s.%s", time.Now().Format("2006-01-02"), format))
	}

	if format == "csv" {
		err = export.ToCSV(phases, out)
	} else {
		err = export.ToJSON(phases, out)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d phases to %s\n", len(phases), out)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	if statsDays <= 0 {
		return errors.New("--days must be positive")
	}

	env, err := setup()
	if err != nil {
		return err
	}
	defer env.close()

	now := time.Now().UTC()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -statsDays)

	summaries, err := env.store.GetFocusDailySummary(from, to)
	if err != nil {
		return err
	}
	studies, secs, err := env.store.GetFocusStats(from, to)
	if err != nil {
		return err
	}

	printStats(cmd.OutOrStdout(), summaries, studies, secs)
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return errors.New("question is required")
	}

	env, err := setup()
	if err != nil {
		return err
	}
	defer env.close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	client := planner.NewClient(env.cfg.Planner, env.log.Logger)
	ans, err := client.Chat(ctx, nil, question)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ans.Text)
	return nil
}

// runConfigInit writes the defaults without opening the log or database.
func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	if !configForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	cfg := config.Default()
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if err := config.Save(path, cfg, ""); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultPath()
}

func printStats(w io.Writer, summaries []store.FocusDailySummary, studies int, focusSecs int64) {
	fmt.Fprintf(w, "%-12s %8s %8s %8s %8s\n", "Date", "Focus", "Breaks", "Studies", "Skipped")
	for _, s := range summaries {
		fmt.Fprintf(w, "%-12s %8s %8s %8d %8d\n",
			s.Date, minutes(s.FocusSeconds), minutes(s.BreakSeconds), s.StudyCount, s.SkippedCount)
	}
	fmt.Fprintf(w, "\nTotal: %s focused over %d pomodoros\n", minutes(focusSecs), studies)
}

func minutes(secs int64) string {
	return fmt.Sprintf("%dm", secs/60)
}
