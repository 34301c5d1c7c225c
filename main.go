package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/fatih/color"
	"github.com/nstehr/animancer/agent"
	"github.com/nstehr/animancer/command"
	"github.com/nstehr/animancer/director"
	"github.com/nstehr/animancer/model"
	"github.com/nstehr/animancer/tuning"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

const banner = `
 █████╗ ███╗   ██╗██╗███╗   ███╗ █████╗ ███╗   ██╗ ██████╗███████╗██████╗
██╔══██╗████╗  ██║██║████╗ ████║██╔══██╗████╗  ██║██╔════╝██╔════╝██╔══██╗
███████║██╔██╗ ██║██║██╔████╔██║███████║██╔██╗ ██║██║     █████╗  ██████╔╝
██╔══██║██║╚██╗██║██║██║╚██╔╝██║██╔══██║██║╚██╗██║██║     ██╔══╝  ██╔══██╗
██║  ██║██║ ╚████║██║██║ ╚═╝ ██║██║  ██║██║ ╚████║╚██████╗███████╗██║  ██║
╚═╝  ╚═╝╚═╝  ╚═══╝╚═╝╚═╝     ╚═╝╚═╝  ╚═╝╚═╝  ╚═══╝ ╚═════╝╚══════╝╚═╝  ╚═╝

Scripted RTS Director`

type runFlags struct {
	tuning    string
	catalogue string
	ticks     int
	seed      int64
	trace     string
	realtime  bool
	verbose   bool
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "animancer",
		Short: "Scripted RTS director and headless battle simulator",
		Long: `Runs a headless skirmish in which the CPU team follows a phased
instruction catalogue, and inspects the command traces it records.`,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newRunCmd(), newTraceCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a headless match driven by the CPU director",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd.Context(), f)
		},
	}
	cmd.Flags().StringVar(&f.tuning, "tuning", "", "tuning YAML overlaid on the defaults")
	cmd.Flags().StringVar(&f.catalogue, "catalogue", "", "instruction catalogue YAML (default: embedded)")
	cmd.Flags().IntVar(&f.ticks, "ticks", 60*60*5, "simulation steps to run")
	cmd.Flags().Int64Var(&f.seed, "seed", 1, "random seed for director jitter")
	cmd.Flags().StringVar(&f.trace, "trace", "", "write the zstd command trace to this file")
	cmd.Flags().BoolVar(&f.realtime, "realtime", false, "pace steps at the tuned tick rate")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func newTraceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trace <file>",
		Short: "Summarise a recorded command trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(false)
			return summariseTrace(args[0])
		},
	}
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

func runMatch(parent context.Context, f runFlags) error {
	setupLogging(f.verbose)
	color.New(color.FgMagenta, color.Bold).Println(banner)

	t := tuning.Default()
	if f.tuning != "" {
		loaded, err := tuning.Load(f.tuning)
		if err != nil {
			return err
		}
		t = loaded
	}

	var cat *director.Catalogue
	if f.catalogue != "" {
		loaded, err := director.LoadCatalogue(f.catalogue)
		if err != nil {
			return err
		}
		cat = loaded
	}

	opts := agent.Options{Tuning: t, Catalogue: cat, Seed: f.seed}
	if f.trace != "" {
		file, err := os.Create(f.trace)
		if err != nil {
			return fmt.Errorf("create trace: %w", err)
		}
		defer file.Close()
		opts.Trace = file
	}

	m, err := agent.NewMatch(opts)
	if err != nil {
		return err
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("starting match", "match", m.ID, "ticks", f.ticks, "realtime", f.realtime)
	runErr := m.Run(ctx, f.ticks, f.realtime)
	if errors.Is(runErr, context.Canceled) {
		slog.Info("match interrupted", "tick", m.World().Tick())
		runErr = nil
	}
	if err := m.Close(); err != nil {
		slog.Error("failed to flush trace", "path", f.trace, "error", err)
	}
	if runErr != nil {
		return runErr
	}

	printSummary(m)
	if f.trace != "" {
		slog.Info("trace written", "path", f.trace, "commands", m.Commands())
	}
	return nil
}

func printSummary(m *agent.Match) {
	title := color.New(color.FgCyan, color.Bold)
	w := m.World()
	st := m.Director().State()

	title.Printf("\nMatch %s after %d ticks\n", m.ID, w.Tick())
	fmt.Printf("   CPU director: phase %d, %d loops\n\n", st.CurrentPhase, st.Loops)

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Team", "Energy", "Hero", "Workers", "Priests", "Warriors", "Shrines", "Producers", "Sites", "Converted"}),
	)
	for _, team := range []model.Team{model.Human, model.CPU} {
		s := w.Snapshot(team)
		table.Append([]string{
			string(team),
			fmt.Sprintf("%.0f", s.Energy),
			fmt.Sprintf("%d", s.Units[model.Hero]),
			fmt.Sprintf("%d", s.Units[model.Worker]),
			fmt.Sprintf("%d", s.Units[model.Priest]),
			fmt.Sprintf("%d", s.Units[model.Warrior]),
			fmt.Sprintf("%d", s.Structures[model.Shrine]),
			fmt.Sprintf("%d", s.Structures[model.Producer]),
			fmt.Sprintf("%d", s.Sites),
			fmt.Sprintf("%d", s.Converted),
		})
	}
	table.Render()

	events := m.Events()
	if len(events) == 0 {
		return
	}
	title.Println("\nMatch events")
	table = tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Tick", "Team", "Event", "Detail"}),
	)
	for _, ev := range events {
		table.Append([]string{fmt.Sprintf("%d", ev.Tick), string(ev.Team), string(ev.Kind), ev.Detail})
	}
	table.Render()
}

func summariseTrace(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open trace: %w", err)
	}
	defer file.Close()

	counts := make(map[string]int)
	lastTick := 0
	count := func(env command.Envelope) error {
		counts[env.Type]++
		lastTick = env.Tick
		return nil
	}
	r := command.NewReader(file, nil)
	for _, typ := range []string{
		command.TypeSelectRegion,
		command.TypeIssueMoveOrder,
		command.TypePlaceConstructionSite,
		command.TypeRequestProductionIncrease,
	} {
		r.RegisterHandler(typ, count)
	}
	if err := r.ReadLoop(); err != nil {
		return fmt.Errorf("read trace %s: %w", path, err)
	}

	color.New(color.FgCyan, color.Bold).Printf("\nTrace of match %s (seed %d)\n", r.Header.MatchID, r.Header.Seed)
	fmt.Printf("   Teams: %v, last command at tick %d\n\n", r.Header.Teams, lastTick)

	types := make([]string, 0, len(counts))
	for typ := range counts {
		types = append(types, typ)
	}
	sort.Strings(types)

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Command", "Count"}),
	)
	total := 0
	for _, typ := range types {
		table.Append([]string{typ, fmt.Sprintf("%d", counts[typ])})
		total += counts[typ]
	}
	table.Append([]string{"total", fmt.Sprintf("%d", total)})
	table.Render()
	return nil
}
