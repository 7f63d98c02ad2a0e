package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/marodr/coiltrace/internal/analysis"
	"github.com/marodr/coiltrace/internal/config"
	"github.com/marodr/coiltrace/internal/experiment"
	"github.com/marodr/coiltrace/internal/export"
	"github.com/marodr/coiltrace/internal/metrics"
	"github.com/marodr/coiltrace/internal/storage"
	"github.com/marodr/coiltrace/internal/tracer"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	seed       int64
	workers    int
	steps      int
	maxTime    float64
	mode       string
	scheme     string
	iterations int
	phiPlane   float64
	svgPath    string
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "coiltrace",
		Short: "stellarator coil field and particle tracing lab",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".coiltrace", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "random seed")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "worker count (0 = all cpus)")

	traceCmd := &cobra.Command{
		Use:   "trace",
		Short: "trace a particle ensemble through the coil field",
		RunE:  runTrace,
	}
	traceCmd.Flags().IntVar(&steps, "steps", 0, "saved steps (0 = config value)")
	traceCmd.Flags().Float64Var(&maxTime, "time", 0, "integration horizon (0 = config value)")
	traceCmd.Flags().StringVar(&mode, "mode", "", "trace mode (guiding_center, full_orbit, field_line)")
	traceCmd.Flags().StringVar(&scheme, "scheme", "", "stepper scheme (euler, rk4, rk45, boris)")

	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "optimize coil shapes and currents against the configured objective",
		RunE:  runOptimize,
	}
	optimizeCmd.Flags().IntVar(&iterations, "iterations", 0, "iteration cap (0 = config value)")

	fieldlinesCmd := &cobra.Command{
		Use:   "fieldlines",
		Short: "follow field lines and print a Poincare section",
		RunE:  runFieldlines,
	}
	fieldlinesCmd.Flags().Float64Var(&phiPlane, "phi", 0, "section plane angle (radians)")
	fieldlinesCmd.Flags().StringVar(&svgPath, "svg", "", "write the section as SVG to this path")

	coilsCmd := &cobra.Command{
		Use:   "coils",
		Short: "summarize the configured coil set",
		RunE:  showCoils,
	}
	coilsCmd.Flags().StringVar(&svgPath, "svg", "", "write a top view as SVG to this path")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	historyCmd := &cobra.Command{
		Use:   "history [run_id]",
		Short: "plot the objective history of an optimization run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotHistory,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(traceCmd, optimizeCmd, fieldlinesCmd, coilsCmd, listCmd, historyCmd, exportCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if steps > 0 {
		cfg.Trace.Steps = steps
	}
	if maxTime > 0 {
		cfg.Trace.MaxTime = maxTime
	}
	if mode != "" {
		cfg.Trace.Mode = mode
	}
	if scheme != "" {
		cfg.Trace.Scheme = scheme
	}
	if iterations > 0 {
		cfg.Optimize.Iterations = iterations
	}
	return cfg, cfg.Validate()
}

func runTrace(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	cs, err := exp.CoilSet()
	if err != nil {
		return err
	}
	m, err := exp.Field(cs)
	if err != nil {
		return err
	}
	p, err := exp.Particles()
	if err != nil {
		return err
	}
	sys, err := exp.System(m, p)
	if err != nil {
		return err
	}
	inits, err := exp.InitialStates(m, p)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("tracing %d particles (%s, %s)...",
		cfg.Particles.Count, cfg.Trace.Mode, cfg.Trace.Scheme)))
	start := time.Now()

	res, err := tracer.Trace(context.Background(), sys, inits, exp.TraceConfig())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.SaveTrace(cfg.Trace.Mode, cfg.Trace.Scheme, cfg.Trace.MaxTime, cfg.Seed, res)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", len(res.Times)-1)
	fmt.Println("\nmetrics:")
	for name, val := range metrics.Summary(sys, res) {
		line := fmt.Sprintf("  %s: %.6g", name, val)
		if name == "lost_fraction" && val > 0 {
			line = warnStyle.Render(line)
		}
		fmt.Println(line)
	}

	// Radial excursion of the first trajectory against time.
	data := make([]float64, len(res.States[0]))
	for k, x := range res.States[0] {
		data[k] = x.Position().CylR()
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("R of particle 0 vs step"),
	))
	return nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("optimizing %d coils (%s, %d iterations max)...",
		cfg.Coils.Count, cfg.Optimize.Rule, cfg.Optimize.Iterations)))
	start := time.Now()

	rep, _, err := exp.Optimize(context.Background(), func(iter int, value, gradNorm float64) {
		fmt.Printf("  iter %3d  value %.6e  |grad| %.3e\n", iter, value, gradNorm)
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.SaveOptimization(cfg.Seed, rep)
	if err != nil {
		return err
	}

	fmt.Printf("\ncompleted in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("status: %s after %d iterations\n", rep.Status, rep.Iterations)
	fmt.Printf("best value: %.6e\n", rep.Value)

	if len(rep.History) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(rep.History,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("objective vs iteration"),
		))
	}
	return nil
}

func runFieldlines(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Trace.Mode = "field_line"
	if !cmd.Flags().Changed("time") && cfg.Trace.MaxTime < 1 {
		// Field lines are parametrized by arclength in meters.
		cfg.Trace.MaxTime = 200
	}
	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("following %d field lines...", cfg.Particles.Count)))
	res, err := exp.Trace(context.Background())
	if err != nil {
		return err
	}

	section := analysis.Poincare(res, phiPlane)
	fmt.Printf("crossings of phi = %.3f: %d\n\n", phiPlane, len(section.Points))
	fmt.Println(analysis.PoincareToASCII(section, 70, 24))

	iota := analysis.RotationalTransform(res.States[0], res.StopStep[0], cfg.Coils.MajorRadius)
	if !math.IsNaN(iota) {
		fmt.Printf("rotational transform (line 0): %.4f\n", iota)
	}

	if svgPath != "" {
		svg := export.PoincareSVG(section, 800, 600, "#00ff00")
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Println(dimStyle.Render("wrote " + svgPath))
	}
	return nil
}

func showCoils(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg)
	if err != nil {
		return err
	}
	cs, err := exp.CoilSet()
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("%d coils (%d independent, nfp=%d)",
		cs.NumCoils(), cs.NumBase(), cs.FieldPeriods())))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COIL\tLENGTH\tMAX CURVATURE\tCURRENT")
	curvatures := cs.Curvatures()
	for i, length := range cs.Lengths() {
		maxK := 0.0
		for _, k := range curvatures[i] {
			maxK = math.Max(maxK, k)
		}
		fmt.Fprintf(w, "%d\t%.4f\t%.4f\t%.3e\n", i, length, maxK, cs.Currents()[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if svgPath != "" {
		svg := export.CoilsSVG(cs, 800, 800, "#00ccff")
		if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Println(dimStyle.Render("wrote " + svgPath))
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTIME\tDETAIL")
	for _, run := range runs {
		detail := ""
		switch run.Kind {
		case "trace":
			detail = fmt.Sprintf("%s/%s, %d particles, lost %.3f",
				run.Mode, run.Scheme, run.Particles, run.LostFraction)
		case "optimize":
			detail = fmt.Sprintf("%s, %d iterations, best %.4e",
				run.Status, run.Iterations, run.BestValue)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			run.ID, run.Kind, run.Timestamp.Format("2006-01-02 15:04:05"), detail)
	}
	return w.Flush()
}

func plotHistory(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	history, err := st.LoadHistory(args[0])
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return fmt.Errorf("no history to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("status: %s\n\n", meta.Status)
	fmt.Println(asciigraph.Plot(history,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("objective vs iteration"),
	))
	fmt.Println(dimStyle.Render(fmt.Sprintf("start %.6e, best %.6e", history[0], meta.BestValue)))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
