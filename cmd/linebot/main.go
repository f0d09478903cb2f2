package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/linebot/internal/cal"
	"github.com/san-kum/linebot/internal/command"
	"github.com/san-kum/linebot/internal/config"
	"github.com/san-kum/linebot/internal/follower"
	"github.com/san-kum/linebot/internal/optim"
	"github.com/san-kum/linebot/internal/storage"
	"github.com/san-kum/linebot/internal/telemetry"
	"github.com/san-kum/linebot/internal/track"
	"github.com/san-kum/linebot/internal/tui"
)

var (
	dataDir    string
	configFile string
	preset     string
	courseName string
	duration   float64
	noise      float64
	seed       int64
	kp         float64
	ki         float64
	kd         float64
	cycleMs    float64
	base       int
	calFile    string
	// Calibration output
	calOut     string
	calSamples int
	// Tune candidate lists
	kpList string
	kiList string
	kdList string
	// Serial link
	serialDev  string
	serialBaud int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "linebot",
		Short: "line follower control lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".linebot", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate a follow run and store the trace",
		RunE:  runFollow,
	}
	addConfigFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "follow with live terminal view",
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	calibrateCmd := &cobra.Command{
		Use:   "calibrate",
		Short: "run a simulated calibration sweep and save bounds",
		RunE:  runCalibrate,
	}
	addConfigFlags(calibrateCmd)
	calibrateCmd.Flags().StringVar(&calOut, "out", "linebot-cal.json", "bounds output file")
	calibrateCmd.Flags().IntVar(&calSamples, "samples", 200, "sweep sample count")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search pid gains on the simulated course",
		RunE:  runTune,
	}
	addConfigFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&kpList, "kp-grid", "1,2,3.5,5", "kp candidates")
	tuneCmd.Flags().StringVar(&kiList, "ki-grid", "0,0.2,0.5", "ki candidates")
	tuneCmd.Flags().StringVar(&kdList, "kd-grid", "0.4,0.8,1.2,1.6", "kd candidates")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Printf("%-10s kp=%.1f ki=%.1f kd=%.1f base=%d course=%s\n",
					name, p.Gains.Kp, p.Gains.Ki, p.Gains.Kd, p.Drive.Base, p.Course)
			}
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run the follower behind a serial command link",
		RunE:  runServe,
	}
	addConfigFlags(serveCmd)
	serveCmd.Flags().StringVar(&serialDev, "dev", "/dev/ttyUSB0", "serial device")
	serveCmd.Flags().IntVar(&serialBaud, "baud", 115200, "baud rate")

	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "interactive client for the serial command link",
		RunE:  runMonitor,
	}
	monitorCmd.Flags().StringVar(&serialDev, "dev", "/dev/ttyUSB0", "serial device")
	monitorCmd.Flags().IntVar(&serialBaud, "baud", 115200, "baud rate")

	rootCmd.AddCommand(runCmd, liveCmd, calibrateCmd, tuneCmd, listCmd, plotCmd, exportCmd, presetsCmd, serveCmd, monitorCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&courseName, "course", "scurve", "course preset")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration (s)")
	cmd.Flags().Float64Var(&noise, "noise", config.DefaultNoise, "sensor noise (raw counts)")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "pid kp")
	cmd.Flags().Float64Var(&ki, "ki", config.DefaultKi, "pid ki")
	cmd.Flags().Float64Var(&kd, "kd", config.DefaultKd, "pid kd")
	cmd.Flags().Float64Var(&cycleMs, "cycle", config.DefaultCycleMs, "controller cycle period (ms)")
	cmd.Flags().IntVar(&base, "base", config.DefaultBase, "base drive power")
	cmd.Flags().StringVar(&calFile, "cal", "", "calibration bounds file")
}

// buildConfig layers preset, config file and flags, flags winning.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("course") || (preset == "" && configFile == "") {
		cfg.Course = courseName
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("noise") {
		cfg.Noise = noise
	}
	if cmd.Flags().Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("kp") {
		cfg.Gains.Kp = kp
	}
	if cmd.Flags().Changed("ki") {
		cfg.Gains.Ki = ki
	}
	if cmd.Flags().Changed("kd") {
		cfg.Gains.Kd = kd
	}
	if cmd.Flags().Changed("cycle") {
		cfg.Gains.CycleMs = cycleMs
	}
	if cmd.Flags().Changed("base") {
		cfg.Drive.Base = base
	}
	if cmd.Flags().Changed("cal") {
		cfg.CalFile = calFile
	}

	return cfg, nil
}

// buildRig assembles the simulator and follower from a config.
func buildRig(cfg *config.Config) (*track.Simulator, *follower.Follower, error) {
	course, err := track.ByName(cfg.Course)
	if err != nil {
		return nil, nil, err
	}

	geom := cfg.Geometry()
	sim := track.NewSimulator(geom, course, cfg.Seed)
	sim.Noise = cfg.Noise

	bounds := track.IdealBounds(geom.Channels)
	if cfg.CalFile != "" {
		loaded, err := cal.Load(cfg.CalFile)
		if err != nil {
			return nil, nil, err
		}
		bounds = loaded
	}

	fol := follower.New(sim, sim, geom, bounds, cfg.FollowerParams())
	return sim, fol, nil
}

func runFollow(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	_, fol, err := buildRig(cfg)
	if err != nil {
		return err
	}

	geom := cfg.Geometry()
	fol.AddMetric(telemetry.NewControlEffort())
	fol.AddMetric(telemetry.NewTrackingRMS())
	fol.AddMetric(telemetry.NewLineLoss(geom.Saturation()))

	fmt.Printf("following %s course...\n", cfg.Course)
	start := time.Now()

	result, err := fol.Run(context.Background(), follower.RunConfig{
		Duration: time.Duration(cfg.Duration * float64(time.Second)),
		Poll:     2 * time.Millisecond,
	})
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Course:   cfg.Course,
		Seed:     cfg.Seed,
		Kp:       cfg.Gains.Kp,
		Ki:       cfg.Gains.Ki,
		Kd:       cfg.Gains.Kd,
		CycleMs:  cfg.Gains.CycleMs,
		Base:     cfg.Drive.Base,
		Duration: cfg.Duration,
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d\n", len(result.Times))
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	sim, fol, err := buildRig(cfg)
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(sim, fol))
	_, err = p.Run()
	return err
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	sim, _, err := buildRig(cfg)
	if err != nil {
		return err
	}

	bounds := sim.SweepCalibration(calSamples)
	if err := cal.Save(calOut, bounds); err != nil {
		return err
	}

	fmt.Printf("calibration saved to %s\n", calOut)
	for i, c := range bounds {
		fmt.Printf("  ch%d: black=%d white=%d\n", i, c.Black, c.White)
	}
	if bad := bounds.Degenerate(); len(bad) > 0 {
		fmt.Printf("warning: channels %v saw no contrast\n", bad)
	}
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	kps, err := parseGrid(kpList)
	if err != nil {
		return fmt.Errorf("kp-grid: %w", err)
	}
	kis, err := parseGrid(kiList)
	if err != nil {
		return fmt.Errorf("ki-grid: %w", err)
	}
	kds, err := parseGrid(kdList)
	if err != nil {
		return fmt.Errorf("kd-grid: %w", err)
	}

	fmt.Printf("searching %d gain combinations on %s...\n", len(kps)*len(kis)*len(kds), cfg.Course)
	start := time.Now()

	best, score, err := optim.TuneGains(context.Background(), cfg, kps, kis, kds)
	if err != nil {
		return err
	}
	if best == nil {
		return fmt.Errorf("no gain combination completed a run")
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("best: kp=%g ki=%g kd=%g (score %.4f)\n", best["kp"], best["ki"], best["kd"], score)
	return nil
}

func parseGrid(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	vals := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q", p)
		}
		vals = append(vals, v)
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("empty grid")
	}
	return vals, nil
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
	fmt.Fprintln(w, "ID\tCOURSE\tTIME\tDURATION\tKP\tKI\tKD\tBASE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1fs\t%.2f\t%.2f\t%.2f\t%d\n",
			run.ID,
			run.Course,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Kp,
			run.Ki,
			run.Kd,
			run.Base,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}

	if len(trace.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("course: %s\n", meta.Course)
	fmt.Printf("samples: %d\n\n", len(trace.Times))

	graph := asciigraph.Plot(trace.Positions,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("lateral offset (mm)"),
	)
	fmt.Println(graph)
	fmt.Println()

	graph = asciigraph.Plot(trace.Outputs,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("steering correction"),
	)
	fmt.Println(graph)

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return st.ExportJSON(args[0], os.Stdout)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	sim, fol, err := buildRig(cfg)
	if err != nil {
		return err
	}

	dev, err := command.OpenSerial(serialDev, serialBaud)
	if err != nil {
		return err
	}
	defer dev.Close()

	interp := command.NewInterpreter(fol, sim, cfg.Array.Channels)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("serving on %s\n", serialDev)

	err = interp.Serve(ctx, dev, func() {
		fol.Tick(time.Now())
		sim.Advance(command.IdlePeriod)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runMonitor(cmd *cobra.Command, args []string) error {
	dev, err := command.OpenSerial(serialDev, serialBaud)
	if err != nil {
		return err
	}
	defer dev.Close()

	fmt.Println("connected; type commands (start, stop, status, set kp 3.5, cal begin/end)")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		if err := dev.WriteLine(line); err != nil {
			return err
		}
		reply, err := dev.ReadLine()
		if err != nil {
			return fmt.Errorf("link lost: %w", err)
		}
		fmt.Println(reply)
	}
	return scanner.Err()
}
