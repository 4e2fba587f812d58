package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"stepctl/config"
	"stepctl/core"
	"stepctl/host/sim"
)

var (
	configPath = flag.String("config", "", "Board config JSON (default: built-in single axis)")
	axisName   = flag.String("axis", "x", "Axis to simulate")
	minSPS     = flag.Uint("min", core.DefaultMinSPS, "Minimum step rate (without -config)")
	maxSPS     = flag.Uint("max", core.DefaultMaxSPS, "Maximum step rate (without -config)")
	periodUS   = flag.Uint("period", core.DefaultControllerPeriodUS, "Controller period in microseconds (without -config)")
	limit      = flag.Duration("limit", 60*time.Second, "Simulated time limit per move")
	trace      = flag.Int("trace", 0, "Print the profile every N controller ticks (0 = off)")
	events     = flag.Bool("events", false, "Dump the motion event ring after each move")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] target [target...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := axisConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	bench, err := sim.NewBench(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	lim := bench.Axis().Limits()
	fmt.Printf("axis %s: %d..%d sps, +%d per %d controller ticks of %dus\n",
		cfg.Name, lim.MinSPS, lim.MaxSPS, lim.AccelerationSPS, lim.ControllerDivide, cfg.ControllerPeriodUS)

	if *trace > 0 {
		n := 0
		bench.Trace = func(s sim.Sample) {
			if n%*trace == 0 {
				fmt.Printf("  %10v  pos=%-8d sps=%-7d %s\n",
					s.Time, s.Snapshot.Position, s.Snapshot.SPS, s.Snapshot.Status)
			}
			n++
		}
	}
	if *events {
		core.SetDebugWriter(func(s string) { fmt.Println(s) })
	}

	for _, arg := range flag.Args() {
		target, err := strconv.ParseInt(arg, 10, 32)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: bad target %q: %v\n", arg, err)
			os.Exit(1)
		}

		fmt.Printf("move %d -> %d\n", bench.Axis().Position(), target)
		bench.MoveTo(int32(target))
		res, err := bench.Run(*limit)
		printResult(res)
		if *events {
			core.DumpEventRing()
			core.ClearEventRing()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

func axisConfig() (core.AxisConfig, error) {
	if *configPath == "" {
		cfg := core.DefaultAxisConfig(*axisName)
		cfg.MinSPS = uint32(*minSPS)
		cfg.MaxSPS = uint32(*maxSPS)
		cfg.ControllerPeriodUS = uint32(*periodUS)
		return cfg, nil
	}

	data, err := os.ReadFile(*configPath)
	if err != nil {
		return core.AxisConfig{}, err
	}
	board, err := config.LoadConfig(data)
	if err != nil {
		return core.AxisConfig{}, err
	}
	entry, ok := board.Axis(*axisName)
	if !ok {
		return core.AxisConfig{}, fmt.Errorf("axis %q not in %s", *axisName, *configPath)
	}
	return entry.CoreConfig(board), nil
}

func printResult(res sim.Result) {
	fmt.Printf("  position=%d target=%d sps=%d peak=%d pulses=%d stops=%d elapsed=%v\n",
		res.Position, res.Target, res.SPS, res.PeakSPS, res.Pulses, res.Stops, res.Elapsed)
	for _, an := range res.Anomalies {
		fmt.Printf("  %s at %d (target %d, %d sps)\n", an.Kind, an.Position, an.Target, an.SPS)
	}
	if res.Telemetry != "" {
		fmt.Printf("  telemetry: %q\n", res.Telemetry)
	}
}
