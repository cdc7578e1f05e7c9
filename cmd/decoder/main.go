package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/jeongseonghan/nr-downlink/internal/config"
	"github.com/jeongseonghan/nr-downlink/internal/grid"
	"github.com/jeongseonghan/nr-downlink/internal/protocol"
	"github.com/jeongseonghan/nr-downlink/internal/render"
)

func usage() {
	name := os.Args[0]
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <matrix.csv[.zst]> [user_ident]\n\n", name)
	pflag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "    To decode for user 3:    %s data/tfMatrix.csv 3\n", name)
	fmt.Fprintf(os.Stderr, "    To decode for all users: %s data/tfMatrix.csv\n", name)
	fmt.Fprintf(os.Stderr, "    To run the self-test:    %s -t\n", name)
	fmt.Fprintf(os.Stderr, "    To write a test frame:   %s --synth tfMatrix.csv\n", name)
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		verbose    = pflag.BoolP("verbose", "v", false, "Debug logging and power profile")
		selfTest   = pflag.BoolP("test", "t", false, "Run the self-test and exit")
		configFile = pflag.StringP("config", "c", config.DefaultPath, "Configuration file")
		workers    = pflag.IntP("workers", "w", 0, "Users decoded concurrently (default from config)")
		jsonOut    = pflag.BoolP("json", "j", false, "Print the report as JSON")
		synth      = pflag.String("synth", "", "Write a synthetic frame to this path and exit")
	)
	pflag.Usage = usage
	pflag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *verbose {
		cfg.Logging.Level = "DEBUG"
	}
	if *workers > 0 {
		cfg.Decoder.Workers = *workers
	}
	closer, err := config.SetupLogging(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		return 1
	}
	defer closer.Close()

	if *synth != "" {
		g, err := protocol.BuildFrame(demoSpec())
		if err == nil {
			err = grid.WriteCSV(*synth, g)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Write synthetic frame: %v\n", err)
			return 1
		}
		fmt.Printf("Synthetic frame written to %s\n", *synth)
		return 0
	}

	if *selfTest {
		if failed := runSelfTest(cfg.Decoder.Workers); failed > 0 {
			return 1
		}
		return 0
	}

	args := pflag.Args()
	if len(args) < 1 || len(args) > 2 {
		usage()
		return 1
	}

	fn := args[0]
	g, err := grid.LoadCSV(fn)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "File %q not found !\n", fn)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}

	if *verbose {
		printPowerProfile(g)
	}

	s, err := protocol.NewSession(g, protocol.WithWorkers(cfg.Decoder.Workers))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	h := s.Header()
	log.Printf("[INFO] cell %d, %d users", h.CellIdent, h.UserCount)

	var results []protocol.UserResult
	if len(args) == 2 {
		ident, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid user ident %q\n", args[1])
			return 1
		}
		r, _ := s.DecodeUser(ident)
		results = []protocol.UserResult{r}
	} else {
		results, err = s.DecodeAll(context.Background())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	rep := render.NewFrameReport(h, results)
	if *jsonOut {
		if err := writeJSONReport(os.Stdout, rep); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			return 1
		}
	} else {
		printReport(rep)
	}

	if len(args) == 2 && !results[0].OK() {
		return 1
	}
	return 0
}

func writeJSONReport(w io.Writer, rep render.FrameReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// userLabel names a report line by identity, or by slot when the
// descriptor could not be read.
func userLabel(u render.UserReport) string {
	if u.UserIdent < 0 {
		return fmt.Sprintf("slot %3d", u.Slot)
	}
	return fmt.Sprintf("user %3d", u.UserIdent)
}

func printReport(rep render.FrameReport) {
	fmt.Println(color.New(color.Bold, color.FgCyan).Sprintf("=== cell %d | %d users ===", rep.CellIdent, rep.UserCount))
	okLabel := color.New(color.FgGreen).Sprint("OK  ")
	failLabel := color.New(color.FgRed).Sprint("FAIL")
	for _, u := range rep.Users {
		if !u.OK {
			fmt.Printf("%s %s  [%s] %s\n", failLabel, userLabel(u), u.State, u.Error)
			continue
		}
		fmt.Printf("%s %s  %s, %d RB, CRC%d: %q\n", okLabel, userLabel(u), u.MCS, u.RBSize, u.CRCWidth, u.Text)
	}
}

func printPowerProfile(g *grid.Grid) {
	fmt.Println(color.New(color.Bold).Sprint("Power per OFDM symbol:"))
	for _, p := range g.PowerProfile() {
		fmt.Printf("  symbol %2d  mean %8.4f  std %8.4f  max %8.4f\n", p.Symbol, p.Mean, p.StdDev, p.Max)
	}
}
