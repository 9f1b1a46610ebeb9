// Command xrd-pattern computes a simulated powder XRD pattern from a job
// file of pre-computed reflections and atom sites, and writes it as CSV.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/banshee-data/xrd.report/internal/config"
	"github.com/banshee-data/xrd.report/internal/fsutil"
	"github.com/banshee-data/xrd.report/internal/monitoring"
	"github.com/banshee-data/xrd.report/internal/pattern"
	"github.com/banshee-data/xrd.report/internal/radiation"
	"github.com/banshee-data/xrd.report/internal/version"
)

func main() {
	if err := run(os.Args[1:], fsutil.OSFileSystem{}, os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("xrd-pattern: %v", err)
	}
}

func run(args []string, fsys fsutil.FileSystem, stdout io.Writer) error {
	fs := flag.NewFlagSet("xrd-pattern", flag.ContinueOnError)
	jobPath := fs.String("job", "", "Job JSON file with reflections and sites (required)")
	configPath := fs.String("config", "", "Calculation config JSON (defaults apply when omitted)")
	wavelength := fs.String("wavelength", "", "X-ray source ("+radiation.GetValidNamesString()+") or wavelength in Å")
	minTT := fs.Float64("min", 0, "Minimum two-theta, degrees")
	maxTT := fs.Float64("max", 90, "Maximum two-theta, degrees")
	tolerance := fs.Float64("tolerance", 1e-5, "Two-theta merge tolerance, degrees")
	scaled := fs.Bool("scaled", true, "Scale intensities so the strongest peak is 100")
	workers := fs.Int("workers", 0, "Intensity worker goroutines (0 = GOMAXPROCS)")
	output := fs.String("output", "xrd_pattern.csv", "Output CSV filename (- for stdout)")
	families := fs.Bool("families", false, "Print the HKL family grouping of the job instead of the pattern")
	quiet := fs.Bool("quiet", false, "Suppress diagnostic logging")
	showVersion := fs.Bool("version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.String())
		return nil
	}
	if *quiet {
		monitoring.SetLogger(nil)
	}
	if *jobPath == "" {
		return errors.New("-job is required")
	}

	cfg := config.EmptyCalcConfig()
	if *configPath != "" {
		loaded, err := config.LoadCalcConfig(fsys, *configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// Explicit flags override the config file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "wavelength":
			cfg.Wavelength = wavelength
		case "min":
			cfg.TwoThetaMin = minTT
		case "max":
			cfg.TwoThetaMax = maxTT
		case "tolerance":
			cfg.MergeTolerance = tolerance
		case "scaled":
			cfg.Scaled = scaled
		case "workers":
			cfg.Workers = workers
		}
	})
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	job, err := pattern.LoadJob(fsys, *jobPath)
	if err != nil {
		return err
	}

	var write func(io.Writer) error
	var summary string
	if *families {
		fams := pattern.Families(job)
		monitoring.Logf("job %s: %d reflections in %d families", job.Name, len(job.Reflections), len(fams))
		write = func(w io.Writer) error { return pattern.WriteFamiliesCSV(w, fams) }
		summary = fmt.Sprintf("%d families", len(fams))
	} else {
		calc := pattern.NewCalculator(cfg)
		monitoring.Logf("wavelength %s Å, two-theta [%g, %g], workers %d",
			strconv.FormatFloat(calc.Wavelength, 'f', -1, 64), calc.Options.TwoThetaMin, calc.Options.TwoThetaMax, calc.Engine.Workers)
		p, err := calc.Pattern(job)
		if err != nil {
			return err
		}
		write = func(w io.Writer) error { return pattern.WriteCSV(w, p) }
		summary = fmt.Sprintf("pattern %s: %d peaks", p.RunID, p.Len())
	}

	if *output == "-" {
		return write(stdout)
	}
	return writeFile(fsys, *output, write, summary)
}

// writeFile creates path only once there is something to write, and reports
// the close error since it may carry the final flush.
func writeFile(fsys fsutil.FileSystem, path string, write func(io.Writer) error, summary string) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("could not create output file %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not close output file %s: %w", path, err)
	}
	monitoring.Logf("%s written to %s", summary, path)
	return nil
}
