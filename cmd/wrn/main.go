// Package main provides the wrn CLI: inspect and initialize wide residual
// networks.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/born-ml/wrn/backend/cpu"
	"github.com/born-ml/wrn/internal/parallel"
	"github.com/born-ml/wrn/wrn"
)

const version = "v0.1.0"

const usage = `Usage: wrn <command> [flags]

Commands:
  summary    Print the layer table of the configured network
  dot        Write the network graph in Graphviz DOT format
  init       Write freshly initialized weights as safetensors
  version    Show version

Flags (summary, dot, init):
`

func main() {
	log.SetFlags(0)
	log.SetPrefix("wrn: ")

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		newFlagSet("wrn").PrintDefaults()
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "version":
		fmt.Printf("wrn %s (%s, %d workers)\n", version, parallel.CPUName(), parallel.DefaultConfig().NumWorkers)
	case "summary", "dot", "init":
		if err := run(cmd, args, os.Stdout); err != nil {
			log.Fatal(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
}

type cliFlags struct {
	*flag.FlagSet
	config  *string
	n       *int
	k       *int
	classes *int
	dropout *float64
	seed    *uint64
	out     *string
}

func newFlagSet(name string) *cliFlags {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return &cliFlags{
		FlagSet: fs,
		config:  fs.String("config", "", "YAML options file (defaults to WRN-16-8 on 32x32x3 in the file's data_format)"),
		n:       fs.Int("n", 0, "residual units per stage (overrides config)"),
		k:       fs.Int("k", 0, "widening factor (overrides config)"),
		classes: fs.Int("classes", 0, "number of classes (overrides config)"),
		dropout: fs.Float64("dropout", -1, "dropout rate (overrides config)"),
		seed:    fs.Uint64("seed", 0, "initialization seed (overrides config)"),
		out:     fs.String("out", "", "output file (dot: stdout if empty; init: required)"),
	}
}

// options resolves the config file and explicit flag overrides.
func (f *cliFlags) options() (wrn.Options, error) {
	opts := wrn.DefaultOptions()
	if *f.config != "" {
		var err error
		if opts, err = wrn.LoadOptions(*f.config); err != nil {
			return wrn.Options{}, err
		}
	}
	f.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "n":
			opts.N = *f.n
		case "k":
			opts.K = *f.k
		case "classes":
			opts.Classes = *f.classes
		case "dropout":
			opts.Dropout = float32(*f.dropout)
		case "seed":
			opts.Seed = *f.seed
		}
	})
	return opts, nil
}

func run(cmd string, args []string, stdout io.Writer) error {
	f := newFlagSet(cmd)
	if err := f.Parse(args); err != nil {
		return err
	}
	opts, err := f.options()
	if err != nil {
		return err
	}
	opts.Verbose = cmd == "summary"
	opts.Output = stdout

	model, err := wrn.Build(opts, cpu.New())
	if err != nil {
		return err
	}

	switch cmd {
	case "summary":
		return model.Summary(stdout)
	case "dot":
		if *f.out == "" {
			_, err := io.WriteString(stdout, model.DOT())
			return err
		}
		return os.WriteFile(*f.out, []byte(model.DOT()), 0o600)
	case "init":
		if *f.out == "" {
			return fmt.Errorf("init: -out is required")
		}
		if err := model.Save(*f.out); err != nil {
			return err
		}
		trainable, nonTrainable := model.CountParams()
		log.Printf("wrote %s: %d trainable, %d non-trainable params", *f.out, trainable, nonTrainable)
	}
	return nil
}
