package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"gopkg.microglot.org/fnc.go/internal/compiler"
	"gopkg.microglot.org/fnc.go/internal/config"
	"gopkg.microglot.org/fnc.go/internal/fs"
	"gopkg.microglot.org/fnc.go/internal/idl"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type opts struct {
	Roots          []string
	Config         string
	Output         string
	Format         string
	Verbose        bool
	MaxConcurrency int
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.LookupEnv))
}

func run(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer, lookupEnv func(string) (string, bool)) int {
	op := &opts{}
	flags := pflag.NewFlagSet("fnc", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringSliceVar(&op.Roots, "root", []string{"."}, "Root search paths for source files.")
	flags.StringVar(&op.Config, "config", "", "YAML config file. Defaults to $"+config.EnvConfig+".")
	flags.StringVar(&op.Output, "output", "-", "Output directory or - for STDOUT.")
	flags.StringVar(&op.Format, "format", config.FormatText, "Token dump format, text or json.")
	flags.BoolVar(&op.Verbose, "verbose", false, "Log each file as it is processed.")
	flags.IntVar(&op.MaxConcurrency, "max-concurrency", 0, "Maximum number of files lexed at once. Zero selects a limit from the CPU count.")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	targets := flags.Args()
	if len(targets) < 1 {
		fmt.Fprintln(stderr, "usage: fnc [flags] targets...")
		flags.PrintDefaults()
		return exitUsage
	}

	cfg, err := loadConfig(flags, op, lookupEnv)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitError
	}

	log := logrus.New()
	log.Out = stderr
	level, _ := cfg.Level()
	log.SetLevel(level)

	mf, err := compiler.NewRootsFS(cfg.Roots)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitError
	}
	dfs, err := compiler.NewDefaultFS(lookupEnv)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitError
	}
	mf = append(mf, dfs)

	c, err := compiler.New(
		compiler.OptionWithLookupEnv(lookupEnv),
		compiler.OptionWithFS(mf),
		compiler.OptionWithLogger(log),
		compiler.OptionWithMaxConcurrency(cfg.MaxConcurrency),
	)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitError
	}

	status := exitOK
	out, err := c.Compile(ctx, &idl.CompileRequest{
		Files: targets,
	})
	if err != nil {
		var me compiler.MultiException
		if !errors.As(err, &me) {
			fmt.Fprintln(stderr, err.Error())
			return exitError
		}
		for _, err := range me {
			fmt.Fprintln(stderr, err.Error())
		}
		status = exitError
	}

	if err := writeDumps(ctx, cfg, out.Image.Files, stdout); err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitError
	}
	log.WithField("files", len(out.Image.Files)).Debug("dumped tokens")
	return status
}

// loadConfig reads the config file and then applies every flag that was set
// explicitly on the command line.
func loadConfig(flags *pflag.FlagSet, op *opts, lookupEnv func(string) (string, bool)) (*config.Config, error) {
	path := op.Config
	if path == "" {
		path = config.Path(lookupEnv)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if flags.Changed("root") {
		cfg.Roots = op.Roots
	}
	if flags.Changed("output") {
		cfg.Output = op.Output
	}
	if flags.Changed("format") {
		cfg.Format = op.Format
	}
	if flags.Changed("max-concurrency") {
		cfg.MaxConcurrency = op.MaxConcurrency
	}
	if op.Verbose {
		cfg.LogLevel = logrus.DebugLevel.String()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeDumps(ctx context.Context, cfg *config.Config, files []*idl.LexedFile, stdout io.Writer) error {
	if cfg.Output == "-" {
		for _, f := range files {
			if cfg.Format == config.FormatText {
				if _, err := fmt.Fprintf(stdout, "# %s\n", f.URI); err != nil {
					return err
				}
			}
			if err := compiler.DumpTokens(stdout, cfg.Format, f); err != nil {
				return err
			}
		}
		return nil
	}
	out, err := fs.NewFileSystemLocal(cfg.Output)
	if err != nil {
		return err
	}
	for _, f := range files {
		content, err := compiler.DumpTokensString(cfg.Format, f)
		if err != nil {
			return err
		}
		if err = out.Write(ctx, compiler.DumpFileName(f.URI, cfg.Format), content); err != nil {
			return err
		}
	}
	return nil
}
