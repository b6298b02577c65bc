package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/reoring/graphmap/i18n"
	"github.com/reoring/graphmap/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	var err error
	switch sub := os.Args[1]; sub {
	case "classify":
		err = a.classifyCmd(os.Args[2:])
	case "webhook":
		err = a.webhookCmd(os.Args[2:])
	case "fmt":
		err = a.fmtCmd(os.Args[2:])
	case "schema":
		err = a.schemaCmd(os.Args[2:])
	case "help", "-h", "--help":
		usage(os.Stdout)
		return
	default:
		usage(os.Stderr)
		os.Exit(2)
	}
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fatalf("%s: %v", os.Args[1], err)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "graphmap CLI\n\nUsage:\n  graphmap classify [-status N] [-format json|yaml] [file]\n  graphmap webhook [-format json|yaml] [-dump] [file]\n  graphmap fmt [-format json|yaml] [file]\n  graphmap schema [-format json|yaml] [KEY]\n\nEvery subcommand also accepts -config path.yaml and -env path.\nInput is read from stdin when file is omitted or \"-\".")
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "graphmap: "+format+"\n", a...)
	os.Exit(1)
}

// app holds the process streams so subcommands can run under test.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

type commonFlags struct {
	configPath string
	envPath    string
	format     string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "YAML config file")
	fs.StringVar(&c.envPath, "env", "", "dotenv file (default .env)")
	fs.StringVar(&c.format, "format", "json", "output format: json or yaml")
}

func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// setup loads configuration and builds the logger shared by a subcommand.
func (a *app) setup(c *commonFlags) (config.Config, *slog.Logger, error) {
	if c.format != "json" && c.format != "yaml" {
		return config.Config{}, nil, fmt.Errorf("unknown format %q", c.format)
	}
	cfg, err := config.Load(c.configPath, c.envPath)
	if err != nil {
		return cfg, nil, err
	}
	i18n.SetLanguage(cfg.Lang)
	logger := slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	return cfg, logger, nil
}

func (a *app) readInput(name string) ([]byte, error) {
	if name == "" || name == "-" {
		return io.ReadAll(a.stdin)
	}
	return os.ReadFile(name)
}
