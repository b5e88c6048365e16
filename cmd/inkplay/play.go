package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bladecoder/ink-go/ink"
	"github.com/bladecoder/ink-go/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func newPlayCmd() *cobra.Command {
	var seed int64
	var metricsAddr string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "play <story.json>",
		Short: "Run a compiled ink story interactively on stdin/stdout.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.OutOrStdout(), cmd.InOrStdin(), args[0], seed, metricsAddr, verbose)
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks the story's default)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, expose Prometheus metrics on this address (e.g. :9091)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log step-level tracing to stderr")
	return cmd
}

func runPlay(out io.Writer, in io.Reader, path string, seed int64, metricsAddr string, verbose bool) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading story: %w", err)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	st, err := ink.New(string(raw), ink.Options{RandomSeed: seed, Logger: logger})
	if err != nil {
		return fmt.Errorf("loading story: %w", err)
	}

	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		st.SetMetricsRecorder(metrics.New(reg))
		serveMetrics(metricsAddr, reg)
	}

	st.SetErrorHandler(func(message string, isWarning bool) {
		kind := "ERROR"
		if isWarning {
			kind = "WARNING"
		}
		fmt.Fprintf(out, "%s: %s\n", kind, message)
	})

	scanner := bufio.NewScanner(in)
	for {
		text, err := st.ContinueMaximally()
		if err != nil {
			return fmt.Errorf("continuing story: %w", err)
		}
		io.WriteString(out, text)

		choices := st.CurrentChoices()
		if len(choices) == 0 {
			if st.HasEnded() {
				return nil
			}
			continue
		}

		for _, c := range choices {
			fmt.Fprintf(out, "%d: %s\n", c.Index+1, strings.TrimSpace(c.Text))
		}
		fmt.Fprint(out, "? ")

		if !scanner.Scan() {
			return nil
		}
		choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil || choice < 1 || choice > len(choices) {
			fmt.Fprintln(out, "not a valid choice")
			continue
		}
		if err := st.ChooseChoiceIndex(choice - 1); err != nil {
			fmt.Fprintf(out, "couldn't choose that option: %v\n", err)
		}
	}
}
