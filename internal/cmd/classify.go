package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/termwatch/internal/capture"
	"github.com/Iron-Ham/termwatch/internal/config"
	"github.com/Iron-Ham/termwatch/internal/errors"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [file|-]",
	Short: "Send terminal output to the classifier once and print the verdict",
	Long: `Read terminal output from a file (or stdin when the argument is "-" or
missing), keep the configured number of trailing lines, and ask the
configured classifier whether it needs attention. Prints NOTIFY or QUIET.

Useful for checking the provider settings before starting watch.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClassify,
}

var (
	classifyLabel   string
	classifyVerbose bool
)

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVarP(&classifyLabel, "label", "l", "manual", "session label used in the prompt")
	classifyCmd.Flags().BoolVarP(&classifyVerbose, "verbose", "v", false, "also print the raw reply and timing")
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap(false)
	if err != nil {
		return err
	}
	defer logger.Close()

	content, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	excerpt := tailLines(content, cfg.Monitor.ExcerptLines)

	out := cmd.OutOrStdout()
	client := newClassifier(cfg, logger)
	v, err := client.Evaluate(cmd.Context(), excerpt, classifyLabel, cfg.Classifier.Settings())
	if err != nil {
		return describeClassifierError(err)
	}

	verdict := "QUIET"
	if v.Notify {
		verdict = "NOTIFY"
	}
	fmt.Fprintln(out, verdict)
	if classifyVerbose {
		fmt.Fprintf(out, "provider: %s\nmodel: %s\nelapsed: %s\nreply: %s\n", v.Provider, v.Model, v.Elapsed, strings.TrimSpace(v.Reply))
		if len(v.Sensitive) > 0 {
			fmt.Fprintf(out, "sensitive patterns: %s\n", strings.Join(v.Sensitive, ", "))
		}
	}
	return nil
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return "", errors.Wrap(err, "open input")
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "read input")
	}
	return string(data), nil
}

// tailLines runs content through a capture buffer so the excerpt matches
// what the monitor would send.
func tailLines(content string, n int) string {
	store := capture.NewStore(n)
	store.Append("input", strings.TrimRight(content, "\n"))
	return store.Read("input", n)
}

// describeClassifierError adds a hint for the failure kinds a user can fix.
func describeClassifierError(err error) error {
	if errors.Is(err, errors.ErrNotConfigured) {
		return fmt.Errorf("%w (set classifier.api_endpoint and classifier.api_key in %s)", err, config.ConfigFile())
	}
	kind, ok := errors.KindOf(err)
	if !ok {
		return err
	}
	switch kind {
	case errors.KindAuth:
		return fmt.Errorf("%w (check classifier.api_key)", err)
	case errors.KindConfig:
		return fmt.Errorf("%w (check classifier.api_provider)", err)
	}
	return err
}
