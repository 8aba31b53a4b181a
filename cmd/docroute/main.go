package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docroute/docroute/internal/actions"
	"github.com/docroute/docroute/internal/agents"
	"github.com/docroute/docroute/internal/classifier"
	"github.com/docroute/docroute/internal/pdftext"
	"github.com/docroute/docroute/internal/pipeline"
	"github.com/docroute/docroute/internal/records"
	"github.com/docroute/docroute/pkg/kv"
)

var (
	flagType    string
	flagSource  string
	flagRules   string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "docroute",
	Short: "Classify and route documents from the command line",
	Long: `docroute runs the document processing pipeline against a file or
standard input: classification, format-agent extraction, and action routing
backed by an in-memory record store.`,
	SilenceUsage: true,
}

var processCmd = &cobra.Command{
	Use:   "process [file]",
	Short: "Run a document through the full pipeline",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProcess,
}

var classifyCmd = &cobra.Command{
	Use:   "classify [file]",
	Short: "Classify a document without running agents or actions",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClassify,
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&flagType, "type", "t", "", "format hint (email, json, pdf); bypasses auto-detection")
	rootCmd.PersistentFlags().StringVar(&flagRules, "rules", "", "path to a YAML rulebook overlay")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	processCmd.Flags().StringVar(&flagSource, "source", "", "source label stored on the processing record")

	rootCmd.AddCommand(processCmd, classifyCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runProcess(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	content, hint, source, err := readInput(args, logger)
	if err != nil {
		return err
	}
	if flagType != "" {
		hint = flagType
	}
	if flagSource != "" {
		source = flagSource
	}

	rules, err := loadRules()
	if err != nil {
		return err
	}

	store, err := kv.NewBadgerStore(&kv.Config{InMemory: true})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	recs := records.New(store, logger)
	services := actions.NewServices("https://api.crm.example.com", "https://api.risk.example.com", logger)
	router := actions.NewRouter(services, recs, logger)

	pipe := pipeline.New(classifier.New(rules), agents.Defaults(), recs, router, logger, 1)

	env, err := pipe.Process(context.Background(), pipeline.Input{
		Content:    content,
		FormatHint: hint,
		Source:     source,
	})
	if err != nil {
		return err
	}

	if err := printJSON(env); err != nil {
		return err
	}

	rec, err := recs.Get(context.Background(), env.EntryID)
	if err != nil {
		return fmt.Errorf("read record: %w", err)
	}
	for _, line := range rec.DecisionTrace {
		fmt.Fprintln(os.Stderr, line)
	}
	return nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	content, hint, _, err := readInput(args, logger)
	if err != nil {
		return err
	}
	if flagType != "" {
		hint = flagType
	}

	rules, err := loadRules()
	if err != nil {
		return err
	}
	cls := classifier.New(rules)

	var result classifier.Result
	if format, ok := classifier.ParseFormat(hint); ok {
		result = cls.ClassifyForced(content, format)
	} else {
		result = cls.Classify(content)
	}

	return printJSON(result)
}

// readInput returns the document text plus any hint and source implied by
// the input itself. PDF files are converted to text before processing.
func readInput(args []string, logger *slog.Logger) (content, hint, source string, err error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), "", "stdin", nil
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", "", fmt.Errorf("read %s: %w", path, err)
	}

	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		doc, err := pdftext.New(logger).Extract(data)
		if err != nil {
			return "", "", "", fmt.Errorf("extract pdf text: %w", err)
		}
		return doc.Text, "pdf", path, nil
	}

	return string(data), "", path, nil
}

func loadRules() (*classifier.Rulebook, error) {
	rules := classifier.DefaultRulebook()
	if flagRules != "" {
		if err := rules.LoadOverlay(flagRules); err != nil {
			return nil, err
		}
	}
	return rules, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
