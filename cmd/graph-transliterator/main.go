package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/spicery/graph-transliterator/pkg/settings"
	"github.com/spicery/graph-transliterator/pkg/transliterator"
)

const (
	version = "0.1.0"
	usage   = `graph-transliterator - A rule based transliterator

Usage:
  graph-transliterator --rules <file> [options]

Options:
  -h, --help            Show this help message
  -v, --version         Show version information
  --rules <file>        YAML settings file with tokens and rules (required)
  --input <file>        Input file (defaults to stdin)
  --output <file>       Output file (defaults to stdout)
  --ignore-errors       Pass untokenizable or unmatched input through unchanged
  --check-ambiguity     Reject settings with rules that cannot be told apart
  --tokens              Output the framed tokens as JSON strings, one per line, instead of transliterating
  --dump                Output the settings in explicit form and exit
  --coverage            Report rules that were never used on stderr
  --verbose             Log debug information to stderr
  --exit0               Exit with code 0 even on transliteration errors (suppress stderr)

Examples:
  graph-transliterator --rules latin.yaml                      # Read from stdin, write to stdout
  graph-transliterator --rules latin.yaml --input text.txt     # Read from file, write to stdout
  graph-transliterator --rules latin.yaml --tokens             # Show how the input is tokenized
  graph-transliterator --rules latin.yaml --dump               # Normalize a settings file
  echo "kitab" | graph-transliterator --rules latin.yaml       # Read from stdin, write to stdout
`
)

func main() {
	var showHelp, showVersion, exit0, ignoreErrors, checkAmbiguity, showTokens, dump, coverage, verbose bool
	var inputFile, outputFile, rulesFile string

	flag.BoolVar(&showHelp, "h", false, "Show help")
	flag.BoolVar(&showHelp, "help", false, "Show help")
	flag.BoolVar(&showVersion, "v", false, "Show version")
	flag.BoolVar(&showVersion, "version", false, "Show version")
	flag.BoolVar(&exit0, "exit0", false, "Exit with code 0 even on errors")
	flag.BoolVar(&ignoreErrors, "ignore-errors", false, "Pass unmatched input through")
	flag.BoolVar(&checkAmbiguity, "check-ambiguity", false, "Reject ambiguous rules")
	flag.BoolVar(&showTokens, "tokens", false, "Output tokens as JSON")
	flag.BoolVar(&dump, "dump", false, "Output settings in explicit form")
	flag.BoolVar(&coverage, "coverage", false, "Report unused rules")
	flag.BoolVar(&verbose, "verbose", false, "Log debug information")
	flag.StringVar(&inputFile, "input", "", "Input file (defaults to stdin)")
	flag.StringVar(&outputFile, "output", "", "Output file (defaults to stdout)")
	flag.StringVar(&rulesFile, "rules", "", "YAML settings file")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("graph-transliterator version %s\n", version)
		os.Exit(0)
	}

	// Reject any positional arguments
	if len(flag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "Error: Unexpected positional arguments. Use --input and --output flags instead.\n\n")
		flag.Usage()
		os.Exit(1)
	}

	if rulesFile == "" {
		fmt.Fprintf(os.Stderr, "Error: --rules is required.\n\n")
		flag.Usage()
		os.Exit(1)
	}

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	file, err := settings.LoadFile(rulesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading rules file '%s': %v\n", rulesFile, err)
		os.Exit(1)
	}

	t, err := file.Build(ignoreErrors, checkAmbiguity, transliterator.WithLogger(log.Logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error compiling rules: %v\n", err)
		os.Exit(1)
	}

	// Prepare output destination
	var output io.Writer
	var outputCloser io.Closer

	if outputFile == "" {
		output = os.Stdout
	} else {
		f, err := os.Create(outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file '%s': %v\n", outputFile, err)
			os.Exit(1)
		}
		output = f
		outputCloser = f
	}

	if dump {
		normalized := settings.FromConfig(t.Config())
		normalized.Metadata = file.Metadata
		out, err := normalized.Dump()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating settings: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprint(output, string(out))
		closeOutput(outputCloser, outputFile)
		os.Exit(0)
	}

	var input string
	if inputFile == "" {
		input, err = readFromStdin()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading from stdin: %v\n", err)
			os.Exit(1)
		}
	} else {
		input, err = readFromFile(inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading file '%s': %v\n", inputFile, err)
			os.Exit(1)
		}
	}

	var runErr error
	if showTokens {
		runErr = writeTokens(output, t, input)
	} else {
		res, err := t.Run(context.Background(), input)
		runErr = err
		if err == nil {
			fmt.Fprint(output, res.Output)
			if coverage {
				report(os.Stderr, t, res)
			}
		}
	}

	closeOutput(outputCloser, outputFile)

	// Handle transliteration error after writing output
	if runErr != nil {
		if exit0 {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Transliteration error: %v\n", runErr)
		os.Exit(1)
	}
}

// writeTokens writes the tokens the transliterator works on, framing and
// whitespace consolidation included, as one JSON string per line.
func writeTokens(w io.Writer, t *transliterator.Transliterator, input string) error {
	tokens, err := t.Tokenize(input)
	if err != nil {
		return err
	}
	for _, token := range tokens {
		jsonBytes, err := json.Marshal(token)
		if err != nil {
			return fmt.Errorf("JSON encoding error: %w", err)
		}
		fmt.Fprintln(w, string(jsonBytes))
	}
	return nil
}

// report writes the rules and onmatch rules a run did not use.
func report(w io.Writer, t *transliterator.Transliterator, res *transliterator.Result) {
	c := transliterator.NewCoverage(t)
	c.Record(res)
	if err := c.Check(); err == nil {
		fmt.Fprintf(w, "Coverage: all %d rules used\n", len(t.Rules()))
		return
	}
	rs := t.Rules()
	for _, i := range c.Unmatched() {
		fmt.Fprintf(w, "Coverage: rule %d %q -> %q never matched\n", i, rs[i].Tokens(), rs[i].Production())
	}
	om := t.OnMatchRules()
	for _, i := range c.UnusedOnMatch() {
		fmt.Fprintf(w, "Coverage: onmatch rule %d -> %q never applied\n", i, om[i].Production())
	}
}

func closeOutput(c io.Closer, name string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing output file '%s': %v\n", name, err)
		os.Exit(1)
	}
}

// readFromStdin reads all input from stdin.
func readFromStdin() (string, error) {
	bytes, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// readFromFile reads the contents of a file.
func readFromFile(filename string) (string, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
