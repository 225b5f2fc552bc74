package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	finddups "github.com/mattkeenan/finddups/pkg"
)

func main() {
	shutdown, stop := setupSignalHandler(os.Exit)
	status := run(shutdown, filepath.Base(os.Args[0]), os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(status)
}

func defineOptions() *ParsedOptions {
	options := NewParsedOptions()
	options.DefineOption("recursive", "r", OptionTypeBool, "false", "Operate recursively on directories")
	options.DefineOption("verbose", "v", OptionTypeBool, "false", "Print the digest and name of each file as it's checked")
	options.DefineOption("algorithm", "", OptionTypeString, "", "Hash algorithm (default md5)")
	options.DefineOption("workers", "", OptionTypeInt, "", "Number of concurrent hash workers (1-64, default 4)")
	options.DefineOption("format", "", OptionTypeString, "", "Output format (human|fdupes|json|yaml)")
	options.DefineOption("color", "", OptionTypeString, "", "Colour group headers (auto|always|never)")
	options.DefineOption("exclude", "", OptionTypeString, "", "Skip directory entries whose path matches this regex")
	options.DefineOption("exclude-from", "", OptionTypeString, "", "Read exclude regexes from a file, one per line")
	options.DefineOption("config", "", OptionTypeString, "", "Read settings from an INI file")
	options.DefineOption("debug", "", OptionTypeString, "", "Comma-separated debug flags (expand,hash,workers,report)")
	options.DefineOption("help", "h", OptionTypeBool, "false", "Show help message")
	options.DefineOption("version", "", OptionTypeBool, "false", "Show version information")
	return options
}

// run executes one invocation and returns the exit status. Closing shutdown
// aborts the run without printing a report.
func run(shutdown <-chan struct{}, program string, args []string, stdout, stderr io.Writer) int {
	options := defineOptions()
	if err := options.Parse(args); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", program, err)
		fmt.Fprintf(stderr, "Try '%s --help' for more information.\n", program)
		return finddups.ExitUsage
	}

	if options.GetBool("version") {
		fmt.Fprintf(stdout, "%s %s\n", program, getVersionString())
		return finddups.ExitOK
	}

	if options.GetBool("help") {
		showHelp(stdout, program, options)
		return finddups.ExitOK
	}

	paths := options.GetArgs()
	if len(paths) == 0 {
		fmt.Fprintf(stderr, "%s: at least one file or directory is required\n", program)
		showUsage(stderr, program)
		return finddups.ExitUsage
	}

	config, err := loadConfig(options)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", program, err)
		return finddups.ExitUsage
	}
	all := config.GetAllConfig()

	finddups.SetLogOutput(stderr)
	finddups.SetVerboseLevel(all.Verbose.Level)
	finddups.SetDebugFlags(all.Verbose.Debug)
	if path := config.Path(); path != "" {
		finddups.VerboseLog(1, "loaded configuration from %s", path)
	}

	exclude, err := buildExcludeFilter(options, all.Filter)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", program, err)
		return finddups.ExitUsage
	}

	bufferSize, err := config.HashBufferSize()
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", program, err)
		return finddups.ExitUsage
	}

	reporter := finddups.NewReporter(program, all.Output.Format, all.Output.Color, stdout, stderr)

	detectorOpts := finddups.DetectorOptions{
		Algorithm:  all.Hash.Default,
		Workers:    all.Performance.HashWorkers,
		BufferSize: bufferSize,
		OnFailure:  reporter.Failure,
	}
	if options.GetBool("verbose") {
		detectorOpts.OnHashed = reporter.Hashed
	}

	detector, err := finddups.NewDetector(detectorOpts)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", program, err)
		return finddups.ExitUsage
	}

	ctx, cancel := shutdownContext(shutdown)
	defer cancel()

	files := finddups.ExpandPaths(paths, finddups.ExpandOptions{
		Recursive: options.GetBool("recursive"),
		Exclude:   exclude,
	})

	result, err := detector.Run(ctx, files)
	if errors.Is(err, finddups.ErrAborted) {
		return finddups.ExitAborted
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", program, err)
		return finddups.ExitUsage
	}

	if err := reporter.Report(result); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", program, err)
		return finddups.ExitUsage
	}

	return result.ExitStatus()
}

// shutdownContext returns a context that is cancelled when shutdown closes
func shutdownContext(shutdown <-chan struct{}) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	select {
	case <-shutdown:
		cancel()
		return ctx, cancel
	default:
	}

	go func() {
		select {
		case <-shutdown:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// loadConfig reads --config when given and applies command-line overrides on top
func loadConfig(options *ParsedOptions) (*finddups.Config, error) {
	config := finddups.NewDefaultConfig()
	if path := options.GetString("config"); path != "" {
		loaded, err := finddups.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	var overrides []string
	flagKeys := []struct {
		option string
		key    string
	}{
		{"algorithm", "default"},
		{"format", "format"},
		{"color", "color"},
		{"debug", "debug"},
		{"exclude-from", "exclude_from"},
	}
	for _, fk := range flagKeys {
		if options.IsSet(fk.option) {
			overrides = append(overrides, fk.key+":"+options.GetString(fk.option))
		}
	}
	if options.IsSet("workers") {
		overrides = append(overrides, "hash_workers:"+strconv.Itoa(options.GetInt("workers")))
	}

	if err := config.ApplyOverrides(overrides); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// buildExcludeFilter combines the configured exclude file with --exclude
func buildExcludeFilter(options *ParsedOptions, filter *finddups.FilterConfig) (*finddups.ExcludeFilter, error) {
	exclude := finddups.NewExcludeFilter()
	if filter.ExcludeFrom != "" {
		if err := exclude.LoadFile(filter.ExcludeFrom); err != nil {
			return nil, err
		}
	}
	if pattern := options.GetString("exclude"); pattern != "" {
		if err := exclude.AddPattern(pattern); err != nil {
			return nil, err
		}
	}
	return exclude, nil
}

func showUsage(w io.Writer, program string) {
	fmt.Fprintf(w, "Usage: %s [OPTIONS] PATH...\n", program)
	fmt.Fprintf(w, "Try '%s --help' for more information.\n", program)
}

func showHelp(w io.Writer, program string, options *ParsedOptions) {
	fmt.Fprintf(w, "%s - find duplicate files\n\n", program)
	fmt.Fprintf(w, "Usage: %s [OPTIONS] PATH...\n\n", program)
	fmt.Fprintf(w, "Files and directories to check for duplicates. Directories contribute their\n")
	fmt.Fprintf(w, "entries; with --recursive every file below them.\n\n")
	fmt.Fprintf(w, "OPTIONS:\n")
	options.ShowOptions(w)
	fmt.Fprintf(w, "\nHASH ALGORITHMS:\n")
	for _, name := range finddups.HashAlgorithmNames() {
		fmt.Fprintf(w, "  %s\n", name)
	}
	fmt.Fprintf(w, "\nEXIT STATUS:\n")
	fmt.Fprintf(w, "  0    every file was read\n")
	fmt.Fprintf(w, "  1    one or more files could not be read\n")
	fmt.Fprintf(w, "  2    usage or configuration error\n")
	fmt.Fprintf(w, "  130  interrupted\n\n")
	fmt.Fprintf(w, "EXAMPLES:\n")
	fmt.Fprintf(w, "  %s -r ~/Pictures /media/backup        # Duplicates across two trees\n", program)
	fmt.Fprintf(w, "  %s -rv --algorithm=sha256 .            # Show every digest\n", program)
	fmt.Fprintf(w, "  %s -r --format=json --exclude='\\.git/' src\n", program)
}
