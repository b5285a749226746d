package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/hachi-lang/hachi/internal/config"
	"github.com/hachi-lang/hachi/internal/diagnostics"
	"github.com/hachi-lang/hachi/internal/frames"
	"github.com/hachi-lang/hachi/internal/irload"
	"github.com/hachi-lang/hachi/internal/platform"
	"github.com/hachi-lang/hachi/internal/prettyprinter"
	"github.com/mattn/go-isatty"
	"github.com/xyproto/env/v2"
)

// PlatformEnvVar overrides the platform file when no -platform flag is given.
const PlatformEnvVar = "HACHI_PLATFORM"

// options is the parsed command line for one invocation.
type options struct {
	dumpPath     string
	platformPath string
	outputPath   string
	showStats    bool
	printMap     bool
}

// parseArgs reads the frame allocator command line. args excludes argv[0].
func parseArgs(args []string) (*options, error) {
	opts := &options{platformPath: env.Str(PlatformEnvVar)}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-platform", "--platform":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s needs a file argument", arg)
			}
			i++
			opts.platformPath = args[i]
		case "-o", "--output":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s needs a file argument", arg)
			}
			i++
			opts.outputPath = args[i]
		case "-stats", "--stats":
			opts.showStats = true
		case "-print", "--print":
			opts.printMap = true
		default:
			if strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("unknown flag: %s", arg)
			}
			if opts.dumpPath != "" {
				return nil, fmt.Errorf("more than one program dump given")
			}
			opts.dumpPath = arg
		}
	}
	if opts.dumpPath == "" {
		return nil, fmt.Errorf("no program dump given")
	}
	if !strings.HasSuffix(opts.dumpPath, config.DumpFileExt) {
		return nil, fmt.Errorf("program dump must be a %s file: %s", config.DumpFileExt, opts.dumpPath)
	}
	return opts, nil
}

func printUsage() {
	name := "hachi-frames"
	if len(os.Args) > 0 && os.Args[0] != "" {
		name = os.Args[0]
	}
	fmt.Fprintf(os.Stderr, "Usage: %s [options] <program%s>\n", name, config.DumpFileExt)
	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintf(os.Stderr, "  -platform <file>  platform memory configuration (or %s env)\n", PlatformEnvVar)
	fmt.Fprintln(os.Stderr, "  -o <file>         write the frame map to a file instead of stdout")
	fmt.Fprintln(os.Stderr, "  -stats            print allocation statistics to stderr")
	fmt.Fprintln(os.Stderr, "  -print            print a human-readable listing instead of YAML")
}

func handleHelp() bool {
	if len(os.Args) < 2 {
		return false
	}
	if os.Args[1] != "-help" && os.Args[1] != "--help" && os.Args[1] != "help" {
		return false
	}
	printUsage()
	return true
}

// useColor follows the NO_COLOR convention and only colors real terminals.
func useColor() bool {
	if env.Has("NO_COLOR") {
		return false
	}
	if env.Str("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

func printDiagnostics(diags []*diagnostics.DiagnosticError) {
	colored := useColor()
	for _, d := range diags {
		line := d.Error()
		if colored {
			if d.Severity == diagnostics.SeverityWarning {
				line = "\033[33m" + line + "\033[0m"
			} else {
				line = "\033[31m" + line + "\033[0m"
			}
		}
		fmt.Fprintf(os.Stderr, "- %s\n", line)
	}
}

func printStats(s frames.Stats) {
	fmt.Fprintf(os.Stderr, "functions: %d (%d coalesced)\n", s.Functions, s.FunctionsCoalesced)
	fmt.Fprintf(os.Stderr, "frame region: %d of %d bytes (%d without coalescing)\n",
		s.FrameBytesUsed, s.FrameBytesAvailable, s.FrameBytesNaive)
	fmt.Fprintf(os.Stderr, "zero page: %d bytes used, %d free\n",
		s.ZeroPageBytesUsed, s.ZeroPageBytesFree)
}

func loadPlatform(path string) (*platform.Platform, error) {
	if path == "" {
		return platform.Default(), nil
	}
	return platform.Load(path)
}

// Run is the hachi-frames entry point. It returns the process exit code so
// main stays a one-liner and tests can drive the CLI without exiting.
func Run() int {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()

	if len(os.Args) == 2 {
		switch os.Args[1] {
		case "-v", "-version", "--version":
			fmt.Println("hachi-frames " + config.Version)
			return 0
		}
	}

	if handleHelp() {
		return 0
	}

	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		printUsage()
		return 2
	}

	plat, err := loadPlatform(opts.platformPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}

	program, err := irload.Load(opts.dumpPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}

	result := frames.NewAllocator(plat).Allocate(program)
	if !result.OK {
		fmt.Fprintln(os.Stderr, "Frame allocation failed with errors:")
		printDiagnostics(result.Diagnostics)
		return 1
	}
	if len(result.Diagnostics) > 0 {
		printDiagnostics(result.Diagnostics)
	}

	var out []byte
	if opts.printMap {
		out = []byte(prettyprinter.NewMapPrinter().Print(result))
	} else {
		out, err = frames.EncodeYAML(result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			return 1
		}
	}
	if opts.outputPath != "" {
		if err := os.WriteFile(opts.outputPath, out, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			return 1
		}
	} else {
		os.Stdout.Write(out)
	}

	if opts.showStats {
		printStats(result.Stats)
	}
	return 0
}
