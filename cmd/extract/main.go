// Command extract converts a page stream of PDF glyph spans into an OOXML
// document fragment. It mirrors otcli's startup sequence: parse flags,
// configure tracing, run the conversion once, then optionally drop into an
// interactive loop.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/TamirEvan/extract/config"
	"github.com/TamirEvan/extract/docx"
	"github.com/TamirEvan/extract/engine"
	"github.com/TamirEvan/extract/page"
	"github.com/TamirEvan/extract/stats"
	"github.com/chzyer/readline"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// tracer traces with key 'extract.cli'
func tracer() tracing.Trace {
	return tracing.Select("extract.cli")
}

func main() {
	in := flag.String("in", "", "Input page stream")
	out := flag.String("out", "", "Output path for the word/document.xml contents (defaults to stdout)")
	cfgPath := flag.String("config", "", "YAML config file (overrides defaults)")
	workers := flag.Int("workers", 1, "Page-reflow worker count")
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	repl := flag.Bool("repl", false, "Drop into an interactive loop after conversion")
	flag.Parse()

	setupTracing(*tlevel)

	opt := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			pterm.Error.Println(err)
			os.Exit(1)
		}
		opt = loaded
	}

	if *in == "" {
		pterm.Error.Println("missing required -in flag")
		os.Exit(2)
	}

	results, err := runConversion(*in, opt, *workers)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(3)
	}

	writeResults(results, *out)
	printSummary(results)

	if *repl {
		runREPL(results)
	}
}

func setupTracing(level string) {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":   "go",
		"trace.extract.cli": level,
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Fprintln(os.Stderr, "error configuring tracing:", err)
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	switch level {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	default:
		tracer().SetTraceLevel(tracing.LevelError)
	}
}

func runConversion(inPath string, opt config.Option, workers int) ([]engine.Result, error) {
	f, err := os.Open(inPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", inPath, err)
	}
	defer f.Close()

	if workers <= 1 {
		return engine.Run(context.Background(), f, opt)
	}

	doc, err := page.Load(f, opt.Autosplit)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", inPath, err)
	}
	return engine.RunPages(context.Background(), doc, opt, workers)
}

func writeResults(results []engine.Result, outPath string) {
	var fragments strings.Builder
	for _, r := range results {
		fragments.WriteString(r.Fragment)
	}
	pkg := docx.Package{Fragment: fragments.String()}

	if outPath == "" {
		fmt.Println(pkg.DocumentXML())
		return
	}
	if err := os.WriteFile(outPath, []byte(pkg.DocumentXML()), 0o644); err != nil {
		pterm.Error.Println(err)
		os.Exit(4)
	}
}

func printSummary(results []engine.Result) {
	width := 80
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	totalParas := 0
	for i, r := range results {
		s := stats.Summarize(plainText(r.Fragment))
		line := fmt.Sprintf("page %d: %d paragraphs, %d words", i+1, r.Paragraphs, s.Words)
		if len(line) > width {
			line = line[:width]
		}
		pterm.Info.Println(line)
		totalParas += r.Paragraphs
	}
	pterm.Success.Printfln("converted %d page(s), %d paragraph(s) total", len(results), totalParas)
}

// plainText strips OOXML tags for a rough word-count pass; it is a
// diagnostic aid, not a general XML-to-text converter.
func plainText(fragment string) string {
	var sb strings.Builder
	inTag := false
	for _, r := range fragment {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func runREPL(results []engine.Result) {
	rl, err := readline.New("extract > ")
	if err != nil {
		tracer().Errorf(err.Error())
		return
	}
	defer rl.Close()

	pterm.Info.Println("Quit with <ctrl>D")
	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == "quit" || line == "exit":
			return
		case line == "summary":
			printSummary(results)
		case strings.HasPrefix(line, "page "):
			showPage(results, strings.TrimPrefix(line, "page "))
		default:
			pterm.Warning.Println("commands: summary, page <n>, quit")
		}
	}
}

func showPage(results []engine.Result, arg string) {
	n := 0
	if _, err := fmt.Sscanf(arg, "%d", &n); err != nil || n < 1 || n > len(results) {
		pterm.Error.Printfln("no such page: %s", arg)
		return
	}
	fmt.Println(results[n-1].Fragment)
}
