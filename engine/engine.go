// Package engine wires the page loader, line/paragraph builders and OOXML
// emitter into a single pipeline, and defines the errors the pipeline
// surfaces to callers.
package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/TamirEvan/extract/config"
	"github.com/TamirEvan/extract/docx"
	"github.com/TamirEvan/extract/page"
	"github.com/TamirEvan/extract/reflow"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'extract.engine'
func tracer() tracing.Trace {
	return tracing.Select("extract.engine")
}

// Kind categorises an Error the way the original tool's errno-style
// failure codes did.
type Kind int

const (
	KindInvalidArgument Kind = iota
	KindNotFound
	KindIO
	KindParse
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindNotFound:
		return "not found"
	case KindIO:
		return "I/O error"
	case KindParse:
		return "parse error"
	case KindInternal:
		return "internal error"
	default:
		return "unknown error"
	}
}

// Error is the typed error every fallible engine operation returns.
type Error struct {
	Kind  Kind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("engine: %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("engine: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }

func wrapErr(kind Kind, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Cause: cause}
}

// Result is one page's reconstructed OOXML fragment.
type Result struct {
	Fragment   string
	Paragraphs int
}

// Run reads a Document's worth of pages from r, joins each page's spans
// into lines and paragraphs, and emits one Result per page. It checks ctx
// once per page boundary; a page already in progress is not interrupted
// mid-page.
func Run(ctx context.Context, r io.Reader, opt config.Option) ([]Result, error) {
	doc, err := page.Load(r, opt.Autosplit)
	if err != nil {
		return nil, wrapErr(KindParse, err)
	}

	results := make([]Result, 0, len(doc.Pages))
	for _, pg := range doc.Pages {
		select {
		case <-ctx.Done():
			return nil, wrapErr(KindInternal, ctx.Err())
		default:
		}

		res, err := runPage(pg, opt)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func runPage(pg *page.Page, opt config.Option) (Result, error) {
	if len(pg.Spans) == 0 {
		return Result{}, nil
	}
	lines := reflow.BuildLines(pg.Spans)
	paragraphs := reflow.BuildParagraphs(lines)
	tracer().Debugf("page: %d spans -> %d lines -> %d paragraphs", len(pg.Spans), len(lines), len(paragraphs))

	fragment := docx.EmitParagraphs(paragraphs, opt.Spacing, opt.Rotation, opt.ScratchCapacityHint)
	return Result{Fragment: fragment, Paragraphs: len(paragraphs)}, nil
}

// RunPages partitions a single already-loaded Document's pages across
// workers goroutines, running the join-and-emit stage for each page
// independently. It is the documented parallelism seam: page loading
// itself (Run) stays synchronous, but the per-page reflow/emit stage has
// no shared mutable state and is safe to fan out.
func RunPages(ctx context.Context, doc *page.Document, opt config.Option, workers int) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, len(doc.Pages))
	errs := make([]error, len(doc.Pages))

	jobs := make(chan int)
	done := make(chan struct{})

	worker := func() {
		for i := range jobs {
			select {
			case <-ctx.Done():
				errs[i] = wrapErr(KindInternal, ctx.Err())
				continue
			default:
			}
			res, err := runPage(doc.Pages[i], opt)
			results[i] = res
			errs[i] = err
		}
		done <- struct{}{}
	}

	for w := 0; w < workers; w++ {
		go worker()
	}
	for i := range doc.Pages {
		jobs <- i
	}
	close(jobs)
	for w := 0; w < workers; w++ {
		<-done
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
