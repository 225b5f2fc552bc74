package finddups

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/alessio/shellescape"
	"github.com/fatih/color"
	"github.com/google/vectorio"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Reporter renders detection output. Per-file lines are written as they are
// produced; duplicate groups are written once the run is complete.
type Reporter struct {
	Program string
	Format  string
	Stdout  io.Writer
	Stderr  io.Writer

	header *color.Color
	mu     sync.Mutex
}

// NewReporter creates a reporter for the given format and colour mode
func NewReporter(program, format, colorMode string, stdout, stderr io.Writer) *Reporter {
	header := color.New(color.FgCyan, color.Bold)
	if useColor(colorMode, stdout) {
		header.EnableColor()
	} else {
		header.DisableColor()
	}

	return &Reporter{
		Program: program,
		Format:  strings.ToLower(format),
		Stdout:  stdout,
		Stderr:  stderr,
		header:  header,
	}
}

// useColor resolves a colour mode against the destination
func useColor(mode string, w io.Writer) bool {
	switch strings.ToLower(mode) {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// structured reports whether the format is a single document
func (r *Reporter) structured() bool {
	return r.Format == FormatJSON || r.Format == FormatYAML
}

// QuotePath quotes a path for safe reuse in a POSIX shell
func QuotePath(path string) string {
	return shellescape.Quote(path)
}

// Hashed writes the verbose line for one file. Structured formats send it to
// stderr so stdout stays a single document.
func (r *Reporter) Hashed(path string, digest []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w := r.Stdout
	if r.structured() {
		w = r.Stderr
	}
	fmt.Fprintf(w, "%s: %s\n", hex.EncodeToString(digest), QuotePath(path))
}

// Failure writes the error line for an unreadable file
func (r *Reporter) Failure(record FailureRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.Stderr, "%s: %s: %s\n", r.Program, record.Reason, QuotePath(record.Path))
}

// reportDocument is the json/yaml form of a result
type reportDocument struct {
	Algorithm string           `json:"algorithm" yaml:"algorithm"`
	Groups    []DuplicateGroup `json:"groups" yaml:"groups"`
	Failures  []FailureRecord  `json:"failures" yaml:"failures"`
}

// Report writes the duplicate groups of result
func (r *Reporter) Report(result *Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	DebugLog(DebugReport, "writing %d group(s) as %s", len(result.Groups), r.Format)

	switch r.Format {
	case FormatJSON:
		encoder := json.NewEncoder(r.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(newReportDocument(result)); err != nil {
			return fmt.Errorf("failed to encode json report: %w", err)
		}
		return nil
	case FormatYAML:
		encoder := yaml.NewEncoder(r.Stdout)
		encoder.SetIndent(2)
		if err := encoder.Encode(newReportDocument(result)); err != nil {
			return fmt.Errorf("failed to encode yaml report: %w", err)
		}
		return encoder.Close()
	case FormatFdupes:
		return writeBuffers(r.Stdout, r.fdupesLines(result))
	default:
		return writeBuffers(r.Stdout, r.humanLines(result))
	}
}

func newReportDocument(result *Result) reportDocument {
	doc := reportDocument{
		Algorithm: result.Algorithm,
		Groups:    result.Groups,
		Failures:  result.Failures,
	}
	if doc.Groups == nil {
		doc.Groups = []DuplicateGroup{}
	}
	if doc.Failures == nil {
		doc.Failures = []FailureRecord{}
	}
	return doc
}

// humanLines renders each group as a "-- <hex> --" header and one quoted path per line
func (r *Reporter) humanLines(result *Result) [][]byte {
	var lines [][]byte
	for _, group := range result.Groups {
		lines = append(lines, []byte(r.groupHeader(group.Hash)+"\n"))
		for _, file := range group.Files {
			lines = append(lines, []byte(QuotePath(file)+"\n"))
		}
	}
	return lines
}

func (r *Reporter) groupHeader(hash string) string {
	if r.header == nil {
		return fmt.Sprintf("-- %s --", hash)
	}
	return r.header.Sprintf("-- %s --", hash)
}

// fdupesLines renders groups as quoted paths separated by blank lines
func (r *Reporter) fdupesLines(result *Result) [][]byte {
	var lines [][]byte
	for i, group := range result.Groups {
		if i > 0 {
			lines = append(lines, []byte("\n"))
		}
		for _, file := range group.Files {
			lines = append(lines, []byte(QuotePath(file)+"\n"))
		}
	}
	return lines
}

// writeBuffers writes bufs in order, using writev when w is a file
func writeBuffers(w io.Writer, bufs [][]byte) error {
	if f, ok := w.(*os.File); ok {
		return writevFile(f, bufs)
	}
	for _, buf := range bufs {
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}

// writevFile writes bufs with vectored I/O in chunks of at most maxIovecs
func writevFile(f *os.File, bufs [][]byte) error {
	for len(bufs) > 0 {
		chunk := bufs[:min(len(bufs), maxIovecs)]
		bufs = bufs[len(chunk):]

		iovecs := make([]syscall.Iovec, 0, len(chunk))
		total := 0
		for _, buf := range chunk {
			if len(buf) == 0 {
				continue
			}
			iovec := syscall.Iovec{Base: &buf[0]}
			iovec.SetLen(len(buf))
			iovecs = append(iovecs, iovec)
			total += len(buf)
		}
		if len(iovecs) == 0 {
			continue
		}

		nw, err := vectorio.WritevRaw(f.Fd(), iovecs)
		if err != nil {
			return fmt.Errorf("failed to write report with vectorio: %w", err)
		}
		if nw < total {
			if err := writeRemainder(f, chunk, nw); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeRemainder finishes a short writev by skipping the first written bytes of chunk
func writeRemainder(w io.Writer, chunk [][]byte, written int) error {
	for _, buf := range chunk {
		if written >= len(buf) {
			written -= len(buf)
			continue
		}
		if _, err := w.Write(buf[written:]); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		written = 0
	}
	return nil
}
