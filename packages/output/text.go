package output

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/swell-cli/swell/packages/backend"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

type TextFormatter struct {
	writer  io.Writer
	noColor bool
	tty     bool
}

type TextOption func(*TextFormatter)

func NewTextFormatter(opts ...TextOption) *TextFormatter {
	f := &TextFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) TextOption {
	return func(f *TextFormatter) {
		f.writer = w
	}
}

func WithNoColor(nc bool) TextOption {
	return func(f *TextFormatter) {
		f.noColor = nc
	}
}

// WithTTY marks stdout as a terminal. Without it only the raw body is
// written, so the tool pipes cleanly into other programs.
func WithTTY(tty bool) TextOption {
	return func(f *TextFormatter) {
		f.tty = tty
	}
}

func (f *TextFormatter) Print(resp *backend.Response) error {
	if !f.tty {
		_, err := f.writer.Write(resp.Body)
		return err
	}

	statusColor := color.New(color.FgRed)
	switch {
	case resp.StatusCode < 300:
		statusColor = color.New(color.FgGreen)
	case resp.StatusCode < 400:
		statusColor = color.New(color.FgYellow)
	}
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s\n", bold(resp.Proto), statusColor.Sprint(resp.Status))

	keys := make([]string, 0, len(resp.Headers))
	for k := range resp.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range resp.Headers[k] {
			fmt.Fprintf(f.writer, "%s: %s\n", cyan(k), v)
		}
	}

	if len(resp.Body) == 0 {
		return nil
	}
	fmt.Fprintf(f.writer, "\n")

	// Malformed JSON is printed raw: pretty.Pretty can reduce invalid
	// input to nothing, so only valid documents are re-indented even
	// when the Content-Type claims JSON.
	body := resp.Body
	if (resp.IsJSON() || resp.ContentType() == "") && gjson.ValidBytes(body) {
		body = pretty.Pretty(body)
		if !f.noColor {
			body = pretty.Color(body, nil)
		}
	}
	if _, err := f.writer.Write(body); err != nil {
		return err
	}
	if len(body) == 0 || body[len(body)-1] != '\n' {
		fmt.Fprintf(f.writer, "\n")
	}
	return nil
}

func (f *TextFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}
