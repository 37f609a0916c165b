package cmd

import (
	"fmt"
	"io"
	neturl "net/url"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/swell-cli/swell/packages/backend"
	"github.com/swell-cli/swell/packages/config"
	"github.com/swell-cli/swell/packages/cookiejar"
	"github.com/swell-cli/swell/packages/logger"
	"github.com/swell-cli/swell/packages/output"
	"github.com/swell-cli/swell/packages/request"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	bodyFlag     string
	fileFlag     string
	clientFlag   string
	headerFlags  []string
	jarFlag      string
	outputFlag   string
	timeoutFlag  time.Duration
	insecureFlag bool
	noColorFlag  bool
	verboseFlag  bool
)

// Terminal detection is indirected so tests can force either side.
var (
	stdinPiped = func() bool {
		fd := os.Stdin.Fd()
		return !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
	}
	stdoutTTY = func() bool {
		fd := os.Stdout.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
)

var rootCmd = &cobra.Command{
	Use:   "swell [flags] <method> <url>",
	Short: "A curl-like HTTP client with swappable backends",
	Long: `swell issues a single HTTP request and prints the response.

Examples:
  swell get https://httpbin.org/get
  swell post https://httpbin.org/post -b '{"name":"tide"}' -h Content-Type=application/json
  swell put https://httpbin.org/put -f payload.json
  swell get https://httpbin.org/cookies -j ~/.swell-jar
  cat payload.json | swell post https://httpbin.org/post
  swell get https://httpbin.org/get -c fast -o json

The exit code reflects usage and transport failures only, never the
HTTP status of the response.`,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          sendCommand,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		formatter := output.NewTextFormatter(
			output.WithWriter(os.Stderr),
			output.WithNoColor(noColorFlag),
		)
		formatter.FormatError(err)
		os.Exit(exitCode(err))
	}
}

// loadConfig resolves the SWELL_* flag defaults. A broken environment
// is warned about and replaced with the built-in defaults rather than
// aborting before flag parsing even starts.
func loadConfig(stderr io.Writer) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "warning: %v\n", err)
		cfg = &config.Config{Client: "std", Timeout: backend.DefaultTimeout}
	}
	return cfg
}

func init() {
	cfg := loadConfig(os.Stderr)

	flags := rootCmd.Flags()
	flags.StringVarP(&bodyFlag, "body", "b", "", "request body given on the command line")
	flags.StringVarP(&fileFlag, "file", "f", "", "path to a file to use as the request body")
	flags.StringVarP(&clientFlag, "client", "c", cfg.Client,
		fmt.Sprintf("HTTP backend: %s (env: SWELL_CLIENT)", strings.Join(backend.Names(), ", ")))
	flags.StringArrayVarP(&headerFlags, "header", "h", nil, "request header as KEY=VALUE, repeatable")
	flags.StringVarP(&jarFlag, "jar", "j", cfg.Jar, "cookie jar file, created on first use (env: SWELL_JAR)")
	flags.StringVarP(&outputFlag, "output", "o", "text", "output format: text, json")
	flags.DurationVarP(&timeoutFlag, "timeout", "t", cfg.Timeout, "request timeout (env: SWELL_TIMEOUT)")
	flags.BoolVarP(&insecureFlag, "insecure", "k", false, "disable TLS certificate validation")
	flags.BoolVar(&noColorFlag, "no-color", cfg.NoColor, "disable colored output (env: SWELL_NO_COLOR)")
	flags.BoolVarP(&verboseFlag, "verbose", "v", false, "log request diagnostics to stderr")

	// Registering --help without a shorthand frees -h for --header.
	flags.Bool("help", false, "help for swell")

	rootCmd.AddCommand(versionCmd)
}

func sendCommand(cmd *cobra.Command, args []string) error {
	log := logger.New(verboseFlag)

	outFormat := strings.ToLower(outputFlag)
	if outFormat != "text" && outFormat != "json" {
		return usageError{fmt.Errorf("unknown output format %q (options: text, json)", outputFlag)}
	}

	method, err := request.ParseMethod(args[0])
	if err != nil {
		return usageError{err}
	}
	rawURL := args[1]
	if err := request.ValidateURL(rawURL); err != nil {
		return usageError{err}
	}
	reqURL, err := neturl.Parse(rawURL)
	if err != nil {
		return usageError{err}
	}

	req := request.New(method, rawURL)
	for _, h := range headerFlags {
		key, value, err := request.ParseHeader(h)
		if err != nil {
			return usageError{err}
		}
		req.SetHeader(key, value)
	}

	body, err := request.BodySource{
		FilePath: fileFlag,
		Literal:  bodyFlag,
		Stdin:    cmd.InOrStdin(),
		Piped:    stdinPiped(),
	}.Resolve()
	if err != nil {
		return ioError{err}
	}
	req.SetBody(body)

	var jar *cookiejar.Jar
	if jarFlag != "" {
		var skipped int
		jar, skipped, err = cookiejar.Load(jarFlag)
		if err != nil {
			return ioError{err}
		}
		if skipped > 0 {
			log.Warn().Int("lines", skipped).Str("path", jarFlag).Msg("skipped malformed cookie jar lines")
		}
		for _, c := range jar.CookiesFor(reqURL, time.Now()) {
			req.AddCookie(c)
		}
		log.Debug().Int("attached", len(req.Cookies)).Str("path", jarFlag).Msg("cookie jar loaded")
	}

	be, err := backend.Lookup(clientFlag,
		backend.WithTimeout(timeoutFlag),
		backend.WithInsecure(insecureFlag),
	)
	if err != nil {
		return usageError{err}
	}

	log.Debug().
		Str("backend", be.Name()).
		Str("method", req.Method).
		Str("url", req.URL).
		Int("bodyBytes", len(req.Body)).
		Msg("sending request")

	resp, err := be.Do(cmd.Context(), req)
	if err != nil {
		return transportError{fmt.Errorf("%s: %w", be.Name(), err)}
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", resp.Duration).
		Msg("response received")

	if jar != nil {
		now := time.Now()
		jar.Merge(resp.Cookies, reqURL, now)
		if err := jar.Save(jarFlag, now); err != nil {
			return ioError{err}
		}
		log.Debug().Int("entries", jar.Len()).Str("path", jarFlag).Msg("cookie jar saved")
	}

	if outFormat == "json" {
		formatter := output.NewJSONFormatter(output.JSONWithWriter(cmd.OutOrStdout()))
		return formatter.Print(resp)
	}

	formatter := output.NewTextFormatter(
		output.WithWriter(cmd.OutOrStdout()),
		output.WithNoColor(noColorFlag),
		output.WithTTY(stdoutTTY()),
	)
	return formatter.Print(resp)
}
