// amcp - interactive console for CasparCG-style AMCP servers
//
// The console keeps one TCP connection to the server, reconnecting on its
// own when the link drops. Lines typed at the prompt are sent verbatim and
// the response is printed when it is complete. Lines starting with a dot
// are console commands:
//
//	.help [topic]   .status   .connect   .disconnect   .reconnect   .quit
//
// Examples:
//
//	amcp                                  # console on localhost:5250
//	amcp --host playout1 --port 5250      # console on another server
//	amcp send PLAY 1-10 AMB LOOP          # one command, then exit
//	echo CLS | amcp --plain               # scripted use
//
// Settings come from ~/.amcp/config.yaml, ./.amcp.yaml, .env and AMCP_*
// environment variables, and flags, in increasing order of precedence.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/casparctl/amcp/amcpprotocol"
)

const (
	// version is the console version.
	version = "0.3.0"

	// appName is the application name.
	appName = "amcp"
)

func fullTitle() string {
	return fmt.Sprintf("%s v%s", appName, version)
}

func welcomeBanner() string {
	return fmt.Sprintf(`%s - AMCP console

Type '.help' for available commands.
Type '.quit' to exit.
`, fullTitle())
}

// options holds the global flags.
type options struct {
	configPath    string
	host          string
	port          int
	logLevel      string
	logJSON       bool
	retryInterval time.Duration
	timeout       time.Duration
	plain         bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:               appName,
		Short:             "Interactive console for AMCP playout servers",
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
		Args:              cobra.NoArgs,
		Long: `amcp connects to an AMCP server and sends what you type.

Responses are printed as they complete. The connection is retried in the
background until the server answers and re-established after a drop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			return runConsole(cfg, opts.plain)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default ~/.amcp/config.yaml and ./.amcp.yaml)")
	flags.StringVarP(&opts.host, "host", "H", "", "server host name or address")
	flags.IntVarP(&opts.port, "port", "p", 0, "server port (default 5250)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&opts.logJSON, "log-json", false, "log in JSON format")
	flags.DurationVar(&opts.retryInterval, "retry-interval", 0, "delay between connection attempts (default 5s)")
	flags.DurationVarP(&opts.timeout, "timeout", "t", 0, "how long to wait for a response (default 10s)")
	flags.BoolVar(&opts.plain, "plain", false, "disable colours")

	root.AddCommand(newSendCmd(opts), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), fullTitle())
		},
	}
}

// resolveConfig loads the config files and environment, applies the flags
// that were set on the command line and configures logging.
func resolveConfig(cmd *cobra.Command, opts *options) (*Config, error) {
	cfg, err := LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = opts.host
	}
	if flags.Changed("port") {
		cfg.Port = opts.port
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("log-json") {
		cfg.LogJSON = opts.logJSON
	}
	if flags.Changed("retry-interval") {
		cfg.RetryInterval = opts.retryInterval
	}
	if flags.Changed("timeout") {
		cfg.CommandTimeout = opts.timeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := configureLogging(cfg, nil); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newDevice(cfg *Config) *amcpprotocol.Device {
	return amcpprotocol.NewDevice(cfg.Host, cfg.Port,
		amcpprotocol.WithRetryInterval(cfg.RetryInterval),
		amcpprotocol.WithDialTimeout(cfg.DialTimeout),
		amcpprotocol.WithLogger(deviceLogger()),
	)
}

func runConsole(cfg *Config, plain bool) error {
	device := newDevice(cfg)
	editor := NewLineEditor(cfg.HistoryFile)

	plain = plain || !term.IsTerminal(int(os.Stdout.Fd()))
	c := newConsole(device, editor, os.Stdout, os.Stderr, cfg.CommandTimeout, plain)
	c.attach()

	cleanup := func() {
		editor.Close()
		device.Close()
	}
	setupSignalHandler(cleanup)

	if editor.IsInteractive() {
		fmt.Print(welcomeBanner())
		fmt.Println()
	}
	fmt.Printf("Connecting to %s...\n", device.Endpoint())
	device.Connect(true)

	err := c.run()
	cleanup()
	return err
}

// setupSignalHandler runs cleanup and exits on SIGINT or SIGTERM.
func setupSignalHandler(cleanup func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println()
		cleanup()
		os.Exit(0)
	}()
}

func printError(message string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
}
