package cmds

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/go-delve/uleb128/cmd/uleb128/cmds/helphelpers"
	"github.com/go-delve/uleb128/pkg/bytefmt"
	"github.com/go-delve/uleb128/pkg/config"
	"github.com/go-delve/uleb128/pkg/leb128"
	"github.com/go-delve/uleb128/pkg/logflags"
	"github.com/go-delve/uleb128/pkg/terminal"
	"github.com/go-delve/uleb128/pkg/version"
)

var (
	// log is whether to log debug statements.
	log bool
	// logOutput is a comma separated list of components that should produce debug output.
	logOutput string
	// logDest is the file path or file descriptor where logs should go.
	logDest string
	// width is the target width of encode, decode and size.
	width widthValue
	// canonical rejects non-canonical encodings when decoding.
	canonical bool
	// format selects how encoded bytes are printed.
	format string
	// initFile is the path to initialization file.
	initFile string
	// buildInfo prints the module dependencies in the version command.
	buildInfo bool

	// rootCommand is the root of the command tree.
	rootCommand *cobra.Command

	conf *config.Config
)

const uleb128CommandLongDesc = `uleb128 encodes and decodes unsigned LEB128 values.

LEB128 (Little Endian Base 128) is the variable length integer encoding used
by DWARF, WebAssembly and protocol buffers. Each byte carries seven bits of
the value, least significant group first, and the high bit of every byte
except the last is set.

Values are given in decimal or with a 0x, 0o or 0b prefix, encoded bytes as
hex:

	uleb128 encode 624485
	uleb128 decode e5 8e 26`

// widthValue is a pflag.Value for the --width flag.
type widthValue leb128.Width

func (w *widthValue) String() string {
	return leb128.Width(*w).String()
}

func (w *widthValue) Set(s string) error {
	v, err := leb128.ParseWidth(s)
	if err != nil {
		return err
	}
	*w = widthValue(v)
	return nil
}

func (w *widthValue) Type() string {
	return "width"
}

// New returns an initialized command tree.
func New() *cobra.Command {
	width = widthValue(leb128.W64)
	canonical = false
	format = config.FormatHex
	initFile = ""
	buildInfo = false
	log, logOutput, logDest = false, "", ""

	// Main uleb128 root command.
	rootCommand = &cobra.Command{
		Use:          "uleb128",
		Short:        "uleb128 encodes and decodes unsigned LEB128 integers.",
		Long:         uleb128CommandLongDesc,
		SilenceUsage: true,

		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) { logflags.Close() },
	}

	rootCommand.PersistentFlags().BoolVarP(&log, "log", "", false, "Enable logging.")
	rootCommand.PersistentFlags().StringVarP(&logOutput, "log-output", "", "", `Comma separated list of components that should produce debug output (see 'uleb128 help log')`)
	rootCommand.PersistentFlags().StringVarP(&logDest, "log-dest", "", "", "Writes logs to the specified file or file descriptor (see 'uleb128 help log').")
	rootCommand.PersistentFlags().VarP(&width, "width", "w", "Target width in bits: 8, 16, 32, 64 or ptr.")
	rootCommand.PersistentFlags().BoolVarP(&canonical, "canonical", "", false, "Reject encodings padded with redundant zero groups.")
	rootCommand.PersistentFlags().StringVarP(&format, "format", "f", config.FormatHex, "Output format of encoded bytes: hex, go or raw.")

	// 'encode' subcommand.
	encodeCommand := &cobra.Command{
		Use:   "encode value...",
		Short: "Encodes values.",
		Long: `Encodes each value and prints its encoding on a line of its own.

Values must fit in the target width (see --width). With --format raw the
encodings are written back to back as binary; raw output is refused when
standard output is a terminal.`,
		Args: cobra.MinimumNArgs(1),
		RunE: encodeCmd,
	}
	rootCommand.AddCommand(encodeCommand)

	// 'decode' subcommand.
	decodeCommand := &cobra.Command{
		Use:   "decode bytes...",
		Short: "Decodes a sequence of encoded values.",
		Long: `Decodes the given bytes as a sequence of encoded values.

Bytes are hex, optionally separated by spaces, commas or colons and
optionally prefixed by 0x. One value is printed per line, followed by the
length of its encoding. Decoding stops at the first malformed value.`,
		Args: cobra.MinimumNArgs(1),
		RunE: decodeCmd,
	}
	rootCommand.AddCommand(decodeCommand)

	// 'stream' subcommand.
	streamCommand := &cobra.Command{
		Use:   "stream [file]",
		Short: "Decodes a binary stream of encoded values.",
		Long: `Decodes values from a file, or from standard input if no file is given,
and prints one value per line.

The input is read lazily and must end exactly after the last encoded value.`,
		Args: cobra.MaximumNArgs(1),
		RunE: streamCmd,
	}
	rootCommand.AddCommand(streamCommand)

	// 'size' subcommand.
	sizeCommand := &cobra.Command{
		Use:   "size value...",
		Short: "Prints the encoded length of values.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  sizeCmd,
	}
	rootCommand.AddCommand(sizeCommand)

	// 'repl' subcommand.
	replCommand := &cobra.Command{
		Use:   "repl",
		Short: "Starts an interactive terminal.",
		Long: `Starts an interactive terminal to encode and decode values.

Type 'help' in the terminal for a list of commands. Command history is kept
in the configuration directory.`,
		Args: cobra.NoArgs,
		RunE: replCmd,
	}
	replCommand.Flags().StringVar(&initFile, "init", "", "Init file, executed by the terminal.")
	rootCommand.AddCommand(replCommand)

	// 'version' subcommand.
	versionCommand := &cobra.Command{
		Use:   "version",
		Short: "Prints version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "uleb128\n%s\n", version.ToolVersion)
			if buildInfo {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", version.BuildInfo())
			}
		},
	}
	versionCommand.Flags().BoolVarP(&buildInfo, "build-info", "", false, "Print the module dependencies of the binary.")
	rootCommand.AddCommand(versionCommand)

	rootCommand.AddCommand(&cobra.Command{
		Use:   "log",
		Short: "Help about logging flags.",
		Long: `Logging can be enabled by specifying the --log flag and using the
--log-output flag to select which components should produce logs.

The argument of --log-output must be a comma separated list of component
names selected from this list:


	cli		Log command line invocations
	terminal	Log commands executed by the interactive terminal
	config		Log loading and saving of the configuration file

If --log is specified without --log-output the cli component is enabled.

Additionally --log-dest can be used to specify where the logs should be
written.
If the argument is a number it will be interpreted as a file descriptor,
otherwise as a file path.

`,
	})

	defaultUsage := rootCommand.UsageFunc()
	rootCommand.SetUsageFunc(func(cmd *cobra.Command) error {
		helphelpers.Prepare(cmd)
		return defaultUsage(cmd)
	})

	rootCommand.DisableAutoGenTag = true

	return rootCommand
}

// setup configures logging and loads the configuration file. Flags given
// on the command line take precedence over the configuration file.
func setup(cmd *cobra.Command, args []string) error {
	if err := logflags.Setup(log, logOutput, logDest); err != nil {
		return err
	}

	var err error
	conf, err = config.LoadConfig()
	if err != nil {
		logflags.CLILogger().Warnf("%v", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		conf.Width = width.String()
	} else {
		width = widthValue(conf.DecodeWidth())
	}
	if flags.Changed("canonical") {
		conf.Canonical = canonical
	} else {
		canonical = conf.Canonical
	}
	if flags.Changed("format") {
		switch format {
		case config.FormatHex, config.FormatGo, config.FormatRaw:
		default:
			return fmt.Errorf("invalid output format %q, must be one of hex, go, raw", format)
		}
		conf.OutputFormat = format
	} else {
		format = conf.Format()
	}

	logflags.CLILogger().WithFields(logflags.Fields{
		"width":     width.String(),
		"canonical": canonical,
		"format":    format,
	}).Debugf("running %s %q", cmd.Name(), args)
	return nil
}

func decoder() leb128.Decoder {
	return leb128.Decoder{Width: leb128.Width(width), Canonical: canonical}
}

// rawAllowed returns an error if out is a terminal.
func rawAllowed(out io.Writer) error {
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return errors.New("refusing to write raw bytes to a terminal, redirect the output or use --format hex")
	}
	return nil
}

func encodeCmd(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if format == config.FormatRaw {
		if err := rawAllowed(out); err != nil {
			return err
		}
	}
	style := bytefmt.Hex
	if format == config.FormatGo {
		style = bytefmt.GoSyntax
	}

	var raw []byte
	for _, arg := range args {
		v, err := bytefmt.ParseUint(arg, int(width))
		if err != nil {
			return err
		}
		if format == config.FormatRaw {
			raw = leb128.AppendUnsigned(raw, v)
			continue
		}
		fmt.Fprintln(out, bytefmt.Format(leb128.Encode(v), style))
	}
	if format == config.FormatRaw {
		_, err := out.Write(raw)
		return err
	}
	return nil
}

var errNoBytes = errors.New("no bytes to decode")

func decodeCmd(cmd *cobra.Command, args []string) error {
	buf, err := bytefmt.Parse(strings.Join(args, " "))
	if err != nil {
		return err
	}
	if len(buf) == 0 {
		return errNoBytes
	}
	out := cmd.OutOrStdout()
	d := decoder()
	off := 0
	for off < len(buf) {
		v, n, err := d.Decode(buf[off:])
		if err != nil {
			return fmt.Errorf("decoding at offset %d: %w", off, err)
		}
		fmt.Fprintf(out, "%d (%d bytes)\n", v, n)
		off += n
	}
	return nil
}

func streamCmd(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	name := "<stdin>"
	if len(args) == 1 {
		fh, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fh.Close()
		in, name = fh, args[0]
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush()

	r := bufio.NewReader(in)
	d := decoder()
	off, count := 0, 0
	for {
		v, n, err := d.Read(r)
		if err != nil {
			if n == 0 && leb128.KindOf(err) == leb128.UnexpectedEnd {
				break
			}
			out.Flush()
			return fmt.Errorf("%s: value %d at stream offset %d: %w", name, count, off, err)
		}
		fmt.Fprintf(out, "%d\n", v)
		off += n
		count++
	}
	logflags.CLILogger().Debugf("decoded %d values from %d bytes of %s", count, off, name)
	return nil
}

func sizeCmd(cmd *cobra.Command, args []string) error {
	for _, arg := range args {
		v, err := bytefmt.ParseUint(arg, int(width))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d\n", leb128.Size(v))
	}
	return nil
}

func replCmd(cmd *cobra.Command, args []string) error {
	term := terminal.New(conf)
	term.InitFile = initFile
	status, err := term.Run()
	if err != nil {
		return err
	}
	if status != 0 {
		return fmt.Errorf("terminal exited with status %d", status)
	}
	return nil
}
