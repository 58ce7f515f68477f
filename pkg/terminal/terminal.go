package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-delve/liner"
	"github.com/mattn/go-isatty"

	"github.com/go-delve/uleb128/pkg/bytefmt"
	"github.com/go-delve/uleb128/pkg/config"
	"github.com/go-delve/uleb128/pkg/leb128"
	"github.com/go-delve/uleb128/pkg/logflags"
	"github.com/go-delve/uleb128/pkg/version"
)

const (
	historyFile                 string = ".uleb128_history"
	terminalHighlightEscapeCode string = "\033[%2dm"
	terminalResetEscapeCode     string = "\033[0m"
)

const (
	ansiBlack   = 30
	ansiGreen   = 32
	ansiWhite   = 37
	ansiBrBlack = 90
	ansiBrWhite = 97
)

// Term represents the interactive uleb128 terminal.
type Term struct {
	conf     *config.Config
	prompt   string
	line     *liner.State
	cmds     *Commands
	dumb     bool
	stdout   io.Writer
	log      logflags.Logger
	InitFile string

	width     leb128.Width
	canonical bool
	style     bytefmt.Style
}

// New returns a new Term.
func New(conf *config.Config) *Term {
	var w io.Writer

	dumb := strings.ToLower(os.Getenv("TERM")) == "dumb" || !isatty.IsTerminal(os.Stdout.Fd())
	if dumb {
		w = os.Stdout
	} else {
		w = getColorableWriter()
	}

	t := newTerm(conf, w, dumb)
	t.line = liner.NewLiner()
	return t
}

func newTerm(conf *config.Config, w io.Writer, dumb bool) *Term {
	if conf == nil {
		conf = &config.Config{}
	}

	if (conf.ResultColor > ansiWhite &&
		conf.ResultColor < ansiBrBlack) ||
		conf.ResultColor < ansiBlack ||
		conf.ResultColor > ansiBrWhite {
		conf.ResultColor = ansiGreen
	}

	cmds := DefaultCommands()
	if conf.Aliases != nil {
		cmds.Merge(conf.Aliases)
	}

	t := &Term{
		conf:   conf,
		prompt: "(uleb128) ",
		cmds:   cmds,
		dumb:   dumb,
		stdout: w,
		log:    logflags.TerminalLogger(),
	}
	t.applyConfig()
	return t
}

// applyConfig copies the codec settings of the configuration into the
// session.
func (t *Term) applyConfig() {
	t.width = t.conf.DecodeWidth()
	t.canonical = t.conf.Canonical
	t.style = bytefmt.Hex
	if t.conf.Format() == config.FormatGo {
		t.style = bytefmt.GoSyntax
	}
}

// Close returns the terminal to its previous mode.
func (t *Term) Close() {
	if t.line != nil {
		t.line.Close()
	}
}

func (t *Term) decoder() leb128.Decoder {
	return leb128.Decoder{Width: t.width, Canonical: t.canonical}
}

// Run begins running the terminal.
func (t *Term) Run() (int, error) {
	defer t.Close()

	t.line.SetCtrlCAborts(true)
	t.line.SetCompleter(t.cmds.Complete)

	fullHistoryFile, err := config.GetConfigFilePath(historyFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load history file: %v.\n", err)
	}

	f, err := os.Open(fullHistoryFile)
	if err != nil {
		f, err = os.Create(fullHistoryFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to open history file: %v. History will not be saved for this session.\n", err)
		}
	}

	if f != nil {
		t.line.ReadHistory(f)
		f.Close()
	}
	fmt.Fprintf(t.stdout, "uleb128 %s, width %d. Type 'help' for list of commands.\n", version.ToolVersion.Short(), t.width)

	if t.InitFile != "" {
		err := t.cmds.executeFile(t, t.InitFile)
		if err != nil {
			if _, ok := err.(ExitRequestError); ok {
				return t.handleExit()
			}
			fmt.Fprintf(os.Stderr, "Error executing init file: %s\n", err)
		}
	}

	for {
		cmdstr, err := t.promptForInput()
		if err != nil {
			if err == io.EOF || err == liner.ErrPromptAborted {
				fmt.Fprintln(t.stdout, "exit")
				return t.handleExit()
			}
			return 1, errors.New("prompt for input failed")
		}

		if err := t.cmds.Call(cmdstr, t); err != nil {
			if _, ok := err.(ExitRequestError); ok {
				return t.handleExit()
			}
			t.log.WithError(err).Debugf("command %q failed", cmdstr)
			fmt.Fprintf(os.Stderr, "Command failed: %s\n", err)
		}
	}
}

// printResult prints a line to the terminal, highlighting the result.
func (t *Term) printResult(prefix, str string) {
	if !t.dumb {
		terminalColorEscapeCode := fmt.Sprintf(terminalHighlightEscapeCode, t.conf.ResultColor)
		str = fmt.Sprintf("%s%s%s", terminalColorEscapeCode, str, terminalResetEscapeCode)
	}
	fmt.Fprintf(t.stdout, "%s%s\n", prefix, str)
}

func (t *Term) promptForInput() (string, error) {
	l, err := t.line.Prompt(t.prompt)
	if err != nil {
		return "", err
	}

	l = strings.TrimSuffix(l, "\n")
	if l != "" {
		t.line.AppendHistory(l)
	}

	return l, nil
}

func (t *Term) handleExit() (int, error) {
	fullHistoryFile, err := config.GetConfigFilePath(historyFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error saving history file:", err)
	} else {
		if f, err := os.OpenFile(fullHistoryFile, os.O_RDWR|os.O_TRUNC, 0666); err == nil {
			_, err = t.line.WriteHistory(f)
			if err != nil {
				fmt.Fprintln(os.Stderr, "readline history error:", err)
			}
			f.Close()
		}
	}
	return 0, nil
}
