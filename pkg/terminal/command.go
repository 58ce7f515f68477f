// Package terminal implements functions for responding to user
// input and dispatching to the encoder and decoder.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/cosiner/argv"
	"github.com/derekparker/trie"

	"github.com/go-delve/uleb128/pkg/bytefmt"
	"github.com/go-delve/uleb128/pkg/leb128"
)

type cmdfunc func(t *Term, args []string) error

type command struct {
	aliases        []string
	builtinAliases []string
	helpMsg        string
	cmdFn          cmdfunc
}

// Returns true if the command string matches one of the aliases for this command
func (c command) match(cmdstr string) bool {
	for _, v := range c.aliases {
		if v == cmdstr {
			return true
		}
	}
	return false
}

// Commands represents the commands for the uleb128 terminal.
type Commands struct {
	cmds  []command
	index *trie.Trie
}

// ExitRequestError is returned when the user
// exits the terminal.
type ExitRequestError struct{}

func (ere ExitRequestError) Error() string {
	return ""
}

// DefaultCommands returns a Commands struct with default commands defined.
func DefaultCommands() *Commands {
	c := &Commands{}

	c.cmds = []command{
		{aliases: []string{"help", "h"}, cmdFn: c.help, helpMsg: `Prints the help message.

	help [command]

Type "help" followed by the name of a command for more information about it.`},
		{aliases: []string{"encode", "e"}, cmdFn: encodeCmd, helpMsg: `Encodes values.

	encode <value>...

Values are decimal or carry a 0x, 0o or 0b prefix and must fit in the
current width (see "help width").`},
		{aliases: []string{"decode", "d"}, cmdFn: decodeCmd, helpMsg: `Decodes a sequence of encoded values.

	decode <bytes>...

Bytes are hex, optionally separated by spaces, commas or colons:

	decode e5 8e 26
	decode 0xac,0x02,0x7f
`},
		{aliases: []string{"size", "s"}, cmdFn: sizeCmd, helpMsg: `Prints the encoded length of values.

	size <value>...`},
		{aliases: []string{"width", "w"}, cmdFn: widthCmd, helpMsg: `Shows or sets the target width.

	width [8|16|32|64|ptr]`},
		{aliases: []string{"canonical"}, cmdFn: canonicalCmd, helpMsg: `Shows or sets whether decode rejects non-canonical encodings.

	canonical [on|off]`},
		{aliases: []string{"format"}, cmdFn: formatCmd, helpMsg: `Shows or sets how encoded bytes are printed.

	format [hex|go]`},
		{aliases: []string{"config"}, cmdFn: configureCmd, helpMsg: `Changes configuration parameters.

	config -list

Show all configuration parameters.

	config -save

Saves the configuration file to disk, overwriting the current configuration file.

	config <parameter> <value>

Changes the value of a configuration parameter.

	config <parameter>

Shows the value of a configuration parameter.

	config alias <command> <alias>
	config alias <alias>

Defines <alias> as an alias to <command> or removes an alias.`},
		{aliases: []string{"source"}, cmdFn: c.sourceCommand, helpMsg: `Executes a file containing a list of terminal commands.

	source <path>`},
		{aliases: []string{"exit", "quit", "q"}, cmdFn: exitCommand, helpMsg: "Exit the terminal."},
	}

	sort.Sort(byFirstAlias(c.cmds))
	c.buildIndex()
	return c
}

// byFirstAlias will sort by the first
// alias of a command.
type byFirstAlias []command

func (a byFirstAlias) Len() int           { return len(a) }
func (a byFirstAlias) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byFirstAlias) Less(i, j int) bool { return a[i].aliases[0] < a[j].aliases[0] }

func (c *Commands) buildIndex() {
	c.index = trie.New()
	for i := range c.cmds {
		for _, alias := range c.cmds[i].aliases {
			c.index.Add(alias, i)
		}
	}
}

// Find will look up the command function for the given command input.
// Exact aliases win; otherwise an unambiguous prefix of a command name
// selects it.
func (c *Commands) Find(cmdstr string) (cmdfunc, error) {
	if cmdstr == "" {
		return nullCommand, nil
	}

	for _, v := range c.cmds {
		if v.match(cmdstr) {
			return v.cmdFn, nil
		}
	}

	matches := map[int]bool{}
	var names []string
	for _, key := range c.index.PrefixSearch(cmdstr) {
		node, ok := c.index.Find(key)
		if !ok {
			continue
		}
		i := node.Meta().(int)
		if !matches[i] {
			matches[i] = true
			names = append(names, c.cmds[i].aliases[0])
		}
	}
	switch len(names) {
	case 0:
		return nil, noCmdError
	case 1:
		for i := range matches {
			return c.cmds[i].cmdFn, nil
		}
	}
	sort.Strings(names)
	return nil, fmt.Errorf("ambiguous command %q: %s", cmdstr, strings.Join(names, ", "))
}

// Complete returns the command names and aliases starting with line.
func (c *Commands) Complete(line string) []string {
	line = strings.ToLower(line)
	if strings.ContainsAny(line, " \t") {
		return nil
	}
	r := c.index.PrefixSearch(line)
	sort.Strings(r)
	return r
}

// Call takes a command to execute.
func (c *Commands) Call(cmdstr string, t *Term) error {
	cmdstr = strings.TrimSpace(cmdstr)
	if cmdstr == "" {
		return nil
	}
	v, err := argv.Argv(cmdstr,
		func(s string) (string, error) {
			return "", fmt.Errorf("backtick not supported in '%s'", s)
		},
		nil)
	if err != nil {
		return err
	}
	if len(v) != 1 {
		return fmt.Errorf("illegal command line '%s'", cmdstr)
	}
	if len(v[0]) == 0 {
		return nil
	}
	cmdFn, err := c.Find(v[0][0])
	if err != nil {
		return err
	}
	t.log.Debugf("command %q args %q", v[0][0], v[0][1:])
	return cmdFn(t, v[0][1:])
}

// Merge takes aliases defined in the config struct and merges them with the default aliases.
func (c *Commands) Merge(allAliases map[string][]string) {
	for i := range c.cmds {
		if c.cmds[i].builtinAliases != nil {
			c.cmds[i].aliases = append(c.cmds[i].aliases[:0], c.cmds[i].builtinAliases...)
		}
	}
	for i := range c.cmds {
		if aliases, ok := allAliases[c.cmds[i].aliases[0]]; ok {
			if c.cmds[i].builtinAliases == nil {
				c.cmds[i].builtinAliases = make([]string, len(c.cmds[i].aliases))
				copy(c.cmds[i].builtinAliases, c.cmds[i].aliases)
			}
			c.cmds[i].aliases = append(c.cmds[i].aliases, aliases...)
		}
	}
	c.buildIndex()
}

var noCmdError = errors.New("command not available")

func nullCommand(t *Term, args []string) error {
	return nil
}

func exitCommand(t *Term, args []string) error {
	return ExitRequestError{}
}

func (c *Commands) help(t *Term, args []string) error {
	if len(args) > 0 {
		for _, cmd := range c.cmds {
			if cmd.match(args[0]) {
				fmt.Fprintln(t.stdout, cmd.helpMsg)
				return nil
			}
		}
		return noCmdError
	}

	fmt.Fprintln(t.stdout, "The following commands are available:")
	w := new(tabwriter.Writer)
	w.Init(t.stdout, 0, 8, 0, '-', 0)
	for _, cmd := range c.cmds {
		h := cmd.helpMsg
		if idx := strings.Index(h, "\n"); idx >= 0 {
			h = h[:idx]
		}
		if len(cmd.aliases) > 1 {
			fmt.Fprintf(w, "    %s (alias: %s) \t %s\n", cmd.aliases[0], strings.Join(cmd.aliases[1:], " | "), h)
		} else {
			fmt.Fprintf(w, "    %s \t %s\n", cmd.aliases[0], h)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(t.stdout)
	fmt.Fprintln(t.stdout, "Type help followed by a command for full documentation.")
	return nil
}

func encodeCmd(t *Term, args []string) error {
	if len(args) == 0 {
		return errors.New("not enough arguments, usage: encode <value>...")
	}
	for _, arg := range args {
		v, err := bytefmt.ParseUint(arg, int(t.width))
		if err != nil {
			return err
		}
		enc := leb128.Encode(v)
		t.printResult(fmt.Sprintf("%d = ", v), fmt.Sprintf("%s (%d bytes)", bytefmt.Format(enc, t.style), len(enc)))
	}
	return nil
}

func decodeCmd(t *Term, args []string) error {
	if len(args) == 0 {
		return errors.New("not enough arguments, usage: decode <bytes>...")
	}
	buf, err := bytefmt.Parse(strings.Join(args, " "))
	if err != nil {
		return err
	}
	if len(buf) == 0 {
		return errors.New("no bytes to decode")
	}
	d := t.decoder()
	off := 0
	for off < len(buf) {
		v, n, err := d.Decode(buf[off:])
		if err != nil {
			return fmt.Errorf("decoding at offset %d: %w", off, err)
		}
		t.printResult(fmt.Sprintf("%s = ", bytefmt.Format(buf[off:off+n], t.style)), fmt.Sprintf("%d (%#x, %d bytes)", v, v, n))
		off += n
	}
	return nil
}

func sizeCmd(t *Term, args []string) error {
	if len(args) == 0 {
		return errors.New("not enough arguments, usage: size <value>...")
	}
	for _, arg := range args {
		v, err := bytefmt.ParseUint(arg, int(t.width))
		if err != nil {
			return err
		}
		t.printResult(fmt.Sprintf("%d = ", v), fmt.Sprintf("%d bytes", leb128.Size(v)))
	}
	return nil
}

func widthCmd(t *Term, args []string) error {
	switch len(args) {
	case 0:
		fmt.Fprintf(t.stdout, "width %d (at most %d bytes)\n", t.width, t.width.MaxLen())
		return nil
	case 1:
		w, err := leb128.ParseWidth(args[0])
		if err != nil {
			return err
		}
		t.width = w
		return nil
	}
	return errors.New("too many arguments, usage: width [8|16|32|64|ptr]")
}

func canonicalCmd(t *Term, args []string) error {
	switch len(args) {
	case 0:
		fmt.Fprintf(t.stdout, "canonical %v\n", t.canonical)
		return nil
	case 1:
		switch args[0] {
		case "on", "true":
			t.canonical = true
		case "off", "false":
			t.canonical = false
		default:
			return fmt.Errorf("argument to canonical must be on or off, not %q", args[0])
		}
		return nil
	}
	return errors.New("too many arguments, usage: canonical [on|off]")
}

func formatCmd(t *Term, args []string) error {
	switch len(args) {
	case 0:
		name := "hex"
		if t.style == bytefmt.GoSyntax {
			name = "go"
		}
		fmt.Fprintf(t.stdout, "format %s\n", name)
		return nil
	case 1:
		style, err := bytefmt.ParseStyle(args[0])
		if err != nil {
			return err
		}
		t.style = style
		return nil
	}
	return errors.New("too many arguments, usage: format [hex|go]")
}

func (c *Commands) sourceCommand(t *Term, args []string) error {
	if len(args) != 1 {
		return errors.New("wrong number of arguments: source <filename>")
	}
	return c.executeFile(t, args[0])
}

func (c *Commands) executeFile(t *Term, name string) error {
	fh, err := os.Open(name)
	if err != nil {
		return err
	}
	defer fh.Close()

	scanner := bufio.NewScanner(fh)
	lineno := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineno++

		if line == "" || line[0] == '#' {
			continue
		}

		if err := c.Call(line, t); err != nil {
			if _, isExitRequest := err.(ExitRequestError); isExitRequest {
				return err
			}
			fmt.Fprintf(t.stdout, "%s:%d: %v\n", name, lineno, err)
		}
	}

	return scanner.Err()
}
