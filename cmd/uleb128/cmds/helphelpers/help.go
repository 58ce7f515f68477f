package helphelpers

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Prepare prepares cmd flag set for the invocation of its usage function by
// hiding flags that we want cobra to parse but we don't want to show to the
// user.
// The codec flags live on the root command so that they can be given
// before or after the subcommand name, but not all of them apply to every
// subcommand.
//
// For example:
//
//	uleb128 --canonical size 300
//
// must parse successfully even though --canonical has no effect on size.
//
// Prepare is a destructive command, cmd can not be reused after it has been
// called.
func Prepare(cmd *cobra.Command) {
	switch cmd.Name() {
	case "help", "log", "version":
		hideAllFlags(cmd)
	case "encode":
		hideFlag(cmd, "canonical")
	case "decode", "stream":
		hideFlag(cmd, "format")
	case "size":
		hideFlag(cmd, "canonical")
		hideFlag(cmd, "format")
	case "uleb128", "repl":
		// All flags apply
	}
}

func hideAllFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().VisitAll(func(flag *pflag.Flag) {
		flag.Hidden = true
	})
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Hidden = true
	})
}

func hideFlag(cmd *cobra.Command, name string) {
	if cmd == nil {
		return
	}
	flag := cmd.Flags().Lookup(name)
	if flag != nil {
		flag.Hidden = true
		return
	}
	hideFlag(cmd.Parent(), name)
}
