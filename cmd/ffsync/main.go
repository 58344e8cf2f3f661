package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/freefilesync/ffsync/cmd"
	"github.com/freefilesync/ffsync/pkg/ffsync"
	"github.com/freefilesync/ffsync/pkg/logging"
	"github.com/freefilesync/ffsync/pkg/must"
)

func rootMain(command *cobra.Command, arguments []string) {
	// Print version information, if requested.
	if rootConfiguration.version {
		fmt.Println(ffsync.Version)
		return
	}

	// Print legal information, if requested.
	if rootConfiguration.legal {
		fmt.Print(ffsync.LegalNotice)
		return
	}

	// Generate bash completion script, if requested.
	if rootConfiguration.bashCompletionScript != "" {
		if err := command.GenBashCompletionFile(rootConfiguration.bashCompletionScript); err != nil {
			cmd.Fatal(err)
		}
		return
	}

	// If no flags were set, then print help information and bail. Arguments
	// can't reach this point: they're mistaken for subcommands and a error
	// is displayed.
	must.CommandHelp(command, logging.RootLogger)
}

var rootCommand = &cobra.Command{
	Use:   "ffsync",
	Short: "ffsync compares and synchronizes two folders, bidirectionally or one-way.",
	Run:   rootMain,
}

var rootConfiguration struct {
	help                 bool
	version              bool
	legal                bool
	bashCompletionScript string
}

func init() {
	// Bind flags to configuration. We manually add help to override the
	// default message, but Cobra still implements it automatically.
	flags := rootCommand.Flags()
	flags.BoolVarP(&rootConfiguration.help, "help", "h", false, "Show help information")
	flags.BoolVarP(&rootConfiguration.version, "version", "V", false, "Show version information")
	flags.BoolVarP(&rootConfiguration.legal, "legal", "l", false, "Show legal information")
	flags.StringVar(&rootConfiguration.bashCompletionScript, "generate-bash-completion", "", "Generate bash completion script")
	flags.MarkHidden("generate-bash-completion")

	// Disable Cobra's command sorting behavior. By default, it sorts
	// commands alphabetically in the help output.
	cobra.EnableCommandSorting = false

	// Disable Cobra's use of mousetrap, which otherwise enforces that the
	// CLI only be launched from a console.
	cobra.MousetrapHelpText = ""

	// Register commands in display order.
	rootCommand.AddCommand(
		compareCommand,
		syncCommand,
		versionCommand,
		legalCommand,
	)
}

func main() {
	cmd.HandleTerminalCompatibility()

	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
