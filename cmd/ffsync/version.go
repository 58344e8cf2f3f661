package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/freefilesync/ffsync/cmd"
	"github.com/freefilesync/ffsync/pkg/ffsync"
)

func versionMain(command *cobra.Command, arguments []string) error {
	fmt.Println(ffsync.Version)
	return nil
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run:   cmd.Mainify(versionMain),
}

var versionConfiguration struct {
	help bool
}

func init() {
	flags := versionCommand.Flags()
	flags.SortFlags = false
	flags.BoolVarP(&versionConfiguration.help, "help", "h", false, "Show help information")
}
