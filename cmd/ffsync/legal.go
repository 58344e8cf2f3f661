package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/freefilesync/ffsync/cmd"
	"github.com/freefilesync/ffsync/pkg/ffsync"
)

func legalMain(command *cobra.Command, arguments []string) error {
	fmt.Println(ffsync.LegalNotice)
	return nil
}

var legalCommand = &cobra.Command{
	Use:   "legal",
	Short: "Show legal information",
	Run:   cmd.Mainify(legalMain),
}

var legalConfiguration struct {
	help bool
}

func init() {
	flags := legalCommand.Flags()
	flags.SortFlags = false
	flags.BoolVarP(&legalConfiguration.help, "help", "h", false, "Show help information")
}
