package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/freefilesync/ffsync/cmd"
	"github.com/freefilesync/ffsync/pkg/configuration"
	"github.com/freefilesync/ffsync/pkg/engine"
)

func compareMain(command *cobra.Command, arguments []string) error {
	if len(arguments) != 1 {
		return errors.New("invalid number of arguments (expected a single configuration file path)")
	}

	config, err := configuration.Load(arguments[0])
	if err != nil {
		return errors.Wrap(err, "unable to load configuration")
	}

	results, err := engine.Run(context.Background(), engine.Options{
		Config: config,
		DryRun: true,
	})
	if err != nil {
		return errors.Wrap(err, "comparison failed")
	}

	var anyErr bool
	for _, result := range results {
		if result.Err != nil {
			anyErr = true
			cmd.Error(errors.Wrapf(result.Err, "folder pair %d", result.Index))
			continue
		}
		fmt.Printf(
			"Folder pair %d: %d object(s), %s to synchronize\n",
			result.Index, result.Plan.TotalObjects, humanize.Bytes(uint64(result.Plan.TotalBytes)),
		)
		for _, c := range result.Plan.Conflicts {
			fmt.Printf("  conflict: %s: %s\n", c.RelPath, c.Message)
		}
		for _, w := range result.Warnings {
			cmd.Warning(w)
		}
	}
	if anyErr {
		return errors.New("one or more folder pairs failed to compare")
	}

	return nil
}

var compareCommand = &cobra.Command{
	Use:   "compare <configuration.yaml>",
	Short: "Compare configured folder pairs without modifying either side",
	Args:  cobra.ExactArgs(1),
	Run:   cmd.Mainify(compareMain),
}

var compareConfiguration struct {
	help bool
}

func init() {
	flags := compareCommand.Flags()
	flags.SortFlags = false
	flags.BoolVarP(&compareConfiguration.help, "help", "h", false, "Show help information")
}
