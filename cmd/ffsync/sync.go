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
	"github.com/freefilesync/ffsync/pkg/synchronize"
)

func syncMain(command *cobra.Command, arguments []string) error {
	if len(arguments) != 1 {
		return errors.New("invalid number of arguments (expected a single configuration file path)")
	}

	config, err := configuration.Load(arguments[0])
	if err != nil {
		return errors.Wrap(err, "unable to load configuration")
	}

	var printer cmd.StatusLinePrinter

	results, err := engine.Run(context.Background(), engine.Options{
		Config: config,
		Progress: func(index int, snapshot synchronize.Snapshot) {
			printer.Print(fmt.Sprintf(
				"Pair %d: %d/%d objects, %s/%s, ETA %s",
				index, snapshot.DoneObjects, snapshot.TotalObjects,
				humanize.Bytes(uint64(snapshot.DoneBytes)), humanize.Bytes(uint64(snapshot.TotalBytes)),
				snapshot.ETA,
			))
		},
	})
	printer.Clear()
	if err != nil {
		return errors.Wrap(err, "synchronization failed")
	}

	var anyErr bool
	for _, result := range results {
		if result.Err != nil {
			anyErr = true
			cmd.Error(errors.Wrapf(result.Err, "folder pair %d", result.Index))
			continue
		}
		fmt.Printf("Folder pair %d: %s\n", result.Index, result.Phase)
		for _, w := range result.Warnings {
			cmd.Warning(w)
		}
	}
	if anyErr {
		return errors.New("one or more folder pairs failed to synchronize")
	}

	return nil
}

var syncCommand = &cobra.Command{
	Use:   "sync <configuration.yaml>",
	Short: "Synchronize configured folder pairs",
	Args:  cobra.ExactArgs(1),
	Run:   cmd.Mainify(syncMain),
}

var syncConfiguration struct {
	help bool
}

func init() {
	flags := syncCommand.Flags()
	flags.SortFlags = false
	flags.BoolVarP(&syncConfiguration.help, "help", "h", false, "Show help information")
}
