package main

import (
	"github.com/spf13/cobra"

	_ "github.com/joshuapare/serialbox/archive/binary"
	"github.com/joshuapare/serialbox/serializer"
)

var dumpArchiveName string

func init() {
	cmd := &cobra.Command{
		Use:   "dump <directory> <prefix>",
		Short: "List every registered field and savepoint in a catalog",
		Args:  cobra.ExactArgs(2),
		RunE:  runDump,
	}
	cmd.Flags().StringVar(&dumpArchiveName, "archive", "Binary", "archive backend name recorded in the catalog")
	rootCmd.AddCommand(cmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	s, err := serializer.New(serializer.Read, args[0], args[1], dumpArchiveName)
	if err != nil {
		return err
	}
	defer s.Close()

	printInfo("fields:\n")
	for _, name := range s.Fields() {
		info, err := s.FieldInfo(name)
		if err != nil {
			printError("%s: %v\n", name, err)
			continue
		}
		printInfo("  %-24s %-10s dims=%v\n", name, info.Type, info.Dims)
	}

	printInfo("savepoints:\n")
	for _, sp := range s.Savepoints() {
		printInfo("  %s\n", sp.Name)
	}
	return nil
}
