package main

import (
	"github.com/spf13/cobra"

	_ "github.com/joshuapare/serialbox/archive/binary"
	"github.com/joshuapare/serialbox/serializer"
)

var infoArchiveName string

func init() {
	cmd := &cobra.Command{
		Use:   "info <directory> <prefix>",
		Short: "Print a summary of a checkpoint archive's catalog",
		Args:  cobra.ExactArgs(2),
		RunE:  runInfo,
	}
	cmd.Flags().StringVar(&infoArchiveName, "archive", "Binary", "archive backend name recorded in the catalog")
	rootCmd.AddCommand(cmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	s, err := serializer.New(serializer.Read, args[0], args[1], infoArchiveName)
	if err != nil {
		return err
	}
	defer s.Close()

	fields := s.Fields()
	savepoints := s.Savepoints()

	printInfo("directory:   %s\n", args[0])
	printInfo("prefix:      %s\n", args[1])
	printInfo("fields:      %d\n", len(fields))
	printInfo("savepoints:  %d\n", len(savepoints))
	printInfo("global meta: %d keys\n", s.GlobalMetaInfo().Size())
	return nil
}
