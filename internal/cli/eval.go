package cli

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"termsheet/internal/errs"
	"termsheet/internal/grid"
	"termsheet/internal/storage"
)

func newEvalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval [flags] file [ADDR...]",
		Short: "print evaluated cells of a sheet file.",
		Long: `Evaluate cells of a saved sheet and print one ADDR<TAB>value line
per cell. Without addresses every stored cell is printed in address order.
Cells that fail to evaluate print their error placeholder, e.g. #LOOP!.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(cmd); err != nil {
				return err
			}
			s, err := storage.Load(args[0])
			if err != nil {
				return err
			}

			addrs := s.Addresses()
			if len(args) > 1 {
				addrs = addrs[:0]
				for _, arg := range args[1:] {
					addr, err := grid.Parse(arg)
					if err != nil {
						return err
					}
					addrs = append(addrs, addr)
				}
			}

			out := cmd.OutOrStdout()
			for _, addr := range addrs {
				text, err := s.Get(addr).EvaluatedText()
				if err != nil {
					log.WithError(err).WithField("cell", addr.String()).Debug("evaluation failed")
					text = errs.Placeholder(err)
				}
				fmt.Fprintf(out, "%s\t%s\n", addr, text)
			}
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [flags] file out.csv",
		Short: "write the evaluated values of a sheet file as CSV.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(cmd); err != nil {
				return err
			}
			s, err := storage.Load(args[0])
			if err != nil {
				return err
			}
			if err := storage.ExportCSV(s, args[1]); err != nil {
				return err
			}
			cols, rows := s.Bounds()
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %dx%d values to %s\n", cols, rows, args[1])
			return nil
		},
	}
}
