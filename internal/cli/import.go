package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/chronoduo/reportjob/internal/store"
	"github.com/chronoduo/reportjob/internal/store/sqlite"
	"github.com/spf13/cobra"
)

var importCmd = LeafCommand{
	Use:   "import",
	Short: "Load a JSON dataset into the database",
	StrFlags: []StringFlag{
		{Name: "file", Usage: "dataset file (kunden, mitarbeitende, tageszeiten, feiertage)"},
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			return errors.New("--file is required")
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		return runImport(cmd, a.store, file)
	},
}.Build()

type importer interface {
	Import(ctx context.Context, ds store.Dataset) error
}

func runImport(cmd *cobra.Command, dst importer, file string) error {
	ds, err := sqlite.ReadDataset(file)
	if err != nil {
		return err
	}
	if err := dst.Import(commandContext(cmd), ds); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d clients, %d employees, %d time records, %d holidays\n",
		len(ds.Clients), len(ds.Employees), len(ds.Records), len(ds.Holidays))
	return nil
}
