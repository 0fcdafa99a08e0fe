package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dealerdesk/dealerdesk/internal/config"
	"github.com/dealerdesk/dealerdesk/internal/logger"
	"github.com/dealerdesk/dealerdesk/internal/store"
)

func init() { //nolint: gochecknoinits
	importCmd.Flags().StringVar(&configPath, "config", "", "Path to the configuration directory")

	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <dealers.json>",
	Short: "Bulk-import dealer records from a JSON list, skipping existing names",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.ReadConfig(configPath)
		if err != nil {
			return err
		}

		if err = logger.Init(cfg.Log); err != nil {
			return err
		}

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrap(err, "failed to read dealer list")
		}

		records, err := decodeDealerList(raw)
		if err != nil {
			return err
		}

		st, err := store.FromConfig(&cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		if err := st.Init(ctx); err != nil {
			return err
		}

		inserted, err := st.UpsertDealers(ctx, records)
		if err != nil {
			return err
		}

		if err := st.Flush(ctx); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "inserted %d dealer(s)\n", inserted)

		return nil
	},
}

// decodeDealerList accepts either a bare JSON array or an object with a
// "dealers" array, matching the historical export formats.
func decodeDealerList(raw []byte) ([]store.ImportRecord, error) {
	var records []store.ImportRecord
	if err := json.Unmarshal(raw, &records); err == nil {
		return records, nil
	}

	var wrapped struct {
		Dealers []store.ImportRecord `json:"dealers"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, errors.Wrap(err, "dealer list is not a JSON array")
	}

	return wrapped.Dealers, nil
}
