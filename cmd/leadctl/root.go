package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/TRINEXTA/LeadSynch-sub006/internal/bootstrap"
	"github.com/TRINEXTA/LeadSynch-sub006/internal/config"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "leadctl",
		Short:        "Inspect and repair campaign lead assignments",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (env overrides apply)")

	cmd.AddCommand(newVerifyCmd(opts))
	cmd.AddCommand(newReconcileCmd(opts))
	cmd.AddCommand(newSplitPreviewCmd())
	return cmd
}

func (o *rootOptions) open(ctx context.Context) (*bootstrap.Deps, error) {
	cfg, err := config.LoadFromEnv(o.configPath)
	if err != nil {
		return nil, err
	}
	bootstrap.ConfigureLogger(cfg)
	return bootstrap.Open(ctx, cfg)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
