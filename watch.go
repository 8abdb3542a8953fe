package main

import (
	"context"

	"github.com/spf13/cobra"

	"imgtext/process/batch"
	"imgtext/process/report"
	"imgtext/process/watch"
)

func (a *app) watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Extract text from images already in DIR and from new ones as they arrive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.watch(cmd.Context(), args[0])
		},
	}
	cmd.Flags().StringVarP(&a.cfg.Output, "output", "o", "", "Append extracted text to this file")
	return cmd
}

func (a *app) watch(ctx context.Context, dir string) error {
	ex, err := a.extractor()
	if err != nil {
		return err
	}
	proc := batch.New(ex, a.stdout, a.logger)
	opts := batch.Options{Language: a.cfg.Language, Config: a.cfg.EngineConfig}

	w := watch.New(dir, a.logger)
	return w.Run(ctx, func(ctx context.Context, path string) {
		res, ok := proc.ProcessOne(ctx, path, opts)
		if !ok || a.cfg.Output == "" {
			return
		}
		if err := report.AppendBlock(a.cfg.Output, report.Block{Path: res.Path, Text: res.Text}); err != nil {
			a.logger.Error("saving result failed", "path", path, "output", a.cfg.Output, "err", err)
		}
	})
}
