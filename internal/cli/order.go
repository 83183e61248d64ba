package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/riverlabs/streamnet"
)

type orderOpts struct {
	channels     string
	output       string
	format       string
	tolerance    float64
	waterwayTags []string
}

func newOrderCmd(configPath *string) *cobra.Command {
	opts := orderOpts{}

	cmd := &cobra.Command{
		Use:   "order",
		Short: "Compute stream order for every channel segment",
		Long: `Compute stream order for every channel segment.

Order counts the network tips whose flow passes through a segment, so
headwaters carry order 1 and the order grows toward the outlet.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("tolerance") {
				opts.tolerance = cfg.Tolerance
			}
			if !flags.Changed("waterway-tag") && len(cfg.WaterwayTags) > 0 {
				opts.waterwayTags = cfg.WaterwayTags
			}
			return runOrder(cmd.Context(), &opts)
		},
	}

	defaults := defaultConfig()
	cmd.Flags().StringVarP(&opts.channels, "channels", "c", "", "channel layer, GeoJSON or OSM PBF (required)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (required)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "csv", "output format: csv or geojson")
	cmd.Flags().Float64VarP(&opts.tolerance, "tolerance", "t", defaults.Tolerance, "junction unification tolerance in layer units")
	cmd.Flags().StringSliceVar(&opts.waterwayTags, "waterway-tag", nil, "waterway values accepted from PBF input")
	cmd.MarkFlagRequired("channels")
	cmd.MarkFlagRequired("output")

	return cmd
}

func runOrder(ctx context.Context, opts *orderOpts) error {
	logger := loggerFromContext(ctx)

	segments, diags, err := loadChannels(ctx, opts.channels, opts.tolerance, opts.waterwayTags)
	if err != nil {
		return err
	}
	reportDiagnostics(ctx, diags)

	track := newProgress(logger)
	graph, err := streamnet.BuildChannelGraph(segments, opts.tolerance)
	if err != nil {
		return err
	}
	orders := streamnet.OrderStreams(graph)
	track.done(fmt.Sprintf("Ordered %d segments across %d junctions", len(segments), graph.JunctionsNum()))

	switch opts.format {
	case "csv":
		return streamnet.ExportStreamOrdersCSV(graph, orders, opts.output)
	case "geojson":
		data, err := streamnet.ExportStreamOrdersGeoJSON(graph, orders)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.output, data, 0644); err != nil {
			return errors.Wrap(err, "Can't write stream orders")
		}
		return nil
	}
	return fmt.Errorf("unknown format '%s' (want csv or geojson)", opts.format)
}
