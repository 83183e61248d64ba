package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/riverlabs/streamnet"
)

type snapOpts struct {
	points       string
	channels     string
	output       string
	pointsField  string
	snapLines    string
	snapDistance float64
	tolerance    float64
	workers      int
	waterwayTags []string
}

func newSnapCmd(configPath *string) *cobra.Command {
	opts := snapOpts{}

	cmd := &cobra.Command{
		Use:   "snap",
		Short: "Snap points of interest onto the nearest channel",
		Long: `Snap points of interest onto the nearest channel within --snap-distance
and write the moved points with their snap attributes as GeoJSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("snap-distance") && cfg.SnapDistance > 0 {
				opts.snapDistance = cfg.SnapDistance
			}
			if !flags.Changed("tolerance") {
				opts.tolerance = cfg.Tolerance
			}
			if !flags.Changed("workers") {
				opts.workers = cfg.Workers
			}
			if !flags.Changed("points-field") && cfg.PointsField != "" {
				opts.pointsField = cfg.PointsField
			}
			if !flags.Changed("waterway-tag") && len(cfg.WaterwayTags) > 0 {
				opts.waterwayTags = cfg.WaterwayTags
			}
			if opts.snapDistance <= 0 {
				return fmt.Errorf("--snap-distance is required and must be positive")
			}
			return runSnap(cmd.Context(), &opts)
		},
	}

	defaults := defaultConfig()
	cmd.Flags().StringVarP(&opts.points, "points", "p", "", "points of interest layer, GeoJSON (required)")
	cmd.Flags().StringVarP(&opts.channels, "channels", "c", "", "channel layer, GeoJSON or OSM PBF (required)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output GeoJSON file (required)")
	cmd.Flags().StringVar(&opts.pointsField, "points-field", "", "point property used as identifier (feature index if empty)")
	cmd.Flags().Float64VarP(&opts.snapDistance, "snap-distance", "d", 0, "maximum snapping distance in layer units (required)")
	cmd.Flags().Float64VarP(&opts.tolerance, "tolerance", "t", defaults.Tolerance, "vertex collapse tolerance in layer units")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", defaults.Workers, "parallel snap workers")
	cmd.Flags().StringVar(&opts.snapLines, "snap-line", "", "also write snap movement lines to this GeoJSON file")
	cmd.Flags().StringSliceVar(&opts.waterwayTags, "waterway-tag", nil, "waterway values accepted from PBF input")
	cmd.MarkFlagRequired("points")
	cmd.MarkFlagRequired("channels")
	cmd.MarkFlagRequired("output")

	return cmd
}

func runSnap(ctx context.Context, opts *snapOpts) error {
	logger := loggerFromContext(ctx)

	segments, channelDiags, err := loadChannels(ctx, opts.channels, opts.tolerance, opts.waterwayTags)
	if err != nil {
		return err
	}
	points, pointDiags, err := loadPoints(opts.points, opts.pointsField)
	if err != nil {
		return err
	}
	reportDiagnostics(ctx, append(channelDiags, pointDiags...))

	track := newProgress(logger)
	index := streamnet.NewSegmentIndex(segments, opts.tolerance)
	snapDiags, err := streamnet.SnapPoints(ctx, points, index, opts.snapDistance, opts.workers)
	if err != nil {
		return err
	}
	reportDiagnostics(ctx, snapDiags)
	track.done(fmt.Sprintf("Snapped %d points (%d missed)", len(points)-len(snapDiags), len(snapDiags)))

	data, err := streamnet.ExportSnappedPointsGeoJSON(points)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, data, 0644); err != nil {
		return errors.Wrap(err, "Can't write snapped points")
	}

	if opts.snapLines != "" {
		lines, err := streamnet.ExportSnapLinesGeoJSON(points)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.snapLines, lines, 0644); err != nil {
			return errors.Wrap(err, "Can't write snap lines")
		}
	}
	return nil
}
