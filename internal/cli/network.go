package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/riverlabs/streamnet"
)

// networkOpts holds the command-line flags for the network command
type networkOpts struct {
	points       string   // points of interest layer (GeoJSON)
	channels     string   // channel layer (GeoJSON or OSM PBF)
	output       string   // output path or prefix
	format       string   // csv, geojson or text
	pointsField  string   // property carrying point identifiers
	snapDistance float64  // maximum snapping distance
	tolerance    float64  // junction unification tolerance
	direction    string   // downstream or upstream
	branchPolicy string   // strict or enumerate
	workers      int      // parallel snap/trace workers
	snapLines    string   // optional snap movement layer output
	endpoints    bool     // simplified (endpoints only) edge geometry
	waterwayTags []string // waterway values accepted from PBF input
}

// applyConfig fills options from file-backed defaults for every flag the
// user did not set explicitly
func (o *networkOpts) applyConfig(cmd *cobra.Command, cfg Config) {
	flags := cmd.Flags()
	if !flags.Changed("snap-distance") && cfg.SnapDistance > 0 {
		o.snapDistance = cfg.SnapDistance
	}
	if !flags.Changed("tolerance") {
		o.tolerance = cfg.Tolerance
	}
	if !flags.Changed("direction") {
		o.direction = cfg.Direction
	}
	if !flags.Changed("branch-policy") {
		o.branchPolicy = cfg.BranchPolicy
	}
	if !flags.Changed("workers") {
		o.workers = cfg.Workers
	}
	if !flags.Changed("points-field") && cfg.PointsField != "" {
		o.pointsField = cfg.PointsField
	}
	if !flags.Changed("waterway-tag") && len(cfg.WaterwayTags) > 0 {
		o.waterwayTags = cfg.WaterwayTags
	}
}

// detector builds a configured detector from parsed options
func (o *networkOpts) detector(verbose bool) (*streamnet.NetworkDetector, error) {
	direction, err := parseDirection(o.direction)
	if err != nil {
		return nil, err
	}
	policy, err := parseBranchPolicy(o.branchPolicy)
	if err != nil {
		return nil, err
	}
	return streamnet.NewNetworkDetector(
		streamnet.WithMaxSnapDistance(o.snapDistance),
		streamnet.WithJunctionTolerance(o.tolerance),
		streamnet.WithTraceDirection(direction),
		streamnet.WithBranchPolicy(policy),
		streamnet.WithWorkersNum(o.workers),
		streamnet.WithVerbose(verbose),
	), nil
}

func newNetworkCmd(configPath *string) *cobra.Command {
	opts := networkOpts{}

	cmd := &cobra.Command{
		Use:   "network",
		Short: "Detect the connectivity network between points of interest",
		Long: `Detect the connectivity network between points of interest over channel geometry.

Points are snapped onto the nearest channel within --snap-distance, then each
point is traced along flow direction until the next point or a network outlet.

Examples:
  streamnet network --points wells.geojson --channels rivers.geojson --snap-distance 50 -o net.csv
  streamnet network --points wells.geojson --channels waterways.osm.pbf --snap-distance 50 --format geojson -o net
  streamnet network --points wells.geojson --channels rivers.geojson --snap-distance 50 --format text -o -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			opts.applyConfig(cmd, cfg)
			if opts.snapDistance <= 0 {
				return fmt.Errorf("--snap-distance is required and must be positive")
			}
			return runNetwork(cmd.Context(), &opts)
		},
	}

	defaults := defaultConfig()
	cmd.Flags().StringVarP(&opts.points, "points", "p", "", "points of interest layer, GeoJSON (required)")
	cmd.Flags().StringVarP(&opts.channels, "channels", "c", "", "channel layer, GeoJSON or OSM PBF (required)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output path or prefix, '-' for stdout with text format (required)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "csv", "output format: csv, geojson or text")
	cmd.Flags().StringVar(&opts.pointsField, "points-field", "", "point property used as identifier (feature index if empty)")
	cmd.Flags().Float64VarP(&opts.snapDistance, "snap-distance", "d", 0, "maximum snapping distance in layer units (required)")
	cmd.Flags().Float64VarP(&opts.tolerance, "tolerance", "t", defaults.Tolerance, "junction unification tolerance in layer units")
	cmd.Flags().StringVar(&opts.direction, "direction", defaults.Direction, "trace direction: downstream or upstream")
	cmd.Flags().StringVar(&opts.branchPolicy, "branch-policy", defaults.BranchPolicy, "divergence handling: strict or enumerate")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", defaults.Workers, "parallel snap and trace workers")
	cmd.Flags().StringVar(&opts.snapLines, "snap-line", "", "also write snap movement lines to this GeoJSON file")
	cmd.Flags().BoolVar(&opts.endpoints, "endpoints", false, "export simplified edge geometry (straight source to target lines)")
	cmd.Flags().StringSliceVar(&opts.waterwayTags, "waterway-tag", nil, "waterway values accepted from PBF input (default river,stream,canal,drain,ditch,tidal_channel)")
	cmd.MarkFlagRequired("points")
	cmd.MarkFlagRequired("channels")
	cmd.MarkFlagRequired("output")

	return cmd
}

func runNetwork(ctx context.Context, opts *networkOpts) error {
	logger := loggerFromContext(ctx)

	segments, channelDiags, err := loadChannels(ctx, opts.channels, opts.tolerance, opts.waterwayTags)
	if err != nil {
		return err
	}
	points, pointDiags, err := loadPoints(opts.points, opts.pointsField)
	if err != nil {
		return err
	}
	ingest := append(channelDiags, pointDiags...)
	reportDiagnostics(ctx, ingest)
	logger.Debugf("Loaded %d channel segments and %d points", len(segments), len(points))

	detector, err := opts.detector(logger.GetLevel() <= charmlog.DebugLevel)
	if err != nil {
		return err
	}
	logger.Debug(detector.String())

	track := newProgress(logger)
	net, err := detector.Detect(ctx, segments, points, ingest...)
	if err != nil {
		return err
	}
	track.done(fmt.Sprintf("Detected network: %d nodes, %d edges, %d diagnostics", len(net.Nodes), len(net.Edges), len(net.Diagnostics)))
	logger.Debugf("Run %s", net.RunID)

	if opts.snapLines != "" {
		data, err := streamnet.ExportSnapLinesGeoJSON(points)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.snapLines, data, 0644); err != nil {
			return errors.Wrap(err, "Can't write snap lines")
		}
	}

	switch opts.format {
	case "csv":
		return net.ExportToCSV(opts.output, opts.endpoints)
	case "geojson":
		return writeNetworkGeoJSON(net, opts.output, opts.endpoints)
	case "text":
		if opts.output == "-" {
			return net.WriteConnections(os.Stdout)
		}
		file, err := os.Create(opts.output)
		if err != nil {
			return errors.Wrap(err, "Can't create file")
		}
		defer file.Close()
		return net.WriteConnections(file)
	}
	return fmt.Errorf("unknown format '%s' (want csv, geojson or text)", opts.format)
}

// writeNetworkGeoJSON writes '<prefix>_nodes.geojson' and
// '<prefix>_edges.geojson' next to each other
func writeNetworkGeoJSON(net *streamnet.NetworkGraph, prefix string, simplified bool) error {
	nodes, err := net.ExportNodesGeoJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(prefix+"_nodes.geojson", nodes, 0644); err != nil {
		return errors.Wrap(err, "Can't write nodes")
	}
	edges, err := net.ExportEdgesGeoJSON(simplified)
	if err != nil {
		return err
	}
	if err := os.WriteFile(prefix+"_edges.geojson", edges, 0644); err != nil {
		return errors.Wrap(err, "Can't write edges")
	}
	return nil
}
