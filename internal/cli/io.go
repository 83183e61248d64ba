package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/riverlabs/streamnet"
)

// loadChannels reads channel segments from a GeoJSON file or, for ".pbf"
// inputs, imports OSM waterways split at shared nodes.
func loadChannels(ctx context.Context, path string, tolerance float64, waterwayTags []string) ([]*streamnet.ChannelSegment, []streamnet.Diagnostic, error) {
	if strings.HasSuffix(strings.ToLower(path), ".pbf") {
		cfg := streamnet.DefaultWaterwayConfiguration()
		if len(waterwayTags) > 0 {
			cfg.Tags = waterwayTags
		}
		verbose := loggerFromContext(ctx).GetLevel() <= charmlog.DebugLevel
		return streamnet.ImportChannelsFromOSMFile(path, cfg, tolerance, verbose)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "Can't read channels from '%s'", path)
	}
	return streamnet.LoadChannelsGeoJSON(data, tolerance)
}

// loadPoints reads points of interest from a GeoJSON file, identifiers
// taken from idField when set.
func loadPoints(path, idField string) ([]*streamnet.PointOfInterest, []streamnet.Diagnostic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "Can't read points from '%s'", path)
	}
	return streamnet.LoadPointsGeoJSON(data, idField)
}

func parseDirection(s string) (streamnet.TraceDirection, error) {
	switch s {
	case "downstream":
		return streamnet.TRACE_DOWNSTREAM, nil
	case "upstream":
		return streamnet.TRACE_UPSTREAM, nil
	}
	return 0, fmt.Errorf("unknown direction '%s' (want downstream or upstream)", s)
}

func parseBranchPolicy(s string) (streamnet.BranchPolicy, error) {
	switch s {
	case "strict":
		return streamnet.BRANCH_STRICT_FAIL, nil
	case "enumerate":
		return streamnet.BRANCH_ENUMERATE_ALL, nil
	}
	return 0, fmt.Errorf("unknown branch policy '%s' (want strict or enumerate)", s)
}

// reportDiagnostics logs ingest diagnostics so skipped features are visible
// even when the run succeeds.
func reportDiagnostics(ctx context.Context, diagnostics []streamnet.Diagnostic) {
	logger := loggerFromContext(ctx)
	for _, d := range diagnostics {
		logger.Warn(d.String())
	}
}
