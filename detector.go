package streamnet

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

const (
	// DEFAULT_JUNCTION_TOLERANCE is the endpoint matching distance used when no
	// tolerance has been configured. Matches typical digitizing noise for
	// degree-based coordinate systems; projected layers usually need a bigger one.
	DEFAULT_JUNCTION_TOLERANCE = 0.0000005
	DEFAULT_WORKERS_NUM        = 4
)

// NetworkDetector runs the full detection pipeline: spatial index and channel
// graph construction, point snapping, flow tracing and network assembly.
type NetworkDetector struct {
	maxSnapDistance   float64
	junctionTolerance float64
	direction         TraceDirection
	branchPolicy      BranchPolicy
	workersNum        int
	verbose           bool
}

func (detector *NetworkDetector) String() string {
	return fmt.Sprintf(`
Network detector parameters:
	max_snap_distance: %f
	junction_tolerance: %f
	trace_direction: '%s'
	branch_policy: '%s'
	workers_num: %d
	`,
		detector.maxSnapDistance,
		detector.junctionTolerance,
		detector.direction,
		detector.branchPolicy,
		detector.workersNum,
	)
}

// NewNetworkDetector prepares detector with given options.
// WithMaxSnapDistance is mandatory: there is no sane default since snapping
// distance depends entirely on feature scale and coordinate units.
func NewNetworkDetector(options ...func(*NetworkDetector)) *NetworkDetector {
	detector := &NetworkDetector{
		junctionTolerance: DEFAULT_JUNCTION_TOLERANCE,
		direction:         TRACE_DOWNSTREAM,
		branchPolicy:      BRANCH_STRICT_FAIL,
		workersNum:        DEFAULT_WORKERS_NUM,
	}
	for _, option := range options {
		option(detector)
	}
	return detector
}

func WithMaxSnapDistance(maxSnapDistance float64) func(*NetworkDetector) {
	return func(detector *NetworkDetector) {
		detector.maxSnapDistance = maxSnapDistance
	}
}

func WithJunctionTolerance(junctionTolerance float64) func(*NetworkDetector) {
	return func(detector *NetworkDetector) {
		detector.junctionTolerance = junctionTolerance
	}
}

func WithTraceDirection(direction TraceDirection) func(*NetworkDetector) {
	return func(detector *NetworkDetector) {
		detector.direction = direction
	}
}

func WithBranchPolicy(branchPolicy BranchPolicy) func(*NetworkDetector) {
	return func(detector *NetworkDetector) {
		detector.branchPolicy = branchPolicy
	}
}

func WithWorkersNum(workersNum int) func(*NetworkDetector) {
	return func(detector *NetworkDetector) {
		detector.workersNum = workersNum
	}
}

func WithVerbose(verbose bool) func(*NetworkDetector) {
	return func(detector *NetworkDetector) {
		detector.verbose = verbose
	}
}

// validate checks configuration against its own constraints
func (detector *NetworkDetector) validate() error {
	if detector.maxSnapDistance <= 0 {
		return errors.Wrap(ErrBadConfiguration, "max snap distance must be positive")
	}
	if detector.junctionTolerance < 0 {
		return errors.Wrap(ErrBadConfiguration, "junction tolerance must not be negative")
	}
	if detector.direction != TRACE_DOWNSTREAM && detector.direction != TRACE_UPSTREAM {
		return errors.Wrap(ErrBadConfiguration, "unknown trace direction")
	}
	if detector.branchPolicy != BRANCH_STRICT_FAIL && detector.branchPolicy != BRANCH_ENUMERATE_ALL {
		return errors.Wrap(ErrBadConfiguration, "unknown branch policy")
	}
	return nil
}

// Detect runs the whole pipeline over prepared channel segments and points of
// interest. Extra diagnostics collected during feature ingestion may be passed
// through so the assembled network carries every skip-and-report record.
// Points get their SnapResult populated as a side effect; the rest of the
// inputs stay untouched (upstream tracing works on reversed copies).
func (detector *NetworkDetector) Detect(ctx context.Context, segments []*ChannelSegment, points []*PointOfInterest, ingestDiagnostics ...Diagnostic) (*NetworkGraph, error) {
	if err := detector.validate(); err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, errors.Wrap(ErrEmptyChannels, "can't detect network")
	}

	if detector.direction == TRACE_UPSTREAM {
		reversed := make([]*ChannelSegment, len(segments))
		for i, segment := range segments {
			reversed[i] = segment.reversed()
		}
		segments = reversed
	}

	st := time.Now()
	index := NewSegmentIndex(segments, detector.junctionTolerance)
	if detector.verbose {
		fmt.Printf("Building spatial index... Done in %v\n", time.Since(st))
	}

	st = time.Now()
	graph, err := BuildChannelGraph(segments, detector.junctionTolerance)
	if err != nil {
		return nil, errors.Wrap(err, "Can't build channel graph")
	}
	if detector.verbose {
		fmt.Printf("Building channel graph... Done in %v\n\tSegments: %d\n\tJunctions: %d\n", time.Since(st), len(graph.Segments()), graph.JunctionsNum())
	}

	st = time.Now()
	snapDiagnostics, err := SnapPoints(ctx, points, index, detector.maxSnapDistance, detector.workersNum)
	if err != nil {
		return nil, errors.Wrap(err, "Can't snap points")
	}
	if detector.verbose {
		fmt.Printf("Snapping points... Done in %v\n\tPoints: %d\n\tUnsnapped: %d\n", time.Since(st), len(points), len(snapDiagnostics))
	}

	st = time.Now()
	tracer := NewTracer(graph, points, detector.branchPolicy)
	edges, traceDiagnostics, err := tracer.TraceAll(ctx, points, detector.workersNum)
	if err != nil {
		return nil, errors.Wrap(err, "Can't trace network")
	}
	if detector.verbose {
		fmt.Printf("Tracing connections... Done in %v\n\tEdges: %d\n", time.Since(st), len(edges))
	}

	diagnostics := make([]Diagnostic, 0, len(ingestDiagnostics)+len(snapDiagnostics)+len(traceDiagnostics))
	diagnostics = append(diagnostics, ingestDiagnostics...)
	diagnostics = append(diagnostics, snapDiagnostics...)
	diagnostics = append(diagnostics, traceDiagnostics...)
	return BuildNetworkGraph(graph, points, edges, diagnostics), nil
}
