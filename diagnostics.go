package streamnet

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidGeometry is returned when a feature geometry can't form a channel segment
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrEmptyChannels is returned when the channels layer contains no usable features
	ErrEmptyChannels = errors.New("no channel features")
	// ErrBadConfiguration is returned when detector options violate their own constraints
	ErrBadConfiguration = errors.New("bad configuration")
)

type DiagnosticKind uint16

const (
	DIAGNOSTIC_INVALID_GEOMETRY = DiagnosticKind(iota + 1)
	DIAGNOSTIC_UNSNAPPED
	DIAGNOSTIC_AMBIGUOUS_BRANCH
	DIAGNOSTIC_CYCLE_DETECTED
)

func (iotaIdx DiagnosticKind) String() string {
	return [...]string{"invalid_geometry", "unsnapped", "ambiguous_branch", "cycle_detected"}[iotaIdx-1]
}

// Diagnostic is a non-fatal condition met during network detection.
// Every point of interest excluded from the result is covered by at least one diagnostic.
type Diagnostic struct {
	Kind      DiagnosticKind
	PointID   string
	SegmentID SegmentID
	Message   string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: point '%s' segment '%d': %s", d.Kind, d.PointID, d.SegmentID, d.Message)
}
