package cli

import (
	"fmt"
	"io"
	"os"
	"sort"

	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.geojson>",
		Short: "Summarize a GeoJSON layer",
		Long:  `Summarize a GeoJSON layer: feature count, geometry types and the property keys available for --points-field.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0], cmd.OutOrStdout())
		},
	}
}

func runInspect(path string, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "Can't read '%s'", path)
	}
	collection, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return errors.Wrapf(err, "Can't parse '%s'", path)
	}

	geometryTypes := map[string]int{}
	propertyKeys := map[string]struct{}{}
	for _, feature := range collection.Features {
		kind := "empty"
		if feature.Geometry != nil {
			kind = string(feature.Geometry.Type)
		}
		geometryTypes[kind]++
		for key := range feature.Properties {
			propertyKeys[key] = struct{}{}
		}
	}

	fmt.Fprintf(out, "Features: %d\n", len(collection.Features))
	kinds := make([]string, 0, len(geometryTypes))
	for kind := range geometryTypes {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(out, "\t%s: %d\n", kind, geometryTypes[kind])
	}
	keys := make([]string, 0, len(propertyKeys))
	for key := range propertyKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	fmt.Fprintf(out, "Property keys: %d\n", len(keys))
	for _, key := range keys {
		fmt.Fprintf(out, "\t%s\n", key)
	}
	return nil
}
