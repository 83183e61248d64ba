package cli

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/riverlabs/streamnet"
)

// defaultConfigFile is picked up from the working directory when no
// explicit --config path is given.
const defaultConfigFile = "streamnet.toml"

// Config holds file-backed defaults for detection options. Explicit
// command-line flags always win over values from the file.
type Config struct {
	SnapDistance float64  `toml:"snap_distance"`
	Tolerance    float64  `toml:"tolerance"`
	Direction    string   `toml:"direction"`
	BranchPolicy string   `toml:"branch_policy"`
	Workers      int      `toml:"workers"`
	PointsField  string   `toml:"points_field"`
	WaterwayTags []string `toml:"waterway_tags"`
}

func defaultConfig() Config {
	return Config{
		Tolerance:    streamnet.DEFAULT_JUNCTION_TOLERANCE,
		Direction:    "downstream",
		BranchPolicy: "strict",
		Workers:      streamnet.DEFAULT_WORKERS_NUM,
	}
}

// loadConfig reads TOML defaults from path. An empty path falls back to
// streamnet.toml in the working directory and a missing fallback file is
// not an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "Can't read configuration from '%s'", path)
	}
	return cfg, nil
}
