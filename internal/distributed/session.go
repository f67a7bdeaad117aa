package distributed

import (
	"fmt"

	"github.com/grailbio/bigmachine/ec2system"
	"github.com/grailbio/bigslice/exec"
	"github.com/rs/zerolog/log"
)

// Cluster systems the session can run on.
const (
	SystemLocal = "local"
	SystemEC2   = "ec2"
)

// ClusterConfig describes the cluster a session is started on.
// The scheduling itself is owned entirely by bigslice and bigmachine.
type ClusterConfig struct {
	System       string `json:"system"`
	Parallelism  int    `json:"parallelism"`
	InstanceType string `json:"instance_type"`
}

// NewSession starts a bigslice session for the given cluster config.
// The returned session remains valid for the lifetime of the binary.
func NewSession(cfg ClusterConfig) (*exec.Session, error) {
	options := make([]exec.Option, 0, 2)
	switch cfg.System {
	case "", SystemLocal:
		options = append(options, exec.Local)
	case SystemEC2:
		instance := cfg.InstanceType
		if instance == "" {
			instance = "m5.xlarge"
		}
		options = append(options, exec.Bigmachine(&ec2system.System{
			InstanceType: instance,
		}))
	default:
		return nil, fmt.Errorf("unknown cluster system '%s'", cfg.System)
	}
	if cfg.Parallelism > 0 {
		options = append(options, exec.Parallelism(cfg.Parallelism))
	}

	log.Info().
		Str("system", cfg.System).
		Int("parallelism", cfg.Parallelism).
		Str("instance", cfg.InstanceType).
		Msg("starting cluster session")

	return exec.Start(options...), nil
}
