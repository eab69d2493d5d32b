package epicore

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// ModelConfig is the top-level TOML configuration consumed by
// bin/epicore-run, grounded on the teacher's EvoEpiConfig/
// LoadSingleHostConfig pair (utils.go, evoepi_config.go).
type ModelConfig struct {
	Sim     SimConfig          `toml:"simulation"`
	Log     LogConfig          `toml:"logging"`
	Viruses []VirusConfig      `toml:"virus"`
	Tools   []ToolConfig       `toml:"tool"`

	validated bool
}

// SimConfig holds run-level parameters.
type SimConfig struct {
	NetworkPath  string `toml:"network_path"`
	Directed     bool   `toml:"directed"`
	SkipLines    int    `toml:"skip_lines"`
	NumDays      int    `toml:"num_days"`
	NumReplicates int   `toml:"num_replicates"`
	NumThreads   int    `toml:"num_threads"`
	Seed         int64  `toml:"seed"`
	UseQueue     bool   `toml:"use_queue"`
}

// LogConfig holds output parameters.
type LogConfig struct {
	Path   string `toml:"path"`
	Logger string `toml:"logger"` // "csv" | "sqlite"
}

// VirusConfig configures one VirusDef to be registered on the Model.
type VirusConfig struct {
	Name             string  `toml:"name"`
	Transmission     float64 `toml:"transmission"`
	Recovery         float64 `toml:"recovery"`
	Death            float64 `toml:"death"`
	Init, Post, Rm   int     `toml:"-"`
	InitState        int     `toml:"init_state"`
	PostState        int     `toml:"post_state"`
	RmState          int     `toml:"rm_state"`
	Prevalence       float64 `toml:"prevalence"`
}

// ToolConfig configures one ToolDef to be registered on the Model.
type ToolConfig struct {
	Name                    string  `toml:"name"`
	SusceptibilityReduction float64 `toml:"susceptibility_reduction"`
	TransmissionReduction   float64 `toml:"transmission_reduction"`
	RecoveryEnhancer        float64 `toml:"recovery_enhancer"`
	DeathReduction          float64 `toml:"death_reduction"`
	Prevalence              float64 `toml:"prevalence"`
}

// LoadModelConfig decodes a TOML configuration file, mirroring the
// teacher's utils.go LoadSingleHostConfig (toml.DecodeFile).
func LoadModelConfig(path string) (*ModelConfig, error) {
	cfg := new(ModelConfig)
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, IOError(path, err)
	}
	return cfg, nil
}

// BuildModel constructs a ready-to-run Model from a validated
// ModelConfig and a parsed network: registers the canonical
// Susceptible/Infected/Recovered states (AddSIRStates), then each
// configured virus and tool with constant-probability hooks drawn from
// the TOML values.
func BuildModel(conf *ModelConfig, net *Network) (*Model, error) {
	if !conf.validated {
		if err := conf.Validate(); err != nil {
			return nil, err
		}
	}

	m := NewModel(net)
	if conf.Sim.UseQueue {
		m.EnableQueue()
	}
	m.AddAgents(net.Size())

	if err := AddSIRStates(m); err != nil {
		return nil, err
	}

	for _, vc := range conf.Viruses {
		v, err := NewVirusDef(vc.Name, Infected, Infected, Recovered)
		if err != nil {
			return nil, err
		}
		v.Transmission = ConstTransmission(vc.Transmission)
		v.Recovery = ConstRecovery(vc.Recovery)
		v.Death = ConstDeath(vc.Death)
		if _, err := m.AddVirus(v, vc.Prevalence); err != nil {
			return nil, err
		}
	}

	for _, tc := range conf.Tools {
		t := NewToolDef(tc.Name)
		t.SusceptibilityReduction = constEffect(tc.SusceptibilityReduction)
		t.TransmissionReduction = constEffect(tc.TransmissionReduction)
		t.RecoveryEnhancer = constEffect(tc.RecoveryEnhancer)
		t.DeathReduction = constEffect(tc.DeathReduction)
		if _, err := m.AddTool(t, tc.Prevalence); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func constEffect(v float64) func(*Model, AgentID, VirusID) float64 {
	return func(*Model, AgentID, VirusID) float64 { return v }
}

// Validate checks the configuration for obvious mistakes, mirroring
// the teacher's EvoEpiConfig.Validate.
func (c *ModelConfig) Validate() error {
	if c.Sim.NetworkPath == "" {
		return ConfigError("simulation.network_path must be set")
	}
	if c.Sim.NumDays <= 0 {
		return ConfigError("simulation.num_days must be >= 1")
	}
	if c.Sim.NumReplicates <= 0 {
		c.Sim.NumReplicates = 1
	}
	for _, v := range c.Viruses {
		if v.Prevalence < 0 || v.Prevalence > 1 {
			return errors.Wrapf(ConfigError("virus %q prevalence out of range", v.Name),
				"validating virus %s", v.Name)
		}
	}
	switch strings.ToLower(c.Log.Logger) {
	case "", "csv", "sqlite":
	default:
		return ConfigError("logging.logger %q must be csv or sqlite", c.Log.Logger)
	}
	c.validated = true
	return nil
}
