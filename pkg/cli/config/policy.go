package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/payops-lab/mtnavigator/pkg/domain/model"
	"github.com/payops-lab/mtnavigator/pkg/domain/types"
	"github.com/payops-lab/mtnavigator/pkg/policy"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Policy holds CLI flags for policy table overrides
type Policy struct {
	configPath string
}

// policyFile is the TOML shape of a policy override file
type policyFile struct {
	SLA       map[string]slaOverride `toml:"sla"`
	Templates map[string]string      `toml:"template"`
}

type slaOverride struct {
	Acknowledgment  int `toml:"acknowledgment"`
	InitialResearch int `toml:"initial_research"`
	Correspondence  int `toml:"correspondence"`
	FollowUp        int `toml:"follow_up"`
	Resolution      int `toml:"resolution"`
}

// Flags returns CLI flags for policy configuration
func (p *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy-config",
			Usage:       "Path to a TOML file with SLA and template overrides",
			Sources:     cli.EnvVars("MTNAV_POLICY_CONFIG"),
			Destination: &p.configPath,
		},
	}
}

// Configure builds the policy table, applying overrides from the configured
// TOML file if one was given
func (p *Policy) Configure() (*policy.Table, error) {
	if p.configPath == "" {
		return policy.New(), nil
	}

	// #nosec G304 - path is provided by CLI argument
	data, err := os.ReadFile(p.configPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read policy config", goerr.V("path", p.configPath))
	}

	var file policyFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse policy config", goerr.V("path", p.configPath))
	}

	var opts []policy.Option
	for name, sla := range file.SLA {
		t := types.WorkcaseType(name)
		if !t.IsValid() {
			return nil, goerr.New("unknown workcase type in policy config",
				goerr.V("workcase_type", name))
		}
		opts = append(opts, policy.WithSLAOverride(t, model.SLASchedule{
			Acknowledgment:  sla.Acknowledgment,
			InitialResearch: sla.InitialResearch,
			Correspondence:  sla.Correspondence,
			FollowUp:        sla.FollowUp,
			Resolution:      sla.Resolution,
		}))
	}
	for name, tmpl := range file.Templates {
		t := types.WorkcaseType(name)
		if !t.IsValid() {
			return nil, goerr.New("unknown workcase type in policy config",
				goerr.V("workcase_type", name))
		}
		opts = append(opts, policy.WithTemplateOverride(t, tmpl))
	}

	return policy.New(opts...), nil
}
