// Package policy declares the credit economy and the artifact kind list in
// an embedded CUE document and compiles it at load time. Keeping the
// numbers in CUE rather than Go constants means the policy is data: the
// loader validates shape and sign before anything spends a credit.
package policy

import (
	_ "embed"
	"fmt"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/holographic-rest/field-kit/internal/qdpi"
)

//go:embed policy.cue
var policyCUE string

// Credits holds the delta applied for each credits.delta reason.
type Credits struct {
	Seed                     int64 `json:"seed"`
	ItemCreated              int64 `json:"item_created"`
	BondRunSpend             int64 `json:"bond_run_spend"`
	BondExecutedReward       int64 `json:"bond_executed_reward"`
	BondRunRefund            int64 `json:"bond_run_refund"`
	HolologueRunSpend        int64 `json:"holologue_run_spend"`
	HolologueCompletedReward int64 `json:"holologue_completed_reward"`
	HolologueRunRefund       int64 `json:"holologue_run_refund"`
}

// Policy is the compiled, validated policy document.
type Policy struct {
	Credits       Credits  `json:"credits"`
	ArtifactKinds []string `json:"artifact_kinds"`
}

// Load compiles the embedded policy document.
func Load() (*Policy, error) {
	return Parse(policyCUE)
}

// Parse compiles a policy document from CUE source. Exposed for tests that
// exercise validation with altered documents.
func Parse(src string) (*Policy, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("policy: compile: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("policy: not concrete: %w", err)
	}

	var p Policy
	if err := v.Decode(&p); err != nil {
		return nil, fmt.Errorf("policy: decode: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("policy: %w", err)
	}
	return &p, nil
}

func (p *Policy) validate() error {
	c := p.Credits
	if c.Seed <= 0 {
		return fmt.Errorf("seed must be positive, got %d", c.Seed)
	}
	if c.ItemCreated <= 0 {
		return fmt.Errorf("item_created must be positive, got %d", c.ItemCreated)
	}
	if c.BondRunSpend >= 0 {
		return fmt.Errorf("bond_run_spend must be negative, got %d", c.BondRunSpend)
	}
	if c.HolologueRunSpend >= 0 {
		return fmt.Errorf("holologue_run_spend must be negative, got %d", c.HolologueRunSpend)
	}
	if c.BondExecutedReward <= 0 || c.HolologueCompletedReward <= 0 {
		return fmt.Errorf("rewards must be positive")
	}
	if c.BondRunRefund != -c.BondRunSpend {
		return fmt.Errorf("bond_run_refund %d does not restore spend %d", c.BondRunRefund, c.BondRunSpend)
	}
	if c.HolologueRunRefund != -c.HolologueRunSpend {
		return fmt.Errorf("holologue_run_refund %d does not restore spend %d", c.HolologueRunRefund, c.HolologueRunSpend)
	}
	if len(p.ArtifactKinds) == 0 {
		return fmt.Errorf("artifact_kinds is empty")
	}
	for _, k := range p.ArtifactKinds {
		if k == "" {
			return fmt.Errorf("artifact_kinds contains an empty kind")
		}
	}
	return nil
}

// DeltaFor returns the delta applied for a credits.delta reason.
func (p *Policy) DeltaFor(reason qdpi.Reason) (int64, error) {
	c := p.Credits
	switch reason {
	case qdpi.ReasonSeed:
		return c.Seed, nil
	case qdpi.ReasonItemCreated:
		return c.ItemCreated, nil
	case qdpi.ReasonBondRunSpend:
		return c.BondRunSpend, nil
	case qdpi.ReasonBondExecutedReward:
		return c.BondExecutedReward, nil
	case qdpi.ReasonBondRunRefund:
		return c.BondRunRefund, nil
	case qdpi.ReasonHolologueRunSpend:
		return c.HolologueRunSpend, nil
	case qdpi.ReasonHolologueCompletedReward:
		return c.HolologueCompletedReward, nil
	case qdpi.ReasonHolologueRunRefund:
		return c.HolologueRunRefund, nil
	}
	return 0, fmt.Errorf("policy: no delta for reason %q", reason)
}

// ValidArtifactKind reports whether kind is one of the declared kinds.
func (p *Policy) ValidArtifactKind(kind string) bool {
	return slices.Contains(p.ArtifactKinds, kind)
}
