package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holographic-rest/field-kit/internal/qdpi"
)

func TestLoadEmbedded(t *testing.T) {
	p, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(100), p.Credits.Seed)
	assert.Equal(t, int64(1), p.Credits.ItemCreated)
	assert.Equal(t, int64(-10), p.Credits.BondRunSpend)
	assert.Equal(t, int64(3), p.Credits.BondExecutedReward)
	assert.Equal(t, int64(-20), p.Credits.HolologueRunSpend)
	assert.Equal(t, int64(5), p.Credits.HolologueCompletedReward)

	assert.ElementsMatch(t,
		[]string{"plan", "checklist", "spec_fragment", "experiment", "story_beat"},
		p.ArtifactKinds)
}

func TestDeltaForCoversEveryReason(t *testing.T) {
	p, err := Load()
	require.NoError(t, err)

	for _, reason := range qdpi.Reasons {
		_, err := p.DeltaFor(reason)
		assert.NoError(t, err, "reason %s", reason)
	}

	_, err = p.DeltaFor("credits.bonus")
	assert.Error(t, err)
}

func TestTypicalEpisodeBalance(t *testing.T) {
	// Two items, two bond runs, one holologue: the worked-through session
	// from the walkthrough ends at 73 credits.
	p, err := Load()
	require.NoError(t, err)

	c := p.Credits
	balance := c.Seed +
		2*c.ItemCreated +
		2*(c.BondRunSpend+c.BondExecutedReward) +
		c.HolologueRunSpend + c.HolologueCompletedReward
	assert.Equal(t, int64(73), balance)
}

func TestParseRejectsBadDocuments(t *testing.T) {
	cases := map[string]string{
		"positive spend": `
			credits: {
				seed: 100, item_created: 1
				bond_run_spend: 10, bond_executed_reward: 3, bond_run_refund: -10
				holologue_run_spend: -20, holologue_completed_reward: 5, holologue_run_refund: 20
			}
			artifact_kinds: ["plan"]`,
		"refund mismatch": `
			credits: {
				seed: 100, item_created: 1
				bond_run_spend: -10, bond_executed_reward: 3, bond_run_refund: 5
				holologue_run_spend: -20, holologue_completed_reward: 5, holologue_run_refund: 20
			}
			artifact_kinds: ["plan"]`,
		"no artifact kinds": `
			credits: {
				seed: 100, item_created: 1
				bond_run_spend: -10, bond_executed_reward: 3, bond_run_refund: 10
				holologue_run_spend: -20, holologue_completed_reward: 5, holologue_run_refund: 20
			}
			artifact_kinds: []`,
		"not concrete": `
			credits: {
				seed: int, item_created: 1
				bond_run_spend: -10, bond_executed_reward: 3, bond_run_refund: 10
				holologue_run_spend: -20, holologue_completed_reward: 5, holologue_run_refund: 20
			}
			artifact_kinds: ["plan"]`,
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(src)
			assert.Error(t, err)
		})
	}
}

func TestValidArtifactKind(t *testing.T) {
	p, err := Load()
	require.NoError(t, err)

	assert.True(t, p.ValidArtifactKind("plan"))
	assert.False(t, p.ValidArtifactKind("sonnet"))
}
