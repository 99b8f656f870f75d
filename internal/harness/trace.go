package harness

import (
	"fmt"
	"strings"

	"github.com/holographic-rest/field-kit/internal/qdpi"
	"github.com/holographic-rest/field-kit/internal/testutil"
)

// RenderTrace renders events as one line each: sequence, name, tag,
// direction, and the facts that matter for the event. Ids are shortened to
// their sequential label form, and timestamps are omitted, so a trace from
// a deterministic run is byte-stable.
func RenderTrace(events []qdpi.Event) string {
	var b strings.Builder
	for _, ev := range events {
		fmt.Fprintf(&b, "%03d %s %s %s", ev.Seq, ev.Name, ev.QDPI, ev.Direction)
		if facts := renderFacts(ev); facts != "" {
			b.WriteByte(' ')
			b.WriteString(facts)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func renderFacts(ev qdpi.Event) string {
	var f []string
	add := func(format string, args ...any) {
		f = append(f, fmt.Sprintf(format, args...))
	}
	label := func(key string) string {
		return testutil.Label(qdpi.RefString(ev.Refs, key))
	}
	labels := func(key string) string {
		ids := qdpi.RefStrings(ev.Refs, key)
		short := make([]string, len(ids))
		for i, id := range ids {
			short[i] = testutil.Label(id)
		}
		return "[" + strings.Join(short, ",") + "]"
	}

	switch ev.Name {
	case qdpi.NameEpisodeCreated:
		ordinal, _ := qdpi.RefInt(ev.Refs, "ordinal")
		add("title=%q ordinal=%d", qdpi.RefString(ev.Refs, "title"), ordinal)

	case qdpi.NameItemCreated:
		add("item=%s type=%s title=%q", label("item_id"),
			qdpi.RefString(ev.Refs, "type"), qdpi.RefString(ev.Refs, "title"))

	case qdpi.NameBondSuggestionsPresented:
		add("item=%s recipes=%d", label("item_id"), suggestionCount(ev.Refs))

	case qdpi.NameBondDraftCreated:
		add("bond=%s inputs=%s", label("bond_id"), labels("input_item_ids"))
		if origin := qdpi.RefString(ev.Refs, "origin"); origin != "" {
			add("origin=%s", origin)
		}

	case qdpi.NameBondRunRequested:
		add("bond=%s", label("bond_id"))

	case qdpi.NameBondExecuted:
		count, _ := qdpi.RefInt(ev.Refs, "execution_count")
		add("bond=%s output=%s count=%d", label("bond_id"), label("output_item_id"), count)

	case qdpi.NameBondExecutionFailed:
		add("bond=%s reason=%q", label("bond_id"), qdpi.RefString(ev.Refs, "reason"))

	case qdpi.NameHolologueRunRequested:
		add("selected=%s kind=%s", labels("selected_item_ids"),
			qdpi.RefString(ev.Refs, "artifact_kind"))

	case qdpi.NameHolologueValidationFailed, qdpi.NameHolologueFailed, qdpi.NameStoreCommitFailed:
		add("reason=%q", qdpi.RefString(ev.Refs, "reason"))

	case qdpi.NameHolologueCompleted:
		add("output=%s kind=%s", label("output_item_id"),
			qdpi.RefString(ev.Refs, "artifact_kind"))

	case qdpi.NameBondProposalsPresented:
		source, _ := ev.Refs["source"].(map[string]any)
		add("source=%s recipes=%d",
			testutil.Label(qdpi.RefString(source, "output_item_id")),
			suggestionCount(ev.Refs))

	case qdpi.NameStoreCommit:
		if item := qdpi.RefString(ev.Refs, "item_id"); item != "" {
			add("item=%s", testutil.Label(item))
		}
		if ids := qdpi.RefStrings(ev.Refs, "modified_ids"); len(ids) > 0 {
			add("modified=%s", labels("modified_ids"))
		}

	case qdpi.NameCreditsDelta:
		delta, _ := qdpi.RefInt(ev.Refs, "delta")
		after, _ := qdpi.RefInt(ev.Refs, "balance_after")
		add("delta=%+d balance=%d reason=%s", delta, after, qdpi.RefString(ev.Refs, "reason"))
		if id := qdpi.RefString(ev.Refs, "item_id"); id != "" {
			add("item=%s", testutil.Label(id))
		}
		if id := qdpi.RefString(ev.Refs, "bond_id"); id != "" {
			add("bond=%s", testutil.Label(id))
		}
		if id := qdpi.RefString(ev.Refs, "output_item_id"); id != "" {
			add("output=%s", testutil.Label(id))
		}
	}
	return strings.Join(f, " ")
}

func suggestionCount(refs map[string]any) int {
	list, _ := refs["suggestions"].([]any)
	return len(list)
}
