package store

import (
	"sync"
	"testing"
	"time"

	"github.com/holographic-rest/field-kit/internal/model"
	"github.com/holographic-rest/field-kit/internal/qdpi"
)

var testTime = time.Date(2026, 3, 14, 9, 26, 53, 589_000_000, time.UTC)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func appendPayload(t *testing.T, s *Store, episodeID string, p qdpi.Payload) qdpi.Event {
	t.Helper()
	ev, err := qdpi.New(episodeID, p, testTime)
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	out, err := s.Append(ev)
	if err != nil {
		t.Fatalf("append %s: %v", p.EventName(), err)
	}
	return out
}

func TestAppendAssignsGaplessSeq(t *testing.T) {
	s := openTest(t)

	ev1 := appendPayload(t, s, "ep_A", qdpi.TutorialStarted{})
	ev2 := appendPayload(t, s, "ep_A", qdpi.LedgerOpened{})
	ev3 := appendPayload(t, s, "ep_B", qdpi.TutorialStarted{})

	if ev1.Seq != 1 || ev2.Seq != 2 {
		t.Errorf("episode A seqs = %d, %d, want 1, 2", ev1.Seq, ev2.Seq)
	}
	if ev3.Seq != 1 {
		t.Errorf("episode B first seq = %d, want 1", ev3.Seq)
	}
	if got := s.LastSeq("ep_A"); got != 2 {
		t.Errorf("LastSeq(ep_A) = %d, want 2", got)
	}
}

func TestOpenSeedsSeqFromLog(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	appendPayload(t, s, "ep_A", qdpi.TutorialStarted{})
	appendPayload(t, s, "ep_A", qdpi.LedgerOpened{})

	// A second Open of the same directory must resume numbering.
	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	ev := appendPayload(t, s2, "ep_A", qdpi.LedgerOpened{})
	if ev.Seq != 3 {
		t.Errorf("seq after reopen = %d, want 3", ev.Seq)
	}
}

func TestEventsFilterAndOrder(t *testing.T) {
	s := openTest(t)
	appendPayload(t, s, "ep_B", qdpi.TutorialStarted{})
	appendPayload(t, s, "ep_A", qdpi.TutorialStarted{})
	appendPayload(t, s, "ep_A", qdpi.LedgerOpened{})

	onlyA, err := s.Events("ep_A")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(onlyA) != 2 {
		t.Fatalf("episode A events = %d, want 2", len(onlyA))
	}
	if onlyA[0].Seq != 1 || onlyA[1].Seq != 2 {
		t.Errorf("episode A order: %d, %d", onlyA[0].Seq, onlyA[1].Seq)
	}

	all, err := s.Events("")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all events = %d, want 3", len(all))
	}
	if all[0].EpisodeID != "ep_A" || all[2].EpisodeID != "ep_B" {
		t.Errorf("all events not ordered by episode: %s, %s", all[0].EpisodeID, all[2].EpisodeID)
	}
}

func TestSnapshotLatestWriteWins(t *testing.T) {
	s := openTest(t)

	it := model.Item{
		ID:         "it_1",
		EpisodeID:  "ep_A",
		Type:       model.ItemQ,
		Title:      "first",
		Provenance: model.UserProvenance(),
	}
	if err := s.UpsertItem(it); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	it.Title = "second"
	if err := s.UpsertItem(it); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.GetItem("it_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "second" {
		t.Errorf("title = %q, want %q", got.Title, "second")
	}

	items, err := s.Items(ItemFilter{EpisodeID: "ep_A"})
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("items = %d, want 1 after rewrite", len(items))
	}
}

func TestItemFilterExcludesArchived(t *testing.T) {
	s := openTest(t)
	live := model.Item{ID: "it_1", EpisodeID: "ep_A", Type: model.ItemQ, Provenance: model.UserProvenance()}
	gone := model.Item{ID: "it_2", EpisodeID: "ep_A", Type: model.ItemQ, Provenance: model.UserProvenance(), ArchivedAt: "2026-03-14T09:26:53.589Z"}
	if err := s.UpsertItem(live); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertItem(gone); err != nil {
		t.Fatal(err)
	}

	items, err := s.Items(ItemFilter{EpisodeID: "ep_A"})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ID != "it_1" {
		t.Errorf("filter kept archived item: %+v", items)
	}

	all, err := s.Items(ItemFilter{EpisodeID: "ep_A", IncludeArchived: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("with archived = %d, want 2", len(all))
	}
}

func TestGetNotFound(t *testing.T) {
	s := openTest(t)
	_, err := s.GetBond("bd_missing")
	if !IsNotFound(err) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestCommitMarkerNames(t *testing.T) {
	s := openTest(t)
	ev, err := qdpi.New("ep_A", qdpi.TutorialStarted{}, testTime)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Commit(ev); err == nil {
		t.Error("commit accepted a non-commit event")
	}
	if _, err := s.CommitFailed(ev); err == nil {
		t.Error("commit failed accepted a non-failure event")
	}

	commit, err := qdpi.New("ep_A", qdpi.Commit{EpisodeID: "ep_A"}, testTime)
	if err != nil {
		t.Fatal(err)
	}
	appended, err := s.Commit(commit)
	if err != nil {
		t.Fatalf("commit rejected the commit marker: %v", err)
	}
	if appended.Name != qdpi.NameStoreCommit {
		t.Errorf("commit marker name = %q", appended.Name)
	}

	failed, err := qdpi.New("ep_A", qdpi.CommitFailed{Reason: "disk full"}, testTime)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CommitFailed(failed); err != nil {
		t.Errorf("commit failed rejected the failure marker: %v", err)
	}
}

func TestReplayRejectsSeqGap(t *testing.T) {
	events := []qdpi.Event{
		{ID: "ev_1", EpisodeID: "ep_A", Seq: 1, Name: qdpi.NameTutorialStarted},
		{ID: "ev_2", EpisodeID: "ep_A", Seq: 3, Name: qdpi.NameLedgerOpened},
	}
	if _, err := Replay(events); err == nil {
		t.Error("replay accepted a sequence gap")
	}
}

func TestReplayFoldsStructure(t *testing.T) {
	s := openTest(t)
	appendPayload(t, s, "ep_A", qdpi.ItemCreated{ItemID: "it_1", Type: "Q", Title: "alpha"})
	appendPayload(t, s, "ep_A", qdpi.ItemCreated{ItemID: "it_2", Type: "Q", Title: "beta"})
	appendPayload(t, s, "ep_A", qdpi.BondDraftCreated{
		BondID:       "bd_1",
		InputItemIDs: []string{"it_1", "it_2"},
		PromptText:   "combine",
	})
	appendPayload(t, s, "ep_A", qdpi.BondExecuted{
		BondID:         "bd_1",
		InputItemIDs:   []string{"it_1", "it_2"},
		OutputItemID:   "it_3",
		ExecutionCount: 1,
	})
	appendPayload(t, s, "ep_A", qdpi.CreditsDelta{
		Delta:        -10,
		BalanceAfter: 90,
		Reason:       qdpi.ReasonBondRunSpend,
		BondID:       "bd_1",
	})

	p, err := s.Project("ep_A")
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if len(p.Items) != 3 {
		t.Errorf("items = %d, want 3", len(p.Items))
	}
	if p.Items["it_3"].CreatedBy != "bond" {
		t.Errorf("output item created_by = %q", p.Items["it_3"].CreatedBy)
	}
	b := p.Bonds["bd_1"]
	if b == nil || b.Status != "executed" || b.OutputItemID != "it_3" {
		t.Errorf("bond state: %+v", b)
	}
	if p.Balance != -10 {
		t.Errorf("balance fold = %d, want -10", p.Balance)
	}

	// Replaying the same log again yields the same projection.
	p2, err := s.Project("ep_A")
	if err != nil {
		t.Fatalf("project again: %v", err)
	}
	if len(p2.Items) != len(p.Items) || p2.Balance != p.Balance {
		t.Error("replay is not idempotent")
	}
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	s := openTest(t)

	const perEpisode = 25
	episodes := []string{"ep_A", "ep_B", "ep_C"}
	done := make(chan struct{})

	var writers, readers sync.WaitGroup
	for _, ep := range episodes {
		writers.Add(1)
		go func(ep string) {
			defer writers.Done()
			for i := 0; i < perEpisode; i++ {
				ev, err := qdpi.New(ep, qdpi.TutorialStarted{}, testTime)
				if err != nil {
					t.Errorf("new event: %v", err)
					return
				}
				if _, err := s.Append(ev); err != nil {
					t.Errorf("append: %v", err)
					return
				}
				if err := s.UpsertItem(model.Item{ID: "it_" + ep, EpisodeID: ep, Type: model.ItemQ}); err != nil {
					t.Errorf("upsert: %v", err)
					return
				}
			}
		}(ep)
	}

	// Readers run until the writers finish. Every read must parse cleanly
	// even while appends are in flight.
	for r := 0; r < 2; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				if _, err := s.Events(""); err != nil {
					t.Errorf("events during writes: %v", err)
					return
				}
				if _, err := s.Items(ItemFilter{}); err != nil {
					t.Errorf("items during writes: %v", err)
					return
				}
			}
		}()
	}

	writers.Wait()
	close(done)
	readers.Wait()

	for _, ep := range episodes {
		if got := s.LastSeq(ep); got != perEpisode {
			t.Errorf("LastSeq(%s) = %d, want %d", ep, got, perEpisode)
		}
		if _, err := s.Project(ep); err != nil {
			t.Errorf("project %s after concurrent writes: %v", ep, err)
		}
	}
}
