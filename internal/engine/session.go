package engine

import (
	"fmt"

	"github.com/holographic-rest/field-kit/internal/model"
	"github.com/holographic-rest/field-kit/internal/qdpi"
	"github.com/holographic-rest/field-kit/internal/store"
)

// Session names the active network and episode. Every operation takes one
// explicitly; there is no process-wide current episode.
type Session struct {
	NetworkID string
	EpisodeID string
}

// Init opens the data directory for the first time: creates the Network
// and Episode 0 snapshots, seeds the credit balance, and commits. Calling
// Init on an already-initialized directory resumes the existing session
// without writing anything.
func (e *Engine) Init(title string) (Session, error) {
	nets, err := e.store.Networks()
	if err != nil {
		return Session{}, err
	}
	if len(nets) > 0 {
		return e.Resume()
	}

	if title == "" {
		title = "Field Kit"
	}
	now := qdpi.Timestamp(e.now())
	networkID := e.ids.NewID(qdpi.PrefixNetwork)
	episodeID := e.ids.NewID(qdpi.PrefixEpisode)

	if _, err := e.append(episodeID, qdpi.FirstRunStarted{}); err != nil {
		return Session{}, err
	}
	if _, err := e.append(episodeID, qdpi.EpisodeCreated{
		EpisodeID: episodeID,
		Title:     "Episode 0",
		Ordinal:   0,
	}); err != nil {
		return Session{}, err
	}

	network := model.Network{
		ID:              networkID,
		Title:           title,
		RootEpisodeID:   episodeID,
		ActiveEpisodeID: episodeID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	episode := model.Episode{
		ID:        episodeID,
		NetworkID: networkID,
		Title:     "Episode 0",
		Ordinal:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.UpsertNetwork(network); err != nil {
		e.commitFailed(episodeID, err.Error())
		return Session{}, err
	}
	if err := e.store.UpsertEpisode(episode); err != nil {
		e.commitFailed(episodeID, err.Error())
		return Session{}, err
	}

	if _, err := e.appendDelta(episodeID, qdpi.ReasonSeed, nil); err != nil {
		e.commitFailed(episodeID, err.Error())
		return Session{}, err
	}
	if err := e.commit(episodeID, "", []string{networkID, episodeID}); err != nil {
		return Session{}, err
	}

	e.log.Info("first run initialized", "network", networkID, "episode", episodeID)
	return Session{NetworkID: networkID, EpisodeID: episodeID}, nil
}

// Resume returns the session for an already-initialized data directory.
func (e *Engine) Resume() (Session, error) {
	nets, err := e.store.Networks()
	if err != nil {
		return Session{}, err
	}
	if len(nets) == 0 {
		return Session{}, &store.NotFoundError{Kind: "network", ID: "(any)"}
	}
	n := nets[0]
	episodeID := n.ActiveEpisodeID
	if episodeID == "" {
		episodeID = n.RootEpisodeID
	}
	if episodeID == "" {
		return Session{}, fmt.Errorf("network %s has no episode", n.ID)
	}
	return Session{NetworkID: n.ID, EpisodeID: episodeID}, nil
}

// StartTutorial records the tutorial entry point. Events-only: no snapshot
// changes, so no commit marker.
func (e *Engine) StartTutorial(sess Session) (qdpi.Event, error) {
	return e.append(sess.EpisodeID, qdpi.TutorialStarted{})
}
