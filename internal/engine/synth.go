package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/holographic-rest/field-kit/internal/model"
)

// Synthesis is the single output of a synthesis call. Both interface
// methods return exactly one of these, so a run cannot produce a second
// output item no matter what the implementation does.
type Synthesis struct {
	Title string
	Body  string
}

// TransformRequest carries a bond run to the synthesizer.
type TransformRequest struct {
	PromptText string
	Inputs     []model.Item
}

// SynthesizeRequest carries a holologue run to the synthesizer.
type SynthesizeRequest struct {
	Selected     []model.Item
	ArtifactKind string
}

// Synthesizer produces output content for bond and holologue runs. An
// error from either method is an execution failure: the caller refunds the
// spend and records the failure event.
type Synthesizer interface {
	Transform(ctx context.Context, req TransformRequest) (Synthesis, error)
	Synthesize(ctx context.Context, req SynthesizeRequest) (Synthesis, error)
}

// StubSynthesizer is the default deterministic synthesizer. Output is
// templated from the inputs, so the same request always yields the same
// content. Suitable for local use and golden traces; a model-backed
// implementation slots in behind the same interface.
type StubSynthesizer struct{}

func (StubSynthesizer) Transform(_ context.Context, req TransformRequest) (Synthesis, error) {
	if len(req.Inputs) == 0 {
		return Synthesis{}, fmt.Errorf("transform: no inputs")
	}

	titles := make([]string, len(req.Inputs))
	for i, it := range req.Inputs {
		titles[i] = it.Title
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Response to: %s\n\n", req.PromptText)
	for _, it := range req.Inputs {
		fmt.Fprintf(&body, "Drawing on %q: %s\n", it.Title, firstLine(it.Body))
	}

	return Synthesis{
		Title: fmt.Sprintf("Re: %s", strings.Join(titles, " + ")),
		Body:  body.String(),
	}, nil
}

func (StubSynthesizer) Synthesize(_ context.Context, req SynthesizeRequest) (Synthesis, error) {
	if len(req.Selected) < 2 {
		return Synthesis{}, fmt.Errorf("synthesize: need at least 2 items, got %d", len(req.Selected))
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Synthesis (%s) of %d items.\n\n", req.ArtifactKind, len(req.Selected))
	for i, it := range req.Selected {
		fmt.Fprintf(&body, "%d. %s: %s\n", i+1, it.Title, firstLine(it.Body))
	}

	return Synthesis{
		Title: fmt.Sprintf("%s from %d items", kindTitle(req.ArtifactKind), len(req.Selected)),
		Body:  body.String(),
	}, nil
}

func kindTitle(kind string) string {
	s := strings.ReplaceAll(kind, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return "(no body)"
	}
	return s
}
