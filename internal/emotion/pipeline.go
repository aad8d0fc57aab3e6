package emotion

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultStepTimeout = 5 * time.Second

// Classifier is the single capability interface every classification path
// implements. The pipeline tries an ordered list of these, so fallback
// logic lives in one place instead of at every call site.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, text string) (Result, error)
}

// Pipeline runs classifiers in order until one succeeds. Each step gets
// its own timeout, so an abandoned remote call still resolves through the
// next step instead of hanging the request.
type Pipeline struct {
	steps       []Classifier
	stepTimeout time.Duration
}

// NewPipeline creates a Pipeline over the given steps. The final step
// should be a LexiconClassifier so classification always resolves.
func NewPipeline(steps ...Classifier) *Pipeline {
	return &Pipeline{steps: steps, stepTimeout: defaultStepTimeout}
}

// Classify returns exactly one Result for a non-empty text.
// Errors from any step other than the last are soft failures: logged and
// fallen through, never surfaced to the caller.
func (p *Pipeline) Classify(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrInvalidInput
	}

	for _, step := range p.steps {
		stepCtx, cancel := context.WithTimeout(ctx, p.stepTimeout)
		res, err := step.Classify(stepCtx, text)
		cancel()
		if err != nil {
			slog.Warn("classification step failed, falling through", "step", step.Name(), "error", err)
			continue
		}
		res.normalize()
		slog.Debug("classification resolved", "step", step.Name(), "emotion", res.Emotion)
		return res, nil
	}

	// Unreachable when the pipeline ends with a lexicon step; kept so a
	// misconfigured pipeline still yields a usable result.
	return Result{Emotion: Neutral, Confidence: 0.4, Provenance: ProvenanceLexicon}, nil
}

// ClassifyBatch classifies independent texts concurrently with bounded
// parallelism. Texts belonging to one session must not be batched here:
// per-session ordering is the caller's responsibility.
func (p *Pipeline) ClassifyBatch(ctx context.Context, texts []string) ([]Result, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	results := make([]Result, len(texts))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			res, err := p.Classify(gCtx, text)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
