package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"scamshield/internal/domain"
	"scamshield/internal/generator"
	"scamshield/internal/metrics"
)

const (
	DetectionFailed      = "Detection failed."
	ClassificationFailed = "Classification failed."
)

// Pipeline validates a request, builds its prompt, makes one generation
// call and normalizes the reply. It holds no per-request state.
type Pipeline struct {
	generator generator.Generator
	log       *zap.Logger
	metrics   *metrics.Metrics
}

func New(g generator.Generator, log *zap.Logger, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		generator: g,
		log:       log,
		metrics:   m,
	}
}

func (p *Pipeline) ClassifyURL(ctx context.Context, url string) (*domain.Result, error) {
	return p.Classify(ctx, domain.NewURLRequest(url))
}

func (p *Pipeline) DetectFakeNews(ctx context.Context, text string) (*domain.Result, error) {
	return p.Classify(ctx, domain.NewTextRequest(domain.TaskNewsVeracity, text))
}

func (p *Pipeline) DetectScam(ctx context.Context, filename, text string) (*domain.Result, error) {
	return p.Classify(ctx, domain.NewDocumentRequest(filename, text))
}

func (p *Pipeline) Classify(ctx context.Context, req domain.Request) (*domain.Result, error) {
	input, err := Validate(req)
	if err != nil {
		p.metrics.Observe(string(req.Task), metrics.OutcomeRejected)
		return nil, err
	}

	prompt, err := BuildPrompt(req.Task, input)
	if err != nil {
		p.metrics.Observe(string(req.Task), metrics.OutcomeRejected)
		return nil, err
	}

	start := time.Now()
	reply, err := p.generator.Generate(ctx, prompt)
	p.metrics.GenerationDuration.WithLabelValues(string(req.Task)).Observe(time.Since(start).Seconds())

	if err != nil {
		p.metrics.Observe(string(req.Task), metrics.OutcomeUpstream)
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}

	result := &domain.Result{Task: req.Task, Input: input, Output: Normalize(reply)}

	if result.Output == "" {
		result.Output = Fallback(req.Task)
		result.Fallback = true
		p.metrics.Observe(string(req.Task), metrics.OutcomeFallback)
		p.log.Warn("empty reply from generation service", zap.String("task", string(req.Task)))
		return result, nil
	}

	if labels := Labels(req.Task); labels != nil && !lo.Contains(labels, result.Output) {
		p.log.Warn("reply outside label set",
			zap.String("task", string(req.Task)),
			zap.String("reply", result.Output),
		)
	}

	p.metrics.Observe(string(req.Task), metrics.OutcomeOK)
	return result, nil
}

// Validate checks req before any generation call and returns the trimmed
// payload.
func Validate(req domain.Request) (string, error) {
	payload := strings.TrimSpace(req.Payload)

	switch req.Kind {
	case domain.PayloadURL:
		if !strings.HasPrefix(payload, "http://") && !strings.HasPrefix(payload, "https://") {
			return payload, domain.ErrInvalidFormat
		}
	case domain.PayloadText, domain.PayloadDocument:
		if payload == "" {
			return payload, domain.ErrEmptyInput
		}
	default:
		return payload, fmt.Errorf("unknown payload kind %q", req.Kind)
	}

	return payload, nil
}

func Normalize(reply string) string {
	return strings.TrimSpace(reply)
}

func Fallback(task domain.Task) string {
	return lo.Ternary(task == domain.TaskScamMessage, ClassificationFailed, DetectionFailed)
}
