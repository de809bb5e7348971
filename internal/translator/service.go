package translator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cuongbtq/translation-api/internal/chunker"
	"github.com/cuongbtq/translation-api/internal/language"
)

// MaxTargetLanguages caps how many target languages one request may carry.
const MaxTargetLanguages = 5

// Service drives chunked translation of whole documents. It is safe for
// concurrent use; per-language translations share no mutable state.
type Service struct {
	invoker      Invoker
	maxChunkSize int
	logger       *slog.Logger
}

// NewService creates a translation service on top of a chunk invoker.
func NewService(invoker Invoker, maxChunkSize int, logger *slog.Logger) *Service {
	if maxChunkSize <= 0 {
		maxChunkSize = 5000
	}
	return &Service{
		invoker:      invoker,
		maxChunkSize: maxChunkSize,
		logger:       logger,
	}
}

// MaxChunkSize returns the configured backend chunk limit.
func (s *Service) MaxChunkSize() int {
	return s.maxChunkSize
}

// TranslateDocument translates an already-chunked document into one target
// language. Chunks are translated strictly in order and reassembled in the
// same order; the first backend failure aborts the language and the partial
// result is discarded.
func (s *Service) TranslateDocument(ctx context.Context, chunks []string, source, target string) (string, error) {
	sourceCode, err := language.Resolve(source)
	if err != nil {
		return "", err
	}
	targetCode, err := language.Resolve(target)
	if err != nil {
		return "", err
	}

	translated := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		out, err := s.invoker.TranslateChunk(ctx, chunk, sourceCode, targetCode)
		if err != nil {
			s.logger.Error("Chunk translation failed",
				slog.String("target", target),
				slog.Int("chunk", i),
				slog.Int("total_chunks", len(chunks)),
				slog.String("error", err.Error()),
			)
			return "", fmt.Errorf("chunk %d of %d: %w", i+1, len(chunks), err)
		}
		translated = append(translated, out)
	}

	return chunker.Join(translated), nil
}

// TranslateText translates a single text to one target language within the
// request, splitting it into backend-sized chunks first.
func (s *Service) TranslateText(ctx context.Context, text, target, source string) (string, error) {
	if source == "" {
		source = language.Auto
	}

	chunks := chunker.Split(text, s.maxChunkSize)
	if len(chunks) == 0 {
		return "", nil
	}

	return s.TranslateDocument(ctx, chunks, source, target)
}

type multiResult struct {
	target     string
	translated string
	err        error
}

// TranslateMulti translates text to several target languages concurrently.
// Unlike the tracked file path, any target's failure fails the whole call:
// there is no job record to hold a partial result.
func (s *Service) TranslateMulti(ctx context.Context, text string, targets []string, source string) (map[string]string, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("at least one target language must be specified")
	}
	if len(targets) > MaxTargetLanguages {
		return nil, fmt.Errorf("maximum %d target languages are allowed", MaxTargetLanguages)
	}
	if err := language.Validate(targets); err != nil {
		return nil, err
	}

	if source == "" {
		source = language.Auto
	}

	chunks := chunker.Split(text, s.maxChunkSize)

	results := make([]multiResult, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()
			translated, err := s.TranslateDocument(ctx, chunks, source, target)
			results[i] = multiResult{target: target, translated: translated, err: err}
		}(i, target)
	}
	wg.Wait()

	translations := make(map[string]string, len(targets))
	for _, res := range results {
		if res.err != nil {
			return nil, fmt.Errorf("translation failed for %s: %w", res.target, res.err)
		}
		translations[res.target] = res.translated
	}

	return translations, nil
}
