package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/cv-reviewer/internal/logger"
	"alfredoptarigan/cv-reviewer/internal/models"
	"alfredoptarigan/cv-reviewer/internal/repositories"
)

type ReviewService interface {
	// Review runs the whole pipeline for one CV. It returns a nil result and a
	// non-nil error on any failure; partial results are never returned.
	Review(ctx context.Context, cv []byte, jobDescription string) (*models.ReviewResult, error)
}

type reviewService struct {
	runRepo       repositories.ReviewRunRepository
	pdfParser     PDFParserService
	chunker       TextChunker
	retriever     *Retriever
	generator     Generator
	promptBuilder *PromptBuilder
	schema        *OutputSchema
	topK          int
	log           *zap.Logger
}

func NewReviewService(
	runRepo repositories.ReviewRunRepository,
	pdfParser PDFParserService,
	chunker TextChunker,
	retriever *Retriever,
	generator Generator,
	schema *OutputSchema,
	topK int,
	log *zap.Logger,
) ReviewService {
	if runRepo == nil {
		runRepo = repositories.NopReviewRunRepository{}
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	return &reviewService{
		runRepo:       runRepo,
		pdfParser:     pdfParser,
		chunker:       chunker,
		retriever:     retriever,
		generator:     generator,
		promptBuilder: NewPromptBuilder(),
		schema:        schema,
		topK:          topK,
		log:           logger.OrNop(log),
	}
}

type reviewIDKey struct{}

// WithReviewID attaches the identifier used for logs and the run record.
func WithReviewID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, reviewIDKey{}, id)
}

// ReviewIDFromContext returns the identifier set by WithReviewID.
func ReviewIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(reviewIDKey{}).(uuid.UUID)
	return id, ok
}

func (r *reviewService) Review(ctx context.Context, cv []byte, jobDescription string) (result *models.ReviewResult, err error) {
	reviewID, ok := ReviewIDFromContext(ctx)
	if !ok {
		reviewID = uuid.New()
	}

	log := r.log.With(zap.String(logger.FieldReviewID, reviewID.String()))
	run := &models.ReviewRun{ID: reviewID, CreatedAt: time.Now()}
	started := time.Now()

	defer func() {
		if err != nil {
			result = nil
		}
		r.recordRun(log, run, started, err)
	}()

	log.Info("--- Starting hybrid RAG pipeline ---")

	if strings.TrimSpace(jobDescription) == "" {
		return nil, fmt.Errorf("%w: job description is empty", ErrInvalidInputFormat)
	}

	// Step 1: extract and split
	log.Info("[1/5] Parsing PDF and splitting text...", zap.String(logger.FieldStep, "extract"))
	fullText, err := r.pdfParser.ExtractText(cv)
	if err != nil {
		if errors.Is(err, ErrEmptyDocument) {
			log.Error("[ERROR] No text could be extracted from the PDF.")
		}
		return nil, err
	}

	chunks := r.chunker.ChunkText(fullText)
	run.ChunkCount = len(chunks)
	log.Info("[1/5] PDF parsed.", zap.Int("chars", len([]rune(fullText))), zap.Int("chunks", len(chunks)))

	// Step 2: embed, index, retrieve
	log.Info("[2/5] Building similarity index and retrieving relevant context...", zap.String(logger.FieldStep, "retrieve"))
	retrieved, err := r.retriever.Retrieve(ctx, chunks, jobDescription, r.topK)
	if err != nil {
		return nil, err
	}
	run.RetrievedCount = len(retrieved)
	log.Info("[2/5] Context retrieved.", zap.Int("retrieved", len(retrieved)))

	// Step 3: assemble prompt
	log.Info("[3/5] Creating hybrid prompt...", zap.String(logger.FieldStep, "prompt"))
	prompt := r.promptBuilder.BuildReviewPrompt(
		jobDescription,
		FormatRetrievedContext(retrieved),
		fullText,
		r.schema.FormatInstructions(),
	)
	run.PromptChars = len(prompt)
	log.Info("[3/5] Prompt created.", zap.Int("prompt_chars", len(prompt)))

	// Step 4: call the model
	log.Info("[4/5] Invoking the model...", zap.String(logger.FieldStep, "generate"))
	raw, err := r.generator.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}
	log.Debug("[4/5] Raw model response", zap.String("response", logger.Truncate(raw, 500)))

	// Step 5: parse
	log.Info("[5/5] Parsing structured response...", zap.String(logger.FieldStep, "parse"))
	review, err := r.schema.Parse(raw)
	if err != nil {
		return nil, err
	}

	log.Info("[5/5] Review complete.", zap.Int("match_score", review.MatchScore), zap.Int("ats_score", review.ATSScore))
	return review, nil
}

func (r *reviewService) recordRun(log *zap.Logger, run *models.ReviewRun, started time.Time, runErr error) {
	run.DurationMs = time.Since(started).Milliseconds()
	run.Status = models.StatusCompleted

	if runErr != nil {
		run.Status = models.StatusFailed
		msg := runErr.Error()
		run.ErrorMessage = &msg
		log.Error("--- [FATAL ERROR] Review pipeline failed ---", zap.Error(runErr), zap.Stack("stacktrace"))
	}

	if err := r.runRepo.Create(run); err != nil {
		log.Warn("⚠️  Failed to record review run", zap.Error(err))
	}
}
