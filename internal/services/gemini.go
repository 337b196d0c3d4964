package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/cv-reviewer/internal/logger"
)

const (
	taskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	taskRetrievalQuery    = "RETRIEVAL_QUERY"

	// maxEmbedBatch is the batch limit of the embedding endpoint.
	maxEmbedBatch = 100
)

// Generator sends one prompt to a hosted model and returns its raw text.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type GeminiService interface {
	Embedder
	Generator
	Model() string
}

// modelsAPI is the subset of genai.Models used here.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

type GeminiOptions struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	Temperature    float32
	MaxTokens      int32
}

type geminiService struct {
	models      modelsAPI
	modelName   string
	embedModel  string
	temperature float32
	maxTokens   int32
	log         *zap.Logger
}

func NewGeminiService(ctx context.Context, opts GeminiOptions, log *zap.Logger) (GeminiService, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return newGeminiService(client.Models, opts, log), nil
}

func newGeminiService(models modelsAPI, opts GeminiOptions, log *zap.Logger) *geminiService {
	return &geminiService{
		models:      models,
		modelName:   opts.Model,
		embedModel:  opts.EmbeddingModel,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		log:         logger.OrNop(log).With(zap.String("ai_model", opts.Model)),
	}
}

func (g *geminiService) Model() string {
	return g.modelName
}

// EmbedDocuments implements Embedder.
func (g *geminiService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += maxEmbedBatch {
		end := min(start+maxEmbedBatch, len(texts))

		batch, err := g.embed(ctx, texts[start:end], taskRetrievalDocument)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

// EmbedQuery implements Embedder.
func (g *geminiService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := g.embed(ctx, []string{text}, taskRetrievalQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (g *geminiService) embed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := g.models.EmbedContent(ctx, g.embedModel, contents, &genai.EmbedContentConfig{
		TaskType: taskType,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailure, err)
	}

	if result == nil || len(result.Embeddings) != len(texts) {
		got := 0
		if result != nil {
			got = len(result.Embeddings)
		}
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", ErrEmbeddingFailure, len(texts), got)
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, embedding := range result.Embeddings {
		if embedding == nil || len(embedding.Values) == 0 {
			return nil, fmt.Errorf("%w: embedding %d is empty", ErrEmbeddingFailure, i)
		}
		vectors[i] = embedding.Values
	}

	return vectors, nil
}

// GenerateText implements Generator. Content filtering is disabled for the
// four adjustable categories since CVs can mention sensitive topics.
func (g *geminiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	temperature := g.temperature
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  g.maxTokens,
		ResponseMIMEType: "application/json",
		SafetySettings:   permissiveSafetySettings(),
	}

	resp, err := g.models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletionFailure, err)
	}

	if resp == nil {
		return "", fmt.Errorf("%w: nil response", ErrCompletionFailure)
	}

	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", ErrCompletionFailure, fb.BlockReason)
	}

	for _, candidate := range resp.Candidates {
		if candidate == nil {
			continue
		}
		switch candidate.FinishReason {
		case genai.FinishReasonSafety, genai.FinishReasonBlocklist, genai.FinishReasonProhibitedContent:
			return "", fmt.Errorf("%w: response blocked (%s)", ErrCompletionFailure, candidate.FinishReason)
		}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: no text content in response", ErrCompletionFailure)
	}

	g.log.Debug("📊 Gemini response received", zap.Int("chars", len(text)))
	return text, nil
}

func permissiveSafetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}

	settings := make([]*genai.SafetySetting, len(categories))
	for i, category := range categories {
		settings[i] = &genai.SafetySetting{
			Category:  category,
			Threshold: genai.HarmBlockThresholdBlockNone,
		}
	}
	return settings
}
