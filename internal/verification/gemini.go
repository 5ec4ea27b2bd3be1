package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/generative-ai-go/genai"
	"github.com/raxnet/patrol/internal/setup/config"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/json"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ApplicationJSON is the MIME type requested from the model.
const ApplicationJSON = "application/json"

// ErrModelResponse indicates the model returned no usable response.
var ErrModelResponse = errors.New("model response error")

// generator is the part of *genai.GenerativeModel the verifier uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// receiptAnalysis is the JSON object the model answers with.
type receiptAnalysis struct {
	IsValid bool   `json:"isValid"`
	Reason  string `json:"reason"`
}

// GeminiVerifier reads donation receipts with a Gemini model.
type GeminiVerifier struct {
	model        generator
	rules        ReceiptRules
	request      string
	timeout      time.Duration
	maxDimension int
	sem          *semaphore.Weighted
	logger       *zap.Logger
}

// NewGeminiVerifier creates a verifier backed by the given client.
func NewGeminiVerifier(
	client *genai.Client, cfg *config.Gemini, rules ReceiptRules, logger *zap.Logger,
) *GeminiVerifier {
	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = genai.NewUserContent(genai.Text(rules.Prompt()))
	model.ResponseMIMEType = ApplicationJSON
	model.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"isValid": {
				Type:        genai.TypeBoolean,
				Description: "True only if status, amount and merchant all match",
			},
			"reason": {
				Type:        genai.TypeString,
				Description: "Brief explanation in Indonesian of the decision",
			},
		},
		Required: []string{"isValid", "reason"},
	}
	model.SetTemperature(0.1)
	model.SetTopP(0.1)
	model.SetTopK(1)

	return newGeminiVerifier(model, cfg, rules, logger)
}

func newGeminiVerifier(model generator, cfg *config.Gemini, rules ReceiptRules, logger *zap.Logger) *GeminiVerifier {
	logger = logger.Named("gemini_verifier")

	request := "Verify this payment receipt."
	if criteria, err := criteriaJSON(rules); err != nil {
		logger.Warn("Failed to encode receipt criteria", zap.Error(err))
	} else {
		request = "Verify this payment receipt against these criteria: " + criteria
	}

	return &GeminiVerifier{
		model:        model,
		rules:        rules,
		request:      request,
		timeout:      time.Duration(cfg.Timeout) * time.Second,
		maxDimension: cfg.MaxImageDimension,
		sem:          semaphore.NewWeighted(max(cfg.MaxConcurrent, 1)),
		logger:       logger,
	}
}

// criteriaJSON renders the receipt rules as minified JSON.
func criteriaJSON(rules ReceiptRules) (string, error) {
	data, err := sonic.Marshal(rules)
	if err != nil {
		return "", fmt.Errorf("failed to marshal receipt rules: %w", err)
	}

	m := minify.New()
	m.AddFunc(ApplicationJSON, json.Minify)

	data, err = m.Bytes(ApplicationJSON, data)
	if err != nil {
		return "", fmt.Errorf("failed to minify receipt rules: %w", err)
	}

	return string(data), nil
}

// Verify normalizes the receipt image and asks the model whether it meets
// the receipt rules. Model or parse failures are reported as a technical
// failure decision and are not retried.
func (v *GeminiVerifier) Verify(ctx context.Context, image []byte, mimeType string) (*Decision, error) {
	normalized, err := NormalizeImage(image, v.maxDimension)
	if err != nil {
		return nil, err
	}

	if err := v.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("failed to acquire semaphore: %w", err)
	}
	defer v.sem.Release(1)

	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	analysis, err := v.analyze(ctx, normalized)
	if err != nil {
		v.logger.Warn("Receipt verification failed",
			zap.String("mimeType", mimeType),
			zap.Int("size", len(image)),
			zap.Error(err))
		return &Decision{
			Outcome: OutcomeTechnicalFailure,
			Reason:  "Terjadi kesalahan teknis saat verifikasi. Pastikan bukti pembayaran jelas dan coba lagi.",
		}, nil
	}

	decision := &Decision{Outcome: OutcomeRejected, Reason: strings.TrimSpace(analysis.Reason)}
	if analysis.IsValid {
		decision.Outcome = OutcomeAccepted
	}
	if decision.Reason == "" {
		decision.Reason = "AI tidak dapat memvalidasi bukti ini."
		if decision.Accepted() {
			decision.Reason = "Pembayaran tervalidasi"
		}
	}

	v.logger.Info("Receipt verified",
		zap.String("outcome", decision.Outcome.String()),
		zap.String("reason", decision.Reason))

	return decision, nil
}

// analyze sends the image to the model and parses its answer.
func (v *GeminiVerifier) analyze(ctx context.Context, image []byte) (*receiptAnalysis, error) {
	resp, err := v.model.GenerateContent(ctx,
		genai.Blob{MIMEType: ProofMIMEType, Data: image},
		genai.Text(v.request),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini API error: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no response from Gemini", ErrModelResponse)
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected response part %T", ErrModelResponse, resp.Candidates[0].Content.Parts[0])
	}

	var result receiptAnalysis
	if err := sonic.Unmarshal([]byte(stripCodeFence(string(text))), &result); err != nil {
		return nil, fmt.Errorf("JSON unmarshal error: %w", err)
	}

	return &result, nil
}

// stripCodeFence removes a markdown json fence some models wrap answers in.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
