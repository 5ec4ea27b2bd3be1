package verification

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/raxnet/patrol/internal/database/types"
	"github.com/raxnet/patrol/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeModel struct {
	resp  *genai.GenerateContentResponse
	err   error
	parts []genai.Part
}

func (f *fakeModel) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.parts = parts
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(text)}},
		}},
	}
}

func setupVerifier(model generator) *GeminiVerifier {
	cfg := &config.Gemini{Model: "gemini-2.5-flash", Timeout: 5, MaxConcurrent: 1, MaxImageDimension: 64}
	rules := ReceiptRules{Status: "Berhasil", Amount: "Rp10.000", Merchant: "raxnet"}
	return newGeminiVerifier(model, cfg, rules, zap.NewNop())
}

func TestGeminiVerifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		model       *fakeModel
		wantOutcome Outcome
		wantReason  string
	}{
		{
			name:        "valid receipt",
			model:       &fakeModel{resp: textResponse(`{"isValid": true, "reason": "Pembayaran tervalidasi"}`)},
			wantOutcome: OutcomeAccepted,
			wantReason:  "Pembayaran tervalidasi",
		},
		{
			name:        "wrong amount",
			model:       &fakeModel{resp: textResponse(`{"isValid": false, "reason": "Jumlah transfer tidak sesuai, terdeteksi Rp5.000"}`)},
			wantOutcome: OutcomeRejected,
			wantReason:  "Jumlah transfer tidak sesuai, terdeteksi Rp5.000",
		},
		{
			name:        "fenced json",
			model:       &fakeModel{resp: textResponse("```json\n{\"isValid\": true, \"reason\": \"\"}\n```")},
			wantOutcome: OutcomeAccepted,
			wantReason:  "Pembayaran tervalidasi",
		},
		{
			name:        "api error",
			model:       &fakeModel{err: errors.New("503 unavailable")},
			wantOutcome: OutcomeTechnicalFailure,
		},
		{
			name:        "malformed json",
			model:       &fakeModel{resp: textResponse("the receipt looks fine")},
			wantOutcome: OutcomeTechnicalFailure,
		},
		{
			name:        "no candidates",
			model:       &fakeModel{resp: &genai.GenerateContentResponse{}},
			wantOutcome: OutcomeTechnicalFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			decision, err := setupVerifier(tt.model).Verify(t.Context(), encodePNG(t, 128, 64), "image/png")
			require.NoError(t, err)
			assert.Equal(t, tt.wantOutcome, decision.Outcome)
			assert.NotEmpty(t, decision.Reason)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, decision.Reason)
			}

			require.Len(t, tt.model.parts, 2)
			blob, ok := tt.model.parts[0].(genai.Blob)
			require.True(t, ok)
			assert.Equal(t, ProofMIMEType, blob.MIMEType)
		})
	}
}

func TestGeminiVerifierRejectsNonImages(t *testing.T) {
	t.Parallel()

	model := &fakeModel{resp: textResponse(`{"isValid": true, "reason": "ok"}`)}
	_, err := setupVerifier(model).Verify(t.Context(), []byte("%PDF-1.7"), "application/pdf")
	require.ErrorIs(t, err, types.ErrInvalidProof)
	assert.Nil(t, model.parts)
}

func TestReceiptRulesPrompt(t *testing.T) {
	t.Parallel()

	prompt := ReceiptRules{Status: "Berhasil", Amount: "Rp10.000", Merchant: "raxnet"}.Prompt()
	assert.Contains(t, prompt, `"Berhasil"`)
	assert.Contains(t, prompt, `"Rp10.000"`)
	assert.Contains(t, prompt, `"raxnet"`)
}

func TestGeminiVerifierSendsMinifiedCriteria(t *testing.T) {
	t.Parallel()

	model := &fakeModel{resp: textResponse(`{"isValid": false, "reason": "Nominal salah"}`)}
	_, err := setupVerifier(model).Verify(t.Context(), encodePNG(t, 32, 32), "image/png")
	require.NoError(t, err)

	require.Len(t, model.parts, 2)
	text, ok := model.parts[1].(genai.Text)
	require.True(t, ok)
	assert.Equal(t,
		`Verify this payment receipt against these criteria: {"status":"Berhasil","amount":"Rp10.000","merchant":"raxnet"}`,
		string(text))
}
