package receipt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

const prompt = `Analyze this receipt image and extract the following information in JSON format:
{
  "items": [
    {"name": "item name", "quantity": 1, "unit_price": 10000, "total_price": 10000}
  ],
  "subtotal": 0,
  "tax": 0,
  "service_charge": 0,
  "discount": 0,
  "total": 0
}

Rules:
- All prices are numbers in the receipt currency's main unit, exactly as printed, without currency
  symbols or thousands separators. Use "." only as the decimal separator (e.g. Rp57.500 is 57500, $12.50
  is 12.5).
- If quantity is not visible, use 1.
- If tax, service_charge or discount is not visible, use 0.
- Extract ALL line items visible on the receipt. Exclude totals, payments and change.
- Keep item names in the receipt's language.
- Return ONLY the JSON, no other text.`

// GeminiScanner reads receipts with a Gemini model.
type GeminiScanner struct {
	client   *genai.Client
	model    string
	currency string
}

var _ Scanner = (*GeminiScanner)(nil)

// NewGeminiScanner creates a scanner backed by the Gemini API. Draft amounts are in the stored units
// of currency.
func NewGeminiScanner(ctx context.Context, apiKey, model, currency string) (*GeminiScanner, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiScanner{client: client, model: model, currency: currency}, nil
}

// Scan sends the image and the extraction prompt, then parses and normalizes the answer.
func (s *GeminiScanner) Scan(ctx context.Context, image []byte, mimeType string) (*Draft, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrScanFailed)
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.1)),
		ResponseMIMEType: "application/json",
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanFailed, err)
	}

	text := strings.TrimSpace(resp.Text())
	slog.Debug("Receipt scanned", "model", s.model, "response_bytes", len(text))
	return Parse(text, s.currency)
}
