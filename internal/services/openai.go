package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rahul4469/propmate/internal/config"
	"github.com/rahul4469/propmate/internal/models"
	"go.uber.org/zap"
)

const (
	assistantSystemPrompt = "You are a helpful assistant for property pricing, listings, and loans. " +
		"Answer succinctly and include actionable guidance."

	extractionSystemPrompt = "You are a financial data extractor. Based on the provided search results " +
		"about home loan interest rates in India, extract the bank name, interest " +
		"rate, and processing fee for each mentioned bank (e.g., HDFC, SBI, ICICI, Axis Bank).\n\n" +
		"Respond ONLY with a JSON object containing a single key 'loan_offers', which is a list of objects. " +
		"Each object must have these keys: 'bank_name', 'interest_rate', 'processing_fee'."

	replyTemperature = 0.7
)

// ChatClient calls the OpenAI chat completions API.
type ChatClient struct {
	settings config.Source
	provider *providerClient
}

// NewChatClient creates a chat client that resolves its key and model per call.
func NewChatClient(settings config.Source, httpClient *http.Client, logger *zap.Logger) *ChatClient {
	return &ChatClient{
		settings: settings,
		provider: newProviderClient("OpenAI", httpClient, logger),
	}
}

// Request to OpenAI
type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// Response from OpenAI. Content is a pointer so a missing field is detectable.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateReply answers query in the assistant persona, with history (oldest
// first) as prior context.
func (c *ChatClient) GenerateReply(ctx context.Context, query string, history []models.ChatMessage) (string, error) {
	messages := make([]chatMessage, 0, len(history)+2)
	messages = append(messages, chatMessage{Role: string(models.RoleSystem), Content: assistantSystemPrompt})
	for _, m := range history {
		messages = append(messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}
	if query != "" {
		messages = append(messages, chatMessage{Role: string(models.RoleUser), Content: query})
	}

	return c.complete(ctx, chatCompletionRequest{
		Messages:    messages,
		Temperature: replyTemperature,
	}, ReplyTimeout)
}

// ExtractLoanOffers asks the model to pull bank offers out of search snippets.
// A reply without a loan_offers key means nothing was found and yields an
// empty list; any other malformed reply is an API error.
func (c *ChatClient) ExtractLoanOffers(ctx context.Context, results []models.SearchResult) ([]models.LoanOffer, error) {
	content, err := c.complete(ctx, chatCompletionRequest{
		Messages: []chatMessage{
			{Role: string(models.RoleSystem), Content: extractionSystemPrompt},
			{Role: string(models.RoleUser), Content: FormatSearchResultsForExtraction(results)},
		},
		Temperature:    0,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}, ExtractionTimeout)
	if err != nil {
		return nil, err
	}

	offers, err := parseLoanOffers(content)
	if err != nil {
		return nil, c.provider.apiError(0, "failed to parse loan offers JSON", err)
	}

	c.provider.logger.Debug("loan offers extracted",
		zap.Int("search_results", len(results)),
		zap.Int("offers", len(offers)),
	)
	return offers, nil
}

// complete resolves settings, sends the request and returns the trimmed first
// choice content.
func (c *ChatClient) complete(ctx context.Context, reqBody chatCompletionRequest, timeout time.Duration) (string, error) {
	apiKey, err := config.OpenAIAPIKey(c.settings)
	if err != nil {
		return "", err
	}
	reqBody.Model = config.OpenAIModel(c.settings)

	var resp chatCompletionResponse
	url := config.OpenAIBaseURL(c.settings) + "/chat/completions"
	if err := c.provider.postJSON(ctx, url, apiKey, timeout, reqBody, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == nil {
		return "", c.provider.apiError(0, "unexpected response format", nil)
	}
	return strings.TrimSpace(*resp.Choices[0].Message.Content), nil
}

func parseLoanOffers(content string) ([]models.LoanOffer, error) {
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, err
	}
	if parsed == nil {
		return nil, errors.New("reply is not a JSON object")
	}

	raw, ok := parsed["loan_offers"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return []models.LoanOffer{}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.New("loan_offers is not an array")
	}

	offers := make([]models.LoanOffer, 0, len(items))
	for _, item := range items {
		fields, err := decodeObject(item)
		if err != nil {
			return nil, err
		}
		offers = append(offers, models.LoanOffer{
			BankName:      coerceString(fields["bank_name"]),
			InterestRate:  coerceString(fields["interest_rate"]),
			ProcessingFee: coerceString(fields["processing_fee"]),
		})
	}
	return offers, nil
}

func decodeObject(raw json.RawMessage) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, errors.New("loan offer is not a JSON object")
	}
	if fields == nil {
		return nil, errors.New("loan offer is null")
	}
	return fields, nil
}

// coerceString renders a scalar JSON value as trimmed display text.
func coerceString(v any) string {
	return strings.TrimSpace(scalarText(v))
}

// scalarText renders a decoded JSON scalar the way it reads in a reply.
// Integers keep their digits, decimals drop trailing zeros and keep one
// fractional digit (8.50 is "8.5", 1e2 is "100.0"). Null, objects and
// arrays become "".
func scalarText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		lit := val.String()
		if !strings.ContainsAny(lit, ".eE") {
			return lit
		}
		f, err := val.Float64()
		if err != nil {
			return lit
		}
		text := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(text, ".") {
			text += ".0"
		}
		return text
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
