// Package extract turns a supplier datasheet or price list into a product
// draft using an OpenAI chat model.
package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"github.com/xuri/excelize/v2"

	"github.com/princinho/climaquote/models"
)

var (
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrDisabled        = errors.New("extraction is not configured")
	ErrEmptyResponse   = errors.New("empty model response")
)

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxSheetRows bounds the spreadsheet text sent to the model.
const maxSheetRows = 400

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type Extractor interface {
	Extract(ctx context.Context, f File) (*models.ProductDraft, error)
}

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type OpenAI struct {
	client  chatCompleter
	model   string
	timeout time.Duration
	log     zerolog.Logger
}

func NewOpenAI(apiKey, model string, timeout time.Duration, log zerolog.Logger) *OpenAI {
	return newOpenAI(openai.NewClient(apiKey), model, timeout, log)
}

func newOpenAI(client chatCompleter, model string, timeout time.Duration, log zerolog.Logger) *OpenAI {
	if model == "" {
		model = openai.GPT4oMini
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAI{client: client, model: model, timeout: timeout, log: log}
}

const systemPrompt = `You read HVAC product documents (datasheets, supplier price lists) and return ONE JSON object, nothing else:
{"brand":"","model":"","type":"","description":{"es":""},"features":[{"es":""}],
 "pricingOptions":[{"name":{"es":""},"price":0}],
 "installationKits":[{"name":{"es":""},"price":0}],
 "extras":[{"name":{"es":""},"price":0}]}
Rules:
- Texts in Spanish under "es"; add "en" only when the document is in English.
- "type" is one of: split, multisplit, conductos, cassette, portatil, aerotermia.
- Prices are numbers in euros without tax symbols. Omit what the document does not state.`

func (o *OpenAI) Extract(ctx context.Context, f File) (*models.ProductDraft, error) {
	user, err := userMessage(f)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			user,
		},
		Temperature:    0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return nil, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	draft, err := parseDraft(resp.Choices[0].Message.Content)
	if err != nil {
		o.log.Error().Err(err).Str("file", f.Name).Msg("could not parse extraction response")
		return nil, err
	}
	o.log.Info().Str("file", f.Name).Str("brand", draft.Brand).Str("model", draft.Model).Msg("product draft extracted")
	return draft, nil
}

func userMessage(f File) (openai.ChatCompletionMessage, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(f.ContentType, ";")[0]))
	lowerName := strings.ToLower(f.Name)
	switch {
	case strings.HasPrefix(ct, "image/"):
		dataURL := "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
		return openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: "Extract the product from this image: " + f.Name},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailHigh}},
			},
		}, nil
	case ct == xlsxMime || strings.HasSuffix(lowerName, ".xlsx"):
		text, err := SheetText(f.Data)
		if err != nil {
			return openai.ChatCompletionMessage{}, err
		}
		return textMessage(f.Name, text), nil
	case strings.HasPrefix(ct, "text/") || ct == "application/json" || strings.HasSuffix(lowerName, ".csv") || strings.HasSuffix(lowerName, ".txt"):
		return textMessage(f.Name, string(f.Data)), nil
	default:
		return openai.ChatCompletionMessage{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, f.ContentType)
	}
}

func textMessage(name, body string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: fmt.Sprintf("Document %q:\n\n%s", name, body),
	}
}

// SheetText flattens every sheet to tab-separated lines.
func SheetText(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	written := 0
	for _, sh := range f.GetSheetList() {
		rows, err := f.GetRows(sh)
		if err != nil || len(rows) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n", sh)
		for _, row := range rows {
			if written >= maxSheetRows {
				return b.String(), nil
			}
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line == "" {
				continue
			}
			b.WriteString(line)
			b.WriteByte('\n')
			written++
		}
	}
	return b.String(), nil
}

func parseDraft(content string) (*models.ProductDraft, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyResponse
	}

	var draft models.ProductDraft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	for i := range draft.PricingOptions {
		draft.PricingOptions[i].ID = uuid.NewString()
	}
	for i := range draft.InstallationKits {
		draft.InstallationKits[i].ID = uuid.NewString()
	}
	for i := range draft.Extras {
		draft.Extras[i].ID = uuid.NewString()
	}
	return &draft, nil
}

// Disabled is used when no API key is configured.
type Disabled struct{}

func (Disabled) Extract(context.Context, File) (*models.ProductDraft, error) {
	return nil, ErrDisabled
}
