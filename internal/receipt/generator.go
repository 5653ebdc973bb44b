package receipt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Item is one receipt line
type Item struct {
	Name     string
	Quantity int
	Price    float64
}

// Input is the order data a receipt is rendered from
type Input struct {
	CustomerName string
	OrderID      string
	Items        []Item
	Total        float64
}

// Content is a rendered receipt email
type Content struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Generator produces receipt content from order data. Callers apply
// Fallback when generation fails; a customer with an email address always
// gets a receipt.
type Generator interface {
	Generate(ctx context.Context, in Input) (*Content, error)
}

// OpenAIGenerator writes the receipt with a chat-completion model
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates a new generator
func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Generate asks the model for a subject and HTML body as a JSON object
func (g *OpenAIGenerator) Generate(ctx context.Context, in Input) (*Content, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(in),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("receipt generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("receipt generation returned no choices")
	}

	return parseContent(resp.Choices[0].Message.Content)
}

const systemPrompt = `Eres el asistente de "Budines Noemi", una panadería artesanal. ` +
	`Redactas correos de agradecimiento y recibo para clientes que acaban de pagar su pedido. ` +
	`El tono debe ser cálido, artesanal y muy amable. ` +
	`Responde únicamente con un objeto JSON con las claves "subject" y "body". ` +
	`El body debe ser HTML con estilos en línea básicos e incluir una tabla de productos ` +
	`y un mensaje final invitando a disfrutar los budines.`

func buildPrompt(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Datos del pedido:\n- Cliente: %s\n- ID de Orden: %s\n- Productos:\n",
		in.CustomerName, in.OrderID)
	for _, item := range in.Items {
		fmt.Fprintf(&b, "  * %s (x%d) - $%.2f c/u\n", item.Name, item.Quantity, item.Price)
	}
	fmt.Fprintf(&b, "- Total pagado: $%.2f\n", in.Total)
	return b.String()
}

func parseContent(raw string) (*Content, error) {
	var content Content
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		return nil, fmt.Errorf("malformed receipt response: %w", err)
	}
	if content.Subject == "" || content.Body == "" {
		return nil, fmt.Errorf("receipt response missing subject or body")
	}
	return &content, nil
}
