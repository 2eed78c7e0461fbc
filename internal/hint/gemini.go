package hint

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

var promptTemplate = template.Must(template.New("prompt").Parse(`
You are a helpful AI assistant for a game called "Peach Sweeper" (a cuter version of Minesweeper).
Analyze the current board state below.

Legend:
'?' = Unrevealed soil
'F' = Flagged spot (suspected hidden Peach)
'0'-'8' = Revealed spot showing how many Peaches are neighbors
'P' = A revealed Peach (Game Over state)

Current Peaches Hidden: {{.MinesLeft}}

Board Grid:
{{.Board}}

Task:
Identify ONE safe spot to dig (reveal) next.
If you are 100% sure where a hidden Peach is, tell the user to flag it.

Coordinate system: Top-left is (0,0). x is column, y is row.
Style: Be cute, encouraging, and concise. Use peach-related puns if appropriate.
Example: "Dig at row 3, col 5, it looks safe!" or "I smell a peach at row 2, col 1! Flag it!"
`))

func Prompt(req Request) (string, error) {
	var b strings.Builder
	if err := promptTemplate.Execute(&b, req); err != nil {
		return "", err
	}
	return b.String(), nil
}

type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{client: client, model: model}, nil
}

// [Gemini] implements [Advisor]
func (g *Gemini) Advise(ctx context.Context, req Request) (string, error) {
	prompt, err := Prompt(req)
	if err != nil {
		return "", fmt.Errorf("unable to render prompt: %w", err)
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}
