// Package gemini adapts Google's Gemini models to the generic model.Model
// interface via the OpenAI-compatible endpoint Gemini exposes, reusing the
// OpenAI client rather than carrying a second vendor SDK.
package gemini

import (
	"context"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/taa217/lucidai/model"
	openaimodel "github.com/taa217/lucidai/model/openai"
)

// defaultBaseURL is Gemini's OpenAI-compatible Chat Completions endpoint.
const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// Options configure the Gemini model adapter.
type Options struct {
	// Model names the Gemini model to use.
	Model string

	// APIKey authenticates against the Gemini API. Defaults to GEMINI_API_KEY.
	APIKey string

	// BaseURL overrides the endpoint, primarily for tests.
	BaseURL string

	Temperature         float64
	MaxCompletionTokens int64
}

// Model drives Gemini generation through the OpenAI wire protocol.
type Model struct {
	inner *openaimodel.Model
	name  string
}

var _ model.Model = (*Model)(nil)

// NewModel creates a new Gemini model.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:               "gemini-2.0-flash",
		APIKey:              os.Getenv("GEMINI_API_KEY"),
		BaseURL:             defaultBaseURL,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	client := openai.NewClient(
		option.WithBaseURL(opts.BaseURL),
		option.WithAPIKey(opts.APIKey),
	)

	inner := openaimodel.NewModelFromClient(&client, func(o *openaimodel.Options) {
		o.Model = opts.Model
		o.Temperature = opts.Temperature
		o.MaxCompletionTokens = opts.MaxCompletionTokens
	})

	return &Model{inner: inner, name: opts.Model}
}

// Generate implements model.Model.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	return m.inner.Generate(ctx, req)
}

// Info returns metadata describing this Gemini model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.name, Provider: "gemini"}
}
