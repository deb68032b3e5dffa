package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/ternarybob/ausculto/internal/common"
	"github.com/ternarybob/ausculto/internal/interfaces"
	"github.com/ternarybob/ausculto/internal/models"
)

const classifierSystemInstruction = "Eres un analista que clasifica fragmentos de podcasts en español relacionados con terapia y salud mental. Responde exclusivamente con JSON válido que siga la especificación proporcionada."

// classificationSchema constrains Gemini structured output to the verdict
// shape. Claude receives the same contract through the prompt text.
var classificationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"theme": {
			Type: genai.TypeString,
			Enum: []string{"testimony", "recommendation", "reflection", "fact", "other"},
		},
		"tone": {
			Type: genai.TypeString,
			Enum: []string{"positive", "neutral", "critical", "concerning"},
		},
		"sensitivity": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeString,
				Enum: []string{"self-harm", "suicide", "abuse", "trauma", "crisis", "none"},
			},
		},
		"confidence": {
			Type:    genai.TypeNumber,
			Minimum: genai.Ptr(0.0),
			Maximum: genai.Ptr(100.0),
		},
		"tags": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"reason": {
			Type: genai.TypeString,
		},
	},
	Required: []string{"theme", "tone", "sensitivity", "confidence"},
}

var validSensitivities = map[models.Sensitivity]bool{
	models.SensitivitySelfHarm: true,
	models.SensitivitySuicide:  true,
	models.SensitivityAbuse:    true,
	models.SensitivityTrauma:   true,
	models.SensitivityCrisis:   true,
	models.SensitivityNone:     true,
}

// Classifier turns fragment text into a structured mention verdict via the
// provider factory. It implements interfaces.Classifier.
type Classifier struct {
	factory  *ProviderFactory
	model    string
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewClassifier builds a classifier routed to the configured default
// provider's model.
func NewClassifier(factory *ProviderFactory, cfg *common.Config, logger arbor.ILogger) *Classifier {
	model := cfg.Claude.Model
	if ProviderType(cfg.LLM.DefaultProvider) == ProviderGemini {
		model = cfg.Gemini.Model
	}

	return &Classifier{
		factory:  factory,
		model:    model,
		validate: validator.New(),
		logger:   logger,
	}
}

// rawClassification accepts loosely-typed provider output before validation.
type rawClassification struct {
	Theme       string   `json:"theme"`
	Tone        string   `json:"tone"`
	Sensitivity []string `json:"sensitivity"`
	Confidence  float64  `json:"confidence"`
	Tags        []string `json:"tags"`
	Reason      string   `json:"reason"`
}

// ClassifyFragment sends one fragment to the LLM and validates the verdict.
// Unknown sensitivity labels are dropped and an empty list becomes ["none"];
// confidence is rounded and clamped to [0,100]. An unparseable response or an
// invalid theme/tone is a hard failure.
func (c *Classifier) ClassifyFragment(ctx context.Context, input *interfaces.ClassificationInput) (*models.Classification, error) {
	request := &ContentRequest{
		Prompt:            buildClassificationPrompt(input),
		SystemInstruction: classifierSystemInstruction,
		Model:             c.model,
		OutputSchema:      classificationSchema,
	}

	response, err := c.factory.GenerateContent(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("classification request failed: %w", err)
	}

	classification, err := c.parseResponse(response.Text)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("provider", string(response.Provider)).
			Str("model", response.Model).
			Msg("Classifier returned an unusable response")
		return nil, err
	}

	return classification, nil
}

func (c *Classifier) parseResponse(text string) (*models.Classification, error) {
	jsonText := extractJSON(text)
	if jsonText == "" {
		return nil, fmt.Errorf("no JSON object in classifier response")
	}

	var raw rawClassification
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse classifier response: %w", err)
	}

	sensitivity := make([]models.Sensitivity, 0, len(raw.Sensitivity))
	seen := make(map[models.Sensitivity]bool)
	for _, label := range raw.Sensitivity {
		s := models.Sensitivity(label)
		if validSensitivities[s] && !seen[s] {
			sensitivity = append(sensitivity, s)
			seen[s] = true
		}
	}
	if len(sensitivity) == 0 {
		sensitivity = []models.Sensitivity{models.SensitivityNone}
	}

	confidence := int(math.Round(raw.Confidence))
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	tags := make([]string, 0, len(raw.Tags))
	for _, tag := range raw.Tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}

	classification := &models.Classification{
		Theme:       models.Theme(raw.Theme),
		Tone:        models.Tone(raw.Tone),
		Sensitivity: sensitivity,
		Confidence:  confidence,
		Tags:        tags,
		Reason:      strings.TrimSpace(raw.Reason),
	}

	if err := c.validate.Struct(classification); err != nil {
		return nil, fmt.Errorf("invalid classification: %w", err)
	}

	return classification, nil
}

// extractJSON pulls the first top-level JSON object out of a response that
// may be wrapped in markdown fences or prose.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func buildClassificationPrompt(input *interfaces.ClassificationInput) string {
	keywords := "Sin palabras clave destacadas."
	if len(input.Keywords) > 0 {
		keywords = fmt.Sprintf("Palabras clave detectadas: %s", strings.Join(input.Keywords, ", "))
	}
	language := input.Language
	if language == "" {
		language = "desconocido"
	}

	return fmt.Sprintf(`Analiza el siguiente fragmento de podcast para detectar menciones relevantes sobre terapia y salud mental.

Idioma del episodio: %s
%s

Fragmento:
"""
%s
"""

Contexto ampliado:
"""
%s
"""

Devuelve un JSON con los campos:
- theme: testimony | recommendation | reflection | fact | other
- tone: positive | neutral | critical | concerning
- sensitivity: lista de etiquetas (self-harm, suicide, abuse, trauma, crisis, none)
- confidence: número 0-100 que indique certeza
- tags: lista opcional de etiquetas libres
- reason: breve explicación opcional del porqué de la clasificación`,
		language, keywords, input.FragmentText, input.ContextText)
}
