package sentences

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/smith3v/sentence-trainer/pkg/db"
	"github.com/smith3v/sentence-trainer/pkg/generator"
	"gorm.io/datatypes"
)

// Generator is implemented by generator.Service and generator.Mock.
type Generator interface {
	Generate(ctx context.Context, prompt string) (generator.Result, error)
}

func newBatch(prompt, difficulty, source string, createdBy *uint, result generator.Result) (*db.GenerationBatch, error) {
	sentences := result.Sentences
	if sentences == nil {
		sentences = []string{}
	}
	encoded, err := json.Marshal(sentences)
	if err != nil {
		return nil, fmt.Errorf("failed to encode generated sentences: %w", err)
	}
	return &db.GenerationBatch{
		Prompt:         prompt,
		Difficulty:     difficulty,
		SourceLanguage: source,
		Sentences:      datatypes.JSON(encoded),
		RawResponse:    result.RawResponse,
		UsedFallback:   result.Fallback,
		CreatedBy:      createdBy,
	}, nil
}

// BatchSentences decodes the sentences stored on a batch.
func BatchSentences(batch db.GenerationBatch) []string {
	var sentences []string
	if err := json.Unmarshal(batch.Sentences, &sentences); err != nil {
		return nil
	}
	return sentences
}
