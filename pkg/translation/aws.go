package translation

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/translate"
	"github.com/smith3v/sentence-trainer/pkg/apperr"
)

const awsTimeout = 10 * time.Second

type AmazonTranslateClient interface {
	TranslateText(context.Context, *translate.TranslateTextInput, ...func(*translate.Options)) (*translate.TranslateTextOutput, error)
}

type AWS struct {
	client AmazonTranslateClient
}

func NewAWS(client AmazonTranslateClient) *AWS {
	return &AWS{client: client}
}

func NewAWSFromConfig(cfg aws.Config) *AWS {
	return NewAWS(translate.NewFromConfig(cfg))
}

func (t *AWS) Name() string { return "aws" }

func (t *AWS) Translate(ctx context.Context, text, source, target string) (string, error) {
	cleaned, err := cleanInput(text)
	if err != nil {
		return "", err
	}
	if source == target {
		return cleaned, nil
	}

	ctx, cancel := context.WithTimeout(ctx, awsTimeout)
	defer cancel()

	resp, err := t.client.TranslateText(ctx, &translate.TranslateTextInput{
		Text:               aws.String(cleaned),
		SourceLanguageCode: aws.String(source),
		TargetLanguageCode: aws.String(target),
	})
	if err != nil {
		return "", apperr.Processing("Amazon Translate request failed", err)
	}
	if resp.TranslatedText == nil {
		return cleaned, nil
	}
	return aws.ToString(resp.TranslatedText), nil
}
