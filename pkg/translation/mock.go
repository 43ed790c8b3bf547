package translation

import (
	"context"
	"fmt"
	"strings"
)

// Mock is deterministic and never fails on non-empty input.
type Mock struct{}

func (Mock) Name() string { return "mock" }

func (Mock) Translate(_ context.Context, text, _, target string) (string, error) {
	cleaned, err := cleanInput(text)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s ⇒ %s", cleaned, strings.ToUpper(target)), nil
}
