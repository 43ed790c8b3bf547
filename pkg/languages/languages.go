package languages

import (
	"strings"

	"github.com/smith3v/sentence-trainer/pkg/apperr"
	"golang.org/x/text/language"
)

// Supported lists the language codes in their declared order.
var Supported = []string{"pl", "en", "de"}

var names = map[string]string{
	"pl": "Polish",
	"en": "English",
	"de": "German",
}

var locales = map[string]language.Tag{
	"pl": language.MustParse("pl-PL"),
	"en": language.MustParse("en-US"),
	"de": language.MustParse("de-DE"),
}

func Normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

func IsSupported(code string) bool {
	_, ok := names[Normalize(code)]
	return ok
}

func Name(code string) string {
	if name, ok := names[Normalize(code)]; ok {
		return name
	}
	return code
}

// Locale returns the regional BCP-47 tag used by speech backends.
func Locale(code string) string {
	tag, ok := locales[Normalize(code)]
	if !ok {
		return ""
	}
	return tag.String()
}

// DetermineTargets returns the two remaining languages for source.
func DetermineTargets(source string) (string, string, error) {
	source = Normalize(source)
	if !IsSupported(source) {
		return "", "", apperr.Validation("unsupported source language: " + source)
	}
	targets := make([]string, 0, 2)
	for _, code := range Supported {
		if code != source {
			targets = append(targets, code)
		}
	}
	return targets[0], targets[1], nil
}

func ValidateSelection(source, target1, target2 string) error {
	codes := []string{Normalize(source), Normalize(target1), Normalize(target2)}
	for _, code := range codes {
		if !IsSupported(code) {
			return apperr.Validation("allowed languages are: " + strings.Join(Supported, ", "))
		}
	}
	if codes[0] == codes[1] || codes[0] == codes[2] || codes[1] == codes[2] {
		return apperr.Validation("source and target languages must all differ")
	}
	return nil
}
