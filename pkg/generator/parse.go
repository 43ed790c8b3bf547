package generator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencedBlock = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)```")

	listKeys = []string{"sentences", "items", "data", "results", "result", "lista", "list"}
	textKeys = []string{"text", "sentence", "content"}

	errNoSentences = errors.New("generator response contains no sentences")
)

// ParseContent extracts sentences from a model reply. The reply may wrap
// its JSON in a code fence or surrounding prose.
func ParseContent(content string) ([]string, error) {
	data := []byte(extractJSON(content))
	root, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("generator response is not valid JSON: %w", err)
	}
	items, ok := findList(root, data)
	if !ok {
		return nil, errNoSentences
	}
	var sentences []string
	for _, item := range items {
		if text := itemText(item); text != "" {
			sentences = append(sentences, text)
		}
	}
	if len(sentences) == 0 {
		return nil, errNoSentences
	}
	return sentences, nil
}

func decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}

func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if match := fencedBlock.FindStringSubmatch(content); match != nil {
		return strings.TrimSpace(match[1])
	}
	start := strings.IndexAny(content, "{[")
	end := strings.LastIndexAny(content, "}]")
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return content
}

// findList picks the sentence list: the root list, a list under a known
// key, an object whose keys are all digits, or the first list-valued member
// in document order.
func findList(root any, data []byte) ([]any, bool) {
	switch value := root.(type) {
	case []any:
		return value, true
	case map[string]any:
		for _, key := range listKeys {
			if list, ok := value[key].([]any); ok {
				return list, true
			}
		}
		members, err := objectMembers(data)
		if err != nil || len(members) == 0 {
			return nil, false
		}
		if allDigitKeys(members) {
			list := make([]any, len(members))
			for i, m := range members {
				list[i] = m.value
			}
			return list, true
		}
		for _, m := range members {
			if list, ok := m.value.([]any); ok {
				return list, true
			}
		}
	}
	return nil, false
}

type member struct {
	key   string
	value any
}

// objectMembers walks the top-level object of data and returns its members
// in the order they appear.
func objectMembers(data []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if tok, err := dec.Token(); err != nil {
		return nil, err
	} else if tok != json.Delim('{') {
		return nil, errors.New("not a JSON object")
	}
	var members []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		members = append(members, member{key: key, value: value})
	}
	return members, nil
}

func allDigitKeys(members []member) bool {
	for _, m := range members {
		if m.key == "" || strings.TrimLeft(m.key, "0123456789") != "" {
			return false
		}
	}
	return true
}

// itemText reads a plain string item or the first set text field of an
// object item. Numbers and booleans under a text field are kept as text.
func itemText(item any) string {
	switch value := item.(type) {
	case string:
		return strings.TrimSpace(value)
	case map[string]any:
		for _, key := range textKeys {
			if text, ok := scalarText(value[key]); ok {
				return strings.TrimSpace(text)
			}
		}
	}
	return ""
}

// scalarText reports ok for a present, non-zero scalar.
func scalarText(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, v != ""
	case json.Number:
		f, err := v.Float64()
		return v.String(), err != nil || f != 0
	case bool:
		return fmt.Sprint(v), v
	}
	return "", false
}
