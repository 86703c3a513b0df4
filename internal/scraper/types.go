package scraper

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// RawJob is a loosely-typed record as produced by a fetcher.
type RawJob map[string]any

// String returns the field as text. Numbers are formatted without exponent.
func (r RawJob) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Number returns the field as a float when it holds a number or numeric text.
func (r RawJob) Number(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		cleaned := strings.NewReplacer(",", "", " ", "", "\u00a0", "").Replace(v)
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Tags returns a list field. A comma separated string is split.
func (r RawJob) Tags(key string) []string {
	var tags []string
	switch v := r[key].(type) {
	case string:
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				tags = append(tags, part)
			}
		}
	case []string:
		for _, part := range v {
			if part = strings.TrimSpace(part); part != "" {
				tags = append(tags, part)
			}
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					tags = append(tags, s)
				}
			}
		}
	}
	return tags
}

// SelectorList is a list of CSS selectors tried in order.
// In YAML it may be written as a single string or as a list.
type SelectorList []string

func (l *SelectorList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		*l = SelectorList{single}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*l = list
		return nil
	default:
		return fmt.Errorf("selector must be a string or a list of strings (line %d)", value.Line)
	}
}
