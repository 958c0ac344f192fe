package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringList is a list column stored as JSON text.
// NULL, empty and unparseable values read back as an empty list.
type StringList []string

// Scan implements sql.Scanner.
func (l *StringList) Scan(value interface{}) error {
	items, err := scanList[string](value, func(s string) string { return s })
	if err != nil {
		return err
	}
	*l = items
	return nil
}

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	return valueList(l)
}

// Tag is a colored label attached to a profile.
type Tag struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// TagList is a list of tags stored as JSON text.
type TagList []Tag

// Scan implements sql.Scanner.
func (l *TagList) Scan(value interface{}) error {
	items, err := scanList[Tag](value, func(s string) Tag { return ParseTag(s) })
	if err != nil {
		return err
	}
	*l = items
	return nil
}

// Value implements driver.Valuer.
func (l TagList) Value() (driver.Value, error) {
	return valueList(l)
}

// Names returns the tag names in order.
func (l TagList) Names() []string {
	names := make([]string, 0, len(l))
	for _, t := range l {
		names = append(names, t.Name)
	}
	return names
}

// ParseTag reads "name" or "name:color".
func ParseTag(raw string) Tag {
	name, color, _ := strings.Cut(strings.TrimSpace(raw), ":")
	return Tag{Name: strings.TrimSpace(name), Color: strings.TrimSpace(color)}
}

// SocialHandle is an account on a social network.
type SocialHandle struct {
	Platform string `json:"platform"`
	Handle   string `json:"handle"`
}

// SocialList is a list of social handles stored as JSON text.
type SocialList []SocialHandle

// Scan implements sql.Scanner.
func (l *SocialList) Scan(value interface{}) error {
	items, err := scanList[SocialHandle](value, func(s string) SocialHandle { return ParseSocialHandle(s) })
	if err != nil {
		return err
	}
	*l = items
	return nil
}

// Value implements driver.Valuer.
func (l SocialList) Value() (driver.Value, error) {
	return valueList(l)
}

// ParseSocialHandle reads "platform:handle". A bare value is kept as the handle.
func ParseSocialHandle(raw string) SocialHandle {
	platform, handle, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return SocialHandle{Handle: strings.TrimSpace(platform)}
	}
	return SocialHandle{Platform: strings.ToLower(strings.TrimSpace(platform)), Handle: strings.TrimSpace(handle)}
}

// SplitList splits comma-separated input into trimmed, non-empty items.
func SplitList(raw string) []string {
	items := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			items = append(items, p)
		}
	}
	return items
}

func scanList[T any](value interface{}, fromLegacy func(string) T) ([]T, error) {
	var text string
	switch v := value.(type) {
	case nil:
		return []T{}, nil
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		return nil, fmt.Errorf("list column: unsupported type %T", value)
	}

	text = strings.TrimSpace(text)
	if text == "" || text == "null" {
		return []T{}, nil
	}

	items := []T{}
	if strings.HasPrefix(text, "[") {
		if err := json.Unmarshal([]byte(text), &items); err == nil {
			return items, nil
		}
	}

	// rows written before list columns were JSON hold comma-separated text
	items = []T{}
	for _, part := range SplitList(text) {
		items = append(items, fromLegacy(part))
	}
	return items, nil
}

func valueList[T any](items []T) (driver.Value, error) {
	if items == nil {
		return "[]", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
