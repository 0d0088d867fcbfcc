package mapping

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/chargeback-backend/internal/modules/placeholder"
)

//go:embed autodetect.yaml
var autodetectYAML []byte

var (
	dictOnce sync.Once
	dict     map[string]string
	dictErr  error
)

func dictionary() (map[string]string, error) {
	dictOnce.Do(func() {
		raw := map[string]string{}
		if err := yaml.Unmarshal(autodetectYAML, &raw); err != nil {
			dictErr = fmt.Errorf("parse autodetect dictionary: %w", err)
			return
		}
		dict = make(map[string]string, len(raw))
		for phrase, field := range raw {
			if _, err := ParseFieldKey(field); err != nil {
				dictErr = fmt.Errorf("autodetect %q: %w", phrase, err)
				return
			}
			dict[strings.ToLower(strings.TrimSpace(phrase))] = field
		}
	})
	return dict, dictErr
}

// AutoDetect suggests a field key for a placeholder token from a fixed phrase
// dictionary. A miss returns nil; it is a suggestion, never an error.
func AutoDetect(token string) *string {
	d, err := dictionary()
	if err != nil {
		return nil
	}
	field, ok := d[strings.ToLower(strings.TrimSpace(placeholder.Inner(token)))]
	if !ok {
		return nil
	}
	return &field
}

// Phrases returns a copy of the dictionary, for the settings UI.
func Phrases() (map[string]string, error) {
	d, err := dictionary()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out, nil
}
