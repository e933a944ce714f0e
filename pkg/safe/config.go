package safe

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config selects which event kinds the report breaks out into named
// buckets. Known events outside the selection are still scanned and counted
// in the total, but reported under a single "other" bucket.
type Config struct {
	Events []string `yaml:"events"`
}

// ParseConfig parses the given YAML document into a tracked kind set.
func ParseConfig(data []byte) ([]Kind, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	if len(config.Events) == 0 {
		return nil, errors.New("missing events")
	}
	kinds := make([]Kind, 0, len(config.Events))
	seen := make(map[Kind]bool)
	for _, name := range config.Events {
		kind, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		if seen[kind] {
			return nil, fmt.Errorf("duplicate event kind %q", name)
		}
		seen[kind] = true
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// DefaultKinds is the tracked set used when no configuration is given:
// every event the Safe contract emits.
func DefaultKinds() []Kind {
	kinds := make([]Kind, len(Kinds))
	copy(kinds, Kinds)
	return kinds
}
