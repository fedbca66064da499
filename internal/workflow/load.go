package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/tollgate/internal/domain"
)

// definitionFile is the on-disk shape of a stage table:
//
//	kinds:
//	  investment:
//	    - stage: 1
//	      role: manager
//	      sla_hours: 48
type definitionFile struct {
	Kinds map[string][]domain.WorkflowStageConfig `yaml:"kinds" toml:"kinds"`
}

// LoadFile builds a Registry from a YAML (.yaml, .yml) or TOML (.toml) file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workflow definition: %w", err)
	}

	var def definitionFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("parsing workflow definition %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("parsing workflow definition %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported workflow definition format %q (use .yaml or .toml)", ext)
	}

	table := make(Table, len(def.Kinds))
	for name, stages := range def.Kinds {
		kind, err := domain.ParseRequestKind(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidStageTable, err)
		}
		table[kind] = stages
	}
	return NewRegistry(table)
}
