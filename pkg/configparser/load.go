package configparser

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

var ErrNoFilePath = errors.New("no file path provided")

// LoadAndParseYaml exports the YAML file at path into the environment and then
// parses the environment into cfg. A missing file is not an error: the
// environment alone is enough to configure the service.
func LoadAndParseYaml(path string, cfg any) error {
	if err := LoadYamlFile(path); err != nil && !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, ErrNoFilePath) {
		return err
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadYamlFile reads a YAML file and exports it as environment
// variables. Nested keys are joined with "_" and upper-cased, so
//
//	auth:
//	  jwt_secret: abc
//
// becomes AUTH_JWT_SECRET=abc. Variables already present in the environment
// are left untouched. Values of the form ${VAR:-default} are expanded.
func LoadYamlFile(path string) error {
	if path == "" {
		return ErrNoFilePath
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open YAML file: %w", err)
	}
	defer file.Close()

	vars, err := parseYaml(file)
	if err != nil {
		return err
	}

	for _, kv := range vars {
		if os.Getenv(kv[0]) != "" {
			continue
		}
		if err := os.Setenv(kv[0], kv[1]); err != nil {
			return fmt.Errorf("could not set env var %s: %w", kv[0], err)
		}
	}
	return nil
}

// parseYaml returns ordered KEY/value pairs. Sequences of scalars are joined
// with "," which is the separator env uses for slice fields.
func parseYaml(r io.Reader) ([][2]string, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading YAML file: %w", err)
	}

	var out [][2]string
	if err := flatten(&doc, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(n *yaml.Node, path []string, out *[][2]string) error {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}

	switch n.Kind {
	case yaml.DocumentNode:
		for _, c := range n.Content {
			if err := flatten(c, path, out); err != nil {
				return err
			}
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := strings.TrimSpace(n.Content[i].Value)
			next := append(append([]string(nil), path...), key)
			if err := flatten(n.Content[i+1], next, out); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		items := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			if c.Kind == yaml.AliasNode {
				c = c.Alias
			}
			if c.Kind != yaml.ScalarNode {
				return fmt.Errorf("%s: only lists of scalars are supported", envName(path))
			}
			items = append(items, expand(c.Value))
		}
		*out = append(*out, [2]string{envName(path), strings.Join(items, ",")})
	case yaml.ScalarNode:
		if len(path) == 0 || n.Tag == "!!null" {
			return nil
		}
		*out = append(*out, [2]string{envName(path), expand(n.Value)})
	}
	return nil
}

func envName(path []string) string {
	return strings.ToUpper(strings.Join(path, "_"))
}

// expand resolves ${VAR:-default}.
func expand(value string) string {
	if !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
		return value
	}
	name, def, ok := strings.Cut(value[2:len(value)-1], ":-")
	if !ok {
		return value
	}
	if v := os.Getenv(strings.TrimSpace(name)); v != "" {
		return v
	}
	return strings.TrimSpace(def)
}
