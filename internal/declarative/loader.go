package declarative

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"dataprobe/internal/domain"
)

var validate = validator.New()

// LoadDirectory reads all YAML suite definitions from the given directory and
// returns them as domain suites, sorted by name. Entity links are parsed into
// typed references here, once, so validators never re-parse raw strings.
func LoadDirectory(dir string) ([]domain.TestSuite, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("suite directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("suite directory: %s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read suite directory: %w", err)
	}

	seen := map[string]string{} // suite name → file
	var suites []domain.TestSuite
	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		for _, suite := range loaded {
			if prev, dup := seen[suite.Name]; dup {
				return nil, domain.ErrConflict("suite %q defined in both %s and %s", suite.Name, prev, path)
			}
			seen[suite.Name] = path
			suites = append(suites, suite)
		}
	}

	sort.Slice(suites, func(i, j int) bool { return suites[i].Name < suites[j].Name })
	return suites, nil
}

// LoadFile reads one YAML suite definition file.
func LoadFile(path string) ([]domain.TestSuite, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var file SuiteFile
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, domain.ErrValidation("parse %s: %v", path, err)
	}
	if err := validate.Struct(&file); err != nil {
		return nil, domain.ErrValidation("invalid suite definition %s: %v", path, err)
	}

	suites := make([]domain.TestSuite, 0, len(file.Suites))
	for _, spec := range file.Suites {
		suite, err := toDomain(spec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		suites = append(suites, suite)
	}
	return suites, nil
}

func toDomain(spec SuiteSpec) (domain.TestSuite, error) {
	suite := domain.TestSuite{
		Name:        spec.Name,
		Description: spec.Description,
		Schedule:    spec.Schedule,
	}
	for _, test := range spec.Tests {
		link, err := domain.ParseEntityLink(test.EntityLink)
		if err != nil {
			return domain.TestSuite{}, fmt.Errorf("test %s: %w", test.Name, err)
		}
		tc := domain.TestCase{
			Name:       test.Name,
			Definition: test.Definition,
			EntityLink: link,
		}
		for _, p := range test.Parameters {
			tc.Parameters = append(tc.Parameters, domain.ParameterValue{Name: p.Name, Value: p.Value})
		}
		suite.Cases = append(suite.Cases, tc)
	}
	return suite, nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
