// Package declarative loads test-suite definitions from YAML files.
package declarative

// SuiteFile is the top-level document of one suite definition file.
type SuiteFile struct {
	Suites []SuiteSpec `yaml:"suites" validate:"required,min=1,dive"`
}

// SuiteSpec declares one test suite.
type SuiteSpec struct {
	Name        string     `yaml:"name" validate:"required"`
	Description string     `yaml:"description"`
	Schedule    string     `yaml:"schedule"`
	Tests       []TestSpec `yaml:"tests" validate:"required,min=1,dive"`
}

// TestSpec declares one test case.
type TestSpec struct {
	Name       string      `yaml:"name" validate:"required"`
	Definition string      `yaml:"definition" validate:"required"`
	EntityLink string      `yaml:"entityLink" validate:"required"`
	Parameters []ParamSpec `yaml:"parameters" validate:"dive"`
}

// ParamSpec is one named test-case parameter.
type ParamSpec struct {
	Name  string `yaml:"name" validate:"required"`
	Value string `yaml:"value" validate:"required"`
}
