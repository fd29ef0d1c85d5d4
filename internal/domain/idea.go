package domain

// Idea is a structured application idea produced by the idea selector
type Idea struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Services    []string `json:"services"`
	UseCase     string   `json:"use_case"`
	Difficulty  string   `json:"difficulty,omitempty"`
	Frameworks  []string `json:"frameworks,omitempty"`
}

// Category is a configured generation category with a selection priority
type Category struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Priority    int    `yaml:"priority" json:"priority"`
}

// Service describes a cloud service available to generated apps
type Service struct {
	Name     string   `yaml:"name" json:"name"`
	UseCases []string `yaml:"use_cases" json:"use_cases,omitempty"`
	Priority int      `yaml:"priority" json:"priority"`
}
