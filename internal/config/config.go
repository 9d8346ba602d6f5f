package config

import (
	"maps"
	"slices"
)

// Role is the purpose a model is used for.
type Role string

const (
	RoleChat         Role = "chat"
	RoleEdit         Role = "edit"
	RoleApply        Role = "apply"
	RoleAutocomplete Role = "autocomplete"
	RoleEmbed        Role = "embed"
	RoleRerank       Role = "rerank"
	RoleSummarize    Role = "summarize"
)

// AllRoles lists every known role in display order.
var AllRoles = []Role{RoleChat, RoleEdit, RoleApply, RoleAutocomplete, RoleEmbed, RoleRerank, RoleSummarize}

// DefaultRoles are assigned to a model that does not declare any.
var DefaultRoles = []Role{RoleChat, RoleEdit, RoleApply, RoleSummarize}

// Model is one model entry of an assistant configuration.
type Model struct {
	Title    string         `yaml:"name" json:"title"`
	Provider string         `yaml:"provider" json:"provider"`
	Model    string         `yaml:"model" json:"model"`
	APIBase  string         `yaml:"apiBase,omitempty" json:"apiBase,omitempty"`
	Roles    []Role         `yaml:"roles,omitempty" json:"roles,omitempty"`
	Options  map[string]any `yaml:"defaultCompletionOptions,omitempty" json:"completionOptions,omitempty"`
}

// Config represents one resolved assistant configuration.
type Config struct {
	Name         string           `json:"name"`
	Version      string           `json:"version"`
	ModelsByRole map[Role][]Model `json:"modelsByRole"`
	Rules        []string         `json:"rules,omitempty"`
	Settings     map[string]any   `json:"settings,omitempty"`

	// ContextProviders are attached at load time and never serialized.
	ContextProviders []ContextProvider `json:"-"`
}

// ValidationError describes one problem found in a configuration document.
// Fatal errors mean the document produced no usable config.
type ValidationError struct {
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
	Fatal   bool   `json:"fatal"`
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Result is the outcome of loading a configuration.
//
// Config is nil when nothing is selected or loading failed entirely.
// ConfigLoadInterrupted means nothing was attempted, which is distinct
// from an attempt that failed (nil Config with non-empty Errors).
type Result[T any] struct {
	Config                *T                `json:"config,omitempty"`
	Errors                []ValidationError `json:"errors"`
	ConfigLoadInterrupted bool              `json:"configLoadInterrupted"`
}

// LoadResult is the result of loading an assistant Config.
type LoadResult = Result[Config]

// Interrupted returns the "nothing to load" result.
func Interrupted[T any]() Result[T] {
	return Result[T]{Errors: []ValidationError{}, ConfigLoadInterrupted: true}
}

// HasFatal reports whether any error in errs is fatal.
func HasFatal(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Fatal {
			return true
		}
	}
	return false
}

// ModelsFor returns the models registered for role.
func (c *Config) ModelsFor(role Role) []Model {
	if c == nil {
		return nil
	}
	return c.ModelsByRole[role]
}

// AddModel appends m under each of its roles.
func (c *Config) AddModel(m Model) {
	if c.ModelsByRole == nil {
		c.ModelsByRole = make(map[Role][]Model)
	}
	roles := m.Roles
	if len(roles) == 0 {
		roles = DefaultRoles
	}
	for _, r := range roles {
		c.ModelsByRole[r] = append(c.ModelsByRole[r], m)
	}
}

// Clone returns a copy of c whose slices and maps can be mutated without
// affecting c. Model option maps and setting values are shared.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	if c.ModelsByRole != nil {
		out.ModelsByRole = make(map[Role][]Model, len(c.ModelsByRole))
		for role, models := range c.ModelsByRole {
			out.ModelsByRole[role] = slices.Clone(models)
		}
	}
	out.Rules = slices.Clone(c.Rules)
	out.Settings = maps.Clone(c.Settings)
	out.ContextProviders = slices.Clone(c.ContextProviders)
	return &out
}

// WithContextProviders returns a copy of c with extra appended to its
// context providers.
func (c *Config) WithContextProviders(extra []ContextProvider) *Config {
	if c == nil {
		return nil
	}
	out := c.Clone()
	out.ContextProviders = append(out.ContextProviders, extra...)
	return out
}
