package config

import "context"

// ContextProviderKind controls how a context provider is offered to the user.
type ContextProviderKind string

const (
	ContextProviderNormal  ContextProviderKind = "normal"
	ContextProviderQuery   ContextProviderKind = "query"
	ContextProviderSubmenu ContextProviderKind = "submenu"
)

// ContextProviderDescription identifies a context provider.
type ContextProviderDescription struct {
	Title        string              `json:"title"`
	DisplayTitle string              `json:"displayTitle,omitempty"`
	Description  string              `json:"description,omitempty"`
	Kind         ContextProviderKind `json:"type"`
}

// ContextItem is one piece of context returned by a provider.
type ContextItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content"`
}

// ContextProvider supplies additional context to the assistant.
type ContextProvider interface {
	Describe() ContextProviderDescription
	Provide(ctx context.Context, query string) ([]ContextItem, error)
}
