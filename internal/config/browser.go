package config

// BrowserModel is the display projection of a Model. Credentials and
// completion options are not carried across the boundary.
type BrowserModel struct {
	Title    string `json:"title"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// BrowserConfig is the projection of a Config that is safe to hand to a
// UI layer.
type BrowserConfig struct {
	Name             string                       `json:"name"`
	Version          string                       `json:"version"`
	ModelsByRole     map[Role][]BrowserModel      `json:"modelsByRole"`
	Rules            []string                     `json:"rules,omitempty"`
	ContextProviders []ContextProviderDescription `json:"contextProviders,omitempty"`
}

// ToBrowser projects c for display.
func ToBrowser(c *Config) *BrowserConfig {
	if c == nil {
		return nil
	}
	out := &BrowserConfig{
		Name:         c.Name,
		Version:      c.Version,
		ModelsByRole: make(map[Role][]BrowserModel, len(c.ModelsByRole)),
		Rules:        c.Rules,
	}
	for role, models := range c.ModelsByRole {
		bm := make([]BrowserModel, 0, len(models))
		for _, m := range models {
			bm = append(bm, BrowserModel{Title: m.Title, Provider: m.Provider, Model: m.Model})
		}
		out.ModelsByRole[role] = bm
	}
	for _, p := range c.ContextProviders {
		out.ContextProviders = append(out.ContextProviders, p.Describe())
	}
	return out
}

// ToBrowserResult projects a load result, keeping its errors and flags.
func ToBrowserResult(r LoadResult) Result[BrowserConfig] {
	return Result[BrowserConfig]{
		Config:                ToBrowser(r.Config),
		Errors:                r.Errors,
		ConfigLoadInterrupted: r.ConfigLoadInterrupted,
	}
}
