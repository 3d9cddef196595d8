package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Default optimizer settings applied to new projects
	DefaultTolerance       float64   `json:"default_tolerance"`
	DefaultMaxCombinations uint64    `json:"default_max_combinations"`
	DefaultChunkSize       uint64    `json:"default_chunk_size"`
	DefaultKerf            float64   `json:"default_kerf"`
	DefaultSortOrder       SortOrder `json:"default_sort_order"`
	DefaultMinOffcut       float64   `json:"default_min_offcut"`

	// Application preferences
	RecentProjects []string `json:"recent_projects"`
	LogFormat      string   `json:"log_format"` // "text" or "json"
}

// DefaultAppConfig returns an AppConfig populated with the values from DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultTolerance:       defaults.Tolerance,
		DefaultMaxCombinations: defaults.MaxCombinations,
		DefaultChunkSize:       defaults.ChunkSize,
		DefaultKerf:            defaults.Kerf,
		DefaultSortOrder:       defaults.SortOrder,
		DefaultMinOffcut:       defaults.MinOffcutLength,
		RecentProjects:         []string{},
		LogFormat:              "text",
	}
}

// ApplyToSettings copies the default values from AppConfig into a Settings struct.
func (c AppConfig) ApplyToSettings(s *Settings) {
	s.Tolerance = c.DefaultTolerance
	s.MaxCombinations = c.DefaultMaxCombinations
	s.ChunkSize = c.DefaultChunkSize
	s.Kerf = c.DefaultKerf
	s.SortOrder = c.DefaultSortOrder
	s.MinOffcutLength = c.DefaultMinOffcut
}

// maxRecentProjects caps the recent project list.
const maxRecentProjects = 10

// AddRecentProject moves path to the front of the recent list.
func (c *AppConfig) AddRecentProject(path string) {
	recent := []string{path}
	for _, p := range c.RecentProjects {
		if p != path {
			recent = append(recent, p)
		}
	}
	if len(recent) > maxRecentProjects {
		recent = recent[:maxRecentProjects]
	}
	c.RecentProjects = recent
}
