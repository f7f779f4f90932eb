package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// ReferencePolicy controls how a suggested reference URL is composed into the
// final answer when retrieved knowledge-base sources also exist.
type ReferencePolicy string

const (
	// ReferenceInline appends a short "You can also check..." line to the answer.
	ReferenceInline ReferencePolicy = "inline"
	// ReferenceAppend adds the reference to the sources list instead.
	ReferenceAppend ReferencePolicy = "append"
	// ReferenceOmit drops the reference whenever KB sources exist.
	ReferenceOmit ReferencePolicy = "omit"
)

// Config is the top-level tobi configuration, corresponding to .tobi.yml.
// It is loaded once at startup and treated as immutable afterwards.
type Config struct {
	Port          int    `yaml:"port" koanf:"port"`
	PublicBaseURL string `yaml:"public_base_url" koanf:"public_base_url"`
	DataDir       string `yaml:"data_dir" koanf:"data_dir"`
	CorpusDir     string `yaml:"corpus_dir" koanf:"corpus_dir"`

	Provider      ProviderType `yaml:"provider" koanf:"provider"`
	Model         string       `yaml:"model" koanf:"model"`
	FallbackModel string       `yaml:"fallback_model" koanf:"fallback_model"`

	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`

	SystemPrompt string `yaml:"system_prompt" koanf:"system_prompt"`

	// Blob-store keys for the two curated knowledge JSON files.
	RuntimeKBKey  string `yaml:"runtime_kb_key" koanf:"runtime_kb_key"`
	PersonalKBKey string `yaml:"personal_kb_key" koanf:"personal_kb_key"`

	// Signing secret and lifetime for browsable document links.
	LinkSecret     string `yaml:"link_secret" koanf:"link_secret"`
	LinkTTLMinutes int    `yaml:"link_ttl_minutes" koanf:"link_ttl_minutes"`

	Index     IndexConfig     `yaml:"index" koanf:"index"`
	Retrieval RetrievalConfig `yaml:"retrieval" koanf:"retrieval"`

	ReferencePolicy ReferencePolicy `yaml:"reference_policy" koanf:"reference_policy"`

	Ingest IngestConfig `yaml:"ingest" koanf:"ingest"`
}

// IndexConfig describes the keyword index used by the document-count flow.
// Table and column names are configurable because the index schema has been
// renamed across deployments; empty values disable the count flow.
type IndexConfig struct {
	Enabled    bool   `yaml:"enabled" koanf:"enabled"`
	Path       string `yaml:"path" koanf:"path"`
	Table      string `yaml:"table" koanf:"table"`
	TextColumn string `yaml:"text_column" koanf:"text_column"`
	DocColumn  string `yaml:"doc_column" koanf:"doc_column"`
	PageColumn string `yaml:"page_column" koanf:"page_column"`
}

// RetrievalConfig holds the evidence-retrieval tunables. The threshold and
// top-N values were adjusted repeatedly in production; keep them here rather
// than as literals.
type RetrievalConfig struct {
	ScoreThreshold float64 `yaml:"score_threshold" koanf:"score_threshold"`
	MaxResults     int     `yaml:"max_results" koanf:"max_results"`
	TopSources     int     `yaml:"top_sources" koanf:"top_sources"`
	SummaryResults int     `yaml:"summary_results" koanf:"summary_results"`
}

// IngestConfig controls corpus ingestion.
type IngestConfig struct {
	Include []string `yaml:"include" koanf:"include"`
	Exclude []string `yaml:"exclude" koanf:"exclude"`
	// ChunkChars is the approximate passage size stored per vector document.
	ChunkChars int `yaml:"chunk_chars" koanf:"chunk_chars"`
}
