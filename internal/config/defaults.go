package config

// DefaultSystemPrompt is the assistant persona sent with every completion
// unless overridden in config.
const DefaultSystemPrompt = "You are Tobi, a Research Assistant. Prioritize the provided Knowledge Source information when " +
	"answering the user's question. If the snippets do not fully cover the question, use your general " +
	"knowledge to fill small gaps—be explicit about assumptions, and ask for missing details when they " +
	"are critical. Be accurate, concise, and approachable. When helpful, suggest credible public " +
	"resources (e.g., UNAIDS, WHO, PHIA, PrEPWatch) without inventing links. If a 'Suggested reference:' " +
	"appears at the top of the conversation, consider it a useful starting point. If uncertain, say so " +
	"and propose what data would resolve the uncertainty."

// DefaultIncludes are glob patterns ingested from the corpus directory by default.
var DefaultIncludes = []string{
	"**/*.pdf",
	"**/*.md",
	"**/*.txt",
}

// DefaultExcludes are glob patterns skipped during ingestion by default.
var DefaultExcludes = []string{
	".git/**",
	"**/.DS_Store",
	"feedback/**",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:              8080,
		PublicBaseURL:     "http://localhost:8080",
		DataDir:           ".tobi",
		CorpusDir:         "corpus",
		Provider:          ProviderOpenAI,
		Model:             "gpt-4o",
		FallbackModel:     "gpt-4o-mini",
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    "text-embedding-3-small",
		SystemPrompt:      DefaultSystemPrompt,
		RuntimeKBKey:      "kb/runtime.json",
		PersonalKBKey:     "kb/personal.json",
		LinkTTLMinutes:    60,
		Index: IndexConfig{
			Enabled:    true,
			Path:       ".tobi/index.db",
			Table:      "pages",
			TextColumn: "text",
			DocColumn:  "source_uri",
			PageColumn: "page",
		},
		Retrieval: RetrievalConfig{
			ScoreThreshold: 0.4,
			MaxResults:     10,
			TopSources:     3,
			SummaryResults: 20,
		},
		ReferencePolicy: ReferenceInline,
		Ingest: IngestConfig{
			Include:    DefaultIncludes,
			Exclude:    DefaultExcludes,
			ChunkChars: 2000,
		},
	}
}
