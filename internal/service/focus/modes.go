package focus

// ModeConfig parameterizes a MetaSearchHandler.
type ModeConfig struct {
	Key string
	// SearchWeb is false for modes that answer from the model alone
	SearchWeb bool
	Category  string
	Engines   []string
	// QueryPrefix is prepended to the user's query, e.g. a site filter
	QueryPrefix string
	// Prompt is the fixed system prompt for the mode
	Prompt string
}

const citationRules = `Cite the numbered sources you use inline as [number]. If the sources do not answer the question, say so briefly.`

var builtinModes = []ModeConfig{
	{
		Key:       "webSearch",
		SearchWeb: true,
		Category:  "general",
		Prompt:    "You are a web search assistant. Answer the user's question from the search results below in well structured markdown. " + citationRules,
	},
	{
		Key:       "academicSearch",
		SearchWeb: true,
		Category:  "science",
		Engines:   []string{"arxiv", "google scholar", "pubmed"},
		Prompt:    "You are an academic research assistant. Answer from the papers and articles below, noting methods and findings where relevant. " + citationRules,
	},
	{
		Key:       "writingAssistant",
		SearchWeb: false,
		Prompt:    "You are a writing assistant. Help the user write, edit and restructure text. Do not invent facts or citations.",
	},
	{
		Key:       "wolframAlphaSearch",
		SearchWeb: true,
		Category:  "general",
		Engines:   []string{"wolframalpha"},
		Prompt:    "You are a computational assistant. Solve the user's calculation or data question using the Wolfram Alpha results below, showing the key steps. " + citationRules,
	},
	{
		Key:       "youtubeSearch",
		SearchWeb: true,
		Category:  "videos",
		Engines:   []string{"youtube"},
		Prompt:    "You are a video search assistant. Answer the user's question from the video results below and point to the most relevant videos. " + citationRules,
	},
	{
		Key:         "redditSearch",
		SearchWeb:   true,
		Category:    "general",
		Engines:     []string{"reddit"},
		QueryPrefix: "site:reddit.com ",
		Prompt:      "You are a discussion search assistant. Summarize opinions and experiences from the Reddit threads below, noting disagreement. " + citationRules,
	},
}
