package skills

// vocabulary is the closed set of technology terms Extract can report.
var vocabulary = set(
	"python", "java", "c++", "c#", "javascript", "typescript", "react", "reactjs",
	"nextjs", "next", "angular", "vue", "node", "nodejs", "express", "django",
	"flask", "spring", "kubernetes", "docker", "aws", "azure", "gcp", "sql",
	"mysql", "postgresql", "nosql", "mongodb", "graphql", "rest", "api",
	"jenkins", "git", "devops", "html", "css", "sass", "less", "bootstrap",
	"tailwind", "linux", "tensorflow", "pytorch", "nlp", "machinelearning", "ml",
	"ai", "spark", "hadoop", "pandas", "numpy", "kafka", "redis", "webpack",
	"babel", "vite", "eslint", "jest", "rtl", "cypress", "storybook", "redux",
	"frontend", "ui", "ux", "designsystems", "postgres",
)

var aliases = map[string]string{
	"react.js":  "react",
	"reactjs":   "react",
	"next.js":   "nextjs",
	"node.js":   "node",
	"js":        "javascript",
	"postgres":  "postgresql",
	"sqlserver": "sql_server",
	"py":        "python",
	"apis":      "api",
	"api(s)":    "api",
}

// noise holds boilerplate from social links and EEO statements.
var noise = set(
	"instagram", "linkedin", "facebook", "twitter", "com", "www", "http", "https",
	"hackerrank", "race", "color", "gender", "sex", "origin", "disability",
	"identity", "veteran", "applicants", "life", "day", "ability", "world",
	"record", "notice", "customers",
)

// umbrella terms name a whole field rather than an actionable skill.
var umbrella = set(
	"frontend", "backend", "fullstack", "full-stack", "devops", "ui", "ux",
	"ai", "ml", "machinelearning", "designsystems", "cloud", "web", "software",
	"engineering", "development", "programming", "technology",
)

// phraseMarkers flag missing-skill candidates that read like a sentence.
var phraseMarkers = []string{
	"experience with", "experience in", "you will", "ability to", "years of",
	"knowledge of", "understanding of", "familiarity with", "we are", "you are",
	"responsible for", "work with",
}

func set(items ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, it := range items {
		out[it] = struct{}{}
	}
	return out
}
