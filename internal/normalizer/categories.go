package normalizer

// Other is the category assigned when nothing clears the threshold.
const Other = "other"

// Category is a canonical skill group with reference examples.
type Category struct {
	Name     string
	Examples []string
}

// categories is ordered; the lexical matcher returns the first hit.
var categories = []Category{
	{Name: "programming_languages", Examples: []string{
		"python", "java", "c++", "c#", "javascript", "typescript", "go", "rust", "ruby",
		"php", "swift", "kotlin", "scala", "r", "perl", "objective-c",
	}},
	{Name: "frontend_frameworks", Examples: []string{
		"react", "reactjs", "react.js", "angular", "vue", "svelte", "ember",
		"nextjs", "nuxtjs", "backbone", "jquery",
	}},
	{Name: "frontend_tools", Examples: []string{
		"html", "css", "sass", "less", "tailwind", "bootstrap", "material-ui",
		"webpack", "babel", "vite", "eslint", "storybook",
	}},
	{Name: "backend_frameworks", Examples: []string{
		"django", "flask", "spring", "spring boot", "express", "fastapi",
		"rails", "laravel", "dotnet", "asp.net", "phoenix",
	}},
	{Name: "databases", Examples: []string{
		"mysql", "postgresql", "postgres", "oracle", "mongodb", "cassandra",
		"dynamodb", "redis", "couchdb", "elasticsearch", "neo4j", "sqlite", "sql server",
	}},
	{Name: "api_development", Examples: []string{
		"api", "rest", "restful", "graphql", "soap", "openapi", "swagger", "postman",
		"api design", "api testing", "api integration", "apis",
	}},
	{Name: "cloud_platforms", Examples: []string{
		"aws", "azure", "gcp", "google cloud", "cloud foundry", "heroku", "openstack",
	}},
	{Name: "containers", Examples: []string{
		"docker", "kubernetes", "container orchestration", "helm", "openshift",
	}},
	{Name: "infra_as_code", Examples: []string{
		"terraform", "ansible", "chef", "puppet", "saltstack", "pulumi",
	}},
	{Name: "ci_cd", Examples: []string{
		"ci/cd", "jenkins", "github actions", "gitlab ci", "azure pipelines",
		"circleci", "travis", "teamcity", "bamboo",
	}},
	{Name: "testing", Examples: []string{
		"jest", "mocha", "chai", "junit", "pytest", "nose", "cypress",
		"selenium", "playwright", "karma", "rtl", "unittest", "robot framework",
	}},
	{Name: "data_processing", Examples: []string{
		"spark", "hadoop", "hive", "pig", "beam", "storm", "flink",
	}},
	{Name: "ml_ai", Examples: []string{
		"tensorflow", "pytorch", "scikit-learn", "sklearn", "xgboost", "lightgbm",
		"keras", "theano", "mxnet", "nltk", "spacy", "transformers",
	}},
	{Name: "data_analysis", Examples: []string{
		"numpy", "pandas", "matplotlib", "seaborn", "plotly", "powerbi", "tableau", "excel",
	}},
	{Name: "security", Examples: []string{
		"oauth", "jwt", "saml", "cyberark", "vault", "okta", "ldap", "kerberos",
		"siem", "iam", "ssl", "tls", "mfa", "zero trust",
	}},
	{Name: "genai_llm", Examples: []string{
		"gpt", "chatgpt", "claude", "gemini", "llama", "llamaindex", "langchain",
		"mistral", "cohere", "anthropic", "openai", "vertex ai", "huggingface",
		"stable diffusion", "midjourney", "copilot", "cursor", "tabnine", "autogen",
		"rag", "agentic ai", "generative ai", "prompt engineering", "vector db",
		"pinecone", "weaviate", "milvus", "faiss",
	}},
	{Name: "version_control", Examples: []string{"git", "svn", "mercurial"}},
	{Name: "project_tools", Examples: []string{
		"jira", "confluence", "trello", "asana", "slack", "notion",
	}},
	{Name: "observability", Examples: []string{
		"prometheus", "grafana", "datadog", "new relic", "splunk",
		"elk", "elasticsearch", "logstash", "kibana", "opentelemetry",
		"cloudwatch", "dynatrace", "appdynamics", "sentry",
	}},
}

// Categories returns a copy of the taxonomy.
func Categories() []Category {
	out := make([]Category, len(categories))
	for i, c := range categories {
		out[i] = Category{Name: c.Name, Examples: append([]string(nil), c.Examples...)}
	}
	return out
}

// IsCritical reports whether a gap in category blocks most backend roles.
func IsCritical(category string) bool {
	switch category {
	case "backend_frameworks", "databases", "cloud_platforms", "api_development":
		return true
	}
	return false
}
