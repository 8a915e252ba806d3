package ai

type domainKeywords struct {
	Domain   string
	Keywords []string
}

// domainTable is matched top to bottom; the first domain with any keyword
// found in the description wins.
var domainTable = []domainKeywords{
	{Domain: "Data Science", Keywords: []string{"data scien", "data analy", "pandas", "numpy", "statistic", "visualization", "analytics"}},
	{Domain: "AI", Keywords: []string{"machine learning", "artificial intelligence", "deep learning", "neural network", "nlp", "computer vision", "llm", "tensorflow", "pytorch"}},
	{Domain: "Web Development", Keywords: []string{"web", "frontend", "front-end", "backend", "back-end", "react", "javascript", "html", "css", "django", "node.js"}},
	{Domain: "Mobile Development", Keywords: []string{"mobile", "android", "iphone", "ios app", "swift", "kotlin", "flutter"}},
	{Domain: "DevOps", Keywords: []string{"devops", "docker", "kubernetes", "ci/cd", "terraform", "infrastructure"}},
	{Domain: "Cloud Computing", Keywords: []string{"cloud", "aws", "azure", "gcp"}},
	{Domain: "Cybersecurity", Keywords: []string{"security", "cyber", "penetration", "hacking", "cryptograph"}},
	{Domain: "Databases", Keywords: []string{"database", "sql", "postgres", "mongodb"}},
	{Domain: "Game Development", Keywords: []string{"game", "unity", "unreal"}},
}

// techVocabulary is the tag vocabulary used when the caller supplies no whitelist.
var techVocabulary = map[string]struct{}{
	"python": {}, "javascript": {}, "typescript": {}, "java": {}, "golang": {}, "rust": {},
	"c++": {}, "c#": {}, "sql": {}, "html": {}, "css": {}, "react": {}, "vue": {},
	"angular": {}, "django": {}, "flask": {}, "node": {}, "docker": {}, "kubernetes": {},
	"aws": {}, "azure": {}, "gcp": {}, "linux": {}, "git": {}, "pandas": {}, "numpy": {},
	"tensorflow": {}, "pytorch": {}, "statistics": {}, "ml": {}, "ai": {}, "nlp": {},
	"security": {}, "networking": {}, "android": {}, "ios": {}, "swift": {}, "kotlin": {},
	"flutter": {}, "unity": {}, "terraform": {}, "mongodb": {}, "postgresql": {}, "api": {},
	"devops": {}, "cloud": {}, "frontend": {}, "backend": {},
}

const (
	fallbackTagLimit      = 5
	fallbackWhitelistTags = 3
	fallbackDefaultTag    = "programming"
)
