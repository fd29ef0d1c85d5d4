package ideas

import (
	"math/rand"

	"github.com/hochfrequenz/app-forge/internal/domain"
)

// fallbackIdeas are static ideas used when generation cannot produce a
// unique result. Keyed by category; unknown categories use the
// bedrock_ai_agents set.
var fallbackIdeas = map[string][]domain.Idea{
	"bedrock_ai_agents": {
		{
			Name:        "AWS Bedrock Content Moderator",
			Description: "AI-powered content moderation system using AWS Bedrock for analyzing and filtering user-generated content in real-time.",
			Features:    []string{"Real-time content analysis", "Multi-language support", "Custom moderation rules", "API integration"},
			UseCase:     "Social media platforms and community forums",
			Difficulty:  "intermediate",
		},
	},
	"rag_on_aws": {
		{
			Name:        "AWS Legal Document RAG Assistant",
			Description: "Retrieval-augmented generation system for legal document analysis using AWS Bedrock and OpenSearch.",
			Features:    []string{"Document ingestion", "Semantic search", "Citation tracking", "Multi-document queries"},
			UseCase:     "Law firms and legal research",
			Difficulty:  "advanced",
		},
	},
}

// fallback picks a static idea for the category and annotates it with
// the services requested for this run.
func (s *Selector) fallback(category string, services []string) domain.Idea {
	pool, ok := fallbackIdeas[category]
	if !ok {
		pool = fallbackIdeas["bedrock_ai_agents"]
	}
	idea := pool[rand.Intn(len(pool))]
	idea.Services = append([]string(nil), services...)
	idea.Frameworks = []string{"streamlit", "langchain"}
	return idea
}
