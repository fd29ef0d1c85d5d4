package config

import "github.com/hochfrequenz/app-forge/internal/domain"

// DefaultCategories is the built-in category set used when no
// categories file is configured.
func DefaultCategories() []domain.Category {
	return []domain.Category{
		{Name: "bedrock_ai_agents", Description: "AI agents using AWS Bedrock foundation models", Priority: 1},
		{Name: "serverless_ai_apps", Description: "Serverless AI applications using Lambda and API Gateway", Priority: 2},
		{Name: "rag_on_aws", Description: "RAG applications with AWS services (Bedrock, OpenSearch, S3)", Priority: 1},
		{Name: "sagemaker_ml_apps", Description: "ML applications using Amazon SageMaker", Priority: 2},
		{Name: "realtime_ai_streaming", Description: "Real-time AI with Kinesis and Lambda", Priority: 3},
		{Name: "multimodal_ai", Description: "Multimodal AI with Bedrock (text, image, video)", Priority: 2},
	}
}

// DefaultServices is the built-in cloud service set used when no
// services file is configured.
func DefaultServices() []domain.Service {
	return []domain.Service{
		{Name: "bedrock", UseCases: []string{"LLM inference", "RAG", "Agents"}, Priority: 1},
		{Name: "lambda", UseCases: []string{"Serverless compute", "API backends"}, Priority: 1},
		{Name: "s3", UseCases: []string{"Document storage", "Model artifacts", "Data lake"}, Priority: 1},
		{Name: "sagemaker", UseCases: []string{"Model training", "Model deployment", "Endpoints"}, Priority: 2},
		{Name: "dynamodb", UseCases: []string{"Session storage", "Vector DB", "Metadata"}, Priority: 2},
		{Name: "opensearch", UseCases: []string{"Vector search", "RAG", "Semantic search"}, Priority: 2},
		{Name: "api_gateway", UseCases: []string{"REST APIs", "WebSocket APIs"}, Priority: 2},
		{Name: "eventbridge", UseCases: []string{"Event-driven architecture", "Scheduling"}, Priority: 3},
		{Name: "kinesis", UseCases: []string{"Real-time streaming", "Data pipelines"}, Priority: 3},
	}
}
