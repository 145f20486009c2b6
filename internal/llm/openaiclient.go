package llm

import (
	openai "github.com/sashabaranov/go-openai"
)

// ToolClient builds the go-openai client used by the tool-calling
// flows (graph extraction, Cypher generation). An Azure deployment
// wins when fully configured; otherwise the hosted API or a
// compatible server behind baseURL. The returned model is the Azure
// deployment name, or empty when the caller should pick one.
func ToolClient(azureEndpoint, azureKey, azureDeployment, apiKey, baseURL string) (*openai.Client, string, bool) {
	if azureEndpoint != "" && azureKey != "" && azureDeployment != "" {
		cfg := openai.DefaultAzureConfig(azureKey, azureEndpoint)
		deployment := azureDeployment
		cfg.AzureModelMapperFunc = func(string) string { return deployment }
		return openai.NewClientWithConfig(cfg), deployment, true
	}

	if apiKey == "" && baseURL == "" {
		return nil, "", false
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg), "", true
}
