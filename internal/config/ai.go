package config

type Provider string

const (
	ProviderOpenRouter Provider = "openrouter"
	ProviderGemini     Provider = "gemini"
)

type Model string

const (
	ModelOpenRouterGPT4oMini Model = "openai/gpt-4o-mini"
	ModelGeminiV25Flash      Model = "gemini-2.5-flash"
	ModelGeminiV25Pro        Model = "gemini-2.5-pro"
)

func SupportedProviders() []Provider {
	return []Provider{
		ProviderOpenRouter,
		ProviderGemini,
	}
}

func IsSupportedProvider(p Provider) bool {
	for _, s := range SupportedProviders() {
		if s == p {
			return true
		}
	}
	return false
}

// SuggestedModels lists models known to work with the provider. Any identifier
// the provider accepts is still allowed.
func SuggestedModels(p Provider) []Model {
	switch p {
	case ProviderOpenRouter:
		return []Model{ModelOpenRouterGPT4oMini}
	case ProviderGemini:
		return []Model{ModelGeminiV25Flash, ModelGeminiV25Pro}
	default:
		return []Model{}
	}
}
