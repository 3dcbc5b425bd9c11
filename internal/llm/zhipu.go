package llm

// DefaultZhipuBaseURL is Zhipu's OpenAI-compatible endpoint.
const DefaultZhipuBaseURL = "https://open.bigmodel.cn/api/paas/v4/"

var zhipuModels = map[string]string{
	"glm-4-plus":  "glm-4-plus",
	"glm-4":       "glm-4",
	"glm-4-flash": "glm-4-flash",
	"glm-4-air":   "glm-4-air",
}

// NewZhipuProvider creates a provider for Zhipu GLM models.
func NewZhipuProvider(cfg Config) (*OpenAIProvider, error) {
	return newOpenAICompatible(cfg, DefaultZhipuBaseURL, zhipuModels)
}

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
func NewOpenRouterProvider(cfg Config) (*OpenAIProvider, error) {
	return newOpenAICompatible(cfg, defaultOpenRouterBaseURL, nil)
}
