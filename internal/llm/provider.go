package llm

import (
	"os"

	"sjsage522/carsearch/pkg/errors"
)

// Provider identifies an OpenAI-compatible endpoint and its credentials.
type Provider struct {
	Name    string
	APIKey  string
	BaseURL string
	Model   string
}

const (
	openAIBaseURL   = "https://api.openai.com/v1"
	openAIModel     = "gpt-4o-mini"
	glmBaseURL      = "https://open.bigmodel.cn/api/paas/v4"
	glmModel        = "glm-4-plus"
	deepSeekBaseURL = "https://api.deepseek.com/v1"
	deepSeekModel   = "deepseek-chat"
)

// ProviderFromEnv picks the first configured provider in the order OpenAI,
// GLM (Zhipu), DeepSeek.
func ProviderFromEnv() (Provider, error) {
	return providerFrom(os.Getenv)
}

func providerFrom(getenv func(string) string) (Provider, error) {
	or := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	if key := getenv("OPENAI_API_KEY"); key != "" {
		return Provider{
			Name:    "openai",
			APIKey:  key,
			BaseURL: or("OPENAI_BASE_URL", openAIBaseURL),
			Model:   or("OPENAI_MODEL", openAIModel),
		}, nil
	}

	key := getenv("GLM_API_KEY")
	if key == "" {
		key = getenv("ZHIPU_API_KEY")
	}
	if key != "" {
		return Provider{
			Name:    "glm",
			APIKey:  key,
			BaseURL: or("GLM_BASE_URL", glmBaseURL),
			Model:   or("GLM_MODEL", glmModel),
		}, nil
	}

	if key := getenv("DEEPSEEK_API_KEY"); key != "" {
		return Provider{
			Name:    "deepseek",
			APIKey:  key,
			BaseURL: or("DEEPSEEK_BASE_URL", deepSeekBaseURL),
			Model:   or("DEEPSEEK_MODEL", deepSeekModel),
		}, nil
	}

	return Provider{}, errors.NewConfiguration(
		"No API key found. Set OPENAI_API_KEY, GLM_API_KEY, or DEEPSEEK_API_KEY environment variable.", nil)
}
