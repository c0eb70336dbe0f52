package cost

import (
	"sort"
	"strings"
)

type PricingTable struct {
	InputPricePerMillion  float64
	OutputPricePerMillion float64
}

type ProviderPricing map[string]map[string]PricingTable

// OpenRouter reports the billed cost itself; its table only covers responses
// that omit it.
var defaultPricing = ProviderPricing{
	"gemini": {
		"gemini-2.5-flash-lite": {InputPricePerMillion: 0.10, OutputPricePerMillion: 0.40},
		"gemini-2.5-flash":      {InputPricePerMillion: 0.30, OutputPricePerMillion: 2.50},
		"gemini-2.5-pro":        {InputPricePerMillion: 1.25, OutputPricePerMillion: 10.00},
	},
	"openrouter": {
		"openai/gpt-4o-mini":         {InputPricePerMillion: 0.15, OutputPricePerMillion: 0.60},
		"openai/gpt-4o":              {InputPricePerMillion: 2.50, OutputPricePerMillion: 10.00},
		"anthropic/claude-3.5-haiku": {InputPricePerMillion: 0.80, OutputPricePerMillion: 4.00},
	},
}

type Calculator struct {
	pricing ProviderPricing
}

func NewCalculator() *Calculator {
	p := make(ProviderPricing, len(defaultPricing))
	for provider, models := range defaultPricing {
		p[provider] = make(map[string]PricingTable, len(models))
		for model, table := range models {
			p[provider][model] = table
		}
	}
	return &Calculator{pricing: p}
}

// EstimateCost returns the USD cost of a call, or 0 when the model is unknown.
// Unknown model ids fall back to the longest known id they contain, so dated
// variants such as "gemini-2.5-flash-001" still price correctly.
func (c *Calculator) EstimateCost(provider, model string, inputTokens, outputTokens int) float64 {
	table, ok := c.lookup(strings.ToLower(provider), strings.ToLower(model))
	if !ok {
		return 0
	}

	inputCost := (float64(inputTokens) / 1_000_000) * table.InputPricePerMillion
	outputCost := (float64(outputTokens) / 1_000_000) * table.OutputPricePerMillion

	return inputCost + outputCost
}

// addPricing registers or replaces the price of a model.
func (c *Calculator) addPricing(provider, model string, table PricingTable) {
	provider = strings.ToLower(provider)
	model = strings.ToLower(model)

	if _, exists := c.pricing[provider]; !exists {
		c.pricing[provider] = make(map[string]PricingTable)
	}
	c.pricing[provider][model] = table
}

func (c *Calculator) lookup(provider, model string) (PricingTable, bool) {
	providerPricing, exists := c.pricing[provider]
	if !exists {
		return PricingTable{}, false
	}
	if table, ok := providerPricing[model]; ok {
		return table, true
	}

	names := make([]string, 0, len(providerPricing))
	for name := range providerPricing {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	for _, name := range names {
		if strings.Contains(model, name) {
			return providerPricing[name], true
		}
	}
	return PricingTable{}, false
}
