package llm

// USD per million tokens
type modelPrice struct {
	input  float64
	output float64
}

var modelPrices = map[string]modelPrice{
	"gpt-4o-mini": {input: 0.15, output: 0.60},
	"gpt-4o":      {input: 2.50, output: 10.00},
}

// Cost returns the USD cost of a call. Unknown models are priced as gpt-4o-mini.
func Cost(model string, inputTokens, outputTokens int) float64 {
	price, ok := modelPrices[model]
	if !ok {
		price = modelPrices["gpt-4o-mini"]
	}
	return float64(inputTokens)/1_000_000*price.input + float64(outputTokens)/1_000_000*price.output
}
