package generate

// Exports for testing. These allow black-box tests to reach the error
// classifiers without widening the public API.
var (
	ClassifyGeminiError = classifyGeminiError
	ClassifyOpenAIError = classifyOpenAIError
)
