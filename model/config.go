package model

// AnnotatorConfig configures the NER-backed default annotator
type AnnotatorConfig struct {
	ModelName    string `json:"model_name"`
	OnnxFilePath string `json:"onnx_file_path,omitempty"`
	// Labels are the entity labels (without B-/I- prefix) kept as person mentions
	Labels []string `json:"labels"`
	// MinScore drops entities the model is less confident about
	MinScore float32 `json:"min_score"`
	// Concurrency bounds parallel annotation of emails, values < 1 mean sequential
	Concurrency int `json:"concurrency"`
}

// DefaultAnnotatorConfig returns the distilbert-NER person annotator configuration
func DefaultAnnotatorConfig() AnnotatorConfig {
	return AnnotatorConfig{
		ModelName:    "KnightsAnalytics/distilbert-NER",
		OnnxFilePath: "model.onnx",
		Labels:       []string{"PER", "PERSON"},
		MinScore:     0.5,
		Concurrency:  1,
	}
}
