package models

// Source is one numbered entry of the context sources shown to the model and the UI.
// N is the 1-based retrieval rank and doubles as the citation number.
type Source struct {
	N     int    `json:"n"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// AskResponse is the reconciled answer returned by the query pipeline.
type AskResponse struct {
	Answer     string   `json:"answer"`
	Citations  []Source `json:"citations"`
	Confidence float64  `json:"confidence"`
}

// ErrorResponse is the JSON body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Chunks  int    `json:"chunks"`
}
