package models

// StructuredAnswer is the completion service's reply after defensive parsing.
// Nil pointers mark fields the model omitted or sent with the wrong type.
type StructuredAnswer struct {
	Answer     *string
	Citations  []int
	Confidence *float64
}
