package models

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question"`
}
