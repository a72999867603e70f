package dto

type ChatRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type ChatExchangeResponse struct {
	ID        string `json:"id"`
	Prompt    string `json:"prompt"`
	Response  string `json:"response"`
	CreatedAt string `json:"created_at"`
}
