package agent

// AskRequest is the body sent to the policy agent
type AskRequest struct {
	UserInput string `json:"user_input"`
	SessionID string `json:"session_id"`
}

// AskResponse is the agent's reply. Every field is optional on the wire.
type AskResponse struct {
	Content          string   `json:"content"`
	ResponseID       string   `json:"response_id"`
	References       []string `json:"references"`
	IsTaskComplete   bool     `json:"is_task_complete"`
	RequireUserInput bool     `json:"require_user_input"`
}

// FeedbackRequest reports a rating on one agent reply
type FeedbackRequest struct {
	SessionID  string `json:"session_id"`
	ResponseID string `json:"response_id"`
	Feedback   string `json:"feedback"` // "up" or "down"
}
