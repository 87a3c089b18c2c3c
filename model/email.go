package model

// EmailMessage is a single email as handed over by the loader.
// Body is the raw text passed to the annotator.
type EmailMessage struct {
	MessageID string `json:"message_id"`
	ThreadID  string `json:"thread_id,omitempty"`
	FromName  string `json:"from_name,omitempty"`
	FromEmail string `json:"from_email,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Body      string `json:"body,omitempty"`
}

// EmailWithMentions bundles an email with the mentions found in its body
type EmailWithMentions struct {
	Email    *EmailMessage `json:"email"`
	Mentions []Mention     `json:"mentions"`
}
