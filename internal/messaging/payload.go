package messaging

// EmailMessage is the payload published to the email queue. The consumer
// hands it to the configured EmailSender as-is.
type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
