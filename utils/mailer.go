package utils

import "taxly/config"

// SendEmail delivers an email through the configured provider.
// Replace the body of this function with your actual integration with your ESP's API.
func SendEmail(to, subject, body string) error {
	// For example, you could use an HTTP client to call your ESP endpoint:
	// resp, err := http.Post("https://api.youresp.com/send", "application/json", payloadReader)
	// Handle response and errors accordingly.
	// For now, we log the outgoing message.
	GetLogger().Sugar().Infof("Sending email from %s to %s [%s]: %s", config.AppConfig.MailFrom, to, subject, body)
	return nil
}
