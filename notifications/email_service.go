package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	config "github.com/mentorlink/backend/configs"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

type BrevoService struct {
	APIKey      string
	SenderEmail string
	SenderName  string
	client      *http.Client
}

// EmailClient is constructed once at boot and reused for the process
// lifetime. Nil means email is disabled and sends become no-ops.
var EmailClient *BrevoService

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

type brevoResponse struct {
	MessageID string `json:"messageId"`
}

func InitEmailService() {
	apiKey := config.Config("BREVO_API_KEY")
	senderEmail := config.Config("EMAIL_SENDER")
	senderName := config.Config("EMAIL_SENDER_NAME")

	if apiKey == "" || senderEmail == "" || senderName == "" {
		log.Println("⚠️ Email service not configured. Missing API Key, Sender Email, or Sender Name.")
		EmailClient = nil
		return
	}

	EmailClient = &BrevoService{
		APIKey:      apiKey,
		SenderEmail: senderEmail,
		SenderName:  senderName,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
	log.Println("✅ Email service initialized successfully.")
}

func (s *BrevoService) send(toEmail, toName, subject, htmlContent string) (string, error) {
	if toEmail == "" || !strings.Contains(toEmail, "@") {
		return "", fmt.Errorf("invalid recipient email: %s", toEmail)
	}

	recipientName := toName
	if recipientName == "" {
		recipientName = toEmail[:strings.Index(toEmail, "@")]
	}

	payload := brevoPayload{
		Sender:      map[string]string{"name": s.SenderName, "email": s.SenderEmail},
		To:          []map[string]string{{"email": toEmail, "name": recipientName}},
		Subject:     subject,
		HTMLContent: htmlContent,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %v", err)
	}

	req, err := http.NewRequest("POST", brevoEndpoint, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.APIKey)
	req.Header.Set("content-type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("failed to send email via Brevo: %s", string(bodyBytes))
	}

	var parsed brevoResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return "", nil
	}
	return parsed.MessageID, nil
}

// SendEmail delivers best-effort. Callers run it in a goroutine; a
// delivery failure never fails the triggering request.
func SendEmail(toName, toEmail, subject, htmlContent string) {
	if EmailClient == nil {
		log.Println("Email client not initialized, skipping email send.")
		return
	}

	messageID, err := EmailClient.send(toEmail, toName, subject, htmlContent)
	if err != nil {
		log.Printf("🔥 Failed to send email to %s: %v", toEmail, err)
		return
	}

	log.Printf("✅ Email sent to %s (message id: %s)", toEmail, messageID)
}

func SendVerificationCode(toName, toEmail, code string) {
	SendEmail(toName, toEmail, "Verify Your Email Address",
		fmt.Sprintf("<h1>Welcome to MentorLink!</h1><p>Your verification code is:</p><h2>%s</h2><p>This code expires in 10 minutes.</p>", code))
}

func SendPasswordResetCode(toName, toEmail, code string) {
	SendEmail(toName, toEmail, "Your Password Reset Code",
		fmt.Sprintf("<h1>Password Reset</h1><p>Use this code to reset your password:</p><h2>%s</h2><p>This code expires in 5 minutes.</p>", code))
}

func SendApprovalDecision(toName, toEmail string, approved bool, reason string) {
	if approved {
		SendEmail(toName, toEmail, "Your Mentor Application has been Approved!",
			"<h1>Congratulations!</h1><p>Your application to become a mentor has been approved. You can now list services and accept bookings.</p>")
		return
	}

	body := "<h1>Application Update</h1><p>We regret to inform you that after careful review, your mentor application was not approved at this time.</p>"
	if reason != "" {
		body += fmt.Sprintf("<p><b>Reason:</b> %s</p>", reason)
	}
	SendEmail(toName, toEmail, "Update on Your Mentor Application", body)
}

func SendPayoutCompleted(toName, toEmail string, gross, fee, net float64) {
	SendEmail(toName, toEmail, "Your Payout Has Been Processed",
		fmt.Sprintf("<h1>Payout Processed</h1><p>Hello %s,</p><p>Your withdrawal of $%.2f has been processed. After the platform fee of $%.2f, $%.2f has been sent to your payout method.</p>", toName, gross, fee, net))
}

func SendPayoutRejected(toName, toEmail string, gross float64, notes string) {
	SendEmail(toName, toEmail, "Update on Your Payout Request",
		fmt.Sprintf("<h1>Payout Request Update</h1><p>Hello %s,</p><p>Your payout request for $%.2f was rejected. The funds have been returned to your available balance.</p><p><b>Admin Notes:</b> %s</p>", toName, gross, notes))
}
