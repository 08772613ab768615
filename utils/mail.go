package utils

import (
	"fmt"
	"log"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// GenerateOTP returns a single-use password reset code.
func GenerateOTP() string {
	return GenerateToken(32)
}

// SendOTP emails a password reset code to the address on the account.
func SendOTP(email string, otp string) error {
	from := mail.NewEmail("Opine Support", "donotreply@opine.app")
	subject := "Password Reset Code"

	to := mail.NewEmail("", email)

	plainTextContent := fmt.Sprintf("Your password reset code is: %s", otp)
	htmlContent := fmt.Sprintf("<strong>Your password reset code is: %s</strong>", otp)

	message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)

	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		log.Println("Error sending email:", err)
		return err
	}
	if response.StatusCode >= 400 {
		log.Println("SendGrid status:", response.StatusCode)
		return fmt.Errorf("sendgrid returned status %d", response.StatusCode)
	}

	log.Println("password reset email sent to:", email)
	return nil
}
