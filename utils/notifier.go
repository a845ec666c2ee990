package utils

import (
	"fmt"
	"log"

	"warehouse-app/config"

	"gopkg.in/gomail.v2"
)

// SendOrderConfirmedMail sends a short summary when a batch inbound
// order flips to confirmed. No-op unless SMTP is configured.
func SendOrderConfirmedMail(orderNo string, itemCount int) {
	if config.SMTPHost == "" || config.SMTPSender == "" || config.SMTPReceiver == "" {
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", config.SMTPSender)
	msg.SetHeader("To", config.SMTPReceiver)
	msg.SetHeader("Subject", "Batch inbound order "+orderNo+" confirmed")
	msg.SetBody("text/plain", fmt.Sprintf("Order %s is fully confirmed (%d items).", orderNo, itemCount))

	dialer := gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPSender, config.SMTPPassword)
	if err := dialer.DialAndSend(msg); err != nil {
		log.Printf("Failed to send confirmation mail for %s: %v", orderNo, err)
	}
}
