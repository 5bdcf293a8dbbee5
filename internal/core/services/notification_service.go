package services

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"

	"github.com/shopspring/decimal"
)

// Notifier receives side-effect notifications from the ledger. Calls
// are fire-and-forget: implementations must never block a state
// transition or surface a failure to the caller.
type Notifier interface {
	MemberApproved(name string)
	WithdrawalDecided(memberName string, amount decimal.Decimal, status string)
	LoanDecided(memberName string, amount decimal.Decimal, status string)
	LoanCompleted(memberName string, amount decimal.Decimal)
}

// NotificationService pushes messages to the group's notify channel.
// Disabled (silently dropping everything) when no token is configured.
type NotificationService struct {
	notifyToken string
	endpoint    string
	enabled     bool
}

// NewNotificationService creates a new notification service
func NewNotificationService() *NotificationService {
	token := os.Getenv("NOTIFY_TOKEN")
	endpoint := os.Getenv("NOTIFY_ENDPOINT")
	if endpoint == "" {
		endpoint = "https://notify-api.line.me/api/notify"
	}
	return &NotificationService{
		notifyToken: token,
		endpoint:    endpoint,
		enabled:     token != "",
	}
}

// IsEnabled checks if notification is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

// send delivers a message in the background. Delivery errors are
// logged and swallowed so that a notify outage never rolls back or
// fails the transition it is attached to.
func (s *NotificationService) send(message string) {
	if !s.enabled {
		return
	}

	go func() {
		data := url.Values{}
		data.Set("message", message)

		req, err := http.NewRequest(http.MethodPost, s.endpoint, bytes.NewBufferString(data.Encode()))
		if err != nil {
			log.Printf("⚠️ notify: build request failed: %v", err)
			return
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Bearer "+s.notifyToken)

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			log.Printf("⚠️ notify: send failed: %v", err)
			return
		}
		resp.Body.Close()
	}()
}

// MemberApproved notifies that a member account was activated
func (s *NotificationService) MemberApproved(name string) {
	s.send(fmt.Sprintf("✅ Member approved: %s is now active", name))
}

// WithdrawalDecided notifies the outcome of a withdrawal decision
func (s *NotificationService) WithdrawalDecided(memberName string, amount decimal.Decimal, status string) {
	s.send(fmt.Sprintf("💸 Withdrawal %s: %s (%s)", status, memberName, amount.StringFixed(2)))
}

// LoanDecided notifies the outcome of a loan decision
func (s *NotificationService) LoanDecided(memberName string, amount decimal.Decimal, status string) {
	s.send(fmt.Sprintf("🏦 Loan %s: %s (%s)", status, memberName, amount.StringFixed(2)))
}

// LoanCompleted notifies that a loan was fully repaid
func (s *NotificationService) LoanCompleted(memberName string, amount decimal.Decimal) {
	s.send(fmt.Sprintf("🎉 Loan completed: %s repaid %s in full", memberName, amount.StringFixed(2)))
}
