package payment

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Notification is the HTTP notification body Midtrans posts for every status change.
type Notification struct {
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	TransactionTime   string `json:"transaction_time"`
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status,omitempty"`
	Currency          string `json:"currency,omitempty"`
}

// EventID identifies one delivery for deduplication; Midtrans resends the same pair on retry.
func (n Notification) EventID() string {
	id := n.TransactionID
	if id == "" {
		id = n.OrderID
	}
	return id + ":" + n.TransactionStatus
}

// Signature computes sha512(order_id + status_code + gross_amount + server_key) as lowercase hex.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func VerifySignature(n Notification, serverKey string) bool {
	if serverKey == "" || n.SignatureKey == "" {
		return false
	}
	want := Signature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	got := strings.ToLower(strings.TrimSpace(n.SignatureKey))
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSuccess
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	}
	return "none"
}

// MapStatus reduces a Midtrans status to the transaction outcome. Card captures only count when the
// fraud check accepted them; pending and unknown statuses change nothing.
func MapStatus(n Notification) Outcome {
	switch strings.ToLower(n.TransactionStatus) {
	case "capture":
		switch strings.ToLower(n.FraudStatus) {
		case "", "accept":
			return OutcomeSuccess
		case "deny":
			return OutcomeFailed
		}
		return OutcomeNone
	case "settlement":
		return OutcomeSuccess
	case "deny", "cancel", "expire", "failure":
		return OutcomeFailed
	}
	return OutcomeNone
}

var simulatedStatusCodes = map[string]string{
	"capture":    "200",
	"settlement": "200",
	"pending":    "201",
	"deny":       "202",
	"failure":    "202",
	"cancel":     "200",
	"expire":     "407",
}

// SimulatedStatuses lists what the development simulator accepts.
func SimulatedStatuses() []string {
	return []string{"settlement", "capture", "pending", "deny", "cancel", "expire", "failure"}
}

func IsSimulatedStatus(status string) bool {
	_, ok := simulatedStatusCodes[strings.ToLower(status)]
	return ok
}

// BuildNotification produces a correctly signed notification, as the gateway would send it.
func BuildNotification(orderID, status, grossAmount, serverKey, transactionID string) Notification {
	status = strings.ToLower(status)
	code := simulatedStatusCodes[status]
	n := Notification{
		TransactionID:     transactionID,
		TransactionStatus: status,
		StatusCode:        code,
		OrderID:           orderID,
		GrossAmount:       grossAmount,
		PaymentType:       "simulator",
		Currency:          "IDR",
	}
	if status == "capture" {
		n.FraudStatus = "accept"
	}
	n.SignatureKey = Signature(orderID, code, grossAmount, serverKey)
	return n
}
