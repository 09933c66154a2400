package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

const testServerKey = "SB-Mid-server-TEST"

func TestSignatureDeterministic(t *testing.T) {
	a := Signature("NIKA-1", "200", "99000.00", testServerKey)
	b := Signature("NIKA-1", "200", "99000.00", testServerKey)
	if a != b || len(a) != 128 {
		t.Fatalf("signature should be deterministic 128 hex chars, got %q", a)
	}
	if a == Signature("NIKA-1", "200", "99000.01", testServerKey) {
		t.Fatal("amount must affect the signature")
	}
}

func TestVerifySignature(t *testing.T) {
	n := BuildNotification("NIKA-abc", "settlement", "99000.00", testServerKey, "tx-1")
	if !VerifySignature(n, testServerKey) {
		t.Fatal("built notification must verify")
	}

	tests := []struct {
		name   string
		mutate func(*Notification)
		key    string
	}{
		{"tampered amount", func(n *Notification) { n.GrossAmount = "1.00" }, testServerKey},
		{"tampered status code", func(n *Notification) { n.StatusCode = "201" }, testServerKey},
		{"tampered order", func(n *Notification) { n.OrderID = "NIKA-other" }, testServerKey},
		{"wrong key", func(*Notification) {}, "other-key"},
		{"empty key", func(*Notification) {}, ""},
		{"missing signature", func(n *Notification) { n.SignatureKey = "" }, testServerKey},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := n
			tc.mutate(&m)
			if VerifySignature(m, tc.key) {
				t.Fatal("tampered notification must not verify")
			}
		})
	}
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		status, fraud string
		want          Outcome
	}{
		{"settlement", "", OutcomeSuccess},
		{"capture", "accept", OutcomeSuccess},
		{"capture", "challenge", OutcomeNone},
		{"capture", "deny", OutcomeFailed},
		{"pending", "", OutcomeNone},
		{"deny", "", OutcomeFailed},
		{"cancel", "", OutcomeFailed},
		{"expire", "", OutcomeFailed},
		{"failure", "", OutcomeFailed},
		{"refund", "", OutcomeNone},
		{"SETTLEMENT", "", OutcomeSuccess},
	}
	for _, tc := range tests {
		got := MapStatus(Notification{TransactionStatus: tc.status, FraudStatus: tc.fraud})
		if got != tc.want {
			t.Errorf("%s/%s: got %s want %s", tc.status, tc.fraud, got, tc.want)
		}
	}
}

func TestEventID(t *testing.T) {
	n := Notification{TransactionID: "tx-1", TransactionStatus: "settlement", OrderID: "NIKA-1"}
	if n.EventID() != "tx-1:settlement" {
		t.Errorf("got %q", n.EventID())
	}
	n.TransactionID = ""
	if n.EventID() != "NIKA-1:settlement" {
		t.Errorf("got %q", n.EventID())
	}
}

func TestBuildNotificationStatusCodes(t *testing.T) {
	for _, s := range SimulatedStatuses() {
		if !IsSimulatedStatus(s) {
			t.Errorf("%s should be accepted", s)
		}
		n := BuildNotification("NIKA-1", s, "10.00", testServerKey, "")
		if n.StatusCode == "" {
			t.Errorf("%s: missing status code", s)
		}
	}
	if IsSimulatedStatus("paid") {
		t.Error("unknown status must be rejected")
	}
}

func TestCreateSnapWithoutKey(t *testing.T) {
	g := NewMidtransGateway("", "", false)
	_, err := g.CreateSnap(context.Background(), SnapRequest{OrderID: "NIKA-1", Amount: decimal.NewFromInt(1)})
	if !errors.Is(err, ErrGatewayNotConfigured) {
		t.Fatalf("got %v", err)
	}
}

func TestSnapScriptURL(t *testing.T) {
	if SnapScriptURL(false) == SnapScriptURL(true) {
		t.Fatal("sandbox and production must differ")
	}
}
