package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nika.id/pkg/payment"
	"nika.id/pkg/plans"

	"gopkg.in/yaml.v3"
)

func TestWritePlans(t *testing.T) {
	var buf bytes.Buffer
	if err := writePlans(&buf, plans.NewStaticRegistry()); err != nil {
		t.Fatal(err)
	}
	var out map[string]map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not yaml: %v\n%s", err, buf.String())
	}
	gold, ok := out["GOLD"]
	if !ok {
		t.Fatalf("GOLD missing: %s", buf.String())
	}
	if gold["price"] != "199000" {
		t.Fatalf("GOLD price = %v", gold["price"])
	}
	if gold["maxGuests"] != 1000 {
		t.Fatalf("GOLD maxGuests = %v", gold["maxGuests"])
	}
}

func TestRunSimulateSendsSignedNotification(t *testing.T) {
	var got payment.Notification
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"applied":true}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	err := runSimulate(&out, srv.Client(), simulateOptions{
		url:       srv.URL,
		orderID:   "NIKA-7-1",
		status:    "settlement",
		amount:    "99000.00",
		serverKey: "SB-key",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.OrderID != "NIKA-7-1" || got.TransactionID == "" {
		t.Fatalf("unexpected notification %+v", got)
	}
	if !payment.VerifySignature(got, "SB-key") {
		t.Fatal("notification signature does not verify")
	}
	if !strings.Contains(out.String(), "-> 200") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestRunSimulateRejectsInput(t *testing.T) {
	if err := runSimulate(&bytes.Buffer{}, http.DefaultClient, simulateOptions{orderID: "x", status: "settlement"}); err == nil {
		t.Fatal("expected error without server key")
	}
	if err := runSimulate(&bytes.Buffer{}, http.DefaultClient, simulateOptions{orderID: "x", status: "refund", serverKey: "k"}); err == nil {
		t.Fatal("expected error for unsupported status")
	}
}

func TestRunSimulateReportsServerRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"INVALID_SIGNATURE"}`))
	}))
	defer srv.Close()
	err := runSimulate(&bytes.Buffer{}, srv.Client(), simulateOptions{url: srv.URL, orderID: "o", status: "expire", amount: "1", serverKey: "k"})
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("err = %v", err)
	}
}
