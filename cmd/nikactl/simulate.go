package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"nika.id/configs"
	"nika.id/pkg/payment"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type simulateOptions struct {
	url       string
	orderID   string
	status    string
	amount    string
	serverKey string
	txID      string
}

func simulateWebhookCmd() *cobra.Command {
	var o simulateOptions
	cmd := &cobra.Command{
		Use:   "simulate-webhook",
		Short: "Send a signed Midtrans notification to the server",
		Long: `Build a notification signed with the server key and POST it to /api/payment/notification.
The amount must be the transaction's gross amount as the gateway prints it, e.g. 99000.00.`,
		Example: `  nikactl simulate-webhook --order NIKA-1-1700000000 --amount 99000.00
  nikactl simulate-webhook --order NIKA-1-1700000000 --amount 99000.00 --status expire`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configs.Load()
			if err != nil {
				return err
			}
			if o.serverKey == "" {
				o.serverKey = cfg.MidtransServerKey
			}
			if o.url == "" {
				o.url = cfg.AppURL + "/api/payment/notification"
			}
			return runSimulate(cmd.OutOrStdout(), &http.Client{Timeout: 15 * time.Second}, o)
		},
	}
	cmd.Flags().StringVar(&o.url, "url", "", "notification endpoint (default $NEXT_PUBLIC_APP_URL/api/payment/notification)")
	cmd.Flags().StringVar(&o.orderID, "order", "", "order ID of the pending transaction")
	cmd.Flags().StringVar(&o.status, "status", "settlement", "transaction_status to send")
	cmd.Flags().StringVar(&o.amount, "amount", "", "gross_amount, e.g. 99000.00")
	cmd.Flags().StringVar(&o.serverKey, "server-key", "", "Midtrans server key (default $MIDTRANS_SERVER_KEY)")
	cmd.Flags().StringVar(&o.txID, "transaction-id", "", "gateway transaction ID (random when empty)")
	_ = cmd.MarkFlagRequired("order")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func runSimulate(w io.Writer, client *http.Client, o simulateOptions) error {
	if o.serverKey == "" {
		return errors.New("no server key: pass --server-key or set MIDTRANS_SERVER_KEY")
	}
	if !payment.IsSimulatedStatus(o.status) {
		return fmt.Errorf("unsupported status %q, use one of %v", o.status, payment.SimulatedStatuses())
	}
	if o.txID == "" {
		o.txID = uuid.NewString()
	}
	n := payment.BuildNotification(o.orderID, o.status, o.amount, o.serverKey, o.txID)
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}
	resp, err := client.Post(o.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	defer resp.Body.Close()
	reply, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	fmt.Fprintf(w, "%s %s -> %d %s\n", n.OrderID, n.TransactionStatus, resp.StatusCode, bytes.TrimSpace(reply))
	if resp.StatusCode >= 300 {
		return fmt.Errorf("server answered %d", resp.StatusCode)
	}
	return nil
}
