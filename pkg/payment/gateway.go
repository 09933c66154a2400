// Package payment talks to the Midtrans Snap API and validates its notifications.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
)

var ErrGatewayNotConfigured = errors.New("payment gateway not configured")

type SnapRequest struct {
	OrderID       string
	Amount        decimal.Decimal
	ItemID        string
	ItemName      string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

type SnapResult struct {
	Token       string
	RedirectURL string
}

// Gateway creates hosted payment sessions and knows the server key notifications are signed with.
type Gateway interface {
	CreateSnap(ctx context.Context, req SnapRequest) (SnapResult, error)
	ServerKey() string
	ClientKey() string
	IsProduction() bool
}

type MidtransGateway struct {
	client     snap.Client
	serverKey  string
	clientKey  string
	production bool
}

func NewMidtransGateway(serverKey, clientKey string, production bool) *MidtransGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	g := &MidtransGateway{serverKey: serverKey, clientKey: clientKey, production: production}
	g.client.New(serverKey, env)
	return g
}

func (g *MidtransGateway) ServerKey() string  { return g.serverKey }
func (g *MidtransGateway) ClientKey() string  { return g.clientKey }
func (g *MidtransGateway) IsProduction() bool { return g.production }

func (g *MidtransGateway) CreateSnap(_ context.Context, req SnapRequest) (SnapResult, error) {
	if g.serverKey == "" {
		return SnapResult{}, ErrGatewayNotConfigured
	}
	amount := req.Amount.Round(0).IntPart()
	sr := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.CustomerName,
			Email: req.CustomerEmail,
			Phone: req.CustomerPhone,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    req.ItemID,
			Name:  req.ItemName,
			Price: amount,
			Qty:   1,
		}},
	}
	resp, mErr := g.client.CreateTransaction(sr)
	if mErr != nil {
		return SnapResult{}, fmt.Errorf("midtrans snap: %s", mErr.GetMessage())
	}
	return SnapResult{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

// SnapScriptURL is the Snap.js location matching the environment.
func SnapScriptURL(production bool) string {
	if production {
		return "https://app.midtrans.com/snap/snap.js"
	}
	return "https://app.sandbox.midtrans.com/snap/snap.js"
}
