// payments takes membership fees through a Stripe checkout session.  The
// session carries the member's id as its client reference, so when Stripe
// reports that the payment has been made the member can be marked as paid.
package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"

	"github.com/goblimey/go-club-manager/code/pkg/database"
)

// ErrNotPaid is returned by Complete if Stripe says the session hasn't
// been paid.
var ErrNotPaid = errors.New("payment not made")

// Settings holds the values that go into every checkout session.
type Settings struct {
	ClubName   string
	Currency   string // eg "eur"
	SuccessURL string // Stripe replaces {CHECKOUT_SESSION_ID} in this.
	CancelURL  string
}

// Members is the part of the club data that the checkout needs.
// *clubdata.Club satisfies it.
type Members interface {
	GetMember(ctx context.Context, memberID int64) (*database.Member, error)
	MarkMemberPaid(ctx context.Context, memberID int64) error
}

// Checkout creates checkout sessions and completes them.
type Checkout struct {
	Members  Members
	Settings Settings
	Logger   *slog.Logger

	// NewSession creates a Stripe session.  By default it's session.New.
	NewSession func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)

	// GetSession fetches a Stripe session.  By default it's session.Get.
	GetSession func(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// New creates a Checkout that talks to Stripe.  The caller must set
// stripe.Key first.
func New(members Members, settings Settings, logger *slog.Logger) *Checkout {
	if logger == nil {
		logger = slog.Default()
	}
	c := Checkout{
		Members:    members,
		Settings:   settings,
		Logger:     logger,
		NewSession: session.New,
		GetSession: session.Get,
	}
	return &c
}

// toCents converts a fee to the smallest currency unit, rounding to the
// nearest.
func toCents(fee float64) int64 {
	return int64(fee*100 + 0.5)
}

// NewFeeCheckoutParams creates the parameters for a checkout session that
// takes the member's fee.  The client reference is the member's id.
func NewFeeCheckoutParams(member *database.Member, settings Settings) *stripe.CheckoutSessionParams {

	invoicingEnabled := true

	description := fmt.Sprintf("%s membership %s", settings.ClubName, member.MemberNumber)

	invoiceData := stripe.CheckoutSessionInvoiceCreationInvoiceDataParams{
		Description: &description,
	}

	invoiceCreation := stripe.CheckoutSessionInvoiceCreationParams{
		Enabled:     &invoicingEnabled,
		InvoiceData: &invoiceData,
	}

	memberIDStr := strconv.FormatInt(member.ID, 10)

	params := &stripe.CheckoutSessionParams{
		Mode:            stripe.String(string(stripe.CheckoutSessionModePayment)),
		InvoiceCreation: &invoiceCreation,
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(settings.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Membership fee"),
					},
					UnitAmount: stripe.Int64(toCents(member.MembershipFee)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		// This ID will be returned in the session.
		ClientReferenceID: &memberIDStr,
		SuccessURL:        stripe.String(settings.SuccessURL),
		CancelURL:         stripe.String(settings.CancelURL),
	}

	if len(member.Email) > 0 {
		params.CustomerEmail = stripe.String(member.Email)
	}

	return params
}

// CreateFeeCheckout creates a checkout session for the member's fee and
// returns the URL of the Stripe payment page.
func (c *Checkout) CreateFeeCheckout(ctx context.Context, memberID int64) (string, error) {

	member, getError := c.Members.GetMember(ctx, memberID)
	if getError != nil {
		return "", getError
	}

	if member.Paid {
		return "", fmt.Errorf("member %s has already paid", member.MemberNumber)
	}

	params := NewFeeCheckoutParams(member, c.Settings)
	params.Context = ctx

	s, sessErr := c.NewSession(params)
	if sessErr != nil {
		c.Logger.Error("error creating Stripe session", "member", member.MemberNumber, "error", sessErr)
		return "", fmt.Errorf("error creating Stripe session: %w", sessErr)
	}

	c.Logger.Info("checkout session created", "member", member.MemberNumber, "session", s.ID)

	return s.URL, nil
}

// Complete fetches the checkout session and, if it's been paid, marks the
// member given by its client reference as paid.  It returns the member's
// id.
func (c *Checkout) Complete(ctx context.Context, sessionID string) (int64, error) {

	params := stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, sessionGetError := c.GetSession(sessionID, &params)
	if sessionGetError != nil {
		c.Logger.Error("error fetching Stripe session", "session", sessionID, "error", sessionGetError)
		return 0, fmt.Errorf("error fetching Stripe session: %w", sessionGetError)
	}

	if s.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return 0, ErrNotPaid
	}

	memberID, parseError := strconv.ParseInt(s.ClientReferenceID, 10, 64)
	if parseError != nil {
		// The customer has paid but we can't tell who they are.
		c.Logger.Error("bad client reference", "session", sessionID, "reference", s.ClientReferenceID)
		return 0, fmt.Errorf("error converting member ID %q: %w", s.ClientReferenceID, parseError)
	}

	paidError := c.Members.MarkMemberPaid(ctx, memberID)
	if paidError != nil {
		return 0, paidError
	}

	c.Logger.Info("fee paid", "memberID", memberID, "session", sessionID)

	return memberID, nil
}
