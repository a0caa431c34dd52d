package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"

	"github.com/goblimey/go-club-manager/code/pkg/database"
)

var settings = Settings{
	ClubName:   "Test Club",
	Currency:   "eur",
	SuccessURL: "https://example.com/success?session_id={CHECKOUT_SESSION_ID}",
	CancelURL:  "https://example.com/cancel",
}

// fakeMembers holds members in memory.
type fakeMembers struct {
	members map[int64]*database.Member
}

func (f *fakeMembers) GetMember(ctx context.Context, id int64) (*database.Member, error) {
	m, ok := f.members[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return m, nil
}

func (f *fakeMembers) MarkMemberPaid(ctx context.Context, id int64) error {
	m, ok := f.members[id]
	if !ok {
		return database.ErrNotFound
	}
	m.Paid = true
	return nil
}

func newFakeMembers() *fakeMembers {
	return &fakeMembers{members: map[int64]*database.Member{
		42: {ID: 42, MemberNumber: "SOC-0042", Email: "ann@example.com", MembershipFee: 20},
		7:  {ID: 7, MemberNumber: "SOC-0007", MembershipFee: 10.5, Paid: true},
	}}
}

func TestToCents(t *testing.T) {

	var testData = []struct {
		fee  float64
		want int64
	}{
		{20, 2000},
		{10.5, 1050},
		{19.99, 1999},
		{0.1, 10},
	}

	for _, td := range testData {
		got := toCents(td.fee)
		if got != td.want {
			t.Errorf("%v: want %d got %d", td.fee, td.want, got)
		}
	}
}

// TestNewFeeCheckoutParams checks the amount, the currency and the client
// reference.
func TestNewFeeCheckoutParams(t *testing.T) {

	member := database.Member{ID: 42, MemberNumber: "SOC-0042", Email: "ann@example.com", MembershipFee: 20}

	params := NewFeeCheckoutParams(&member, settings)

	require.Len(t, params.LineItems, 1)
	item := params.LineItems[0]
	assert.Equal(t, int64(2000), *item.PriceData.UnitAmount)
	assert.Equal(t, "eur", *item.PriceData.Currency)
	assert.Equal(t, int64(1), *item.Quantity)
	assert.Equal(t, "42", *params.ClientReferenceID)
	assert.Equal(t, string(stripe.CheckoutSessionModePayment), *params.Mode)
	assert.Equal(t, settings.SuccessURL, *params.SuccessURL)
	assert.Equal(t, settings.CancelURL, *params.CancelURL)
	assert.Equal(t, "ann@example.com", *params.CustomerEmail)
	assert.Equal(t, "Test Club membership SOC-0042", *params.InvoiceCreation.InvoiceData.Description)
}

func TestCreateFeeCheckout(t *testing.T) {

	var got *stripe.CheckoutSessionParams
	checkout := New(newFakeMembers(), settings, nil)
	checkout.NewSession = func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		got = params
		return &stripe.CheckoutSession{ID: "cs_1", URL: "https://checkout.example.com/cs_1"}, nil
	}

	url, err := checkout.CreateFeeCheckout(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example.com/cs_1", url)
	require.NotNil(t, got)
	assert.Equal(t, "42", *got.ClientReferenceID)

	// Member 7 has already paid.
	_, err = checkout.CreateFeeCheckout(context.Background(), 7)
	assert.Error(t, err)

	_, err = checkout.CreateFeeCheckout(context.Background(), 99)
	assert.ErrorIs(t, err, database.ErrNotFound)

	checkout.NewSession = func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		return nil, errors.New("stripe is down")
	}
	_, err = checkout.CreateFeeCheckout(context.Background(), 42)
	assert.ErrorContains(t, err, "stripe is down")
}

// TestComplete checks that a paid session marks the member as paid.
func TestComplete(t *testing.T) {

	members := newFakeMembers()
	checkout := New(members, settings, nil)

	sessions := map[string]*stripe.CheckoutSession{
		"paid":   {ID: "paid", ClientReferenceID: "42", PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid},
		"unpaid": {ID: "unpaid", ClientReferenceID: "42", PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid},
		"junk":   {ID: "junk", ClientReferenceID: "x", PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid},
	}
	checkout.GetSession = func(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		s, ok := sessions[id]
		if !ok {
			return nil, errors.New("no such session")
		}
		return s, nil
	}

	_, err := checkout.Complete(context.Background(), "unpaid")
	assert.ErrorIs(t, err, ErrNotPaid)
	assert.False(t, members.members[42].Paid)

	_, err = checkout.Complete(context.Background(), "junk")
	assert.Error(t, err)

	_, err = checkout.Complete(context.Background(), "missing")
	assert.Error(t, err)

	id, err := checkout.Complete(context.Background(), "paid")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.True(t, members.members[42].Paid)
}
