package handler

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/goblimey/go-club-manager/code/pkg/config"
	"github.com/goblimey/go-club-manager/code/pkg/database"
	"github.com/goblimey/go-club-manager/code/pkg/payments"
)

var successPageTemplate *template.Template

func init() {
	// Check the response HTML templates.
	successPageTemplate = template.Must(template.New("successPageTemplate").
		Parse(successPageTemplateStr))
}

// Handler serves the pages that take a member's fee through Stripe.
type Handler struct {
	Conf                 *config.Config     // The incoming config.
	Fees                 *payments.Checkout // Creates and completes Stripe sessions.
	PrePaymentErrorHTML  string             // The error page before the member pays.
	PostPaymentErrorHTML string             // The error page after the member has paid.
	Logger               *slog.Logger       // The daily logger.
}

// successPage holds the data displayed on the success page.
type successPage struct {
	ClubName     string
	FullName     string
	MemberNumber string
	Fee          string
	ContactEmail string
}

// New creates a Handler.  The checkout must already be set up.
func New(conf *config.Config, checkout *payments.Checkout, logger *slog.Logger) *Handler {

	if logger == nil {
		logger = slog.Default()
	}

	// If things go wrong after the member has paid they should be referred to somebody
	// who can refund their payment, for example the treasurer.
	prePaymentErrorHTML := fmt.Sprintf(prePaymentErrorHTMLPattern, conf.ContactEmail, conf.ContactEmail)
	postPaymentErrorHTML := fmt.Sprintf(postPaymentErrorHTMLPattern, conf.ContactEmail, conf.ContactEmail)

	h := Handler{
		Conf:                 conf,
		Fees:                 checkout,
		PrePaymentErrorHTML:  prePaymentErrorHTML,
		PostPaymentErrorHTML: postPaymentErrorHTML,
		Logger:               logger,
	}

	return &h
}

// Checkout is the handler for the /checkout?member=ID request.  It creates a
// Stripe checkout session for the member's fee and redirects to the Stripe
// payment page.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {

	h.Logger.Info("Checkout")

	memberIDStr := r.URL.Query().Get("member")
	memberID, parseError := strconv.ParseInt(memberIDStr, 10, 64)
	if parseError != nil {
		h.reportBadRequest(w, fmt.Errorf("checkout: bad member ID %q", memberIDStr))
		return
	}

	url, checkoutError := h.Fees.CreateFeeCheckout(r.Context(), memberID)
	if checkoutError != nil {
		if errors.Is(checkoutError, database.ErrNotFound) {
			h.reportBadRequest(w, checkoutError)
			return
		}
		h.reportError(w, h.PrePaymentErrorHTML, checkoutError)
		return
	}

	http.Redirect(w, r, url, http.StatusSeeOther)
}

// Success is the handler for the /success request.  After a successful
// payment, the Stripe system issues that request, filling in the
// {CHECKOUT_SESSION_ID} placeholder with the session ID.  The handler
// uses that to fetch the session and mark the member as paid.
func (h *Handler) Success(w http.ResponseWriter, r *http.Request) {

	sessionID := r.URL.Query().Get("session_id")

	h.Logger.Info("Success", "session", sessionID)

	if len(sessionID) == 0 {
		h.reportBadRequest(w, errors.New("success: no session ID"))
		return
	}

	memberID, completeError := h.Fees.Complete(r.Context(), sessionID)
	if completeError != nil {
		if errors.Is(completeError, payments.ErrNotPaid) {
			// Nothing has been taken so the member can try again.
			h.reportError(w, h.PrePaymentErrorHTML, completeError)
			return
		}
		h.reportError(w, h.PostPaymentErrorHTML, completeError)
		return
	}

	member, getError := h.Fees.Members.GetMember(r.Context(), memberID)
	if getError != nil {
		h.reportError(w, h.PostPaymentErrorHTML, getError)
		return
	}

	page := successPage{
		ClubName:     h.Conf.ClubName,
		FullName:     member.FullName,
		MemberNumber: member.MemberNumber,
		Fee:          fmt.Sprintf("%.2f", member.MembershipFee),
		ContactEmail: h.Conf.ContactEmail,
	}

	h.displaySuccessPage(w, &page)
}

// Cancel is the handler for the /cancel request.  Stripe makes that
// request when the payment is cancelled.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.Logger.Info("Cancel")
	w.Write([]byte(cancelHTML))
}

func (h *Handler) displaySuccessPage(w io.Writer, page *successPage) {
	executeError := successPageTemplate.Execute(w, page)
	if executeError != nil {
		h.Logger.Error(executeError.Error())
	}
}

func (h *Handler) reportError(w http.ResponseWriter, errorHTML string, err error) {
	h.Logger.Error(err.Error())
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte(errorHTML))
}

func (h *Handler) reportBadRequest(w http.ResponseWriter, err error) {
	h.Logger.Error(err.Error())
	w.WriteHeader(http.StatusBadRequest)
	w.Write([]byte(h.PrePaymentErrorHTML))
}

// Fatal logs a fatal error to the structured log and exits.
func (h *Handler) Fatal(err error) {
	h.Logger.Error(err.Error())
	os.Exit(-1)
}
