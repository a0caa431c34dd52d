package handler

// successPageTemplateStr defines the page displayed when the fee has been
// paid.
const successPageTemplateStr = `
<html>
	<head><title>Payment Successful</title></head>
    <body style='font-size: 100%'>
	<h2>{{.ClubName}}</h2>
        <p>
			Thank you for your payment, {{.FullName}}.
			Your membership number is {{.MemberNumber}}.
		</p>
		<p>
			<table>
				<tr>
					<td style='border: 0'>membership fee</td>
					<td style='border: 0'>{{.Fee}}</td>
				</tr>
			</table>
		</p>
		{{if ne .ContactEmail ""}}
		<p>
		    If you have any questions, please email
		    <a href="mailto:{{.ContactEmail}}">
			    {{.ContactEmail}}
			</a>.
		</p>
		{{end}}
    </body>
</html>
`

// cancelHTML defines the cancel page, called when the payment is cancelled
// on the Stripe system.
const cancelHTML = `
<html>
  <head><title>cancelled</title></head>
  <body style='font-size: 100%'>
    <h1>Payment cancelled</h1>
  </body>
</html>
`

// prePaymentErrorHTMLPattern defines the error page before the member has
// paid.  It may be used when the template system itself is failing, so it's
// expanded using Sprintf ("100%" must be presented as "100%%").  The email
// address comes from the config, not from the user.
const prePaymentErrorHTMLPattern = `
<html>
    <head><title>error</title></head>
    <body style='font-size: 100%%'>
		<p>
			Internal error.  Please try again.
			If the error persists, please email
			<a href="mailto:%s">
				%s
			</a>
		</p>
    </body>
</html>
`

// postPaymentErrorHTMLPattern defines the error page after the member has
// paid.  The member may be due a refund so the email address should be
// somebody who can arrange that, eg the treasurer.
const postPaymentErrorHTMLPattern = `
<html>
    <head><title>error</title></head>
    <body style='font-size: 100%%'>
		<p>
			Something went wrong after you had paid.
			Please
			<a href="mailto:%s">
				%s
			</a>
		</p>
    </body>
</html>
`
