// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mailer

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"
)

const dateLayout = "January 2, 2006"

const signature = `
If you have any questions or need help, contact us at **Student.Housing@univen.ac.za** or **+27 15 962 9218**.

**Warm regards,**
**University Housing Team**
**University of Venda**
`

var md = goldmark.New()

// render converts a markdown body to a standalone HTML document. Raw HTML in
// the source is not passed through.
func render(body string) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(`<html><body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">`)
	if err := md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	buf.WriteString("</body></html>")
	return buf.String(), nil
}

func compose(to, subject, body string) (Message, error) {
	html, err := render(body)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: subject, HTML: html}, nil
}

// ApplicationSubmitted confirms a new submission.
func ApplicationSubmitted(to, studentName string, residences []string, appliedAt time.Time) (Message, error) {
	body := fmt.Sprintf(`## Your Accommodation Application Has Been Submitted

Dear **%s**,

Thank you for applying for accommodation at **University of Venda**!

We're happy to confirm that your application for **%s** was submitted on **%s**.

### Here's what happens next

- Our team will review your application carefully.
- You can track your application status anytime on the "My Applications" page in your student portal.
- We'll notify you via email as soon as a decision has been made.
%s`, studentName, strings.Join(residences, ", "), appliedAt.Format(dateLayout), signature)

	return compose(to, "Your Accommodation Application Has Been Successfully Submitted", body)
}

// ApplicationApproved announces an offer the student may accept or decline.
func ApplicationApproved(to, studentName, residence string, appliedAt time.Time) (Message, error) {
	body := fmt.Sprintf(`## Your Accommodation Application Has Been Approved

Dear **%s**,

We are delighted to inform you that your application for accommodation at **%s** has been approved!

### Application details

- **Residence:** %s
- **Application Date:** %s
- **Status:** Approved

### What's next?

- Log in to your student portal under "My Applications" to review your offer.
- You can accept or reject the offer.
- If you accept, you will receive your room number and move-in instructions.
- If you reject, your spot will be offered to another student on the waiting list.
%s`, studentName, residence, residence, appliedAt.Format(dateLayout), signature)

	return compose(to, "Congratulations! Your Accommodation Application Has Been Approved", body)
}

// ApplicationRejected tells the student an application was unsuccessful.
func ApplicationRejected(to, studentName, residence string) (Message, error) {
	body := fmt.Sprintf(`## Update on Your Accommodation Application

Dear **%s**,

After careful consideration, we regret to inform you that your application for **%s** has not been successful this time. This decision was made based on limited availability and high demand for spaces.

### We encourage you to

- Check the student portal for other available residences.
- Stay updated on future openings as cancellations may arise.
%s`, studentName, residence, signature)

	return compose(to, "Update on Your Accommodation Application", body)
}

// OfferAccepted confirms acceptance. roomNumber may be empty for off-campus
// residences.
func OfferAccepted(to, studentName, residence, roomNumber string) (Message, error) {
	subject := "Offer Accepted"
	room := ""
	if roomNumber != "" {
		subject = "Room Assigned"
		room = fmt.Sprintf("\n**Your room number is: %s**\n", roomNumber)
	}

	body := fmt.Sprintf(`## Your Accommodation Offer Has Been Accepted

Dear **%s**,

You have successfully accepted your accommodation offer for **%s**.
%s
### Next steps

- You will receive final move-in instructions via email within the next few days.
- Please ensure all required documentation is ready for your move-in date.
%s`, studentName, residence, room, signature)

	return compose(to, subject, body)
}

// OfferRejected confirms the student declined an offer.
func OfferRejected(to, studentName, residence string) (Message, error) {
	body := fmt.Sprintf(`## Accommodation Offer Rejected

Dear **%s**,

We have received your decision to reject the accommodation offer for **%s**. Your spot will now be offered to another student on the waiting list.

If you change your mind, log in to your student portal and submit a new application.
%s`, studentName, residence, signature)

	return compose(to, "Offer Rejected", body)
}

// ResetCode carries a password reset OTP.
func ResetCode(to, code string, now, expiresAt time.Time) (Message, error) {
	body := fmt.Sprintf(`## Password Reset Verification

You have requested to reset your password. Use the following verification code:

# %s

This code expires %s.

If you did not request this password reset, please ignore this email.

Best regards,
University Housing Team
`, code, humanize.RelTime(expiresAt, now, "ago", "from now"))

	return compose(to, "Password Reset Verification Code", body)
}

// Test is the SMTP connectivity check.
func Test(to string) (Message, error) {
	return compose(to, "SMTP Test", "This is a test email from Univen Housing Portal.\n")
}
