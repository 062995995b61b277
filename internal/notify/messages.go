package notify

import (
	"fmt"
	"sort"
	"strings"
)

// VerificationEmail builds the message carrying a data-request verification
// code. The code must appear verbatim in both bodies; tests capture it from
// here.
func VerificationEmail(to, name, requestType, code string) Email {
	subject := "Verify your data request"

	html := fmt.Sprintf(`<p>Hello %s,</p>
<p>We received a <strong>%s</strong> request for the personal data associated with this email address.</p>
<p>Your verification code is:</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px;">%s</p>
<p>The code expires in 24 hours. If you did not make this request, you can ignore this email.</p>
<p>&mdash; tariff.ai Privacy Team</p>`, name, requestType, code)

	text := fmt.Sprintf(`Hello %s,

We received a %s request for the personal data associated with this email address.

Your verification code is: %s

The code expires in 24 hours. If you did not make this request, you can ignore this email.

- tariff.ai Privacy Team`, name, requestType, code)

	return Email{To: to, Subject: subject, HTMLBody: html, TextBody: text}
}

// ErasureConfirmationEmail builds the message confirming a completed erasure
// request, summarizing how many records were removed per collection.
func ErasureConfirmationEmail(to, name string, deleted map[string]int) Email {
	subject := "Your data erasure request is complete"

	collections := make([]string, 0, len(deleted))
	for k := range deleted {
		collections = append(collections, k)
	}
	sort.Strings(collections)

	var htmlRows, textRows strings.Builder
	for _, c := range collections {
		fmt.Fprintf(&htmlRows, "<li>%s: %d record(s) removed</li>\n", c, deleted[c])
		fmt.Fprintf(&textRows, "  %s: %d record(s) removed\n", c, deleted[c])
	}

	html := fmt.Sprintf(`<p>Hello %s,</p>
<p>Your erasure request has been completed. The following personal data was removed:</p>
<ul>
%s</ul>
<p>Your account record, if any, has been flagged for manual review rather than deleted automatically.</p>
<p>&mdash; tariff.ai Privacy Team</p>`, name, htmlRows.String())

	text := fmt.Sprintf(`Hello %s,

Your erasure request has been completed. The following personal data was removed:

%s
Your account record, if any, has been flagged for manual review rather than deleted automatically.

- tariff.ai Privacy Team`, name, textRows.String())

	return Email{To: to, Subject: subject, HTMLBody: html, TextBody: text}
}
