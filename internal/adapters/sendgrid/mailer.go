// Package sendgrid delivers notification e-mails through the SendGrid v3 API.
package sendgrid

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/bootcamp-booking/internal/notify"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	DefaultHost = "https://api.sendgrid.com"
	endpoint    = "/v3/mail/send"
)

type Mailer struct {
	key  string
	host string
	from *sgmail.Email
}

var _ notify.Mailer = (*Mailer)(nil)

func NewMailer(key, host, fromName, fromEmail string) *Mailer {
	if host == "" {
		host = DefaultHost
	}
	return &Mailer{key: key, host: host, from: sgmail.NewEmail(fromName, fromEmail)}
}

func (m *Mailer) prepare(msg notify.Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.To))

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.AddPersonalizations(p)
	v3.AddContent(
		sgmail.NewContent("text/plain", msg.Text),
		sgmail.NewContent("text/html", msg.HTML),
	)
	if msg.Template != "" {
		v3.AddCategories(msg.Template)
	}
	return v3
}

func (m *Mailer) Send(ctx context.Context, msg notify.Message) error {
	req := sendgrid.GetRequest(m.key, endpoint, m.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.prepare(msg))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return errors.Wrap(err, "sendgrid request")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return errors.Newf("sendgrid answered %d: %s", res.StatusCode, res.Body)
	}
	return nil
}
