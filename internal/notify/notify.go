// Package notify turns order events into e-mails for the buyer.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	htmltemplate "html/template"
	"strconv"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/cockroachdb/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
	"github.com/robertarktes/bootcamp-booking/internal/observability"
)

type Message struct {
	Template string
	To       string
	ToName   string
	Subject  string
	Text     string
	HTML     string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Deduper reports false when key was already marked within ttl.
type Deduper interface {
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Patterns are the routing keys the notifier listens to.
var Patterns = []string{"order.paid", "order.refunded", "order.dropped"}

const dedupeTTL = 24 * time.Hour

type Notifier struct {
	mailer Mailer
	users  domain.UserRepository
	seen   Deduper
	logger observability.Logger
}

func NewNotifier(mailer Mailer, users domain.UserRepository, seen Deduper, logger observability.Logger) *Notifier {
	return &Notifier{mailer: mailer, users: users, seen: seen, logger: logger}
}

type content struct {
	subject string
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

var templates = map[string]content{
	"order.paid": {
		subject: "Inscription confirmée : {{.OfferingTitle}}",
		text: newText("paid",
			"Bonjour {{.Name}},\n\nVotre paiement de {{amount .Amount}} FCFA est confirmé.\n" +
				"Session : {{.SessionCity}}, du {{.DateStart}} au {{.DateEnd}}.\nRéférence : {{.ExternalID}}\n"),
		html: newHTML("paid",
			"<p>Bonjour {{.Name}},</p><p>Votre paiement de <strong>{{amount .Amount}} FCFA</strong> est confirmé.</p>" +
				"<p>Session : {{.SessionCity}}, du {{.DateStart}} au {{.DateEnd}}.</p><p>Référence : {{.ExternalID}}</p>"),
	},
	"order.refunded": {
		subject: "Remboursement effectué : {{.OfferingTitle}}",
		text: newText("refunded",
			"Bonjour {{.Name}},\n\nVotre inscription a été remboursée. Référence : {{.ExternalID}}\n"),
		html: newHTML("refunded",
			"<p>Bonjour {{.Name}},</p><p>Votre inscription a été remboursée.</p><p>Référence : {{.ExternalID}}</p>"),
	},
	"order.dropped": {
		subject: "Paiement non abouti : {{.OfferingTitle}}",
		text: newText("dropped",
			"Bonjour {{.Name}},\n\nVotre paiement n'a pas abouti. Vous pouvez reprendre votre inscription à tout moment.\n"),
		html: newHTML("dropped",
			"<p>Bonjour {{.Name}},</p><p>Votre paiement n'a pas abouti. Vous pouvez reprendre votre inscription à tout moment.</p>"),
	},
}

func newText(name, src string) *texttemplate.Template {
	return texttemplate.Must(texttemplate.New(name).Funcs(texttemplate.FuncMap{"amount": formatAmount}).Parse(src))
}

func newHTML(name, src string) *htmltemplate.Template {
	return htmltemplate.Must(htmltemplate.New(name).Funcs(htmltemplate.FuncMap{"amount": formatAmount}).Parse(src))
}

// formatAmount groups thousands with spaces: 250000 -> "250 000".
func formatAmount(v int64) string {
	s := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Render builds the message for an event, or returns ok=false for event
// types without a template.
func Render(eventType string, ev domain.OrderEvent) (Message, bool, error) {
	c, ok := templates[eventType]
	if !ok {
		return Message{}, false, nil
	}
	var subject, text, html bytes.Buffer
	if err := texttemplate.Must(texttemplate.New("subject").Parse(c.subject)).Execute(&subject, ev); err != nil {
		return Message{}, false, errors.Wrap(err, "render subject")
	}
	if err := c.text.Execute(&text, ev); err != nil {
		return Message{}, false, errors.Wrap(err, "render text")
	}
	if err := c.html.Execute(&html, ev); err != nil {
		return Message{}, false, errors.Wrap(err, "render html")
	}
	return Message{
		Template: eventType,
		To:       ev.Email,
		ToName:   ev.Name,
		Subject:  subject.String(),
		Text:     text.String(),
		HTML:     html.String(),
	}, true, nil
}

// Handle sends the e-mail for one event. Accounts that opted out of e-mail
// notifications are skipped.
func (n *Notifier) Handle(ctx context.Context, eventType, messageID string, body []byte) error {
	log := observability.LoggerFrom(ctx, n.logger).WithFields(map[string]interface{}{
		"event":      eventType,
		"message_id": messageID,
	})

	var ev domain.OrderEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return errors.Wrap(err, "decode order event")
	}
	msg, ok, err := Render(eventType, ev)
	if err != nil || !ok {
		return err
	}

	if u, err := n.users.GetUserByEmail(ctx, ev.Email); err == nil && !u.Notifications.Email {
		log.Debug("buyer opted out of e-mails")
		return nil
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return errors.Wrap(err, "load buyer")
	}

	if messageID != "" {
		first, err := n.seen.MarkOnce(ctx, "notify:"+messageID, dedupeTTL)
		if err != nil {
			return errors.Wrap(err, "dedupe")
		}
		if !first {
			log.Debug("duplicate delivery")
			return nil
		}
	}

	if err := n.mailer.Send(ctx, msg); err != nil {
		observability.EmailsSent.WithLabelValues(eventType, "error").Inc()
		return errors.Wrap(err, "send e-mail")
	}
	observability.EmailsSent.WithLabelValues(eventType, "sent").Inc()
	log.WithField("to", ev.Email).Info("notification sent")
	return nil
}

// Run handles deliveries until ctx ends or the channel closes. Failed
// messages are requeued once, then dropped.
func (n *Notifier) Run(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			if err := n.Handle(ctx, d.RoutingKey, d.MessageId, d.Body); err != nil {
				n.logger.WithError(err).WithField("event", d.RoutingKey).Error("notification failed")
				_ = d.Nack(false, !d.Redelivered)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	Logger observability.Logger
}

func (m LogMailer) Send(ctx context.Context, msg Message) error {
	m.Logger.WithFields(map[string]interface{}{
		"to":       msg.To,
		"subject":  msg.Subject,
		"template": msg.Template,
	}).Info("e-mail not sent, no mail provider configured")
	return nil
}

// PublishJSON lets the notifier stand in for the broker when everything runs
// in one process.
func (n *Notifier) PublishJSON(ctx context.Context, key, messageID string, body []byte) error {
	return n.Handle(ctx, key, messageID, body)
}
