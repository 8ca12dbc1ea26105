// Package notification renders and dispatches transactional email.
// Dispatch is fire-and-forget: failures are logged, never surfaced, so a
// mailer outage can never block or fail the bidding protocol.
package notification

import (
	"bytes"
	"html/template"

	"github.com/atelier-works/atelier-engine/internal/shared/logger"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// Template names understood by the dispatcher.
const (
	TemplateBidConfirmation = "bid_confirmation"
	TemplateOutbid          = "outbid"
	TemplateAuctionWon      = "auction_won"
	TemplateAuctionEnded    = "auction_ended"
	TemplateWelcome         = "welcome"
)

var subjects = map[string]string{
	TemplateBidConfirmation: "Bid Confirmation - ATELIER",
	TemplateOutbid:          "You've Been Outbid - ATELIER",
	TemplateAuctionWon:      "Congratulations! You Won - ATELIER",
	TemplateAuctionEnded:    "Auction Ended - ATELIER",
	TemplateWelcome:         "Welcome to ATELIER",
}

// Data fields are looked up by name; a missing or mistyped field degrades to
// an empty spot in the rendered body instead of failing the send.
var bodies = map[string]string{
	TemplateBidConfirmation: `
        <h2>Bid Confirmation</h2>
        <p>Your bid of €{{.Amount}} has been placed on "{{.AuctionTitle}}".</p>
        <p>You will be notified if you are outbid.</p>`,
	TemplateOutbid: `
        <h2>You've Been Outbid</h2>
        <p>Your bid on "{{.AuctionTitle}}" has been exceeded.</p>
        <p>Current highest bid: €{{.CurrentPrice}}</p>
        <a href="{{.AppURL}}/piece/{{.AuctionID}}">Place a new bid</a>`,
	TemplateAuctionWon: `
        <h2>Congratulations! You Won!</h2>
        <p>You are the winning bidder for "{{.AuctionTitle}}".</p>
        <p>Winning bid: €{{.Amount}}</p>
        <p>Please complete payment within 48 hours.</p>`,
	TemplateAuctionEnded: `
        <h2>Auction Ended</h2>
        <p>The auction for "{{.AuctionTitle}}" has ended.</p>
        <p>Status: {{.Status}}</p>`,
	TemplateWelcome: `
        <h2>Welcome to ATELIER</h2>
        <p>Thank you for joining our exclusive auction platform.</p>
        <p>Start exploring unique pieces on The Floor.</p>`,
}

// Data is the bag of values a template renders against.
type Data map[string]any

// Dispatcher renders templates and hands them to a Mailer.
type Dispatcher struct {
	mailer    Mailer
	appURL    string
	templates map[string]*template.Template
}

// NewDispatcher creates a Dispatcher, parsing all templates up front.
func NewDispatcher(mailer Mailer, appURL string) *Dispatcher {
	templates := make(map[string]*template.Template, len(bodies))
	for name, body := range bodies {
		// Option missingkey=zero keeps renders defensive: absent fields
		// become blanks, not errors.
		templates[name] = template.Must(
			template.New(name).Option("missingkey=zero").Parse(body))
	}
	return &Dispatcher{
		mailer:    mailer,
		appURL:    appURL,
		templates: templates,
	}
}

// Notify dispatches one email asynchronously. It never reports failure to the
// caller; notification sits outside the transactional boundary of bidding
// and sweeping.
func (d *Dispatcher) Notify(to, templateName string, data Data) {
	go func() {
		if err := d.send(to, templateName, data); err != nil {
			log.Error("Notification dispatch failed",
				zap.String("to", to),
				zap.String("template", templateName),
				zap.Error(err),
			)
		}
	}()
}

func (d *Dispatcher) send(to, templateName string, data Data) error {
	tmpl, ok := d.templates[templateName]
	if !ok {
		log.Warn("Unknown notification template, dropping",
			zap.String("template", templateName))
		return nil
	}

	if data == nil {
		data = Data{}
	}
	data["AppURL"] = d.appURL

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return err
	}
	return d.mailer.Send(to, subjects[templateName], body.String())
}
