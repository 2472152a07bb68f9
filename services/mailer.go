package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/kento-cell/MyHobbyCoffee/models"
	"github.com/kento-cell/MyHobbyCoffee/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Notifier sends plain-text mail.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NopNotifier stands in when mail is not configured.
type NopNotifier struct{}

func (NopNotifier) Send(ctx context.Context, to, subject, body string) error {
	utils.InfoLogger.Warnf("Gmail env vars are missing; skip sending %q to %s", subject, to)
	return nil
}

type GmailConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	Sender       string
}

func (c GmailConfig) complete() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != "" && c.Sender != ""
}

// GmailNotifier sends through users.messages.send as the authorised account.
type GmailNotifier struct {
	sender string
	svc    *gmail.Service
}

// NewNotifier returns a GmailNotifier, or a NopNotifier when credentials are
// incomplete or the client cannot be built.
func NewNotifier(ctx context.Context, cfg GmailConfig) Notifier {
	if !cfg.complete() {
		utils.InfoLogger.Warn("Gmail env vars are missing; order notifications are disabled")
		return NopNotifier{}
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}
	ts := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	n, err := NewGmailNotifier(ctx, cfg.Sender, option.WithTokenSource(ts))
	if err != nil {
		utils.ErrorLogger.Errorf("build gmail client: %v", err)
		return NopNotifier{}
	}
	return n
}

func NewGmailNotifier(ctx context.Context, sender string, opts ...option.ClientOption) (*GmailNotifier, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GmailNotifier{sender: sender, svc: svc}, nil
}

func (n *GmailNotifier) Send(ctx context.Context, to, subject, body string) error {
	msg := &gmail.Message{Raw: BuildRawMessage(n.sender, to, subject, body)}
	if _, err := n.svc.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("gmail send: %w", err)
	}
	utils.InfoLogger.Printf("sent %q to %s", subject, to)
	return nil
}

// BuildRawMessage renders an RFC 2822 message encoded as unpadded base64url.
func BuildRawMessage(from, to, subject, body string) string {
	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + mime.QEncoding.Encode("utf-8", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"Content-Transfer-Encoding: base64",
	}

	var b strings.Builder
	b.WriteString(strings.Join(headers, "\r\n"))
	b.WriteString("\r\n\r\n")

	encoded := base64.StdEncoding.EncodeToString([]byte(body))
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded)

	return base64.RawURLEncoding.EncodeToString([]byte(b.String()))
}

const dateLayout = "2006-01-02"

func dateOrPending(t *time.Time) string {
	if t == nil {
		return "未計算"
	}
	return t.Format(dateLayout)
}

// BuildOrderNotification renders the subject and body of the shop's order mail.
func BuildOrderNotification(order models.Order, profile *models.RoastProfile, at time.Time) (subject, body string) {
	title := "Unknown product"
	if len(order.Items) > 0 {
		title = order.Items[0].ProductName
	}
	if len(order.Items) > 1 {
		title = fmt.Sprintf("%s 他%d点", title, len(order.Items)-1)
	}
	subject = fmt.Sprintf("注文通知（%s）", title)

	roast := "未指定"
	if order.RoastID != nil && *order.RoastID != "" {
		roast = *order.RoastID
	}
	if profile != nil {
		roast = profile.Name
	}

	taste := "未計算"
	if order.TasteStart != nil && order.TasteEnd != nil {
		taste = fmt.Sprintf("%s 〜 %s", order.TasteStart.Format(dateLayout), order.TasteEnd.Format(dateLayout))
	}

	lines := []string{"注文ID: " + order.StripeSessionID}
	for _, it := range order.Items {
		lines = append(lines, fmt.Sprintf("商品名: %s / グラム数: %dg x %d / 小計: %s",
			it.ProductName, it.Grams, it.Qty, utils.FormatYen(it.Subtotal)))
	}
	lines = append(lines,
		"焙煎度: "+roast,
		"購入日時: "+at.Format(time.RFC3339),
		"飲み頃: "+taste,
		"賞味期限: "+dateOrPending(order.ExpiryDate),
		"Stripe 金額: "+utils.FormatYen(order.TotalAmount),
		"顧客メール: "+order.Email,
	)
	return subject, strings.Join(lines, "\n")
}
