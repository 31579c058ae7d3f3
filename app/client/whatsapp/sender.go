package whatsapp

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"babybites/app/config"

	"github.com/samber/do"
	"github.com/samber/oops"
)

const metaAPIBase = "https://graph.facebook.com/v21.0"

// Sender posts text messages via the Meta Cloud API. Sends are idempotent,
// the same recipient and body always produce the same Idempotency-Key.
type Sender struct {
	cfg        *config.Config
	httpClient *http.Client
	baseURL    string
}

func NewSender(di *do.Injector) (*Sender, error) {
	return &Sender{
		cfg: do.MustInvoke[*config.Config](di),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: metaAPIBase,
	}, nil
}

func idempotencyKey(to, body string) string {
	sum := sha256.Sum256([]byte(to + ":" + body))

	return hex.EncodeToString(sum[:])[:32]
}

func (c *Sender) SendText(ctx context.Context, to, body string) error {
	if c.cfg.WhatsApp.AccessToken == "" || c.cfg.WhatsApp.PhoneID == "" {
		slog.Warn("WhatsApp credentials not configured, skipping send", "to", to)
		return nil
	}

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                strings.TrimPrefix(to, "+"),
		"type":              "text",
		"text":              map[string]string{"body": body},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return oops.Errorf("failed to marshal message: %w", err)
	}

	url := c.baseURL + "/" + c.cfg.WhatsApp.PhoneID + "/messages"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return oops.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.cfg.WhatsApp.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", idempotencyKey(to, body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return oops.Errorf("whatsapp send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))

		return oops.
			With("status", resp.StatusCode).
			Errorf("whatsapp send failed: %s", string(snippet))
	}

	return nil
}

// VerifySignature checks the X-Hub-Signature-256 header from Meta against the
// app secret. An empty secret disables verification.
func VerifySignature(body []byte, signatureHeader, secret string) bool {
	if secret == "" {
		return true
	}
	if !strings.HasPrefix(signatureHeader, "sha256=") {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	received := strings.ToLower(strings.TrimPrefix(signatureHeader, "sha256="))

	return hmac.Equal([]byte(expected), []byte(received))
}
