package djamo

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
)

const SignatureHeader = "X-Djamo-Signature"

// Event is a charge/events webhook delivery.
type Event struct {
	ID   string        `json:"id"`
	Type string        `json:"type"`
	Data domain.Charge `json:"data"`
}

func ParseEvent(body []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, errors.Wrap(domain.Invalid("malformed webhook payload"), err.Error())
	}
	if ev.Data.ID == "" {
		return ev, domain.Invalid("webhook payload has no charge id")
	}
	return ev, nil
}

// VerifySignature checks the hex HMAC-SHA256 of body. Without a configured
// secret no delivery can be authenticated and every one is refused.
func (c *Client) VerifySignature(body []byte, signature string) bool {
	if c.secret == "" {
		return false
	}
	return verify(c.secret, body, signature)
}

func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func verify(secret string, body []byte, signature string) bool {
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}
