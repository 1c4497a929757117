package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const webAppDataKey = "WebAppData"

func secretKey(botToken string) []byte {
	h := hmac.New(sha256.New, []byte(webAppDataKey))
	h.Write([]byte(botToken))
	return h.Sum(nil)
}

// Sign returns the hex hash of values for botToken.
func Sign(values url.Values, botToken string) string {
	h := hmac.New(sha256.New, secretKey(botToken))
	h.Write([]byte(DataCheckString(values)))
	return hex.EncodeToString(h.Sum(nil))
}

// Mint produces signed init data for user, as a Telegram client would receive it.
func Mint(user User, botToken string, authDate time.Time) (string, error) {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return "", errors.Wrap(err, "[telegram.Mint] failed to encode user")
	}
	values := url.Values{}
	values.Set(keyUser, string(userJSON))
	values.Set(keyAuthDate, strconv.FormatInt(authDate.Unix(), 10))
	values.Set(keyHash, Sign(values, botToken))
	return values.Encode(), nil
}

// Verify parses raw and checks its hash against botToken. A positive maxAge also
// rejects init data without an auth_date or with one older than maxAge at now.
func Verify(raw, botToken string, now time.Time, maxAge time.Duration) (*InitData, error) {
	data, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	if data.Hash == "" {
		return nil, ErrHashMissing
	}

	expected, err := hex.DecodeString(Sign(data.Values, botToken))
	if err != nil {
		return nil, errors.Wrap(err, "[telegram.Verify] failed to decode expected hash")
	}
	got, err := hex.DecodeString(data.Hash)
	if err != nil || !hmac.Equal(expected, got) {
		return nil, ErrHashMismatch
	}

	if maxAge > 0 {
		if data.AuthDate.IsZero() {
			return nil, ErrAuthDateMissing
		}
		if now.Sub(data.AuthDate) > maxAge {
			return nil, ErrInitDataExpired
		}
	}
	return data, nil
}
