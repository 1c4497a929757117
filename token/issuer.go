// Package token issues and inspects the session JWTs handed out by the dev
// backend once a Telegram user has authenticated and signed the agreement.
package token

import (
	"strconv"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrInvalidToken is returned for tokens that fail parsing, signature or expiry checks
var ErrInvalidToken = errors.New("invalid token")

// Claims is the decoded view of a session token
type Claims struct {
	ID               string    `json:"jti"`
	Subject          string    `json:"sub"`
	AgreementVersion string    `json:"agreement_version,omitempty"`
	IssuedAt         time.Time `json:"iat"`
	ExpiresAt        time.Time `json:"exp"`
}

// TelegramID returns the subject as a Telegram user id
func (c *Claims) TelegramID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "[TelegramID] subject %q is not a telegram id", c.Subject)
	}
	return id, nil
}

// Issuer creates and verifies session tokens
type Issuer struct {
	signer  Signer
	expiry  time.Duration
	nowTime func() time.Time
	newID   func() string
}

// IssuerOption defines a function type to modify the Issuer instance.
type IssuerOption func(*Issuer)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowTime = nowFunc
	}
}

// WithIDGenerator sets the jti generator
func WithIDGenerator(newID func() string) IssuerOption {
	return func(i *Issuer) {
		i.newID = newID
	}
}

// NewIssuer creates an Issuer whose tokens live for expiry
func NewIssuer(signer Signer, expiry time.Duration, options ...IssuerOption) *Issuer {
	i := &Issuer{
		signer:  signer,
		expiry:  expiry,
		nowTime: time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range options {
		opt(i)
	}
	return i
}

// Issue signs a token for telegramID bound to the agreement version it signed.
func (i *Issuer) Issue(telegramID int64, agreementVersion string) (string, error) {
	now := i.nowTime()
	claims := jwtlib.MapClaims{
		"sub":               strconv.FormatInt(telegramID, 10), // Telegram user id
		"iat":               now.Unix(),
		"exp":               now.Add(i.expiry).Unix(),
		"jti":               i.newID(),
		"agreement_version": agreementVersion,
	}

	signed, err := i.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "[Issue] failed to sign session token")
	}
	return signed, nil
}

// Verify checks the signature and expiry of raw and returns its claims.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.Wrap(ErrInvalidToken, "[Verify] empty token")
	}

	parsed, err := jwtlib.ParseWithClaims(raw, jwtlib.MapClaims{}, i.signer.GetVerificationKey,
		jwtlib.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
		jwtlib.WithTimeFunc(i.nowTime),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, errors.Wrapf(ErrInvalidToken, "[Verify] %v", err)
	}
	return claimsFrom(parsed)
}

// Peek decodes the claims of raw without verifying its signature. It is for
// display only; nothing it returns may be trusted.
func Peek(raw string) (*Claims, error) {
	parsed, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidToken, "[Peek] %v", err)
	}
	return claimsFrom(parsed)
}

func claimsFrom(t *jwtlib.Token) (*Claims, error) {
	mc, ok := t.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.Wrap(ErrInvalidToken, "error extracting claims")
	}

	c := &Claims{}
	c.Subject, _ = mc.GetSubject()
	c.ID, _ = mc["jti"].(string)
	c.AgreementVersion, _ = mc["agreement_version"].(string)
	if iat, _ := mc.GetIssuedAt(); iat != nil {
		c.IssuedAt = iat.Time.UTC()
	}
	if exp, _ := mc.GetExpirationTime(); exp != nil {
		c.ExpiresAt = exp.Time.UTC()
	}
	return c, nil
}
