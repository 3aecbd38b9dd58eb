package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/pbkdf2"

	apperrors "github.com/geocrest/gateway/internal/errors"
	tokenDomain "github.com/geocrest/gateway/internal/token/domain"
)

const (
	keyIterations = 1000
	keySize       = 16
	fieldSep      = ":"
	clientMarker  = " "
)

// keySalt is fixed so every gateway instance sharing TOKEN_KEY derives the same key.
var keySalt = []byte("geocrest.gateway.token")

// urlSafe maps standard base64 to the characters carried in query strings.
var (
	toURLSafe   = strings.NewReplacer("/", "_", "+", "-", "=", ".")
	fromURLSafe = strings.NewReplacer("_", "/", "-", "+", ".", "=")
)

// tokenService encrypts tokens with AES-128-GCM under a PBKDF2-derived key.
// The random nonce is prepended to the ciphertext.
type tokenService struct {
	aead cipher.AEAD
	now  func() time.Time
}

// Option configures a TokenService.
type Option func(*tokenService)

// WithClock overrides the time source used for expiration.
func WithClock(now func() time.Time) Option {
	return func(s *tokenService) {
		s.now = now
	}
}

// NewTokenService derives the encryption key from key and returns a TokenService.
func NewTokenService(key string, opts ...Option) (TokenService, error) {
	if key == "" {
		return nil, tokenDomain.ErrEmptyKey
	}

	derived := pbkdf2.Key([]byte(key), keySalt, keyIterations, keySize, sha1.New)

	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	s := &tokenService{aead: aead, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create returns a valid token for groupName expiring after ttl.
func (s *tokenService) Create(groupName, clientID string, ttl time.Duration) (*tokenDomain.Token, error) {
	if groupName == "" || strings.Contains(groupName, fieldSep) {
		return nil, tokenDomain.ErrInvalidGroupName
	}
	if ttl <= 0 {
		return nil, tokenDomain.ErrInvalidTTL
	}

	return &tokenDomain.Token{
		GroupName:      groupName,
		ClientID:       clientID,
		ExpirationDate: fromEpoch(toEpoch(s.now().Add(ttl))),
		IsValid:        true,
	}, nil
}

// Encode serializes "group:expiration: :client", encrypts it and returns URL-safe base64.
func (s *tokenService) Encode(token *tokenDomain.Token) (string, error) {
	if token == nil {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "token is nil")
	}
	if token.GroupName == "" || strings.Contains(token.GroupName, fieldSep) {
		return "", tokenDomain.ErrInvalidGroupName
	}

	plaintext := strings.Join([]string{
		token.GroupName,
		strconv.FormatInt(toEpoch(token.ExpirationDate), 10),
		clientMarker,
		token.ClientID,
	}, fieldSep)

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return toURLSafe.Replace(base64.StdEncoding.EncodeToString(sealed)), nil
}

// Decode reverses Encode and validates expiration and client constraint.
func (s *tokenService) Decode(encoded string, req tokenDomain.RequestInfo) *tokenDomain.Token {
	invalid := &tokenDomain.Token{}
	if encoded == "" {
		return invalid
	}

	raw, err := base64.StdEncoding.Strict().DecodeString(fromURLSafe.Replace(encoded))
	if err != nil {
		return invalid
	}

	nonceSize := s.aead.NonceSize()
	if len(raw) < nonceSize {
		return invalid
	}

	plaintext, err := s.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return invalid
	}

	// Client ids may be IPv6 addresses, so only the leading fields are split.
	fields := strings.SplitN(string(plaintext), fieldSep, 4)
	if len(fields) < 2 {
		return invalid
	}

	epoch, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return invalid
	}

	token := &tokenDomain.Token{
		GroupName:      fields[0],
		ExpirationDate: fromEpoch(epoch),
	}
	if len(fields) == 4 {
		token.ClientID = strings.TrimSpace(fields[3])
	}

	token.IsValid = token.GroupName != "" &&
		!token.IsExpired(s.now()) &&
		req.MatchesClient(token.ClientID)

	return token
}

// toEpoch returns milliseconds since the Unix epoch.
func toEpoch(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromEpoch(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
