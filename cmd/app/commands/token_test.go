package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	tokenService "github.com/geocrest/gateway/internal/token/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTokens(t *testing.T) tokenService.TokenService {
	t.Helper()
	tokens, err := tokenService.NewTokenService("command-test-key")
	require.NoError(t, err)
	return tokens
}

// MockKMSService is a manual mock of the KMS service.
type MockKMSService struct {
	mock.Mock
}

func (m *MockKMSService) OpenKeeper(ctx context.Context, uri string) (tokenService.KMSKeeper, error) {
	args := m.Called(ctx, uri)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(tokenService.KMSKeeper), args.Error(1)
}

type MockKMSKeeper struct {
	mock.Mock
}

func (m *MockKMSKeeper) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	args := m.Called(ctx, plaintext)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKMSKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	args := m.Called(ctx, ciphertext)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKMSKeeper) Close() error {
	return m.Called().Error(0)
}

// decryptOnlyKeeper cannot encrypt.
type decryptOnlyKeeper struct{}

func (decryptOnlyKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	return ciphertext, nil
}

func (decryptOnlyKeeper) Close() error { return nil }

func TestRunCreateToken(t *testing.T) {
	tokens := newTokens(t)

	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		err := RunCreateToken(tokens, discardLogger(), &out, CreateTokenInput{
			GroupName: "editors",
			ClientID:  "ip.10.0.0.1",
			TTL:       time.Hour,
		}, "text")
		require.NoError(t, err)

		assert.Contains(t, out.String(), "Group: editors")
		assert.Contains(t, out.String(), "Client: ip.10.0.0.1")
		assert.Contains(t, out.String(), "Token: ")
	})

	t.Run("json-round-trip", func(t *testing.T) {
		var out bytes.Buffer
		err := RunCreateToken(tokens, discardLogger(), &out, CreateTokenInput{
			GroupName: "viewers",
			TTL:       time.Hour,
		}, "json")
		require.NoError(t, err)

		var result map[string]string
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, "viewers", result["group_name"])
		require.NotEmpty(t, result["token"])

		var verifyOut bytes.Buffer
		require.NoError(t, RunVerifyToken(tokens, discardLogger(), &verifyOut, result["token"], "203.0.113.9", "", "text"))
		assert.Contains(t, verifyOut.String(), "Valid: true")
		assert.Contains(t, verifyOut.String(), "Group: viewers")
	})

	t.Run("invalid-input", func(t *testing.T) {
		tests := []struct {
			name  string
			input CreateTokenInput
		}{
			{name: "missing group", input: CreateTokenInput{TTL: time.Hour}},
			{name: "group with colon", input: CreateTokenInput{GroupName: "a:b", TTL: time.Hour}},
			{name: "group with whitespace", input: CreateTokenInput{GroupName: " editors", TTL: time.Hour}},
			{name: "unknown client prefix", input: CreateTokenInput{GroupName: "editors", ClientID: "host.example", TTL: time.Hour}},
			{name: "missing ttl", input: CreateTokenInput{GroupName: "editors"}},
			{name: "ttl below a second", input: CreateTokenInput{GroupName: "editors", TTL: time.Millisecond}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var out bytes.Buffer
				err := RunCreateToken(tokens, discardLogger(), &out, tt.input, "text")
				require.Error(t, err)
				assert.Empty(t, out.String())
			})
		}
	})
}

func TestRunVerifyToken(t *testing.T) {
	tokens := newTokens(t)

	issue := func(t *testing.T, clientID string) string {
		t.Helper()
		token, err := tokens.Create("editors", clientID, time.Hour)
		require.NoError(t, err)
		encoded, err := tokens.Encode(token)
		require.NoError(t, err)
		return encoded
	}

	t.Run("client-mismatch", func(t *testing.T) {
		var out bytes.Buffer
		err := RunVerifyToken(tokens, discardLogger(), &out, issue(t, "ip.10.0.0.1"), "10.0.0.2", "", "json")
		require.ErrorIs(t, err, ErrTokenNotValid)

		var result map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, false, result["valid"])
		assert.Equal(t, "editors", result["group_name"])
	})

	t.Run("referer-match", func(t *testing.T) {
		var out bytes.Buffer
		err := RunVerifyToken(tokens, discardLogger(), &out, issue(t, "ref.maps.example.com"), "10.0.0.2",
			"https://maps.example.com/viewer", "text")
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Client: ref.maps.example.com")
	})

	t.Run("other-key", func(t *testing.T) {
		other, err := tokenService.NewTokenService("another-key")
		require.NoError(t, err)

		var out bytes.Buffer
		err = RunVerifyToken(other, discardLogger(), &out, issue(t, ""), "", "", "text")
		require.ErrorIs(t, err, ErrTokenNotValid)
		assert.Equal(t, "Valid: false\n", out.String())
	})

	t.Run("malformed", func(t *testing.T) {
		for _, encoded := range []string{"", "abc/def", "a+b="} {
			err := RunVerifyToken(tokens, discardLogger(), &bytes.Buffer{}, encoded, "", "", "text")
			require.Error(t, err)
			assert.False(t, errors.Is(err, ErrTokenNotValid))
		}
	})
}

func TestRunCreateTokenKey(t *testing.T) {
	ctx := context.Background()

	t.Run("plain", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, RunCreateTokenKey(ctx, nil, discardLogger(), &out, ""))

		assert.Contains(t, out.String(), "TOKEN_KEY=\"")
		assert.NotContains(t, out.String(), "TOKEN_KEY_KMS_URI")
	})

	t.Run("kms", func(t *testing.T) {
		mockService := &MockKMSService{}
		mockKeeper := &MockKMSKeeper{}

		mockService.On("OpenKeeper", ctx, "base64key://test").Return(mockKeeper, nil)
		mockKeeper.On("Encrypt", ctx, mock.AnythingOfType("[]uint8")).Return([]byte("encrypted"), nil)
		mockKeeper.On("Close").Return(nil)

		var out bytes.Buffer
		require.NoError(t, RunCreateTokenKey(ctx, mockService, discardLogger(), &out, "base64key://test"))

		assert.Contains(t, out.String(), "TOKEN_KEY_KMS_URI=\"base64key://test\"")
		assert.Contains(t, out.String(), "TOKEN_KEY=\"ZW5jcnlwdGVk\"")

		mockService.AssertExpectations(t)
		mockKeeper.AssertExpectations(t)
	})

	t.Run("kms-error", func(t *testing.T) {
		mockService := &MockKMSService{}
		mockService.On("OpenKeeper", ctx, "invalid").Return(nil, errors.New("kms error"))

		err := RunCreateTokenKey(ctx, mockService, discardLogger(), &bytes.Buffer{}, "invalid")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to open KMS keeper")
	})

	t.Run("keeper-without-encrypt", func(t *testing.T) {
		mockService := &MockKMSService{}
		mockService.On("OpenKeeper", ctx, "base64key://test").Return(decryptOnlyKeeper{}, nil)

		err := RunCreateTokenKey(ctx, mockService, discardLogger(), &bytes.Buffer{}, "base64key://test")
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "does not support encryption"))
	})
}
