package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	tokenService "github.com/geocrest/gateway/internal/token/service"
)

// tokenKeySize is the number of random bytes in a generated token key.
const tokenKeySize = 32

// RunCreateTokenKey generates a random token key and prints it as environment variables.
//
// Without kmsKeyURI the key is printed as TOKEN_KEY in plain base64. With a
// KMS key URI the key is encrypted by the keeper and printed with
// TOKEN_KEY_KMS_URI, so the gateway decrypts it at startup. For local
// development, use kmsKeyURI="base64key://...".
//
// Key material is zeroed from memory after encoding.
func RunCreateTokenKey(
	ctx context.Context,
	kmsService tokenService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	kmsKeyURI string,
) error {
	key := make([]byte, tokenKeySize)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate token key: %w", err)
	}
	defer func() {
		for i := range key {
			key[i] = 0
		}
	}()

	encodedKey := base64.StdEncoding.EncodeToString(key)

	if kmsKeyURI == "" {
		_, _ = fmt.Fprintln(writer, "# Token Key Configuration")
		_, _ = fmt.Fprintln(writer, "# Copy this environment variable to your .env file or secrets manager")
		_, _ = fmt.Fprintln(writer)
		_, _ = fmt.Fprintf(writer, "TOKEN_KEY=\"%s\"\n", encodedKey)

		logger.Info("token key generated")
		return nil
	}

	keeperInterface, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		if closeErr := keeperInterface.Close(); closeErr != nil {
			logger.Warn("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	// Type assert to get Encrypt method (needed for encryption)
	keeper, ok := keeperInterface.(interface {
		Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	})
	if !ok {
		return fmt.Errorf("KMS keeper does not support encryption")
	}

	// The gateway derives its cipher from the key string, so the base64 form is encrypted.
	ciphertext, err := keeper.Encrypt(ctx, []byte(encodedKey))
	if err != nil {
		return fmt.Errorf("failed to encrypt token key with KMS: %w", err)
	}

	_, _ = fmt.Fprintln(writer, "# Token Key Configuration (KMS Mode)")
	_, _ = fmt.Fprintln(writer, "# Copy these environment variables to your .env file or secrets manager")
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintf(writer, "TOKEN_KEY_KMS_URI=\"%s\"\n", kmsKeyURI)
	_, _ = fmt.Fprintf(writer, "TOKEN_KEY=\"%s\"\n", base64.StdEncoding.EncodeToString(ciphertext))

	logger.Info("token key generated", slog.Bool("kms", true))
	return nil
}
