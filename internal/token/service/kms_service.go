package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

type kmsService struct{}

// NewKMSService returns a KMSService backed by gocloud.dev/secrets.
func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper opens a keeper for the given URI. The caller must close it.
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// ResolveTokenKey returns the token key to derive encryption keys from.
// Without a KMS URI the configured key is used as is; otherwise it is treated as
// base64 ciphertext and decrypted by the keeper.
func ResolveTokenKey(ctx context.Context, kms KMSService, keyURI, configured string) (string, error) {
	if keyURI == "" {
		return configured, nil
	}

	ciphertext, err := base64.StdEncoding.DecodeString(configured)
	if err != nil {
		return "", fmt.Errorf("token key is not valid base64: %w", err)
	}

	keeper, err := kms.OpenKeeper(ctx, keyURI)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = keeper.Close()
	}()

	plaintext, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt token key: %w", err)
	}
	return string(plaintext), nil
}
