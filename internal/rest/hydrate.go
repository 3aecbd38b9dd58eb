package rest

import (
	"context"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"

	apperrors "github.com/geocrest/gateway/internal/errors"
)

// Hydrate fetches target as JSON and decodes it into a T.
func Hydrate[T any](ctx context.Context, c *Client, target string, opts ...RequestOption) (T, error) {
	body, err := c.Get(ctx, target, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](target, body)
}

// HydrateAsync runs Hydrate on a new goroutine and invokes callback exactly once
// with either the value or the error.
func HydrateAsync[T any](
	ctx context.Context,
	c *Client,
	target string,
	callback func(T, error),
	opts ...RequestOption,
) {
	go func() {
		callback(Hydrate[T](ctx, c, target, opts...))
	}()
}

// PostForm posts form to target and decodes the JSON response into a T.
func PostForm[T any](ctx context.Context, c *Client, target string, form url.Values, opts ...RequestOption) (T, error) {
	body, err := c.Post(ctx, target, form, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](target, body)
}

// HydrateFromJSON decodes data into a T without any I/O.
func HydrateFromJSON[T any](data []byte) (T, error) {
	var out T
	if len(strings.TrimSpace(string(data))) == 0 {
		return out, ErrEmptyInput
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}
	return out, nil
}
