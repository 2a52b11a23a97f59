// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-16

package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v60/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// NewClient creates a new GitHub client using the provided token.
// If token is empty, it returns an unauthenticated client. A non-empty baseURL
// selects a GitHub Enterprise Server instance. A positive timeout bounds every
// API request.
func NewClient(ctx context.Context, token, baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	tc := &http.Client{}

	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		tc = oauth2.NewClient(ctx, ts)
	}
	tc.Timeout = timeout

	client := github.NewClient(tc)

	if baseURL = strings.TrimRight(baseURL, "/"); baseURL != "" && baseURL != "https://github.com" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub Enterprise URL: %w", err)
		}
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		client: client,
		logger: logger.Named("github"),
	}, nil
}
