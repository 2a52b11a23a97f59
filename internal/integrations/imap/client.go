// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-16
// Last Modified: 2026-10-16

// Package imap implements the mailbox transport over IMAP.
package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"go.uber.org/zap"

	"github.com/similigh/mailbox-monitor/internal/core/pipeline"
)

// Config holds the IMAP connection settings.
type Config struct {
	Server       string
	Port         int
	Username     string
	Password     string
	Mailbox      string
	SenderFilter string
	Timeout      time.Duration
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Server, strconv.Itoa(c.Port))
}

// Dialer opens a connection to an IMAP server.
type Dialer func(addr string) (*client.Client, error)

// Client polls one mailbox. The connection is opened lazily and reopened after
// a transport error.
type Client struct {
	cfg    Config
	dial   Dialer
	logger *zap.Logger

	mu   sync.Mutex
	conn *client.Client
}

// Option configures a Client.
type Option func(*Client)

// WithDialer replaces the default TLS dialer.
func WithDialer(d Dialer) Option {
	return func(c *Client) { c.dial = d }
}

// NewClient creates an IMAP mailbox client.
func NewClient(cfg Config, logger *zap.Logger, opts ...Option) *Client {
	if cfg.Mailbox == "" {
		cfg.Mailbox = "INBOX"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		cfg:    cfg,
		logger: logger.Named("imap"),
		dial: func(addr string) (*client.Client, error) {
			return client.DialTLS(addr, &tls.Config{ServerName: cfg.Server})
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// connect returns the live connection, dialing and logging in if needed.
// The caller must hold c.mu.
func (c *Client) connect() (*client.Client, error) {
	if c.conn != nil && c.conn.State() != imap.LogoutState {
		return c.conn, nil
	}

	conn, err := c.dial(c.cfg.Addr())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server %s: %w", c.cfg.Addr(), err)
	}
	if c.cfg.Timeout > 0 {
		conn.Timeout = c.cfg.Timeout
	}

	if err := conn.Login(c.cfg.Username, c.cfg.Password); err != nil {
		_ = conn.Logout()
		return nil, fmt.Errorf("IMAP login failed: %w", err)
	}

	c.conn = conn
	c.logger.Info("Connected to IMAP server", zap.String("server", c.cfg.Server))
	return conn, nil
}

// reset drops the current connection so the next call reconnects.
// The caller must hold c.mu.
func (c *Client) reset() {
	if c.conn != nil {
		_ = c.conn.Logout()
		c.conn = nil
	}
}

// Fetch returns up to limit unread emails matching the sender filter, in
// mailbox (UID) order. Messages are fetched with BODY.PEEK so they stay unread
// until MarkSeen is called.
func (c *Client) Fetch(ctx context.Context, limit int) ([]pipeline.Email, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.connect()
	if err != nil {
		return nil, err
	}

	if _, err := conn.Select(c.cfg.Mailbox, false); err != nil {
		c.reset()
		return nil, fmt.Errorf("failed to select mailbox %s: %w", c.cfg.Mailbox, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	if c.cfg.SenderFilter != "" {
		criteria.Header.Add("From", c.cfg.SenderFilter)
	}

	uids, err := conn.UidSearch(criteria)
	if err != nil {
		c.reset()
		return nil, fmt.Errorf("failed to search mailbox: %w", err)
	}
	if len(uids) == 0 {
		return nil, nil
	}

	sort.Slice(uids, func(i, j int) bool { return uids[i] < uids[j] })
	if limit > 0 && len(uids) > limit {
		uids = uids[:limit]
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{section.FetchItem(), imap.FetchUid}

	messages := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- conn.UidFetch(seqset, items, messages)
	}()

	byUID := make(map[uint32]pipeline.Email, len(uids))
	for msg := range messages {
		// Unreadable messages are still returned, without content, so the
		// caller marks them seen instead of refetching them every cycle.
		parsed := &Message{}
		if body := msg.GetBody(section); body == nil {
			c.logger.Warn("Server returned no body", zap.Uint32("uid", msg.Uid))
		} else if m, err := ParseMessage(body); err != nil {
			c.logger.Warn("Failed to parse email", zap.Uint32("uid", msg.Uid), zap.Error(err))
		} else {
			parsed = m
		}
		byUID[msg.Uid] = pipeline.Email{
			ID:      strconv.FormatUint(uint64(msg.Uid), 10),
			From:    parsed.From,
			Subject: parsed.Subject,
			Body:    parsed.Body,
		}
	}
	if err := <-done; err != nil {
		c.reset()
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	emails := make([]pipeline.Email, 0, len(byUID))
	for _, uid := range uids {
		if e, ok := byUID[uid]; ok {
			emails = append(emails, e)
		}
	}
	c.logger.Debug("Fetched emails", zap.Int("count", len(emails)))
	return emails, nil
}

// MarkSeen flags an email as read.
func (c *Client) MarkSeen(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	uid, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid email id %q: %w", id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.connect()
	if err != nil {
		return err
	}
	if conn.Mailbox() == nil || conn.Mailbox().Name != c.cfg.Mailbox {
		if _, err := conn.Select(c.cfg.Mailbox, false); err != nil {
			c.reset()
			return fmt.Errorf("failed to select mailbox %s: %w", c.cfg.Mailbox, err)
		}
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uint32(uid))
	item := imap.FormatFlagsOp(imap.AddFlags, true)
	if err := conn.UidStore(seqset, item, []interface{}{imap.SeenFlag}, nil); err != nil {
		c.reset()
		return fmt.Errorf("failed to mark email %s as seen: %w", id, err)
	}
	return nil
}

// Ping connects if needed and sends NOOP.
func (c *Client) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.connect()
	if err != nil {
		return err
	}
	if err := conn.Noop(); err != nil {
		c.reset()
		return fmt.Errorf("IMAP NOOP failed: %w", err)
	}
	return nil
}

// Close logs out of the server.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Logout()
	c.conn = nil
	return err
}
