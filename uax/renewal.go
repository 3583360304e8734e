package uax

import (
	"errors"
	"sync"
	"time"

	"github.com/opcuax/uacorex/zaputils"
	"go.uber.org/zap"
)

type RenewalState uint8

const (
	RenewalActive RenewalState = iota
	RenewalInFlight
)

func (s RenewalState) String() string {
	switch s {
	case RenewalActive:
		return "Active"
	case RenewalInFlight:
		return "RenewalInFlight"
	}
	return "Unknown"
}

// ChannelToken is the security token currently protecting the secure channel.
type ChannelToken struct {
	ChannelID uint32
	TokenID   uint32
	IssuedAt  time.Time
	Lifetime  time.Duration
}

// RenewalThreshold is the token age at which renewal becomes due: 75% of the
// token lifetime.
func RenewalThreshold(lifetime time.Duration) time.Duration {
	return lifetime / 4 * 3
}

// RenewalScheduler tracks the age of the channel token and decides when it
// should be renewed. It is independent of the pending registry; the renewal
// message itself travels as an ordinary request.
type RenewalScheduler struct {
	lock sync.Mutex

	token             ChannelToken
	hasToken          bool
	state             RenewalState
	requestedLifetime time.Duration
	renewalsSent      uint64
}

func newRenewalScheduler(requestedLifetime time.Duration) *RenewalScheduler {
	return &RenewalScheduler{
		requestedLifetime: requestedLifetime,
	}
}

func (s *RenewalScheduler) install(token ChannelToken) {
	s.lock.Lock()
	s.token = token
	s.hasToken = true
	s.state = RenewalActive
	s.lock.Unlock()
}

// begin moves Active to RenewalInFlight when the threshold has been reached
// and reports whether a renewal message must be sent. due is false when the
// threshold has not been reached yet.
func (s *RenewalScheduler) begin(now time.Time) (send bool, due bool, lifetime time.Duration) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.hasToken || now.Sub(s.token.IssuedAt) < RenewalThreshold(s.token.Lifetime) {
		return false, false, 0
	}

	if s.state == RenewalInFlight {
		return false, true, 0
	}

	s.state = RenewalInFlight
	s.renewalsSent++

	lifetime = s.requestedLifetime
	if lifetime <= 0 {
		lifetime = s.token.Lifetime
	}
	return true, true, lifetime
}

// abort returns to Active keeping the old token, so the next check re-sends.
func (s *RenewalScheduler) abort() {
	s.lock.Lock()
	s.state = RenewalActive
	s.lock.Unlock()
}

func (s *RenewalScheduler) renewed(token ChannelToken) {
	s.lock.Lock()
	if token.Lifetime <= 0 {
		token.Lifetime = s.token.Lifetime
	}
	s.token = token
	s.hasToken = true
	s.state = RenewalActive
	s.lock.Unlock()
}

func (s *RenewalScheduler) State() RenewalState {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.state
}

func (s *RenewalScheduler) Token() (ChannelToken, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.token, s.hasToken
}

// RenewalsSent counts transitions into RenewalInFlight.
func (s *RenewalScheduler) RenewalsSent() uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.renewalsSent
}

// InstallToken sets the token of a freshly established secure channel.
func (c *Client) InstallToken(token ChannelToken) {
	c.renewal.install(token)
}

func (c *Client) Renewal() *RenewalScheduler {
	return c.renewal
}

// OpenSecureChannel asks the server to issue a fresh channel token and
// installs it when the response arrives. cb may be nil; it receives the zero
// token when the request fails.
func (c *Client) OpenSecureChannel(cb func(token ChannelToken, status StatusCode)) (uint32, error) {
	if cb == nil {
		cb = func(ChannelToken, StatusCode) {}
	}

	return c.Dispatch(&OpenSecureChannelRequest{
		RequestType:       SecurityTokenRequestTypeIssue,
		RequestedLifetime: uint32(c.renewal.requestedLifetime / time.Millisecond),
	}, OpenSecureChannelResponseShape, CompletionFunc(func(requestID uint32, resp Response, status StatusCode) {
		if status.IsBad() {
			c.logger.Debug("failed to open secure channel",
				zaputils.RequestID("requestId", requestID),
				zaputils.Status("status", status))
			cb(ChannelToken{}, status)
			return
		}

		tok := resp.(*OpenSecureChannelResponse).SecurityToken
		token := ChannelToken{
			ChannelID: tok.ChannelID,
			TokenID:   tok.TokenID,
			IssuedAt:  c.nowFunc(),
			Lifetime:  time.Duration(tok.RevisedLifetime) * time.Millisecond,
		}
		c.InstallToken(token)
		cb(token, StatusGood)
	}))
}

// RenewSecureChannel triggers renewal of the channel token. Before 75% of the
// token lifetime has elapsed it returns StatusGoodCallAgain and sends nothing,
// so it is safe to call on every tick. Otherwise it sends the renewal message
// if one is not already in flight and returns the connection status. The
// renewal response is handled like any other response.
func (c *Client) RenewSecureChannel() StatusCode {
	if c.registry.IsClosed() {
		return c.ConnectStatus()
	}

	now := c.nowFunc()
	send, due, lifetime := c.renewal.begin(now)
	if !due {
		return StatusGoodCallAgain
	}
	if !send {
		return c.ConnectStatus()
	}

	c.logger.Debug("renewing secure channel",
		zap.Duration("requestedLifetime", lifetime))

	_, err := c.Dispatch(&OpenSecureChannelRequest{
		RequestType:       SecurityTokenRequestTypeRenew,
		RequestedLifetime: uint32(lifetime / time.Millisecond),
	}, OpenSecureChannelResponseShape, CompletionFunc(c.handleRenewal))
	if err != nil {
		c.renewal.abort()

		if !errors.Is(err, ErrInvalidState) {
			c.logger.Warn("failed to send secure channel renewal", zap.Error(err))
			c.setConnectStatus(StatusBadCommunicationError)
		}
		return c.ConnectStatus()
	}

	return c.ConnectStatus()
}

// CheckRenewal is the driver-tick entry point for renewal. It must run every
// iteration, including on idle connections.
func (c *Client) CheckRenewal() StatusCode {
	return c.RenewSecureChannel()
}

func (c *Client) handleRenewal(requestID uint32, resp Response, status StatusCode) {
	c.telem.RecordRenewal(status)

	if status == StatusBadShutdown {
		return
	}

	if status.IsBad() {
		c.logger.Warn("secure channel renewal failed",
			zaputils.RequestID("requestId", requestID),
			zaputils.Status("status", status))

		c.renewal.abort()
		c.setConnectStatus(status)
		return
	}

	tok := resp.(*OpenSecureChannelResponse).SecurityToken
	c.renewal.renewed(ChannelToken{
		ChannelID: tok.ChannelID,
		TokenID:   tok.TokenID,
		IssuedAt:  c.nowFunc(),
		Lifetime:  time.Duration(tok.RevisedLifetime) * time.Millisecond,
	})
	c.setConnectStatus(StatusGood)

	c.logger.Debug("secure channel renewed",
		zap.Uint32("channelId", tok.ChannelID),
		zap.Uint32("tokenId", tok.TokenID))
}

// setConnectStatus never overwrites StatusBadShutdown.
func (c *Client) setConnectStatus(status StatusCode) {
	for {
		old := c.connectStatus.Load()
		if StatusCode(old) == StatusBadShutdown {
			return
		}
		if c.connectStatus.CompareAndSwap(old, uint32(status)) {
			return
		}
	}
}
