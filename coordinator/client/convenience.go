package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// Convenience calls. Each is Call with a fixed method name and shaped
// params; none adds protocol logic.

// NetworkInfo describes one chain the coordinator settles on.
type NetworkInfo struct {
	Name               string `json:"name"`
	ChainID            uint64 `json:"chain_id"`
	CustodyAddress     string `json:"custody_address,omitempty"`
	AdjudicatorAddress string `json:"adjudicator_address,omitempty"`
}

// CoordinatorConfig is the coordinator's advertised configuration.
type CoordinatorConfig struct {
	CoordinatorAddress string        `json:"coordinator_address"`
	Networks           []NetworkInfo `json:"networks"`
}

// Channel is one settlement channel the holder participates in.
type Channel struct {
	ChannelID   string `json:"channel_id"`
	Participant string `json:"participant"`
	Status      string `json:"status"`
	Token       string `json:"token"`
	Amount      string `json:"amount"`
	ChainID     uint64 `json:"chain_id"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// Balance is one ledger balance entry.
type Balance struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

// GetConfig fetches the coordinator configuration.
func (c *Client) GetConfig(ctx context.Context) (*CoordinatorConfig, error) {
	var cfg CoordinatorConfig
	if err := c.callInto(ctx, "get_config", nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetChannels lists the holder's channels.
func (c *Client) GetChannels(ctx context.Context) ([]Channel, error) {
	params := map[string]string{"participant": c.Address()}
	var channels []Channel
	if err := c.callInto(ctx, "get_channels", params, &channels); err != nil {
		return nil, err
	}
	return channels, nil
}

// GetLedgerBalances fetches the ledger balances of account. An empty
// account defaults to the holder address.
func (c *Client) GetLedgerBalances(ctx context.Context, account string) ([]Balance, error) {
	if account == "" {
		account = c.Address()
	}
	params := map[string]string{"account_id": account}
	var balances []Balance
	if err := c.callInto(ctx, "get_ledger_balances", params, &balances); err != nil {
		return nil, err
	}
	return balances, nil
}

// Ping verifies the session round-trips.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Call(ctx, "ping", nil)
	return err
}

// CreateChannelParams shapes a create_channel call.
type CreateChannelParams struct {
	ChainID uint64 `json:"chain_id"`
	Token   string `json:"token"`
	Amount  string `json:"amount"`
}

// CreateChannel opens a settlement channel.
func (c *Client) CreateChannel(ctx context.Context, params CreateChannelParams) (json.RawMessage, error) {
	return c.Call(ctx, "create_channel", params)
}

// CloseChannel closes the channel with id.
func (c *Client) CloseChannel(ctx context.Context, channelID string) (json.RawMessage, error) {
	return c.Call(ctx, "close_channel", map[string]string{"channel_id": channelID})
}

// AppSessionParams shapes a create_app_session call.
type AppSessionParams struct {
	Application  string      `json:"application"`
	Participants []string    `json:"participants"`
	Allowances   []Allowance `json:"allowances,omitempty"`
}

// CreateAppSession opens an application session.
func (c *Client) CreateAppSession(ctx context.Context, params AppSessionParams) (json.RawMessage, error) {
	return c.Call(ctx, "create_app_session", params)
}

// CloseAppSession closes the application session with id.
func (c *Client) CloseAppSession(ctx context.Context, appSessionID string) (json.RawMessage, error) {
	return c.Call(ctx, "close_app_session", map[string]string{"app_session_id": appSessionID})
}

// callInto issues a call and decodes the result into out.
func (c *Client) callInto(ctx context.Context, method string, params, out any) error {
	result, err := c.Call(ctx, method, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(result, out); err != nil {
		return fmt.Errorf("client: decode %s result: %w", method, err)
	}
	return nil
}
