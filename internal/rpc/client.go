package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/coinflip/internal/coin"
	"github.com/xtding233/coinflip/internal/session"
)

// Client is a typed wrapper over the Struct-based engine service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func (c *Client) call(ctx context.Context, method string, in map[string]any, out any) error {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, resp); err != nil {
		return err
	}
	b, err := json.Marshal(resp.AsMap())
	if err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return json.Unmarshal(b, out)
}

func (c *Client) Flip(ctx context.Context, sessionID string) (session.FlipResult, error) {
	var res session.FlipResult
	err := c.call(ctx, "Flip", map[string]any{"session": sessionID}, &res)
	return res, err
}

func (c *Client) GetStats(ctx context.Context, sessionID string) (session.Stats, error) {
	var st session.Stats
	err := c.call(ctx, "GetStats", map[string]any{"session": sessionID}, &st)
	return st, err
}

func (c *Client) ListCoins(ctx context.Context, sessionID string) ([]session.CoinStatus, error) {
	var out struct {
		Coins []session.CoinStatus `json:"coins"`
	}
	err := c.call(ctx, "ListCoins", map[string]any{"session": sessionID}, &out)
	return out.Coins, err
}

func (c *Client) SetFace(ctx context.Context, sessionID string, side coin.Side, path string, random bool) (map[coin.Side]session.Face, error) {
	var out struct {
		Faces map[coin.Side]session.Face `json:"faces"`
	}
	err := c.call(ctx, "SetFace", map[string]any{
		"session": sessionID,
		"side":    string(side),
		"path":    path,
		"random":  random,
	}, &out)
	return out.Faces, err
}

func (c *Client) Reset(ctx context.Context, sessionID string) (session.Stats, error) {
	var st session.Stats
	err := c.call(ctx, "Reset", map[string]any{"session": sessionID}, &st)
	return st, err
}
