package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/medsum/medsum/relay"
)

// Client calls a remote medsum.v1.Relay service.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient wraps an established connection.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Explain sends req and returns the explanation text. Failures come back as
// gRPC status errors; use status.Code to inspect them.
func (c *Client) Explain(ctx context.Context, req relay.Request, opts ...grpc.CallOption) (string, error) {
	in, err := structpb.NewStruct(map[string]any{
		"diagnosis": req.Diagnosis,
		"medicines": req.Medicines,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, explainMethod, in, out, opts...); err != nil {
		return "", err
	}
	return out.GetFields()["explanation"].GetStringValue(), nil
}
