package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"glicks/internal/domain"
)

// Client reads dashboard payloads from a remote Feed service.
type Client struct {
	conn *grpc.ClientConn
}

// Dial creates a client for the Feed service at addr.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func invoke[T any](ctx context.Context, c *Client, method string, req request) (*T, error) {
	in, err := toStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, in, out); err != nil {
		return nil, fromStatus(err)
	}
	var payload T
	if err := fromStruct(out, &payload); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", method, err)
	}
	return &payload, nil
}

func (c *Client) TodayPicks(ctx context.Context, vc domain.ViewContext) (*domain.PicksPayload, error) {
	return invoke[domain.PicksPayload](ctx, c, "TodayPicks", request{Season: vc.Season})
}

func (c *Client) PicksForDate(ctx context.Context, vc domain.ViewContext, date string) (*domain.PicksPayload, error) {
	return invoke[domain.PicksPayload](ctx, c, "PicksForDate", request{Season: vc.Season, Date: date})
}

func (c *Client) DateIndex(ctx context.Context, vc domain.ViewContext) (*domain.DateIndexPayload, error) {
	return invoke[domain.DateIndexPayload](ctx, c, "DateIndex", request{Season: vc.Season})
}

func (c *Client) Results(ctx context.Context, vc domain.ViewContext) (*domain.ResultsPayload, error) {
	return invoke[domain.ResultsPayload](ctx, c, "Results", request{Season: vc.Season})
}
