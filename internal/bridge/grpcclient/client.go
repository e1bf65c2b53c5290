// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package grpcclient provides a gRPC-backed implementation of the Bridge interface.
// It reaches a privileged execution host (`polarisdesk host`) listening on a Unix
// socket and asks it to run the external client on the front-end's behalf. The
// front-end process itself never spawns anything in this mode.
//
// The package maps gRPC status codes back to the gateway's error kinds so callers
// see the same failures whichever bridge is in use.
package grpcclient

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"polarisdesk/cli/internal/bridge/model"
	apperrors "polarisdesk/cli/internal/errors"
)

// Client implements bridge.Bridge over a gRPC connection.
type Client struct {
	conn   *grpc.ClientConn
	Logger *slog.Logger
}

// Dial connects to the host socket. The socket must already exist; the
// connection itself is established lazily on the first call.
func Dial(socketPath string, opts ...grpc.DialOption) (*Client, error) {
	if _, err := os.Stat(socketPath); err != nil {
		return nil, apperrors.Wrap(apperrors.BridgeUnavailable,
			fmt.Sprintf("execution host socket %s not found (start it with 'polarisdesk host')", socketPath), err)
	}
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient("unix://"+socketPath, opts...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.BridgeUnavailable, "dial execution host", err)
	}
	return &Client{conn: conn}, nil
}

// New wraps an existing connection.
func New(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// RunCommand sends one request to the host and waits for its reply.
func (c *Client) RunCommand(ctx context.Context, executable string, args []string) (string, error) {
	req := model.NewRequest(executable, args)
	in, err := model.EncodeRequest(req)
	if err != nil {
		return "", err
	}

	ctx = metadata.NewOutgoingContext(ctx, metadata.Pairs(model.MetadataRequestID, req.RequestID))
	out := new(wrapperspb.StringValue)
	c.logger().Debug("bridge request", "request_id", req.RequestID, "executable", executable)
	if err := c.conn.Invoke(ctx, model.FullMethodRunCommand, in, out); err != nil {
		return "", fromStatus(err)
	}
	return out.GetValue(), nil
}

// Close releases the connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return apperrors.Wrap(apperrors.BridgeUnavailable, "execution host request failed", err)
	}
	switch st.Code() {
	case codes.FailedPrecondition:
		return apperrors.New(apperrors.SpawnFailed, st.Message())
	case codes.Aborted:
		return apperrors.New(apperrors.NonZeroExit, st.Message())
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	default:
		return apperrors.Wrap(apperrors.BridgeUnavailable, st.Code().String()+": "+st.Message(), err)
	}
}
