// Copyright (c) 2025 Polarisdesk
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package grpchost serves the privileged side of the execution bridge over a
// Unix socket. It accepts RunCommand requests, runs the external client with
// the requested argument vector and replies with its stdout or failure.
package grpchost

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"polarisdesk/cli/internal/bridge/model"
	apperrors "polarisdesk/cli/internal/errors"
)

// Runner executes one external program.
type Runner interface {
	Run(ctx context.Context, executable string, args []string) (string, error)
}

// commandHost is the handler type registered with grpc.
type commandHost interface {
	RunCommand(ctx context.Context, in *structpb.Struct) (*wrapperspb.StringValue, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: model.ServiceName,
	HandlerType: (*commandHost)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: model.MethodRunCommand, Handler: runCommandHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "polarisdesk/bridge/v1/host",
}

func runCommandHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(commandHost).RunCommand(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: model.FullMethodRunCommand}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(commandHost).RunCommand(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Server is the privileged execution host.
type Server struct {
	Runner Runner
	// Logger receives structured log output. If nil, slog.Default() is used.
	Logger *slog.Logger
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Register attaches the host service to a grpc server.
func (s *Server) Register(gs *grpc.Server) {
	gs.RegisterService(&serviceDesc, s)
}

// RunCommand implements the RPC.
func (s *Server) RunCommand(ctx context.Context, in *structpb.Struct) (*wrapperspb.StringValue, error) {
	req, err := model.DecodeRequest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if req.RequestID == "" {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(model.MetadataRequestID); len(ids) > 0 {
				req.RequestID = ids[0]
			}
		}
	}

	s.logger().Debug("running command", "request_id", req.RequestID, "executable", req.Executable, "args", len(req.Args))
	stdout, err := s.Runner.Run(ctx, req.Executable, req.Args)
	if err != nil {
		s.logger().Debug("command failed", "request_id", req.RequestID, "kind", apperrors.KindOf(err))
		return nil, toStatus(err)
	}
	return wrapperspb.String(stdout), nil
}

func toStatus(err error) error {
	switch apperrors.KindOf(err) {
	case apperrors.SpawnFailed:
		return status.Error(codes.FailedPrecondition, apperrors.Stderr(err))
	case apperrors.NonZeroExit:
		return status.Error(codes.Aborted, apperrors.Stderr(err))
	}
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// Serve listens on socketPath until ctx is done. A stale socket file is
// replaced and the new one is made accessible to the owner only.
func (s *Server) Serve(ctx context.Context, socketPath string) error {
	if err := os.Remove(socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	lis, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", socketPath, err)
	}
	if err := os.Chmod(socketPath, 0o600); err != nil {
		lis.Close()
		return fmt.Errorf("restrict socket permissions: %w", err)
	}

	gs := grpc.NewServer()
	s.Register(gs)

	go func() {
		<-ctx.Done()
		gs.GracefulStop()
	}()

	s.logger().Info("execution host listening", "socket", socketPath)
	if err := gs.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}
