// Package rpc serves the session registry over gRPC. Messages are
// google.protobuf.Struct values so no generated stubs are needed; the field
// names match the HTTP API's JSON.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/coinflip/internal/coin"
	"github.com/xtding233/coinflip/internal/session"
)

const ServiceName = "coinflip.v1.Engine"

// engineServer is the method set registered under ServiceName.
type engineServer interface {
	Flip(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStats(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListCoins(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetFace(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Reset(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type Server struct {
	reg *session.Registry
}

func NewServer(reg *session.Registry) *Server { return &Server{reg: reg} }

// Register adds the engine service to gs.
func Register(gs grpc.ServiceRegistrar, s *Server) {
	gs.RegisterService(&serviceDesc, s)
}

// NewGRPCServer builds a grpc.Server with request logging and the engine
// service registered.
func NewGRPCServer(reg *session.Registry, log *slog.Logger, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(LoggingInterceptor(log)))
	gs := grpc.NewServer(opts...)
	Register(gs, NewServer(reg))
	return gs
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*engineServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Flip", engineServer.Flip),
		unary("GetStats", engineServer.GetStats),
		unary("ListCoins", engineServer.ListCoins),
		unary("SetFace", engineServer.SetFace),
		unary("Reset", engineServer.Reset),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "coinflip/v1/engine.proto",
}

func unary(name string, call func(engineServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(engineServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(engineServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// LoggingInterceptor logs every call with its status code and latency.
func LoggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	if log == nil {
		log = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("grpc call",
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()),
			slog.Duration("elapsed", time.Since(start)))
		return resp, err
	}
}

func (s *Server) session(in *structpb.Struct) (*session.Session, error) {
	id := in.GetFields()["session"].GetStringValue()
	if id == "" {
		id = session.DefaultID
	}
	sess, err := s.reg.Get(id)
	if err != nil {
		return nil, toStatus(err)
	}
	return sess, nil
}

func (s *Server) Flip(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(in)
	if err != nil {
		return nil, err
	}
	res, err := sess.Flip(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(res)
}

func (s *Server) GetStats(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(in)
	if err != nil {
		return nil, err
	}
	return toStruct(sess.Stats())
}

func (s *Server) ListCoins(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(in)
	if err != nil {
		return nil, err
	}
	return toStruct(map[string]any{"coins": sess.Coins()})
}

func (s *Server) SetFace(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(in)
	if err != nil {
		return nil, err
	}
	f := in.GetFields()
	side := coin.Side(f["side"].GetStringValue())
	path := f["path"].GetStringValue()
	if f["random"].GetBoolValue() {
		err = sess.SetFaceRandom(side, path)
	} else {
		err = sess.SetFace(side, path)
	}
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{"faces": sess.Faces()})
}

func (s *Server) Reset(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	sess, err := s.session(in)
	if err != nil {
		return nil, err
	}
	if err := sess.Reset(ctx); err != nil {
		return nil, toStatus(err)
	}
	return toStruct(sess.Stats())
}

// toStruct converts v through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func toStatus(err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrUnknownCoin):
		code = codes.NotFound
	case errors.Is(err, session.ErrFlipInProgress):
		code = codes.Aborted
	case errors.Is(err, session.ErrCoinLocked):
		code = codes.FailedPrecondition
	case errors.Is(err, session.ErrInvalidSide):
		code = codes.InvalidArgument
	case errors.Is(err, session.ErrTooManySessions):
		code = codes.ResourceExhausted
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	default:
		return status.Error(codes.Internal, fmt.Sprintf("internal error: %v", err))
	}
	return status.Error(code, err.Error())
}
