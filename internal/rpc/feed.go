// Package rpc exposes the dashboard payloads as the glicks.v1.Feed gRPC
// service and provides a client that reads them back. Messages are
// google.protobuf.Struct documents carrying the JSON form of each payload.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"glicks/internal/domain"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "glicks.v1.Feed"

// Backend is the data source a Server serves from.
type Backend interface {
	TodayPicks(ctx context.Context, vc domain.ViewContext) (*domain.PicksPayload, error)
	PicksForDate(ctx context.Context, vc domain.ViewContext, date string) (*domain.PicksPayload, error)
	DateIndex(ctx context.Context, vc domain.ViewContext) (*domain.DateIndexPayload, error)
	Results(ctx context.Context, vc domain.ViewContext) (*domain.ResultsPayload, error)
}

// request is the decoded form of every Feed request.
type request struct {
	Season string `json:"season"`
	Date   string `json:"date,omitempty"`
}

// Server implements glicks.v1.Feed on top of a Backend.
type Server struct {
	backend Backend
	base    domain.ViewContext
	log     *slog.Logger
}

// NewServer creates a Feed server. base supplies the live season and display
// zone; each request selects its own season.
func NewServer(backend Backend, base domain.ViewContext, log *slog.Logger) *Server {
	return &Server{backend: backend, base: base, log: log}
}

// RegisterGRPC registers the service on gs.
func (s *Server) RegisterGRPC(gs *grpc.Server) {
	gs.RegisterService(&feedServiceDesc, s)
}

func (s *Server) call(ctx context.Context, method string, in *structpb.Struct) (*structpb.Struct, error) {
	var req request
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decoding request: %v", err)
	}
	vc := s.base.WithSeason(req.Season)
	if req.Season == "" {
		vc = s.base
	}

	var (
		out any
		err error
	)
	switch method {
	case "TodayPicks":
		out, err = s.backend.TodayPicks(ctx, vc)
	case "PicksForDate":
		out, err = s.backend.PicksForDate(ctx, vc, req.Date)
	case "DateIndex":
		out, err = s.backend.DateIndex(ctx, vc)
	case "Results":
		out, err = s.backend.Results(ctx, vc)
	default:
		return nil, status.Errorf(codes.Unimplemented, "unknown method %s", method)
	}
	if err != nil {
		s.log.Debug("feed call failed", "method", method, "season", vc.Season, "error", err)
		return nil, toStatus(err)
	}
	return toStruct(out)
}

// toStatus maps source errors onto gRPC codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidDate):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Unavailable, err.Error())
}

// fromStatus maps gRPC codes back onto source errors.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.NotFound:
		return fmt.Errorf("%s: %w", st.Message(), domain.ErrNotFound)
	case codes.InvalidArgument:
		return fmt.Errorf("%s: %w", st.Message(), domain.ErrInvalidDate)
	}
	return err
}

func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

func fromStruct(s *structpb.Struct, out any) error {
	if s == nil {
		return nil
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func unaryHandler(method string) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return srv.(*Server).call(ctx, method, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
		handler := func(ctx context.Context, req any) (any, error) {
			return srv.(*Server).call(ctx, method, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var feedServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*any)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "TodayPicks", Handler: unaryHandler("TodayPicks")},
		{MethodName: "PicksForDate", Handler: unaryHandler("PicksForDate")},
		{MethodName: "DateIndex", Handler: unaryHandler("DateIndex")},
		{MethodName: "Results", Handler: unaryHandler("Results")},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "glicks/v1/feed.proto",
}
