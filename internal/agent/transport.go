package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// DecisionServiceName is the fully qualified gRPC service name
	DecisionServiceName = "arrakis.agent.v1.DecisionService"
	// DecideMethod is the full method path of the unary decision call
	DecideMethod = "/" + DecisionServiceName + "/Decide"
)

// DecisionServer is the server side of the decision service
type DecisionServer interface {
	Decide(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

func decideHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DecisionServer).Decide(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DecideMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DecisionServer).Decide(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// DecisionServiceDesc describes the decision service. Payloads are
// google.protobuf.Struct values, so no generated stubs are needed.
var DecisionServiceDesc = grpc.ServiceDesc{
	ServiceName: DecisionServiceName,
	HandlerType: (*DecisionServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Decide", Handler: decideHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "arrakis/agent/v1/decision.proto",
}

// Server exposes a local Agent over gRPC
type Server struct {
	agent  Agent
	logger zerolog.Logger
}

// NewServer wraps an agent for serving
func NewServer(a Agent, logger zerolog.Logger) *Server {
	return &Server{agent: a, logger: logger.With().Str("component", "decision_server").Logger()}
}

// RegisterDecisionService registers the agent on a gRPC server
func RegisterDecisionService(reg grpc.ServiceRegistrar, a Agent, logger zerolog.Logger) *Server {
	s := NewServer(a, logger)
	reg.RegisterService(&DecisionServiceDesc, s)
	return s
}

// Decide implements DecisionServer
func (s *Server) Decide(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := DecodeRequest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if req.Faction == "" || req.Type == "" {
		return nil, status.Error(codes.InvalidArgument, "faction and type are required")
	}

	resp, err := s.agent.Respond(ctx, req)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("faction", string(req.Faction)).
			Str("request_type", string(req.Type)).
			Msg("Agent failed to decide")
		return nil, toStatus(err)
	}

	s.logger.Debug().
		Str("faction", string(req.Faction)).
		Str("request_type", string(req.Type)).
		Str("action", string(resp.ActionType)).
		Bool("passed", resp.Passed).
		Msg("Decision served")

	out, err := EncodeResponse(resp)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, ErrNoAgent):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrScriptExhausted):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// RemoteAgent forwards requests to an agent served over gRPC
type RemoteAgent struct {
	conn    grpc.ClientConnInterface
	timeout time.Duration
}

// NewRemoteAgent creates a client over an established connection. A zero
// timeout leaves the deadline to the caller's context.
func NewRemoteAgent(conn grpc.ClientConnInterface, timeout time.Duration) *RemoteAgent {
	return &RemoteAgent{conn: conn, timeout: timeout}
}

// DialRemote opens a plaintext client connection to an agent server
func DialRemote(address string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial agent server %s: %w", address, err)
	}
	return conn, nil
}

// Respond implements Agent
func (r *RemoteAgent) Respond(ctx context.Context, req Request) (Response, error) {
	in, err := EncodeRequest(req)
	if err != nil {
		return Response{}, err
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	out := new(structpb.Struct)
	if err := r.conn.Invoke(ctx, DecideMethod, in, out); err != nil {
		return Response{}, fmt.Errorf("decide %s for %s: %w", req.Type, req.Faction, err)
	}
	resp, err := DecodeResponse(out)
	if err != nil {
		return Response{}, err
	}
	if resp.Faction == "" {
		resp.Faction = req.Faction
	}
	if resp.Faction != req.Faction {
		return Response{}, fmt.Errorf("%w: asked %s, got %s", ErrFactionMismatch, req.Faction, resp.Faction)
	}
	return resp, nil
}
