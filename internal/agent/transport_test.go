package agent

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/ArrakisRulesEngine/internal/game/core"
)

const bufSize = 1024 * 1024

// setupTestServer serves the agent on an in-memory listener
func setupTestServer(t *testing.T, a Agent) (*grpc.ClientConn, func()) {
	lis := bufconn.Listen(bufSize)
	s := grpc.NewServer()
	RegisterDecisionService(s, a, zerolog.Nop())

	go func() {
		if err := s.Serve(lis); err != nil {
			t.Logf("Server exited with error: %v", err)
		}
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	cleanup := func() {
		conn.Close()
		s.Stop()
		lis.Close()
	}
	return conn, cleanup
}

func TestCodecRoundTrip(t *testing.T) {
	req := Request{
		Faction: core.Harkonnen,
		Type:    RequestShipForces,
		Prompt:  "ship forces",
		Context: map[string]interface{}{
			CtxSpice:           10,
			CtxShipmentTargets: []map[string]interface{}{{"territory": "carthag", "sector": 10, "cost": 1}},
		},
		AvailableActions: []ActionType{ActionShip, ActionPass},
	}
	wire, err := EncodeRequest(req)
	require.NoError(t, err)
	back, err := DecodeRequest(wire)
	require.NoError(t, err)

	assert.Equal(t, req.Faction, back.Faction)
	assert.Equal(t, req.Type, back.Type)
	assert.Equal(t, req.AvailableActions, back.AvailableActions)
	assert.Equal(t, 10, back.Int(CtxSpice))
	targets := back.Maps(CtxShipmentTargets)
	require.Len(t, targets, 1)
	assert.Equal(t, 1, MapInt(targets[0], "cost"))

	_, err = DecodeResponse(nil)
	assert.Error(t, err)
}

func TestRemoteAgent(t *testing.T) {
	scripted := NewScriptedAgent().Queue(RequestBidOrPass,
		Act(core.Fremen, ActionBid, map[string]interface{}{KeyAmount: 3}))
	conn, cleanup := setupTestServer(t, Table{core.Fremen: scripted})
	defer cleanup()

	remote := NewRemoteAgent(conn, time.Second)
	ctx := context.Background()

	resp, err := remote.Respond(ctx, Request{
		Faction:          core.Fremen,
		Type:             RequestBidOrPass,
		Context:          map[string]interface{}{CtxMinBid: 3},
		AvailableActions: []ActionType{ActionBid, ActionPass},
	})
	require.NoError(t, err)
	assert.Equal(t, ActionBid, resp.ActionType)
	assert.Equal(t, 3, resp.IntOr(KeyAmount, 0))

	seen := scripted.Requests()
	require.Len(t, seen, 1)
	assert.Equal(t, 3, seen[0].Int(CtxMinBid))

	t.Run("unknown faction maps to NotFound", func(t *testing.T) {
		_, err := remote.Respond(ctx, Request{Faction: core.Emperor, Type: RequestBidOrPass})
		require.Error(t, err)
		assert.Equal(t, codes.NotFound, status.Code(errors.Unwrap(err)))
	})

	t.Run("malformed payload is rejected", func(t *testing.T) {
		out := new(structpb.Struct)
		err := conn.Invoke(ctx, DecideMethod, &structpb.Struct{}, out)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})
}

func TestRemoteAgent_FactionMismatch(t *testing.T) {
	liar := Func(func(_ context.Context, req Request) (Response, error) {
		return Pass(core.Harkonnen), nil
	})
	conn, cleanup := setupTestServer(t, liar)
	defer cleanup()

	_, err := NewRemoteAgent(conn, 0).Respond(context.Background(), Request{Faction: core.Atreides, Type: RequestClaimCharity})
	assert.ErrorIs(t, err, ErrFactionMismatch)
}
