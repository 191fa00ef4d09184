package forecast

import (
	"context"
	"fmt"
	"slices"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/petsim/internal/state"
)

// #region client-struct
// Remote delegates fitting and prediction to a forecaster service over gRPC.
// Fit only captures the samples; the service fits on every Predict call.
type Remote struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}
// #endregion client-struct

// #region constructor
// DialRemote connects to the forecaster service at addr. A zero timeout
// leaves deadlines to the caller's context.
func DialRemote(addr string, timeout time.Duration) (*Remote, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Remote{conn: conn, timeout: timeout}, nil
}

// Close shuts down the gRPC connection.
func (r *Remote) Close() error {
	return r.conn.Close()
}
// #endregion constructor

// #region fit
// Fit checks the samples and returns a model bound to this connection.
func (r *Remote) Fit(ctx context.Context, samples []Sample) (Model, error) {
	if len(samples) == 0 {
		return nil, ErrInsufficientHistory
	}
	return &remoteModel{client: r, samples: slices.Clone(samples)}, nil
}

type remoteModel struct {
	client  *Remote
	samples []Sample
}

// Predict sends the captured history and the target day to the service.
func (m *remoteModel) Predict(ctx context.Context, key state.DayKey) ([]float64, error) {
	req, err := encodeRequest(m.samples, key)
	if err != nil {
		return nil, fmt.Errorf("encode forecast request: %w", err)
	}

	if m.client.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.client.timeout)
		defer cancel()
	}

	resp := new(structpb.Struct)
	if err := m.client.conn.Invoke(ctx, ForecastMethod, req, resp); err != nil {
		if status.Code(err) == codes.FailedPrecondition {
			return nil, fmt.Errorf("forecast rpc: %w", ErrInsufficientHistory)
		}
		return nil, fmt.Errorf("forecast rpc: %w", err)
	}
	return decodeResponse(resp)
}
// #endregion fit
