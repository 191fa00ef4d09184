package forecast

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region server
// Server exposes a local Forecaster as the forecast gRPC service.
type Server struct {
	forecaster Forecaster
	log        logrus.FieldLogger
}

// NewServer wraps f. A nil logger discards output.
func NewServer(f Forecaster, log logrus.FieldLogger) *Server {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	return &Server{forecaster: f, log: log}
}

// Forecast fits the wrapped forecaster to the request history and predicts
// the target day.
func (s *Server) Forecast(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	samples, target, err := decodeRequest(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}

	model, err := s.forecaster.Fit(ctx, samples)
	if errors.Is(err, ErrInsufficientHistory) {
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	}
	if err != nil {
		return nil, status.Errorf(codes.Internal, "fit: %v", err)
	}

	pred, err := model.Predict(ctx, target)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "predict: %v", err)
	}

	s.log.WithFields(logrus.Fields{
		"samples": len(samples),
		"week":    target.Week,
		"day":     target.Day.String(),
	}).Debug("forecast served")

	return encodeResponse(pred)
}
// #endregion server

// #region registration
type forecastService interface {
	Forecast(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*forecastService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Forecast", Handler: forecastHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "petsim/forecast/v1/forecast.proto",
}

// RegisterServer installs s on a gRPC server.
func RegisterServer(r grpc.ServiceRegistrar, s *Server) {
	r.RegisterService(&serviceDesc, s)
}

func forecastHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(forecastService).Forecast(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ForecastMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(forecastService).Forecast(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
// #endregion registration
