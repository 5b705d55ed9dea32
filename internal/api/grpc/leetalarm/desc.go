package leetalarm

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "leetalarm.v1.AlarmService"

// Full method names.
const (
	GetStateFullMethodName       = "/" + ServiceName + "/GetState"
	WatchStateFullMethodName     = "/" + ServiceName + "/WatchState"
	AddAlarmFullMethodName       = "/" + ServiceName + "/AddAlarm"
	UpdateAlarmFullMethodName    = "/" + ServiceName + "/UpdateAlarm"
	DeleteAlarmsFullMethodName   = "/" + ServiceName + "/DeleteAlarms"
	StartChallengeFullMethodName = "/" + ServiceName + "/StartChallenge"
	SubmitAnswerFullMethodName   = "/" + ServiceName + "/SubmitAnswer"
	DismissAlarmFullMethodName   = "/" + ServiceName + "/DismissAlarm"
	FireAlarmFullMethodName      = "/" + ServiceName + "/FireAlarm"
	ExportCalendarFullMethodName = "/" + ServiceName + "/ExportCalendar"
)

// AlarmServiceServer is the server API for the alarm service.
type AlarmServiceServer interface {
	GetState(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	WatchState(*emptypb.Empty, grpc.ServerStreamingServer[structpb.Struct]) error
	AddAlarm(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateAlarm(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteAlarms(context.Context, *structpb.ListValue) (*structpb.Struct, error)
	StartChallenge(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	SubmitAnswer(context.Context, *wrapperspb.Int32Value) (*structpb.Struct, error)
	DismissAlarm(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	FireAlarm(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	ExportCalendar(context.Context, *emptypb.Empty) (*wrapperspb.BytesValue, error)
}

// RegisterAlarmServiceServer attaches the implementation to a gRPC server.
func RegisterAlarmServiceServer(s grpc.ServiceRegistrar, srv AlarmServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc describes the alarm service for grpc.Server.
//
//nolint:gochecknoglobals // Service descriptors are package-level by convention.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AlarmServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetState",
			Handler:    unaryHandler[emptypb.Empty](GetStateFullMethodName, AlarmServiceServer.GetState),
		},
		{
			MethodName: "AddAlarm",
			Handler:    unaryHandler[structpb.Struct](AddAlarmFullMethodName, AlarmServiceServer.AddAlarm),
		},
		{
			MethodName: "UpdateAlarm",
			Handler:    unaryHandler[structpb.Struct](UpdateAlarmFullMethodName, AlarmServiceServer.UpdateAlarm),
		},
		{
			MethodName: "DeleteAlarms",
			Handler:    unaryHandler[structpb.ListValue](DeleteAlarmsFullMethodName, AlarmServiceServer.DeleteAlarms),
		},
		{
			MethodName: "StartChallenge",
			Handler:    unaryHandler[wrapperspb.StringValue](StartChallengeFullMethodName, AlarmServiceServer.StartChallenge),
		},
		{
			MethodName: "SubmitAnswer",
			Handler:    unaryHandler[wrapperspb.Int32Value](SubmitAnswerFullMethodName, AlarmServiceServer.SubmitAnswer),
		},
		{
			MethodName: "DismissAlarm",
			Handler:    unaryHandler[emptypb.Empty](DismissAlarmFullMethodName, AlarmServiceServer.DismissAlarm),
		},
		{
			MethodName: "FireAlarm",
			Handler:    unaryHandler[wrapperspb.StringValue](FireAlarmFullMethodName, AlarmServiceServer.FireAlarm),
		},
		{
			MethodName: "ExportCalendar",
			Handler:    unaryHandler[emptypb.Empty](ExportCalendarFullMethodName, AlarmServiceServer.ExportCalendar),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchState",
			Handler:       watchStateHandler,
			ServerStreams: true,
		},
	},
	Metadata: "leetalarm/v1/alarm.proto",
}

// unaryHandler adapts a typed server method to grpc.MethodHandler.
func unaryHandler[Req any, PReq interface {
	*Req
	proto.Message
}, Resp proto.Message](
	fullMethod string,
	call func(AlarmServiceServer, context.Context, PReq) (Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}

		impl, _ := srv.(AlarmServiceServer)

		if interceptor == nil {
			return call(impl, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(PReq)

			return call(impl, ctx, typed)
		}

		return interceptor(ctx, in, info, handler)
	}
}

func watchStateHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}

	impl, _ := srv.(AlarmServiceServer)

	return impl.WatchState(in, &grpc.GenericServerStream[emptypb.Empty, structpb.Struct]{ServerStream: stream})
}

// AlarmServiceClient is the client API for the alarm service.
type AlarmServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAlarmServiceClient wraps a connection.
func NewAlarmServiceClient(cc grpc.ClientConnInterface) *AlarmServiceClient {
	return &AlarmServiceClient{cc: cc}
}

// GetState returns the current snapshot.
func (c *AlarmServiceClient) GetState(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, GetStateFullMethodName, new(emptypb.Empty), opts...)
}

// WatchState opens the snapshot stream.
func (c *AlarmServiceClient) WatchState(
	ctx context.Context,
	opts ...grpc.CallOption,
) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], WatchStateFullMethodName, opts...)
	if err != nil {
		return nil, err
	}

	x := &grpc.GenericClientStream[emptypb.Empty, structpb.Struct]{ClientStream: stream}
	if err = x.ClientStream.SendMsg(new(emptypb.Empty)); err != nil {
		return nil, err
	}

	if err = x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}

	return x, nil
}

// AddAlarm creates an alarm from a draft.
func (c *AlarmServiceClient) AddAlarm(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, AddAlarmFullMethodName, in, opts...)
}

// UpdateAlarm edits an alarm.
func (c *AlarmServiceClient) UpdateAlarm(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, UpdateAlarmFullMethodName, in, opts...)
}

// DeleteAlarms removes alarms by id.
func (c *AlarmServiceClient) DeleteAlarms(ctx context.Context, in *structpb.ListValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, DeleteAlarmsFullMethodName, in, opts...)
}

// StartChallenge starts a challenge for an alarm.
func (c *AlarmServiceClient) StartChallenge(
	ctx context.Context,
	in *wrapperspb.StringValue,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, StartChallengeFullMethodName, in, opts...)
}

// SubmitAnswer answers the current question.
func (c *AlarmServiceClient) SubmitAnswer(
	ctx context.Context,
	in *wrapperspb.Int32Value,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, SubmitAnswerFullMethodName, in, opts...)
}

// DismissAlarm dismisses the active alarm.
func (c *AlarmServiceClient) DismissAlarm(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, DismissAlarmFullMethodName, new(emptypb.Empty), opts...)
}

// FireAlarm fires an alarm immediately.
func (c *AlarmServiceClient) FireAlarm(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) error {
	_, err := invoke[emptypb.Empty](ctx, c.cc, FireAlarmFullMethodName, in, opts...)

	return err
}

// ExportCalendar downloads the iCalendar feed.
func (c *AlarmServiceClient) ExportCalendar(ctx context.Context, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	return invoke[wrapperspb.BytesValue](ctx, c.cc, ExportCalendarFullMethodName, new(emptypb.Empty), opts...)
}

func invoke[Resp any, PResp interface {
	*Resp
	proto.Message
}](
	ctx context.Context,
	cc grpc.ClientConnInterface,
	method string,
	in proto.Message,
	opts ...grpc.CallOption,
) (PResp, error) {
	out := PResp(new(Resp))
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		var zero PResp

		return zero, err
	}

	return out, nil
}
