// Package rpc exposes the relay as a gRPC service.
//
// The service has no generated stubs. Requests and responses are
// google.protobuf.Struct values:
//
//	Explain({"diagnosis": "...", "medicines": "..."}) -> {"explanation": "...", "model": "..."}
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully-qualified gRPC service name.
	ServiceName = "medsum.v1.Relay"

	explainMethod = "/" + ServiceName + "/Explain"
)

// RelayServer is the server API for the medsum.v1.Relay service.
type RelayServer interface {
	Explain(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterRelayServer registers srv on s.
func RegisterRelayServer(s grpc.ServiceRegistrar, srv RelayServer) {
	s.RegisterService(&relayServiceDesc, srv)
}

func explainHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RelayServer).Explain(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: explainMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RelayServer).Explain(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var relayServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RelayServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Explain",
			Handler:    explainHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "medsum/v1/relay.proto",
}
