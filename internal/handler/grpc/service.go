package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "howdoihelp.policy.v1.PolicyService"
	// CheckMethod is the full method path of PolicyService.Check.
	CheckMethod = "/" + ServiceName + "/Check"
)

// PolicyServiceServer is the server API for PolicyService. Messages are
// google.protobuf.Struct values so clients need no generated stubs.
type PolicyServiceServer interface {
	Check(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterPolicyServiceServer registers srv on s.
func RegisterPolicyServiceServer(s grpc.ServiceRegistrar, srv PolicyServiceServer) {
	s.RegisterService(&policyServiceDesc, srv)
}

var policyServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PolicyServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Check",
			Handler:    checkHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "howdoihelp/policy/v1/policy.proto",
}

func checkHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PolicyServiceServer).Check(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: CheckMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PolicyServiceServer).Check(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
