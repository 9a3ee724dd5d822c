package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	GradeQueryServiceName   = "exampro.grades.v1.GradeQueryService"
	ListStudentGradesMethod = "/" + GradeQueryServiceName + "/ListStudentGrades"
	GetStudentAverageMethod = "/" + GradeQueryServiceName + "/GetStudentAverage"
)

// GradeQueryServiceServer is the read-only grade API exposed to other services.
// Messages are protobuf well-known types so no generated code is needed.
type GradeQueryServiceServer interface {
	ListStudentGrades(ctx context.Context, studentID *wrapperspb.Int64Value) (*structpb.ListValue, error)
	GetStudentAverage(ctx context.Context, studentID *wrapperspb.Int64Value) (*wrapperspb.DoubleValue, error)
}

func RegisterGradeQueryServiceServer(s grpc.ServiceRegistrar, srv GradeQueryServiceServer) {
	s.RegisterService(&gradeQueryServiceDesc, srv)
}

var gradeQueryServiceDesc = grpc.ServiceDesc{
	ServiceName: GradeQueryServiceName,
	HandlerType: (*GradeQueryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListStudentGrades", Handler: listStudentGradesHandler},
		{MethodName: "GetStudentAverage", Handler: getStudentAverageHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "exampro/grades/v1/grades.proto",
}

func listStudentGradesHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GradeQueryServiceServer).ListStudentGrades(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListStudentGradesMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(GradeQueryServiceServer).ListStudentGrades(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func getStudentAverageHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GradeQueryServiceServer).GetStudentAverage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetStudentAverageMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(GradeQueryServiceServer).GetStudentAverage(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

type GradeQueryServiceClient interface {
	ListStudentGrades(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.ListValue, error)
	GetStudentAverage(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*wrapperspb.DoubleValue, error)
}

type gradeQueryServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewGradeQueryServiceClient(cc grpc.ClientConnInterface) GradeQueryServiceClient {
	return &gradeQueryServiceClient{cc: cc}
}

func (c *gradeQueryServiceClient) ListStudentGrades(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, ListStudentGradesMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *gradeQueryServiceClient) GetStudentAverage(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*wrapperspb.DoubleValue, error) {
	out := new(wrapperspb.DoubleValue)
	if err := c.cc.Invoke(ctx, GetStudentAverageMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
