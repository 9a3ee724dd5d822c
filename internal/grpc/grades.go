package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"exampro/internal/api"
	"exampro/internal/apperr"
	"exampro/internal/grades"
	"exampro/internal/model"
)

type GradeReader interface {
	ListGradesForStudent(ctx context.Context, studentID int64) ([]model.Grade, error)
}

type GradesServer struct {
	store GradeReader
}

func NewGradesServer(store GradeReader) *GradesServer {
	return &GradesServer{store: store}
}

func (s *GradesServer) ListStudentGrades(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.ListValue, error) {
	list, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	values := make([]*structpb.Value, 0, len(list))
	for _, grade := range list {
		row, err := structpb.NewStruct(gradeFields(grade))
		if err != nil {
			return nil, status.Error(codes.Internal, "encode failed")
		}
		values = append(values, structpb.NewStructValue(row))
	}
	return &structpb.ListValue{Values: values}, nil
}

func (s *GradesServer) GetStudentAverage(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.DoubleValue, error) {
	list, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	avg, ok := grades.Average(list)
	if !ok {
		return nil, status.Error(codes.NotFound, "no graded modules")
	}
	return wrapperspb.Double(avg), nil
}

func (s *GradesServer) load(ctx context.Context, req *wrapperspb.Int64Value) ([]model.Grade, error) {
	if req.GetValue() <= 0 {
		return nil, status.Error(codes.InvalidArgument, "invalid student_id")
	}
	list, err := s.store.ListGradesForStudent(ctx, req.GetValue())
	if err != nil {
		return nil, statusFromError(err)
	}
	return list, nil
}

func gradeFields(grade model.Grade) map[string]interface{} {
	fields := map[string]interface{}{
		"id":         grade.ID,
		"studentId":  grade.StudentID,
		"moduleId":   grade.ModuleID,
		"moduleCode": grade.ModuleCode,
		"moduleName": grade.ModuleName,
		"score":      grade.Score,
		"status":     string(grade.Status),
	}
	if !grade.ExamDate.IsZero() {
		fields["examDate"] = grade.ExamDate.Format(api.DateLayout)
	}
	return fields
}

func statusFromError(err error) error {
	switch apperr.KindOf(apperr.MapDBError(err)) {
	case apperr.KindNotFound:
		return status.Error(codes.NotFound, "not found")
	case apperr.KindValidation:
		return status.Error(codes.InvalidArgument, "invalid request")
	case apperr.KindTransientIO:
		return status.Error(codes.Unavailable, "store unavailable")
	default:
		return status.Error(codes.Internal, "query failed")
	}
}
