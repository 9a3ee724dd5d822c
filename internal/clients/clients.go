package clients

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	gradesgrpc "exampro/internal/grpc"
)

// Grades wraps the grade query service with the service token applied to every call.
type Grades struct {
	conn   *grpc.ClientConn
	client gradesgrpc.GradeQueryServiceClient
	token  string
}

func NewGrades(ctx context.Context, addr, serviceToken string, timeout time.Duration) (*Grades, error) {
	conn, err := dial(ctx, addr, timeout)
	if err != nil {
		return nil, err
	}
	return &Grades{
		conn:   conn,
		client: gradesgrpc.NewGradeQueryServiceClient(conn),
		token:  serviceToken,
	}, nil
}

// GradeRow is one grade as reported by the query service.
type GradeRow struct {
	ModuleCode string
	ModuleName string
	Score      float64
	Status     string
	ExamDate   string
}

func (g *Grades) StudentGrades(ctx context.Context, studentID int64) ([]GradeRow, error) {
	list, err := g.client.ListStudentGrades(g.outgoing(ctx), wrapperspb.Int64(studentID))
	if err != nil {
		return nil, err
	}
	rows := make([]GradeRow, 0, len(list.GetValues()))
	for _, value := range list.GetValues() {
		rows = append(rows, rowFromStruct(value.GetStructValue()))
	}
	return rows, nil
}

func (g *Grades) StudentAverage(ctx context.Context, studentID int64) (float64, error) {
	avg, err := g.client.GetStudentAverage(g.outgoing(ctx), wrapperspb.Int64(studentID))
	if err != nil {
		return 0, err
	}
	return avg.GetValue(), nil
}

func (g *Grades) Close() {
	if g == nil || g.conn == nil {
		return
	}
	_ = g.conn.Close()
}

func (g *Grades) outgoing(ctx context.Context) context.Context {
	return gradesgrpc.WithServiceToken(ctx, g.token)
}

func rowFromStruct(s *structpb.Struct) GradeRow {
	fields := s.GetFields()
	return GradeRow{
		ModuleCode: fields["moduleCode"].GetStringValue(),
		ModuleName: fields["moduleName"].GetStringValue(),
		Score:      fields["score"].GetNumberValue(),
		Status:     fields["status"].GetStringValue(),
		ExamDate:   fields["examDate"].GetStringValue(),
	}
}

func dial(ctx context.Context, addr string, timeout time.Duration) (*grpc.ClientConn, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return grpc.DialContext(ctx, addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
}
