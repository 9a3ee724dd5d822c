package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"exampro/internal/apperr"
	"exampro/internal/model"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ Repository = (*Store)(nil)

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) Ping(ctx context.Context) error {
	return apperr.MapDBError(s.pool.Ping(ctx))
}

const userColumns = `id, email, password_hash, role, name, created_at`

func scanUser(row pgx.Row) (model.User, error) {
	var user model.User
	var role string
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &role, &user.Name, &user.CreatedAt)
	user.Role = model.Role(role)
	return user, err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	user, err := scanUser(s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, normalizeEmail(email)))
	return user, apperr.MapDBError(err)
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	user, err := scanUser(s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id))
	return user, apperr.MapDBError(err)
}

func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, apperr.MapDBError(err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperr.MapDBError(err)
		}
		users = append(users, user)
	}
	return users, apperr.MapDBError(rows.Err())
}

// CreateUser inserts the login and, for teachers, the matching teacher row in
// one statement.
func (s *Store) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	created, err := scanUser(s.pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO users (email, password_hash, role, name)
			VALUES ($1, $2, $3, $4)
			RETURNING `+userColumns+`
		), teacher AS (
			INSERT INTO teachers (user_id)
			SELECT id FROM inserted WHERE role = 'teacher'
		)
		SELECT `+userColumns+` FROM inserted
	`, normalizeEmail(user.Email), user.PasswordHash, string(user.Role), strings.TrimSpace(user.Name)))
	return created, apperr.MapDBError(err)
}

func (s *Store) SetPassword(ctx context.Context, userID int64, passwordHash string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, userID, passwordHash)
	if err != nil {
		return apperr.MapDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user_not_found")
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return apperr.MapDBError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user_not_found")
	}
	return nil
}

const studentSelect = `
	SELECT s.id, s.user_id, u.name, u.email, s.filiere_id, f.name, s.student_number, s.enrollment_date
	FROM students s
	JOIN users u ON s.user_id = u.id
	JOIN filieres f ON s.filiere_id = f.id
`

func scanStudent(row pgx.Row) (model.Student, error) {
	var student model.Student
	err := row.Scan(
		&student.ID,
		&student.UserID,
		&student.Name,
		&student.Email,
		&student.FiliereID,
		&student.FiliereName,
		&student.StudentNumber,
		&student.EnrollmentDate,
	)
	return student, err
}

func (s *Store) ListStudents(ctx context.Context) ([]model.Student, error) {
	rows, err := s.pool.Query(ctx, studentSelect+` ORDER BY u.name, s.id`)
	if err != nil {
		return nil, apperr.MapDBError(err)
	}
	defer rows.Close()

	students := []model.Student{}
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, apperr.MapDBError(err)
		}
		students = append(students, student)
	}
	return students, apperr.MapDBError(rows.Err())
}

// CreateStudent inserts the login and the student row together. The student
// number is derived from the enrollment year and the login id.
func (s *Store) CreateStudent(ctx context.Context, input NewStudent) (model.Student, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO users (email, password_hash, role, name)
			VALUES ($1, $2, 'student', $3)
			RETURNING id
		)
		INSERT INTO students (user_id, filiere_id, student_number, enrollment_date)
		SELECT id, $4, 'STU' || to_char(CURRENT_DATE, 'YYYY') || lpad(id::text, 4, '0'), CURRENT_DATE
		FROM inserted
		RETURNING id
	`, normalizeEmail(input.Email), input.PasswordHash, strings.TrimSpace(input.Name), input.FiliereID).Scan(&id)
	if err != nil {
		return model.Student{}, apperr.MapDBError(err)
	}
	student, err := scanStudent(s.pool.QueryRow(ctx, studentSelect+` WHERE s.id = $1`, id))
	return student, apperr.MapDBError(err)
}

func (s *Store) ListTeachers(ctx context.Context) ([]model.Teacher, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT t.id, t.user_id, u.name, u.email, t.speciality
		FROM teachers t
		JOIN users u ON t.user_id = u.id
		ORDER BY u.name, t.id
	`)
	if err != nil {
		return nil, apperr.MapDBError(err)
	}
	defer rows.Close()

	teachers := []model.Teacher{}
	for rows.Next() {
		var teacher model.Teacher
		if err := rows.Scan(&teacher.ID, &teacher.UserID, &teacher.Name, &teacher.Email, &teacher.Speciality); err != nil {
			return nil, apperr.MapDBError(err)
		}
		teachers = append(teachers, teacher)
	}
	return teachers, apperr.MapDBError(rows.Err())
}

func (s *Store) ListFilieres(ctx context.Context) ([]model.Filiere, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, code, duration FROM filieres ORDER BY name, id`)
	if err != nil {
		return nil, apperr.MapDBError(err)
	}
	defer rows.Close()

	filieres := []model.Filiere{}
	for rows.Next() {
		var filiere model.Filiere
		if err := rows.Scan(&filiere.ID, &filiere.Name, &filiere.Code, &filiere.Duration); err != nil {
			return nil, apperr.MapDBError(err)
		}
		filieres = append(filieres, filiere)
	}
	return filieres, apperr.MapDBError(rows.Err())
}

func (s *Store) CreateFiliere(ctx context.Context, filiere model.Filiere) (model.Filiere, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO filieres (name, code, duration)
		VALUES ($1, $2, $3)
		RETURNING id
	`, filiere.Name, filiere.Code, filiere.Duration).Scan(&filiere.ID)
	return filiere, apperr.MapDBError(err)
}

const moduleSelect = `
	SELECT m.id, m.name, m.code, m.filiere_id, f.name, m.teacher_id, u.name, m.coefficient, m.semester
	FROM modules m
	JOIN filieres f ON m.filiere_id = f.id
	LEFT JOIN teachers t ON m.teacher_id = t.id
	LEFT JOIN users u ON t.user_id = u.id
`

func scanModule(row pgx.Row) (model.Module, error) {
	var module model.Module
	err := row.Scan(
		&module.ID,
		&module.Name,
		&module.Code,
		&module.FiliereID,
		&module.FiliereName,
		&module.TeacherID,
		&module.TeacherName,
		&module.Coefficient,
		&module.Semester,
	)
	return module, err
}

func (s *Store) ListModules(ctx context.Context) ([]model.Module, error) {
	rows, err := s.pool.Query(ctx, moduleSelect+` ORDER BY f.name, m.name, m.id`)
	if err != nil {
		return nil, apperr.MapDBError(err)
	}
	defer rows.Close()

	modules := []model.Module{}
	for rows.Next() {
		module, err := scanModule(rows)
		if err != nil {
			return nil, apperr.MapDBError(err)
		}
		modules = append(modules, module)
	}
	return modules, apperr.MapDBError(rows.Err())
}

func (s *Store) CreateModule(ctx context.Context, module model.Module) (model.Module, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO modules (name, code, filiere_id, teacher_id, coefficient, semester)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, module.Name, module.Code, module.FiliereID, module.TeacherID, module.Coefficient, module.Semester).Scan(&id)
	if err != nil {
		return model.Module{}, apperr.MapDBError(err)
	}
	created, err := scanModule(s.pool.QueryRow(ctx, moduleSelect+` WHERE m.id = $1`, id))
	return created, apperr.MapDBError(err)
}

const gradeSelect = `
	SELECT g.id, g.student_id, g.module_id, g.score, g.status, g.exam_date, u.name, m.name, m.code
	FROM grades g
	JOIN students s ON g.student_id = s.id
	JOIN users u ON s.user_id = u.id
	JOIN modules m ON g.module_id = m.id
`

func scanGrade(row pgx.Row) (model.Grade, error) {
	var grade model.Grade
	var status string
	err := row.Scan(
		&grade.ID,
		&grade.StudentID,
		&grade.ModuleID,
		&grade.Score,
		&status,
		&grade.ExamDate,
		&grade.StudentName,
		&grade.ModuleName,
		&grade.ModuleCode,
	)
	grade.Status = model.GradeStatus(status)
	return grade, err
}

func (s *Store) queryGrades(ctx context.Context, query string, args ...any) ([]model.Grade, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.MapDBError(err)
	}
	defer rows.Close()

	grades := []model.Grade{}
	for rows.Next() {
		grade, err := scanGrade(rows)
		if err != nil {
			return nil, apperr.MapDBError(err)
		}
		grades = append(grades, grade)
	}
	return grades, apperr.MapDBError(rows.Err())
}

// UpsertGrade writes the score in a single statement so concurrent writers for
// the same (student, module) converge on one row.
func (s *Store) UpsertGrade(ctx context.Context, studentID, moduleID int64, score float64, status model.GradeStatus) (model.Grade, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO grades (student_id, module_id, score, status, exam_date)
		VALUES ($1, $2, $3, $4, CURRENT_DATE)
		ON CONFLICT (student_id, module_id)
		DO UPDATE SET score = EXCLUDED.score, status = EXCLUDED.status, exam_date = CURRENT_DATE
		RETURNING id
	`, studentID, moduleID, score, string(status)).Scan(&id)
	if err != nil {
		return model.Grade{}, apperr.MapDBError(err)
	}
	grade, err := scanGrade(s.pool.QueryRow(ctx, gradeSelect+` WHERE g.id = $1`, id))
	return grade, apperr.MapDBError(err)
}

func (s *Store) ListGrades(ctx context.Context) ([]model.Grade, error) {
	return s.queryGrades(ctx, gradeSelect+` ORDER BY g.id`)
}

func (s *Store) ListGradesForUser(ctx context.Context, userID int64) ([]model.Grade, error) {
	return s.queryGrades(ctx, gradeSelect+` WHERE u.id = $1 ORDER BY g.id`, userID)
}

func (s *Store) ListGradesForStudent(ctx context.Context, studentID int64) ([]model.Grade, error) {
	return s.queryGrades(ctx, gradeSelect+` WHERE g.student_id = $1 ORDER BY g.id`, studentID)
}

const examSelect = `
	SELECT e.id, e.module_id, m.name, m.code, f.name, e.exam_date, e.exam_time, e.room, e.duration_minutes, e.status
	FROM exams e
	JOIN modules m ON e.module_id = m.id
	JOIN filieres f ON m.filiere_id = f.id
`

func scanExam(row pgx.Row) (model.Exam, error) {
	var exam model.Exam
	var status string
	err := row.Scan(
		&exam.ID,
		&exam.ModuleID,
		&exam.ModuleName,
		&exam.ModuleCode,
		&exam.FiliereName,
		&exam.ExamDate,
		&exam.ExamTime,
		&exam.Room,
		&exam.DurationMinutes,
		&status,
	)
	exam.Status = model.ExamStatus(status)
	return exam, err
}

func (s *Store) ListExams(ctx context.Context) ([]model.Exam, error) {
	rows, err := s.pool.Query(ctx, examSelect+` ORDER BY e.exam_date, e.exam_time, e.id`)
	if err != nil {
		return nil, apperr.MapDBError(err)
	}
	defer rows.Close()

	exams := []model.Exam{}
	for rows.Next() {
		exam, err := scanExam(rows)
		if err != nil {
			return nil, apperr.MapDBError(err)
		}
		exams = append(exams, exam)
	}
	return exams, apperr.MapDBError(rows.Err())
}

func (s *Store) CreateExam(ctx context.Context, exam model.Exam) (model.Exam, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO exams (module_id, exam_date, exam_time, room, duration_minutes, status)
		VALUES ($1, $2, $3, $4, $5, COALESCE(NULLIF($6, ''), 'a-venir'))
		RETURNING id
	`, exam.ModuleID, exam.ExamDate, exam.ExamTime, exam.Room, exam.DurationMinutes, string(exam.Status)).Scan(&id)
	if err != nil {
		return model.Exam{}, apperr.MapDBError(err)
	}
	created, err := scanExam(s.pool.QueryRow(ctx, examSelect+` WHERE e.id = $1`, id))
	return created, apperr.MapDBError(err)
}

// MarkPastExamsFinished closes every upcoming exam dated before today.
func (s *Store) MarkPastExamsFinished(ctx context.Context, today time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE exams
		SET status = 'termine'
		WHERE status = 'a-venir' AND exam_date < $1
	`, today)
	if err != nil {
		return 0, apperr.MapDBError(err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) ListSettings(ctx context.Context) ([]model.Setting, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT setting_key, setting_value, updated_at
		FROM system_settings
		ORDER BY setting_key
	`)
	if err != nil {
		return nil, apperr.MapDBError(err)
	}
	defer rows.Close()

	settings := []model.Setting{}
	for rows.Next() {
		var setting model.Setting
		if err := rows.Scan(&setting.Key, &setting.Value, &setting.UpdatedAt); err != nil {
			return nil, apperr.MapDBError(err)
		}
		settings = append(settings, setting)
	}
	return settings, apperr.MapDBError(rows.Err())
}

func (s *Store) UpdateSetting(ctx context.Context, key, value string) (model.Setting, error) {
	setting := model.Setting{Key: key, Value: value}
	err := s.pool.QueryRow(ctx, `
		UPDATE system_settings
		SET setting_value = $2, updated_at = now()
		WHERE setting_key = $1
		RETURNING updated_at
	`, key, value).Scan(&setting.UpdatedAt)
	if err != nil {
		mapped := apperr.MapDBError(err)
		if apperr.Is(mapped, apperr.KindNotFound) {
			return model.Setting{}, apperr.NotFound("setting_not_found")
		}
		return model.Setting{}, mapped
	}
	return setting, nil
}
