package tcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/escola-hub/escola-server/internal/application/command"
	"github.com/escola-hub/escola-server/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACTION DISPATCHER
// Routes a request to its handler. Store-backed actions run under the
// store lock, so one request's load-mutate-save cycle never interleaves
// with another's. A handler error or panic becomes an error payload on
// this request's response; the connection and the server keep going.
// ══════════════════════════════════════════════════════════════════════════════

// Locker serializes store access across all connections.
type Locker interface {
	Exclusive(fn func() (any, error)) (any, error)
}

// Handlers collects every action handler the dispatcher routes to.
type Handlers struct {
	LoginAdmin         *query.LoginAdminHandler
	LoginTeacher       *query.LoginTeacherHandler
	LoginStudent       *query.LoginStudentHandler
	StudentRecord      *query.GetStudentRecordHandler
	RegistryInfo       *query.GetRegistryInfoHandler
	ClassStudents      *query.GetClassStudentsHandler
	ClassReport        *query.GetClassReportHandler
	SubjectAssignments *query.GetSubjectAssignmentsHandler
	Deliveries         *query.GetAssignmentDeliveriesHandler
	StudentAssignments *query.GetStudentAssignmentsHandler
	ListLessons        *query.ListLessonsHandler
	GenerateTopics     *query.GenerateTopicsHandler

	RegisterClassGroup *command.RegisterClassGroupHandler
	RegisterTeacher    *command.RegisterTeacherHandler
	RegisterSubject    *command.RegisterSubjectHandler
	RegisterStudent    *command.RegisterStudentHandler
	RecordAttendance   *command.RecordAttendanceHandler
	PublishAssignment  *command.PublishAssignmentHandler
	RecordNPScores     *command.RecordNPScoresHandler
	ScoreAssignment    *command.ScoreAssignmentHandler
	SubmitAssignment   *command.SubmitAssignmentHandler
	ComputeFinalGrades *command.ComputeFinalGradesHandler
	RecordLesson       *command.RecordLessonHandler
}

type actionFunc func(ctx context.Context, p params) (any, error)

// Dispatcher maps wire action names to handlers.
type Dispatcher struct {
	actions map[string]actionFunc
	locker  Locker
	logger  *slog.Logger
}

// NewDispatcher builds the action table.
func NewDispatcher(h Handlers, locker Locker, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{locker: locker, logger: logger}
	d.actions = map[string]actionFunc{
		"login_administrador": func(ctx context.Context, p params) (any, error) {
			user, pass, err := p.twoStrings()
			if err != nil {
				return nil, err
			}
			return h.LoginAdmin.Handle(ctx, query.LoginAdminQuery{User: user, Password: pass})
		},
		"login_professor": d.locked(func(ctx context.Context, p params) (any, error) {
			cpf, pass, err := p.twoStrings()
			if err != nil {
				return nil, err
			}
			return h.LoginTeacher.Handle(ctx, query.LoginTeacherQuery{CPF: cpf, Password: pass})
		}),
		"login_aluno": d.locked(func(ctx context.Context, p params) (any, error) {
			ra, pass, err := p.twoStrings()
			if err != nil {
				return nil, err
			}
			return h.LoginStudent.Handle(ctx, query.LoginStudentQuery{RA: ra, Password: pass})
		}),
		"get_aluno_data": d.locked(func(ctx context.Context, p params) (any, error) {
			ra, err := p.str(0, 1)
			if err != nil {
				return nil, err
			}
			return h.StudentRecord.Handle(ctx, query.GetStudentRecordQuery{RA: ra})
		}),
		"cadastrar_turma": d.locked(func(ctx context.Context, p params) (any, error) {
			name, err := p.str(0, 1)
			if err != nil {
				return nil, err
			}
			return h.RegisterClassGroup.Handle(ctx, command.RegisterClassGroupCommand{Name: name})
		}),
		"cadastrar_professor": d.locked(func(ctx context.Context, p params) (any, error) {
			if err := p.arity(3); err != nil {
				return nil, err
			}
			cpf, _ := p.str(0, 3)
			name, _ := p.str(1, 3)
			pass, err := p.str(2, 3)
			if err != nil {
				return nil, err
			}
			return h.RegisterTeacher.Handle(ctx, command.RegisterTeacherCommand{CPF: cpf, Name: name, Password: pass})
		}),
		"get_cadastro_info": d.locked(func(ctx context.Context, p params) (any, error) {
			entity, err := p.str(0, 1)
			if err != nil {
				return nil, err
			}
			return h.RegistryInfo.Handle(ctx, query.GetRegistryInfoQuery{Entity: entity})
		}),
		"cadastrar_disciplina": d.locked(func(ctx context.Context, p params) (any, error) {
			if err := p.arity(3); err != nil {
				return nil, err
			}
			subject, _ := p.str(0, 3)
			classGroup, _ := p.str(1, 3)
			cpf, err := p.str(2, 3)
			if err != nil {
				return nil, err
			}
			return h.RegisterSubject.Handle(ctx, command.RegisterSubjectCommand{
				Subject: subject, ClassGroup: classGroup, TeacherCPF: cpf,
			})
		}),
		"cadastrar_aluno": d.locked(func(ctx context.Context, p params) (any, error) {
			if err := p.arity(4); err != nil {
				return nil, err
			}
			ra, _ := p.str(0, 4)
			name, _ := p.str(1, 4)
			pass, _ := p.str(2, 4)
			classGroup, err := p.str(3, 4)
			if err != nil {
				return nil, err
			}
			return h.RegisterStudent.Handle(ctx, command.RegisterStudentCommand{
				RA: ra, Name: name, Password: pass, ClassGroup: classGroup,
			})
		}),
		"get_lista_alunos_turma": d.locked(func(ctx context.Context, p params) (any, error) {
			classGroup, err := p.str(0, 1)
			if err != nil {
				return nil, err
			}
			return h.ClassStudents.Handle(ctx, query.GetClassStudentsQuery{ClassGroup: classGroup})
		}),
		"lista_chamada": d.locked(func(ctx context.Context, p params) (any, error) {
			if err := p.arity(2); err != nil {
				return nil, err
			}
			classGroup, _ := p.str(0, 2)
			presence, err := p.objMap(1, 2)
			if err != nil {
				return nil, err
			}
			return h.RecordAttendance.Handle(ctx, command.RecordAttendanceCommand{
				ClassGroup: classGroup, Presence: presence,
			})
		}),
		"gerar_topicos_ia": func(ctx context.Context, p params) (any, error) {
			subject, theme, err := p.twoStrings()
			if err != nil {
				return nil, err
			}
			return h.GenerateTopics.Handle(ctx, query.GenerateTopicsQuery{Subject: subject, Theme: theme})
		},
		"enviar_atividade": d.locked(func(ctx context.Context, p params) (any, error) {
			if err := p.arity(4); err != nil {
				return nil, err
			}
			subject, _ := p.str(0, 4)
			classGroup, _ := p.str(1, 4)
			name, _ := p.str(2, 4)
			link, err := p.str(3, 4)
			if err != nil {
				return nil, err
			}
			return h.PublishAssignment.Handle(ctx, command.PublishAssignmentCommand{
				Subject: subject, ClassGroup: classGroup, Name: name, Link: link,
			})
		}),
		"lancar_np_grades": d.locked(func(ctx context.Context, p params) (any, error) {
			if err := p.arity(4); err != nil {
				return nil, err
			}
			subject, _ := p.str(0, 4)
			classGroup, _ := p.str(1, 4)
			kind, _ := p.str(2, 4)
			scores, err := p.objMap(3, 4)
			if err != nil {
				return nil, err
			}
			return h.RecordNPScores.Handle(ctx, command.RecordNPScoresCommand{
				Subject: subject, ClassGroup: classGroup, Kind: kind, Scores: scores,
			})
		}),
		"get_atividades_disciplina": d.locked(func(ctx context.Context, p params) (any, error) {
			subject, classGroup, err := p.twoStrings()
			if err != nil {
				return nil, err
			}
			return h.SubjectAssignments.Handle(ctx, query.GetSubjectAssignmentsQuery{
				Subject: subject, ClassGroup: classGroup,
			})
		}),
		"get_entregas_atividade": d.locked(func(ctx context.Context, p params) (any, error) {
			if err := p.arity(3); err != nil {
				return nil, err
			}
			subject, _ := p.str(0, 3)
			classGroup, _ := p.str(1, 3)
			assignment, err := p.str(2, 3)
			if err != nil {
				return nil, err
			}
			return h.Deliveries.Handle(ctx, query.GetAssignmentDeliveriesQuery{
				Subject: subject, ClassGroup: classGroup, Assignment: assignment,
			})
		}),
		"atribuir_nota_atividade": d.locked(func(ctx context.Context, p params) (any, error) {
			if err := p.arity(5); err != nil {
				return nil, err
			}
			subject, _ := p.str(0, 5)
			classGroup, _ := p.str(1, 5)
			assignment, _ := p.str(2, 5)
			ra, err := p.str(3, 5)
			if err != nil {
				return nil, err
			}
			score, err := p.float(4, 5)
			if err != nil {
				return nil, err
			}
			return h.ScoreAssignment.Handle(ctx, command.ScoreAssignmentCommand{
				Subject: subject, ClassGroup: classGroup, Assignment: assignment, RA: ra, Score: score,
			})
		}),
		"calcular_nota_final_turma": d.locked(func(ctx context.Context, p params) (any, error) {
			subject, classGroup, err := p.twoStrings()
			if err != nil {
				return nil, err
			}
			return h.ComputeFinalGrades.Handle(ctx, command.ComputeFinalGradesCommand{
				Subject: subject, ClassGroup: classGroup,
			})
		}),
		"ver_notas_faltas_turma": d.locked(func(ctx context.Context, p params) (any, error) {
			subject, classGroup, err := p.twoStrings()
			if err != nil {
				return nil, err
			}
			return h.ClassReport.Handle(ctx, query.GetClassReportQuery{
				Subject: subject, ClassGroup: classGroup,
			})
		}),
		"get_atividades_aluno_turma": d.locked(func(ctx context.Context, p params) (any, error) {
			ra, err := p.str(0, 1)
			if err != nil {
				return nil, err
			}
			return h.StudentAssignments.Handle(ctx, query.GetStudentAssignmentsQuery{RA: ra})
		}),
		"enviar_atividade_aluno": d.locked(func(ctx context.Context, p params) (any, error) {
			if err := p.arity(4); err != nil {
				return nil, err
			}
			ra, _ := p.str(0, 4)
			subject, _ := p.str(1, 4)
			assignment, _ := p.str(2, 4)
			link, err := p.str(3, 4)
			if err != nil {
				return nil, err
			}
			return h.SubmitAssignment.Handle(ctx, command.SubmitAssignmentCommand{
				RA: ra, Subject: subject, Assignment: assignment, Link: link,
			})
		}),
		"registrar_aula": d.locked(func(ctx context.Context, p params) (any, error) {
			if err := p.arity(4); err != nil {
				return nil, err
			}
			subject, _ := p.str(0, 4)
			classGroup, _ := p.str(1, 4)
			date, _ := p.str(2, 4)
			description, err := p.str(3, 4)
			if err != nil {
				return nil, err
			}
			return h.RecordLesson.Handle(ctx, command.RecordLessonCommand{
				Subject: subject, ClassGroup: classGroup, Date: date, Description: description,
			})
		}),
		"listar_aulas": d.locked(func(ctx context.Context, p params) (any, error) {
			subject, classGroup, err := p.twoStrings()
			if err != nil {
				return nil, err
			}
			return h.ListLessons.Handle(ctx, query.ListLessonsQuery{
				Subject: subject, ClassGroup: classGroup,
			})
		}),
	}
	return d
}

// locked wraps an action so it runs under the store lock.
func (d *Dispatcher) locked(fn actionFunc) actionFunc {
	return func(ctx context.Context, p params) (any, error) {
		return d.locker.Exclusive(func() (any, error) {
			return fn(ctx, p)
		})
	}
}

// Dispatch routes one request and always produces a response payload. A
// panic in a handler is confined to this request.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (result any) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panic",
				slog.String("action", req.Action),
				slog.Any("panic", r))
			result = map[string]any{
				"error": fmt.Sprintf("Erro ao executar ação '%s': %v", req.Action, r),
			}
		}
	}()

	fn, known := d.actions[req.Action]
	if !known {
		return map[string]any{"error": "Ação desconhecida", "action_received": req.Action}
	}

	res, err := fn(ctx, params(req.Params))
	if err != nil {
		var bindErr *bindError
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &bindErr) || errors.As(err, &fieldErrs) {
			return map[string]any{
				"error": fmt.Sprintf("Parâmetros inválidos para a ação '%s': %v", req.Action, err),
			}
		}
		d.logger.Error("action failed",
			slog.String("action", req.Action),
			slog.String("error", err.Error()))
		return map[string]any{
			"error": fmt.Sprintf("Erro ao executar ação '%s': %v", req.Action, err),
		}
	}
	return res
}

// ─── Positional parameter binding ────────────────────────────────────────────

type bindError struct {
	msg string
}

func (e *bindError) Error() string { return e.msg }

func bindErrf(format string, args ...any) error {
	return &bindError{msg: fmt.Sprintf(format, args...)}
}

type params []any

func (p params) arity(want int) error {
	if len(p) != want {
		return bindErrf("expected %d parameters, got %d", want, len(p))
	}
	return nil
}

func (p params) str(i, want int) (string, error) {
	if err := p.arity(want); err != nil {
		return "", err
	}
	s, ok := p[i].(string)
	if !ok {
		return "", bindErrf("parameter %d must be a string, got %T", i, p[i])
	}
	return s, nil
}

func (p params) float(i, want int) (float64, error) {
	if err := p.arity(want); err != nil {
		return 0, err
	}
	f, ok := p[i].(float64)
	if !ok {
		return 0, bindErrf("parameter %d must be a number, got %T", i, p[i])
	}
	return f, nil
}

func (p params) objMap(i, want int) (map[string]any, error) {
	if err := p.arity(want); err != nil {
		return nil, err
	}
	m, ok := p[i].(map[string]any)
	if !ok {
		return nil, bindErrf("parameter %d must be an object, got %T", i, p[i])
	}
	return m, nil
}

func (p params) twoStrings() (string, string, error) {
	if err := p.arity(2); err != nil {
		return "", "", err
	}
	a, err := p.str(0, 2)
	if err != nil {
		return "", "", err
	}
	b, err := p.str(1, 2)
	if err != nil {
		return "", "", err
	}
	return a, b, nil
}
