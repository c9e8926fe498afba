package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/ganttr/internal/dates"
	"github.com/sadopc/ganttr/internal/gantt"
)

const taskColumns = `id, name, start_date, end_date, duration, progress, custom_class, position, created_at, updated_at`

// CreateTask inserts t at the end of the list. An empty id gets a fresh
// UUID.
func (s *Store) CreateTask(t Task) (*Task, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	id, err := insertTask(tx, t, -1)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetTask(id)
}

// insertTask writes one task. A negative position appends.
func insertTask(tx *sql.Tx, t Task, position int) (string, error) {
	t.ID = gantt.NormalizeID(t.ID)
	if t.ID == "" {
		t.ID = uuid.Must(uuid.NewV7()).String()
	}
	if position < 0 {
		if err := tx.QueryRow(`SELECT COALESCE(MAX(position) + 1, 0) FROM tasks`).Scan(&position); err != nil {
			return "", fmt.Errorf("next position: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := tx.Exec(
		`INSERT INTO tasks (id, name, start_date, end_date, duration, progress, custom_class, position, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Start, t.End, t.Duration, t.Progress, t.CustomClass, position, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("insert task %q: %w", t.ID, err)
	}
	if err := writeDependencies(tx, t.ID, t.Dependencies); err != nil {
		return "", err
	}
	return t.ID, nil
}

func writeDependencies(tx *sql.Tx, id string, deps []string) error {
	if _, err := tx.Exec(`DELETE FROM task_dependencies WHERE task_id = ?`, id); err != nil {
		return fmt.Errorf("clear dependencies of %q: %w", id, err)
	}
	for i, dep := range deps {
		dep = gantt.NormalizeID(dep)
		if dep == "" || dep == id {
			continue
		}
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO task_dependencies (task_id, depends_on, ord) VALUES (?, ?, ?)`,
			id, dep, i,
		); err != nil {
			return fmt.Errorf("insert dependency %q -> %q: %w", dep, id, err)
		}
	}
	return nil
}

func scanTask(scan func(...any) error) (Task, error) {
	var t Task
	var createdAt, updatedAt string
	if err := scan(&t.ID, &t.Name, &t.Start, &t.End, &t.Duration, &t.Progress, &t.CustomClass, &t.Position, &createdAt, &updatedAt); err != nil {
		return t, err
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return t, nil
}

func (s *Store) GetTask(id string) (*Task, error) {
	t, err := scanTask(s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id).Scan)
	if err != nil {
		return nil, fmt.Errorf("get task %q: %w", id, err)
	}
	deps, err := s.dependencies()
	if err != nil {
		return nil, err
	}
	t.Dependencies = deps[t.ID]
	return &t, nil
}

// ListTasks returns every task in display order.
func (s *Store) ListTasks() ([]Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskColumns + ` FROM tasks ORDER BY position, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	deps, err := s.dependencies()
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].Dependencies = deps[tasks[i].ID]
	}
	return tasks, nil
}

func (s *Store) dependencies() (map[string][]string, error) {
	rows, err := s.db.Query(`SELECT task_id, depends_on FROM task_dependencies ORDER BY task_id, ord`)
	if err != nil {
		return nil, fmt.Errorf("list dependencies: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var id, dep string
		if err := rows.Scan(&id, &dep); err != nil {
			return nil, err
		}
		out[id] = append(out[id], dep)
	}
	return out, rows.Err()
}

// UpdateTask rewrites every editable field of t.
func (s *Store) UpdateTask(t Task) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := tx.Exec(
		`UPDATE tasks SET name = ?, start_date = ?, end_date = ?, duration = ?, progress = ?, custom_class = ?, updated_at = ? WHERE id = ?`,
		t.Name, t.Start, t.End, t.Duration, t.Progress, t.CustomClass, now, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task %q: %w", t.ID, err)
	}
	if err := mustAffect(res, t.ID); err != nil {
		return err
	}
	if err := writeDependencies(tx, t.ID, t.Dependencies); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateTaskDates stores new dates after a drag. The end replaces any
// duration the task was entered with.
func (s *Store) UpdateTaskDates(id string, start, end time.Time) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`UPDATE tasks SET start_date = ?, end_date = ?, duration = '', updated_at = ? WHERE id = ?`,
		dates.Canonical(start), dates.Canonical(end), now, id,
	)
	if err != nil {
		return fmt.Errorf("update dates of %q: %w", id, err)
	}
	return mustAffect(res, id)
}

func (s *Store) UpdateTaskProgress(id string, progress int) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`UPDATE tasks SET progress = ?, updated_at = ? WHERE id = ?`, progress, now, id,
	)
	if err != nil {
		return fmt.Errorf("update progress of %q: %w", id, err)
	}
	return mustAffect(res, id)
}

// DeleteTask removes a task and drops it from its dependents' lists.
func (s *Store) DeleteTask(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %q: %w", id, err)
	}
	if err := mustAffect(res, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM task_dependencies WHERE depends_on = ?`, id); err != nil {
		return fmt.Errorf("delete dependents of %q: %w", id, err)
	}
	return tx.Commit()
}

// ImportTasks replaces or appends tasks in one transaction, keeping the
// given order.
func (s *Store) ImportTasks(tasks []Task) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var base int
	if err := tx.QueryRow(`SELECT COALESCE(MAX(position) + 1, 0) FROM tasks`).Scan(&base); err != nil {
		return fmt.Errorf("next position: %w", err)
	}
	for i, t := range tasks {
		if id := gantt.NormalizeID(t.ID); id != "" {
			if _, err := tx.Exec(`DELETE FROM tasks WHERE id = ?`, id); err != nil {
				return fmt.Errorf("replace task %q: %w", id, err)
			}
		}
		if _, err := insertTask(tx, t, base+i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) CountTasks() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func mustAffect(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("task %q: %w", id, sql.ErrNoRows)
	}
	return nil
}
