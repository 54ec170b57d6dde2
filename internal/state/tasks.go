package state

import (
	"encoding/binary"
	"encoding/hex"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/zeebo/blake3"
)

// AddTask appends a new incomplete task. Rejections leave state untouched;
// ErrTasksLocked and ErrMaxTasks are also published as notifications.
func (m *Manager) AddTask(text string) (Task, error) {
	text = strings.TrimSpace(text)

	var task Task
	err := m.run(func() ([]Notification, error) {
		switch {
		case m.tasksLocked:
			return []Notification{m.notify(KindTasksLocked)}, ErrTasksLocked
		case len(m.tasks) >= MaxTasks:
			return []Notification{m.notify(KindMaxTasks)}, ErrMaxTasks
		case text == "":
			return nil, ErrEmptyTask
		case utf8.RuneCountInString(text) > MaxTaskLength:
			return nil, ErrTaskTooLong
		}

		t := Task{ID: m.newID(), Text: text}
		updated := append(slices.Clone(m.tasks), t)
		if err := m.putJSON(keyTasks, updated); err != nil {
			return nil, wrap("add task", err)
		}
		m.tasks = updated
		task = t
		m.log.Debug("task added", "id", t.ID, "count", len(updated))
		return nil, nil
	})
	return task, err
}

// RemoveTask deletes the task with id. Removing an unknown id is a no-op.
func (m *Manager) RemoveTask(id string) error {
	return m.run(func() ([]Notification, error) {
		if m.tasksLocked {
			return []Notification{m.notify(KindTasksLocked)}, ErrTasksLocked
		}
		i := m.taskIndex(id)
		if i < 0 {
			return nil, nil
		}

		updated := slices.Delete(slices.Clone(m.tasks), i, i+1)
		if err := m.putJSON(keyTasks, updated); err != nil {
			return nil, wrap("remove task", err)
		}
		m.tasks = updated
		m.log.Debug("task removed", "id", id, "count", len(updated))
		return nil, nil
	})
}

// CompleteTask toggles the completed flag of the task with id. It is
// allowed whether or not the tasks are locked in.
func (m *Manager) CompleteTask(id string) error {
	return m.run(func() ([]Notification, error) {
		i := m.taskIndex(id)
		if i < 0 {
			return nil, ErrTaskNotFound
		}

		updated := slices.Clone(m.tasks)
		updated[i].Completed = !updated[i].Completed
		if err := m.putJSON(keyTasks, updated); err != nil {
			return nil, wrap("complete task", err)
		}
		m.tasks = updated
		m.log.Debug("task toggled", "id", id, "completed", updated[i].Completed)

		if !allCompleted(updated) {
			return nil, nil
		}
		fp := fingerprint(updated)
		if fp == m.celebrated {
			return nil, nil
		}
		m.celebrated = fp
		m.log.Info("all tasks complete", "count", len(updated))
		return []Notification{m.notify(KindAllComplete)}, nil
	})
}

// LockTasks locks the current tasks in for the day. Calling it again has
// no effect.
func (m *Manager) LockTasks() error {
	return m.run(func() ([]Notification, error) {
		if m.tasksLocked {
			return nil, nil
		}
		if err := m.putJSON(keyTasksLocked, true); err != nil {
			return nil, wrap("lock tasks", err)
		}
		m.tasksLocked = true
		m.log.Info("tasks locked in", "count", len(m.tasks))
		return []Notification{m.notify(KindTasksLockedIn)}, nil
	})
}

func (m *Manager) taskIndex(id string) int {
	return slices.IndexFunc(m.tasks, func(t Task) bool { return t.ID == id })
}

func allCompleted(tasks []Task) bool {
	if len(tasks) == 0 {
		return false
	}
	for _, t := range tasks {
		if !t.Completed {
			return false
		}
	}
	return true
}

// fingerprint identifies a set of tasks by their IDs, independent of order.
func fingerprint(tasks []Task) string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	slices.Sort(ids)
	h := blake3.New()
	for _, id := range ids {
		h.Write(binary.AppendUvarint(nil, uint64(len(id))))
		h.Write([]byte(id))
	}
	return hex.EncodeToString(h.Sum(nil))
}
