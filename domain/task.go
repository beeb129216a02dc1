package domain

import "time"

// TitleMaxLength bounds task titles.
const TitleMaxLength = 100

// Task represents a to-do item owned by exactly one account.
type Task struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Complete  bool      `json:"complete"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Complete
}

// TaskList is an owner's tasks together with their completion counts.
type TaskList struct {
	Tasks       []Task `json:"tasks"`
	Total       int    `json:"total"`
	Completed   int    `json:"completed"`
	Uncompleted int    `json:"uncompleted"`
}

// NewTaskList counts the provided tasks. Uncompleted is derived so the counts always add up.
func NewTaskList(tasks []Task) TaskList {
	if tasks == nil {
		tasks = []Task{}
	}
	list := TaskList{Tasks: tasks, Total: len(tasks)}
	for i := range tasks {
		if tasks[i].IsCompleted() {
			list.Completed++
		}
	}
	list.Uncompleted = list.Total - list.Completed
	return list
}
