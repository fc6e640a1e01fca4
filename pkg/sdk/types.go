package sdk

// Task is one row of the list as the server reports it. Text may carry the
// amount markup; Plain is the same text without it.
type Task struct {
	Key       string `json:"key"`
	Position  int    `json:"position"`
	Text      string `json:"text"`
	Plain     string `json:"plain"`
	Completed bool   `json:"completed"`
}

// TaskList is the list in display order with the current premium amount.
type TaskList struct {
	Tasks  []Task `json:"tasks"`
	Amount int    `json:"amount"`
}

// Find returns the task whose key or plain text equals ref.
func (l *TaskList) Find(ref string) (Task, bool) {
	for _, t := range l.Tasks {
		if t.Key == ref || t.Plain == ref {
			return t, true
		}
	}
	return Task{}, false
}

// SchemaInfo describes the tool schema the server speaks.
type SchemaInfo struct {
	SchemaVersion string   `json:"schema_version"`
	ServerVersion string   `json:"server_version"`
	Tools         []string `json:"tools"`
}
