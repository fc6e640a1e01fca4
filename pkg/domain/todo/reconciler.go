package todo

// Reconciler is a domain service that merges a template with the completion
// and removal state the user has already recorded.
type Reconciler struct{}

// NewReconciler creates a new Reconciler instance.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Reconcile produces the authoritative task list.
//
// Every template entry is rendered with amount, joined to persisted by
// plain-text key to carry over completion, and dropped when its key is in
// removed. Output order follows the template. Neither removed nor persisted
// is modified; persisting the result is up to the caller.
func (r *Reconciler) Reconcile(template Template, persisted []Task, removed RemovalSet, amount int) []Task {
	completed := make(map[string]bool, len(persisted))
	for _, t := range persisted {
		key := t.Key()
		if _, seen := completed[key]; seen {
			continue // first match wins
		}
		completed[key] = t.Completed
	}

	out := make([]Task, 0, len(template.Tasks))
	for _, tt := range template.Tasks {
		text := RenderText(tt.Text, amount)
		key := PlainText(text)
		if _, gone := removed[key]; gone {
			continue
		}
		out = append(out, Task{Text: text, Completed: completed[key]})
	}
	return out
}
