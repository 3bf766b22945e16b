package taskclient

// Pure transitions over task lists. The Controller composes these under its
// lock; keeping them free of transport and locking makes them testable in
// isolation.

func cloneTasks(list []Task) []Task {
	out := make([]Task, len(list))
	copy(out, list)
	return out
}

// applyPatch returns a new list with the patch applied to the matching task.
// The untouched fields keep their optimistic (local) values until the server
// response replaces the whole entry.
func applyPatch(list []Task, id string, patch TaskPatch) []Task {
	out := cloneTasks(list)
	for i := range out {
		if out[i].ID != id {
			continue
		}
		if patch.Title != nil {
			out[i].Title = *patch.Title
		}
		if patch.Description != nil {
			out[i].Description = *patch.Description
		}
		if patch.Priority != nil {
			out[i].Priority = *patch.Priority
		}
		if patch.Status != nil {
			out[i].Status = *patch.Status
		}
		// Deadline strings are left to the server: the optimistic guess keeps
		// the old value and the authoritative merge overwrites it.
		break
	}
	return out
}

// replaceByID returns a new list with the server's task substituted for the
// local entry with the same id. The server response wins over the optimistic
// guess. A task unknown locally is ignored.
func replaceByID(list []Task, t Task) []Task {
	out := cloneTasks(list)
	for i := range out {
		if out[i].ID == t.ID {
			out[i] = t
			break
		}
	}
	return out
}

// removeByID returns a new list without the matching task.
func removeByID(list []Task, id string) []Task {
	out := make([]Task, 0, len(list))
	for _, t := range list {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}
