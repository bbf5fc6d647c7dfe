package draft

import "fmt"

// DiffCollaborators returns the IDs present only in current (add) and only
// in original (remove), each in the order of its source list.
func DiffCollaborators(original, current []int) (add, remove []int) {
	inOriginal := make(map[int]bool, len(original))
	for _, id := range original {
		inOriginal[id] = true
	}
	inCurrent := make(map[int]bool, len(current))
	for _, id := range current {
		if !inCurrent[id] && !inOriginal[id] {
			add = append(add, id)
		}
		inCurrent[id] = true
	}
	seen := make(map[int]bool, len(original))
	for _, id := range original {
		if !inCurrent[id] && !seen[id] {
			remove = append(remove, id)
		}
		seen[id] = true
	}
	return add, remove
}

// SetCollaborators replaces the collaborator list. Duplicates are dropped.
func (b *Builder) SetCollaborators(ids []int) {
	_ = b.edit(func() error {
		b.doc.Collaborators = appendUnique(nil, ids...)
		return nil
	})
}

// AddCollaborators appends IDs not already in the list.
func (b *Builder) AddCollaborators(ids ...int) {
	_ = b.edit(func() error {
		b.doc.Collaborators = appendUnique(b.doc.Collaborators, ids...)
		return nil
	})
}

func (b *Builder) RemoveCollaborator(i int) error {
	return b.edit(func() error {
		if i < 0 || i >= len(b.doc.Collaborators) {
			return fmt.Errorf("colaborador %d: %w", i+1, ErrPosition)
		}
		b.doc.Collaborators = append(b.doc.Collaborators[:i], b.doc.Collaborators[i+1:]...)
		return nil
	})
}

func appendUnique(dst []int, ids ...int) []int {
	seen := make(map[int]bool, len(dst)+len(ids))
	for _, id := range dst {
		seen[id] = true
	}
	for _, id := range ids {
		if !seen[id] {
			dst = append(dst, id)
			seen[id] = true
		}
	}
	return dst
}
