package session

import (
	"fmt"

	"github.com/mmynk/fairshare/internal/models"
)

func (s *Session) defaultName(index int) string {
	if index == 0 {
		return s.opts.FirstPersonName
	}
	return fmt.Sprintf("%s %d", s.opts.PersonNamePrefix, index+1)
}

// SetPeopleCount grows the registry with default-named people or truncates it
// from the tail. Removed people lose their assignments and overrides.
func (s *Session) SetPeopleCount(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", models.ErrInvalidPeopleCount, n)
	}
	return s.update(func(st *state) error {
		if n >= len(st.people) {
			for i := len(st.people); i < n; i++ {
				st.people = append(st.people, models.Person{
					ID:          s.opts.NewID(),
					Name:        s.defaultName(i),
					AvatarColor: models.AvatarColorAt(i),
				})
			}
			return nil
		}

		for _, p := range st.people[n:] {
			delete(st.overrides, p.ID)
			for i := range st.items {
				st.items[i].Assignments.Remove(p.ID)
			}
		}
		st.people = st.people[:n]
		return nil
	})
}

// RenamePerson changes a person's display name in place.
func (s *Session) RenamePerson(id, name string) error {
	return s.update(func(st *state) error {
		i := st.personIndex(id)
		if i < 0 {
			return fmt.Errorf("%w: %s", models.ErrPersonNotFound, id)
		}
		st.people[i].Name = name
		return nil
	})
}

// ResetAllNames restores the default naming scheme for everyone.
func (s *Session) ResetAllNames() {
	_ = s.update(func(st *state) error {
		for i := range st.people {
			st.people[i].Name = s.defaultName(i)
		}
		return nil
	})
}
