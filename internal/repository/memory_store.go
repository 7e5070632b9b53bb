package repository

import "context"

// MemoryStore bundles the in-memory repositories and replays the schema's
// referential actions between them.
type MemoryStore struct {
	Users     *MemoryUsersRepo
	People    *MemoryPeopleRepo
	Templates *MemoryTemplatesRepo
	Messages  *MemoryMessagesRepo
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		Users:     NewMemoryUsersRepo(),
		People:    NewMemoryPeopleRepo(),
		Templates: NewMemoryTemplatesRepo(),
		Messages:  NewMemoryMessagesRepo(),
	}
	s.Templates.onDelete = s.Messages.detachTemplate
	return s
}

// UsersRepository returns a users repository that cascades deletes into the
// user's templates and messages.
func (s *MemoryStore) UsersRepository() UsersRepository {
	return &cascadingUsers{MemoryUsersRepo: s.Users, store: s}
}

type cascadingUsers struct {
	*MemoryUsersRepo
	store *MemoryStore
}

func (c *cascadingUsers) DeleteUser(ctx context.Context, id int64) error {
	if err := c.MemoryUsersRepo.DeleteUser(ctx, id); err != nil {
		return err
	}
	c.store.Templates.deleteByOwner(id)
	c.store.Messages.deleteBySender(id)
	return nil
}
