package badger

import "github.com/poiesic/lostfound/storage"

// Repositories bundles the repositories sharing one backend.
type Repositories struct {
	Backend       *Backend
	Items         storage.ItemRepository
	Users         storage.UserRepository
	Notifications storage.NotificationRepository
}

// OpenRepositories opens a backend at filePath and creates all repositories on it.
func OpenRepositories(filePath string, inMemory bool) (*Repositories, error) {
	backend, err := OpenBackend(filePath, inMemory)
	if err != nil {
		return nil, err
	}

	items, err := NewItemRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	users, err := NewUserRepository(backend)
	if err != nil {
		items.Close()
		backend.Close()
		return nil, err
	}

	return &Repositories{
		Backend:       backend,
		Items:         items,
		Users:         users,
		Notifications: NewNotificationRepository(backend),
	}, nil
}

// NewMemoryRepositories creates repositories over an in-memory backend.
func NewMemoryRepositories() (*Repositories, error) {
	return OpenRepositories("", true)
}

// Close releases the repositories and closes the backend.
func (r *Repositories) Close() error {
	if err := r.Notifications.Close(); err != nil {
		return err
	}
	if err := r.Users.Close(); err != nil {
		return err
	}
	if err := r.Items.Close(); err != nil {
		return err
	}
	return r.Backend.Close()
}
