package repository

import (
	"context"
	"sync"

	"driver_dashboard/internal/model"
)

// fileUser mirrors model.User but keeps the password hash on disk.
type fileUser struct {
	ID           int    `json:"id" yaml:"id"`
	Username     string `json:"username" yaml:"username"`
	Name         string `json:"name" yaml:"name"`
	Role         string `json:"role" yaml:"role"`
	PasswordHash string `json:"password_hash,omitempty" yaml:"password_hash,omitempty"`
}

type userDocument struct {
	Users []fileUser `json:"users" yaml:"users"`
}

type fileUserRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileUserRepository reads accounts from a users.json (or .yaml) document.
func NewFileUserRepository(path string) UserRepository {
	return &fileUserRepository{path: path}
}

func (r *fileUserRepository) load() (*userDocument, error) {
	doc := &userDocument{}
	if err := readDocument(r.path, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *fileUserRepository) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}
	maxID := 0
	for _, u := range doc.Users {
		if u.Username == user.Username {
			return ErrDuplicate
		}
		if u.ID > maxID {
			maxID = u.ID
		}
	}
	user.ID = maxID + 1
	doc.Users = append(doc.Users, fileUser{
		ID:           user.ID,
		Username:     user.Username,
		Name:         user.Name,
		Role:         user.Role,
		PasswordHash: user.PasswordHash,
	})
	return writeDocument(r.path, doc)
}

func (r *fileUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.find(func(u fileUser) bool { return u.Username == username })
}

func (r *fileUserRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	return r.find(func(u fileUser) bool { return u.ID == id })
}

func (r *fileUserRepository) find(match func(fileUser) bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, u := range doc.Users {
		if match(u) {
			return &model.User{
				ID:           u.ID,
				Username:     u.Username,
				Name:         u.Name,
				Role:         u.Role,
				PasswordHash: u.PasswordHash,
			}, nil
		}
	}
	return nil, nil
}
