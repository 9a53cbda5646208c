package identitymock

import (
	"context"
	"sync"

	domain "loantrack/internal/domain/identity"
)

var _ domain.Repository = (*Store)(nil)

// Store is an in-memory domain.Repository keyed by user id. Err, when set,
// is returned from every call.
type Store struct {
	mu    sync.Mutex
	users map[string]*domain.User
	seq   uint64
	Err   error
}

func NewStore(seed ...domain.User) *Store {
	s := &Store{users: map[string]*domain.User{}}
	for i := range seed {
		u := seed[i]
		s.seq++
		u.ID = s.seq
		s.users[u.UserID] = &u
	}
	return s
}

func (s *Store) Create(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, cur := range s.users {
		if cur.Email == u.Email {
			return domain.ErrEmailTaken
		}
	}
	s.seq++
	u.ID = s.seq
	cp := *u
	s.users[u.UserID] = &cp
	return nil
}

func (s *Store) GetByUserID(_ context.Context, userID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.users[userID]
	if !ok || u.DeletedAt.Valid {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.users {
		if u.Email == email && !u.DeletedAt.Valid {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *Store) List(_ context.Context) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]domain.User, 0, len(s.users))
	for seq := uint64(1); seq <= s.seq; seq++ {
		for _, u := range s.users {
			if u.ID == seq && !u.DeletedAt.Valid {
				out = append(out, *u)
			}
		}
	}
	return out, nil
}

func (s *Store) SoftDelete(_ context.Context, userID, deletedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u, ok := s.users[userID]
	if !ok || u.DeletedAt.Valid {
		return domain.ErrUserNotFound
	}
	u.DeletedAt.Valid = true
	by := deletedBy
	u.DeletedBy = &by
	return nil
}

func (s *Store) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	var n int64
	for _, u := range s.users {
		if u.Role == role && !u.DeletedAt.Valid {
			n++
		}
	}
	return n, nil
}

func (s *Store) FindByUserIDs(_ context.Context, userIDs []string) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []domain.User
	for _, id := range userIDs {
		if u, ok := s.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}
