package memory

import (
	"github.com/robertarktes/bootcamp-booking/internal/domain"
	"github.com/robertarktes/bootcamp-booking/internal/seed"
)

// NewSeededCatalog loads the fixture offerings, sessions and videos.
func NewSeededCatalog() *Catalog {
	return NewCatalog(seed.Offerings(), seed.Sessions(), seed.Videos())
}

// NewSeededStore loads the fixture accounts, enrollments, video progress and
// subscriptions.
func NewSeededStore() *Store {
	s := NewStore()
	for _, u := range seed.Users() {
		s.users[u.ID] = u
	}
	for _, e := range seed.Enrollments() {
		s.saveEnrollment(e)
	}
	for _, p := range seed.VideoProgress() {
		if s.progress[p.UserID] == nil {
			s.progress[p.UserID] = make(map[string]domain.VideoProgress)
		}
		s.progress[p.UserID][p.VideoID] = p
	}
	for _, sub := range seed.Subscriptions() {
		s.subscriptions[sub.UserID] = append(s.subscriptions[sub.UserID], sub)
	}
	return s
}
