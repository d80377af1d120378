package localstore

import (
	"context"
	"sort"
	"strings"

	"github.com/dmitrijs2005/genzes/internal/common"
	"github.com/dmitrijs2005/genzes/internal/models"
)

// GetProfile returns the profile of userID, or nil when there is none.
func (s *Store) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.profiles(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// UpdateProfile merges upd into the profile of userID and stamps its update
// time.
func (s *Store) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.profiles(ctx)
	if err != nil {
		return models.Profile{}, err
	}
	p, ok := profiles[userID]
	if !ok {
		return models.Profile{}, common.ErrProfileNotFound
	}
	upd.Apply(&p, s.clock())
	profiles[userID] = p

	if err := s.save(ctx, common.ProfilesKey, profiles); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

// SearchUsers returns the profiles whose username or full name contains q,
// ignoring case, oldest first.
func (s *Store) SearchUsers(ctx context.Context, q string) ([]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.profiles(ctx)
	if err != nil {
		return nil, err
	}
	q = strings.ToLower(q)

	out := []models.Profile{}
	for _, p := range profiles {
		if strings.Contains(strings.ToLower(p.Username), q) || strings.Contains(strings.ToLower(p.FullName), q) {
			out = append(out, p)
		}
	}
	sortProfiles(out)
	return out, nil
}

func sortProfiles(ps []models.Profile) {
	sort.Slice(ps, func(i, j int) bool {
		if !ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].CreatedAt.Before(ps[j].CreatedAt)
		}
		return ps[i].ID < ps[j].ID
	})
}

// SendMessage appends a message from senderID to receiverID.
func (s *Store) SendMessage(ctx context.Context, senderID, receiverID, content string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, err := s.messages(ctx)
	if err != nil {
		return models.Message{}, err
	}
	now := s.clock()
	m := models.Message{
		ID:         newID("msg", now),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  now,
	}
	msgs = append(msgs, m)

	if err := s.save(ctx, common.MessagesKey, msgs); err != nil {
		return models.Message{}, err
	}
	return m, nil
}

// GetMessages returns the conversation between a and b in both directions,
// oldest first. Messages with equal timestamps keep their insertion order.
func (s *Store) GetMessages(ctx context.Context, a, b string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, err := s.messages(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Message{}
	for _, m := range msgs {
		if m.Between(a, b) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
