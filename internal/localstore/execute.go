package localstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/genzes/internal/common"
	"github.com/dmitrijs2005/genzes/internal/models"
	"github.com/dmitrijs2005/genzes/internal/query"
)

// Execute evaluates a table query against the profiles and messages tables.
// Unknown tables yield no rows. Rejected requests are reported in
// Result.Error; the returned error is reserved for storage failures.
func (s *Store) Execute(ctx context.Context, req query.Request) (query.Result, error) {
	switch req.Table {
	case query.TableProfiles:
		return s.executeProfiles(ctx, req)
	case query.TableMessages:
		return s.executeMessages(ctx, req)
	default:
		return query.Result{Data: []query.Record{}}, nil
	}
}

func invalid(format string, args ...any) query.Result {
	return query.Result{Error: &models.APIError{Code: models.CodeInvalidRequest, Message: fmt.Sprintf(format, args...)}}
}

func (s *Store) executeProfiles(ctx context.Context, req query.Request) (query.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.profiles(ctx)
	if err != nil {
		return query.Result{}, err
	}

	switch req.Operation {
	case query.OpSelect:
		ps := make([]models.Profile, 0, len(profiles))
		for _, p := range profiles {
			ps = append(ps, p)
		}
		sortProfiles(ps)
		return selectRows(ps, req)

	case query.OpInsert:
		var p models.Profile
		if err := query.Decode(req.Record, &p); err != nil {
			return invalid("profiles: %v", err), nil
		}
		if p.ID == "" {
			return invalid("profiles: id is required"), nil
		}
		p.CreatedAt = s.clock()
		profiles[p.ID] = p
		if err := s.save(ctx, common.ProfilesKey, profiles); err != nil {
			return query.Result{}, err
		}
		return rows(p)

	case query.OpUpdate:
		for col := range req.Record {
			if !profileColumns[col] {
				return invalid("profiles: unknown column %q", col), nil
			}
		}
		now := s.clock()
		var updated []models.Profile
		for id, p := range profiles {
			rec, err := query.ToRecord(p)
			if err != nil {
				return query.Result{}, err
			}
			if !query.Match(rec, req.Filters) {
				continue
			}
			merged, err := mergeProfile(rec, req.Record, now)
			if err != nil {
				return invalid("profiles: %v", err), nil
			}
			merged.ID = id
			profiles[id] = merged
			updated = append(updated, merged)
		}
		if len(updated) > 0 {
			if err := s.save(ctx, common.ProfilesKey, profiles); err != nil {
				return query.Result{}, err
			}
		}
		sortProfiles(updated)
		return rows(updated...)

	default:
		return invalid("profiles: unsupported operation %q", req.Operation), nil
	}
}

// profileColumns are the columns an update may assign.
var profileColumns = func() map[string]bool {
	rec, _ := query.ToRecord(models.Profile{UpdatedAt: &time.Time{}})
	cols := make(map[string]bool, len(rec))
	for c := range rec {
		cols[c] = true
	}
	return cols
}()

// mergeProfile assigns every key of patch onto rec, explicit nulls included,
// and decodes the result. The id is restored by the caller.
func mergeProfile(rec, patch query.Record, now time.Time) (models.Profile, error) {
	for k, v := range patch {
		rec[k] = v
	}
	rec["updated_at"] = now
	var p models.Profile
	if err := query.Decode(rec, &p); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

func (s *Store) executeMessages(ctx context.Context, req query.Request) (query.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, err := s.messages(ctx)
	if err != nil {
		return query.Result{}, err
	}

	switch req.Operation {
	case query.OpSelect:
		return selectRows(msgs, req)

	case query.OpInsert:
		var m models.Message
		if err := query.Decode(req.Record, &m); err != nil {
			return invalid("messages: %v", err), nil
		}
		if m.SenderID == "" || m.ReceiverID == "" {
			return invalid("messages: sender_id and receiver_id are required"), nil
		}
		now := s.clock()
		m.ID = newID("msg", now)
		m.CreatedAt = now
		msgs = append(msgs, m)
		if err := s.save(ctx, common.MessagesKey, msgs); err != nil {
			return query.Result{}, err
		}
		return rows(m)

	default:
		return invalid("messages: unsupported operation %q", req.Operation), nil
	}
}

// selectRows filters items in order and applies the projection.
func selectRows[T any](items []T, req query.Request) (query.Result, error) {
	out := []query.Record{}
	for _, it := range items {
		rec, err := query.ToRecord(it)
		if err != nil {
			return query.Result{}, err
		}
		if query.Match(rec, req.Filters) {
			out = append(out, query.Project(rec, req.Columns))
		}
	}
	return query.Result{Data: out}, nil
}

func rows[T any](items ...T) (query.Result, error) {
	out := make([]query.Record, 0, len(items))
	for _, it := range items {
		rec, err := query.ToRecord(it)
		if err != nil {
			return query.Result{}, err
		}
		out = append(out, rec)
	}
	return query.Result{Data: out}, nil
}
