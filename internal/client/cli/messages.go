package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/genzes/internal/models"
	"github.com/dmitrijs2005/genzes/internal/query"
)

// Search lists users whose username or full name contains the query,
// ignoring case. Profiles come from the remote when it answers and from the
// local store otherwise.
func (a *App) Search(ctx context.Context, args []string) error {
	q := strings.ToLower(strings.Join(args, " "))

	res, err := a.data.From(query.TableProfiles).Select("id, username, full_name").Execute(ctx)
	if err != nil {
		return err
	}
	if res.Error != nil {
		return res.Error
	}

	found := 0
	for _, rec := range res.Data {
		var p models.Profile
		if err := query.Decode(rec, &p); err != nil {
			return err
		}
		if !strings.Contains(strings.ToLower(p.Username), q) && !strings.Contains(strings.ToLower(p.FullName), q) {
			continue
		}
		fmt.Fprintf(a.out, "%s\t%s\t%s\n", p.ID, p.Username, p.FullName)
		found++
	}
	if found == 0 {
		fmt.Fprintln(a.out, "No users found")
	}
	return nil
}

// Send stores a message from the signed-in user to args[0]. The remote
// takes it when reachable; otherwise it is kept in the local store.
func (a *App) Send(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: send <user-id> <text>")
	}
	s, err := a.requireSession()
	if err != nil {
		return err
	}
	content := strings.Join(args[1:], " ")

	res, err := a.data.From(query.TableMessages).Insert(ctx, query.Record{
		"sender_id":   s.User.ID,
		"receiver_id": args[0],
		"content":     content,
	})
	if err != nil {
		return err
	}
	if res.Error != nil {
		return res.Error
	}
	if len(res.Data) > 0 {
		var m models.Message
		if err := query.Decode(res.Data[0], &m); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Sent %s\n", m.ID)
		return nil
	}

	// the local query path does not serve messages
	m, err := a.dir.SendMessage(ctx, s.User.ID, args[0], content)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Sent %s (local)\n", m.ID)
	return nil
}

// Messages prints the conversation with args[0], oldest first. Remote and
// locally stored messages are shown together.
func (a *App) Messages(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: messages <user-id>")
	}
	s, err := a.requireSession()
	if err != nil {
		return err
	}
	me, other := s.User.ID, args[0]

	msgs, err := a.dir.GetMessages(ctx, me, other)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(msgs))
	for _, m := range msgs {
		seen[m.ID] = true
	}
	for _, pair := range [][2]string{{me, other}, {other, me}} {
		remote, err := a.remoteMessages(ctx, pair[0], pair[1])
		if err != nil {
			return err
		}
		for _, m := range remote {
			if !seen[m.ID] {
				seen[m.ID] = true
				msgs = append(msgs, m)
			}
		}
	}
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })

	if len(msgs) == 0 {
		fmt.Fprintln(a.out, "No messages")
		return nil
	}
	for _, m := range msgs {
		who := "them"
		if m.SenderID == me {
			who = "me"
		}
		fmt.Fprintf(a.out, "[%s] %s: %s\n", m.CreatedAt.Format("2006-01-02 15:04"), who, m.Content)
	}
	return nil
}

func (a *App) remoteMessages(ctx context.Context, from, to string) ([]models.Message, error) {
	res, err := a.data.From(query.TableMessages).Select().Eq("sender_id", from).Eq("receiver_id", to).Execute(ctx)
	if err != nil {
		return nil, err
	}
	if res.Error != nil {
		return nil, res.Error
	}
	out := make([]models.Message, 0, len(res.Data))
	for _, rec := range res.Data {
		var m models.Message
		if err := query.Decode(rec, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
