package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/genzes/internal/models"
	"github.com/dmitrijs2005/genzes/internal/query"
)

// Profile prints the profile of args[0], or of the signed-in user.
func (a *App) Profile(ctx context.Context, args []string) error {
	var id string
	if len(args) > 0 {
		id = args[0]
	} else {
		s, err := a.requireSession()
		if err != nil {
			return err
		}
		id = s.User.ID
	}

	res, err := a.data.From(query.TableProfiles).Select().Eq("id", id).Single(ctx)
	if err != nil {
		return err
	}
	if res.Error != nil {
		if res.Error.Code == models.CodeNoRows {
			return fmt.Errorf("profile %s not found", id)
		}
		return res.Error
	}

	var p models.Profile
	if err := query.Decode(res.Data, &p); err != nil {
		return err
	}
	a.printProfile(p)
	return nil
}

func (a *App) printProfile(p models.Profile) {
	fmt.Fprintf(a.out, "ID:        %s\n", p.ID)
	fmt.Fprintf(a.out, "Username:  %s\n", p.Username)
	fmt.Fprintf(a.out, "Full name: %s\n", p.FullName)
	if p.Bio != "" {
		fmt.Fprintf(a.out, "Bio:       %s\n", p.Bio)
	}
	if p.AvatarURL != nil {
		fmt.Fprintf(a.out, "Avatar:    %s\n", *p.AvatarURL)
	}
	if len(p.Links) > 0 {
		fmt.Fprintf(a.out, "Links:     %s\n", strings.Join(p.Links, ", "))
	}
	if p.IsPrivate {
		fmt.Fprintln(a.out, "Private:   yes")
	}
}

// Update edits the signed-in user's profile. Empty answers keep the
// current value.
func (a *App) Update(ctx context.Context) error {
	s, err := a.requireSession()
	if err != nil {
		return err
	}

	rec := query.Record{}
	for _, f := range []struct{ column, prompt string }{
		{"username", "Username (empty to keep)"},
		{"full_name", "Full name (empty to keep)"},
	} {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		if v != "" {
			rec[f.column] = v
		}
	}

	bio, err := GetMultiline(a.reader, "Bio (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if bio != "" {
		rec["bio"] = bio
	}

	links, err := GetList(a.reader, "Links, comma separated (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if len(links) > 0 {
		rec["links"] = links
	}

	if len(rec) == 0 {
		fmt.Fprintln(a.out, "Nothing to update")
		return nil
	}

	res, err := a.data.From(query.TableProfiles).Update(rec).Eq("id", s.User.ID).Execute(ctx)
	if err != nil {
		return err
	}
	if res.Error != nil {
		return res.Error
	}
	if len(res.Data) == 0 {
		return fmt.Errorf("profile %s not found", s.User.ID)
	}

	fmt.Fprintln(a.out, "Profile updated")
	return nil
}

// Avatar uploads the image at args[0] as the signed-in user's avatar.
func (a *App) Avatar(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: avatar <path>")
	}
	s, err := a.requireSession()
	if err != nil {
		return err
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	url, err := a.data.UploadAvatar(ctx, s.User.ID, args[0], content)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Avatar set: %s\n", url)
	return nil
}
