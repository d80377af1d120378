package fallback

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"path/filepath"

	"github.com/dmitrijs2005/genzes/internal/filex"
	"github.com/dmitrijs2005/genzes/internal/query"
)

// UploadAvatar stores content as the avatar of userID and points the
// profile's avatar_url at it. The remote path uploads to a presigned URL;
// the local path writes the file under the avatar directory and uses a
// file:// URL.
func (c *Client) UploadAvatar(ctx context.Context, userID, fileName string, content []byte) (string, error) {
	name := filepath.Base(fileName)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid avatar file name %q", fileName)
	}
	contentType := mime.TypeByExtension(filepath.Ext(name))

	avatarURL, err := c.uploadRemote(ctx, userID, name, contentType, content)
	if err != nil {
		c.warn(ctx, "upload_avatar", err)
	}
	if avatarURL == "" {
		if avatarURL, err = c.storeLocal(userID, name, content); err != nil {
			return "", err
		}
	}

	res, err := c.From(query.TableProfiles).
		Update(query.Record{"avatar_url": avatarURL}).
		Eq("id", userID).
		Execute(ctx)
	if err != nil {
		return "", err
	}
	if res.Error != nil {
		return "", res.Error
	}
	return avatarURL, nil
}

// uploadRemote returns "" without error when no remote can take the upload.
func (c *Client) uploadRemote(ctx context.Context, userID, name, contentType string, content []byte) (string, error) {
	up, ok := c.remote.(AvatarUploader)
	if !ok {
		return "", nil
	}
	target, err := up.CreateAvatarUpload(ctx, userID+"/"+name, contentType)
	if err != nil {
		return "", err
	}
	if err := c.upload(ctx, target.UploadURL, content, contentType); err != nil {
		return "", err
	}
	return target.PublicURL, nil
}

func (c *Client) storeLocal(userID, name string, content []byte) (string, error) {
	dir, err := filex.EnsureDir(filepath.Join(c.avatarDir, filepath.Base(userID)))
	if err != nil {
		return "", fmt.Errorf("avatar dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := filex.WriteFileAtomic(path, content, 0o644); err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String(), nil
}
