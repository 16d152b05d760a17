package media

import (
	"io"

	storage "github.com/supabase-community/storage-go"
)

// SupabaseBucket is a Bucket backed by a Supabase Storage bucket.
type SupabaseBucket struct {
	client *storage.Client
	name   string
}

// NewSupabaseBucket returns a Bucket for the named bucket.
func NewSupabaseBucket(client *storage.Client, name string) *SupabaseBucket {
	return &SupabaseBucket{client: client, name: name}
}

func (b *SupabaseBucket) Put(objectPath string, body io.Reader, contentType string) error {
	cacheControl := "3600"
	upsert := false
	_, err := b.client.UploadFile(b.name, objectPath, body, storage.FileOptions{
		ContentType:  &contentType,
		CacheControl: &cacheControl,
		Upsert:       &upsert,
	})
	return err
}

func (b *SupabaseBucket) Remove(objectPaths []string) error {
	_, err := b.client.RemoveFile(b.name, objectPaths)
	return err
}

func (b *SupabaseBucket) PublicURL(objectPath string) string {
	return b.client.GetPublicUrl(b.name, objectPath).SignedURL
}
