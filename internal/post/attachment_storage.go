package post

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"

	"dikenang-service/pkg/logger"
)

const thumbnailMaxDim = 480

// BlobStore is the object-storage capability the post service needs.
// database.MinIOClient satisfies it.
type BlobStore interface {
	Put(ctx context.Context, objectName, contentType string, r io.Reader, size int64) (string, error)
	Remove(ctx context.Context, objectName string) error
}

// Upload carries one multipart file from the handler to the service.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// attachmentStore uploads attachments and generates thumbnails for
// images.
type attachmentStore struct {
	blobs BlobStore
	log   *logger.Logger
}

func newAttachmentStore(blobs BlobStore, log *logger.Logger) *attachmentStore {
	return &attachmentStore{blobs: blobs, log: log}
}

// save uploads the file and, for images, a thumbnail. The returned
// attachment is not yet persisted.
func (s *attachmentStore) save(ctx context.Context, postID string, up *Upload) (*Attachment, error) {
	data, err := io.ReadAll(up.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	kind := kindOf(up.ContentType)
	objectKey := fmt.Sprintf("posts/%s/%s%s", postID, uuid.New().String(), path.Ext(up.Filename))

	uri, err := s.blobs.Put(ctx, objectKey, up.ContentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}

	att := &Attachment{
		ID:        uuid.New().String(),
		PostID:    postID,
		Kind:      kind,
		URI:       uri,
		ObjectKey: objectKey,
	}

	if kind == "image" {
		thumbKey := objectKey + ".thumb.jpg"
		thumbURI, err := s.saveThumbnail(ctx, thumbKey, data)
		if err != nil {
			// A post without a thumbnail is still a valid post.
			s.log.Warn("failed to generate thumbnail", "post_id", postID, "error", err)
		} else {
			att.ThumbnailURI = thumbURI
			att.ThumbnailKey = thumbKey
		}
	}

	return att, nil
}

func (s *attachmentStore) saveThumbnail(ctx context.Context, objectKey string, data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := resize.Thumbnail(thumbnailMaxDim, thumbnailMaxDim, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 80}); err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return s.blobs.Put(ctx, objectKey, "image/jpeg", &buf, int64(buf.Len()))
}

// remove deletes the stored objects. Failures are logged, the caller
// has already removed the database rows.
func (s *attachmentStore) remove(ctx context.Context, att *Attachment) {
	if err := s.blobs.Remove(ctx, att.ObjectKey); err != nil {
		s.log.Warn("failed to remove attachment object", "object", att.ObjectKey, "error", err)
	}
	if att.ThumbnailKey != "" {
		if err := s.blobs.Remove(ctx, att.ThumbnailKey); err != nil {
			s.log.Warn("failed to remove thumbnail object", "object", att.ThumbnailKey, "error", err)
		}
	}
}

func kindOf(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	default:
		return "file"
	}
}
