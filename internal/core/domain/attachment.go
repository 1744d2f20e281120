package domain

import (
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// AttachmentSource is where attachment content came from: a PathSource or a BytesSource.
type AttachmentSource interface {
	isAttachmentSource()
}

// PathSource is an attachment read from the filesystem.
type PathSource struct {
	Path string
}

// BytesSource is an attachment supplied as an in-memory buffer.
type BytesSource struct {
	Data []byte
}

func (PathSource) isAttachmentSource()  {}
func (BytesSource) isAttachmentSource() {}

// Attachment is a named, typed file attachment.
// ContentBytes is encoded once at construction.
type Attachment struct {
	Source       AttachmentSource
	Name         string
	ContentType  string
	ContentBytes string
	Size         int
}

// AttachmentOptions overrides the defaults derived from a file path.
type AttachmentOptions struct {
	Name        string
	ContentType string
}

// AttachmentSpec describes an attachment arriving through an untyped boundary
// (command-line flags, tool calls). Exactly one of Path or Data must be set.
type AttachmentSpec struct {
	Path        string
	Data        []byte
	Name        string
	ContentType string
}

// NewAttachment builds an attachment from a spec, enforcing that exactly one source is given.
func NewAttachment(spec AttachmentSpec) (*Attachment, error) {
	hasPath := spec.Path != ""
	hasData := spec.Data != nil

	switch {
	case hasPath && hasData, !hasPath && !hasData:
		return nil, ErrAttachmentSource
	case hasPath:
		return NewAttachmentFromPath(spec.Path, AttachmentOptions{Name: spec.Name, ContentType: spec.ContentType})
	default:
		return NewAttachmentFromBytes(spec.Data, spec.Name, spec.ContentType)
	}
}

// NewAttachmentFromPath reads a file and builds an attachment from it.
// Name defaults to the file's base name and content type is guessed from the
// extension; a type that cannot be guessed is an error.
func NewAttachmentFromPath(path string, opts AttachmentOptions) (*Attachment, error) {
	if path == "" {
		return nil, ErrAttachmentSource
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(path)
	}

	contentType := opts.ContentType
	if contentType == "" {
		contentType = guessContentType(path)
		if contentType == "" {
			return nil, fmt.Errorf("%w: cannot guess content type of %s", ErrAttachmentContentType, path)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}

	return &Attachment{
		Source:       PathSource{Path: path},
		Name:         name,
		ContentType:  contentType,
		ContentBytes: base64.StdEncoding.EncodeToString(data),
		Size:         len(data),
	}, nil
}

// NewAttachmentFromBytes builds an attachment from a buffer.
// Name and content type are mandatory; nothing is guessed.
func NewAttachmentFromBytes(data []byte, name, contentType string) (*Attachment, error) {
	if data == nil {
		return nil, ErrAttachmentSource
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrAttachmentName
	}
	if strings.TrimSpace(contentType) == "" {
		return nil, ErrAttachmentContentType
	}

	return &Attachment{
		Source:       BytesSource{Data: data},
		Name:         name,
		ContentType:  contentType,
		ContentBytes: base64.StdEncoding.EncodeToString(data),
		Size:         len(data),
	}, nil
}

// String describes the attachment without its content.
func (a *Attachment) String() string {
	return fmt.Sprintf("Attachment(name=%s, content_type=%s, size=%d bytes)", a.Name, a.ContentType, a.Size)
}

// guessContentType maps a file extension to a bare media type ("" when unknown).
func guessContentType(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	full := mime.TypeByExtension(strings.ToLower(ext))
	if full == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(full)
	if err != nil {
		return full
	}
	return mediaType
}
