package reconcile

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/agentstation/catalogbridge/internal/legacy"
	"github.com/agentstation/catalogbridge/internal/target"
	"github.com/agentstation/catalogbridge/pkg/constants"
	"github.com/agentstation/catalogbridge/pkg/errors"
	"github.com/agentstation/catalogbridge/pkg/logging"
)

// MediaAction tells whether an image produced a new asset or reused one.
type MediaAction string

// Media actions, also used as metric labels.
const (
	MediaCreated MediaAction = "created"
	MediaReused  MediaAction = "reused"
	MediaFailed  MediaAction = "failed"
	MediaSkipped MediaAction = "skipped"
)

// MediaDeduplicator maps legacy media onto target assets keyed by
// (file name, extension), so an image shared by many products or seen
// again on a later run is uploaded once.
type MediaDeduplicator struct {
	api    MediaAPI
	origin string
}

// NewMediaDeduplicator creates a deduplicator resolving relative legacy
// paths against origin.
func NewMediaDeduplicator(api MediaAPI, origin string) *MediaDeduplicator {
	return &MediaDeduplicator{api: api, origin: origin}
}

// Sync returns the target media id for m. An existing asset with the same
// file name and extension only gets its alt text refreshed; otherwise an
// empty shell in folderID is adopted, or a new one created, and the target
// fetches the binary into it.
// index is the image's position in the source, used for unnamed media.
func (d *MediaDeduplicator) Sync(ctx context.Context, m *legacy.Media, index int, folderID string) (string, MediaAction, error) {
	sourceURL := ResolveMediaURL(d.origin, m.Path)
	fileName, extension := DeriveFileName(m, index)
	logger := logging.FromContext(ctx).With().
		Str("file_name", fileName+"."+extension).
		Logger()

	existing, err := d.api.FindMedia(ctx, fileName, extension)
	switch {
	case err == nil:
		if err := d.api.UpdateMediaAlt(ctx, existing.ID, m.Description); err != nil {
			return "", MediaFailed, &errors.MediaError{FileName: fileName + "." + extension, SourceURL: sourceURL, Err: err}
		}
		logger.Debug().Str("media_id", existing.ID).Msg("Reusing existing media")
		return existing.ID, MediaReused, nil
	case !errors.IsNotFound(err):
		return "", MediaFailed, &errors.MediaError{FileName: fileName + "." + extension, SourceURL: sourceURL, Err: err}
	}

	id, err := d.shell(ctx, m, folderID)
	if err != nil {
		return "", MediaFailed, &errors.MediaError{FileName: fileName + "." + extension, SourceURL: sourceURL, Err: err}
	}
	if err := d.api.UploadFromURL(ctx, id, fileName, extension, sourceURL); err != nil {
		return "", MediaFailed, &errors.MediaError{FileName: fileName + "." + extension, SourceURL: sourceURL, Err: err}
	}

	logger.Debug().Str("media_id", id).Str("url", sourceURL).Msg("Uploaded media")
	return id, MediaCreated, nil
}

// shell returns a media record to upload into: an empty shell already in the
// folder if a previous upload failed, otherwise a freshly created one.
func (d *MediaDeduplicator) shell(ctx context.Context, m *legacy.Media, folderID string) (string, error) {
	empty, err := d.api.FindMediaShell(ctx, folderID)
	switch {
	case err == nil:
		if err := d.api.UpdateMediaAlt(ctx, empty.ID, m.Description); err != nil {
			return "", err
		}
		logging.FromContext(ctx).Debug().Str("media_id", empty.ID).Msg("Adopting empty media shell")
		return empty.ID, nil
	case !errors.IsNotFound(err):
		return "", err
	}

	id := target.NewID()
	if err := d.api.CreateMedia(ctx, target.MediaCreate{
		ID:            id,
		MediaFolderID: folderID,
		Alt:           m.Description,
	}); err != nil {
		return "", err
	}
	return id, nil
}

// ResolveMediaURL returns p unchanged when it is an absolute http(s) URL and
// otherwise joins it onto origin.
func ResolveMediaURL(origin, p string) string {
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	return strings.TrimRight(origin, "/") + "/" + strings.TrimLeft(p, "/")
}

// imageExtensions are the suffixes stripped from declared media names.
var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true, "svg": true,
	"bmp": true, "tif": true, "tiff": true, "avif": true, "ico": true,
}

// DeriveFileName returns the target file name (without extension) and the
// extension for a legacy media record. The extension comes from the stored
// path, then from the record, then defaults to jpg. A name ending in the
// extension or in any image extension has it stripped; other dotted suffixes
// stay. An empty name becomes image_{index}.
func DeriveFileName(m *legacy.Media, index int) (string, string) {
	extension := pathExtension(m.Path)
	if extension == "" {
		extension = strings.TrimPrefix(m.Extension, ".")
	}
	if extension == "" {
		extension = constants.DefaultImageExtension
	}

	name := strings.TrimSpace(m.Name)
	if own := path.Ext(name); len(own) > 1 && len(own) < len(name) {
		ext := strings.ToLower(own[1:])
		if imageExtensions[ext] || ext == strings.ToLower(extension) {
			name = name[:len(name)-len(own)]
		}
	}
	if name == "" {
		name = fmt.Sprintf("image_%d", index)
	}
	return name, extension
}

// pathExtension returns the extension of the last path segment, without the dot.
func pathExtension(p string) string {
	if u, err := url.Parse(p); err == nil {
		p = u.Path
	}
	return strings.TrimPrefix(path.Ext(p), ".")
}
