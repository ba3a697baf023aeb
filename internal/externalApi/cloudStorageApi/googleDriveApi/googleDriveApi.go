package googleDriveApi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"time"

	"github.com/KotFed0t/invest_tracker/utils"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const downloadLinkTemplate = "https://drive.google.com/file/d/%s/view"

type GoogleDriveApi struct {
	srv     *drive.Service
	fileTTL time.Duration
	clock   func() time.Time
}

// New connects to Drive. Extra options override the credentials file, which
// tests use to point the client at a local server.
func New(ctx context.Context, credentialsFile string, fileTTL time.Duration, opts ...option.ClientOption) (*GoogleDriveApi, error) {
	if len(opts) == 0 {
		opts = []option.ClientOption{option.WithCredentialsFile(credentialsFile)}
	}
	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive.NewService: %w", err)
	}
	return &GoogleDriveApi{srv: srv, fileTTL: fileTTL, clock: time.Now}, nil
}

// UploadFile stores the file and shares it by link.
func (a *GoogleDriveApi) UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "GoogleDriveApi.UploadFile"

	slog.Debug("UploadFile start", slog.String("rqID", rqID), slog.String("op", op), slog.String("filename", filename))

	fileMeta := &drive.File{
		Name:     filename,
		MimeType: mime.TypeByExtension(filepath.Ext(filename)),
	}

	uploaded, err := a.srv.Files.Create(fileMeta).Media(reader).Context(ctx).Do()
	if err != nil {
		slog.Error("upload to google drive failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}

	perm := &drive.Permission{Type: "anyone", Role: "reader"}
	if _, err = a.srv.Permissions.Create(uploaded.Id, perm).Context(ctx).Do(); err != nil {
		slog.Error("sharing uploaded file failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", fmt.Errorf("share %s: %w", uploaded.Id, err)
	}

	slog.Debug("UploadFile completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("fileID", uploaded.Id))

	return fmt.Sprintf(downloadLinkTemplate, uploaded.Id), nil
}

// DeleteOldFiles removes uploaded reports older than the configured TTL and
// returns how many were deleted.
func (a *GoogleDriveApi) DeleteOldFiles(ctx context.Context) (int, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "GoogleDriveApi.DeleteOldFiles"

	slog.Debug("DeleteOldFiles start", slog.String("rqID", rqID), slog.String("op", op))

	threshold := a.clock().Add(-a.fileTTL)
	var expired []string
	total := 0

	err := a.srv.Files.List().
		Fields("nextPageToken, files(id, createdTime)").
		Context(ctx).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				total++
				createdTime, err := time.Parse(time.RFC3339, f.CreatedTime)
				if err != nil {
					slog.Warn(
						"unparsable createdTime",
						slog.String("rqID", rqID),
						slog.String("op", op),
						slog.String("fileID", f.Id),
						slog.String("createdTime", f.CreatedTime),
					)
					continue
				}
				if createdTime.Before(threshold) {
					expired = append(expired, f.Id)
				}
			}
			return nil
		})
	if err != nil {
		slog.Error("listing files failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return 0, fmt.Errorf("list files: %w", err)
	}

	deleted := 0
	for _, id := range expired {
		if err := a.srv.Files.Delete(id).Context(ctx).Do(); err != nil {
			slog.Error("delete file failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("fileID", id), slog.String("err", err.Error()))
			continue
		}
		deleted++
	}

	if deleted > 0 {
		if err := a.srv.Files.EmptyTrash().Context(ctx).Do(); err != nil {
			slog.Error("empty trash failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}

	slog.Info("delete old files done", slog.String("rqID", rqID), slog.Int("deletedFiles", deleted), slog.Int("remainingFiles", total-deleted))

	return deleted, nil
}
