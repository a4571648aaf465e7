package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/joseph-ayodele/system-prompt-generator/constants"
	"github.com/joseph-ayodele/system-prompt-generator/internal/async"
	"github.com/joseph-ayodele/system-prompt-generator/internal/common"
	"github.com/joseph-ayodele/system-prompt-generator/internal/pipeline"
	"github.com/joseph-ayodele/system-prompt-generator/internal/repository"
)

// Multipart part names accepted by POST /generate/.
const (
	PartFlow      = "flow_file"
	PartExample   = "example_file"
	PartJobDesc   = "job_desc_file"
	PartJobDetail = "job_detail_file"
)

const HeaderGenerationID = "X-Generation-ID"

type acceptedResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (s *Server) handleGenerate(c echo.Context) error {
	ctx := c.Request().Context()

	queued, err := parseAsync(c.QueryParam("async"))
	if err != nil {
		return err
	}

	dir, in, err := s.saveUploads(c)
	if err != nil {
		return err
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn("upload.cleanup_failed", "dir", dir, "error", err)
		}
	}

	if queued {
		return s.enqueue(c, in, cleanup)
	}
	defer cleanup()

	res, err := s.gen.Generate(ctx, in)
	if err != nil {
		if res.ID != uuid.Nil {
			c.Response().Header().Set(HeaderGenerationID, res.ID.String())
		}
		return err
	}

	c.Response().Header().Set(HeaderGenerationID, res.ID.String())
	return attachment(c, constants.DownloadFilename, res.Text)
}

func (s *Server) enqueue(c echo.Context, in pipeline.Inputs, cleanup func()) error {
	if s.queue == nil || s.repo == nil {
		cleanup()
		return unavailable("asynchronous generation is not enabled")
	}
	ctx := c.Request().Context()

	g, err := s.repo.Start(ctx, repository.StartParams{
		Status:            constants.StatusQueued,
		FlowFilename:      in.FlowFilename,
		ScriptFilename:    in.ScriptFilename,
		JobDescFilename:   in.JobDescFilename,
		JobDetailFilename: in.JobDetailFilename,
	})
	if err != nil {
		cleanup()
		return err
	}

	err = s.queue.Enqueue(ctx, async.Job{
		ID:          g.ID,
		Inputs:      in,
		Cleanup:     cleanup,
		SubmittedAt: time.Now(),
		RequestID:   common.RequestIDFromContext(ctx),
	})
	if err != nil {
		if ferr := s.repo.FinishFailure(ctx, g.ID, err.Error()); ferr != nil {
			s.logger.Error("generation.reject.record_failed", "generation_id", g.ID, "error", ferr)
		}
		return unavailable(err.Error())
	}

	c.Response().Header().Set(echo.HeaderLocation, "/generations/"+g.ID.String())
	c.Response().Header().Set(HeaderGenerationID, g.ID.String())
	return c.JSON(http.StatusAccepted, acceptedResponse{ID: g.ID.String(), Status: string(g.Status)})
}

func parseAsync(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, common.NewAppError("INVALID_QUERY", "async must be true or false", common.ErrInvalidInput)
	}
	return b, nil
}

// saveUploads writes the four parts into a fresh per-request directory. Each
// part gets its own subdirectory so identical client filenames cannot collide.
func (s *Server) saveUploads(c echo.Context) (string, pipeline.Inputs, error) {
	var in pipeline.Inputs

	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return "", in, common.NewAppError("INVALID_FORM", "request must be multipart/form-data", common.ErrInvalidInput)
		}
		return "", in, common.NewAppError("INVALID_FORM", "could not read multipart form", fmt.Errorf("%w: %v", common.ErrInvalidInput, err))
	}

	headers := make(map[string]*multipart.FileHeader, 4)
	for _, part := range []string{PartFlow, PartExample, PartJobDesc, PartJobDetail} {
		files := form.File[part]
		if len(files) == 0 {
			return "", in, common.NewAppError("MISSING_FILE", part+" is required", common.ErrInvalidInput)
		}
		headers[part] = files[0]
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return "", in, fmt.Errorf("create upload dir: %w", err)
	}
	dir, err := os.MkdirTemp(s.cfg.UploadDir, "req-*")
	if err != nil {
		return "", in, fmt.Errorf("create request dir: %w", err)
	}

	paths := make(map[string]string, 4)
	for part, fh := range headers {
		p, err := saveFile(dir, part, fh)
		if err != nil {
			_ = os.RemoveAll(dir)
			return "", in, err
		}
		paths[part] = p
	}

	in = pipeline.Inputs{
		FlowPath:          paths[PartFlow],
		ScriptPath:        paths[PartExample],
		JobDescPath:       paths[PartJobDesc],
		JobDetailPath:     paths[PartJobDetail],
		FlowFilename:      headers[PartFlow].Filename,
		ScriptFilename:    headers[PartExample].Filename,
		JobDescFilename:   headers[PartJobDesc].Filename,
		JobDetailFilename: headers[PartJobDetail].Filename,
	}
	s.logger.Debug("upload.saved", "dir", dir,
		"flow", in.FlowFilename, "example", in.ScriptFilename,
		"job_desc", in.JobDescFilename, "job_detail", in.JobDetailFilename)
	return dir, in, nil
}

func saveFile(dir, part string, fh *multipart.FileHeader) (string, error) {
	name := safeName(fh.Filename, part)
	if err := os.MkdirAll(filepath.Join(dir, part), 0o755); err != nil {
		return "", fmt.Errorf("create %s dir: %w", part, err)
	}
	dst := filepath.Join(dir, part, name)

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", part, err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return "", fmt.Errorf("save %s: %w", part, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("save %s: %w", part, err)
	}
	return dst, nil
}

// safeName strips any directory components from a client filename.
func safeName(filename, fallback string) string {
	name := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if name == "." || name == "/" || name == ".." || name == "" {
		return fallback
	}
	return name
}

func attachment(c echo.Context, filename, body string) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}
