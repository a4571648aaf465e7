package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/joseph-ayodele/system-prompt-generator/constants"
	"github.com/joseph-ayodele/system-prompt-generator/internal/entity"
)

const defaultListLimit = 50

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type listResponse struct {
	Generations []*entity.Generation `json:"generations"`
}

func (s *Server) handleListGenerations(c echo.Context) error {
	if s.repo == nil {
		return unavailable("generation history is not enabled")
	}
	limit := defaultListLimit
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = n
	}

	gens, err := s.repo.List(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	if gens == nil {
		gens = []*entity.Generation{}
	}
	return c.JSON(http.StatusOK, listResponse{Generations: gens})
}

func (s *Server) lookup(c echo.Context) (*entity.Generation, error) {
	if s.repo == nil {
		return nil, unavailable("generation history is not enabled")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "id must be a UUID")
	}
	return s.repo.Get(c.Request().Context(), id)
}

func (s *Server) handleGetGeneration(c echo.Context) error {
	g, err := s.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, g)
}

func (s *Server) handleGenerationDocument(c echo.Context) error {
	g, err := s.lookup(c)
	if err != nil {
		return err
	}
	if g.Status != constants.StatusSucceeded {
		return echo.NewHTTPError(http.StatusConflict, "generation is "+string(g.Status))
	}
	return attachment(c, constants.DownloadFilename, g.OutputText)
}

func (s *Server) handleExport(c echo.Context) error {
	if s.export == nil {
		return unavailable("export is not enabled")
	}
	data, err := s.export.ExportGenerationsXLSX(c.Request().Context())
	if err != nil {
		return err
	}
	name := "generations-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, xlsxContentType, data)
}
