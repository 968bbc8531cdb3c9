package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jakechorley/daycentre-transport/pkg/core/allocator"
	"github.com/jakechorley/daycentre-transport/pkg/core/model"
	"github.com/jakechorley/daycentre-transport/pkg/core/services"
)

type reservationRequest struct {
	Date    string            `json:"date"`
	RiderID string            `json:"riderId"`
	Type    model.OverlayType `json:"type"`
}

type matchResponse struct {
	Outcome allocator.MatchOutcome `json:"outcome"`
	Message string                 `json:"message,omitempty"`
	Routes  []model.Route          `json:"routes"`
}

func newMatchResponse(result *services.MatchResult) matchResponse {
	resp := matchResponse{Outcome: result.Outcome, Routes: result.Matches}
	if result.Outcome == allocator.OutcomeNoRoute {
		resp.Message = allocator.NoMatchMessage
	}
	return resp
}

func (s *Server) listRoutes(c *gin.Context) {
	routes, err := services.ListRoutes(c.Request.Context(), s.store, s.logger, s.opts)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, routes)
}

func (s *Server) createRoute(c *gin.Context) {
	var input services.RouteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	route, err := services.CreateRoute(c.Request.Context(), s.store, s.logger, s.opts, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, route)
}

func (s *Server) updateRoute(c *gin.Context) {
	var input services.RouteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	route, err := services.UpdateRouteSchedule(c.Request.Context(), s.store, s.logger, s.opts, c.Param("id"), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

func (s *Server) deleteRoute(c *gin.Context) {
	if err := services.DeleteRoute(c.Request.Context(), s.store, s.logger, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) effectivePassengers(c *gin.Context) {
	day, err := services.EffectivePassengers(c.Request.Context(), s.store, s.logger, s.opts, c.Param("id"), c.Query("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, day)
}

func (s *Server) serviceDates(c *gin.Context) {
	from, err := model.ParseDate(c.Query("from"))
	if err != nil {
		writeError(c, wrapInvalidDate(err))
		return
	}
	to, err := model.ParseDate(c.Query("to"))
	if err != nil {
		writeError(c, wrapInvalidDate(err))
		return
	}

	dates, err := services.ServiceDates(c.Request.Context(), s.store, s.logger, s.opts, c.Param("id"), from, to)
	if err != nil {
		writeError(c, err)
		return
	}

	formatted := make([]string, len(dates))
	for i, d := range dates {
		formatted[i] = d.Format(model.DateLayout)
	}
	c.JSON(http.StatusOK, gin.H{"routeId": c.Param("id"), "dates": formatted})
}

func (s *Server) assignRider(c *gin.Context) {
	route, err := services.AssignRider(c.Request.Context(), s.store, s.logger, s.opts, c.Param("id"), c.Param("riderId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

func (s *Server) unassignRider(c *gin.Context) {
	route, err := services.UnassignRider(c.Request.Context(), s.store, s.logger, s.opts, c.Param("id"), c.Param("riderId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

func (s *Server) reserve(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := services.ReserveTemporary(c.Request.Context(), s.store, s.logger, s.opts, c.Param("id"), req.Date, req.RiderID, req.Type)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) findRoutes(c *gin.Context) {
	result, err := services.FindRoutesForRider(c.Request.Context(), s.store, s.logger, s.opts, c.Param("riderId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newMatchResponse(result))
}

func (s *Server) autoAssign(c *gin.Context) {
	result, err := services.AutoAssignRider(c.Request.Context(), s.store, s.logger, s.opts, c.Param("riderId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"match":    newMatchResponse(result.Match),
		"assigned": result.Assigned,
	})
}

func (s *Server) syncRider(c *gin.Context) {
	result, err := services.SyncRiderProfile(c.Request.Context(), s.store, s.logger, s.opts, c.Param("riderId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": result.Updated, "removed": result.Removed})
}

func (s *Server) removeRider(c *gin.Context) {
	removed, err := services.RemoveRiderFromAllRoutes(c.Request.Context(), s.store, s.logger, s.opts, c.Param("riderId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (s *Server) manifest(c *gin.Context) {
	manifest, err := services.DailyManifest(c.Request.Context(), s.store, s.logger, s.opts, c.Param("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": c.Param("date"), "routes": manifest})
}

func wrapInvalidDate(err error) error {
	return fmt.Errorf("%w: %v", allocator.ErrInvalidDate, err)
}
