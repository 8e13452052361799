package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/roach88/expo/internal/engine"
	"github.com/roach88/expo/internal/ir"
	"github.com/roach88/expo/internal/store"
)

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// CaptainView is a captain's current sequence with projected service times.
type CaptainView struct {
	ID           string                `json:"id"`
	Name         string                `json:"name,omitempty"`
	TableIDs     []string              `json:"table_ids"`
	Sequence     []string              `json:"sequence"`
	SequenceHash string                `json:"sequence_hash"`
	Revision     int64                 `json:"revision"`
	Estimates    []engine.SlotEstimate `json:"estimates"`
}

// SuggestionsResponse is the response body for GET .../suggestions.
type SuggestionsResponse struct {
	CaptainID    string                    `json:"captain_id"`
	Revision     int64                     `json:"revision"`
	SequenceHash string                    `json:"sequence_hash"`
	Suggestions  []engine.RankedSuggestion `json:"suggestions"`
}

// MoveRequest is the request body for POST .../move.
type MoveRequest struct {
	Unit      string `json:"unit"`
	Direction string `json:"direction"`
	Revision  *int64 `json:"revision,omitempty"`
}

// ApplyRequest is the request body for POST .../apply. Suggestion is a full
// suggestion id or a unique prefix of one.
type ApplyRequest struct {
	Suggestion string `json:"suggestion"`
	Revision   *int64 `json:"revision,omitempty"`
}

// ApplyResponse is the response body for POST .../apply.
type ApplyResponse struct {
	Applied engine.RankedSuggestion `json:"applied"`
	Captain CaptainView             `json:"captain"`
}

// TimelineResponse is the response body for GET .../timeline.
type TimelineResponse struct {
	CaptainID string                `json:"captain_id"`
	Estimates []engine.SlotEstimate `json:"estimates"`
	Courses   []engine.CourseSlot   `json:"courses"`
}

// session is one captain loaded from the store into a fresh engine.
type session struct {
	eng *engine.Engine
	rec store.CaptainRecord
}

// open loads the captain and the unit registry from the store.
func (s *Server) open(ctx context.Context, captainID string) (*session, error) {
	rec, err := s.store.ReadCaptain(ctx, captainID)
	if err != nil {
		return nil, fmt.Errorf("read captain %s: %w", captainID, err)
	}
	units, err := s.store.ReadUnits(ctx)
	if err != nil {
		return nil, err
	}

	eng := engine.New(ir.NewUnitIndex(units),
		engine.WithEstimator(s.estimator),
		engine.WithLogger(s.logger),
	)
	if err := eng.Assign(rec.Captain); err != nil {
		return nil, err
	}
	return &session{eng: eng, rec: rec}, nil
}

func (ss *session) view() (CaptainView, error) {
	seq, err := ss.eng.Sequence(ss.rec.ID)
	if err != nil {
		return CaptainView{}, err
	}
	est, err := ss.eng.Estimates(ss.rec.ID)
	if err != nil {
		return CaptainView{}, err
	}
	return CaptainView{
		ID:           ss.rec.ID,
		Name:         ss.rec.Name,
		TableIDs:     ss.rec.TableIDs,
		Sequence:     seq,
		SequenceHash: ir.SequenceHash(seq),
		Revision:     ss.rec.Revision,
		Estimates:    est,
	}, nil
}

// mutate runs fn on the captain under its lock and persists the result.
// A request revision that is not the stored one is rejected before fn runs.
func (s *Server) mutate(ctx context.Context, captainID string, want *int64, fn func(*session) error) (*session, error) {
	unlock := s.locks.lock(captainID)
	defer unlock()

	ss, err := s.open(ctx, captainID)
	if err != nil {
		return nil, httpError(err, 0)
	}
	if want != nil && *want != ss.rec.Revision {
		err := fmt.Errorf("captain %s at revision %d, request has %d: %w",
			captainID, ss.rec.Revision, *want, store.ErrRevisionConflict)
		return nil, httpError(err, ss.rec.Revision)
	}

	if err := fn(ss); err != nil {
		return nil, httpError(err, ss.rec.Revision)
	}

	seq, err := ss.eng.Sequence(captainID)
	if err != nil {
		return nil, httpError(err, ss.rec.Revision)
	}
	rev, err := s.store.WriteSequence(ctx, captainID, seq, ss.rec.Revision)
	if err != nil {
		s.logger.Warn("sequence write rejected", "captain", captainID, "error", err)
		return nil, httpError(err, rev)
	}
	ss.rec.Revision = rev
	return ss, nil
}

// handleHealth reports whether the store answers.
func (s *Server) handleHealth(c echo.Context) error {
	if err := s.store.Ping(c.Request().Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Version: ir.EngineVersion})
	}
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: ir.EngineVersion})
}

func (s *Server) handleListCaptains(c echo.Context) error {
	records, err := s.store.ListCaptains(c.Request().Context())
	if err != nil {
		return httpError(err, 0)
	}
	return c.JSON(http.StatusOK, records)
}

func (s *Server) handleGetCaptain(c echo.Context) error {
	ss, err := s.open(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err, 0)
	}
	v, err := ss.view()
	if err != nil {
		return httpError(err, ss.rec.Revision)
	}
	return c.JSON(http.StatusOK, v)
}

func (s *Server) handleSuggestions(c echo.Context) error {
	id := c.Param("id")
	ss, err := s.open(c.Request().Context(), id)
	if err != nil {
		return httpError(err, 0)
	}

	ranked, err := ss.eng.Suggestions(id)
	if err != nil {
		return httpError(err, ss.rec.Revision)
	}
	seq, err := ss.eng.Sequence(id)
	if err != nil {
		return httpError(err, ss.rec.Revision)
	}

	return c.JSON(http.StatusOK, SuggestionsResponse{
		CaptainID:    id,
		Revision:     ss.rec.Revision,
		SequenceHash: ir.SequenceHash(seq),
		Suggestions:  ranked,
	})
}

func (s *Server) handleMove(c echo.Context) error {
	var req MoveRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if req.Unit == "" {
		return badRequest("unit field is required")
	}
	dir, err := ir.ParseDirection(req.Direction)
	if err != nil {
		return badRequest(err.Error())
	}

	id := c.Param("id")
	ss, err := s.mutate(c.Request().Context(), id, req.Revision, func(ss *session) error {
		_, err := ss.eng.Move(id, req.Unit, dir)
		return err
	})
	if err != nil {
		return err
	}

	v, err := ss.view()
	if err != nil {
		return httpError(err, ss.rec.Revision)
	}
	return c.JSON(http.StatusOK, v)
}

func (s *Server) handleApply(c echo.Context) error {
	var req ApplyRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if req.Suggestion == "" {
		return badRequest("suggestion field is required")
	}

	id := c.Param("id")
	var applied ir.Suggestion
	ss, err := s.mutate(c.Request().Context(), id, req.Revision, func(ss *session) error {
		var err error
		_, applied, err = ss.eng.ApplyByID(id, req.Suggestion)
		return err
	})
	if err != nil {
		return err
	}

	v, err := ss.view()
	if err != nil {
		return httpError(err, ss.rec.Revision)
	}
	return c.JSON(http.StatusOK, ApplyResponse{
		Applied: engine.RankedSuggestion{ID: ir.MustSuggestionID(applied), Suggestion: applied},
		Captain: v,
	})
}

func (s *Server) handleTimeline(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	ss, err := s.open(ctx, id)
	if err != nil {
		return httpError(err, 0)
	}

	plans, err := s.store.ReadCoursePlans(ctx)
	if err != nil {
		return httpError(err, 0)
	}
	est, err := ss.eng.Estimates(id)
	if err != nil {
		return httpError(err, ss.rec.Revision)
	}

	return c.JSON(http.StatusOK, TimelineResponse{
		CaptainID: id,
		Estimates: est,
		Courses:   ss.eng.Timeline(plans),
	})
}
