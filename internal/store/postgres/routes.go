package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"smartwaste-backend/internal/models"
	"smartwaste-backend/internal/store"
)

type routeStore struct {
	db *sqlx.DB
}

func (s *routeStore) Get(ctx context.Context, id string) (*models.Route, error) {
	var route models.Route
	err := s.db.GetContext(ctx, &route, `SELECT * FROM routes WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get route: %w", err)
	}
	stops, err := s.loadStops(ctx, id)
	if err != nil {
		return nil, err
	}
	route.Stops = stops
	return &route, nil
}

func (s *routeStore) loadStops(ctx context.Context, routeID string) ([]models.RouteStop, error) {
	stops := []models.RouteStop{}
	err := s.db.SelectContext(ctx, &stops, `
		SELECT * FROM route_stops WHERE route_id = $1 ORDER BY stop_order`, routeID)
	if err != nil {
		return nil, fmt.Errorf("load route stops: %w", err)
	}
	return stops, nil
}

func (s *routeStore) List(ctx context.Context) ([]models.Route, error) {
	routes := []models.Route{}
	err := s.db.SelectContext(ctx, &routes, `SELECT * FROM routes ORDER BY date_created DESC`)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	for i := range routes {
		stops, err := s.loadStops(ctx, routes[i].ID)
		if err != nil {
			return nil, err
		}
		routes[i].Stops = stops
	}
	return routes, nil
}

func (s *routeStore) Create(ctx context.Context, route *models.Route) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("create route: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO routes (id, name, status, assigned_to_id, date_created, route_start_time, route_end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		route.ID, route.Name, route.Status, route.AssignedToID,
		route.DateCreated, route.RouteStartTime, route.RouteEndTime)
	if isUniqueViolation(err) {
		return store.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create route: %w", err)
	}

	if err := insertStops(ctx, tx, route.ID, route.Stops); err != nil {
		return err
	}
	return tx.Commit()
}

func insertStops(ctx context.Context, tx *sqlx.Tx, routeID string, stops []models.RouteStop) error {
	for _, stop := range stops {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO route_stops (route_id, bin_id, stop_order, latitude, longitude)
			VALUES ($1, $2, $3, $4, $5)`,
			routeID, stop.BinID, stop.StopOrder, stop.Latitude, stop.Longitude)
		if err != nil {
			return fmt.Errorf("insert route stop: %w", err)
		}
	}
	return nil
}

func (s *routeStore) Rebuild(ctx context.Context, id, name string, stops []models.RouteStop) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("rebuild route: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE routes SET name = $1, status = $2, assigned_to_id = NULL,
			route_start_time = NULL, route_end_time = NULL
		WHERE id = $3 AND status != $4`,
		name, models.RouteCreated, id, models.RouteInProgress)
	if err != nil {
		return fmt.Errorf("rebuild route: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM routes WHERE id = $1)`, id); err != nil {
			return fmt.Errorf("rebuild route: %w", err)
		}
		if !exists {
			return store.ErrNotFound
		}
		return store.ErrConflict
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM route_stops WHERE route_id = $1`, id); err != nil {
		return fmt.Errorf("rebuild route stops: %w", err)
	}
	if err := insertStops(ctx, tx, id, stops); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *routeStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM routes WHERE id = $1 AND status IN ($2, $3)`,
		id, models.RouteCreated, models.RouteCompleted)
	if err != nil {
		return fmt.Errorf("delete route: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var exists bool
		if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM routes WHERE id = $1)`, id); err != nil {
			return fmt.Errorf("delete route: %w", err)
		}
		if !exists {
			return store.ErrNotFound
		}
		return store.ErrConflict
	}
	return nil
}

func (s *routeStore) Assign(ctx context.Context, id, collectorID string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE routes SET status = $1, assigned_to_id = $2
		WHERE id = $3 AND status != $4`,
		models.RouteAssigned, collectorID, id, models.RouteInProgress)
	if err != nil {
		return fmt.Errorf("assign route: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var exists bool
		if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM routes WHERE id = $1)`, id); err != nil {
			return fmt.Errorf("assign route: %w", err)
		}
		if !exists {
			return store.ErrNotFound
		}
		return store.ErrConflict
	}
	return nil
}

func (s *routeStore) Start(ctx context.Context, id, collectorID string, startedAt int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE routes SET status = $1, route_start_time = $2
		WHERE id = $3 AND status = $4 AND assigned_to_id = $5`,
		models.RouteInProgress, startedAt, id, models.RouteAssigned, collectorID)
	if err != nil {
		return fmt.Errorf("start route: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var exists bool
		if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM routes WHERE id = $1)`, id); err != nil {
			return fmt.Errorf("start route: %w", err)
		}
		if !exists {
			return store.ErrNotFound
		}
		return store.ErrConflict
	}
	return nil
}

func (s *routeStore) Complete(ctx context.Context, id, collectorID string, endedAt int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE routes SET status = $1, route_end_time = $2
		WHERE id = $3 AND status = $4 AND assigned_to_id = $5`,
		models.RouteCompleted, endedAt, id, models.RouteInProgress, collectorID)
	if err != nil {
		return fmt.Errorf("complete route: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var exists bool
		if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM routes WHERE id = $1)`, id); err != nil {
			return fmt.Errorf("complete route: %w", err)
		}
		if !exists {
			return store.ErrNotFound
		}
		return store.ErrConflict
	}
	return nil
}

func (s *routeStore) FindByStopAndStatus(ctx context.Context, binID, status string) (*models.Route, error) {
	var route models.Route
	err := s.db.GetContext(ctx, &route, `
		SELECT r.* FROM routes r
		JOIN route_stops rs ON rs.route_id = r.id
		WHERE rs.bin_id = $1 AND r.status = $2
		ORDER BY r.date_created DESC
		LIMIT 1`, binID, status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find route by stop: %w", err)
	}
	stops, err := s.loadStops(ctx, route.ID)
	if err != nil {
		return nil, err
	}
	route.Stops = stops
	return &route, nil
}

func (s *routeStore) FindLatestByCollectorAndStatus(ctx context.Context, collectorID, status string) (*models.Route, error) {
	var route models.Route
	err := s.db.GetContext(ctx, &route, `
		SELECT * FROM routes
		WHERE assigned_to_id = $1 AND status = $2
		ORDER BY date_created DESC
		LIMIT 1`, collectorID, status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find route by collector: %w", err)
	}
	stops, err := s.loadStops(ctx, route.ID)
	if err != nil {
		return nil, err
	}
	route.Stops = stops
	return &route, nil
}
