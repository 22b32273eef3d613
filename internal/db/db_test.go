package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hafla-tracker/internal/route"
)

// passthrough lets []string reach the mock the way pgx accepts it for ANY($3).
type passthrough struct{}

func (passthrough) ConvertValue(v any) (driver.Value, error) { return v, nil }

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(passthrough{}))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestFetchShapeWaypoints_LatLonColumns(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`FROM information_schema.columns`).
		WithArgs("public", "shapes", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("shape_pt_lat").AddRow("shape_pt_lon"))
	mock.ExpectQuery(`SELECT shape_pt_lat, shape_pt_lon\s+FROM shapes`).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"shape_pt_lat", "shape_pt_lon"}).
			AddRow(36.8150, 10.1800).
			AddRow(36.8600, 10.1900).
			AddRow(36.8936, 10.1873))

	pts, err := FetchShapeWaypoints(context.Background(), db, "s1")
	require.NoError(t, err)
	require.Len(t, pts, 3)
	assert.Equal(t, route.Waypoint{Lat: 36.8150, Lon: 10.1800}, pts[0])
	assert.Equal(t, route.Waypoint{Lat: 36.8936, Lon: 10.1873}, pts[2])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchShapeWaypoints_PostGISFallback(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`FROM information_schema.columns`).
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}))
	mock.ExpectQuery(`FROM information_schema.columns`).
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("shape_pt_loc"))
	mock.ExpectQuery(`ST_Y\(shape_pt_loc::geometry\)`).
		WithArgs("s2").
		WillReturnRows(sqlmock.NewRows([]string{"lat", "lon"}).AddRow(1.0, 2.0).AddRow(3.0, 4.0))

	pts, err := FetchShapeWaypoints(context.Background(), db, "s2")
	require.NoError(t, err)
	assert.Equal(t, []route.Waypoint{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}}, pts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchShapeWaypoints_MissingColumns(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`FROM information_schema.columns`).
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}))
	mock.ExpectQuery(`FROM information_schema.columns`).
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}))

	_, err := FetchShapeWaypoints(context.Background(), db, "s3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing expected columns")
}

func TestFetchShapeWaypoints_EmptyID(t *testing.T) {
	db, mock := newMock(t)
	pts, err := FetchShapeWaypoints(context.Background(), db, "")
	require.NoError(t, err)
	assert.Nil(t, pts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadRoute(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`FROM information_schema.columns`).
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("shape_pt_lat").AddRow("shape_pt_lon"))
	mock.ExpectQuery(`FROM shapes`).
		WillReturnRows(sqlmock.NewRows([]string{"shape_pt_lat", "shape_pt_lon"}).AddRow(0.0, 0.0).AddRow(1.0, 1.0))

	r, err := LoadRoute(context.Background(), db, "s1")
	require.NoError(t, err)
	assert.Equal(t, "shape-s1", r.ID)
	assert.Equal(t, route.Waypoint{Lat: 1, Lon: 1}, r.Destination())

	wp, target := r.ResolveSearch("home")
	assert.Equal(t, route.TargetOrigin, target)
	assert.Equal(t, route.Waypoint{}, wp)
}

func TestLoadRoute_TooShort(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`FROM information_schema.columns`).
		WillReturnRows(sqlmock.NewRows([]string{"column_name"}).AddRow("shape_pt_lat").AddRow("shape_pt_lon"))
	mock.ExpectQuery(`FROM shapes`).
		WillReturnRows(sqlmock.NewRows([]string{"shape_pt_lat", "shape_pt_lon"}).AddRow(0.0, 0.0))

	_, err := LoadRoute(context.Background(), db, "s1")
	require.ErrorIs(t, err, route.ErrTooFewWaypoints)
}
