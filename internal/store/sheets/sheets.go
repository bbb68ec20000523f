// Package sheets backs the attendance store with a Google Sheets
// worksheet, the deployment the dashboard originally shipped with.
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/MySundayS/employee-lita/internal/shared/apperror"
	"github.com/MySundayS/employee-lita/internal/store"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

type Store struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
	logger        *zap.Logger
}

var _ store.Store = (*Store)(nil)

// New builds a sheets-backed store from a service-account credentials file.
func New(ctx context.Context, credentialsFile, spreadsheetID, worksheet string) (*Store, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStoreUnauthorized, "Google Sheets authorization failed", 500)
	}
	return &Store{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		worksheet:     worksheet,
		logger:        zap.L().Named("store.sheets"),
	}, nil
}

// NewWithCredentialsJSON builds the store from inline service-account JSON,
// the form container deployments inject through the environment instead of
// mounting a key file.
func NewWithCredentialsJSON(ctx context.Context, credentialsJSON []byte, spreadsheetID, worksheet string) (*Store, error) {
	jwtCfg, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStoreUnauthorized, "Google Sheets credential parse failed", 500)
	}
	svc, err := sheets.NewService(ctx, option.WithTokenSource(jwtCfg.TokenSource(ctx)))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeStoreUnauthorized, "Google Sheets authorization failed", 500)
	}
	return &Store{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		worksheet:     worksheet,
		logger:        zap.L().Named("store.sheets"),
	}, nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	rng := fmt.Sprintf("%s!A1:I1", s.worksheet)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return s.mapErr(err, "read header")
	}

	header := make([]interface{}, len(store.Columns))
	for i, c := range store.Columns {
		header[i] = c
	}
	if len(resp.Values) == 1 && equalRow(resp.Values[0], header) {
		return nil
	}

	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, &sheets.ValueRange{
		Values: [][]interface{}{header},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return s.mapErr(err, "write header")
	}
	s.logger.Info("header row written", zap.String("worksheet", s.worksheet))
	return nil
}

func (s *Store) AppendRows(ctx context.Context, rows []store.Record) error {
	if len(rows) == 0 {
		return nil
	}
	values := make([][]interface{}, len(rows))
	for i, r := range rows {
		values[i] = toRow(r)
	}

	// One append call per batch; the API makes the whole set visible
	// atomically, which is what keeps readers from seeing torn batches.
	rng := fmt.Sprintf("%s!A1", s.worksheet)
	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, &sheets.ValueRange{
		Values: values,
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return s.mapErr(err, "append rows")
	}
	return nil
}

func (s *Store) ReadAll(ctx context.Context) ([]store.Record, error) {
	rng := fmt.Sprintf("%s!A2:I", s.worksheet)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, s.mapErr(err, "read rows")
	}

	records := make([]store.Record, 0, len(resp.Values))
	for _, row := range resp.Values {
		rec, err := fromRow(row)
		if err != nil {
			s.logger.Warn("skipping malformed row", zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Store) ExistingIDs(ctx context.Context) (map[string]struct{}, error) {
	// Only column A is needed for dedup; cheaper than a full table read.
	rng := fmt.Sprintf("%s!A2:A", s.worksheet)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, s.mapErr(err, "read ids")
	}

	ids := make(map[string]struct{}, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) > 0 {
			if id, ok := row[0].(string); ok && id != "" {
				ids[id] = struct{}{}
			}
		}
	}
	return ids, nil
}

func (s *Store) mapErr(err error, op string) error {
	if gerr, ok := err.(*googleapi.Error); ok {
		switch gerr.Code {
		case 401, 403:
			return apperror.Wrap(err, apperror.CodeStoreUnauthorized,
				"Sheets credential rejected during "+op, 500)
		}
	}
	return apperror.Wrap(err, apperror.CodeStoreUnavailable, "Sheets "+op+" failed", 503)
}

func toRow(r store.Record) []interface{} {
	return []interface{}{
		r.ID,
		r.UserID,
		r.Name,
		r.Timestamp.Format(store.TimestampLayout),
		strconv.Itoa(r.Status),
		strconv.Itoa(r.Punch),
		r.Date(),
		r.Time(),
		r.DeviceIP,
	}
}

func fromRow(row []interface{}) (store.Record, error) {
	if len(row) < 9 {
		return store.Record{}, fmt.Errorf("row has %d cells, want 9", len(row))
	}
	cell := func(i int) string {
		s, _ := row[i].(string)
		return s
	}

	ts, err := time.ParseInLocation(store.TimestampLayout, cell(3), time.Local)
	if err != nil {
		return store.Record{}, fmt.Errorf("bad timestamp %q: %w", cell(3), err)
	}
	status, _ := strconv.Atoi(cell(4))
	punch, _ := strconv.Atoi(cell(5))

	return store.Record{
		ID:        cell(0),
		UserID:    cell(1),
		Name:      cell(2),
		Timestamp: ts,
		Status:    status,
		Punch:     punch,
		DeviceIP:  cell(8),
	}, nil
}

func equalRow(a, b []interface{}) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if fmt.Sprint(a[i]) != fmt.Sprint(b[i]) {
			return false
		}
	}
	return true
}
