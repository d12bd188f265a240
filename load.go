package ekidata2sql

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tidwall/geojson"
)

type LoadOpts struct {
	// Clip, if set, drops stations outside the feature before they are inserted.
	Clip     geojson.Object
	Progress Progress
}

// Summary counts what a load run staged.
type Summary struct {
	Inserted        map[string]int // table -> rows
	SkippedJoins    int
	ClippedStations int
}

// Load stages every row of in into sess, table by table in dependency order: pref,
// company, line, station, join. It never commits. Errors from the store abort the run and
// the caller is expected to roll back.
//
// Only join rows are checked against the destination: a join row is staged when its line
// and both stations already exist, and is otherwise skipped without error.
func Load(ctx context.Context, sess Session, in *Input, opts *LoadOpts) (*Summary, error) {
	if sess == nil {
		panic("Missing session")
	}
	if in == nil {
		panic("Missing input")
	}
	if opts == nil {
		opts = &LoadOpts{}
	}

	l := &loader{
		sess:     sess,
		progress: opts.Progress,
		summary:  &Summary{Inserted: make(map[string]int)},
	}
	if l.progress == nil {
		l.progress = nopProgress{}
	}

	var clip *stationClip
	if opts.Clip != nil {
		var err error
		clip, err = newStationClip(opts.Clip, in.Station)
		if err != nil {
			return nil, err
		}
	}

	if err := l.loadPrefs(ctx); err != nil {
		return nil, err
	}
	if err := l.loadRecords(ctx, in.Company, nil); err != nil {
		return nil, err
	}
	if err := l.loadRecords(ctx, in.Line, nil); err != nil {
		return nil, err
	}
	if err := l.loadRecords(ctx, in.Station, clip); err != nil {
		return nil, err
	}
	if err := l.loadJoins(ctx, in.Join); err != nil {
		return nil, err
	}

	for _, table := range ekidataSchema {
		slog.Info(fmt.Sprintf("Staged %d rows in %s", l.summary.Inserted[table.Name], table.Name))
	}
	if l.summary.SkippedJoins > 0 {
		slog.Info(fmt.Sprintf("Skipped %d join rows referencing unknown lines or stations", l.summary.SkippedJoins))
	}
	if l.summary.ClippedStations > 0 {
		slog.Info(fmt.Sprintf("Clipped %d stations", l.summary.ClippedStations))
	}
	return l.summary, nil
}

type loader struct {
	sess     Session
	progress Progress
	summary  *Summary
}

var prefColumns = []string{"pref_cd", "pref_name"}

func (l *loader) loadPrefs(ctx context.Context) error {
	l.progress.Start(prefTable, len(regions))
	defer l.progress.Finish()

	for _, region := range regions {
		if err := l.sess.Insert(ctx, prefTable, prefColumns, []any{region.Code, region.Name}); err != nil {
			return fmt.Errorf("%s %d: %w", prefTable, region.Code, err)
		}
		l.summary.Inserted[prefTable]++
		l.progress.Add(1)
	}
	return nil
}

func (l *loader) loadRecords(ctx context.Context, records *Records, clip *stationClip) error {
	l.progress.Start(records.Table, len(records.Rows))
	defer l.progress.Finish()

	for _, record := range records.Rows {
		l.progress.Add(1)
		if clip != nil && !clip.contains(record) {
			l.summary.ClippedStations++
			continue
		}
		if err := l.sess.Insert(ctx, records.Table, records.Columns, record.Values); err != nil {
			return fmt.Errorf("%s:%d: %w", records.Path, record.Line, err)
		}
		l.summary.Inserted[records.Table]++
	}
	return nil
}

// existenceCache remembers whether a code exists in one table column so that each
// distinct code is queried once per run.
type existenceCache struct {
	sess   Session
	table  string
	column string
	known  map[int64]bool
}

func newExistenceCache(sess Session, table, column string) *existenceCache {
	return &existenceCache{sess: sess, table: table, column: column, known: make(map[int64]bool)}
}

func (c *existenceCache) exists(ctx context.Context, v any) (bool, error) {
	code, ok := v.(int64)
	if !ok {
		return false, nil
	}
	if found, ok := c.known[code]; ok {
		return found, nil
	}
	found, err := c.sess.Exists(ctx, c.table, c.column, code)
	if err != nil {
		return false, fmt.Errorf("check %s.%s = %d: %w", c.table, c.column, code, err)
	}
	c.known[code] = found
	return found, nil
}

func (l *loader) loadJoins(ctx context.Context, records *Records) error {
	l.progress.Start(records.Table, len(records.Rows))
	defer l.progress.Finish()

	lineIdx := records.index("line_cd")
	station1Idx := records.index("station_cd1")
	station2Idx := records.index("station_cd2")

	knownLines := newExistenceCache(l.sess, lineTable, "line_cd")
	knownStations := newExistenceCache(l.sess, stationTable, "station_cd")

	for _, record := range records.Rows {
		l.progress.Add(1)

		lineOK, err := knownLines.exists(ctx, record.Values[lineIdx])
		if err != nil {
			return err
		}
		station1OK, err := knownStations.exists(ctx, record.Values[station1Idx])
		if err != nil {
			return err
		}
		station2OK, err := knownStations.exists(ctx, record.Values[station2Idx])
		if err != nil {
			return err
		}
		if !lineOK || !station1OK || !station2OK {
			l.summary.SkippedJoins++
			continue
		}

		if err := l.sess.Insert(ctx, records.Table, records.Columns, record.Values); err != nil {
			return fmt.Errorf("%s:%d: %w", records.Path, record.Line, err)
		}
		l.summary.Inserted[records.Table]++
	}
	return nil
}
